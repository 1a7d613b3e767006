package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/dto"
	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/middleware"
	"github.com/jsamuelsen/pay-public-api/internal/app"
	"github.com/jsamuelsen/pay-public-api/internal/domain/payment"
	"github.com/jsamuelsen/pay-public-api/internal/platform/config"
	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
)

// PaymentHandlerConfig configures a PaymentHandler.
type PaymentHandlerConfig struct {
	Service *app.PaymentService

	// PublicBaseURL prefixes Location headers and self links.
	PublicBaseURL string

	// ValidationStrategy is config.ValidationStrategyFailFast (default) or
	// config.ValidationStrategyAggregate.
	ValidationStrategy string
}

// PaymentHandler handles the /v1/payments endpoints.
type PaymentHandler struct {
	service   *app.PaymentService
	baseURL   string
	aggregate bool
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(cfg PaymentHandlerConfig) *PaymentHandler {
	return &PaymentHandler{
		service:   cfg.Service,
		baseURL:   cfg.PublicBaseURL,
		aggregate: cfg.ValidationStrategy == config.ValidationStrategyAggregate,
	}
}

// CreatePayment handles POST /v1/payments
//
// @Summary Create a card payment
// @Tags payments
// @Accept json
// @Produce json
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /v1/payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := c.GetRawData()
	if err != nil {
		logging.FromContext(ctx).InfoContext(ctx, "unreadable request body", slog.Any("error", err))
		dto.HandleError(c, payment.UnparsableFailure())

		return
	}

	if h.aggregate {
		if err := dto.ValidateCreatePaymentBody(body); err != nil {
			dto.HandleError(c, err)
			return
		}
	}

	p, err := h.service.CreatePayment(ctx, middleware.GetAccountID(c), body)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", dto.PaymentLocation(h.baseURL, p.ID))
	c.JSON(http.StatusCreated, dto.NewPaymentResponse(p, h.baseURL))
}

// GetPayment handles GET /v1/payments/:paymentId
//
// @Summary Get a card payment
// @Tags payments
// @Produce json
// @Param paymentId path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/payments/{paymentId} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	p, err := h.service.GetPayment(c.Request.Context(), middleware.GetAccountID(c), c.Param("paymentId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaymentResponse(p, h.baseURL))
}

// GetPaymentEvents handles GET /v1/payments/:paymentId/events
//
// @Summary Get a card payment's status history
// @Tags payments
// @Produce json
// @Param paymentId path string true "Payment ID"
// @Success 200 {object} dto.EventsResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/payments/{paymentId}/events [get]
func (h *PaymentHandler) GetPaymentEvents(c *gin.Context) {
	events, err := h.service.GetPaymentEvents(c.Request.Context(), middleware.GetAccountID(c), c.Param("paymentId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewEventsResponse(events, h.baseURL))
}

// RegisterPaymentRoutes registers payment routes on the given router group.
func (h *PaymentHandler) RegisterPaymentRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	payments.POST("", h.CreatePayment)
	payments.GET("/:paymentId", h.GetPayment)
	payments.GET("/:paymentId/events", h.GetPaymentEvents)
}
