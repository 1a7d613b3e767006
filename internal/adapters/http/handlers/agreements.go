package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/dto"
	"github.com/jsamuelsen/pay-public-api/internal/adapters/http/middleware"
	"github.com/jsamuelsen/pay-public-api/internal/app"
)

// AgreementHandler handles the /v1/agreements endpoints.
type AgreementHandler struct {
	service *app.AgreementService
	baseURL string
}

// NewAgreementHandler creates a new agreement handler.
func NewAgreementHandler(service *app.AgreementService, publicBaseURL string) *AgreementHandler {
	return &AgreementHandler{
		service: service,
		baseURL: publicBaseURL,
	}
}

// CreateAgreement handles POST /v1/agreements
//
// @Summary Create a direct debit agreement
// @Tags agreements
// @Accept json
// @Produce json
// @Success 201 {object} dto.AgreementResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /v1/agreements [post]
func (h *AgreementHandler) CreateAgreement(c *gin.Context) {
	var body dto.CreateAgreementBody
	if err := dto.BindAndValidate(c, &body); err != nil {
		dto.HandleError(c, err)
		return
	}

	a, err := h.service.CreateAgreement(c.Request.Context(), middleware.GetAccountID(c), body.ToDomain())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", dto.AgreementLocation(h.baseURL, a.ID))
	c.JSON(http.StatusCreated, dto.NewAgreementResponse(a))
}

// RegisterAgreementRoutes registers agreement routes on the given router group.
func (h *AgreementHandler) RegisterAgreementRoutes(rg *gin.RouterGroup) {
	rg.POST("/agreements", h.CreateAgreement)
}
