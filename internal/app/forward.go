package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/pay-public-api/internal/platform/logging"
)

// Step names a stage of a forwarded write. Every write is validated, then
// performed against a connector, then verified against what was asked for.
// Nothing reaches the connector unless validation succeeds.
type Step string

const (
	StepValidate Step = "validate"
	StepPerform  Step = "perform"
	StepVerify   Step = "verify"
)

// StepError records the stage a forwarded write stopped at. It unwraps to
// the stage's own error so parser failures and connector errors stay
// visible to errors.As at the HTTP boundary.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return string(e.Step) + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep reports the stage err stopped at, if it came from a forwarded
// write.
func FailedStep(err error) (Step, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}

	return "", false
}

// forwarding is one kind of write: I is the raw input, R the validated
// request, P the connector's answer and O the result handed back.
type forwarding[I, R, P, O any] struct {
	name     string
	validate func(context.Context, I) (R, error)
	perform  func(context.Context, R) (P, error)
	verify   func(context.Context, R, P) (O, error)
}

// forwarder carries what every forwarded write shares.
type forwarder struct {
	logger *slog.Logger
	tracer trace.Tracer
}

func newForwarder(logger *slog.Logger) *forwarder {
	return &forwarder{logger: logger, tracer: otel.Tracer("github.com/jsamuelsen/pay-public-api/app")}
}

// forward runs op on input inside its own span. Validation failures are
// client mistakes and log at info; perform and verify failures log louder.
func forward[I, R, P, O any](ctx context.Context, f *forwarder, op forwarding[I, R, P, O], input I) (O, error) {
	var zero O

	ctx, span := f.tracer.Start(ctx, "app."+op.name)
	defer span.End()

	logger := logging.FromContextOr(ctx, f.logger).With(slog.String("operation", op.name))
	start := time.Now()

	fail := func(step Step, level slog.Level, err error) (O, error) {
		span.AddEvent(string(step) + " failed")
		if step != StepValidate {
			span.SetStatus(codes.Error, err.Error())
		}

		logger.Log(ctx, level, string(step)+" failed", slog.Any("error", err))

		return zero, &StepError{Step: step, Err: err}
	}

	req, err := op.validate(ctx, input)
	if err != nil {
		return fail(StepValidate, slog.LevelInfo, err)
	}

	span.AddEvent("validated")

	answer, err := op.perform(ctx, req)
	if err != nil {
		return fail(StepPerform, slog.LevelWarn, err)
	}

	out, err := op.verify(ctx, req, answer)
	if err != nil {
		return fail(StepVerify, slog.LevelError, err)
	}

	logger.InfoContext(ctx, "forwarded", slog.Duration("duration", time.Since(start)))

	return out, nil
}
