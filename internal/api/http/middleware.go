package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/gate"
	"github.com/spec-kit/ticketapp/internal/observability"
	"github.com/spec-kit/ticketapp/internal/service"
	apperrors "github.com/spec-kit/ticketapp/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

var serviceErrorMappings = []apperrors.Mapping{
	{Target: service.ErrValidation, Build: func(err error) *apperrors.DomainError {
		var details map[string]any
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			details = make(map[string]any, len(verr.Fields))
			for k, v := range verr.Fields {
				details[k] = v
			}
		}
		return apperrors.NewDomainError(apperrors.CodeValidation, "validation failed", http.StatusBadRequest, details)
	}},
	{Target: service.ErrNoSession, Build: func(error) *apperrors.DomainError {
		return apperrors.NewDomainError(apperrors.CodeUnauthorized, "no active session", http.StatusUnauthorized, nil)
	}},
	{Target: service.ErrDuplicateEmail, Build: func(error) *apperrors.DomainError {
		return apperrors.NewDuplicateEmail("").(*apperrors.DomainError)
	}},
	{Target: service.ErrInvalidCredentials, Build: func(error) *apperrors.DomainError {
		return apperrors.NewInvalidCredentials().(*apperrors.DomainError)
	}},
}

func toDomainError(err error) *apperrors.DomainError {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := apperrors.CodeInternal
		switch fe.Code {
		case http.StatusNotFound:
			code = apperrors.CodeNotFound
		case http.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			code = apperrors.CodeValidation
		case http.StatusUnauthorized:
			code = apperrors.CodeUnauthorized
		}
		return apperrors.NewDomainError(code, fe.Message, fe.Code, nil)
	}
	return apperrors.ToDomainError(err, serviceErrorMappings...)
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
				}
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// gateMiddleware runs the access gate for the requested path. A missing
// session answers 401 with the login location carrying the destination.
func gateMiddleware(g *gate.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision, err := g.Mount().Check(c.UserContext(), c.Path())
		if err != nil {
			return err
		}
		if decision.Outcome != gate.Allow {
			location := decision.Location()
			c.Set(fiber.HeaderLocation, location)
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    apperrors.CodeUnauthorized,
					"message": gate.DeniedMessage,
				},
				"redirect": location,
			})
		}
		return c.Next()
	}
}
