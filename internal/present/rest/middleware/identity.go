package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
)

var tracer = otel.Tracer("identity")

// IdentityMiddleware propagates the requester identity set by the
// authenticating gateway. Authentication itself happens upstream; this
// engine only consumes the trusted header.
type IdentityMiddleware struct {
	config domain.Config
}

func NewIdentityMiddleware(config domain.Config) *IdentityMiddleware {
	return &IdentityMiddleware{config: config}
}

func (m *IdentityMiddleware) IdentifyRequester(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Identity.Middleware.IdentifyRequester")
		defer span.End()

		requester := c.Request().Header.Get(domain.RequesterIdHeader)
		if requester != "" {
			ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, requester)
			span.SetAttributes(attribute.String("RequesterId", requester))
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
