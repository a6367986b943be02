// Package respond maps gateway errors onto HTTP answers. Every error body
// carries the recovery action the client should offer.
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"sanctuary-app/internal/domain/checkout"

	"github.com/gin-gonic/gin"
)

// StatusFor is the HTTP status for an error of the checkout taxonomy.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, checkout.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, checkout.ErrNoProducts),
		errors.Is(err, checkout.ErrMixedCurrency):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrUnknownProduct),
		errors.Is(err, checkout.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkout.ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, checkout.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, checkout.ErrUnauthenticated):
		return "Please log in to continue"
	case errors.Is(err, checkout.ErrNoProducts):
		return "Select at least one product"
	case errors.Is(err, checkout.ErrUnknownProduct):
		return "Product not found"
	case errors.Is(err, checkout.ErrMixedCurrency):
		return "Products must share one currency"
	case errors.Is(err, checkout.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, checkout.ErrSessionExpired):
		return "Checkout session expired"
	case errors.Is(err, checkout.ErrUpstreamUnavailable):
		return "Payment provider unavailable, please try again"
	default:
		return "Something went wrong"
	}
}

// Error aborts the request with the mapped status, message and action.
func Error(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":  messageFor(err),
		"action": checkout.ActionFor(err),
	})
}
