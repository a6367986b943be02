package newsletterapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"sanctuary-app/internal/infra/newsletter"

	"github.com/gin-gonic/gin"
)

type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, email, firstName string) error
}

type Handler struct {
	captcha Verifier
	list    Subscriber
}

func NewHandler(captcha Verifier, list Subscriber) *Handler {
	return &Handler{captcha: captcha, list: list}
}

type subscribeRequest struct {
	Email          string `json:"email" binding:"required,email"`
	FirstName      string `json:"first_name" binding:"max=100"`
	RecaptchaToken string `json:"recaptcha_token"`
}

// POST /api/newsletter/subscribe
func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}

	if err := h.captcha.Verify(c.Request.Context(), req.RecaptchaToken, c.ClientIP()); err != nil {
		if errors.Is(err, newsletter.ErrCaptchaFailed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please complete the reCAPTCHA verification"})
			return
		}
		slog.Error("recaptcha verify failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not verify reCAPTCHA, please try again"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.list.Subscribe(c.Request.Context(), email, strings.TrimSpace(req.FirstName)); err != nil {
		switch {
		case errors.Is(err, newsletter.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Newsletter signup is not available"})
		case errors.Is(err, newsletter.ErrRejected):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription was rejected"})
		default:
			slog.Error("newsletter subscribe failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Something went wrong. Please try again."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Thank you for subscribing! Check your email to confirm."})
}
