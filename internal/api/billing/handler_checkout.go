package billing

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"sanctuary-app/internal/api/respond"
	"sanctuary-app/internal/app/http/middleware"
	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"

	"github.com/gin-gonic/gin"
)

// POST /api/payments/checkout/session
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	productIDs, err := bindProductIDs(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid product_ids", "action": checkout.ActionFixRequest})
		return
	}

	out, err := h.gateway.RequestCheckout(c.Request.Context(), middleware.CurrentIdentity(c), productIDs)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": out.RedirectURL, "session_id": out.SessionID})
}

type statusResponse struct {
	SessionID     string           `json:"session_id"`
	Status        checkout.Status  `json:"status,omitempty"`
	PaymentStatus string           `json:"payment_status"`
	Outcome       checkout.Outcome `json:"outcome"`
	AmountTotal   int64            `json:"amount_total"`
	Currency      string           `json:"currency,omitempty"`
	OrderTotal    string           `json:"order_total,omitempty"`
	ProductIDs    []string         `json:"product_ids,omitempty"`
	State         checkout.UIState `json:"state"`
	Action        checkout.Action  `json:"action,omitempty"`
	Attempt       int              `json:"attempt"`
	MaxAttempts   int              `json:"max_attempts"`
	RetryAfterMs  int64            `json:"retry_after_ms,omitempty"`
}

// GET /api/payments/checkout/status/:session_id?attempt=N
//
// One read per call. The client reports which poll this is; once the attempt
// budget is spent a still-open session is answered with the terminal error
// state so the client stops.
func (h *Handler) CheckoutStatus(c *gin.Context) {
	sessionID := c.Param("session_id")
	attempt := h.policy.ClampAttempt(parseAttempt(c.Query("attempt")))

	res, err := h.gateway.ResolveCheckout(c.Request.Context(), sessionID)

	exhausted := false
	if res.Outcome == checkout.OutcomePending || res.Outcome == checkout.OutcomeError {
		exhausted = h.policy.Exhausted(attempt, h.policy.Waited(attempt))
	}
	state, action := checkout.StateFor(res, exhausted)

	s := res.Session
	resp := statusResponse{
		SessionID:     sessionID,
		Status:        s.Status,
		PaymentStatus: paymentStatus(res.Outcome),
		Outcome:       res.Outcome,
		AmountTotal:   s.AmountTotal,
		Currency:      s.Currency,
		ProductIDs:    s.ProductIDs,
		State:         state,
		Action:        action,
		Attempt:       attempt,
		MaxAttempts:   h.policy.MaxAttempts,
	}
	if s.Currency != "" && s.AmountTotal > 0 {
		resp.OrderTotal = catalog.FormatAmount(s.AmountTotal, s.Currency)
	}
	if state == checkout.UIPending || (state == checkout.UIError && action == checkout.ActionRetry) {
		resp.RetryAfterMs = h.policy.Delay(attempt).Milliseconds()
	}

	status := http.StatusOK
	switch {
	case res.Outcome == checkout.OutcomeNotFound:
		status = http.StatusNotFound
	case err != nil && res.Outcome == checkout.OutcomeError:
		status = respond.StatusFor(err)
	}
	c.JSON(status, resp)
}

// bindProductIDs accepts {"product_ids": [...]} and, for older clients, a
// bare JSON array of ids.
func bindProductIDs(c *gin.Context) ([]string, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var ids []string
		err := json.Unmarshal(raw, &ids)
		return ids, err
	}
	var body struct {
		ProductIDs []string `json:"product_ids"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body.ProductIDs, nil
}

// parseAttempt reads the client's poll counter. Out-of-range positive values
// saturate so the caller's clamp treats them as exhausted.
func parseAttempt(raw string) int {
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return n
	}
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func paymentStatus(o checkout.Outcome) string {
	if o == checkout.OutcomePaid {
		return "paid"
	}
	return "unpaid"
}
