package public

import (
	"crypto/subtle"
	"strings"

	"github.com/ctv-ledger/internal/http/response"
	"github.com/ctv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

const eventSecretHeader = "X-Event-Secret"

// TransactionSettledRequest 交易结算事件请求
type TransactionSettledRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	UserID        uint   `json:"user_id" binding:"required"`
	GrossMinor    int64  `json:"gross_minor" binding:"required"`
	Currency      string `json:"currency"`
}

// TransactionSettled 接收上游交易结算事件并触发佣金结算
func (h *Handler) TransactionSettled(c *gin.Context) {
	if !h.verifyEventSecret(c) {
		respondError(c, response.CodeUnauthorized, "error.event_secret_invalid", nil)
		return
	}
	if h.CommissionService == nil {
		respondError(c, response.CodeInternal, "error.save_failed", nil)
		return
	}

	var req TransactionSettledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.GrossMinor <= 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	err := h.CommissionService.HandleTransactionSettled(c.Request.Context(), service.SettledTransaction{
		TransactionID: strings.TrimSpace(req.TransactionID),
		UserID:        req.UserID,
		GrossMinor:    req.GrossMinor,
		Currency:      strings.TrimSpace(req.Currency),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *Handler) verifyEventSecret(c *gin.Context) bool {
	if h.Config == nil {
		return false
	}
	secret := strings.TrimSpace(h.Config.Events.SharedSecret)
	if secret == "" {
		requestLog(c).Warnw("event_secret_not_configured")
		return false
	}
	provided := strings.TrimSpace(c.GetHeader(eventSecretHeader))
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(provided)) == 1
}
