package public

import (
	"errors"
	"strings"

	"github.com/ctv-ledger/internal/http/response"
	"github.com/ctv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// ReferralBindRequest 推荐绑定请求
type ReferralBindRequest struct {
	Code string `json:"code" binding:"required"`
}

// BindReferral 将当前用户绑定到推广码对应的推广账户
func (h *Handler) BindReferral(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if h.AttributionService == nil {
		respondError(c, response.CodeInternal, "error.save_failed", nil)
		return
	}

	var req ReferralBindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	referral, err := h.AttributionService.Attribute(c.Request.Context(), service.AttributeInput{
		Code:      strings.TrimSpace(req.Code),
		UserID:    uid,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		// 防刷拦截与重复绑定静默吞掉：这是风控信号/幂等重放，不向调用方暴露
		if errors.Is(err, service.ErrFraudSuspected) || errors.Is(err, service.ErrAlreadyAttributed) {
			requestLog(c).Infow("referral_bind_suppressed", "user_id", uid, "reason", err.Error())
			response.Success(c, nil)
			return
		}
		respondReferralBindError(c, err)
		return
	}
	response.Success(c, referral)
}

// GetMyReferralBinding 查询当前用户的推荐绑定
func (h *Handler) GetMyReferralBinding(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if h.AttributionService == nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", nil)
		return
	}
	referral, err := h.AttributionService.GetBinding(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	if referral == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}
	response.Success(c, referral)
}

// AffiliateTrackClickRequest 推广点击记录请求
type AffiliateTrackClickRequest struct {
	Code string `json:"code" binding:"required"`
}

// TrackAffiliateClick 记录推广点击
func (h *Handler) TrackAffiliateClick(c *gin.Context) {
	var req AffiliateTrackClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if h.AttributionService != nil {
		if err := h.AttributionService.TrackClick(strings.TrimSpace(req.Code), c.ClientIP(), c.GetHeader("User-Agent")); err != nil {
			respondError(c, response.CodeInternal, "error.save_failed", err)
			return
		}
	}
	response.Success(c, gin.H{"ok": true})
}
