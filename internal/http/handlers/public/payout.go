package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ctv-ledger/internal/http/response"
	"github.com/ctv-ledger/internal/repository"
	"github.com/ctv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// PayoutApplyRequest 提现申请请求，金额为最小货币单位
type PayoutApplyRequest struct {
	AmountMinor int64 `json:"amount_minor" binding:"required"`
}

// ApplyPayout 提交提现申请
func (h *Handler) ApplyPayout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if h.AffiliateService == nil || h.PayoutService == nil {
		respondError(c, response.CodeInternal, "error.save_failed", nil)
		return
	}

	var req PayoutApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.AmountMinor <= 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	affiliate, err := h.AffiliateService.GetByUserID(uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.affiliate_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}

	payout, err := h.PayoutService.Request(affiliate.ID, req.AmountMinor)
	if err != nil {
		respondPayoutApplyError(c, err)
		return
	}
	response.Success(c, payout)
}

// ListMyPayouts 查询我的提现申请记录
func (h *Handler) ListMyPayouts(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if h.AffiliateService == nil || h.PayoutService == nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", nil)
		return
	}
	affiliate, err := h.AffiliateService.GetByUserID(uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.affiliate_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	status := strings.TrimSpace(c.Query("status"))

	rows, total, err := h.PayoutService.List(repository.PayoutRequestListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: affiliate.ID,
		Status:      status,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
