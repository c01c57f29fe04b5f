package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ctv-ledger/internal/http/response"
	"github.com/ctv-ledger/internal/models"
	"github.com/ctv-ledger/internal/repository"
	"github.com/ctv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// ListPayouts 管理端提现申请列表
func (h *Handler) ListPayouts(c *gin.Context) {
	if h.PayoutService == nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	affiliateID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("affiliate_id")), 10, 64)

	rows, total, err := h.PayoutService.List(repository.PayoutRequestListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: uint(affiliateID),
		PayoutNo:    strings.TrimSpace(c.Query("payout_no")),
		Status:      strings.ToUpper(strings.TrimSpace(c.Query("status"))),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetPayout 管理端提现申请详情
func (h *Handler) GetPayout(c *gin.Context) {
	if h.PayoutService == nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", nil)
		return
	}
	id, ok := parsePayoutID(c)
	if !ok {
		return
	}
	payout, err := h.PayoutService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.payout_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, payout)
}

// ApprovePayout 审核通过提现申请
func (h *Handler) ApprovePayout(c *gin.Context) {
	h.reviewPayout(c, func(id, adminID uint) (*models.PayoutRequest, error) {
		return h.PayoutService.Approve(id, adminID)
	})
}

// ProcessPayout 将提现申请标记为打款中
func (h *Handler) ProcessPayout(c *gin.Context) {
	h.reviewPayout(c, func(id, adminID uint) (*models.PayoutRequest, error) {
		return h.PayoutService.MarkProcessing(id, adminID)
	})
}

// CompletePayout 标记提现申请打款完成
func (h *Handler) CompletePayout(c *gin.Context) {
	h.reviewPayout(c, func(id, adminID uint) (*models.PayoutRequest, error) {
		return h.PayoutService.Complete(id, adminID)
	})
}

// PayoutRejectRequest 拒绝提现请求
type PayoutRejectRequest struct {
	Reason string `json:"reason"`
}

// RejectPayout 拒绝提现申请并返还余额
func (h *Handler) RejectPayout(c *gin.Context) {
	var req PayoutRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	h.reviewPayout(c, func(id, adminID uint) (*models.PayoutRequest, error) {
		return h.PayoutService.Reject(id, adminID, strings.TrimSpace(req.Reason))
	})
}

func (h *Handler) reviewPayout(c *gin.Context, review func(id, adminID uint) (*models.PayoutRequest, error)) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	if h.PayoutService == nil {
		respondError(c, response.CodeInternal, "error.save_failed", nil)
		return
	}
	id, ok := parsePayoutID(c)
	if !ok {
		return
	}

	payout, err := review(id, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.payout_not_found", nil)
		case errors.Is(err, service.ErrInvalidStatusTransition):
			respondError(c, response.CodeBadRequest, "error.payout_status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, payout)
}

func parsePayoutID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}
