package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ctv-ledger/internal/http/response"
	"github.com/ctv-ledger/internal/repository"
	"github.com/ctv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// ListAffiliates 管理端推广账户列表
func (h *Handler) ListAffiliates(c *gin.Context) {
	if h.AffiliateService == nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	userID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("user_id")), 10, 64)
	parentID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("parent_id")), 10, 64)
	tier, _ := strconv.Atoi(strings.TrimSpace(c.Query("tier")))

	filter := repository.AffiliateListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
		UserID:   uint(userID),
		ParentID: uint(parentID),
		Tier:     tier,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active := raw == "true" || raw == "1"
		filter.IsActive = &active
	}

	rows, total, err := h.AffiliateService.AdminList(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetAffiliate 管理端推广账户详情
func (h *Handler) GetAffiliate(c *gin.Context) {
	if h.AffiliateService == nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	affiliate, err := h.AffiliateService.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.affiliate_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, affiliate)
}

// AffiliateUpdateRequest 管理端推广账户更新请求
type AffiliateUpdateRequest struct {
	Rate        *string `json:"rate"`
	IsActive    *bool   `json:"is_active"`
	IsVerified  *bool   `json:"is_verified"`
	BankName    *string `json:"bank_name"`
	BankAccount *string `json:"bank_account"`
}

// UpdateAffiliate 管理端更新推广账户
func (h *Handler) UpdateAffiliate(c *gin.Context) {
	if h.AffiliateService == nil {
		respondError(c, response.CodeInternal, "error.save_failed", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	var req AffiliateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	affiliate, err := h.AffiliateService.AdminUpdate(uint(id), service.AffiliateUpdateInput{
		Rate:        req.Rate,
		IsActive:    req.IsActive,
		IsVerified:  req.IsVerified,
		BankName:    req.BankName,
		BankAccount: req.BankAccount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.affiliate_not_found", nil)
		case errors.Is(err, service.ErrInvalidRate):
			respondError(c, response.CodeBadRequest, "error.rate_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, affiliate)
}

// ListReferrals 管理端推荐绑定列表
func (h *Handler) ListReferrals(c *gin.Context) {
	if h.ReferralRepo == nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	affiliateID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("affiliate_id")), 10, 64)
	userID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("user_id")), 10, 64)

	rows, total, err := h.ReferralRepo.List(repository.ReferralListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: uint(affiliateID),
		UserID:      uint(userID),
		IPAddress:   strings.TrimSpace(c.Query("ip_address")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListLedgerEntries 管理端佣金流水列表
func (h *Handler) ListLedgerEntries(c *gin.Context) {
	if h.LedgerRepo == nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	affiliateID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("affiliate_id")), 10, 64)

	rows, total, err := h.LedgerRepo.List(repository.LedgerEntryListFilter{
		Page:          page,
		PageSize:      pageSize,
		AffiliateID:   uint(affiliateID),
		TransactionID: strings.TrimSpace(c.Query("transaction_id")),
		EntryType:     strings.TrimSpace(c.Query("entry_type")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
