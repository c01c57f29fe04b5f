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

// AffiliateRegisterRequest 开通推广账户请求
type AffiliateRegisterRequest struct {
	ParentCode  string `json:"parent_code"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
}

// RegisterAffiliate 开通推广账户
func (h *Handler) RegisterAffiliate(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if h.AffiliateService == nil {
		respondError(c, response.CodeInternal, "error.save_failed", nil)
		return
	}

	var req AffiliateRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	affiliate, err := h.AffiliateService.Create(service.AffiliateCreateInput{
		UserID:      uid,
		ParentCode:  strings.TrimSpace(req.ParentCode),
		BankName:    strings.TrimSpace(req.BankName),
		BankAccount: strings.TrimSpace(req.BankAccount),
	})
	if err != nil {
		respondAffiliateRegisterError(c, err)
		return
	}
	response.Success(c, affiliate)
}

// GetAffiliateDashboard 获取推广账户看板
func (h *Handler) GetAffiliateDashboard(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if h.AffiliateService == nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", nil)
		return
	}
	data, err := h.AffiliateService.Dashboard(uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.affiliate_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, data)
}

// AffiliateBankRequest 收款账户信息请求
type AffiliateBankRequest struct {
	BankName    string `json:"bank_name" binding:"required"`
	BankAccount string `json:"bank_account" binding:"required"`
}

// UpdateAffiliateBank 更新收款账户信息
func (h *Handler) UpdateAffiliateBank(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if h.AffiliateService == nil {
		respondError(c, response.CodeInternal, "error.save_failed", nil)
		return
	}

	var req AffiliateBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	affiliate, err := h.AffiliateService.UpdateBankInfo(uid, strings.TrimSpace(req.BankName), strings.TrimSpace(req.BankAccount))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "error.affiliate_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	response.Success(c, affiliate)
}

// ListMyReferrals 查询我的推荐绑定记录
func (h *Handler) ListMyReferrals(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if h.AffiliateService == nil || h.ReferralRepo == nil {
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

	rows, total, err := h.ReferralRepo.List(repository.ReferralListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: affiliate.ID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListMyLedgerEntries 查询我的佣金流水
func (h *Handler) ListMyLedgerEntries(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if h.AffiliateService == nil || h.LedgerRepo == nil {
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
	entryType := strings.TrimSpace(c.Query("entry_type"))

	rows, total, err := h.LedgerRepo.List(repository.LedgerEntryListFilter{
		Page:        page,
		PageSize:    pageSize,
		AffiliateID: affiliate.ID,
		EntryType:   entryType,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
