package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ctv-ledger/internal/config"
	"github.com/ctv-ledger/internal/constants"
	"github.com/ctv-ledger/internal/models"
	"github.com/ctv-ledger/internal/repository"
)

// AffiliateService 推广账户业务服务
type AffiliateService struct {
	repo         repository.AffiliateRepository
	referralRepo repository.ReferralRepository
	ledgerRepo   repository.LedgerRepository
	cfg          *config.Config
}

// NewAffiliateService 创建推广账户服务
func NewAffiliateService(
	repo repository.AffiliateRepository,
	referralRepo repository.ReferralRepository,
	ledgerRepo repository.LedgerRepository,
	cfg *config.Config,
) *AffiliateService {
	return &AffiliateService{
		repo:         repo,
		referralRepo: referralRepo,
		ledgerRepo:   ledgerRepo,
		cfg:          cfg,
	}
}

// AffiliateCreateInput 开通推广账户输入
type AffiliateCreateInput struct {
	UserID      uint
	ParentCode  string
	Rate        string
	BankName    string
	BankAccount string
}

// AffiliateUpdateInput 管理端更新推广账户输入
type AffiliateUpdateInput struct {
	Rate        *string
	IsActive    *bool
	IsVerified  *bool
	BankName    *string
	BankAccount *string
}

// AffiliateDashboard 推广账户中心数据
type AffiliateDashboard struct {
	Code           string      `json:"code"`
	ReferralURL    string      `json:"referral_url"`
	Tier           int         `json:"tier"`
	IsActive       bool        `json:"is_active"`
	IsVerified     bool        `json:"is_verified"`
	CommissionRate models.Rate `json:"commission_rate"`
	TotalEarned    int64       `json:"total_earned"`
	NetworkEarned  int64       `json:"network_earned"`
	PendingPayout  int64       `json:"pending_payout"`
	PaidOut        int64       `json:"paid_out"`
	TotalClicks    int64       `json:"total_clicks"`
	ReferralCount  int64       `json:"referral_count"`
	ConvertedCount int64       `json:"converted_count"`
	ChildCount     int64       `json:"child_count"`
}

// AffiliateAdminItem 后台推广账户列表项
type AffiliateAdminItem struct {
	Affiliate models.Affiliate                   `json:"affiliate"`
	Stats     repository.AffiliateStatsAggregate `json:"stats"`
}

// Create 开通推广账户：层级由上级推导，推广码冲突时重试生成
func (s *AffiliateService) Create(input AffiliateCreateInput) (*models.Affiliate, error) {
	if input.UserID == 0 || s.repo == nil {
		return nil, ErrNotFound
	}

	existing, err := s.repo.GetByUserID(input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAffiliateExists
	}

	rate, err := s.resolveRate(input.Rate)
	if err != nil {
		return nil, err
	}

	var parentID *uint
	tier := 1
	if parentCode := strings.TrimSpace(input.ParentCode); parentCode != "" {
		parent, err := s.repo.GetByCode(parentCode)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
		if parent.Tier >= constants.MaxTier {
			return nil, ErrTierLimitReached
		}
		id := parent.ID
		parentID = &id
		tier = parent.Tier + 1
	}

	const maxRetry = 8
	for i := 0; i < maxRetry; i++ {
		code, genErr := generateAffiliateCode()
		if genErr != nil {
			return nil, genErr
		}
		affiliate := &models.Affiliate{
			UserID:         input.UserID,
			Code:           code,
			ParentID:       parentID,
			Tier:           tier,
			CommissionRate: rate,
			IsActive:       true,
			BankName:       strings.TrimSpace(input.BankName),
			BankAccount:    strings.TrimSpace(input.BankAccount),
		}
		if err := s.repo.Create(affiliate); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		return affiliate, nil
	}
	return nil, ErrAffiliateCodeInvalid
}

// GetByID 按ID获取推广账户
func (s *AffiliateService) GetByID(id uint) (*models.Affiliate, error) {
	if s.repo == nil {
		return nil, ErrNotFound
	}
	affiliate, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrNotFound
	}
	return affiliate, nil
}

// GetByUserID 按用户获取推广账户
func (s *AffiliateService) GetByUserID(userID uint) (*models.Affiliate, error) {
	if s.repo == nil {
		return nil, ErrNotFound
	}
	affiliate, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrNotFound
	}
	return affiliate, nil
}

// Dashboard 推广账户中心数据
func (s *AffiliateService) Dashboard(userID uint) (*AffiliateDashboard, error) {
	affiliate, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.GetStatsBatch([]uint{affiliate.ID})
	if err != nil {
		return nil, err
	}
	item := stats[affiliate.ID]
	return &AffiliateDashboard{
		Code:           affiliate.Code,
		ReferralURL:    s.ReferralURL(affiliate.Code),
		Tier:           affiliate.Tier,
		IsActive:       affiliate.IsActive,
		IsVerified:     affiliate.IsVerified,
		CommissionRate: affiliate.CommissionRate,
		TotalEarned:    affiliate.TotalEarned,
		NetworkEarned:  affiliate.NetworkEarned,
		PendingPayout:  affiliate.PendingPayout,
		PaidOut:        affiliate.PaidOut,
		TotalClicks:    affiliate.TotalClicks,
		ReferralCount:  item.ReferralCount,
		ConvertedCount: item.ConvertedCount,
		ChildCount:     item.ChildCount,
	}, nil
}

// AdminList 后台推广账户列表（带统计）
func (s *AffiliateService) AdminList(filter repository.AffiliateListFilter) ([]AffiliateAdminItem, int64, error) {
	rows, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	stats, err := s.repo.GetStatsBatch(ids)
	if err != nil {
		return nil, 0, err
	}
	items := make([]AffiliateAdminItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, AffiliateAdminItem{
			Affiliate: row,
			Stats:     stats[row.ID],
		})
	}
	return items, total, nil
}

// AdminUpdate 管理端更新推广账户
func (s *AffiliateService) AdminUpdate(id uint, input AffiliateUpdateInput) (*models.Affiliate, error) {
	affiliate, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if input.Rate != nil {
		rate, err := models.NewRateFromString(strings.TrimSpace(*input.Rate))
		if err != nil || !rate.Valid() {
			return nil, ErrInvalidRate
		}
		affiliate.CommissionRate = rate
	}
	if input.IsActive != nil {
		affiliate.IsActive = *input.IsActive
	}
	if input.IsVerified != nil {
		affiliate.IsVerified = *input.IsVerified
	}
	if input.BankName != nil {
		affiliate.BankName = strings.TrimSpace(*input.BankName)
	}
	if input.BankAccount != nil {
		affiliate.BankAccount = strings.TrimSpace(*input.BankAccount)
	}
	if err := s.repo.Update(affiliate); err != nil {
		return nil, err
	}
	return affiliate, nil
}

// UpdateBankInfo 推广用户更新收款信息
func (s *AffiliateService) UpdateBankInfo(userID uint, bankName, bankAccount string) (*models.Affiliate, error) {
	affiliate, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	affiliate.BankName = strings.TrimSpace(bankName)
	affiliate.BankAccount = strings.TrimSpace(bankAccount)
	// 收款信息变更后需要重新审核
	affiliate.IsVerified = false
	if err := s.repo.Update(affiliate); err != nil {
		return nil, err
	}
	return affiliate, nil
}

// ReferralURL 按站点域名拼接推广链接
func (s *AffiliateService) ReferralURL(code string) string {
	domain := ""
	if s.cfg != nil {
		domain = strings.TrimSpace(s.cfg.Affiliate.SiteDomain)
	}
	if domain == "" {
		domain = constants.SiteDomainDefault
	}
	return fmt.Sprintf("https://%s/?ref=%s", domain, normalizeAffiliateCode(code))
}

func (s *AffiliateService) resolveRate(raw string) (models.Rate, error) {
	text := strings.TrimSpace(raw)
	if text == "" && s.cfg != nil {
		text = strings.TrimSpace(s.cfg.Affiliate.DefaultRate)
	}
	if text == "" {
		text = "0.10"
	}
	rate, err := models.NewRateFromString(text)
	if err != nil || !rate.Valid() {
		return models.Rate{}, ErrInvalidRate
	}
	return rate, nil
}

func normalizeAffiliateCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func generateAffiliateCode() (string, error) {
	buf := make([]byte, constants.AffiliateCodeRandLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return constants.AffiliateCodePrefix + strings.ToUpper(hex.EncodeToString(buf)), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func nowPtr(t time.Time) *time.Time {
	return &t
}
