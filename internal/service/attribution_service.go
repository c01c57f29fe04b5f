package service

import (
	"context"
	"strings"
	"time"

	"github.com/ctv-ledger/internal/config"
	"github.com/ctv-ledger/internal/constants"
	"github.com/ctv-ledger/internal/logger"
	"github.com/ctv-ledger/internal/models"
	"github.com/ctv-ledger/internal/repository"

	"gorm.io/gorm"
)

// AttributionService 推荐归因服务
// 调用方应将归因失败视为非致命错误，注册等主流程不依赖归因结果
type AttributionService struct {
	repo         repository.AffiliateRepository
	referralRepo repository.ReferralRepository
	fraudWindow  FraudWindow
	cfg          *config.Config
}

// NewAttributionService 创建归因服务
func NewAttributionService(
	repo repository.AffiliateRepository,
	referralRepo repository.ReferralRepository,
	fraudWindow FraudWindow,
	cfg *config.Config,
) *AttributionService {
	return &AttributionService{
		repo:         repo,
		referralRepo: referralRepo,
		fraudWindow:  fraudWindow,
		cfg:          cfg,
	}
}

// AttributeInput 归因绑定输入
type AttributeInput struct {
	Code      string
	UserID    uint
	IPAddress string
	UserAgent string
}

// Attribute 将用户绑定到推广码对应的账户
// 绑定唯一性由 referrals.user_id 唯一索引兜底，先到先得
func (s *AttributionService) Attribute(ctx context.Context, input AttributeInput) (*models.Referral, error) {
	if s.repo == nil || s.referralRepo == nil {
		return nil, ErrNotFound
	}
	code := normalizeAffiliateCode(input.Code)
	if code == "" || input.UserID == 0 {
		return nil, ErrCodeNotFound
	}

	if err := s.checkFraudWindow(ctx, input.IPAddress); err != nil {
		return nil, err
	}

	affiliate, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrCodeNotFound
	}
	if !affiliate.IsActive {
		return nil, ErrAffiliateInactive
	}
	if affiliate.UserID == input.UserID {
		return nil, ErrSelfReferral
	}

	now := time.Now()
	referral := &models.Referral{
		UserID:       input.UserID,
		AffiliateID:  affiliate.ID,
		Code:         affiliate.Code,
		IPAddress:    strings.TrimSpace(input.IPAddress),
		UserAgent:    strings.TrimSpace(input.UserAgent),
		RegisteredAt: now,
	}
	if err := s.referralRepo.Create(referral); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyAttributed
		}
		return nil, err
	}

	logger.Infow("attribution_bound",
		"user_id", input.UserID,
		"affiliate_id", affiliate.ID,
		"code", affiliate.Code,
		"ip", referral.IPAddress,
	)
	return referral, nil
}

// TrackClick 记录推广链接点击，尽力而为
func (s *AttributionService) TrackClick(code, ip, userAgent string) error {
	if s.repo == nil {
		return nil
	}
	normalized := normalizeAffiliateCode(code)
	if normalized == "" {
		return nil
	}
	affiliate, err := s.repo.GetByCode(normalized)
	if err != nil {
		return err
	}
	if affiliate == nil || !affiliate.IsActive {
		return nil
	}
	return s.repo.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Affiliate{}).
			Where("id = ?", affiliate.ID).
			UpdateColumn("total_clicks", gorm.Expr("total_clicks + 1")).Error
	})
}

// GetBinding 查询用户绑定记录，未绑定时返回 nil
func (s *AttributionService) GetBinding(userID uint) (*models.Referral, error) {
	if s.referralRepo == nil {
		return nil, ErrNotFound
	}
	return s.referralRepo.GetByUserID(userID)
}

func (s *AttributionService) checkFraudWindow(ctx context.Context, ip string) error {
	if s.fraudWindow == nil {
		return nil
	}
	trimmed := strings.TrimSpace(ip)
	if trimmed == "" {
		return nil
	}
	windowSeconds, maxPerIP := s.fraudLimits()
	count, err := s.fraudWindow.Incr(ctx, trimmed, windowSeconds)
	if err != nil {
		// 计数器不可用时放行，归因防刷属于降级可接受的保护
		logger.Warnw("attribution_fraud_window_unavailable", "error", err, "ip", trimmed)
		return nil
	}
	if count > int64(maxPerIP) {
		logger.Warnw("attribution_rejected_fraud", "ip", trimmed, "count", count, "limit", maxPerIP)
		return ErrFraudSuspected
	}
	return nil
}

func (s *AttributionService) fraudLimits() (int, int) {
	windowSeconds := 0
	maxPerIP := 0
	if s.cfg != nil {
		windowSeconds = s.cfg.Affiliate.FraudWindowSeconds
		maxPerIP = s.cfg.Affiliate.FraudMaxPerIP
	}
	if windowSeconds <= 0 {
		windowSeconds = constants.FraudWindowSecondsDefault
	}
	if maxPerIP <= 0 {
		maxPerIP = constants.FraudMaxPerIPDefault
	}
	return windowSeconds, maxPerIP
}
