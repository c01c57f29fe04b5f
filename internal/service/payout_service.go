package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/ctv-ledger/internal/config"
	"github.com/ctv-ledger/internal/constants"
	"github.com/ctv-ledger/internal/logger"
	"github.com/ctv-ledger/internal/models"
	"github.com/ctv-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PayoutService 提现工作流服务
type PayoutService struct {
	affiliateRepo repository.AffiliateRepository
	payoutRepo    repository.PayoutRepository
	cfg           *config.Config
}

// NewPayoutService 创建提现服务
func NewPayoutService(
	affiliateRepo repository.AffiliateRepository,
	payoutRepo repository.PayoutRepository,
	cfg *config.Config,
) *PayoutService {
	return &PayoutService{
		affiliateRepo: affiliateRepo,
		payoutRepo:    payoutRepo,
		cfg:           cfg,
	}
}

// Request 创建提现申请
// 冻结在同一条条件 UPDATE 内完成：余额不足时零行生效，不存在读改写窗口
func (s *PayoutService) Request(affiliateID uint, amountMinor int64) (*models.PayoutRequest, error) {
	if s.affiliateRepo == nil || s.payoutRepo == nil {
		return nil, ErrNotFound
	}
	affiliate, err := s.affiliateRepo.GetByID(affiliateID)
	if err != nil {
		return nil, err
	}
	if affiliate == nil {
		return nil, ErrNotFound
	}
	if amountMinor < s.minPayoutMinor() {
		return nil, ErrAmountTooSmall
	}
	if strings.TrimSpace(affiliate.BankAccount) == "" {
		return nil, ErrBankInfoMissing
	}
	if !affiliate.IsVerified {
		return nil, ErrBankNotVerified
	}

	now := time.Now()
	request := &models.PayoutRequest{
		PayoutNo:    generatePayoutNo(now),
		AffiliateID: affiliate.ID,
		AmountMinor: amountMinor,
		Currency:    constants.SiteCurrencyDefault,
		Status:      models.PayoutStatusPending,
		BankName:    affiliate.BankName,
		BankAccount: affiliate.BankAccount,
		RequestedAt: now,
	}

	err = s.affiliateRepo.Transaction(func(tx *gorm.DB) error {
		rows, err := s.affiliateRepo.WithTx(tx).ReservePayout(affiliate.ID, amountMinor)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInsufficientBalance
		}
		return s.payoutRepo.WithTx(tx).Create(request)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("payout_requested",
		"payout_no", request.PayoutNo,
		"affiliate_id", affiliate.ID,
		"amount_minor", amountMinor,
	)
	return request, nil
}

// Approve 审核通过（PENDING -> APPROVED）
func (s *PayoutService) Approve(id, adminID uint) (*models.PayoutRequest, error) {
	now := time.Now()
	return s.transition(id, []string{models.PayoutStatusPending}, models.PayoutStatusApproved, map[string]interface{}{
		"approved_at":  now,
		"processed_by": adminID,
	})
}

// MarkProcessing 开始打款（APPROVED -> PROCESSING）
func (s *PayoutService) MarkProcessing(id, adminID uint) (*models.PayoutRequest, error) {
	now := time.Now()
	return s.transition(id, []string{models.PayoutStatusApproved}, models.PayoutStatusProcessing, map[string]interface{}{
		"processing_at": now,
		"processed_by":  adminID,
	})
}

// Complete 打款完成（PROCESSING -> COMPLETED），冻结金额转入累计已打款
func (s *PayoutService) Complete(id, adminID uint) (*models.PayoutRequest, error) {
	if s.payoutRepo == nil {
		return nil, ErrNotFound
	}
	var completed *models.PayoutRequest
	err := s.affiliateRepo.Transaction(func(tx *gorm.DB) error {
		payoutRepo := s.payoutRepo.WithTx(tx)
		request, err := payoutRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrNotFound
		}
		now := time.Now()
		rows, err := payoutRepo.TransitionStatus(id, []string{models.PayoutStatusProcessing}, models.PayoutStatusCompleted, map[string]interface{}{
			"completed_at": now,
			"processed_by": adminID,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInvalidStatusTransition
		}
		if err := s.affiliateRepo.WithTx(tx).AddPaidOut(request.AffiliateID, request.AmountMinor); err != nil {
			return err
		}
		completed = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("payout_completed",
		"payout_no", completed.PayoutNo,
		"affiliate_id", completed.AffiliateID,
		"amount_minor", completed.AmountMinor,
	)
	return s.payoutRepo.GetByID(id)
}

// Reject 驳回申请（PENDING/APPROVED -> REJECTED），同事务内返还冻结金额
func (s *PayoutService) Reject(id, adminID uint, reason string) (*models.PayoutRequest, error) {
	if s.payoutRepo == nil {
		return nil, ErrNotFound
	}
	var rejected *models.PayoutRequest
	err := s.affiliateRepo.Transaction(func(tx *gorm.DB) error {
		payoutRepo := s.payoutRepo.WithTx(tx)
		request, err := payoutRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrNotFound
		}
		now := time.Now()
		rows, err := payoutRepo.TransitionStatus(id,
			[]string{models.PayoutStatusPending, models.PayoutStatusApproved},
			models.PayoutStatusRejected,
			map[string]interface{}{
				"rejected_at":   now,
				"processed_by":  adminID,
				"reject_reason": strings.TrimSpace(reason),
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInvalidStatusTransition
		}
		if err := s.affiliateRepo.WithTx(tx).RestorePayout(request.AffiliateID, request.AmountMinor); err != nil {
			return err
		}
		rejected = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("payout_rejected",
		"payout_no", rejected.PayoutNo,
		"affiliate_id", rejected.AffiliateID,
		"amount_minor", rejected.AmountMinor,
		"reason", strings.TrimSpace(reason),
	)
	return s.payoutRepo.GetByID(id)
}

// GetByID 查询提现申请
func (s *PayoutService) GetByID(id uint) (*models.PayoutRequest, error) {
	if s.payoutRepo == nil {
		return nil, ErrNotFound
	}
	request, err := s.payoutRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrNotFound
	}
	return request, nil
}

// List 查询提现申请列表
func (s *PayoutService) List(filter repository.PayoutRequestListFilter) ([]models.PayoutRequest, int64, error) {
	if s.payoutRepo == nil {
		return nil, 0, ErrNotFound
	}
	return s.payoutRepo.List(filter)
}

func (s *PayoutService) transition(id uint, fromStatuses []string, toStatus string, updates map[string]interface{}) (*models.PayoutRequest, error) {
	if s.payoutRepo == nil {
		return nil, ErrNotFound
	}
	request, err := s.payoutRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrNotFound
	}
	rows, err := s.payoutRepo.TransitionStatus(id, fromStatuses, toStatus, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInvalidStatusTransition
	}
	logger.Infow("payout_status_changed",
		"payout_no", request.PayoutNo,
		"from", request.Status,
		"to", toStatus,
	)
	return s.payoutRepo.GetByID(id)
}

func (s *PayoutService) minPayoutMinor() int64 {
	if s.cfg != nil && s.cfg.Affiliate.MinPayoutMinor > 0 {
		return s.cfg.Affiliate.MinPayoutMinor
	}
	return constants.MinPayoutMinorDefault
}

func generatePayoutNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s%s%s", constants.PayoutNoPrefix, now.Format("20060102150405"), suffix)
}
