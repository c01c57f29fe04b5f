package service

import (
	"context"
	"strings"
	"time"

	"github.com/ctv-ledger/internal/constants"
	"github.com/ctv-ledger/internal/logger"
	"github.com/ctv-ledger/internal/models"
	"github.com/ctv-ledger/internal/queue"
	"github.com/ctv-ledger/internal/repository"

	"gorm.io/gorm"
)

// CommissionService 佣金结算服务
type CommissionService struct {
	affiliateRepo repository.AffiliateRepository
	referralRepo  repository.ReferralRepository
	ledgerRepo    repository.LedgerRepository
	queueClient   *queue.Client
}

// NewCommissionService 创建佣金结算服务
func NewCommissionService(
	affiliateRepo repository.AffiliateRepository,
	referralRepo repository.ReferralRepository,
	ledgerRepo repository.LedgerRepository,
	queueClient *queue.Client,
) *CommissionService {
	return &CommissionService{
		affiliateRepo: affiliateRepo,
		referralRepo:  referralRepo,
		ledgerRepo:    ledgerRepo,
		queueClient:   queueClient,
	}
}

// SettledTransaction 外部支付系统的交易结算事件
type SettledTransaction struct {
	TransactionID string `json:"transaction_id"`
	UserID        uint   `json:"user_id"`
	GrossMinor    int64  `json:"gross_minor"`
	Currency      string `json:"currency"`
}

// HandleTransactionSettled 处理交易结算：直推佣金入账并触发团队佣金上溯
// 同一交易重复投递时流水唯一键拦截，整体幂等
func (s *CommissionService) HandleTransactionSettled(ctx context.Context, input SettledTransaction) error {
	txID := strings.TrimSpace(input.TransactionID)
	if txID == "" || input.UserID == 0 || input.GrossMinor <= 0 {
		return ErrNotFound
	}
	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}

	referral, err := s.referralRepo.GetByUserID(input.UserID)
	if err != nil {
		return err
	}
	if referral == nil {
		// 未绑定推广关系的交易不产生佣金
		return nil
	}

	affiliate, err := s.affiliateRepo.GetByID(referral.AffiliateID)
	if err != nil {
		return err
	}
	if affiliate == nil {
		logger.Errorw("commission_affiliate_missing",
			"transaction_id", txID,
			"affiliate_id", referral.AffiliateID,
		)
		return nil
	}
	if !affiliate.IsActive {
		logger.Infow("commission_skipped_inactive",
			"transaction_id", txID,
			"affiliate_id", affiliate.ID,
		)
		return nil
	}

	direct := affiliate.CommissionRate.ApplyFloor(input.GrossMinor)
	now := time.Now()
	alreadySettled := false

	err = s.affiliateRepo.Transaction(func(tx *gorm.DB) error {
		entry := &models.LedgerEntry{
			TransactionID: txID,
			AffiliateID:   affiliate.ID,
			EntryType:     models.LedgerEntryTypeDirect,
			AmountMinor:   direct,
			Currency:      currency,
		}
		if err := s.ledgerRepo.WithTx(tx).Create(entry); err != nil {
			if isUniqueViolation(err) {
				alreadySettled = true
				return nil
			}
			return err
		}
		if direct > 0 {
			rows, err := s.affiliateRepo.WithTx(tx).CreditDirect(affiliate.ID, direct)
			if err != nil {
				return err
			}
			if rows == 0 {
				return ErrNotFound
			}
		}
		return s.referralRepo.WithTx(tx).RecordSettlement(input.UserID, input.GrossMinor, direct, now)
	})
	if err != nil {
		return err
	}
	if alreadySettled {
		logger.Infow("commission_duplicate_transaction", "transaction_id", txID, "affiliate_id", affiliate.ID)
	} else {
		logger.Infow("commission_direct_credited",
			"transaction_id", txID,
			"affiliate_id", affiliate.ID,
			"amount_minor", direct,
			"gross_minor", input.GrossMinor,
		)
	}

	// 重复投递也再次触发上溯：上溯本身由流水唯一键去重，
	// 这样首次上溯丢失后重放结算即可补齐团队佣金
	s.dispatchPropagation(ctx, queue.NetworkPropagatePayload{
		TransactionID: txID,
		AffiliateID:   affiliate.ID,
		AmountMinor:   direct,
		Currency:      currency,
	})
	return nil
}

// dispatchPropagation 投递团队佣金任务，队列不可用时退化为同步执行
func (s *CommissionService) dispatchPropagation(ctx context.Context, payload queue.NetworkPropagatePayload) {
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueNetworkPropagate(payload)
		if err == nil {
			return
		}
		logger.Warnw("propagation_enqueue_failed",
			"error", err,
			"transaction_id", payload.TransactionID,
		)
	}
	if err := s.PropagateNetwork(ctx, payload.TransactionID, payload.AffiliateID, payload.AmountMinor, payload.Currency); err != nil {
		logger.Errorw("propagation_inline_failed",
			"error", err,
			"transaction_id", payload.TransactionID,
			"affiliate_id", payload.AffiliateID,
		)
	}
}

// PropagateNetwork 沿上级链路入账团队佣金，最多上溯两级
// 每级按直推佣金原额计入 network_earned，由流水唯一键保证恰好一次；
// 断裂的上级引用记录日志后终止，不回滚直推佣金
func (s *CommissionService) PropagateNetwork(_ context.Context, transactionID string, affiliateID uint, amountMinor int64, currency string) error {
	txID := strings.TrimSpace(transactionID)
	if txID == "" || affiliateID == 0 || amountMinor <= 0 {
		return nil
	}
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}

	earner, err := s.affiliateRepo.GetByID(affiliateID)
	if err != nil {
		return err
	}
	if earner == nil {
		logger.Errorw("propagation_earner_missing", "transaction_id", txID, "affiliate_id", affiliateID)
		return nil
	}

	current := earner
	for depth := 1; depth <= constants.MaxNetworkDepth; depth++ {
		if current.ParentID == nil {
			break
		}
		parent, err := s.affiliateRepo.GetByID(*current.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			logger.Errorw("propagation_dangling_parent",
				"transaction_id", txID,
				"affiliate_id", current.ID,
				"parent_id", *current.ParentID,
			)
			return nil
		}

		if err := s.creditNetworkOnce(txID, parent.ID, earner.ID, amountMinor, currency); err != nil {
			return err
		}
		current = parent
	}
	return nil
}

func (s *CommissionService) creditNetworkOnce(txID string, ancestorID, sourceID uint, amountMinor int64, currency string) error {
	var duplicated bool
	err := s.affiliateRepo.Transaction(func(tx *gorm.DB) error {
		entry := &models.LedgerEntry{
			TransactionID:     txID,
			AffiliateID:       ancestorID,
			EntryType:         models.LedgerEntryTypeNetwork,
			AmountMinor:       amountMinor,
			Currency:          currency,
			SourceAffiliateID: &sourceID,
		}
		if err := s.ledgerRepo.WithTx(tx).Create(entry); err != nil {
			if isUniqueViolation(err) {
				duplicated = true
				return nil
			}
			return err
		}
		if amountMinor <= 0 {
			return nil
		}
		_, err := s.affiliateRepo.WithTx(tx).CreditNetwork(ancestorID, amountMinor)
		return err
	})
	if err != nil {
		return err
	}
	if duplicated {
		logger.Infow("propagation_duplicate_entry", "transaction_id", txID, "affiliate_id", ancestorID)
		return nil
	}
	logger.Infow("propagation_network_credited",
		"transaction_id", txID,
		"affiliate_id", ancestorID,
		"source_affiliate_id", sourceID,
		"amount_minor", amountMinor,
	)
	return nil
}
