package repository

import (
	"errors"
	"time"

	"github.com/ctv-ledger/internal/models"

	"gorm.io/gorm"
)

// ReferralRepository 推荐绑定数据访问接口
type ReferralRepository interface {
	WithTx(tx *gorm.DB) ReferralRepository

	Create(referral *models.Referral) error
	GetByUserID(userID uint) (*models.Referral, error)
	List(filter ReferralListFilter) ([]models.Referral, int64, error)
	CountByAffiliate(affiliateID uint) (int64, error)
	RecordSettlement(userID uint, revenueMinor, commissionMinor int64, settledAt time.Time) error
}

// GormReferralRepository GORM 推荐绑定仓储
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository 创建推荐绑定仓储
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReferralRepository) WithTx(tx *gorm.DB) ReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

// Create 创建绑定记录（user_id 唯一索引保证首绑生效）
func (r *GormReferralRepository) Create(referral *models.Referral) error {
	return r.db.Create(referral).Error
}

// GetByUserID 按用户获取绑定记录
func (r *GormReferralRepository) GetByUserID(userID uint) (*models.Referral, error) {
	if userID == 0 {
		return nil, nil
	}
	var referral models.Referral
	if err := r.db.Where("user_id = ?", userID).First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// List 查询绑定记录列表
func (r *GormReferralRepository) List(filter ReferralListFilter) ([]models.Referral, int64, error) {
	query := r.db.Model(&models.Referral{})
	if filter.AffiliateID != 0 {
		query = query.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.IPAddress != "" {
		query = query.Where("ip_address = ?", filter.IPAddress)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Referral
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountByAffiliate 统计推广账户名下绑定数
func (r *GormReferralRepository) CountByAffiliate(affiliateID uint) (int64, error) {
	if affiliateID == 0 {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.Referral{}).Where("affiliate_id = ?", affiliateID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// RecordSettlement 累计结算流水与佣金，首次结算时记录首单时间
func (r *GormReferralRepository) RecordSettlement(userID uint, revenueMinor, commissionMinor int64, settledAt time.Time) error {
	if userID == 0 {
		return errors.New("invalid referral settlement params")
	}
	return r.db.Model(&models.Referral{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"total_revenue":     gorm.Expr("total_revenue + ?", revenueMinor),
			"total_commission":  gorm.Expr("total_commission + ?", commissionMinor),
			"first_purchase_at": gorm.Expr("COALESCE(first_purchase_at, ?)", settledAt),
			"updated_at":        settledAt,
		}).Error
}
