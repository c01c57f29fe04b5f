package repository

import (
	"errors"
	"strings"

	"github.com/ctv-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AffiliateRepository 推广账户数据访问接口
type AffiliateRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AffiliateRepository

	GetByID(id uint) (*models.Affiliate, error)
	GetByIDForUpdate(id uint) (*models.Affiliate, error)
	GetByUserID(userID uint) (*models.Affiliate, error)
	GetByCode(code string) (*models.Affiliate, error)
	Create(affiliate *models.Affiliate) error
	Update(affiliate *models.Affiliate) error
	List(filter AffiliateListFilter) ([]models.Affiliate, int64, error)

	CreditDirect(id uint, amountMinor int64) (int64, error)
	CreditNetwork(id uint, amountMinor int64) (int64, error)
	ReservePayout(id uint, amountMinor int64) (int64, error)
	RestorePayout(id uint, amountMinor int64) error
	AddPaidOut(id uint, amountMinor int64) error

	GetStatsBatch(affiliateIDs []uint) (map[uint]AffiliateStatsAggregate, error)
}

// GormAffiliateRepository GORM 推广账户仓储
type GormAffiliateRepository struct {
	db *gorm.DB
}

// NewAffiliateRepository 创建推广账户仓储
func NewAffiliateRepository(db *gorm.DB) *GormAffiliateRepository {
	return &GormAffiliateRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAffiliateRepository) WithTx(tx *gorm.DB) AffiliateRepository {
	if tx == nil {
		return r
	}
	return &GormAffiliateRepository{db: tx}
}

// Transaction 执行事务
func (r *GormAffiliateRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID获取推广账户
func (r *GormAffiliateRepository) GetByID(id uint) (*models.Affiliate, error) {
	if id == 0 {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.First(&affiliate, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

// GetByIDForUpdate 按ID锁定获取推广账户
func (r *GormAffiliateRepository) GetByIDForUpdate(id uint) (*models.Affiliate, error) {
	if id == 0 {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&affiliate, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

// GetByUserID 按用户ID获取推广账户
func (r *GormAffiliateRepository) GetByUserID(userID uint) (*models.Affiliate, error) {
	if userID == 0 {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Where("user_id = ?", userID).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

// GetByCode 按推广码获取推广账户
func (r *GormAffiliateRepository) GetByCode(code string) (*models.Affiliate, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var affiliate models.Affiliate
	if err := r.db.Where("code = ?", normalized).First(&affiliate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &affiliate, nil
}

// Create 创建推广账户
func (r *GormAffiliateRepository) Create(affiliate *models.Affiliate) error {
	return r.db.Create(affiliate).Error
}

// Update 更新推广账户
func (r *GormAffiliateRepository) Update(affiliate *models.Affiliate) error {
	return r.db.Save(affiliate).Error
}

// List 查询推广账户列表
func (r *GormAffiliateRepository) List(filter AffiliateListFilter) ([]models.Affiliate, int64, error) {
	query := r.db.Model(&models.Affiliate{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.ParentID != 0 {
		query = query.Where("parent_id = ?", filter.ParentID)
	}
	if filter.Tier != 0 {
		query = query.Where("tier = ?", filter.Tier)
	}
	if code := strings.TrimSpace(filter.Code); code != "" {
		query = query.Where("code = ?", strings.ToUpper(code))
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + strings.ToUpper(keyword) + "%"
		query = query.Where("(code LIKE ? OR bank_account LIKE ?)", like, "%"+keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Affiliate
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CreditDirect 入账直推佣金：累计收益与可提现余额在同一条 UPDATE 内同步增加
func (r *GormAffiliateRepository) CreditDirect(id uint, amountMinor int64) (int64, error) {
	if id == 0 || amountMinor <= 0 {
		return 0, errors.New("invalid direct credit params")
	}
	result := r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_earned":   gorm.Expr("total_earned + ?", amountMinor),
			"pending_payout": gorm.Expr("pending_payout + ?", amountMinor),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CreditNetwork 入账团队佣金（仅累计展示字段，不进入可提现余额）
func (r *GormAffiliateRepository) CreditNetwork(id uint, amountMinor int64) (int64, error) {
	if id == 0 || amountMinor <= 0 {
		return 0, errors.New("invalid network credit params")
	}
	result := r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		UpdateColumn("network_earned", gorm.Expr("network_earned + ?", amountMinor))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReservePayout 冻结提现金额：余额充足才扣减，返回受影响行数供调用方判断
func (r *GormAffiliateRepository) ReservePayout(id uint, amountMinor int64) (int64, error) {
	if id == 0 || amountMinor <= 0 {
		return 0, errors.New("invalid payout reserve params")
	}
	result := r.db.Model(&models.Affiliate{}).
		Where("id = ? AND pending_payout >= ?", id, amountMinor).
		UpdateColumn("pending_payout", gorm.Expr("pending_payout - ?", amountMinor))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// RestorePayout 驳回后返还冻结金额
func (r *GormAffiliateRepository) RestorePayout(id uint, amountMinor int64) error {
	if id == 0 || amountMinor <= 0 {
		return errors.New("invalid payout restore params")
	}
	return r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		UpdateColumn("pending_payout", gorm.Expr("pending_payout + ?", amountMinor)).Error
}

// AddPaidOut 提现完成后累计已打款金额
func (r *GormAffiliateRepository) AddPaidOut(id uint, amountMinor int64) error {
	if id == 0 || amountMinor <= 0 {
		return errors.New("invalid paid out params")
	}
	return r.db.Model(&models.Affiliate{}).
		Where("id = ?", id).
		UpdateColumn("paid_out", gorm.Expr("paid_out + ?", amountMinor)).Error
}

// GetStatsBatch 批量汇总推广账户统计信息
func (r *GormAffiliateRepository) GetStatsBatch(affiliateIDs []uint) (map[uint]AffiliateStatsAggregate, error) {
	result := make(map[uint]AffiliateStatsAggregate, len(affiliateIDs))
	if len(affiliateIDs) == 0 {
		return result, nil
	}
	for _, id := range affiliateIDs {
		if id == 0 {
			continue
		}
		result[id] = AffiliateStatsAggregate{}
	}

	var referralRows []struct {
		AffiliateID uint  `gorm:"column:affiliate_id"`
		Total       int64 `gorm:"column:total"`
	}
	if err := r.db.Model(&models.Referral{}).
		Select("affiliate_id, COUNT(*) AS total").
		Where("affiliate_id IN ?", affiliateIDs).
		Group("affiliate_id").
		Scan(&referralRows).Error; err != nil {
		return nil, err
	}
	for _, row := range referralRows {
		item := result[row.AffiliateID]
		item.ReferralCount = row.Total
		result[row.AffiliateID] = item
	}

	var convertedRows []struct {
		AffiliateID uint  `gorm:"column:affiliate_id"`
		Total       int64 `gorm:"column:total"`
	}
	if err := r.db.Model(&models.Referral{}).
		Select("affiliate_id, COUNT(*) AS total").
		Where("affiliate_id IN ? AND first_purchase_at IS NOT NULL", affiliateIDs).
		Group("affiliate_id").
		Scan(&convertedRows).Error; err != nil {
		return nil, err
	}
	for _, row := range convertedRows {
		item := result[row.AffiliateID]
		item.ConvertedCount = row.Total
		result[row.AffiliateID] = item
	}

	var childRows []struct {
		ParentID uint  `gorm:"column:parent_id"`
		Total    int64 `gorm:"column:total"`
	}
	if err := r.db.Model(&models.Affiliate{}).
		Select("parent_id, COUNT(*) AS total").
		Where("parent_id IN ?", affiliateIDs).
		Group("parent_id").
		Scan(&childRows).Error; err != nil {
		return nil, err
	}
	for _, row := range childRows {
		item := result[row.ParentID]
		item.ChildCount = row.Total
		result[row.ParentID] = item
	}

	return result, nil
}
