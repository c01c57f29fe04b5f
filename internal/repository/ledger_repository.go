package repository

import (
	"errors"
	"strings"

	"github.com/ctv-ledger/internal/models"

	"gorm.io/gorm"
)

// LedgerRepository 佣金流水数据访问接口
type LedgerRepository interface {
	WithTx(tx *gorm.DB) LedgerRepository

	Create(entry *models.LedgerEntry) error
	Exists(transactionID string, affiliateID uint, entryType string) (bool, error)
	List(filter LedgerEntryListFilter) ([]models.LedgerEntry, int64, error)
	SumByAffiliate(affiliateID uint, entryType string) (int64, error)
}

// GormLedgerRepository GORM 佣金流水仓储
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建佣金流水仓储
func NewLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLedgerRepository) WithTx(tx *gorm.DB) LedgerRepository {
	if tx == nil {
		return r
	}
	return &GormLedgerRepository{db: tx}
}

// Create 创建流水记录，唯一索引拦截同一交易的重复入账
func (r *GormLedgerRepository) Create(entry *models.LedgerEntry) error {
	return r.db.Create(entry).Error
}

// Exists 判断流水是否已存在
func (r *GormLedgerRepository) Exists(transactionID string, affiliateID uint, entryType string) (bool, error) {
	txID := strings.TrimSpace(transactionID)
	if txID == "" || affiliateID == 0 {
		return false, nil
	}
	var total int64
	err := r.db.Model(&models.LedgerEntry{}).
		Where("transaction_id = ? AND affiliate_id = ? AND entry_type = ?", txID, affiliateID, entryType).
		Count(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

// List 查询流水列表
func (r *GormLedgerRepository) List(filter LedgerEntryListFilter) ([]models.LedgerEntry, int64, error) {
	query := r.db.Model(&models.LedgerEntry{})
	if filter.AffiliateID != 0 {
		query = query.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if txID := strings.TrimSpace(filter.TransactionID); txID != "" {
		query = query.Where("transaction_id = ?", txID)
	}
	if entryType := strings.TrimSpace(filter.EntryType); entryType != "" {
		query = query.Where("entry_type = ?", entryType)
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

	var rows []models.LedgerEntry
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SumByAffiliate 汇总推广账户指定类型的流水金额
func (r *GormLedgerRepository) SumByAffiliate(affiliateID uint, entryType string) (int64, error) {
	if affiliateID == 0 {
		return 0, errors.New("invalid ledger sum params")
	}
	query := r.db.Model(&models.LedgerEntry{}).Where("affiliate_id = ?", affiliateID)
	if entryType != "" {
		query = query.Where("entry_type = ?", entryType)
	}
	var row struct {
		Total int64 `gorm:"column:total"`
	}
	if err := query.Select("COALESCE(SUM(amount_minor), 0) AS total").Scan(&row).Error; err != nil {
		return 0, err
	}
	return row.Total, nil
}
