package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/ctv-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutRepository 提现申请数据访问接口
type PayoutRepository interface {
	WithTx(tx *gorm.DB) PayoutRepository

	Create(req *models.PayoutRequest) error
	GetByID(id uint) (*models.PayoutRequest, error)
	GetByIDForUpdate(id uint) (*models.PayoutRequest, error)
	GetByPayoutNo(payoutNo string) (*models.PayoutRequest, error)
	List(filter PayoutRequestListFilter) ([]models.PayoutRequest, int64, error)
	TransitionStatus(id uint, fromStatuses []string, toStatus string, updates map[string]interface{}) (int64, error)
}

// GormPayoutRepository GORM 提现申请仓储
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository 创建提现申请仓储
func NewPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPayoutRepository) WithTx(tx *gorm.DB) PayoutRepository {
	if tx == nil {
		return r
	}
	return &GormPayoutRepository{db: tx}
}

// Create 创建提现申请
func (r *GormPayoutRepository) Create(req *models.PayoutRequest) error {
	return r.db.Create(req).Error
}

// GetByID 按ID查询提现申请
func (r *GormPayoutRepository) GetByID(id uint) (*models.PayoutRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.PayoutRequest
	if err := r.db.Preload("Affiliate").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByIDForUpdate 按ID锁定查询提现申请
func (r *GormPayoutRepository) GetByIDForUpdate(id uint) (*models.PayoutRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.PayoutRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByPayoutNo 按提现单号查询
func (r *GormPayoutRepository) GetByPayoutNo(payoutNo string) (*models.PayoutRequest, error) {
	no := strings.TrimSpace(payoutNo)
	if no == "" {
		return nil, nil
	}
	var row models.PayoutRequest
	if err := r.db.Where("payout_no = ?", no).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// List 查询提现申请列表
func (r *GormPayoutRepository) List(filter PayoutRequestListFilter) ([]models.PayoutRequest, int64, error) {
	query := r.db.Model(&models.PayoutRequest{}).Preload("Affiliate")
	if filter.AffiliateID != 0 {
		query = query.Where("affiliate_id = ?", filter.AffiliateID)
	}
	if no := strings.TrimSpace(filter.PayoutNo); no != "" {
		query = query.Where("payout_no LIKE ?", "%"+no+"%")
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
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

	var rows []models.PayoutRequest
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// TransitionStatus 条件状态迁移：仅当前状态命中 fromStatuses 时才更新，返回受影响行数
func (r *GormPayoutRepository) TransitionStatus(id uint, fromStatuses []string, toStatus string, updates map[string]interface{}) (int64, error) {
	if id == 0 || len(fromStatuses) == 0 || strings.TrimSpace(toStatus) == "" {
		return 0, errors.New("invalid payout transition params")
	}
	values := map[string]interface{}{
		"status":     toStatus,
		"updated_at": time.Now(),
	}
	for k, v := range updates {
		values[k] = v
	}
	result := r.db.Model(&models.PayoutRequest{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(values)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
