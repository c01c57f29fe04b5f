package models

import (
	"time"

	"gorm.io/gorm"
)

// Affiliate 联盟推广账户（三级分销）
type Affiliate struct {
	ID             uint           `gorm:"primarykey" json:"id"`                              // 主键
	UserID         uint           `gorm:"not null;uniqueIndex" json:"user_id"`               // 关联用户ID
	Code           string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"` // 推广码
	ParentID       *uint          `gorm:"index" json:"parent_id,omitempty"`                  // 上级推广账户ID
	Tier           int            `gorm:"not null;default:1;index" json:"tier"`              // 层级（1-3）
	CommissionRate Rate           `gorm:"type:decimal(10,4);not null" json:"commission_rate"` // 直推佣金比例（0-1）
	IsActive       bool           `gorm:"not null;index" json:"is_active"`                   // 是否启用（创建时显式赋值，不依赖列默认值）
	IsVerified     bool           `gorm:"not null;default:false" json:"is_verified"`         // 收款信息是否已审核
	TotalEarned    int64          `gorm:"not null;default:0" json:"total_earned"`            // 累计直推佣金（最小货币单位）
	NetworkEarned  int64          `gorm:"not null;default:0" json:"network_earned"`          // 累计团队佣金（仅展示，不可提现）
	PendingPayout  int64          `gorm:"not null;default:0" json:"pending_payout"`          // 可提现余额（最小货币单位）
	PaidOut        int64          `gorm:"not null;default:0" json:"paid_out"`                // 累计已打款金额
	TotalClicks    int64          `gorm:"not null;default:0" json:"total_clicks"`            // 推广链接点击数
	BankName       string         `gorm:"type:varchar(128)" json:"bank_name"`                // 收款银行
	BankAccount    string         `gorm:"type:varchar(64)" json:"bank_account"`              // 收款账号
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间

	Parent *Affiliate `gorm:"foreignKey:ParentID" json:"parent,omitempty"` // 上级推广账户
}

// TableName 指定表名
func (Affiliate) TableName() string {
	return "affiliates"
}
