package models

import "time"

// Referral 用户推荐绑定记录（每个用户至多一条）
type Referral struct {
	ID              uint       `gorm:"primarykey" json:"id"`                   // 主键
	UserID          uint       `gorm:"not null;uniqueIndex" json:"user_id"`    // 被推荐用户ID（唯一：首绑生效）
	AffiliateID     uint       `gorm:"not null;index" json:"affiliate_id"`     // 推广账户ID
	Code            string     `gorm:"type:varchar(32);not null" json:"code"`  // 绑定时使用的推广码
	IPAddress       string     `gorm:"type:varchar(64)" json:"ip_address"`     // 归因来源IP
	UserAgent       string     `gorm:"type:varchar(1024)" json:"user_agent"`   // 归因来源UA
	RegisteredAt    time.Time  `gorm:"not null;index" json:"registered_at"`    // 绑定时间
	FirstPurchaseAt *time.Time `gorm:"index" json:"first_purchase_at,omitempty"` // 首单结算时间
	TotalRevenue    int64      `gorm:"not null;default:0" json:"total_revenue"`    // 累计结算流水（最小货币单位）
	TotalCommission int64      `gorm:"not null;default:0" json:"total_commission"` // 累计产生直推佣金
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                             // 更新时间

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 推广账户
}

// TableName 指定表名
func (Referral) TableName() string {
	return "referrals"
}
