package models

import "time"

// 提现申请状态
const (
	PayoutStatusPending    = "PENDING"    // 待审核
	PayoutStatusApproved   = "APPROVED"   // 已审核
	PayoutStatusProcessing = "PROCESSING" // 打款中
	PayoutStatusCompleted  = "COMPLETED"  // 已完成
	PayoutStatusRejected   = "REJECTED"   // 已驳回
)

// PayoutRequest 提现申请（创建时即从可提现余额中冻结对应金额）
type PayoutRequest struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                   // 主键
	PayoutNo     string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"payout_no"` // 提现单号
	AffiliateID  uint       `gorm:"not null;index" json:"affiliate_id"`                     // 推广账户ID
	AmountMinor  int64      `gorm:"not null" json:"amount_minor"`                           // 申请金额（最小货币单位）
	Currency     string     `gorm:"type:varchar(8);not null" json:"currency"`               // 币种
	Status       string     `gorm:"type:varchar(20);not null;index" json:"status"`          // 状态
	BankName     string     `gorm:"type:varchar(128)" json:"bank_name"`                     // 收款银行快照
	BankAccount  string     `gorm:"type:varchar(64)" json:"bank_account"`                   // 收款账号快照
	RejectReason string     `gorm:"type:varchar(255)" json:"reject_reason"`                 // 驳回原因
	ProcessedBy  *uint      `gorm:"index" json:"processed_by,omitempty"`                    // 处理人（管理员ID）
	RequestedAt  time.Time  `gorm:"not null;index" json:"requested_at"`                     // 申请时间
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`                                  // 审核时间
	ProcessingAt *time.Time `json:"processing_at,omitempty"`                                // 开始打款时间
	CompletedAt  *time.Time `json:"completed_at,omitempty"`                                 // 完成时间
	RejectedAt   *time.Time `json:"rejected_at,omitempty"`                                  // 驳回时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                             // 更新时间

	Affiliate Affiliate `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"` // 推广账户
}

// TableName 指定表名
func (PayoutRequest) TableName() string {
	return "payout_requests"
}
