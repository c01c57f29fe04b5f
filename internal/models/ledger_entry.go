package models

import "time"

// 佣金流水类型
const (
	LedgerEntryTypeDirect  = "direct"  // 直推佣金
	LedgerEntryTypeNetwork = "network" // 团队佣金
)

// LedgerEntry 佣金流水（按交易+账户+类型唯一，保证结算幂等）
type LedgerEntry struct {
	ID                uint      `gorm:"primarykey" json:"id"`                                                                       // 主键
	TransactionID     string    `gorm:"type:varchar(64);not null;index:idx_ledger_entry_unique,unique" json:"transaction_id"`       // 外部交易ID
	AffiliateID       uint      `gorm:"not null;index;index:idx_ledger_entry_unique,unique" json:"affiliate_id"`                    // 入账推广账户ID
	EntryType         string    `gorm:"type:varchar(16);not null;index:idx_ledger_entry_unique,unique" json:"entry_type"`           // 流水类型
	AmountMinor       int64     `gorm:"not null" json:"amount_minor"`                                                               // 入账金额（最小货币单位）
	Currency          string    `gorm:"type:varchar(8);not null" json:"currency"`                                                   // 币种
	SourceAffiliateID *uint     `gorm:"index" json:"source_affiliate_id,omitempty"`                                                 // 团队佣金的来源账户（直推人）
	CreatedAt         time.Time `gorm:"index" json:"created_at"`                                                                    // 创建时间
}

// TableName 指定表名
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
