package repository

import "time"

// AffiliateListFilter 查询推广账户列表的过滤条件
type AffiliateListFilter struct {
	Page     int
	PageSize int
	Code     string
	UserID   uint
	ParentID uint
	Tier     int
	IsActive *bool
	Keyword  string
}

// ReferralListFilter 查询推荐绑定列表的过滤条件
type ReferralListFilter struct {
	Page        int
	PageSize    int
	AffiliateID uint
	UserID      uint
	IPAddress   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// LedgerEntryListFilter 查询佣金流水列表的过滤条件
type LedgerEntryListFilter struct {
	Page          int
	PageSize      int
	AffiliateID   uint
	TransactionID string
	EntryType     string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// PayoutRequestListFilter 查询提现申请列表的过滤条件
type PayoutRequestListFilter struct {
	Page        int
	PageSize    int
	AffiliateID uint
	PayoutNo    string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AffiliateStatsAggregate 推广账户统计聚合结果
type AffiliateStatsAggregate struct {
	ReferralCount  int64
	ConvertedCount int64
	ChildCount     int64
}
