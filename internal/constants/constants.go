package constants

// 层级常量
const (
	// MaxTier 推广账户最大层级
	MaxTier = 3
	// MaxNetworkDepth 团队佣金向上追溯的最大层数
	MaxNetworkDepth = 2
)

// 推广码常量：固定前缀 + 8 位大写十六进制随机段，共 11 位
const (
	AffiliateCodePrefix     = "CTV"
	AffiliateCodeRandLength = 8
	AffiliateCodeLength     = len(AffiliateCodePrefix) + AffiliateCodeRandLength
)

// 队列常量
const (
	QueueDefault         = "default"
	QueueCritical        = "critical"
	TaskNetworkPropagate = "commission:network_propagate"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "ctv"
)

// 归因防刷常量
const (
	FraudWindowSecondsDefault = 86400
	FraudMaxPerIPDefault      = 5
)

// 提现常量
const (
	MinPayoutMinorDefault = 1000
	PayoutNoPrefix        = "PO"
)

// 币种常量
const (
	SiteCurrencyDefault = "CNY"
)

// 站点常量
const (
	SiteDomainDefault = "www.example.com"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"

	LocaleDefault = LocaleZhCN
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}
