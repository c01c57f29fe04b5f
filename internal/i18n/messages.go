package i18n

import "github.com/ctv-ledger/internal/constants"

// catalogs 站点文案表，key 与接口错误码一一对应。
var catalogs = map[string]map[string]string{
	constants.LocaleZhCN: {
		"error.bad_request":           "请求参数错误",
		"error.unauthorized":          "未登录或登录已过期",
		"error.forbidden":             "没有操作权限",
		"error.not_found":             "资源不存在",
		"error.internal":              "服务器内部错误",
		"error.save_failed":           "保存失败",
		"error.fetch_failed":          "查询失败",
		"error.jwt_secret_missing":    "服务端签名密钥未配置",
		"error.auth_header_missing":   "缺少认证信息",
		"error.auth_header_invalid":   "认证信息格式错误",
		"error.token_invalid":         "登录凭证无效",
		"error.token_revoked":         "登录凭证已失效，请重新登录",
		"error.rate_limited":          "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable": "限流服务暂不可用",
		"error.login_too_many":        "登录尝试过于频繁，请 %d 秒后重试",
		"error.admin_id_invalid":      "管理员身份无效",
		"error.admin_id_type_invalid": "管理员身份解析失败",
		"error.user_id_invalid":       "用户身份无效",
		"error.user_id_type_invalid":  "用户身份解析失败",
		"error.admin_login_invalid":   "用户名或密码错误",
		"error.login_failed":          "登录失败",
		"error.password_old_invalid":  "原密码错误",
		"error.password_too_short":    "新密码长度不足",
		"error.admin_not_found":       "管理员不存在",

		"error.affiliate_not_found":    "推广账户不存在",
		"error.affiliate_exists":       "推广账户已存在",
		"error.affiliate_inactive":     "推广账户已停用",
		"error.affiliate_code_invalid": "推广码格式错误",
		"error.code_not_found":         "推广码不存在",
		"error.parent_not_found":       "上级推广账户不存在",
		"error.tier_limit_reached":     "推广层级已达上限",
		"error.rate_invalid":           "佣金比例无效",
		"error.self_referral":          "不能使用自己的推广码",
		"error.already_attributed":     "该用户已绑定推广关系",
		"error.fraud_suspected":        "注册过于频繁，归因请求被拒绝",
		"error.insufficient_balance":   "可提现余额不足",
		"error.amount_too_small":       "提现金额低于最低限额",
		"error.bank_info_missing":      "请先完善收款账户信息",
		"error.bank_not_verified":      "收款信息未通过审核",
		"error.payout_not_found":       "提现申请不存在",
		"error.payout_status_invalid":  "提现申请当前状态不允许该操作",
		"error.event_secret_invalid":   "事件签名校验失败",
	},
	constants.LocaleZhTW: {
		"error.bad_request":           "請求參數錯誤",
		"error.unauthorized":          "未登入或登入已過期",
		"error.forbidden":             "沒有操作權限",
		"error.not_found":             "資源不存在",
		"error.internal":              "伺服器內部錯誤",
		"error.save_failed":           "儲存失敗",
		"error.fetch_failed":          "查詢失敗",
		"error.jwt_secret_missing":    "服務端簽名金鑰未設定",
		"error.auth_header_missing":   "缺少認證資訊",
		"error.auth_header_invalid":   "認證資訊格式錯誤",
		"error.token_invalid":         "登入憑證無效",
		"error.token_revoked":         "登入憑證已失效，請重新登入",
		"error.rate_limited":          "請求過於頻繁，請 %d 秒後重試",
		"error.rate_limit_unavailable": "限流服務暫不可用",
		"error.login_too_many":        "登入嘗試過於頻繁，請 %d 秒後重試",
		"error.admin_id_invalid":      "管理員身分無效",
		"error.admin_id_type_invalid": "管理員身分解析失敗",
		"error.user_id_invalid":       "使用者身分無效",
		"error.user_id_type_invalid":  "使用者身分解析失敗",
		"error.admin_login_invalid":   "帳號或密碼錯誤",
		"error.login_failed":          "登入失敗",
		"error.password_old_invalid":  "原密碼錯誤",
		"error.password_too_short":    "新密碼長度不足",
		"error.admin_not_found":       "管理員不存在",

		"error.affiliate_not_found":    "推廣帳戶不存在",
		"error.affiliate_exists":       "推廣帳戶已存在",
		"error.affiliate_inactive":     "推廣帳戶已停用",
		"error.affiliate_code_invalid": "推廣碼格式錯誤",
		"error.code_not_found":         "推廣碼不存在",
		"error.parent_not_found":       "上級推廣帳戶不存在",
		"error.tier_limit_reached":     "推廣層級已達上限",
		"error.rate_invalid":           "佣金比例無效",
		"error.self_referral":          "不能使用自己的推廣碼",
		"error.already_attributed":     "該使用者已綁定推廣關係",
		"error.fraud_suspected":        "註冊過於頻繁，歸因請求被拒絕",
		"error.insufficient_balance":   "可提現餘額不足",
		"error.amount_too_small":       "提現金額低於最低限額",
		"error.bank_info_missing":      "請先完善收款帳戶資訊",
		"error.bank_not_verified":      "收款資訊未通過審核",
		"error.payout_not_found":       "提現申請不存在",
		"error.payout_status_invalid":  "提現申請目前狀態不允許該操作",
		"error.event_secret_invalid":   "事件簽名校驗失敗",
	},
	constants.LocaleEnUS: {
		"error.bad_request":           "invalid request",
		"error.unauthorized":          "unauthorized",
		"error.forbidden":             "forbidden",
		"error.not_found":             "not found",
		"error.internal":              "internal server error",
		"error.save_failed":           "save failed",
		"error.fetch_failed":          "query failed",
		"error.jwt_secret_missing":    "server signing secret is not configured",
		"error.auth_header_missing":   "missing authorization header",
		"error.auth_header_invalid":   "malformed authorization header",
		"error.token_invalid":         "invalid token",
		"error.token_revoked":         "token has been revoked, please sign in again",
		"error.rate_limited":          "too many requests, retry in %d seconds",
		"error.rate_limit_unavailable": "rate limiter is unavailable",
		"error.login_too_many":        "too many login attempts, retry in %d seconds",
		"error.admin_id_invalid":      "invalid admin identity",
		"error.admin_id_type_invalid": "failed to resolve admin identity",
		"error.user_id_invalid":       "invalid user identity",
		"error.user_id_type_invalid":  "failed to resolve user identity",
		"error.admin_login_invalid":   "invalid username or password",
		"error.login_failed":          "login failed",
		"error.password_old_invalid":  "current password is incorrect",
		"error.password_too_short":    "new password is too short",
		"error.admin_not_found":       "admin not found",

		"error.affiliate_not_found":    "affiliate account not found",
		"error.affiliate_exists":       "affiliate account already exists",
		"error.affiliate_inactive":     "affiliate account is disabled",
		"error.affiliate_code_invalid": "malformed referral code",
		"error.code_not_found":         "referral code not found",
		"error.parent_not_found":       "parent affiliate not found",
		"error.tier_limit_reached":     "affiliate tier limit reached",
		"error.rate_invalid":           "invalid commission rate",
		"error.self_referral":          "cannot use your own referral code",
		"error.already_attributed":     "user already has a referral binding",
		"error.fraud_suspected":        "too many signups from this address, attribution rejected",
		"error.insufficient_balance":   "insufficient pending balance",
		"error.amount_too_small":       "payout amount is below the minimum",
		"error.bank_info_missing":      "bank account information is required",
		"error.bank_not_verified":      "bank details have not been verified",
		"error.payout_not_found":       "payout request not found",
		"error.payout_status_invalid":  "payout request is not in an eligible state",
		"error.event_secret_invalid":   "event signature verification failed",
	},
}
