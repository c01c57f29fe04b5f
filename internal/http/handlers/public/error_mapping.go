package public

import (
	"errors"

	"github.com/ctv-ledger/internal/http/response"
	"github.com/ctv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var affiliateRegisterErrorRules = []mappedHandlerError{
	{target: service.ErrAffiliateExists, code: response.CodeBadRequest, key: "error.affiliate_exists"},
	{target: service.ErrAffiliateCodeInvalid, code: response.CodeBadRequest, key: "error.affiliate_code_invalid"},
	{target: service.ErrParentNotFound, code: response.CodeBadRequest, key: "error.parent_not_found"},
	{target: service.ErrTierLimitReached, code: response.CodeBadRequest, key: "error.tier_limit_reached"},
	{target: service.ErrInvalidRate, code: response.CodeBadRequest, key: "error.rate_invalid"},
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.affiliate_not_found"},
}

// 防刷与重复绑定在处理器内静默成功，不出现在映射表里
var referralBindErrorRules = []mappedHandlerError{
	{target: service.ErrCodeNotFound, code: response.CodeNotFound, key: "error.code_not_found"},
	{target: service.ErrAffiliateInactive, code: response.CodeBadRequest, key: "error.affiliate_inactive"},
	{target: service.ErrSelfReferral, code: response.CodeBadRequest, key: "error.self_referral"},
}

var payoutApplyErrorRules = []mappedHandlerError{
	{target: service.ErrAmountTooSmall, code: response.CodeBadRequest, key: "error.amount_too_small"},
	{target: service.ErrBankInfoMissing, code: response.CodeBadRequest, key: "error.bank_info_missing"},
	{target: service.ErrBankNotVerified, code: response.CodeBadRequest, key: "error.bank_not_verified"},
	{target: service.ErrInsufficientBalance, code: response.CodeBadRequest, key: "error.insufficient_balance"},
	{target: service.ErrAffiliateInactive, code: response.CodeBadRequest, key: "error.affiliate_inactive"},
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.affiliate_not_found"},
}

func respondAffiliateRegisterError(c *gin.Context, err error) {
	respondWithMappedError(c, err, affiliateRegisterErrorRules, response.CodeInternal, "error.save_failed")
}

func respondReferralBindError(c *gin.Context, err error) {
	respondWithMappedError(c, err, referralBindErrorRules, response.CodeInternal, "error.save_failed")
}

func respondPayoutApplyError(c *gin.Context, err error) {
	respondWithMappedError(c, err, payoutApplyErrorRules, response.CodeInternal, "error.save_failed")
}
