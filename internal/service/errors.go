package service

import "errors"

// 服务层错误定义，处理器按 errors.Is 映射为 HTTP 状态
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrInvalidPassword    = errors.New("密码错误")
	ErrPasswordTooShort   = errors.New("密码长度不足")

	ErrCodeNotFound      = errors.New("推广码不存在")
	ErrAffiliateInactive = errors.New("推广账户已停用")
	ErrSelfReferral      = errors.New("不能绑定自己的推广码")
	ErrAlreadyAttributed = errors.New("用户已绑定推广关系")
	ErrFraudSuspected    = errors.New("该IP归因次数超限")

	ErrInvalidRate          = errors.New("佣金比例必须在 (0, 1] 区间")
	ErrAffiliateExists      = errors.New("用户已开通推广账户")
	ErrAffiliateCodeInvalid = errors.New("推广码生成失败")
	ErrParentNotFound       = errors.New("上级推广账户不存在")
	ErrTierLimitReached     = errors.New("已达到最大推广层级")

	ErrInsufficientBalance     = errors.New("可提现余额不足")
	ErrAmountTooSmall          = errors.New("提现金额低于最低限额")
	ErrBankInfoMissing         = errors.New("请先完善收款信息")
	ErrBankNotVerified         = errors.New("收款信息未通过审核")
	ErrInvalidStatusTransition = errors.New("提现状态不允许该操作")
)
