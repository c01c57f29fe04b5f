package router

import (
	"fmt"
	"strings"

	"github.com/ctv-ledger/internal/cache"
	"github.com/ctv-ledger/internal/config"
	"github.com/ctv-ledger/internal/constants"
	adminhandlers "github.com/ctv-ledger/internal/http/handlers/admin"
	publichandlers "github.com/ctv-ledger/internal/http/handlers/public"
	"github.com/ctv-ledger/internal/logger"
	"github.com/ctv-ledger/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	bindRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:referral_bind", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.POST("/affiliate/click", publicHandler.TrackAffiliateClick)
		}

		// 上游事件回调
		apiV1.POST("/events/transaction-settled", publicHandler.TransactionSettled)

		// 用户接口（依赖网关注入的用户头）
		user := apiV1.Group("")
		user.Use(UserIdentityMiddleware())
		{
			user.POST("/referrals/bind", RateLimitMiddleware(redisClient, bindRule, KeyByIPAndJSONField("code")), publicHandler.BindReferral)
			user.GET("/referrals/me", publicHandler.GetMyReferralBinding)
			user.POST("/affiliate", publicHandler.RegisterAffiliate)
			user.GET("/affiliate/dashboard", publicHandler.GetAffiliateDashboard)
			user.PUT("/affiliate/bank", publicHandler.UpdateAffiliateBank)
			user.GET("/affiliate/referrals", publicHandler.ListMyReferrals)
			user.GET("/affiliate/ledger", publicHandler.ListMyLedgerEntries)
			user.POST("/affiliate/payouts", publicHandler.ApplyPayout)
			user.GET("/affiliate/payouts", publicHandler.ListMyPayouts)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authorized.GET("/me", adminHandler.GetCurrentAdmin)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 推广账户管理
				authorized.GET("/affiliates", adminHandler.ListAffiliates)
				authorized.GET("/affiliates/:id", adminHandler.GetAffiliate)
				authorized.PUT("/affiliates/:id", adminHandler.UpdateAffiliate)

				// 推荐关系与佣金流水
				authorized.GET("/referrals", adminHandler.ListReferrals)
				authorized.GET("/ledger-entries", adminHandler.ListLedgerEntries)

				// 提现审核
				authorized.GET("/payouts", adminHandler.ListPayouts)
				authorized.GET("/payouts/:id", adminHandler.GetPayout)
				authorized.POST("/payouts/:id/approve", adminHandler.ApprovePayout)
				authorized.POST("/payouts/:id/process", adminHandler.ProcessPayout)
				authorized.POST("/payouts/:id/complete", adminHandler.CompletePayout)
				authorized.POST("/payouts/:id/reject", adminHandler.RejectPayout)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		if !cache.Healthy(c.Request.Context()) {
			status = "degraded"
		}
		c.JSON(200, gin.H{"status": status})
	})

	return r
}
