package main

import (
	"time"

	"github.com/ctv-ledger/internal/config"
	"github.com/ctv-ledger/internal/logger"
	"github.com/ctv-ledger/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("admin", "admin123456"); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 三层推广账户样例：tier1 -> tier2 -> tier3
	now := time.Now()
	tier1 := seedAffiliate(stdLog.Printf, models.Affiliate{
		UserID:         1001,
		Code:           "CTV0A1B2C3D",
		Tier:           1,
		CommissionRate: mustRate("0.10"),
		IsActive:       true,
		IsVerified:     true,
		BankName:       "Demo Bank",
		BankAccount:    "6222000011110001",
	})
	if tier1 == nil {
		return
	}
	tier2 := seedAffiliate(stdLog.Printf, models.Affiliate{
		UserID:         1002,
		Code:           "CTV1B2C3D4E",
		ParentID:       &tier1.ID,
		Tier:           2,
		CommissionRate: mustRate("0.08"),
		IsActive:       true,
		IsVerified:     true,
		BankName:       "Demo Bank",
		BankAccount:    "6222000011110002",
	})
	if tier2 == nil {
		return
	}
	tier3 := seedAffiliate(stdLog.Printf, models.Affiliate{
		UserID:         1003,
		Code:           "CTV2C3D4E5F",
		ParentID:       &tier2.ID,
		Tier:           3,
		CommissionRate: mustRate("0.05"),
		IsActive:       true,
	})
	if tier3 == nil {
		return
	}

	// 样例推荐绑定
	referrals := []models.Referral{
		{UserID: 2001, AffiliateID: tier1.ID, Code: tier1.Code, IPAddress: "203.0.113.10", RegisteredAt: now.Add(-48 * time.Hour)},
		{UserID: 2002, AffiliateID: tier2.ID, Code: tier2.Code, IPAddress: "203.0.113.11", RegisteredAt: now.Add(-24 * time.Hour)},
		{UserID: 2003, AffiliateID: tier3.ID, Code: tier3.Code, IPAddress: "203.0.113.12", RegisteredAt: now.Add(-2 * time.Hour)},
	}
	for _, referral := range referrals {
		var existing models.Referral
		if err := models.DB.Where("user_id = ?", referral.UserID).First(&existing).Error; err == nil {
			stdLog.Printf("Referral already exists for user %d", referral.UserID)
			continue
		}
		if err := models.DB.Create(&referral).Error; err != nil {
			stdLog.Printf("Failed to create referral for user %d: %v", referral.UserID, err)
			continue
		}
		stdLog.Printf("Created referral: user %d -> affiliate %d", referral.UserID, referral.AffiliateID)
	}

	stdLog.Printf("Seed finished")
}

func seedAffiliate(logf func(format string, v ...interface{}), affiliate models.Affiliate) *models.Affiliate {
	var existing models.Affiliate
	if err := models.DB.Where("user_id = ?", affiliate.UserID).First(&existing).Error; err == nil {
		logf("Affiliate already exists: %s", existing.Code)
		return &existing
	}
	if err := models.DB.Create(&affiliate).Error; err != nil {
		logf("Failed to create affiliate %s: %v", affiliate.Code, err)
		return nil
	}
	logf("Created affiliate: %s (tier %d)", affiliate.Code, affiliate.Tier)
	return &affiliate
}

func mustRate(raw string) models.Rate {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		panic(err)
	}
	return models.NewRateFromDecimal(value)
}
