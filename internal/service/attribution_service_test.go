package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ctv-ledger/internal/config"
	"github.com/ctv-ledger/internal/models"
	"github.com/ctv-ledger/internal/repository"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestAttributeBindsReferral(t *testing.T) {
	svc, db := setupAttributionServiceTest(t, NewMemoryFraudWindow())

	affiliate := createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", true)

	referral, err := svc.Attribute(context.Background(), AttributeInput{
		Code:      "codeaaaa",
		UserID:    2001,
		IPAddress: "203.0.113.7",
		UserAgent: "test-agent",
	})
	if err != nil {
		t.Fatalf("attribute failed: %v", err)
	}
	if referral.AffiliateID != affiliate.ID {
		t.Fatalf("affiliate id want %d got %d", affiliate.ID, referral.AffiliateID)
	}
	if referral.Code != affiliate.Code {
		t.Fatalf("code want %s got %s", affiliate.Code, referral.Code)
	}
	if referral.RegisteredAt.IsZero() {
		t.Fatalf("registered_at should be set")
	}
}

func TestAttributeAtMostOnce(t *testing.T) {
	svc, db := setupAttributionServiceTest(t, NewMemoryFraudWindow())

	first := createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", true)
	createTestAffiliate(t, db, 1002, "CODEBBBB", nil, 1, "0.10", true)

	if _, err := svc.Attribute(context.Background(), AttributeInput{Code: "CODEAAAA", UserID: 2001, IPAddress: "203.0.113.7"}); err != nil {
		t.Fatalf("first attribute failed: %v", err)
	}
	_, err := svc.Attribute(context.Background(), AttributeInput{Code: "CODEBBBB", UserID: 2001, IPAddress: "203.0.113.8"})
	if !errors.Is(err, ErrAlreadyAttributed) {
		t.Fatalf("second attribute want ErrAlreadyAttributed got %v", err)
	}

	binding, err := svc.GetBinding(2001)
	if err != nil {
		t.Fatalf("get binding failed: %v", err)
	}
	if binding == nil || binding.AffiliateID != first.ID {
		t.Fatalf("binding should keep first affiliate %d, got %+v", first.ID, binding)
	}
}

func TestAttributeConcurrentBindsSingleReferral(t *testing.T) {
	svc, db := setupAttributionServiceTest(t, NewMemoryFraudWindow())

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	const workers = 8
	for i := 0; i < workers; i++ {
		createTestAffiliate(t, db, uint(1001+i), fmt.Sprintf("CODEAA%02d", i), nil, 1, "0.10", true)
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Attribute(context.Background(), AttributeInput{
				Code:      fmt.Sprintf("CODEAA%02d", i),
				UserID:    2001,
				IPAddress: fmt.Sprintf("203.0.113.%d", 50+i),
			})
		}(i)
	}
	wg.Wait()

	var succeeded int
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyAttributed):
		default:
			t.Fatalf("worker %d unexpected error: %v", i, err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("exactly one concurrent bind should win, got %d", succeeded)
	}

	var count int64
	if err := db.Model(&models.Referral{}).Where("user_id = ?", 2001).Count(&count).Error; err != nil {
		t.Fatalf("count referrals failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("referral rows want 1 got %d", count)
	}
}

func TestAttributeRejectsSelfReferral(t *testing.T) {
	svc, db := setupAttributionServiceTest(t, NewMemoryFraudWindow())

	createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", true)

	_, err := svc.Attribute(context.Background(), AttributeInput{Code: "CODEAAAA", UserID: 1001, IPAddress: "203.0.113.7"})
	if !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("want ErrSelfReferral got %v", err)
	}
}

func TestAttributeRejectsInactiveAndUnknownCode(t *testing.T) {
	svc, db := setupAttributionServiceTest(t, NewMemoryFraudWindow())

	inactive := createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", false)

	// 停用状态必须真实落库，否则后面的拒绝断言形同虚设
	var stored models.Affiliate
	if err := db.First(&stored, inactive.ID).Error; err != nil {
		t.Fatalf("reload affiliate failed: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("is_active=false should survive insert, got active row")
	}

	_, err := svc.Attribute(context.Background(), AttributeInput{Code: "CODEAAAA", UserID: 2001, IPAddress: "203.0.113.7"})
	if !errors.Is(err, ErrAffiliateInactive) {
		t.Fatalf("inactive code want ErrAffiliateInactive got %v", err)
	}

	_, err = svc.Attribute(context.Background(), AttributeInput{Code: "NOPECODE", UserID: 2001, IPAddress: "203.0.113.7"})
	if !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("unknown code want ErrCodeNotFound got %v", err)
	}
}

func TestAttributeFraudWindowRejectsSixthFromSameIP(t *testing.T) {
	svc, db := setupAttributionServiceTest(t, NewMemoryFraudWindow())

	createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", true)

	const ip = "198.51.100.9"
	for i := 0; i < 5; i++ {
		userID := uint(3001 + i)
		if _, err := svc.Attribute(context.Background(), AttributeInput{Code: "CODEAAAA", UserID: userID, IPAddress: ip}); err != nil {
			t.Fatalf("attribute %d from same ip should pass, got %v", i+1, err)
		}
	}

	_, err := svc.Attribute(context.Background(), AttributeInput{Code: "CODEAAAA", UserID: 3999, IPAddress: ip})
	if !errors.Is(err, ErrFraudSuspected) {
		t.Fatalf("sixth attribute from same ip want ErrFraudSuspected got %v", err)
	}

	// 其他 IP 不受影响
	if _, err := svc.Attribute(context.Background(), AttributeInput{Code: "CODEAAAA", UserID: 4001, IPAddress: "198.51.100.10"}); err != nil {
		t.Fatalf("attribute from another ip should pass, got %v", err)
	}
}

func TestAttributeFraudWindowResetsAfterWindow(t *testing.T) {
	window := NewMemoryFraudWindow()
	base := time.Now()
	current := base
	window.now = func() time.Time { return current }

	svc, db := setupAttributionServiceTest(t, window)
	createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", true)

	const ip = "198.51.100.20"
	for i := 0; i < 5; i++ {
		if _, err := svc.Attribute(context.Background(), AttributeInput{Code: "CODEAAAA", UserID: uint(5001 + i), IPAddress: ip}); err != nil {
			t.Fatalf("attribute %d should pass, got %v", i+1, err)
		}
	}
	if _, err := svc.Attribute(context.Background(), AttributeInput{Code: "CODEAAAA", UserID: 5999, IPAddress: ip}); !errors.Is(err, ErrFraudSuspected) {
		t.Fatalf("sixth in window want ErrFraudSuspected got %v", err)
	}

	// 窗口过期后计数重置
	current = base.Add(25 * time.Hour)
	if _, err := svc.Attribute(context.Background(), AttributeInput{Code: "CODEAAAA", UserID: 6001, IPAddress: ip}); err != nil {
		t.Fatalf("attribute after window should pass, got %v", err)
	}
}

type failingFraudWindow struct{}

func (failingFraudWindow) Incr(context.Context, string, int) (int64, error) {
	return 0, errors.New("counter down")
}

func TestAttributePassesWhenFraudWindowUnavailable(t *testing.T) {
	svc, db := setupAttributionServiceTest(t, failingFraudWindow{})

	createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", true)

	if _, err := svc.Attribute(context.Background(), AttributeInput{Code: "CODEAAAA", UserID: 2001, IPAddress: "203.0.113.7"}); err != nil {
		t.Fatalf("attribute should degrade to pass-through, got %v", err)
	}
}

func TestTrackClickIncrementsCounter(t *testing.T) {
	svc, db := setupAttributionServiceTest(t, NewMemoryFraudWindow())

	affiliate := createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", true)

	for i := 0; i < 3; i++ {
		if err := svc.TrackClick("CODEAAAA", "203.0.113.7", "test-agent"); err != nil {
			t.Fatalf("track click failed: %v", err)
		}
	}

	var row models.Affiliate
	if err := db.First(&row, affiliate.ID).Error; err != nil {
		t.Fatalf("reload affiliate failed: %v", err)
	}
	if row.TotalClicks != 3 {
		t.Fatalf("total_clicks want 3 got %d", row.TotalClicks)
	}
}

func setupAttributionServiceTest(t *testing.T, window FraudWindow) (*AttributionService, *gorm.DB) {
	t.Helper()

	db := openServiceTestDB(t, "attribution_service")
	cfg := newServiceTestConfig()
	return NewAttributionService(repository.NewAffiliateRepository(db), repository.NewReferralRepository(db), window, cfg), db
}

func openServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}, &models.Affiliate{}, &models.Referral{}, &models.LedgerEntry{}, &models.PayoutRequest{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newServiceTestConfig() *config.Config {
	return &config.Config{
		Affiliate: config.AffiliateConfig{
			DefaultRate:        "0.10",
			MinPayoutMinor:     1000,
			FraudWindowSeconds: 86400,
			FraudMaxPerIP:      5,
		},
	}
}

func createTestAffiliate(t *testing.T, db *gorm.DB, userID uint, code string, parentID *uint, tier int, rate string, active bool) *models.Affiliate {
	t.Helper()

	parsed, err := models.NewRateFromString(rate)
	if err != nil {
		t.Fatalf("parse rate failed: %v", err)
	}
	row := &models.Affiliate{
		UserID:         userID,
		Code:           code,
		ParentID:       parentID,
		Tier:           tier,
		CommissionRate: parsed,
		IsActive:       active,
		BankName:       "Test Bank",
		BankAccount:    fmt.Sprintf("6222%012d", userID),
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("create affiliate failed: %v", err)
	}
	return row
}
