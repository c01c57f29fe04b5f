package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/ctv-ledger/internal/constants"
	"github.com/ctv-ledger/internal/models"
	"github.com/ctv-ledger/internal/repository"
	"gorm.io/gorm"
)

func TestCreateAffiliateTopLevel(t *testing.T) {
	svc, _ := setupAffiliateServiceTest(t)

	affiliate, err := svc.Create(AffiliateCreateInput{UserID: 1001, BankName: "Test Bank", BankAccount: "6222000000000001"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if affiliate.Tier != 1 || affiliate.ParentID != nil {
		t.Fatalf("top-level account want tier 1 without parent, got tier=%d parent=%v", affiliate.Tier, affiliate.ParentID)
	}
	if len(affiliate.Code) != constants.AffiliateCodeLength {
		t.Fatalf("code length want %d got %d", constants.AffiliateCodeLength, len(affiliate.Code))
	}
	if !strings.HasPrefix(affiliate.Code, constants.AffiliateCodePrefix) {
		t.Fatalf("code %s missing prefix %s", affiliate.Code, constants.AffiliateCodePrefix)
	}
	for _, ch := range affiliate.Code[len(constants.AffiliateCodePrefix):] {
		if !strings.ContainsRune("0123456789ABCDEF", ch) {
			t.Fatalf("code %s random segment should be uppercase hex", affiliate.Code)
		}
	}
	if !affiliate.IsActive {
		t.Fatalf("new account should be active")
	}
	if !affiliate.CommissionRate.Valid() {
		t.Fatalf("default rate should be valid, got %s", affiliate.CommissionRate)
	}
}

func TestCreateAffiliateDerivesTierFromParent(t *testing.T) {
	svc, _ := setupAffiliateServiceTest(t)

	tier1, err := svc.Create(AffiliateCreateInput{UserID: 1001})
	if err != nil {
		t.Fatalf("create tier1 failed: %v", err)
	}
	tier2, err := svc.Create(AffiliateCreateInput{UserID: 1002, ParentCode: tier1.Code})
	if err != nil {
		t.Fatalf("create tier2 failed: %v", err)
	}
	if tier2.Tier != 2 || tier2.ParentID == nil || *tier2.ParentID != tier1.ID {
		t.Fatalf("tier2 want parent %d tier 2, got parent=%v tier=%d", tier1.ID, tier2.ParentID, tier2.Tier)
	}

	tier3, err := svc.Create(AffiliateCreateInput{UserID: 1003, ParentCode: tier2.Code})
	if err != nil {
		t.Fatalf("create tier3 failed: %v", err)
	}
	if tier3.Tier != 3 {
		t.Fatalf("tier3 want tier 3 got %d", tier3.Tier)
	}

	// 超过三级拒绝
	_, err = svc.Create(AffiliateCreateInput{UserID: 1004, ParentCode: tier3.Code})
	if !errors.Is(err, ErrTierLimitReached) {
		t.Fatalf("fourth tier want ErrTierLimitReached got %v", err)
	}
}

func TestCreateAffiliateRejectsDuplicateAndUnknownParent(t *testing.T) {
	svc, _ := setupAffiliateServiceTest(t)

	if _, err := svc.Create(AffiliateCreateInput{UserID: 1001}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(AffiliateCreateInput{UserID: 1001}); !errors.Is(err, ErrAffiliateExists) {
		t.Fatalf("duplicate user want ErrAffiliateExists got %v", err)
	}
	if _, err := svc.Create(AffiliateCreateInput{UserID: 1002, ParentCode: "NOPENOPE"}); !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("unknown parent want ErrParentNotFound got %v", err)
	}
}

func TestCreateAffiliateRejectsInvalidRate(t *testing.T) {
	svc, _ := setupAffiliateServiceTest(t)

	cases := []string{"0", "-0.1", "1.5", "abc"}
	for _, raw := range cases {
		if _, err := svc.Create(AffiliateCreateInput{UserID: 1001, Rate: raw}); !errors.Is(err, ErrInvalidRate) {
			t.Fatalf("rate %q want ErrInvalidRate got %v", raw, err)
		}
	}

	// 上限 1.0 合法
	if _, err := svc.Create(AffiliateCreateInput{UserID: 1001, Rate: "1"}); err != nil {
		t.Fatalf("rate 1 should be accepted, got %v", err)
	}
}

func TestAffiliateDashboardAggregatesStats(t *testing.T) {
	svc, db := setupAffiliateServiceTest(t)

	parent, err := svc.Create(AffiliateCreateInput{UserID: 1001})
	if err != nil {
		t.Fatalf("create parent failed: %v", err)
	}
	if _, err := svc.Create(AffiliateCreateInput{UserID: 1002, ParentCode: parent.Code}); err != nil {
		t.Fatalf("create child failed: %v", err)
	}

	parentRow := reloadAffiliate(t, db, parent.ID)
	createTestReferral(t, db, 2001, parentRow)
	converted := createTestReferral(t, db, 2002, parentRow)
	now := converted.RegisteredAt
	if err := db.Model(&models.Referral{}).Where("id = ?", converted.ID).Update("first_purchase_at", now).Error; err != nil {
		t.Fatalf("mark converted failed: %v", err)
	}

	dashboard, err := svc.Dashboard(1001)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if dashboard.ReferralCount != 2 {
		t.Fatalf("referral_count want 2 got %d", dashboard.ReferralCount)
	}
	if dashboard.ConvertedCount != 1 {
		t.Fatalf("converted_count want 1 got %d", dashboard.ConvertedCount)
	}
	if dashboard.ChildCount != 1 {
		t.Fatalf("child_count want 1 got %d", dashboard.ChildCount)
	}
	wantURL := "https://" + constants.SiteDomainDefault + "/?ref=" + parent.Code
	if dashboard.ReferralURL != wantURL {
		t.Fatalf("referral_url want %s got %s", wantURL, dashboard.ReferralURL)
	}
}

func TestAdminUpdateAffiliate(t *testing.T) {
	svc, _ := setupAffiliateServiceTest(t)

	affiliate, err := svc.Create(AffiliateCreateInput{UserID: 1001})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	newRate := "0.25"
	inactive := false
	verified := true
	updated, err := svc.AdminUpdate(affiliate.ID, AffiliateUpdateInput{Rate: &newRate, IsActive: &inactive, IsVerified: &verified})
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.CommissionRate.String() != "0.2500" {
		t.Fatalf("rate want 0.2500 got %s", updated.CommissionRate)
	}
	if updated.IsActive {
		t.Fatalf("account should be disabled")
	}
	if !updated.IsVerified {
		t.Fatalf("account should be marked verified")
	}

	badRate := "2"
	if _, err := svc.AdminUpdate(affiliate.ID, AffiliateUpdateInput{Rate: &badRate}); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("bad rate want ErrInvalidRate got %v", err)
	}
	if _, err := svc.AdminUpdate(424242, AffiliateUpdateInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing account want ErrNotFound got %v", err)
	}
}

func setupAffiliateServiceTest(t *testing.T) (*AffiliateService, *gorm.DB) {
	t.Helper()

	db := openServiceTestDB(t, "affiliate_service")
	cfg := newServiceTestConfig()
	return NewAffiliateService(
		repository.NewAffiliateRepository(db),
		repository.NewReferralRepository(db),
		repository.NewLedgerRepository(db),
		cfg,
	), db
}
