package service

import (
	"context"
	"testing"

	"github.com/ctv-ledger/internal/models"
	"github.com/ctv-ledger/internal/repository"
	"gorm.io/gorm"
)

func TestHandleTransactionSettledTruncatesToMinorUnit(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	affiliate := createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", true)
	createTestReferral(t, db, 2001, affiliate)

	// 999 * 0.10 = 99.9，入账向下取整为 99
	err := svc.HandleTransactionSettled(context.Background(), SettledTransaction{
		TransactionID: "tx-trunc-1",
		UserID:        2001,
		GrossMinor:    999,
	})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	row := reloadAffiliate(t, db, affiliate.ID)
	if row.TotalEarned != 99 {
		t.Fatalf("total_earned want 99 got %d", row.TotalEarned)
	}
	if row.PendingPayout != 99 {
		t.Fatalf("pending_payout want 99 got %d", row.PendingPayout)
	}

	var entry models.LedgerEntry
	if err := db.Where("transaction_id = ? AND affiliate_id = ?", "tx-trunc-1", affiliate.ID).First(&entry).Error; err != nil {
		t.Fatalf("load ledger entry failed: %v", err)
	}
	if entry.EntryType != models.LedgerEntryTypeDirect || entry.AmountMinor != 99 {
		t.Fatalf("ledger entry want direct/99 got %s/%d", entry.EntryType, entry.AmountMinor)
	}

	var referral models.Referral
	if err := db.Where("user_id = ?", 2001).First(&referral).Error; err != nil {
		t.Fatalf("load referral failed: %v", err)
	}
	if referral.TotalRevenue != 999 || referral.TotalCommission != 99 {
		t.Fatalf("referral totals want 999/99 got %d/%d", referral.TotalRevenue, referral.TotalCommission)
	}
	if referral.FirstPurchaseAt == nil {
		t.Fatalf("first_purchase_at should be set on first settlement")
	}
}

func TestHandleTransactionSettledIdempotent(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	affiliate := createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", true)
	createTestReferral(t, db, 2001, affiliate)

	for i := 0; i < 3; i++ {
		if err := svc.HandleTransactionSettled(context.Background(), SettledTransaction{
			TransactionID: "tx-dup-1",
			UserID:        2001,
			GrossMinor:    1000,
		}); err != nil {
			t.Fatalf("settle %d failed: %v", i+1, err)
		}
	}

	row := reloadAffiliate(t, db, affiliate.ID)
	if row.TotalEarned != 100 || row.PendingPayout != 100 {
		t.Fatalf("duplicate delivery must credit once, got total=%d pending=%d", row.TotalEarned, row.PendingPayout)
	}

	var count int64
	if err := db.Model(&models.LedgerEntry{}).Where("transaction_id = ?", "tx-dup-1").Count(&count).Error; err != nil {
		t.Fatalf("count ledger entries failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("ledger entries want 1 got %d", count)
	}
}

func TestHandleTransactionSettledWithoutBinding(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", true)

	if err := svc.HandleTransactionSettled(context.Background(), SettledTransaction{
		TransactionID: "tx-nobind-1",
		UserID:        9999,
		GrossMinor:    1000,
	}); err != nil {
		t.Fatalf("settle without binding should be a no-op, got %v", err)
	}

	var count int64
	if err := db.Model(&models.LedgerEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count ledger entries failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("no ledger entries expected, got %d", count)
	}
}

func TestHandleTransactionSettledSkipsInactiveAffiliate(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	affiliate := createTestAffiliate(t, db, 1001, "CODEAAAA", nil, 1, "0.10", false)
	createTestReferral(t, db, 2001, affiliate)

	if err := svc.HandleTransactionSettled(context.Background(), SettledTransaction{
		TransactionID: "tx-inactive-1",
		UserID:        2001,
		GrossMinor:    1000,
	}); err != nil {
		t.Fatalf("settle for inactive affiliate should be a no-op, got %v", err)
	}

	row := reloadAffiliate(t, db, affiliate.ID)
	if row.TotalEarned != 0 || row.PendingPayout != 0 {
		t.Fatalf("inactive affiliate must not be credited, got total=%d pending=%d", row.TotalEarned, row.PendingPayout)
	}
}

func TestNetworkPropagationCreditsTwoAncestors(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	tier1 := createTestAffiliate(t, db, 1001, "CODET1AA", nil, 1, "0.10", true)
	tier2 := createTestAffiliate(t, db, 1002, "CODET2BB", &tier1.ID, 2, "0.08", true)
	tier3 := createTestAffiliate(t, db, 1003, "CODET3CC", &tier2.ID, 3, "0.05", true)
	createTestReferral(t, db, 2001, tier3)

	// 队列未启用，结算内联执行团队佣金上溯
	if err := svc.HandleTransactionSettled(context.Background(), SettledTransaction{
		TransactionID: "tx-net-1",
		UserID:        2001,
		GrossMinor:    1000,
	}); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	t3 := reloadAffiliate(t, db, tier3.ID)
	if t3.TotalEarned != 50 || t3.PendingPayout != 50 || t3.NetworkEarned != 0 {
		t.Fatalf("tier3 want direct 50 only, got total=%d pending=%d network=%d", t3.TotalEarned, t3.PendingPayout, t3.NetworkEarned)
	}

	// 两级上级各按直推佣金原额计入 network_earned，不进可提现余额
	t2 := reloadAffiliate(t, db, tier2.ID)
	if t2.NetworkEarned != 50 {
		t.Fatalf("tier2 network_earned want 50 got %d", t2.NetworkEarned)
	}
	if t2.TotalEarned != 0 || t2.PendingPayout != 0 {
		t.Fatalf("tier2 direct balances must stay zero, got total=%d pending=%d", t2.TotalEarned, t2.PendingPayout)
	}

	t1 := reloadAffiliate(t, db, tier1.ID)
	if t1.NetworkEarned != 50 {
		t.Fatalf("tier1 network_earned want 50 got %d", t1.NetworkEarned)
	}

	var networkEntries int64
	if err := db.Model(&models.LedgerEntry{}).
		Where("transaction_id = ? AND entry_type = ?", "tx-net-1", models.LedgerEntryTypeNetwork).
		Count(&networkEntries).Error; err != nil {
		t.Fatalf("count network entries failed: %v", err)
	}
	if networkEntries != 2 {
		t.Fatalf("network entries want 2 got %d", networkEntries)
	}
}

func TestNetworkPropagationStopsAtDepthTwo(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	// 四级链路：最顶层超出两级上溯范围
	tier0 := createTestAffiliate(t, db, 1000, "CODET0ZZ", nil, 1, "0.10", true)
	tier1 := createTestAffiliate(t, db, 1001, "CODET1AA", &tier0.ID, 2, "0.10", true)
	tier2 := createTestAffiliate(t, db, 1002, "CODET2BB", &tier1.ID, 3, "0.08", true)
	tier3 := createTestAffiliate(t, db, 1003, "CODET3CC", &tier2.ID, 3, "0.05", true)
	createTestReferral(t, db, 2001, tier3)

	if err := svc.HandleTransactionSettled(context.Background(), SettledTransaction{
		TransactionID: "tx-depth-1",
		UserID:        2001,
		GrossMinor:    1000,
	}); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	if got := reloadAffiliate(t, db, tier0.ID).NetworkEarned; got != 0 {
		t.Fatalf("third ancestor must not be credited, got %d", got)
	}
	if got := reloadAffiliate(t, db, tier1.ID).NetworkEarned; got != 50 {
		t.Fatalf("second ancestor network_earned want 50 got %d", got)
	}
}

func TestNetworkPropagationRetryCreditsExactlyOnce(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	tier1 := createTestAffiliate(t, db, 1001, "CODET1AA", nil, 1, "0.10", true)
	tier2 := createTestAffiliate(t, db, 1002, "CODET2BB", &tier1.ID, 2, "0.08", true)

	// 至少一次投递语义：重复执行由流水唯一键去重
	for i := 0; i < 3; i++ {
		if err := svc.PropagateNetwork(context.Background(), "tx-retry-1", tier2.ID, 100, "CNY"); err != nil {
			t.Fatalf("propagate %d failed: %v", i+1, err)
		}
	}

	if got := reloadAffiliate(t, db, tier1.ID).NetworkEarned; got != 100 {
		t.Fatalf("retry must credit exactly once, network_earned want 100 got %d", got)
	}
}

func TestHandleTransactionSettledReplayRestoresNetworkCredit(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	tier1 := createTestAffiliate(t, db, 1001, "CODET1AA", nil, 1, "0.10", true)
	tier2 := createTestAffiliate(t, db, 1002, "CODET2BB", &tier1.ID, 2, "0.08", true)
	tier3 := createTestAffiliate(t, db, 1003, "CODET3CC", &tier2.ID, 3, "0.05", true)
	createTestReferral(t, db, 2001, tier3)

	tx := SettledTransaction{TransactionID: "tx-replay-1", UserID: 2001, GrossMinor: 1000}
	if err := svc.HandleTransactionSettled(context.Background(), tx); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	// 模拟上溯流水丢失：删掉团队佣金流水并清零上级收益
	if err := db.Where("transaction_id = ? AND entry_type = ?", tx.TransactionID, models.LedgerEntryTypeNetwork).
		Delete(&models.LedgerEntry{}).Error; err != nil {
		t.Fatalf("drop network entries failed: %v", err)
	}
	if err := db.Model(&models.Affiliate{}).
		Where("id IN ?", []uint{tier1.ID, tier2.ID}).
		Update("network_earned", 0).Error; err != nil {
		t.Fatalf("reset ancestors failed: %v", err)
	}

	// 重放结算：直推佣金已去重，但上溯要重新投递补齐
	if err := svc.HandleTransactionSettled(context.Background(), tx); err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if got := reloadAffiliate(t, db, tier3.ID).TotalEarned; got != 50 {
		t.Fatalf("replay must not double direct credit, total_earned want 50 got %d", got)
	}
	if got := reloadAffiliate(t, db, tier2.ID).NetworkEarned; got != 50 {
		t.Fatalf("replay should restore tier2 network_earned to 50, got %d", got)
	}
	if got := reloadAffiliate(t, db, tier1.ID).NetworkEarned; got != 50 {
		t.Fatalf("replay should restore tier1 network_earned to 50, got %d", got)
	}
}

func TestNetworkPropagationDanglingParentKeepsDirectCredit(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)

	missingID := uint(424242)
	orphan := createTestAffiliate(t, db, 1001, "CODEORPH", &missingID, 2, "0.10", true)
	createTestReferral(t, db, 2001, orphan)

	if err := svc.HandleTransactionSettled(context.Background(), SettledTransaction{
		TransactionID: "tx-dangling-1",
		UserID:        2001,
		GrossMinor:    1000,
	}); err != nil {
		t.Fatalf("settle with dangling parent should not fail, got %v", err)
	}

	row := reloadAffiliate(t, db, orphan.ID)
	if row.TotalEarned != 100 || row.PendingPayout != 100 {
		t.Fatalf("direct credit must survive dangling parent, got total=%d pending=%d", row.TotalEarned, row.PendingPayout)
	}
}

func setupCommissionServiceTest(t *testing.T) (*CommissionService, *gorm.DB) {
	t.Helper()

	db := openServiceTestDB(t, "commission_service")
	return NewCommissionService(
		repository.NewAffiliateRepository(db),
		repository.NewReferralRepository(db),
		repository.NewLedgerRepository(db),
		nil,
	), db
}

func createTestReferral(t *testing.T, db *gorm.DB, userID uint, affiliate *models.Affiliate) *models.Referral {
	t.Helper()

	row := &models.Referral{
		UserID:      userID,
		AffiliateID: affiliate.ID,
		Code:        affiliate.Code,
		IPAddress:   "203.0.113.1",
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("create referral failed: %v", err)
	}
	return row
}

func reloadAffiliate(t *testing.T, db *gorm.DB, id uint) *models.Affiliate {
	t.Helper()

	var row models.Affiliate
	if err := db.First(&row, id).Error; err != nil {
		t.Fatalf("reload affiliate failed: %v", err)
	}
	return &row
}
