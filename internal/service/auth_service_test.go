package service

import (
	"errors"
	"testing"

	"github.com/ctv-ledger/internal/config"
	"github.com/ctv-ledger/internal/models"
	"github.com/ctv-ledger/internal/repository"
	"gorm.io/gorm"
)

func TestAuthLoginAndParse(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	createTestAdmin(t, svc, db, "admin", "password123")

	admin, token, expiresAt, err := svc.Login("admin", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatalf("login should return token and expiry")
	}
	if admin.LastLoginAt == nil {
		t.Fatalf("last_login_at should be recorded")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "admin" {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	if _, _, _, err := svc.Login("admin", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}
	if _, _, _, err := svc.Login("ghost", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user want ErrInvalidCredentials got %v", err)
	}
}

func TestAuthChangePasswordBumpsTokenVersion(t *testing.T) {
	svc, db := setupAuthServiceTest(t)

	admin := createTestAdmin(t, svc, db, "admin", "password123")

	if err := svc.ChangePassword(admin.ID, "wrong", "newpassword123"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong old password want ErrInvalidPassword got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "password123", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("short new password want ErrPasswordTooShort got %v", err)
	}

	if err := svc.ChangePassword(admin.ID, "password123", "newpassword123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	var row models.Admin
	if err := db.First(&row, admin.ID).Error; err != nil {
		t.Fatalf("reload admin failed: %v", err)
	}
	if row.TokenVersion != admin.TokenVersion+1 {
		t.Fatalf("token_version want %d got %d", admin.TokenVersion+1, row.TokenVersion)
	}
	if _, _, _, err := svc.Login("admin", "newpassword123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db := openServiceTestDB(t, "auth_service")
	cfg := newServiceTestConfig()
	cfg.JWT = config.JWTConfig{SecretKey: "test-secret-key-0123456789abcdef", ExpireHours: 24}
	return NewAuthService(cfg, repository.NewAdminRepository(db)), db
}

func createTestAdmin(t *testing.T, svc *AuthService, db *gorm.DB, username, password string) *models.Admin {
	t.Helper()

	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	row := &models.Admin{
		Username:     username,
		PasswordHash: hash,
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return row
}
