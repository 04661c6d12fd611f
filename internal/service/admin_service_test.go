package service_test

import (
	"testing"
	"time"

	"github.com/consultapay/checkout-gateway-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAdminService(t *testing.T, password string) *service.AdminService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return service.NewAdminService(string(hash), "test-jwt-secret", time.Hour, zap.NewNop())
}

func TestAdminLogin_IssuesValidToken(t *testing.T) {
	svc := newAdminService(t, "s3cret")

	token, err := svc.Login("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("expected token to validate, got %v", err)
	}
	if claims.Sub != "operator" || claims.Type != "access" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	svc := newAdminService(t, "s3cret")

	if _, err := svc.Login("wrong"); err == nil {
		t.Fatal("expected error for wrong password")
	}
}

func TestAdminLogin_DisabledWithoutHash(t *testing.T) {
	svc := service.NewAdminService("", "test-jwt-secret", time.Hour, zap.NewNop())

	if _, err := svc.Login("anything"); err == nil {
		t.Fatal("expected login to be disabled without a configured hash")
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc := newAdminService(t, "s3cret")

	if _, err := svc.ValidateAccessToken("not.a.token"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}

func TestValidateAccessToken_DifferentSecret(t *testing.T) {
	svc := newAdminService(t, "s3cret")
	other := service.NewAdminService("", "another-secret", time.Hour, zap.NewNop())

	token, err := svc.Login("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := other.ValidateAccessToken(token); err == nil {
		t.Fatal("expected token signed with a different secret to fail")
	}
}
