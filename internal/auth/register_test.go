package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mateoreyes/drivehub-backend/pkg/config"
	"github.com/mateoreyes/drivehub-backend/pkg/db"
	"github.com/mateoreyes/drivehub-backend/pkg/db/models"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
	"github.com/mateoreyes/drivehub-backend/pkg/security"
)

func openRegisterTestDB(t *testing.T) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db.NewFromConn(conn)
}

func TestRegisterCreatesActiveUser(t *testing.T) {
	client := openRegisterTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}

	user, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Rosa",
		LastName:  "Vega",
		Email:     "Rosa.Vega@Example.com",
		Password:  "long-enough-secret",
		AcceptTOS: true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if user.Email != "rosa.vega@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if !user.IsActive {
		t.Fatal("expected new account to be active")
	}

	var stored models.User
	if err := client.DB().First(&stored, "email = ?", user.Email).Error; err != nil {
		t.Fatalf("load stored user: %v", err)
	}
	if stored.PasswordHash == "long-enough-secret" {
		t.Fatal("password stored in plaintext")
	}
	ok, err := security.VerifyPassword("long-enough-secret", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	client := openRegisterTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}

	req := RegisterRequest{
		FirstName: "Rosa",
		LastName:  "Vega",
		Email:     "dup@example.com",
		Password:  "long-enough-secret",
		AcceptTOS: true,
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err = svc.Register(context.Background(), req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestRegisterRequiresTOS(t *testing.T) {
	client := openRegisterTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterRequest{
		FirstName: "Rosa",
		LastName:  "Vega",
		Email:     "tos@example.com",
		Password:  "long-enough-secret",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
