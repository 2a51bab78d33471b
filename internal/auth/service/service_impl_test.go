package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/faktura/internal/auth/domain"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			company_name TEXT,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	).Error; err != nil {
		t.Fatalf("create users: %v", err)
	}
	return db
}

func newAuthTestService(t *testing.T, db *gorm.DB) authdomain.Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	return NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.SystemClock{},
		Cfg: config.Config{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		},
	})
}

func TestSignupAndLogin(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthTestService(t, db)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, authdomain.SignupRequest{
		Email:       "Owner@Example.Com",
		Name:        "Owner",
		CompanyName: "Widget Co",
		Password:    "correct horse",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.User.Email != "owner@example.com" {
		t.Fatalf("expected lowercased email, got %q", resp.User.Email)
	}
	if strings.Contains(resp.User.PasswordHash, "correct horse") {
		t.Fatal("password stored in clear")
	}

	login, err := svc.Login(ctx, authdomain.LoginRequest{Email: "owner@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Fatal("login resolved a different user")
	}
}

func TestSignupValidation(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthTestService(t, db)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, authdomain.SignupRequest{Email: "bad", Name: "x", Password: "longenough"}); !errors.Is(err, authdomain.ErrInvalidEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}
	if _, err := svc.Signup(ctx, authdomain.SignupRequest{Email: "a@b.c", Password: "longenough"}); !errors.Is(err, authdomain.ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if _, err := svc.Signup(ctx, authdomain.SignupRequest{Email: "a@b.c", Name: "x", Password: "short"}); !errors.Is(err, authdomain.ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthTestService(t, db)
	ctx := context.Background()

	req := authdomain.SignupRequest{Email: "a@b.c", Name: "First", Password: "longenough"}
	if _, err := svc.Signup(ctx, req); err != nil {
		t.Fatalf("signup: %v", err)
	}
	req.Name = "Second"
	if _, err := svc.Signup(ctx, req); !errors.Is(err, authdomain.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthTestService(t, db)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, authdomain.SignupRequest{Email: "a@b.c", Name: "x", Password: "longenough"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := svc.Login(ctx, authdomain.LoginRequest{Email: "a@b.c", Password: "wrong password"}); !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, authdomain.LoginRequest{Email: "nobody@b.c", Password: "longenough"}); !errors.Is(err, authdomain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestVerifyToken(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthTestService(t, db)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, authdomain.SignupRequest{Email: "a@b.c", Name: "x", Password: "longenough"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	user, err := svc.VerifyToken(ctx, resp.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.ID != resp.User.ID {
		t.Fatal("token resolved a different user")
	}

	if _, err := svc.VerifyToken(ctx, "not.a.token"); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := svc.VerifyToken(ctx, ""); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestVerifyTokenRejectsForeignSignature(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthTestService(t, db)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, authdomain.SignupRequest{Email: "a@b.c", Name: "x", Password: "longenough"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	other := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.SystemClock{},
		Cfg: config.Config{
			JWTSecret: "a-different-secret",
			TokenTTL:  time.Hour,
		},
	})

	if _, err := other.VerifyToken(ctx, resp.Token); !errors.Is(err, authdomain.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %q", hash)
	}
	if !verifyPassword("hunter2hunter2", hash) {
		t.Fatal("expected verify to succeed")
	}
	if verifyPassword("wrong", hash) {
		t.Fatal("expected verify to fail")
	}
}
