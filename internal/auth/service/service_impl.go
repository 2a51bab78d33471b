package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	authdomain "github.com/smallbiznis/faktura/internal/auth/domain"
	"github.com/smallbiznis/faktura/internal/cache"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minPasswordLen = 8
	userCacheTTL   = time.Minute
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Cfg   config.Config
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	secret   []byte
	tokenTTL time.Duration
	users    *cache.TTLCache[snowflake.ID, *authdomain.User]
}

func NewService(p Params) authdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("auth.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		secret:   []byte(p.Cfg.JWTSecret),
		tokenTTL: p.Cfg.TokenTTL,
		users:    cache.NewTTLCache[snowflake.ID, *authdomain.User](),
	}
}

func (s *Service) Signup(ctx context.Context, req authdomain.SignupRequest) (*authdomain.AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, authdomain.ErrInvalidName
	}
	if len(req.Password) < minPasswordLen {
		return nil, authdomain.ErrWeakPassword
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &authdomain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		Name:         name,
		CompanyName:  strings.TrimSpace(req.CompanyName),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Raw(
			`SELECT COUNT(1) FROM users WHERE email = ?`,
			email,
		).Scan(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return authdomain.ErrDuplicateEmail
		}
		return tx.WithContext(ctx).Create(user).Error
	})
	if err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *Service) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, authdomain.ErrInvalidCredentials
	}

	var user authdomain.User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, authdomain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !verifyPassword(req.Password, user.PasswordHash) {
		return nil, authdomain.ErrInvalidCredentials
	}
	return s.issueToken(&user)
}

func (s *Service) VerifyToken(ctx context.Context, token string) (*authdomain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, authdomain.ErrInvalidToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, authdomain.ErrInvalidToken
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return nil, authdomain.ErrInvalidToken
	}
	userID, err := snowflake.ParseString(subject)
	if err != nil {
		return nil, authdomain.ErrInvalidToken
	}

	if user, ok := s.users.Get(userID); ok {
		return user, nil
	}

	var user authdomain.User
	err = s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, authdomain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	s.users.Set(userID, &user, userCacheTTL)
	return &user, nil
}

func (s *Service) issueToken(user *authdomain.User) (*authdomain.AuthResponse, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &authdomain.AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", authdomain.ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", authdomain.ErrInvalidEmail
	}
	return email, nil
}
