package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"sitecms/internal/caching"
	"sitecms/internal/common"
	"sitecms/internal/config"
	"sitecms/internal/logging"
	"sitecms/internal/models"
	"sitecms/internal/repositories"
)

const tokenIssuer = "sitecms"

// AuthService gates the admin panel of each site. Every site has at most one admin.
type AuthService interface {
	IsSetup(ctx context.Context, tenantID string) (bool, error)
	Register(ctx context.Context, tenantID, username, password string) (*models.TokenResponse, error)
	Login(ctx context.Context, tenantID, username, password, clientIP string) (*models.TokenResponse, error)
	Verify(ctx context.Context, tenantID, username, password string) (bool, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	Logout(ctx context.Context, claims *TokenClaims) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	AdminConfig() config.AdminConfig
}

// TokenClaims are the claims of an admin session token.
type TokenClaims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

type AuthOptions struct {
	JWTSecret      string
	TokenTTL       time.Duration
	LoginAttempts  int
	LoginWindow    time.Duration
	PasswordParams PasswordParams
	Admin          config.AdminConfig
}

type authService struct {
	credentialRepo repositories.CredentialRepository
	cacheSvc       caching.CacheService
	jwtSecret      []byte
	tokenTTL       time.Duration
	loginAttempts  int
	loginWindow    time.Duration
	passwordParams PasswordParams
	admin          config.AdminConfig
	now            func() time.Time
}

func NewAuthService(credentialRepo repositories.CredentialRepository, cacheSvc caching.CacheService, opts AuthOptions) AuthService {
	if opts.PasswordParams == (PasswordParams{}) {
		opts.PasswordParams = DefaultPasswordParams
	}
	return &authService{
		credentialRepo: credentialRepo,
		cacheSvc:       cacheSvc,
		jwtSecret:      []byte(opts.JWTSecret),
		tokenTTL:       opts.TokenTTL,
		loginAttempts:  opts.LoginAttempts,
		loginWindow:    opts.LoginWindow,
		passwordParams: opts.PasswordParams,
		admin:          opts.Admin.Clone(),
		now:            time.Now,
	}
}

func (s *authService) IsSetup(ctx context.Context, tenantID string) (bool, error) {
	return s.credentialRepo.Exists(ctx, tenantID)
}

// Register creates the site's admin. It fails with ErrAlreadyRegistered once an
// admin exists, including when two registrations race.
func (s *authService) Register(ctx context.Context, tenantID, username, password string) (*models.TokenResponse, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	exists, err := s.credentialRepo.Exists(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrAlreadyRegistered
	}

	hash, err := HashPassword(password, s.passwordParams)
	if err != nil {
		return nil, err
	}

	cred := &models.Credential{
		TenantID:     tenantID,
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.credentialRepo.Create(ctx, cred); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Str("username", username).Msg("site admin registered")
	return s.issueToken(tenantID, username)
}

func (s *authService) Login(ctx context.Context, tenantID, username, password, clientIP string) (*models.TokenResponse, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	if s.cacheSvc != nil && s.loginAttempts > 0 {
		key := fmt.Sprintf("login:%s:%s", tenantID, clientIP)
		limited, err := s.cacheSvc.IsRateLimited(ctx, key, s.loginAttempts, s.loginWindow)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("login rate limiter unavailable")
		} else if limited {
			return nil, common.ErrRateLimited
		}
	}

	ok, err := s.Verify(ctx, tenantID, username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		logging.Ctx(ctx).Info().Str("username", username).Str("ip", clientIP).Msg("admin login rejected")
		return nil, common.ErrUnauthorized
	}
	return s.issueToken(tenantID, username)
}

// Verify never fails for a wrong username or password; it reports false.
func (s *authService) Verify(ctx context.Context, tenantID, username, password string) (bool, error) {
	if err := validateCredentials(username, password); err != nil {
		return false, err
	}

	cred, err := s.credentialRepo.GetByUsername(ctx, tenantID, username)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	ok, err := ComparePassword(password, cred.PasswordHash)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("stored admin password hash is unreadable")
		return false, nil
	}
	return ok, nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, common.ErrUnauthorized
	}

	revoked, err := s.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, common.ErrUnauthorized
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *authService) Logout(ctx context.Context, claims *TokenClaims) error {
	if claims == nil || claims.ID == "" {
		return common.ErrUnauthorized
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(s.now()); remaining > 0 {
			ttl = remaining
		}
	}
	if s.cacheSvc == nil {
		logging.Ctx(ctx).Warn().Msg("no revocation store, token stays valid until it expires")
		return nil
	}
	return s.cacheSvc.SetString(ctx, revokedKey(claims.ID), "revoked", ttl)
}

func (s *authService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.cacheSvc == nil {
		return false, nil
	}
	val, err := s.cacheSvc.GetString(ctx, revokedKey(tokenID))
	if err != nil {
		// an unreachable revocation list must not lock every admin out
		logging.Ctx(ctx).Warn().Err(err).Msg("token revocation check failed")
		return false, nil
	}
	return val != "", nil
}

func (s *authService) AdminConfig() config.AdminConfig {
	return s.admin.Clone()
}

func (s *authService) issueToken(tenantID, username string) (*models.TokenResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := TokenClaims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   username,
			Audience:  jwt.ClaimStrings{tenantID},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &models.TokenResponse{
		Success:   true,
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: int(s.tokenTTL.Seconds()),
		ExpiresAt: expiresAt,
		Username:  username,
	}, nil
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return common.NewValidationError("username", "Username and password are required")
	}
	return nil
}

func revokedKey(tokenID string) string {
	return "revoked:" + tokenID
}
