package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/boulin/eventverse/internal/common"
	"github.com/boulin/eventverse/internal/dbx"
	"github.com/boulin/eventverse/internal/logging"
	"github.com/boulin/eventverse/internal/server/auth"
	"github.com/boulin/eventverse/internal/server/config"
	"github.com/boulin/eventverse/internal/server/models"
	"github.com/boulin/eventverse/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	UserID       string
}

// AccountService handles registration, login and the rotation of
// server-stored refresh tokens.
type AccountService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	log                          logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
	now                          func() time.Time
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *AccountService {
	return &AccountService{
		db:                           db,
		repomanager:                  m,
		log:                          log.With("module", "accounts"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   bcrypt.DefaultCost,
		now:                          time.Now,
	}
}

// Register creates an account. A taken email yields common.ErrorConflict.
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	account, err := s.repomanager.Accounts(s.db).Create(ctx, &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: email already registered", common.ErrorConflict)
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.log.Info(ctx, "account registered", "uid", account.ID)
	return account, nil
}

// Login verifies the credentials and returns a new TokenPair. Unknown
// emails and wrong passwords both yield common.ErrorUnauthorized.
func (s *AccountService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", common.ErrorUnauthorized)
		}
		return nil, common.ErrorInternal
	}
	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", common.ErrorUnauthorized)
	}
	return s.generateTokenPair(ctx, account.ID, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Unknown tokens yield common.ErrInvalidToken and
// expired ones common.ErrRefreshTokenExpired.
func (s *AccountService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var (
		pair    *TokenPair
		expired bool
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return err
		}
		// The expired token stays deleted.
		if token.Expires.Before(s.now()) {
			expired = true
			return nil
		}
		pair, err = s.generateTokenPair(ctx, token.UserID, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, common.ErrRefreshTokenExpired
	}
	return pair, nil
}

// PurgeExpiredTokens deletes refresh tokens that can no longer be used.
func (s *AccountService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info(ctx, "expired refresh tokens purged", "count", n)
	}
	return n, nil
}

// UserIDFromAccessToken verifies an access token issued by this service.
func (s *AccountService) UserIDFromAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func (s *AccountService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, &models.RefreshToken{
		UserID:  userID,
		Token:   refresh,
		Expires: s.now().Add(s.refreshTokenValidityDuration),
	}); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, UserID: userID}, nil
}
