// Package services contains server-side business logic. This file implements
// UserService, which handles registration, authentication, and issuing and
// rotating JWT access/refresh token pairs.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/timex"
	"github.com/jmoiron/sqlx"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations:
// - Register: create users
// - Authenticate / Login: verify credentials (and mint tokens)
// - RefreshToken: rotate refresh tokens and mint new access tokens
type UserService struct {
	db                           *sqlx.DB
	repomanager                  repomanager.RepositoryManager
	hasher                       auth.PasswordHasher
	log                          logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sqlx.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		hasher:                       auth.NewBcryptHasher(cfg.BcryptCost),
		log:                          log.With("service", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates an active user. Email is checked before username, so a
// request colliding on both reports the email. The unique indexes stay the
// final authority: a collision that slips past the checks is still reported
// as a *common.ConflictError.
func (s *UserService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	var user *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if err := s.checkAvailable(ctx, repo.GetByEmail, email, "Email"); err != nil {
			return err
		}
		if err := s.checkAvailable(ctx, repo.GetByUsername, username, "Username"); err != nil {
			return err
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("error hashing password: %w", err)
		}

		user, err = repo.Create(ctx, &models.User{
			Email:        email,
			UserName:     username,
			PasswordHash: hash,
			IsActive:     true,
		})
		return err
	})

	if errors.Is(err, common.ErrConstraintViolation) {
		return nil, s.conflictAfterRace(ctx, email)
	}
	if err != nil {
		var conflict *common.ConflictError
		if !errors.As(err, &conflict) {
			s.log.Error(ctx, "register failed", "error", err)
		}
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate returns the user whose email and password match. An unknown
// email and a wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same bcrypt work as a real comparison
			s.hasher.Verify(password, s.getDummyHash())
			return nil, common.ErrorUnauthorized
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// Login authenticates and, on success, returns a new TokenPair.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user.ID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}

	return pair, nil
}

// GetByID returns the user or common.ErrorNotFound.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. A token that was already rotated is rejected
// with common.ErrorUnauthorized; an expired one with ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseToken(refreshToken, s.jwtSecret, auth.TokenTypeRefresh)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		token, err := repo.Find(ctx, claims.ID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return fmt.Errorf("error searching refresh token: %w", err)
		}
		if token.UserID != userID {
			return common.ErrInvalidToken
		}
		if token.Expires.Before(time.Now()) {
			return common.ErrRefreshTokenExpired
		}

		if err := repo.Delete(ctx, token.JTI); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		var genErr error
		pair, genErr = s.generateTokenPair(ctx, userID, tx)
		return genErr
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// --- helpers below ---

func (s *UserService) checkAvailable(ctx context.Context, get func(context.Context, string) (*models.User, error), value, field string) error {
	_, err := get(ctx, value)
	switch {
	case err == nil:
		return &common.ConflictError{Field: field}
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return fmt.Errorf("error checking %s: %w", field, err)
	}
}

// conflictAfterRace names the field whose unique index fired after a
// concurrent registration won.
func (s *UserService) conflictAfterRace(ctx context.Context, email string) error {
	s.log.Warn(ctx, "registration lost a uniqueness race")
	if _, err := s.repomanager.Users(s.db).GetByEmail(ctx, email); err == nil {
		return &common.ConflictError{Field: "Email"}
	}
	return &common.ConflictError{Field: "Username"}
}

func (s *UserService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *UserService) generateTokenPair(ctx context.Context, userID int64, tx dbx.DBTX) (*TokenPair, error) {
	access, _, err := auth.GenerateToken(userID, auth.TokenTypeAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, claims, err := auth.GenerateToken(userID, auth.TokenTypeRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, &models.RefreshToken{
		JTI:       claims.ID,
		UserID:    userID,
		Expires:   claims.ExpiresAt.Time.UTC(),
		CreatedAt: timex.Now(),
	}); err != nil {
		s.log.Error(ctx, "storing refresh token failed", "error", err)
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
