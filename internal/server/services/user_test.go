package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	users, _, _ := newSQLite(t)

	u, err := users.Register(context.Background(), "a@example.com", "alice", "password123")
	require.NoError(t, err)

	assert.NotZero(t, u.ID)
	assert.True(t, u.IsActive)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, "alice", u.UserName)
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.NotContains(t, u.PasswordHash, "password123")
}

func TestRegister_Conflicts(t *testing.T) {
	users, _, _ := newSQLite(t)
	ctx := context.Background()

	mustRegister(t, users, "a@example.com", "alice")

	_, err := users.Register(ctx, "a@example.com", "other", "password123")
	var conflict *common.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Email", conflict.Field)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "Email already exists", err.Error())

	_, err = users.Register(ctx, "b@example.com", "alice", "password123")
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Username", conflict.Field)

	// both collide: email is reported
	_, err = users.Register(ctx, "a@example.com", "alice", "password123")
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Email", conflict.Field)
	assert.NotContains(t, err.Error(), "password123")
}

func TestRegister_EmailIsCaseSensitive(t *testing.T) {
	users, _, _ := newSQLite(t)

	mustRegister(t, users, "a@example.com", "alice")
	_, err := users.Register(context.Background(), "A@example.com", "alice2", "password123")
	assert.NoError(t, err)
}

func TestRegister_UniqueIndexWinsRace(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	// pre-checks see nothing, insert hits the unique index
	u := &fakeUsersRepo{getErr: common.ErrorNotFound, createErr: common.ErrConstraintViolation}
	s := NewUserService(db, &fakeRepoManager{u: u}, testConfig(), logging.Discard())

	_, err := s.Register(context.Background(), "a@example.com", "alice", "password123")
	var conflict *common.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Username", conflict.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_LookupError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := NewUserService(db, &fakeRepoManager{u: &fakeUsersRepo{getErr: errBoom{}}}, testConfig(), logging.Discard())

	_, err := s.Register(context.Background(), "a@example.com", "alice", "password123")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrConflict))
	assert.Contains(t, err.Error(), "boom")
}

func TestAuthenticate(t *testing.T) {
	users, _, _ := newSQLite(t)
	ctx := context.Background()
	reg := mustRegister(t, users, "a@example.com", "alice")

	u, err := users.Authenticate(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, u.ID)

	_, wrongPw := users.Authenticate(ctx, "a@example.com", "nope-nope")
	_, unknown := users.Authenticate(ctx, "ghost@example.com", "password123")
	assert.ErrorIs(t, wrongPw, common.ErrorUnauthorized)
	assert.ErrorIs(t, unknown, common.ErrorUnauthorized)
	assert.Equal(t, wrongPw, unknown, "failures must be indistinguishable")
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewUserService(db, &fakeRepoManager{u: &fakeUsersRepo{getErr: errBoom{}}}, testConfig(), logging.Discard())
	_, err := s.Authenticate(context.Background(), "a@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestGetByID(t *testing.T) {
	users, _, _ := newSQLite(t)
	reg := mustRegister(t, users, "a@example.com", "alice")

	u, err := users.GetByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)

	_, err = users.GetByID(context.Background(), reg.ID+100)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLoginAndRefresh_RotatesTokens(t *testing.T) {
	users, _, _ := newSQLite(t)
	ctx := context.Background()
	reg := mustRegister(t, users, "a@example.com", "alice")

	pair, err := users.Login(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	uid, err := auth.GetUserIDFromToken(pair.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, reg.ID, uid)

	// the refresh token cannot be used as an access token
	_, err = auth.GetUserIDFromToken(pair.RefreshToken, []byte("k"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	next, err := users.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// rotated tokens are revoked
	_, err = users.RefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = users.RefreshToken(ctx, next.RefreshToken)
	assert.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	users, _, _ := newSQLite(t)
	mustRegister(t, users, "a@example.com", "alice")

	_, err := users.Login(context.Background(), "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	users, _, _ := newSQLite(t)
	mustRegister(t, users, "a@example.com", "alice")

	pair, err := users.Login(context.Background(), "a@example.com", "password123")
	require.NoError(t, err)

	_, err = users.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefreshToken_Expired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	tok, _, err := auth.GenerateToken(1, auth.TokenTypeRefresh, []byte("k"), -time.Minute)
	require.NoError(t, err)

	s := NewUserService(db, &fakeRepoManager{r: &fakeRefreshRepo{}}, testConfig(), logging.Discard())
	_, err = s.RefreshToken(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestRefreshToken_StoredExpiryWins(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	tok, claims, err := auth.GenerateToken(1, auth.TokenTypeRefresh, []byte("k"), time.Hour)
	require.NoError(t, err)

	rm := &fakeRepoManager{r: &fakeRefreshRepo{
		findOut: &models.RefreshToken{JTI: claims.ID, UserID: 1, Expires: time.Now().Add(-time.Minute)},
	}}
	s := NewUserService(db, rm, testConfig(), logging.Discard())

	_, err = s.RefreshToken(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_DeleteErr(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	tok, claims, err := auth.GenerateToken(1, auth.TokenTypeRefresh, []byte("k"), time.Hour)
	require.NoError(t, err)

	rm := &fakeRepoManager{r: &fakeRefreshRepo{
		findOut: &models.RefreshToken{JTI: claims.ID, UserID: 1, Expires: time.Now().Add(time.Hour)},
		delErr:  errBoom{},
	}}
	s := NewUserService(db, rm, testConfig(), logging.Discard())

	_, err = s.RefreshToken(context.Background(), tok)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "error deleting refresh token: "), err.Error())
}

func TestRefreshToken_CreateErr(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	tok, claims, err := auth.GenerateToken(1, auth.TokenTypeRefresh, []byte("k"), time.Hour)
	require.NoError(t, err)

	rm := &fakeRepoManager{r: &fakeRefreshRepo{
		findOut:   &models.RefreshToken{JTI: claims.ID, UserID: 1, Expires: time.Now().Add(time.Hour)},
		createErr: errBoom{},
	}}
	s := NewUserService(db, rm, testConfig(), logging.Discard())

	_, err = s.RefreshToken(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestRefreshToken_OwnerMismatch(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	tok, claims, err := auth.GenerateToken(1, auth.TokenTypeRefresh, []byte("k"), time.Hour)
	require.NoError(t, err)

	rm := &fakeRepoManager{r: &fakeRefreshRepo{
		findOut: &models.RefreshToken{JTI: claims.ID, UserID: 2, Expires: time.Now().Add(time.Hour)},
	}}
	s := NewUserService(db, rm, testConfig(), logging.Discard())

	_, err = s.RefreshToken(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
