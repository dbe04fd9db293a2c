package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/todokeeper/internal/dbx"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/dbtest"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	refreshtokensrepo "github.com/dmitrijs2005/todokeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	todosrepo "github.com/dmitrijs2005/todokeeper/internal/server/repositories/todos"
	usersrepo "github.com/dmitrijs2005/todokeeper/internal/server/repositories/users"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		BcryptCost:                   bcrypt.MinCost,
	}
}

// newSQLite wires both services to a private migrated SQLite database.
func newSQLite(t *testing.T) (*UserService, *TodoService, *sqlx.DB) {
	t.Helper()
	db := dbtest.Open(t)
	rm, err := repomanager.NewSQLRepositoryManager(dbx.DriverSQLite)
	require.NoError(t, err)
	return NewUserService(db, rm, testConfig(), logging.Discard()),
		NewTodoService(db, rm, logging.Discard()),
		db
}

func newSQLMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return sqlx.NewDb(db, "sqlmock"), mock
}

func mustRegister(t *testing.T, s *UserService, email, username string) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), email, username, "password123")
	require.NoError(t, err)
	return u
}

// --- fakes for failure paths ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) get() (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(context.Context, int64) (*models.User, error)        { return f.get() }
func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.User, error)    { return f.get() }
func (f *fakeUsersRepo) GetByUsername(context.Context, string) (*models.User, error) { return f.get() }

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr    error
	createErr error
}

func (f *fakeRefreshRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	return f.createErr
}
func (f *fakeRefreshRepo) Find(ctx context.Context, jti string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}
func (f *fakeRefreshRepo) Delete(ctx context.Context, jti string) error {
	return f.delErr
}

type fakeTodosRepo struct {
	todosrepo.Repository // panics if an unexpected method is called
	countErr             error
}

func (f *fakeTodosRepo) Count(context.Context, int64, *bool) (int64, error) {
	return 0, f.countErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	t *fakeTodosRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Todos(db dbx.DBTX) todosrepo.Repository                 { return m.t }
