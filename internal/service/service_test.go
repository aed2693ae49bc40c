package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cms-server/internal/domain"
	"cms-server/internal/repository"
	"cms-server/internal/repository/sqlite"
)

type fixture struct {
	userRepo    repository.UserRepository
	contentRepo repository.ContentRepository
	users       *userService
	contents    ContentService
	archive     *fakeArchiver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	require.NoError(t, sqlite.Migrate(context.Background(), db, logger))

	f := &fixture{
		userRepo:    sqlite.NewUserRepository(db),
		contentRepo: sqlite.NewContentRepository(db),
		archive:     &fakeArchiver{},
	}
	f.users = &userService{users: f.userRepo, cost: bcrypt.MinCost}
	f.contents = NewContentService(f.contentRepo, f.archive, logger)
	return f
}

// register creates an account with the given role and returns its identity.
func (f *fixture) register(t *testing.T, email string, role domain.Role) domain.Identity {
	t.Helper()
	ctx := context.Background()
	u, err := f.users.Register(ctx, email, "pw-"+email)
	require.NoError(t, err)
	if role != domain.RoleUser {
		require.NoError(t, f.userRepo.UpdateRole(ctx, u.ID, role))
		u.Role = role
	}
	return domain.IdentityOf(u)
}

type snapshotCall struct {
	contentID int64
	status    domain.ContentStatus
	reason    string
}

type fakeArchiver struct {
	mu    sync.Mutex
	calls []snapshotCall
	err   error
}

func (a *fakeArchiver) Snapshot(_ context.Context, c *domain.Content, reason string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, snapshotCall{contentID: c.ID, status: c.Status, reason: reason})
	if a.err != nil {
		return "", a.err
	}
	return "s3://bucket/key", nil
}

func (a *fakeArchiver) snapshots() []snapshotCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]snapshotCall(nil), a.calls...)
}

var errBoom = errors.New("boom")
