package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cms-server/internal/domain"
)

func TestRegister_HashesPasswordAndAllowsLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.users.Register(ctx, "  Alice@Example.com ", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Empty(t, u.PasswordHash)

	stored, err := f.userRepo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)

	logged, err := f.users.Authenticate(ctx, "alice@example.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.Empty(t, logged.PasswordHash)
}

func TestRegister_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.Register(ctx, "dup@example.com", "one")
	require.NoError(t, err)

	_, err = f.users.Register(ctx, "DUP@example.com", "two")
	require.ErrorIs(t, err, domain.ErrConflict)
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "User already exists", derr.Message)

	all, err := f.userRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.users.Authenticate(ctx, "dup@example.com", "two")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Register(context.Background(), "nope", "")
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "bob@example.com", domain.RoleUser)

	for _, tc := range []struct{ email, password string }{
		{"bob@example.com", "wrong"},
		{"missing@example.com", "pw-bob@example.com"},
		{"", ""},
	} {
		_, err := f.users.Authenticate(ctx, tc.email, tc.password)
		require.ErrorIs(t, err, domain.ErrInvalidCredentials, "%+v", tc)
	}
}

func TestUserAdministration_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice@example.com", domain.RoleUser)
	editor := f.register(t, "ed@example.com", domain.RoleEditor)

	_, err := f.users.List(ctx, domain.Anonymous)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = f.users.List(ctx, editor)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.users.UpdateRole(ctx, alice, alice.UserID, domain.RoleAdmin)
	require.ErrorIs(t, err, domain.ErrForbidden)
	require.ErrorIs(t, f.users.Delete(ctx, editor, alice.UserID), domain.ErrForbidden)
}

func TestUserAdministration_AsAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	root := f.register(t, "root@example.com", domain.RoleAdmin)
	alice := f.register(t, "alice@example.com", domain.RoleUser)

	users, err := f.users.List(ctx, root)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}

	updated, err := f.users.UpdateRole(ctx, root, alice.UserID, domain.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEditor, updated.Role)

	_, err = f.users.UpdateRole(ctx, root, alice.UserID, "superuser")
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	_, err = f.users.UpdateRole(ctx, root, 999, domain.RoleUser)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.ErrorIs(t, f.users.Delete(ctx, root, root.UserID), domain.ErrForbidden)
	require.NoError(t, f.users.Delete(ctx, root, alice.UserID))
	require.ErrorIs(t, f.users.Delete(ctx, root, alice.UserID), domain.ErrNotFound)
}

func TestDeleteUser_CascadesContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	root := f.register(t, "root@example.com", domain.RoleAdmin)
	alice := f.register(t, "alice@example.com", domain.RoleUser)

	var ids []int64
	for _, status := range []domain.ContentStatus{domain.ContentStatusDraft, domain.ContentStatusPublished, domain.ContentStatusArchived} {
		c, err := f.contents.Create(ctx, alice, CreateContentInput{Title: "t", Body: "b", Status: status})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	require.NoError(t, f.users.Delete(ctx, root, alice.UserID))
	for _, id := range ids {
		_, err := f.contents.Get(ctx, id)
		require.ErrorIs(t, err, domain.ErrNotFound)
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.users.EnsureAdmin(ctx, "Root@Example.com", "bootstrap")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, created.Role)
	assert.Equal(t, "root@example.com", created.Email)

	again, err := f.users.EnsureAdmin(ctx, "root@example.com", "other")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	// the original password is kept
	_, err = f.users.Authenticate(ctx, "root@example.com", "bootstrap")
	require.NoError(t, err)

	alice := f.register(t, "alice@example.com", domain.RoleUser)
	promoted, err := f.users.EnsureAdmin(ctx, "alice@example.com", "whatever")
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, promoted.ID)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)
}
