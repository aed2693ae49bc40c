package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"cms-server/internal/access"
	"cms-server/internal/domain"
	"cms-server/internal/repository"
)

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, actor domain.Identity) ([]domain.User, error)
	UpdateRole(ctx context.Context, actor domain.Identity, id int64, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, actor domain.Identity, id int64) error
	EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
	cost  int
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{
		users: users,
		cost:  bcrypt.DefaultCost,
	}
}

func invalidCredentials() error {
	return domain.NewError(domain.ErrInvalidCredentials, "Invalid credentials")
}

func (s *userService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateRegistration(email, password); err != nil {
		return nil, err
	}

	user, err := s.create(ctx, email, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) create(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalidCredentials()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context, actor domain.Identity) ([]domain.User, error) {
	if err := access.RequireRole(actor, domain.RoleAdmin).Err(); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, len(users))
	for i := range users {
		out[i] = *sanitizeUser(&users[i])
	}
	return out, nil
}

func (s *userService) UpdateRole(ctx context.Context, actor domain.Identity, id int64, role domain.Role) (*domain.User, error) {
	if err := access.RequireRole(actor, domain.RoleAdmin).Err(); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.ValidationErrors{}.Add("role", "role must be one of the following values: admin, editor, user")
	}

	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a user together with all content they authored.
func (s *userService) Delete(ctx context.Context, actor domain.Identity, id int64) error {
	if err := access.RequireRole(actor, domain.RoleAdmin).Err(); err != nil {
		return err
	}
	if actor.UserID == id {
		return domain.NewError(domain.ErrForbidden, "Cannot delete your own account")
	}
	return s.users.Delete(ctx, id)
}

// EnsureAdmin makes sure an administrator account exists for email,
// creating it or promoting an existing user. An existing password is kept.
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateRegistration(email, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		user, err = s.create(ctx, email, password, domain.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("create admin: %w", err)
		}
		return sanitizeUser(user), nil
	case err != nil:
		return nil, err
	}

	if user.Role != domain.RoleAdmin {
		if err := s.users.UpdateRole(ctx, user.ID, domain.RoleAdmin); err != nil {
			return nil, fmt.Errorf("promote admin: %w", err)
		}
		user.Role = domain.RoleAdmin
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
