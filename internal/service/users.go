package service

import (
	"context" // Request-scoped deadlines for store calls
	"errors"  // Error kind matching
	"strings"

	"bank_cards/internal/domain" // Domain models

	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// UserService owns credentials and the admin user CRUD.
type UserService struct {
	db *gorm.DB
}

// NewUserService builds a UserService over the given store.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// create hashes the password and persists a user with the given role.
// Usernames are normalized to lowercase on create and lookup so the
// uniqueness constraint is case-insensitive.
func (s *UserService) create(ctx context.Context, username, password, role string) (*domain.User, error) {
	username = strings.ToLower(username)
	var existing domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateUsername
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := domain.User{Username: username, Password: string(hash), Role: role}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Unique constraint backstop for the lookup/create race
		return nil, ErrDuplicateUsername
	}
	return &user, nil
}

// Register is the self-registration path. It always assigns the USER
// role no matter what the caller sent; admins are created only through
// the admin Create path.
func (s *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.create(ctx, username, password, domain.RoleUser)
}

// Create is the admin path: the role is explicit and must be valid.
func (s *UserService) Create(ctx context.Context, username, password, role string) (*domain.User, error) {
	role = strings.ToUpper(role)
	if !domain.ValidRole(role) {
		return nil, ErrBadRole
	}
	return s.create(ctx, username, password, role)
}

// Authenticate verifies a username/password pair. An unknown username
// and a wrong password return the same ErrInvalidCredentials so the
// response never reveals which one it was.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetByUsername returns one user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("username = ?", strings.ToLower(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Delete removes a user unconditionally. Cards owned by the user are
// not cascade-checked; they keep their owner reference.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
