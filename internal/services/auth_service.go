package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harukimoto/workspace-hub/internal/constants"
	"github.com/harukimoto/workspace-hub/internal/models"
	"github.com/harukimoto/workspace-hub/internal/notify"
	"github.com/harukimoto/workspace-hub/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailNotVerified     = errors.New("email address has not been verified")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidVerifyToken   = errors.New("invalid verification token")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo  repository.UserRepository
	wsService *WorkspaceService
	notifier  notify.Notifier
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, wsService *WorkspaceService, notifier notify.Notifier) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		wsService: wsService,
		notifier:  notifier,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Signup registers an unverified user and issues a verification token. The
// first workspace is not created until the email is verified.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	token := uuid.NewString()
	user := &models.User{
		Name:              name,
		Email:             email,
		PasswordHash:      string(hashedPassword),
		VerificationToken: &token,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.notifier != nil {
		go s.notifier.VerificationRequested(user.Email, token)
	}

	return user, nil
}

// VerifyEmail consumes a verification token. On first successful
// verification the user's default workspace is bootstrapped.
func (s *AuthService) VerifyEmail(token string) (*models.User, error) {
	user, err := s.userRepo.FindByVerificationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidVerifyToken
		}
		return nil, fmt.Errorf("failed to find user by token: %w", err)
	}

	firstVerification := !user.EmailVerified

	user.EmailVerified = true
	user.VerificationToken = nil
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to mark email verified: %w", err)
	}

	if firstVerification && user.CurrentWorkspaceID == nil {
		if _, err := s.wsService.BootstrapDefaultWorkspace(user); err != nil {
			return nil, fmt.Errorf("failed to bootstrap workspace: %w", err)
		}
		// CreateWithOwner updated the pointer; reload for the caller.
		return s.userRepo.FindByID(user.ID)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
