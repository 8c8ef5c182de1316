package services

import (
	"testing"

	"github.com/harukimoto/workspace-hub/internal/models"
	"github.com/harukimoto/workspace-hub/internal/repository"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	authService *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Member{},
		&models.Project{},
		&models.Task{},
		&models.TaskActivity{},
	)
	suite.Require().NoError(err)

	userRepo := repository.NewUserRepository(suite.db)
	wsRepo := repository.NewWorkspaceRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)

	wsService := NewWorkspaceService(wsRepo, taskRepo, userRepo, nil)
	suite.authService = NewAuthService(userRepo, wsService, nil)
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthServiceTestSuite) TestSignup() {
	user, err := suite.authService.Signup(SignupInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "password123",
	})
	suite.Require().NoError(err)

	suite.Equal("alice@example.com", user.Email)
	suite.False(user.EmailVerified)
	suite.Require().NotNil(user.VerificationToken)
	suite.NotEqual("password123", user.PasswordHash)
	suite.NoError(bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))

	// No workspace exists until the email is verified.
	var wsCount int64
	suite.db.Model(&models.Workspace{}).Count(&wsCount)
	suite.EqualValues(0, wsCount)
	suite.Nil(user.CurrentWorkspaceID)
}

func (suite *AuthServiceTestSuite) TestSignup_Validation() {
	_, err := suite.authService.Signup(SignupInput{Name: "Alice", Email: "alice@example.com", Password: "short"})
	suite.ErrorIs(err, ErrPasswordTooShort)

	_, err = suite.authService.Signup(SignupInput{Name: "Alice", Email: "alice@example.com", Password: "password123"})
	suite.Require().NoError(err)

	_, err = suite.authService.Signup(SignupInput{Name: "Other", Email: "alice@example.com", Password: "password123"})
	suite.ErrorIs(err, ErrEmailTaken)
}

func (suite *AuthServiceTestSuite) TestVerifyEmail_BootstrapsDefaultWorkspace() {
	user, err := suite.authService.Signup(SignupInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	suite.Require().NoError(err)
	token := *user.VerificationToken

	verified, err := suite.authService.VerifyEmail(token)
	suite.Require().NoError(err)
	suite.True(verified.EmailVerified)
	suite.Nil(verified.VerificationToken)
	suite.Require().NotNil(verified.CurrentWorkspaceID)

	var ws models.Workspace
	suite.Require().NoError(suite.db.First(&ws, *verified.CurrentWorkspaceID).Error)
	suite.Equal("Alice's Workspace", ws.Name)
	suite.Equal(user.ID, ws.OwnerID)

	var member models.Member
	err = suite.db.Where("workspace_id = ? AND user_id = ?", ws.ID, user.ID).First(&member).Error
	suite.Require().NoError(err)
	suite.Equal(models.RoleOwner, member.Role)

	// The token is single use.
	_, err = suite.authService.VerifyEmail(token)
	suite.ErrorIs(err, ErrInvalidVerifyToken)

	var wsCount int64
	suite.db.Model(&models.Workspace{}).Count(&wsCount)
	suite.EqualValues(1, wsCount)
}

func (suite *AuthServiceTestSuite) TestVerifyEmail_InvalidToken() {
	_, err := suite.authService.VerifyEmail("not-a-token")
	suite.ErrorIs(err, ErrInvalidVerifyToken)
}

func (suite *AuthServiceTestSuite) TestLogin() {
	user, err := suite.authService.Signup(SignupInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	suite.Require().NoError(err)

	// Unverified accounts cannot log in.
	_, err = suite.authService.Login(LoginInput{Email: "alice@example.com", Password: "password123"})
	suite.ErrorIs(err, ErrEmailNotVerified)

	_, err = suite.authService.VerifyEmail(*user.VerificationToken)
	suite.Require().NoError(err)

	loggedIn, err := suite.authService.Login(LoginInput{Email: "alice@example.com", Password: "password123"})
	suite.Require().NoError(err)
	suite.Equal(user.ID, loggedIn.ID)

	_, err = suite.authService.Login(LoginInput{Email: "alice@example.com", Password: "wrongpassword"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.authService.Login(LoginInput{Email: "nobody@example.com", Password: "password123"})
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
