package services

import (
	"testing"
	"time"

	"github.com/harukimoto/workspace-hub/internal/models"
	"github.com/harukimoto/workspace-hub/internal/repository"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type ActivityServiceTestSuite struct {
	suite.Suite
	db              *gorm.DB
	activityService *ActivityService
	taskService     *TaskService
	wsService       *WorkspaceService

	owner   *models.User
	ws      *models.Workspace
	project *models.Project
}

func (suite *ActivityServiceTestSuite) SetupTest() {
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
	projectRepo := repository.NewProjectRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	activityRepo := repository.NewActivityRepository(suite.db)

	suite.activityService = NewActivityService(activityRepo, taskRepo)
	suite.taskService = NewTaskService(taskRepo, projectRepo, wsRepo, userRepo, nil)
	suite.wsService = NewWorkspaceService(wsRepo, taskRepo, userRepo, nil)

	suite.owner = &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hashed", EmailVerified: true}
	suite.Require().NoError(suite.db.Create(suite.owner).Error)

	suite.ws, err = suite.wsService.CreateWorkspace(CreateWorkspaceInput{Name: "Acme", OwnerID: suite.owner.ID})
	suite.Require().NoError(err)

	suite.project = &models.Project{WorkspaceID: suite.ws.ID, Name: "Backlog"}
	suite.Require().NoError(suite.db.Create(suite.project).Error)
}

func (suite *ActivityServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ActivityServiceTestSuite) TestListTaskActivities_NewestFirst() {
	task, err := suite.taskService.CreateTask(CreateTaskInput{
		Title:       "Audited task",
		ProjectID:   suite.project.ID,
		WorkspaceID: suite.ws.ID,
		CreatorID:   suite.owner.ID,
	})
	suite.Require().NoError(err)

	// Backdate the creation row so ordering is deterministic.
	suite.Require().NoError(suite.db.Model(&models.TaskActivity{}).
		Where("task_id = ?", task.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	status := models.TaskStatusDone
	_, err = suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.owner.ID,
		UpdateTaskInput{Status: &status})
	suite.Require().NoError(err)

	activities, err := suite.activityService.ListTaskActivities(suite.ws.ID, task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(activities, 2)
	suite.Equal(models.ActivityStatusChanged, activities[0].Action)
	suite.Equal(models.ActivityTaskCreated, activities[1].Action)
}

func (suite *ActivityServiceTestSuite) TestListTaskActivities_TaskMustBeInWorkspace() {
	task, err := suite.taskService.CreateTask(CreateTaskInput{
		Title:       "Audited task",
		ProjectID:   suite.project.ID,
		WorkspaceID: suite.ws.ID,
		CreatorID:   suite.owner.ID,
	})
	suite.Require().NoError(err)

	_, err = suite.activityService.ListTaskActivities(suite.ws.ID+1, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *ActivityServiceTestSuite) TestListWorkspaceActivities_Paginated() {
	for i := 0; i < 3; i++ {
		_, err := suite.taskService.CreateTask(CreateTaskInput{
			Title:       "Task",
			ProjectID:   suite.project.ID,
			WorkspaceID: suite.ws.ID,
			CreatorID:   suite.owner.ID,
		})
		suite.Require().NoError(err)
	}

	activities, total, err := suite.activityService.ListWorkspaceActivities(suite.ws.ID, 1, 2)
	suite.Require().NoError(err)
	suite.EqualValues(3, total)
	suite.Len(activities, 2)

	activities, total, err = suite.activityService.ListWorkspaceActivities(suite.ws.ID, 2, 2)
	suite.Require().NoError(err)
	suite.EqualValues(3, total)
	suite.Len(activities, 1)
}

func TestActivityServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ActivityServiceTestSuite))
}
