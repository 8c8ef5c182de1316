package services

import (
	"testing"
	"time"

	"github.com/harukimoto/workspace-hub/internal/models"
	"github.com/harukimoto/workspace-hub/internal/policy"
	"github.com/harukimoto/workspace-hub/internal/repository"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type TaskServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	taskService *TaskService
	wsService   *WorkspaceService

	owner   *models.User
	admin   *models.User
	member  *models.User
	ws      *models.Workspace
	project *models.Project
}

func (suite *TaskServiceTestSuite) SetupTest() {
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

	suite.taskService = NewTaskService(taskRepo, projectRepo, wsRepo, userRepo, nil)
	suite.wsService = NewWorkspaceService(wsRepo, taskRepo, userRepo, nil)

	suite.owner = suite.createUser("Alice", "alice@example.com")
	suite.admin = suite.createUser("Bob", "bob@example.com")
	suite.member = suite.createUser("Carol", "carol@example.com")

	suite.ws, err = suite.wsService.CreateWorkspace(CreateWorkspaceInput{Name: "Acme", OwnerID: suite.owner.ID})
	suite.Require().NoError(err)
	suite.addMember(suite.admin, models.RoleAdmin)
	suite.addMember(suite.member, models.RoleMember)

	suite.project = &models.Project{WorkspaceID: suite.ws.ID, Name: "Backlog"}
	suite.Require().NoError(suite.db.Create(suite.project).Error)
}

func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) createUser(name, email string) *models.User {
	user := &models.User{Name: name, Email: email, PasswordHash: "hashed", EmailVerified: true}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskServiceTestSuite) addMember(user *models.User, role models.WorkspaceRole) {
	m := &models.Member{WorkspaceID: suite.ws.ID, UserID: user.ID, Role: role, JoinedAt: time.Now()}
	suite.Require().NoError(suite.db.Create(m).Error)
}

func (suite *TaskServiceTestSuite) createTask(creatorID uint64, assignedTo *uint64) *models.Task {
	task, err := suite.taskService.CreateTask(CreateTaskInput{
		Title:       "Write release notes",
		ProjectID:   suite.project.ID,
		WorkspaceID: suite.ws.ID,
		CreatorID:   creatorID,
		AssignedTo:  assignedTo,
	})
	suite.Require().NoError(err)
	return task
}

func (suite *TaskServiceTestSuite) activitiesFor(taskID uint64) []models.TaskActivity {
	var activities []models.TaskActivity
	err := suite.db.Where("task_id = ?", taskID).Order("id ASC").Find(&activities).Error
	suite.Require().NoError(err)
	return activities
}

func (suite *TaskServiceTestSuite) TestCreateTask_DefaultsAndCreationActivity() {
	task := suite.createTask(suite.member.ID, nil)

	suite.Equal(models.TaskPriorityMedium, task.Priority)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(suite.member.ID, task.CreatedBy)
	suite.Nil(task.AssignedTo)

	activities := suite.activitiesFor(task.ID)
	suite.Require().Len(activities, 1)
	suite.Equal(models.ActivityTaskCreated, activities[0].Action)
	suite.Equal(suite.member.ID, activities[0].UserID)
	suite.Equal(suite.ws.ID, activities[0].WorkspaceID)
}

func (suite *TaskServiceTestSuite) TestCreateTask_RequiresTitle() {
	_, err := suite.taskService.CreateTask(CreateTaskInput{
		ProjectID:   suite.project.ID,
		WorkspaceID: suite.ws.ID,
		CreatorID:   suite.member.ID,
	})
	suite.ErrorIs(err, ErrTitleRequired)
}

func (suite *TaskServiceTestSuite) TestCreateTask_ProjectMustBelongToWorkspace() {
	other, err := suite.wsService.CreateWorkspace(CreateWorkspaceInput{Name: "Other", OwnerID: suite.owner.ID})
	suite.Require().NoError(err)
	foreign := &models.Project{WorkspaceID: other.ID, Name: "Elsewhere"}
	suite.Require().NoError(suite.db.Create(foreign).Error)

	_, err = suite.taskService.CreateTask(CreateTaskInput{
		Title:       "Cross-workspace task",
		ProjectID:   foreign.ID,
		WorkspaceID: suite.ws.ID,
		CreatorID:   suite.owner.ID,
	})
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *TaskServiceTestSuite) TestCreateTask_AssigneeMustBeMember() {
	outsider := suite.createUser("Dave", "dave@example.com")

	_, err := suite.taskService.CreateTask(CreateTaskInput{
		Title:       "Orphan assignment",
		ProjectID:   suite.project.ID,
		WorkspaceID: suite.ws.ID,
		CreatorID:   suite.owner.ID,
		AssignedTo:  &outsider.ID,
	})
	suite.ErrorIs(err, ErrAssigneeNotMember)
}

func (suite *TaskServiceTestSuite) TestCreateTask_AssignmentRulesEnforced() {
	// Fully restrictive rules: a member cannot assign upward at all.
	_, err := suite.taskService.CreateTask(CreateTaskInput{
		Title:       "Upward to owner",
		ProjectID:   suite.project.ID,
		WorkspaceID: suite.ws.ID,
		CreatorID:   suite.member.ID,
		AssignedTo:  &suite.owner.ID,
	})
	suite.ErrorIs(err, policy.ErrMemberAssignToOwner)

	_, err = suite.taskService.CreateTask(CreateTaskInput{
		Title:       "Upward to admin",
		ProjectID:   suite.project.ID,
		WorkspaceID: suite.ws.ID,
		CreatorID:   suite.member.ID,
		AssignedTo:  &suite.admin.ID,
	})
	suite.ErrorIs(err, policy.ErrMemberAssignToAdmin)

	_, err = suite.taskService.CreateTask(CreateTaskInput{
		Title:       "Admin upward to owner",
		ProjectID:   suite.project.ID,
		WorkspaceID: suite.ws.ID,
		CreatorID:   suite.admin.ID,
		AssignedTo:  &suite.owner.ID,
	})
	suite.ErrorIs(err, policy.ErrAdminAssignToOwner)

	// No task or activity leaked out of the failed attempts.
	var taskCount int64
	suite.db.Model(&models.Task{}).Count(&taskCount)
	suite.EqualValues(0, taskCount)

	// Relaxing a single rule opens exactly that edge.
	_, err = suite.wsService.UpdateAssignmentRules(suite.ws.ID, suite.owner.ID,
		models.AssignmentRules{MembersCanAssignToAdmins: true})
	suite.Require().NoError(err)

	task, err := suite.taskService.CreateTask(CreateTaskInput{
		Title:       "Now allowed",
		ProjectID:   suite.project.ID,
		WorkspaceID: suite.ws.ID,
		CreatorID:   suite.member.ID,
		AssignedTo:  &suite.admin.ID,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(task.AssignedTo)
	suite.Equal(suite.admin.ID, *task.AssignedTo)

	_, err = suite.taskService.CreateTask(CreateTaskInput{
		Title:       "Still blocked",
		ProjectID:   suite.project.ID,
		WorkspaceID: suite.ws.ID,
		CreatorID:   suite.member.ID,
		AssignedTo:  &suite.owner.ID,
	})
	suite.ErrorIs(err, policy.ErrMemberAssignToOwner)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_StatusChangeProducesSingleActivity() {
	task := suite.createTask(suite.member.ID, nil)

	status := models.TaskStatusInProgress
	updated, err := suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.member.ID,
		UpdateTaskInput{Status: &status})
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusInProgress, updated.Status)

	activities := suite.activitiesFor(task.ID)
	suite.Require().Len(activities, 2) // created + status_changed

	change := activities[1]
	suite.Equal(models.ActivityStatusChanged, change.Action)
	suite.Equal("status", change.Field)
	suite.Equal(string(models.TaskStatusTodo), change.OldValue)
	suite.Equal(string(models.TaskStatusInProgress), change.NewValue)
	suite.Equal("changed status from To Do to In Progress", change.Description)
	suite.Equal(suite.member.ID, change.UserID)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_NoChangeProducesNoActivity() {
	task := suite.createTask(suite.member.ID, nil)

	status := models.TaskStatusTodo
	_, err := suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.member.ID,
		UpdateTaskInput{Status: &status})
	suite.Require().NoError(err)

	suite.Len(suite.activitiesFor(task.ID), 1)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_DiffCoversEveryField() {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	task := suite.createTask(suite.owner.ID, nil)

	title := "Ship release notes"
	desc := "Now with details"
	priority := models.TaskPriorityHigh
	status := models.TaskStatusDone
	updated, err := suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.owner.ID, UpdateTaskInput{
		Title:       &title,
		Description: &desc,
		Priority:    &priority,
		Status:      &status,
		DueDate:     &due,
		AssignedTo:  &suite.member.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(title, updated.Title)

	activities := suite.activitiesFor(task.ID)[1:]
	suite.Require().Len(activities, 6)

	byAction := make(map[models.ActivityAction]models.TaskActivity, len(activities))
	for _, a := range activities {
		byAction[a.Action] = a
	}

	suite.Equal("changed priority from Medium to High", byAction[models.ActivityPriorityChanged].Description)
	suite.Equal("changed status from To Do to Completed", byAction[models.ActivityStatusChanged].Description)
	suite.Equal("assigned to Carol", byAction[models.ActivityAssigneeChanged].Description)
	suite.Equal("", byAction[models.ActivityAssigneeChanged].OldValue)
	suite.Equal("Carol", byAction[models.ActivityAssigneeChanged].NewValue)
	suite.Equal(`changed title from "Write release notes" to "Ship release notes"`, byAction[models.ActivityTitleChanged].Description)
	suite.Equal("set due date to 2026-09-15", byAction[models.ActivityDueDateChanged].Description)

	// Description text never enters the trail.
	descChange := byAction[models.ActivityDescriptionChanged]
	suite.Equal("updated the description", descChange.Description)
	suite.Empty(descChange.OldValue)
	suite.Empty(descChange.NewValue)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_SameDayDueDateChangeIsAudited() {
	task := suite.createTask(suite.owner.ID, nil)

	morning := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	_, err := suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.owner.ID,
		UpdateTaskInput{DueDate: &morning})
	suite.Require().NoError(err)

	// Moving the due date within the same day still counts as a change even
	// though the audit label only carries the date.
	afternoon := time.Date(2026, 9, 15, 17, 0, 0, 0, time.UTC)
	_, err = suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.owner.ID,
		UpdateTaskInput{DueDate: &afternoon})
	suite.Require().NoError(err)

	activities := suite.activitiesFor(task.ID)[1:]
	suite.Require().Len(activities, 2)
	suite.Equal(models.ActivityDueDateChanged, activities[1].Action)
	suite.Equal("2026-09-15", activities[1].OldValue)
	suite.Equal("2026-09-15", activities[1].NewValue)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_ReassignAndUnassignDescriptions() {
	task := suite.createTask(suite.owner.ID, &suite.member.ID)

	_, err := suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.owner.ID,
		UpdateTaskInput{AssignedTo: &suite.admin.ID})
	suite.Require().NoError(err)

	_, err = suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.owner.ID,
		UpdateTaskInput{ClearAssignee: true})
	suite.Require().NoError(err)

	activities := suite.activitiesFor(task.ID)[1:]
	suite.Require().Len(activities, 2)
	suite.Equal("reassigned from Carol to Bob", activities[0].Description)
	suite.Equal("Carol", activities[0].OldValue)
	suite.Equal("Bob", activities[0].NewValue)
	suite.Equal("unassigned from Bob", activities[1].Description)
	suite.Equal("Bob", activities[1].OldValue)
	suite.Equal("", activities[1].NewValue)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_EditScopes() {
	// Creator admin, assignee member, owner uninvolved.
	task := suite.createTask(suite.admin.ID, &suite.member.ID)

	title := "Renamed"
	status := models.TaskStatusInProgress

	// The assignee may move status but nothing else.
	_, err := suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.member.ID,
		UpdateTaskInput{Status: &status})
	suite.Require().NoError(err)

	_, err = suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.member.ID,
		UpdateTaskInput{Title: &title})
	suite.ErrorIs(err, ErrTaskEditForbidden)

	_, err = suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.member.ID,
		UpdateTaskInput{Title: &title, Status: &status})
	suite.ErrorIs(err, ErrTaskEditForbidden)

	// The creator and the workspace owner hold full edit rights.
	_, err = suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.admin.ID,
		UpdateTaskInput{Title: &title})
	suite.Require().NoError(err)

	ownerTitle := "Renamed again"
	_, err = suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.owner.ID,
		UpdateTaskInput{Title: &ownerTitle})
	suite.Require().NoError(err)

	// An uninvolved member has no rights at all, not even status.
	bystander := suite.createUser("Dave", "dave@example.com")
	suite.addMember(bystander, models.RoleMember)
	_, err = suite.taskService.UpdateTask(suite.ws.ID, task.ID, bystander.ID,
		UpdateTaskInput{Status: &status})
	suite.ErrorIs(err, ErrTaskStatusForbidden)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_ReassignmentUsesUpdaterRole() {
	// Owner-created task; the member assignee holds status-only rights, so a
	// creator with full rights must do the reassigning. A member creator
	// reassigning to the owner is governed by their own role, not the
	// original creator's.
	task := suite.createTask(suite.member.ID, nil)

	_, err := suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.member.ID,
		UpdateTaskInput{AssignedTo: &suite.owner.ID})
	suite.ErrorIs(err, policy.ErrMemberAssignToOwner)

	// The workspace owner may always assign downward or to themselves.
	_, err = suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.owner.ID,
		UpdateTaskInput{AssignedTo: &suite.owner.ID})
	suite.Require().NoError(err)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_EmptyTitleRejected() {
	task := suite.createTask(suite.owner.ID, nil)

	empty := ""
	_, err := suite.taskService.UpdateTask(suite.ws.ID, task.ID, suite.owner.ID,
		UpdateTaskInput{Title: &empty})
	suite.ErrorIs(err, ErrTitleEmpty)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_WrongWorkspace() {
	task := suite.createTask(suite.owner.ID, nil)

	status := models.TaskStatusDone
	_, err := suite.taskService.UpdateTask(suite.ws.ID+100, task.ID, suite.owner.ID,
		UpdateTaskInput{Status: &status})
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_CreatorAndOwnerOnly() {
	task := suite.createTask(suite.admin.ID, &suite.member.ID)

	// Assignment grants no delete rights.
	err := suite.taskService.DeleteTask(suite.ws.ID, task.ID, suite.member.ID)
	suite.ErrorIs(err, ErrTaskDeleteForbidden)

	err = suite.taskService.DeleteTask(suite.ws.ID, task.ID, suite.admin.ID)
	suite.Require().NoError(err)

	var taskCount, activityCount int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&taskCount)
	suite.db.Model(&models.TaskActivity{}).Where("task_id = ?", task.ID).Count(&activityCount)
	suite.EqualValues(0, taskCount)
	suite.EqualValues(0, activityCount)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_OwnerOverride() {
	task := suite.createTask(suite.admin.ID, nil)

	err := suite.taskService.DeleteTask(suite.ws.ID, task.ID, suite.owner.ID)
	suite.Require().NoError(err)
}

func (suite *TaskServiceTestSuite) TestListTasks_Filters() {
	suite.createTask(suite.owner.ID, &suite.member.ID)
	suite.createTask(suite.owner.ID, &suite.member.ID)
	done := suite.createTask(suite.owner.ID, nil)

	status := models.TaskStatusDone
	_, err := suite.taskService.UpdateTask(suite.ws.ID, done.ID, suite.owner.ID,
		UpdateTaskInput{Status: &status})
	suite.Require().NoError(err)

	tasks, total, err := suite.taskService.ListTasks(ListTasksInput{
		WorkspaceID: suite.ws.ID,
		AssignedTo:  &suite.member.ID,
		Page:        1,
		PageSize:    20,
	})
	suite.Require().NoError(err)
	suite.EqualValues(2, total)
	suite.Len(tasks, 2)

	tasks, total, err = suite.taskService.ListTasks(ListTasksInput{
		WorkspaceID: suite.ws.ID,
		Status:      &status,
		Page:        1,
		PageSize:    20,
	})
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
	suite.Require().Len(tasks, 1)
	suite.Equal(done.ID, tasks[0].ID)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
