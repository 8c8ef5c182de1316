package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harukimoto/workspace-hub/internal/dto"
	apierrors "github.com/harukimoto/workspace-hub/internal/errors"
	"github.com/harukimoto/workspace-hub/internal/middleware"
	"github.com/harukimoto/workspace-hub/internal/models"
	"github.com/harukimoto/workspace-hub/internal/policy"
	"github.com/harukimoto/workspace-hub/internal/services"
	"github.com/harukimoto/workspace-hub/internal/utils"
)

// TaskHandler coordinates task HTTP handlers within a workspace.
type TaskHandler struct {
	taskService     *services.TaskService
	activityService *services.ActivityService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, activityService *services.ActivityService) *TaskHandler {
	return &TaskHandler{
		taskService:     taskService,
		activityService: activityService,
	}
}

// CreateTask creates a new task in the workspace.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string              `json:"title" binding:"required"`
		Description string              `json:"description"`
		Priority    models.TaskPriority `json:"priority"`
		Status      models.TaskStatus   `json:"status"`
		ProjectID   uint64              `json:"project_id" binding:"required"`
		AssignedTo  *uint64             `json:"assigned_to"`
		DueDate     *time.Time          `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		WorkspaceID: ws.ID,
		CreatorID:   userID,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns tasks in the workspace matching the query filters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}
	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		WorkspaceID: ws.ID,
		Page:        params.Page,
		PageSize:    params.Limit,
	}

	if projectStr := c.Query("project_id"); projectStr != "" {
		projectID, err := strconv.ParseUint(projectStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		input.ProjectID = &projectID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}
	if assignedStr := c.Query("assigned_to"); assignedStr != "" {
		assignedTo, err := strconv.ParseUint(assignedStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_to")
			return
		}
		input.AssignedTo = &assignedTo
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns a task with related data.
func (h *TaskHandler) GetTask(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("task_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(ws.ID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies field changes to a task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("task_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type UpdateTaskRequest struct {
		Title         *string              `json:"title"`
		Description   *string              `json:"description"`
		Priority      *models.TaskPriority `json:"priority"`
		Status        *models.TaskStatus   `json:"status"`
		DueDate       *time.Time           `json:"due_date"`
		ClearDueDate  bool                 `json:"clear_due_date"`
		AssignedTo    *uint64              `json:"assigned_to"`
		ClearAssignee bool                 `json:"clear_assignee"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(ws.ID, taskID, userID, services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		Status:        req.Status,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
		AssignedTo:    req.AssignedTo,
		ClearAssignee: req.ClearAssignee,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task and its activity trail.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("task_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(ws.ID, taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// ListTaskActivities returns a task's activity, newest first.
func (h *TaskHandler) ListTaskActivities(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	taskID, err := strconv.ParseUint(c.Param("task_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	activities, err := h.activityService.ListTaskActivities(ws.ID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": dto.ToActivityDTOs(activities)})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrNotWorkspaceMember),
		errors.Is(err, services.ErrAssigneeNotMember),
		errors.Is(err, services.ErrTaskEditForbidden),
		errors.Is(err, services.ErrTaskStatusForbidden),
		errors.Is(err, policy.ErrMemberAssignToOwner),
		errors.Is(err, policy.ErrMemberAssignToAdmin),
		errors.Is(err, policy.ErrAdminAssignToOwner):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskDeleteForbidden):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
