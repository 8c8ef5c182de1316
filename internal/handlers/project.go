package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/harukimoto/workspace-hub/internal/errors"
	"github.com/harukimoto/workspace-hub/internal/middleware"
	"github.com/harukimoto/workspace-hub/internal/models"
	"github.com/harukimoto/workspace-hub/internal/repository"
)

// ProjectHandler exposes the minimal project surface the task engine needs.
type ProjectHandler struct {
	projectRepo repository.ProjectRepository
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectRepo repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
	}
}

// CreateProject creates a project in the workspace.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	type CreateProjectRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project := models.Project{
		WorkspaceID: ws.ID,
		Name:        req.Name,
		Description: req.Description,
	}

	if err := h.projectRepo.Create(&project); err != nil {
		apierrors.InternalError(c, "Failed to create project")
		return
	}

	c.JSON(http.StatusCreated, project)
}

// ListProjects lists the workspace's projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	projects, err := h.projectRepo.ListByWorkspace(ws.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}
