package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harukimoto/workspace-hub/internal/dto"
	apierrors "github.com/harukimoto/workspace-hub/internal/errors"
	"github.com/harukimoto/workspace-hub/internal/middleware"
	"github.com/harukimoto/workspace-hub/internal/models"
	"github.com/harukimoto/workspace-hub/internal/services"
	"github.com/harukimoto/workspace-hub/internal/utils"
)

// WorkspaceHandler coordinates workspace lifecycle HTTP handlers.
type WorkspaceHandler struct {
	wsService       *services.WorkspaceService
	activityService *services.ActivityService
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(wsService *services.WorkspaceService, activityService *services.ActivityService) *WorkspaceHandler {
	return &WorkspaceHandler{
		wsService:       wsService,
		activityService: activityService,
	}
}

// CreateWorkspace creates a new workspace owned by the caller.
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateWorkspaceRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ws, err := h.wsService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	})
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(*ws))
}

// ListWorkspaces returns all workspaces the caller is a member of.
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberships, err := h.wsService.ListWorkspacesForUser(userID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	type WorkspaceWithRole struct {
		dto.WorkspaceDTO
		Role models.WorkspaceRole `json:"role"`
	}

	result := make([]WorkspaceWithRole, len(memberships))
	for i, m := range memberships {
		result[i] = WorkspaceWithRole{
			WorkspaceDTO: dto.ToWorkspaceDTO(m.Workspace),
			Role:         m.Role,
		}
	}

	c.JSON(http.StatusOK, gin.H{"workspaces": result})
}

// GetWorkspace returns workspace details and members.
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	workspace, members, err := h.wsService.GetWorkspaceWithMembers(ws.ID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	memberDTOs := make([]dto.MemberDTO, len(members))
	for i, m := range members {
		memberDTOs[i] = dto.ToMemberDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"workspace": dto.ToWorkspaceDTO(*workspace),
		"members":   memberDTOs,
	})
}

// UpdateWorkspace updates workspace name and description.
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
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

	type UpdateWorkspaceRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	var req UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.wsService.UpdateWorkspace(ws.ID, userID, services.UpdateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*updated))
}

// UpdateAssignmentRules replaces the workspace's assignment rules.
func (h *WorkspaceHandler) UpdateAssignmentRules(c *gin.Context) {
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

	type RulesRequest struct {
		MembersCanAssignToOwners bool `json:"members_can_assign_to_owners"`
		MembersCanAssignToAdmins bool `json:"members_can_assign_to_admins"`
		AdminsCanAssignToOwners  bool `json:"admins_can_assign_to_owners"`
	}

	var req RulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.wsService.UpdateAssignmentRules(ws.ID, userID, models.AssignmentRules{
		MembersCanAssignToOwners: req.MembersCanAssignToOwners,
		MembersCanAssignToAdmins: req.MembersCanAssignToAdmins,
		AdminsCanAssignToOwners:  req.AdminsCanAssignToOwners,
	})
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*updated))
}

// RegenerateInviteCode generates a new invite code.
func (h *WorkspaceHandler) RegenerateInviteCode(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}

	updated, err := h.wsService.RegenerateInviteCode(ws.ID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*updated))
}

// JoinWorkspace adds the caller to a workspace via invite code.
func (h *WorkspaceHandler) JoinWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type JoinRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	ws, err := h.wsService.JoinByInvite(userID, req.InviteCode)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*ws))
}

// ChangeMemberRole promotes or demotes a member.
func (h *WorkspaceHandler) ChangeMemberRole(c *gin.Context) {
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

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type RoleRequest struct {
		Role models.WorkspaceRole `json:"role" binding:"required"`
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.wsService.ChangeMemberRole(ws.ID, userID, targetID, req.Role); err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
}

// RemoveMember removes a member, transferring or deleting their tasks.
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
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

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	var transferTo *uint64
	if transferStr := c.Query("transfer_to"); transferStr != "" {
		id, err := strconv.ParseUint(transferStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid transfer_to value")
			return
		}
		transferTo = &id
	}

	summary, err := h.wsService.RemoveMember(ws.ID, userID, targetID, transferTo)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// PreviewMemberTasks lists the tasks a member removal would affect.
func (h *WorkspaceHandler) PreviewMemberTasks(c *gin.Context) {
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

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	tasks, err := h.wsService.PreviewMemberTasks(ws.ID, userID, targetID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// DeleteWorkspace cascades a workspace deletion and returns the caller's new
// current workspace.
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
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

	newCurrent, err := h.wsService.DeleteWorkspace(ws.ID, userID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"current_workspace_id": newCurrent})
}

// ListWorkspaceActivities returns the workspace activity feed.
func (h *WorkspaceHandler) ListWorkspaceActivities(c *gin.Context) {
	ws, ok := middleware.GetWorkspace(c)
	if !ok {
		apierrors.InternalError(c, "Workspace not found in context")
		return
	}
	params := utils.GetPaginationParams(c)

	activities, total, err := h.activityService.ListWorkspaceActivities(ws.ID, params.Page, params.Limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch activity")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": dto.ToActivityDTOs(activities),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

func respondWorkspaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWorkspaceNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidWorkspaceName),
		errors.Is(err, services.ErrInvalidInviteCode),
		errors.Is(err, services.ErrAlreadyWorkspaceMember),
		errors.Is(err, services.ErrCannotRemoveYourself),
		errors.Is(err, services.ErrTransferTargetNotMember),
		errors.Is(err, services.ErrTransferToRemovedMember),
		errors.Is(err, services.ErrCannotChangeOwnerRole),
		errors.Is(err, services.ErrWorkspaceConflict):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotWorkspaceOwner),
		errors.Is(err, services.ErrSettingsForbidden),
		errors.Is(err, services.ErrNotWorkspaceMember):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
