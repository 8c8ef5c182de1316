package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harukimoto/workspace-hub/internal/database"
	apierrors "github.com/harukimoto/workspace-hub/internal/errors"
	"github.com/harukimoto/workspace-hub/internal/models"
)

// RequireWorkspaceAccess checks that the user is a member of the workspace
// named in the :id route parameter, and loads the workspace and membership
// into the context.
func RequireWorkspaceAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		wsIDStr := c.Param("id")
		wsID, err := strconv.ParseUint(wsIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid workspace ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var ws models.Workspace
		if err := database.GetDB().First(&ws, wsID).Error; err != nil {
			apierrors.NotFound(c, "Workspace not found")
			c.Abort()
			return
		}

		var member models.Member
		err = database.GetDB().
			Where("workspace_id = ? AND user_id = ?", wsID, userID).
			First(&member).Error
		if err != nil {
			// 404 instead of 403 to avoid leaking workspace existence
			apierrors.NotFound(c, "Workspace not found")
			c.Abort()
			return
		}

		c.Set("workspace", ws)
		c.Set("workspace_member", member)
		c.Next()
	}
}

// RequireWorkspaceOwner checks that the user holds the owner role in the
// workspace loaded by RequireWorkspaceAccess.
func RequireWorkspaceOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberValue, exists := c.Get("workspace_member")
		if !exists {
			apierrors.Forbidden(c, "Workspace access required")
			c.Abort()
			return
		}

		member, ok := memberValue.(models.Member)
		if !ok {
			apierrors.InternalError(c, "Invalid workspace member data")
			c.Abort()
			return
		}

		if member.Role != models.RoleOwner {
			apierrors.Forbidden(c, "Only workspace owners can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetWorkspace retrieves the workspace loaded by RequireWorkspaceAccess
func GetWorkspace(c *gin.Context) (models.Workspace, bool) {
	value, exists := c.Get("workspace")
	if !exists {
		return models.Workspace{}, false
	}
	ws, ok := value.(models.Workspace)
	return ws, ok
}

// GetWorkspaceMember retrieves the membership loaded by RequireWorkspaceAccess
func GetWorkspaceMember(c *gin.Context) (models.Member, bool) {
	value, exists := c.Get("workspace_member")
	if !exists {
		return models.Member{}, false
	}
	member, ok := value.(models.Member)
	return member, ok
}
