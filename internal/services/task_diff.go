package services

import (
	"fmt"
	"time"

	"github.com/harukimoto/workspace-hub/internal/models"
)

var priorityLabels = map[models.TaskPriority]string{
	models.TaskPriorityLow:    "Low",
	models.TaskPriorityMedium: "Medium",
	models.TaskPriorityHigh:   "High",
}

var statusLabels = map[models.TaskStatus]string{
	models.TaskStatusTodo:       "To Do",
	models.TaskStatusInProgress: "In Progress",
	models.TaskStatusDone:       "Completed",
}

func priorityLabel(p models.TaskPriority) string {
	if label, ok := priorityLabels[p]; ok {
		return label
	}
	return string(p)
}

func statusLabel(s models.TaskStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func userDisplayName(user *models.User) string {
	if user == nil {
		return "unknown user"
	}
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}

func dueDateValue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func dueDateChanged(before, after *time.Time) bool {
	if before == nil || after == nil {
		return before != after
	}
	return !before.Equal(*after)
}

// diffActivities compares the pre-update snapshot against the updated task
// and produces one activity row per changed field. Fields that did not change
// produce nothing.
func diffActivities(before, after *models.Task, actorID uint64, oldAssignee, newAssignee *models.User) []models.TaskActivity {
	var activities []models.TaskActivity

	add := func(a models.TaskActivity) {
		a.UserID = actorID
		activities = append(activities, a)
	}

	if before.Priority != after.Priority {
		add(models.TaskActivity{
			Action:   models.ActivityPriorityChanged,
			Field:    "priority",
			OldValue: string(before.Priority),
			NewValue: string(after.Priority),
			Description: fmt.Sprintf("changed priority from %s to %s",
				priorityLabel(before.Priority), priorityLabel(after.Priority)),
		})
	}

	if before.Status != after.Status {
		add(models.TaskActivity{
			Action:   models.ActivityStatusChanged,
			Field:    "status",
			OldValue: string(before.Status),
			NewValue: string(after.Status),
			Description: fmt.Sprintf("changed status from %s to %s",
				statusLabel(before.Status), statusLabel(after.Status)),
		})
	}

	if !uint64PtrEqual(before.AssignedTo, after.AssignedTo) {
		activity := models.TaskActivity{
			Action:   models.ActivityAssigneeChanged,
			Field:    "assigned_to",
			OldValue: userDisplayName(oldAssignee),
			NewValue: userDisplayName(newAssignee),
		}
		switch {
		case before.AssignedTo == nil:
			activity.OldValue = ""
			activity.Description = fmt.Sprintf("assigned to %s", userDisplayName(newAssignee))
		case after.AssignedTo == nil:
			activity.NewValue = ""
			activity.Description = fmt.Sprintf("unassigned from %s", userDisplayName(oldAssignee))
		default:
			activity.Description = fmt.Sprintf("reassigned from %s to %s",
				userDisplayName(oldAssignee), userDisplayName(newAssignee))
		}
		add(activity)
	}

	if before.Title != after.Title {
		add(models.TaskActivity{
			Action:      models.ActivityTitleChanged,
			Field:       "title",
			OldValue:    before.Title,
			NewValue:    after.Title,
			Description: fmt.Sprintf("changed title from %q to %q", before.Title, after.Title),
		})
	}

	if before.Description != after.Description {
		// The description text itself stays out of the audit trail.
		add(models.TaskActivity{
			Action:      models.ActivityDescriptionChanged,
			Field:       "description",
			Description: "updated the description",
		})
	}

	if dueDateChanged(before.DueDate, after.DueDate) {
		activity := models.TaskActivity{
			Action:   models.ActivityDueDateChanged,
			Field:    "due_date",
			OldValue: dueDateValue(before.DueDate),
			NewValue: dueDateValue(after.DueDate),
		}
		switch {
		case before.DueDate == nil:
			activity.Description = fmt.Sprintf("set due date to %s", dueDateValue(after.DueDate))
		case after.DueDate == nil:
			activity.Description = "removed the due date"
		default:
			activity.Description = fmt.Sprintf("changed due date from %s to %s",
				dueDateValue(before.DueDate), dueDateValue(after.DueDate))
		}
		add(activity)
	}

	return activities
}
