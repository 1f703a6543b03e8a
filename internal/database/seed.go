package database

import (
	"context"
	"time"

	"task-tracker/backend/internal/models"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const SeedPassword = "password123"

type SeedResult struct {
	Users []models.User
	Tasks []models.Task
	Logs  int
}

type seedTask struct {
	title       string
	description string
	status      models.TaskStatus
	assignee    int // index into the seeded team members, -1 for none
	age         time.Duration
}

var seedTasks = []seedTask{
	{
		title:       "Create project documentation",
		description: "Write comprehensive documentation for the project including setup instructions and API endpoints.",
		status:      models.StatusNotStarted,
		assignee:    0,
	},
	{
		title:       "Implement user authentication",
		description: "Set up JWT authentication with role-based access control.",
		status:      models.StatusInProgress,
		assignee:    1,
	},
	{
		title:       "Design database schema",
		description: "Create database schema for users, tasks, and activity logs.",
		status:      models.StatusDone,
		assignee:    0,
		age:         7 * 24 * time.Hour,
	},
	{
		title:       "Set up CI/CD pipeline",
		description: "Configure GitHub Actions for continuous integration and deployment.",
		status:      models.StatusNotStarted,
		assignee:    -1,
	},
}

// Seed wipes all three tables and inserts one lead, two team members and
// four sample tasks with their creation and assignment log entries.
func Seed(ctx context.Context, db *gorm.DB, bcryptCost int) (*SeedResult, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcryptCost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hash seed password")
	}

	result := &SeedResult{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&models.ActivityLog{}, &models.Task{}, &models.User{}} {
			if err := wipe.Delete(model).Error; err != nil {
				return goerr.Wrap(err, "failed to clear table")
			}
		}

		now := time.Now()
		users := []models.User{
			{Name: "John Lead", Email: "lead@example.com", PasswordHash: string(hash), Role: models.RoleLead},
			{Name: "Alice Member", Email: "alice@example.com", PasswordHash: string(hash), Role: models.RoleTeamMember},
			{Name: "Bob Member", Email: "bob@example.com", PasswordHash: string(hash), Role: models.RoleTeamMember},
		}
		for i := range users {
			users[i].CreatedAt, users[i].UpdatedAt = now, now
			if err := tx.Create(&users[i]).Error; err != nil {
				return goerr.Wrap(err, "failed to seed user", goerr.V("email", users[i].Email))
			}
		}
		lead, members := users[0], users[1:]

		for _, st := range seedTasks {
			description := st.description
			task := models.Task{
				Title:       st.title,
				Description: &description,
				Status:      st.status,
				CreatedByID: lead.ID,
				CreatedAt:   now.Add(-st.age),
				UpdatedAt:   now,
			}
			if st.assignee >= 0 {
				id := members[st.assignee].ID
				task.AssignedToID = &id
			}
			if err := tx.Omit(clause.Associations).Create(&task).Error; err != nil {
				return goerr.Wrap(err, "failed to seed task", goerr.V("title", task.Title))
			}
			result.Tasks = append(result.Tasks, task)

			entries := []models.ActivityLog{{
				EntityType: models.EntityTask,
				EntityID:   task.ID,
				Action:     models.ActionCreated,
				UserID:     lead.ID,
				Details:    models.Details{"title": task.Title, "assignedToId": task.AssignedToID},
				CreatedAt:  task.CreatedAt,
			}}
			if task.AssignedToID != nil {
				entries = append(entries, models.ActivityLog{
					EntityType: models.EntityTask,
					EntityID:   task.ID,
					Action:     models.ActionAssigned,
					UserID:     lead.ID,
					Details:    models.Details{"assignedToId": *task.AssignedToID},
					CreatedAt:  task.CreatedAt.Add(time.Second),
				})
			}
			if err := tx.Omit(clause.Associations).Create(&entries).Error; err != nil {
				return goerr.Wrap(err, "failed to seed activity logs", goerr.V("taskID", task.ID))
			}
			result.Logs += len(entries)
		}

		result.Users = users
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
