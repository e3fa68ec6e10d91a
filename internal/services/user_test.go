package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskville/internal/auth"
	"taskville/internal/models"
)

func TestSetRoleValidation(t *testing.T) {
	cfg := setupTestDB(t)
	users := NewUserService(newTestAuthService(t, cfg), zap.NewNop())

	user := seedUser(t, "worker", "User", true)

	_, err := users.SetRole(user.ID, "Overlord")
	assert.Error(t, err)

	updated, err := users.SetRole(user.ID, string(auth.RoleManager))
	require.NoError(t, err)
	assert.Equal(t, "Manager", updated.Role)
	assert.Empty(t, updated.PasswordHash)
}

func TestLastAdminProtection(t *testing.T) {
	cfg := setupTestDB(t)
	users := NewUserService(newTestAuthService(t, cfg), zap.NewNop())

	admin := seedUser(t, "boss", "Admin", true)

	_, err := users.SetRole(admin.ID, "User")
	assert.ErrorIs(t, err, ErrLastAdmin)

	_, err = users.SetActive(admin.ID, false)
	assert.ErrorIs(t, err, ErrLastAdmin)

	assert.ErrorIs(t, users.DeleteUser(admin.ID), ErrLastAdmin)

	// With a second admin around, demotion is allowed.
	seedUser(t, "boss2", "Admin", true)
	_, err = users.SetRole(admin.ID, "User")
	assert.NoError(t, err)
}

func TestDeactivationRevokesSessions(t *testing.T) {
	cfg := setupTestDB(t)
	authSvc := newTestAuthService(t, cfg)
	users := NewUserService(authSvc, zap.NewNop())

	_, err := authSvc.Register(testCtx, auth.RegisterInput{
		Username: "worker", Password: "Str0ng!Pass", Email: "worker@example.com",
	})
	require.NoError(t, err)
	sess, err := authSvc.Login(testCtx, "worker", "Str0ng!Pass", "", "")
	require.NoError(t, err)

	user, err := users.SetActive(sess.Identity.UserID, false)
	require.NoError(t, err)
	assert.False(t, user.Active)

	_, ok := authSvc.ValidateSession(sess.Token)
	assert.False(t, ok)
}

func TestDeleteUserUnassignsTasks(t *testing.T) {
	cfg := setupTestDB(t)
	users := NewUserService(newTestAuthService(t, cfg), zap.NewNop())
	projects := NewProjectService(zap.NewNop())
	tasks := NewTaskService(zap.NewNop())

	worker := seedUser(t, "worker", "User", true)
	project := seedProject(t, projects, "Board")
	task, err := tasks.CreateTask(TaskInput{ProjectID: project.ID, Name: "handover", AssigneeID: &worker.ID})
	require.NoError(t, err)

	require.NoError(t, users.DeleteUser(worker.ID))

	var reloaded models.Task
	require.NoError(t, models.DB.First(&reloaded, task.ID).Error)
	assert.Nil(t, reloaded.AssigneeID, "deleting a user unassigns their tasks")
}

func TestListUsersHidesHashes(t *testing.T) {
	cfg := setupTestDB(t)
	users := NewUserService(newTestAuthService(t, cfg), zap.NewNop())

	seedUser(t, "worker", "User", true)
	list, err := users.ListUsers()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].PasswordHash)
}
