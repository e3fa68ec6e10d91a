package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskville/internal/models"
)

func TestNotifyValidatesInput(t *testing.T) {
	setupTestDB(t)
	notifications := NewNotificationService(zap.NewNop())
	user := seedUser(t, "reader", "User", true)

	_, err := notifications.Notify(user.ID, "", "  ", "msg", "")
	assert.Error(t, err)

	_, err = notifications.Notify(user.ID, "gossip", "Title", "msg", "")
	assert.Error(t, err)

	_, err = notifications.Notify(user.ID, "", "Title", "msg", "urgent")
	assert.Error(t, err)

	n, err := notifications.Notify(user.ID, "", "Title", "msg", "")
	require.NoError(t, err)
	assert.Equal(t, models.NotificationInfo, n.Type)
	assert.Equal(t, models.PriorityMedium, n.Priority)
	assert.False(t, n.Read)
}

func TestNotificationFeedIsPerUser(t *testing.T) {
	setupTestDB(t)
	notifications := NewNotificationService(zap.NewNop())
	alice := seedUser(t, "alice", "User", true)
	bob := seedUser(t, "bob", "User", true)

	_, err := notifications.Notify(alice.ID, "info", "First", "", "")
	require.NoError(t, err)
	_, err = notifications.Notify(alice.ID, "info", "Second", "", "")
	require.NoError(t, err)
	_, err = notifications.Notify(bob.ID, "info", "Other", "", "")
	require.NoError(t, err)

	feed, err := notifications.ListForUser(alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	for _, n := range feed {
		assert.Equal(t, alice.ID, n.UserID)
	}

	count, err := notifications.UnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	limited, err := notifications.ListForUser(alice.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	setupTestDB(t)
	notifications := NewNotificationService(zap.NewNop())
	alice := seedUser(t, "alice", "User", true)
	bob := seedUser(t, "bob", "User", true)

	n, err := notifications.Notify(alice.ID, "info", "Hello", "", "")
	require.NoError(t, err)

	_, err = notifications.MarkRead(n.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	read, err := notifications.MarkRead(n.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)
	require.NotNil(t, read.ReadAt)

	// Marking twice keeps the original read time.
	firstReadAt := *read.ReadAt
	again, err := notifications.MarkRead(n.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, firstReadAt.Unix(), again.ReadAt.Unix())

	count, err := notifications.UnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMarkAllRead(t *testing.T) {
	setupTestDB(t)
	notifications := NewNotificationService(zap.NewNop())
	user := seedUser(t, "reader", "User", true)

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := notifications.Notify(user.ID, "info", title, "", "")
		require.NoError(t, err)
	}

	updated, err := notifications.MarkAllRead(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	count, err := notifications.UnreadCount(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	updated, err = notifications.MarkAllRead(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestNotifyAssignment(t *testing.T) {
	setupTestDB(t)
	projects := NewProjectService(zap.NewNop())
	tasks := NewTaskService(zap.NewNop())
	notifications := NewNotificationService(zap.NewNop())

	project := seedProject(t, projects, "Board")
	worker := seedUser(t, "worker", "Developer", true)

	unassigned, err := tasks.CreateTask(TaskInput{ProjectID: project.ID, Name: "backlog item"})
	require.NoError(t, err)
	notifications.NotifyAssignment(unassigned)

	assigned, err := tasks.CreateTask(TaskInput{ProjectID: project.ID, Name: "wireframes", AssigneeID: &worker.ID})
	require.NoError(t, err)
	notifications.NotifyAssignment(assigned)

	feed, err := notifications.ListForUser(worker.ID, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, models.NotificationTask, feed[0].Type)
	assert.Contains(t, feed[0].Title, "wireframes")
	require.NotNil(t, feed[0].TaskID)
	assert.Equal(t, assigned.ID, *feed[0].TaskID)
}

func TestCheckDueTasksRemindsOnce(t *testing.T) {
	setupTestDB(t)
	projects := NewProjectService(zap.NewNop())
	tasks := NewTaskService(zap.NewNop())
	notifications := NewNotificationService(zap.NewNop())

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	notifications.now = func() time.Time { return now }

	project := seedProject(t, projects, "Launch")
	worker := seedUser(t, "worker", "Developer", true)

	_, err := tasks.CreateTask(TaskInput{
		ProjectID:  project.ID,
		Name:       "due soon",
		AssigneeID: &worker.ID,
		EndDate:    timePtr(now.Add(6 * time.Hour)),
	})
	require.NoError(t, err)
	_, err = tasks.CreateTask(TaskInput{
		ProjectID:  project.ID,
		Name:       "overdue",
		AssigneeID: &worker.ID,
		EndDate:    timePtr(now.Add(-48 * time.Hour)),
	})
	require.NoError(t, err)
	_, err = tasks.CreateTask(TaskInput{
		ProjectID:  project.ID,
		Name:       "already shipped",
		Status:     models.TaskDone,
		AssigneeID: &worker.ID,
		EndDate:    timePtr(now.Add(-48 * time.Hour)),
	})
	require.NoError(t, err)
	_, err = tasks.CreateTask(TaskInput{
		ProjectID:  project.ID,
		Name:       "far future",
		AssigneeID: &worker.ID,
		EndDate:    timePtr(now.Add(72 * time.Hour)),
	})
	require.NoError(t, err)

	created, err := notifications.CheckDueTasks()
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	feed, err := notifications.ListForUser(worker.ID, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	messages := map[string]string{}
	for _, n := range feed {
		assert.Equal(t, models.NotificationTask, n.Type)
		messages[n.Title] = n.Message
		if n.Message == "Task is overdue" {
			assert.Equal(t, models.PriorityCritical, n.Priority)
		} else {
			assert.Equal(t, models.PriorityHigh, n.Priority)
		}
	}
	assert.Equal(t, "Task is due soon", messages["Task: due soon"])
	assert.Equal(t, "Task is overdue", messages["Task: overdue"])

	// A second sweep does not repeat unread reminders.
	created, err = notifications.CheckDueTasks()
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	// Once read, the next sweep may remind again.
	_, err = notifications.MarkAllRead(worker.ID)
	require.NoError(t, err)
	created, err = notifications.CheckDueTasks()
	require.NoError(t, err)
	assert.Equal(t, 2, created)
}

func TestBroadcastReachesActiveUsers(t *testing.T) {
	setupTestDB(t)
	notifications := NewNotificationService(zap.NewNop())
	seedUser(t, "alice", "User", true)
	seedUser(t, "bob", "Manager", true)
	retired := seedUser(t, "carol", "User", false)

	_, err := notifications.Broadcast("  ", "msg", "")
	assert.Error(t, err)

	recipients, err := notifications.Broadcast("Maintenance window", "Back at 02:00", "high")
	require.NoError(t, err)
	assert.Equal(t, 2, recipients)

	count, err := notifications.UnreadCount(retired.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
