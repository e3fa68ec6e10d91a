package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"taskville/internal/repository"
	"taskville/internal/services"
)

type TaskHandler struct {
	taskService   *services.TaskService
	notifications *services.NotificationService
	audit         *repository.AuditWriter
}

func NewTaskHandler(taskService *services.TaskService, notifications *services.NotificationService, audit *repository.AuditWriter) *TaskHandler {
	return &TaskHandler{taskService: taskService, notifications: notifications, audit: audit}
}

func (h *TaskHandler) ListByProject(c *gin.Context) {
	projectID, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid project id"})
		return
	}

	tasks, err := h.taskService.ListByProject(projectID, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"tasks": tasks})
}

func (h *TaskHandler) Kanban(c *gin.Context) {
	projectID, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid project id"})
		return
	}

	board, err := h.taskService.KanbanBoard(projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"board": board})
}

func (h *TaskHandler) MyTasks(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	tasks, err := h.taskService.ListByAssignee(session.Identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"tasks": tasks})
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid task id"})
		return
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, task)
}

func (h *TaskHandler) Create(c *gin.Context) {
	var in services.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	task, err := h.taskService.CreateTask(in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.notifications.NotifyAssignment(task)

	if session, ok := currentSession(c); ok {
		h.audit.Record(session.Identity.UserID, "create", "task", strconv.Itoa(int(task.ID)),
			task.Name, c.ClientIP(), c.GetHeader("User-Agent"))
	}
	c.JSON(201, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid task id"})
		return
	}

	var in services.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	task, err := h.taskService.UpdateTask(id, in)
	if err != nil {
		respondError(c, err)
		return
	}

	if session, ok := currentSession(c); ok {
		h.audit.Record(session.Identity.UserID, "update", "task", strconv.Itoa(int(id)),
			task.Name, c.ClientIP(), c.GetHeader("User-Agent"))
	}
	c.JSON(200, task)
}

type ProgressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

func (h *TaskHandler) UpdateProgress(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid task id"})
		return
	}

	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	task, err := h.taskService.UpdateProgress(id, *req.Progress)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid task id"})
		return
	}

	if err := h.taskService.DeleteTask(id); err != nil {
		respondError(c, err)
		return
	}

	if session, ok := currentSession(c); ok {
		h.audit.Record(session.Identity.UserID, "delete", "task", strconv.Itoa(int(id)),
			"", c.ClientIP(), c.GetHeader("User-Agent"))
	}
	c.JSON(200, gin.H{"message": "Task deleted"})
}
