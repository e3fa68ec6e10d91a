package services

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskville/internal/models"
)

type TaskService struct {
	logger *zap.Logger
}

func NewTaskService(logger *zap.Logger) *TaskService {
	return &TaskService{logger: logger}
}

type TaskInput struct {
	ProjectID   uint       `json:"project_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Progress    *int       `json:"progress"`
	AssigneeID  *uint      `json:"assignee_id"`
	Labels      []string   `json:"labels"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (in *TaskInput) validate() error {
	name := strings.TrimSpace(in.Name)
	if len(name) < 2 {
		return inputErr("task name must be at least 2 characters")
	}
	if len(name) > 100 {
		return inputErr("task name must be less than 100 characters")
	}
	if in.Status != "" && !validStatus(in.Status, models.TaskStatuses) {
		return inputErr("status must be one of: %s", strings.Join(models.TaskStatuses, ", "))
	}
	if in.Progress != nil && (*in.Progress < 0 || *in.Progress > 100) {
		return inputErr("progress must be between 0 and 100")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return inputErr("end date must be after start date")
	}
	return nil
}

// CreateTask validates and persists a task under an existing project.
func (s *TaskService) CreateTask(in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var project models.Project
	if err := models.DB.First(&project, in.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if in.AssigneeID != nil {
		if err := assigneeExists(*in.AssigneeID); err != nil {
			return nil, err
		}
	}

	status := in.Status
	if status == "" {
		status = models.TaskToDo
	}
	progress := 0
	if in.Progress != nil {
		progress = *in.Progress
	}
	if status == models.TaskDone {
		progress = 100
	}

	task := &models.Task{
		ProjectID:   in.ProjectID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Status:      status,
		Progress:    progress,
		AssigneeID:  in.AssigneeID,
		Labels:      in.Labels,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	if err := models.DB.Create(task).Error; err != nil {
		return nil, err
	}

	s.logger.Info("task created",
		zap.Uint("task_id", task.ID),
		zap.Uint("project_id", task.ProjectID),
		zap.String("name", task.Name))
	return task, nil
}

// GetTask returns a task by id.
func (s *TaskService) GetTask(id uint) (*models.Task, error) {
	var task models.Task
	if err := models.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// ListByProject returns a project's tasks, optionally filtered by status.
func (s *TaskService) ListByProject(projectID uint, status string) ([]models.Task, error) {
	q := models.DB.Where("project_id = ?", projectID).Order("created_at")
	if status != "" {
		if !validStatus(status, models.TaskStatuses) {
			return nil, inputErr("unknown task status: %s", status)
		}
		q = q.Where("status = ?", status)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByAssignee returns all tasks assigned to a user.
func (s *TaskService) ListByAssignee(userID uint) ([]models.Task, error) {
	var tasks []models.Task
	if err := models.DB.Where("assignee_id = ?", userID).Order("end_date").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask applies the input to an existing task. Moving a task to Done
// forces progress to 100.
func (s *TaskService) UpdateTask(id uint, in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var task models.Task
	if err := models.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if in.AssigneeID != nil {
		if err := assigneeExists(*in.AssigneeID); err != nil {
			return nil, err
		}
	}

	task.Name = strings.TrimSpace(in.Name)
	task.Description = in.Description
	if in.Status != "" {
		task.Status = in.Status
	}
	if in.Progress != nil {
		task.Progress = *in.Progress
	}
	if task.Status == models.TaskDone {
		task.Progress = 100
	}
	task.AssigneeID = in.AssigneeID
	task.Labels = in.Labels
	task.StartDate = in.StartDate
	task.EndDate = in.EndDate

	if err := models.DB.Save(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateProgress sets only the progress percentage. Hitting 100 moves the
// task to Done; dropping below 100 moves a Done task back to In Progress.
func (s *TaskService) UpdateProgress(id uint, progress int) (*models.Task, error) {
	if progress < 0 || progress > 100 {
		return nil, inputErr("progress must be between 0 and 100")
	}

	var task models.Task
	if err := models.DB.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	task.Progress = progress
	if progress == 100 {
		task.Status = models.TaskDone
	} else if task.Status == models.TaskDone {
		task.Status = models.TaskInProgress
	}

	if err := models.DB.Save(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(id uint) error {
	res := models.DB.Delete(&models.Task{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// KanbanBoard groups a project's tasks by status, one column per status
// in board order, including empty columns.
func (s *TaskService) KanbanBoard(projectID uint) (map[string][]models.Task, error) {
	tasks, err := s.ListByProject(projectID, "")
	if err != nil {
		return nil, err
	}

	board := make(map[string][]models.Task, len(models.TaskStatuses))
	for _, status := range models.TaskStatuses {
		board[status] = []models.Task{}
	}
	for _, task := range tasks {
		board[task.Status] = append(board[task.Status], task)
	}
	return board, nil
}

func assigneeExists(userID uint) error {
	var count int64
	if err := models.DB.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
