package services

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskville/internal/models"
)

type ProjectService struct {
	logger *zap.Logger
}

func NewProjectService(logger *zap.Logger) *ProjectService {
	return &ProjectService{logger: logger}
}

type ProjectInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (in *ProjectInput) validate() error {
	name := strings.TrimSpace(in.Name)
	if len(name) < 2 {
		return inputErr("project name must be at least 2 characters")
	}
	if len(name) > 100 {
		return inputErr("project name must be less than 100 characters")
	}
	if in.Status != "" && !validStatus(in.Status, models.ProjectStatuses) {
		return inputErr("status must be one of: %s", strings.Join(models.ProjectStatuses, ", "))
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return inputErr("end date must be after start date")
	}
	return nil
}

// CreateProject validates and persists a new project owned by ownerID.
func (s *ProjectService) CreateProject(in ProjectInput, ownerID uint) (*models.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.ProjectPlanning
	}

	project := &models.Project{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Status:      status,
		OwnerID:     ownerID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	if err := models.DB.Create(project).Error; err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		zap.Uint("project_id", project.ID),
		zap.String("name", project.Name))
	return project, nil
}

// GetProject returns a project with its tasks preloaded.
func (s *ProjectService) GetProject(id uint) (*models.Project, error) {
	var project models.Project
	if err := models.DB.Preload("Tasks").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// ListProjects returns all projects, optionally filtered by status.
func (s *ProjectService) ListProjects(status string) ([]models.Project, error) {
	q := models.DB.Order("created_at DESC")
	if status != "" {
		if !validStatus(status, models.ProjectStatuses) {
			return nil, inputErr("unknown project status: %s", status)
		}
		q = q.Where("status = ?", status)
	}

	var projects []models.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// UpdateProject applies the input to an existing project.
func (s *ProjectService) UpdateProject(id uint, in ProjectInput) (*models.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var project models.Project
	if err := models.DB.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	project.Name = strings.TrimSpace(in.Name)
	project.Description = in.Description
	if in.Status != "" {
		project.Status = in.Status
	}
	project.StartDate = in.StartDate
	project.EndDate = in.EndDate

	if err := models.DB.Save(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject removes a project and everything under it.
func (s *ProjectService) DeleteProject(id uint) error {
	var project models.Project
	if err := models.DB.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&project).Error; err != nil {
			return err
		}
		s.logger.Info("project deleted",
			zap.Uint("project_id", id),
			zap.String("name", project.Name))
		return nil
	})
}

func validStatus(status string, allowed []string) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}
