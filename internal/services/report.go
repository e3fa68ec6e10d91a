package services

import (
	"time"

	"go.uber.org/zap"

	"taskville/internal/models"
)

// ReportService produces the aggregates behind the dashboard pages.
// Chart rendering happens client-side; this layer only counts.
type ReportService struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewReportService(logger *zap.Logger) *ReportService {
	return &ReportService{logger: logger, now: time.Now}
}

type ProjectReport struct {
	ProjectID       uint           `json:"project_id"`
	ProjectName     string         `json:"project_name"`
	Status          string         `json:"status"`
	TotalTasks      int            `json:"total_tasks"`
	TasksByStatus   map[string]int `json:"tasks_by_status"`
	AverageProgress float64        `json:"average_progress"`
	OverdueTasks    int            `json:"overdue_tasks"`
	Overdue         bool           `json:"overdue"`
}

type WorkloadEntry struct {
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	AssignedTasks int    `json:"assigned_tasks"`
	OpenTasks     int    `json:"open_tasks"`
	OverdueTasks  int    `json:"overdue_tasks"`
}

type Overview struct {
	TotalProjects    int            `json:"total_projects"`
	ProjectsByStatus map[string]int `json:"projects_by_status"`
	TotalTasks       int            `json:"total_tasks"`
	TasksByStatus    map[string]int `json:"tasks_by_status"`
	OverdueProjects  int            `json:"overdue_projects"`
	OverdueTasks     int            `json:"overdue_tasks"`
}

// ProjectReport summarizes one project's task situation.
func (s *ReportService) ProjectReport(projectID uint) (*ProjectReport, error) {
	var project models.Project
	if err := models.DB.Preload("Tasks").First(&project, projectID).Error; err != nil {
		return nil, ErrProjectNotFound
	}

	now := s.now()
	report := &ProjectReport{
		ProjectID:     project.ID,
		ProjectName:   project.Name,
		Status:        project.Status,
		TotalTasks:    len(project.Tasks),
		TasksByStatus: statusCounts(models.TaskStatuses),
		Overdue:       project.IsOverdue(now),
	}

	progressSum := 0
	for _, task := range project.Tasks {
		report.TasksByStatus[task.Status]++
		progressSum += task.Progress
		if task.IsOverdue(now) {
			report.OverdueTasks++
		}
	}
	if report.TotalTasks > 0 {
		report.AverageProgress = float64(progressSum) / float64(report.TotalTasks)
	}
	return report, nil
}

// Workload summarizes task assignment per active user.
func (s *ReportService) Workload() ([]WorkloadEntry, error) {
	var users []models.User
	if err := models.DB.Where("active = ?", true).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}

	now := s.now()
	entries := make([]WorkloadEntry, 0, len(users))
	for _, user := range users {
		var tasks []models.Task
		if err := models.DB.Where("assignee_id = ?", user.ID).Find(&tasks).Error; err != nil {
			return nil, err
		}

		entry := WorkloadEntry{UserID: user.ID, Username: user.Username, AssignedTasks: len(tasks)}
		for _, task := range tasks {
			if task.Status != models.TaskDone {
				entry.OpenTasks++
			}
			if task.IsOverdue(now) {
				entry.OverdueTasks++
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Overview aggregates across every project and task for the dashboard.
func (s *ReportService) Overview() (*Overview, error) {
	var projects []models.Project
	if err := models.DB.Find(&projects).Error; err != nil {
		return nil, err
	}
	var tasks []models.Task
	if err := models.DB.Find(&tasks).Error; err != nil {
		return nil, err
	}

	now := s.now()
	overview := &Overview{
		TotalProjects:    len(projects),
		ProjectsByStatus: statusCounts(models.ProjectStatuses),
		TotalTasks:       len(tasks),
		TasksByStatus:    statusCounts(models.TaskStatuses),
	}
	for _, project := range projects {
		overview.ProjectsByStatus[project.Status]++
		if project.IsOverdue(now) {
			overview.OverdueProjects++
		}
	}
	for _, task := range tasks {
		overview.TasksByStatus[task.Status]++
		if task.IsOverdue(now) {
			overview.OverdueTasks++
		}
	}
	return overview, nil
}

func statusCounts(statuses []string) map[string]int {
	counts := make(map[string]int, len(statuses))
	for _, s := range statuses {
		counts[s] = 0
	}
	return counts
}
