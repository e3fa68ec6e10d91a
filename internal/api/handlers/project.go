package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"taskville/internal/repository"
	"taskville/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	audit          *repository.AuditWriter
}

func NewProjectHandler(projectService *services.ProjectService, audit *repository.AuditWriter) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, audit: audit}
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.ListProjects(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"projects": projects})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid project id"})
		return
	}

	project, err := h.projectService.GetProject(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, project)
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var in services.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	session, ok := currentSession(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	project, err := h.projectService.CreateProject(in, session.Identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.audit.Record(session.Identity.UserID, "create", "project", strconv.Itoa(int(project.ID)),
		project.Name, c.ClientIP(), c.GetHeader("User-Agent"))
	c.JSON(201, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid project id"})
		return
	}

	var in services.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	project, err := h.projectService.UpdateProject(id, in)
	if err != nil {
		respondError(c, err)
		return
	}

	if session, ok := currentSession(c); ok {
		h.audit.Record(session.Identity.UserID, "update", "project", strconv.Itoa(int(id)),
			project.Name, c.ClientIP(), c.GetHeader("User-Agent"))
	}
	c.JSON(200, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid project id"})
		return
	}

	if err := h.projectService.DeleteProject(id); err != nil {
		respondError(c, err)
		return
	}

	if session, ok := currentSession(c); ok {
		h.audit.Record(session.Identity.UserID, "delete", "project", strconv.Itoa(int(id)),
			"", c.ClientIP(), c.GetHeader("User-Agent"))
	}
	c.JSON(200, gin.H{"message": "Project deleted"})
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(id), err
}
