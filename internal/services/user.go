package services

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskville/internal/auth"
	"taskville/internal/models"
)

var ErrLastAdmin = errors.New("cannot remove the last admin user")

// UserService covers the administrative side of user management. The
// credential flows (register, login, password changes) live in auth.Service.
type UserService struct {
	authService *auth.Service
	logger      *zap.Logger
}

func NewUserService(authService *auth.Service, logger *zap.Logger) *UserService {
	return &UserService{authService: authService, logger: logger}
}

// ListUsers returns all users without their password hashes.
func (s *UserService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := models.DB.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}

	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// GetUser returns a specific user by ID
func (s *UserService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := models.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.PasswordHash = ""
	return &user, nil
}

// SetRole changes a user's role. Demoting the last admin is refused.
func (s *UserService) SetRole(id uint, role string) (*models.User, error) {
	if !auth.ValidRole(role) {
		return nil, inputErr("unknown role: %s", role)
	}

	var user models.User
	if err := models.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Role == string(auth.RoleAdmin) && role != string(auth.RoleAdmin) {
		if err := s.requireAnotherAdmin(user.ID); err != nil {
			return nil, err
		}
	}

	user.Role = role
	if err := models.DB.Save(&user).Error; err != nil {
		return nil, err
	}

	s.logger.Info("user role changed",
		zap.Uint("user_id", user.ID),
		zap.String("role", role))
	user.PasswordHash = ""
	return &user, nil
}

// SetActive enables or disables an account. Deactivation revokes the
// user's live sessions; the last active admin cannot be disabled.
func (s *UserService) SetActive(id uint, active bool) (*models.User, error) {
	var user models.User
	if err := models.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !active && user.Role == string(auth.RoleAdmin) {
		if err := s.requireAnotherAdmin(user.ID); err != nil {
			return nil, err
		}
	}

	user.Active = active
	if err := models.DB.Save(&user).Error; err != nil {
		return nil, err
	}

	if !active {
		s.authService.Sessions().RevokeUser(user.ID)
	}

	s.logger.Info("user active flag changed",
		zap.Uint("user_id", user.ID),
		zap.Bool("active", active))
	user.PasswordHash = ""
	return &user, nil
}

// DeleteUser removes a user and revokes their sessions. Assigned tasks are
// unassigned rather than deleted.
func (s *UserService) DeleteUser(id uint) error {
	var user models.User
	if err := models.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if user.Role == string(auth.RoleAdmin) {
		if err := s.requireAnotherAdmin(user.ID); err != nil {
			return err
		}
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("assignee_id = ?", id).
			Update("assignee_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return err
	}

	s.authService.Sessions().RevokeUser(id)
	s.logger.Info("user deleted", zap.Uint("user_id", id), zap.String("username", user.Username))
	return nil
}

// ActiveSessions returns the live sessions, for the admin panel.
func (s *UserService) ActiveSessions() []auth.Session {
	return s.authService.Sessions().Active()
}

func (s *UserService) requireAnotherAdmin(excludeID uint) error {
	var count int64
	err := models.DB.Model(&models.User{}).
		Where("role = ? AND active = ? AND id != ?", string(auth.RoleAdmin), true, excludeID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrLastAdmin
	}
	return nil
}
