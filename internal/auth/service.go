package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskville/internal/config"
	"taskville/internal/models"
)

// Service implements registration, login, logout and the password flows
// on top of the hasher, lockout tracker and session store. It holds no
// state of its own; everything mutable lives in the stores it composes.
type Service struct {
	cfg      *config.Config
	users    UserRepository
	resets   ResetRepository
	hasher   *Hasher
	tracker  *Tracker
	sessions *Store
	csrf     *CSRFMinter
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(cfg *config.Config, users UserRepository, resets ResetRepository, logger *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		users:    users,
		resets:   resets,
		hasher:   NewHasher(cfg.Security.BcryptCost, logger),
		tracker:  NewTracker(cfg.Security.Lockout, logger),
		sessions: NewStore(cfg.Session),
		csrf:     NewCSRFMinter(cfg.CSRF),
		logger:   logger,
		now:      time.Now,
	}
}

// Sessions exposes the session store for middleware and admin views.
func (s *Service) Sessions() *Store { return s.sessions }

// CSRF exposes the CSRF minter for request verification middleware.
func (s *Service) CSRF() *CSRFMinter { return s.csrf }

// Hasher exposes the password hasher, e.g. for seeding the default admin.
func (s *Service) Hasher() *Hasher { return s.hasher }

type RegisterInput struct {
	Username string
	Password string
	Email    string
	Role     string
}

// Register validates input, enforces uniqueness and persists a new user.
// An empty role defaults to User; role elevation must be authorized by
// the caller before it reaches this method.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	fields := map[string]string{}
	if err := ValidateUsername(in.Username); err != nil {
		for k, v := range err.Fields {
			fields[k] = v
		}
	}
	if err := ValidatePassword(in.Password, s.cfg.Security.Password); err != nil {
		for k, v := range err.Fields {
			fields[k] = v
		}
	}
	if err := ValidateEmail(in.Email); err != nil {
		for k, v := range err.Fields {
			fields[k] = v
		}
	}
	role := in.Role
	if role == "" {
		role = string(RoleUser)
	}
	if !ValidRole(role) {
		fields["role"] = "unknown role"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if existing, err := s.users.FindByUsername(ctx, in.Username); err != nil {
		return nil, infraErr("lookup username", err)
	} else if existing != nil {
		return nil, ErrDuplicateUser
	}
	if in.Email != "" {
		if existing, err := s.users.FindByEmail(ctx, in.Email); err != nil {
			return nil, infraErr("lookup email", err)
		} else if existing != nil {
			return nil, ErrDuplicateUser
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, infraErr("insert user", err)
	}

	s.logger.Info("user registered",
		zap.String("username", user.Username),
		zap.String("role", user.Role))
	return user, nil
}

// Login authenticates credentials and opens a session. Unknown users,
// inactive accounts and wrong passwords all fail identically with
// ErrInvalidCredentials; only an active lockout is reported distinctly.
func (s *Service) Login(ctx context.Context, username, password, ip, userAgent string) (*Session, error) {
	if s.tracker.IsLocked(username) {
		return nil, &AccountLockedError{RetryAfter: s.tracker.RetryAfter(username)}
	}

	// Opportunistic housekeeping; there is no background sweeper.
	s.sessions.Sweep()

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, infraErr("lookup username", err)
	}
	if user == nil || !user.Active {
		s.tracker.RecordFailure(username)
		// Burn comparable CPU for unknown users so response timing does
		// not separate "no such user" from "wrong password".
		s.hasher.Verify(password, dummyHash)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.tracker.RecordFailure(username)
		s.logger.Warn("failed login attempt",
			zap.String("username", username),
			zap.String("ip", ip))
		return nil, ErrInvalidCredentials
	}

	s.tracker.RecordSuccess(username)

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Non-fatal: the login itself succeeded.
		s.logger.Warn("failed to update last login", zap.Error(err), zap.Uint("user_id", user.ID))
	}

	identity := Identity{UserID: user.ID, Username: user.Username, Role: Role(user.Role)}
	sess, err := s.createSession(identity, ip, userAgent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("ip", ip))
	return sess, nil
}

// Logout revokes the session token. Revoking an unknown token is a no-op.
func (s *Service) Logout(token string) {
	s.sessions.Revoke(token)
}

// ValidateSession resolves a session token to a live session.
func (s *Service) ValidateSession(token string) (*Session, bool) {
	return s.sessions.Validate(token)
}

// ChangePassword re-verifies the current password before accepting a new
// one. Other sessions of the user are revoked; the calling session stays.
func (s *Service) ChangePassword(ctx context.Context, sess *Session, current, newPassword string) error {
	user, err := s.users.FindByID(ctx, sess.Identity.UserID)
	if err != nil {
		return infraErr("lookup user", err)
	}
	if user == nil || !s.hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if err := ValidatePassword(newPassword, s.cfg.Security.Password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return infraErr("update password", err)
	}

	token := sess.Token
	s.sessions.RevokeUser(user.ID)
	if restored, err := s.createSession(sess.Identity, sess.IPAddress, sess.UserAgent); err == nil {
		// Keep the caller logged in under a fresh token.
		*sess = *restored
	} else {
		s.logger.Warn("failed to restore session after password change", zap.Error(err))
		s.sessions.Revoke(token)
	}

	s.logger.Info("password changed", zap.String("username", user.Username))
	return nil
}

// RequestPasswordReset creates a single-use reset token when the email
// belongs to an account. The returned token is for the delivery channel
// only (email is outside this layer); handlers must respond identically
// whether or not it is empty.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", infraErr("lookup email", err)
	}
	if user == nil || !user.Active {
		return "", nil
	}

	reset := &models.PasswordReset{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.cfg.Session.ResetTTLDuration()),
	}
	if err := s.resets.Insert(ctx, reset); err != nil {
		return "", infraErr("insert reset token", err)
	}

	s.logger.Info("password reset requested", zap.Uint("user_id", user.ID))
	return reset.ID, nil
}

// ResetPassword consumes a reset token and sets a new password. The token
// is burned even though the user could immediately request another.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	reset, err := s.resets.Find(ctx, token)
	if err != nil {
		return infraErr("lookup reset token", err)
	}
	now := s.now()
	if reset == nil || reset.UsedAt != nil || !now.Before(reset.ExpiresAt) {
		return ErrInvalidToken
	}

	if err := ValidatePassword(newPassword, s.cfg.Security.Password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, reset.UserID, hash); err != nil {
		return infraErr("update password", err)
	}
	if err := s.resets.MarkUsed(ctx, reset.ID, now); err != nil {
		return infraErr("mark reset token used", err)
	}

	s.sessions.RevokeUser(reset.UserID)
	s.tracker.RecordSuccess(s.usernameOf(ctx, reset.UserID))

	s.logger.Info("password reset completed", zap.Uint("user_id", reset.UserID))
	return nil
}

// createSession mints the CSRF token before the session enters the store,
// so the stored record is complete the moment it becomes visible.
func (s *Service) createSession(identity Identity, ip, userAgent string) (*Session, error) {
	token, err := generateToken(32)
	if err != nil {
		return nil, infraErr("create session", err)
	}
	csrfToken, err := s.csrf.Mint(token)
	if err != nil {
		s.logger.Warn("failed to mint csrf token", zap.Error(err))
		csrfToken = ""
	}
	return s.sessions.put(token, identity, csrfToken, ip, userAgent), nil
}

func (s *Service) usernameOf(ctx context.Context, id uint) string {
	user, err := s.users.FindByID(ctx, id)
	if err != nil || user == nil {
		return ""
	}
	return user.Username
}

// dummyHash is a valid bcrypt hash of an unguessable value, used to keep
// verification cost flat when the user does not exist.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"
