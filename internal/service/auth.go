package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/empdir/emp-api/internal/hash"
	"github.com/empdir/emp-api/internal/logging"
	"github.com/empdir/emp-api/internal/models"
	"github.com/empdir/emp-api/internal/repo"
	"github.com/empdir/emp-api/internal/tokens"
)

var (
	// ErrInvalidCredentials deliberately covers unknown username, wrong
	// password and inactive account. Callers must not learn which check failed.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrValidation = errors.New("validation error")
)

type AuthService struct {
	Repo  *repo.GormRepo
	Codec *tokens.Codec
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Authenticate verifies credentials and issues a signed bearer token. The
// account itself is never mutated here.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate", "username", username)

	if username == "" || password == "" {
		return nil, ErrValidation
	}

	user, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "reason", "unknown_username")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		l.Warn("login_failed", "reason", "account_inactive", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	ok, err := hash.CheckPassword(user.PasswordHash, password)
	if err != nil {
		// Corrupt stored hash is a server fault, not a login failure.
		l.Error("login_failed", "reason", "hash_error", "user_id", user.ID, "error", err)
		return nil, err
	}
	if !ok {
		l.Warn("login_failed", "reason", "password_mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.Codec.Issue(user.ID, user.Username, user.Role, time.Now())
	if err != nil {
		l.Error("login_failed", "reason", "token_issue", "user_id", user.ID, "error", err)
		return nil, err
	}

	l.Info("login_successful", "user_id", user.ID, "role", user.Role)
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// ChangePassword replaces the stored hash after verifying the current
// password. "Account missing", "wrong current password" and "zero rows
// written" all come back false; they differ only in the logs.
func (s *AuthService) ChangePassword(ctx context.Context, id uint, currentPassword, newPassword string) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", id)

	if newPassword == "" {
		return false, ErrValidation
	}

	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("change_password_failed", "reason", "user_not_found")
			return false, nil
		}
		return false, err
	}

	ok, err := hash.CheckPassword(user.PasswordHash, currentPassword)
	if err != nil {
		l.Error("change_password_failed", "reason", "hash_error", "error", err)
		return false, err
	}
	if !ok {
		l.Warn("change_password_failed", "reason", "current_password_mismatch")
		return false, nil
	}

	newHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return false, err
	}
	user.PasswordHash = newHash

	rows, err := s.Repo.UpdateUser(ctx, user)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		l.Warn("change_password_failed", "reason", "no_rows_affected")
		return false, nil
	}

	l.Info("password_changed")
	return true, nil
}

// CreateUser pre-checks the username for a friendly duplicate error; the
// unique index on users.username is the actual invariant enforcer and the
// insert itself reports the race loser as ErrDuplicateUsername too.
func (s *AuthService) CreateUser(ctx context.Context, username, password, firstName, lastName, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.create_user", "username", username)

	if username == "" || password == "" {
		return nil, ErrValidation
	}
	if !models.ValidRole(role) {
		return nil, ErrValidation
	}

	exists, err := s.Repo.UserExistsByUsername(ctx, username, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		l.Warn("create_user_failed", "reason", "duplicate_username")
		return nil, repo.ErrDuplicateUsername
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("create_user_failed", "reason", "hash_error", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: pwHash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicateUsername) {
			l.Warn("create_user_failed", "reason", "duplicate_username_on_insert")
		}
		return nil, err
	}

	l.Info("user_created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// UpdateUser re-runs the duplicate check only when the username actually
// changes, excluding the account's own row.
func (s *AuthService) UpdateUser(ctx context.Context, id uint, username, firstName, lastName, role string) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_user", "user_id", id)

	if username == "" || !models.ValidRole(role) {
		return false, ErrValidation
	}

	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("update_user_failed", "reason", "user_not_found")
			return false, nil
		}
		return false, err
	}

	if !strings.EqualFold(username, user.Username) {
		exists, err := s.Repo.UserExistsByUsername(ctx, username, id)
		if err != nil {
			return false, err
		}
		if exists {
			l.Warn("update_user_failed", "reason", "duplicate_username")
			return false, repo.ErrDuplicateUsername
		}
	}

	user.Username = username
	user.FirstName = firstName
	user.LastName = lastName
	user.Role = role

	rows, err := s.Repo.UpdateUser(ctx, user)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		l.Warn("update_user_failed", "reason", "no_rows_affected")
		return false, nil
	}

	l.Info("user_updated")
	return true, nil
}

// UpdateProfile touches display attributes only; it can never trip the
// duplicate-username check.
func (s *AuthService) UpdateProfile(ctx context.Context, id uint, firstName, lastName string) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_profile", "user_id", id)

	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("update_profile_failed", "reason", "user_not_found")
			return false, nil
		}
		return false, err
	}

	user.FirstName = firstName
	user.LastName = lastName

	rows, err := s.Repo.UpdateUser(ctx, user)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		l.Warn("update_profile_failed", "reason", "no_rows_affected")
		return false, nil
	}

	l.Info("profile_updated")
	return true, nil
}

// ToggleActive flips the account gate. Deactivation does not revoke already
// issued tokens; they stay valid until natural expiry unless logout recorded
// them in the revocation registry.
func (s *AuthService) ToggleActive(ctx context.Context, id uint) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "auth.toggle_active", "user_id", id)

	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("toggle_active_failed", "reason", "user_not_found")
			return false, nil
		}
		return false, err
	}

	user.IsActive = !user.IsActive

	rows, err := s.Repo.UpdateUser(ctx, user)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		l.Warn("toggle_active_failed", "reason", "no_rows_affected")
		return false, nil
	}

	l.Info("user_active_toggled", "is_active", user.IsActive)
	return true, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.Repo.FindUserByID(ctx, id)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}
