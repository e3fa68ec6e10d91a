package auth

import (
	"regexp"
	"strings"
	"unicode"

	"taskville/internal/config"
)

// usernamePattern allows letters, digits and underscores. A leading digit
// is accepted; length bounds are checked separately for clearer messages.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateUsername checks format and length (3-50 characters).
func ValidateUsername(username string) *ValidationError {
	switch {
	case username == "":
		return newValidationError("username", "username is required")
	case len(username) < 3:
		return newValidationError("username", "username must be at least 3 characters")
	case len(username) > 50:
		return newValidationError("username", "username must be at most 50 characters")
	case !usernamePattern.MatchString(username):
		return newValidationError("username", "username may only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidatePassword checks the password against the configured policy and
// reports every violated rule at once.
func ValidatePassword(password string, policy config.PasswordPolicy) *ValidationError {
	if password == "" {
		return newValidationError("password", "password is required")
	}

	var problems []string
	if len(password) < policy.MinLength {
		problems = append(problems, "too short")
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if policy.RequireUpper && !hasUpper {
		problems = append(problems, "needs an uppercase letter")
	}
	if policy.RequireLower && !hasLower {
		problems = append(problems, "needs a lowercase letter")
	}
	if policy.RequireDigit && !hasDigit {
		problems = append(problems, "needs a digit")
	}
	if policy.RequireSpecial && !hasSpecial {
		problems = append(problems, "needs a special character")
	}

	if len(problems) > 0 {
		return newValidationError("password", "password "+strings.Join(problems, ", "))
	}
	return nil
}

// ValidateEmail does a minimal shape check; deliverability is not our
// problem at this layer.
func ValidateEmail(email string) *ValidationError {
	if email == "" {
		return nil // email is optional at registration
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return newValidationError("email", "email address is malformed")
	}
	return nil
}
