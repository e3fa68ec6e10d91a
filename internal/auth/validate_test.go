package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskville/internal/config"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		username string
		ok       bool
	}{
		{"", false},
		{"ab", false},            // below the 3-char minimum
		{"abc", true},            // exactly 3
		{"user name", false},     // space
		{"user_1", true},
		{"1user", true},          // leading digit is allowed
		{"user-1", false},        // hyphen
		{"ผู้ใช้", false},          // non-ASCII
		{strings.Repeat("a", 50), true},
		{strings.Repeat("a", 51), false},
	}

	for _, tc := range cases {
		err := ValidateUsername(tc.username)
		if tc.ok {
			assert.Nil(t, err, tc.username)
		} else {
			assert.NotNil(t, err, tc.username)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	policy := config.PasswordPolicy{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}

	assert.Nil(t, ValidatePassword("Str0ng!Pass", policy))

	assert.NotNil(t, ValidatePassword("", policy))
	assert.NotNil(t, ValidatePassword("Sh0rt!", policy))
	assert.NotNil(t, ValidatePassword("all0wer!case", policy))
	assert.NotNil(t, ValidatePassword("NOUPPER0!NO", policy))
	assert.NotNil(t, ValidatePassword("NoDigits!Here", policy))
	assert.NotNil(t, ValidatePassword("NoSpecial0Here", policy))
}

func TestValidatePasswordReportsAllProblems(t *testing.T) {
	policy := config.PasswordPolicy{
		MinLength:      8,
		RequireUpper:   true,
		RequireDigit:   true,
		RequireSpecial: true,
	}

	err := ValidatePassword("abc", policy)
	assert.NotNil(t, err)
	msg := err.Fields["password"]
	assert.Contains(t, msg, "too short")
	assert.Contains(t, msg, "uppercase")
	assert.Contains(t, msg, "digit")
	assert.Contains(t, msg, "special")
}

func TestValidatePasswordRelaxedPolicy(t *testing.T) {
	policy := config.PasswordPolicy{MinLength: 6}
	assert.Nil(t, ValidatePassword("simple", policy))
}

func TestValidateEmail(t *testing.T) {
	assert.Nil(t, ValidateEmail(""))
	assert.Nil(t, ValidateEmail("alice@example.com"))

	assert.NotNil(t, ValidateEmail("alice"))
	assert.NotNil(t, ValidateEmail("@example.com"))
	assert.NotNil(t, ValidateEmail("alice@"))
	assert.NotNil(t, ValidateEmail("alice@localhost"))
}
