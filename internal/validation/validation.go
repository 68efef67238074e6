// Package validation provides input validation utilities
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on user supplied content.
const (
	MaxTitleLength   = 200
	MaxContentLength = 50000
	MaxCommentLength = 2000
	MaxQueryLength   = 500
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
	specialPattern  = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters long")
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return errors.New("password must not exceed 72 bytes")
	}

	var hasUpper, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !digitPattern.MatchString(password) {
		return errors.New("password must contain at least one digit")
	}
	if !specialPattern.MatchString(password) {
		return errors.New("password must contain at least one special character (!@#$%^&*)")
	}
	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return errors.New("username must be at least 3 characters long")
	}
	if len(username) > 30 {
		return errors.New("username must not exceed 30 characters")
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username can only contain letters, numbers, underscores, and hyphens")
	}
	if strings.ContainsAny(username[:1], "_-") || strings.ContainsAny(username[len(username)-1:], "_-") {
		return errors.New("username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return errors.New("email must not exceed 254 characters")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidatePost checks a post's title and HTML content.
func ValidatePost(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return errors.New("title must not exceed 200 characters")
	}
	if strings.TrimSpace(content) == "" {
		return errors.New("content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return errors.New("content must not exceed 50000 characters")
	}
	return nil
}

// ValidateComment checks a comment body.
func ValidateComment(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("comment text is required")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return errors.New("comment must not exceed 2000 characters")
	}
	return nil
}
