package models

import (
	"regexp"
	"strings"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 30
	maxTitleLength    = 200
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateUsername trims and checks a registration username.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", InvalidInputf("username is required")
	}
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return "", InvalidInputf("username length must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return "", InvalidInputf("username can only contain letters, numbers, underscores, and hyphens")
	}
	return username, nil
}

// ValidateTitle checks a topic or post title.
func ValidateTitle(title string) error {
	if len(title) > maxTitleLength {
		return InvalidInputf("title must be at most %d characters", maxTitleLength)
	}
	return nil
}
