package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/devilmonastery/pixelplaylist/internal/domain/entities"
)

// MinPasswordLength is the shortest password accepted on sign-up and password change
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether s looks like an email address
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateSignIn checks the sign-in form. The identifier is an email or a username.
func ValidateSignIn(identifier, password string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return invalid("username", "Email or username is required")
	}
	if strings.Contains(identifier, "@") && !IsValidEmail(identifier) {
		return invalid("username", "Please enter a valid email address")
	}
	if password == "" {
		return invalid("password", "Password is required")
	}
	return nil
}

// ValidateRegistration checks the sign-up form
func ValidateRegistration(reg entities.Registration) error {
	if strings.TrimSpace(reg.Username) == "" {
		return invalid("username", "Username is required")
	}
	if strings.TrimSpace(reg.Email) == "" {
		return invalid("email", "Email is required")
	}
	if !IsValidEmail(strings.TrimSpace(reg.Email)) {
		return invalid("email", "Please enter a valid email address")
	}
	if reg.Password == "" {
		return invalid("password", "Password is required")
	}
	if len(reg.Password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	if reg.Password != reg.ConfirmPassword {
		return invalid("confirm_password", "Passwords do not match")
	}
	return nil
}

// ValidateProfileUpdate checks the profile form
func ValidateProfileUpdate(upd entities.ProfileUpdate) error {
	if upd.IsEmpty() {
		return invalid("", "Nothing to update")
	}
	if upd.Email != "" && !IsValidEmail(upd.Email) {
		return invalid("email", "Please enter a valid email address")
	}
	return nil
}

// ValidatePasswordChange checks the change-password form
func ValidatePasswordChange(pc entities.PasswordChange) error {
	if pc.OldPassword == "" {
		return invalid("old_password", "Current password is required")
	}
	if pc.NewPassword1 != pc.NewPassword2 {
		return invalid("new_password2", "New passwords do not match")
	}
	if len(pc.NewPassword1) < MinPasswordLength {
		return invalid("new_password1", fmt.Sprintf("New password must be at least %d characters long", MinPasswordLength))
	}
	return nil
}

// ValidateQuery checks a recommendation query
func ValidateQuery(q entities.RecommendationQuery) error {
	if len(q.Platforms) == 0 {
		return invalid("platforms", "Select at least one platform")
	}
	if q.Budget < 0 {
		return invalid("budget", "Budget cannot be negative")
	}
	return nil
}

// ValidatePlaylist checks a playlist before it is saved
func ValidatePlaylist(name string, games []entities.GameRecommendation) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "Playlist name cannot be empty")
	}
	if len(games) > entities.MaxPlaylistGames {
		return invalid("games", fmt.Sprintf("A playlist can hold at most %d games", entities.MaxPlaylistGames))
	}
	for i, g := range games {
		if strings.TrimSpace(g.Title) == "" {
			return invalid("games", fmt.Sprintf("Game %d has no title", i+1))
		}
	}
	return nil
}
