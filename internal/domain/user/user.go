// Package user holds app users (phone login) and catalog administrators.
package user

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var phonePattern = regexp.MustCompile(`^1\d{10}$`)

// User is an app user identified by phone number.
type User struct {
	ID        string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Admin is a catalog administrator.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// IsValidPhone reports whether phone is a mainland mobile number.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NextSequentialID returns prefix + the next number after the highest existing one, zero-padded to width.
func NextSequentialID(prefix string, width int, existing []string) string {
	pattern := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix) + `(\d+)$`)
	highest := 0
	for _, id := range existing {
		m := pattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, width, highest+1)
}

// UserRepository persists app users.
type UserRepository interface {
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	ListIDs(ctx context.Context) ([]string, error)
	Save(ctx context.Context, u *User) error
	Touch(ctx context.Context, id string, at time.Time) error
}

// AdminRepository persists administrators.
type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*Admin, error)
	ListIDs(ctx context.Context) ([]string, error)
	Save(ctx context.Context, a *Admin) error
}
