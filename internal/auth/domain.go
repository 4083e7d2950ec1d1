package auth

import "time"

// User is one account from the user directory table. The directory is
// synced from the corporate source externally; this service only reads
// it.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
