package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a locally seeded account. There is no external identity provider;
// accounts exist only to give the session lifecycle something to log in as.
type User struct {
	Id           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

func (u *User) Profile() UserProfile {
	return UserProfile{Id: u.Id, Email: u.Email, FullName: u.FullName}
}
