package model

import "time"

const (
	RoleStudent = "student"
	RoleStaff   = "staff"
	RoleManager = "manager"
)

type User struct {
	UserID    string    `firestore:"userid,omitempty"`
	Name      string    `firestore:"name,omitempty"`
	Email     string    `firestore:"email,omitempty"`
	Password  string    `firestore:"password,omitempty"` // bcrypt hash
	Role      string    `firestore:"role,omitempty"`     // "student", "staff" or "manager"
	CreatedAt time.Time `firestore:"createdat,omitempty"`
	UpdatedAt time.Time `firestore:"updatedat,omitempty"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleStaff, RoleManager:
		return true
	}
	return false
}
