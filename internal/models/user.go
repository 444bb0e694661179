// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role describes the privilege level of a user account.
type Role string

const (
	// RoleUser is the default role for registered accounts.
	RoleUser Role = "User"
	// RoleAdmin unlocks administrative CRUD on any entity.
	RoleAdmin Role = "Admin"
)

// User represents a registered account.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"unique;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(10);default:'User'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the Admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
