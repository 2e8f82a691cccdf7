package models

import (
	"time"
)

// User represents a login principal
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CompanyName  string    `gorm:"not null" json:"companyName"`
	PlantName    string    `json:"plantName"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	GenID        string    `gorm:"column:gen_id" json:"genId"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Email        string    `gorm:"not null" json:"email"`
	Department   string    `json:"department"`
	Role         string    `gorm:"default:user" json:"role"`
	Token        *string   `gorm:"index" json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Role constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserResponse is the JSON shape returned by the user listing. Field
// casing mirrors the original report columns consumed by the frontend.
type UserResponse struct {
	ID          uint   `json:"id"`
	CompanyName string `json:"CompanyName"`
	PlantName   string `json:"PlantName"`
	Username    string `json:"Username"`
	GenID       string `json:"GenId"`
	Email       string `json:"Email"`
	Department  string `json:"Department"`
	Role        string `json:"Role"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		CompanyName: u.CompanyName,
		PlantName:   u.PlantName,
		Username:    u.Username,
		GenID:       u.GenID,
		Email:       u.Email,
		Department:  u.Department,
		Role:        u.Role,
	}
}
