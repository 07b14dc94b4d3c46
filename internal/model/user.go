package model

import (
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	Username  string     `gorm:"size:50;not null" json:"username"`
	Email     string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Theme     string     `gorm:"size:10;default:'light'" json:"theme"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}
