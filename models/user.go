package models

import (
	"time"

	"foodgram/globals"
)

type User struct {
	ID        int64     `json:"id" bson:"_id"`
	Email     string    `json:"email" bson:"email"`
	Username  string    `json:"username" bson:"username"`
	FirstName string    `json:"first_name" bson:"first_name"`
	LastName  string    `json:"last_name" bson:"last_name"`
	Password  string    `json:"-" bson:"password"`
	Avatar    string    `json:"avatar" bson:"avatar"`
	IsStaff   bool      `json:"-" bson:"is_staff"`
	CreatedAt time.Time `json:"-" bson:"created_at"`
}

// Role returns the role carried in this user's tokens.
func (u *User) Role() string {
	if u.IsStaff {
		return globals.RoleAdmin
	}
	return globals.RoleUser
}
