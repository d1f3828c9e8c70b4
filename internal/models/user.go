package models

import "time"

type User struct {
	ID         int64     `json:"id"`
	UserName   string    `json:"userName"`
	Email      string    `json:"email"`
	IsMember   bool      `json:"isMember"`
	CustomerID *string   `json:"customerId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
