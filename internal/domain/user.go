package domain

import "time"

type User struct {
	UserID       string `json:"id" dynamodbav:"user_id"`
	Name         string `json:"name" dynamodbav:"name"`
	Email        string `json:"email" dynamodbav:"email"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`
	IsAdmin      bool   `json:"is_admin" dynamodbav:"is_admin"`
	// IsActive is false until the user proves ownership of the email via OTP.
	IsActive  bool      `json:"is_active" dynamodbav:"is_active"`
	PhotoURL  string    `json:"photo_url,omitempty" dynamodbav:"photo_url"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	IsAdmin  bool   `json:"is_admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	IsAdmin  *bool   `json:"is_admin"`
}
