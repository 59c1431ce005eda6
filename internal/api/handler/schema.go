package handler

import "github.com/taskhub/taskmanager-api/internal/core/domain"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode" example:"400"`
	Message    string `json:"message" example:"title is required"`
	Error      string `json:"error" example:"Bad Request"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ── Auth ──────────────────────────────────────────────────────────────────────

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required" example:"Secret123"`
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required" example:"Alice"`
	LastName  string `json:"lastName" validate:"required" example:"Liddell"`
	Email     string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password  string `json:"password" validate:"required,min=8,max=32,password" example:"Secret123"`
}

// changePasswordRequest is checked by the service, in order, so that a
// mismatch is reported before a policy violation.
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type authResponse struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

type signupResponse struct {
	Success bool              `json:"success"`
	User    domain.PublicUser `json:"user"`
}

// ── Tasks ─────────────────────────────────────────────────────────────────────

type createTaskRequest struct {
	Title       string `json:"title" validate:"required" example:"Write report"`
	Description string `json:"description" example:"First draft"`
	StartDate   string `json:"startDate" validate:"required" example:"2024-01-01T00:00"`
	EndDate     string `json:"endDate" validate:"required" example:"2024-01-05T00:00"`
	Status      string `json:"status" validate:"omitempty,oneof=upcoming started completed" example:"upcoming"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Status      *string `json:"status" validate:"omitempty,oneof=upcoming started completed"`
}
