package dto

import "github.com/projectplanning/planning-cloud-api/internal/services"

// UserDTO represents the authenticated account in API responses
type UserDTO struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	System   string `json:"system"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token     string  `json:"token"`
	User      UserDTO `json:"user"`
	ExpiresIn int64   `json:"expiresIn"`
}

// ToUserDTO converts a Principal to UserDTO
func ToUserDTO(principal services.Principal) UserDTO {
	return UserDTO{
		Username: principal.Username,
		Role:     principal.Role,
		System:   principal.System,
	}
}

// ToLoginResponse converts a LoginResult to LoginResponse
func ToLoginResponse(result *services.LoginResult) LoginResponse {
	return LoginResponse{
		Token:     result.Token,
		User:      ToUserDTO(result.Principal),
		ExpiresIn: result.ExpiresIn,
	}
}
