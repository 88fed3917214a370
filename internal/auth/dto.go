package auth

import (
	"errors"
	"strings"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	if strings.TrimSpace(dto.Email) == "" {
		return errors.New("email is required")
	}
	if dto.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

type RegisterDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	SectorID *int64 `json:"sector_id,omitempty"`
}

func (dto RegisterDTO) Validate() error {
	if strings.TrimSpace(dto.Email) == "" || strings.TrimSpace(dto.Name) == "" {
		return errors.New("email and name are required")
	}
	if len(dto.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (dto RefreshTokenDTO) Validate() error {
	if dto.RefreshToken == "" {
		return errors.New("refresh_token is required")
	}
	return nil
}

type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

func (dto ForgotPasswordDTO) Validate() error {
	if strings.TrimSpace(dto.Email) == "" {
		return errors.New("email is required")
	}
	return nil
}

type ResetPasswordDTO struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (dto ResetPasswordDTO) Validate() error {
	if dto.Token == "" {
		return errors.New("token is required")
	}
	if len(dto.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}
