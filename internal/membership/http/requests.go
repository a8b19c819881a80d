package http

import (
	"strings"

	"github.com/AlibekovAA/membership/internal/membership/domain"
)

type registerRequest struct {
	Email     string `json:"email" validate:"notblank,email" example:"a@b.com"`
	FirstName string `json:"firstName" validate:"max=100" example:"Ada"`
	LastName  string `json:"lastName" validate:"max=100" example:"Lovelace"`
	Password  string `json:"password" validate:"notblank,min=8,bcryptlen" example:"Password123!"`
}

func (r *registerRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

type loginRequest struct {
	Email    string `json:"email" validate:"notblank,email" example:"a@b.com"`
	Password string `json:"password" validate:"notblank,min=8,bcryptlen" example:"Password123!"`
}

func (r *loginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type updateProfileRequest struct {
	FirstName string `json:"firstName" validate:"notblank,max=100" example:"Grace"`
	LastName  string `json:"lastName" validate:"notblank,max=100" example:"Hopper"`
}

func (r *updateProfileRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

type tokenResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// envelope documents the response shape for swagger; handlers write
// commonhttp.APIResponse.
type envelope struct {
	Status  bool   `json:"status" example:"false"`
	Message string `json:"message" example:"Invalid token"`
}

type tokenEnvelope struct {
	Status  bool          `json:"status" example:"true"`
	Message string        `json:"message" example:"login successful"`
	Data    tokenResponse `json:"data"`
}

type profileEnvelope struct {
	Status  bool           `json:"status" example:"true"`
	Message string         `json:"message" example:"successful"`
	Data    domain.Profile `json:"data"`
}
