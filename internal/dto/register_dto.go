package dto

import "retailpos/internal/model"

type CreateRegisterRequest struct {
	Code     string `json:"code" binding:"required,min=2,max=32"`
	Name     string `json:"name" binding:"required,min=2"`
	Location string `json:"location"`
	IsMain   bool   `json:"is_main"`
}

type UpdateRegisterRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2"`
	Location *string `json:"location"`
	IsMain   *bool   `json:"is_main"`
	IsActive *bool   `json:"is_active"`
}

// RegisterWithSession attaches the currently open session, if any.
type RegisterWithSession struct {
	model.Register
	ActiveSession *model.CashSession `json:"active_session,omitempty"`
}
