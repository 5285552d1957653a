package dto

type FindOrCreateCustomerRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=2"`
	Phone string `json:"phone"`
}

type LoyaltyAdjustRequest struct {
	Points int    `json:"points" binding:"required"`
	Reason string `json:"reason"`
}
