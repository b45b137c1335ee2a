package dto

type CreateSupplierRequest struct {
	Name         string  `json:"name"          validate:"required,min=2,max=120"`
	Email        *string `json:"email"         validate:"omitempty,email"`
	Phone        *string `json:"phone"`
	PaymentTerms string  `json:"payment_terms" validate:"omitempty,oneof=cash 30d 60d"`
}

type UpdateSupplierRequest struct {
	Name         *string `json:"name"          validate:"omitempty,min=2,max=120"`
	Email        *string `json:"email"         validate:"omitempty,email"`
	Phone        *string `json:"phone"`
	PaymentTerms *string `json:"payment_terms" validate:"omitempty,oneof=cash 30d 60d"`
}

type SupplierResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	PaymentTerms string  `json:"payment_terms"`
	Active       bool    `json:"active"`
}
