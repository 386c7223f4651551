package dto

type CreateEmployeeRequest struct {
	FullName string  `json:"fullName" validate:"required,max=120"`
	Email    string  `json:"email"    validate:"required,email,max=255"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
	Position *string `json:"position" validate:"omitempty,max=64"`
}

type UpdateEmployeeRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,max=120"`
	Email    *string `json:"email"    validate:"omitempty,email,max=255"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
	Position *string `json:"position" validate:"omitempty,max=64"`
}

type EmployeeResponse struct {
	ID        string  `json:"id"`
	FullName  string  `json:"fullName"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Position  *string `json:"position,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}
