package dto

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	ExpiresIn    int          `json:"expiresIn"`
	User         UserResponse `json:"user"`
}

type CreateUserRequest struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,oneof=admin employee"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"     validate:"omitempty,max=120"`
	Email    *string `json:"email"    validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     *string `json:"role"     validate:"omitempty,oneof=admin employee"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}
