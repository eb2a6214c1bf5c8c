package request

type RegisterRequest struct {
	FirstName string `json:"first_name,omitempty" validate:"required,min=2,max=150,name"`
	LastName  string `json:"last_name,omitempty" validate:"required,min=2,max=150,name"`
	Email     string `json:"email,omitempty" validate:"required,email,max=255"`
	Password  string `json:"password,omitempty" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email,omitempty" validate:"required,email,max=255"`
	Password string `json:"password,omitempty" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email,omitempty" validate:"required,email,max=255"`
}

type ChangePasswordRequest struct {
	Password string `json:"password,omitempty" validate:"required,password"`
}

type UpdateUserRequest struct {
	ID        int    `json:"id,omitempty" validate:"required,gt=0"`
	FirstName string `json:"first_name,omitempty" validate:"required,min=2,max=150,name"`
	LastName  string `json:"last_name,omitempty" validate:"required,min=2,max=150,name"`
	Email     string `json:"email,omitempty" validate:"required,email,max=255"`
	Role      string `json:"role,omitempty" validate:"required,oneof=admin user"`
}

type AddressRequest struct {
	AddressName string `json:"address_name,omitempty" validate:"required,min=2,max=100"`
	Country     string `json:"country,omitempty" validate:"required,min=2,max=100"`
	City        string `json:"city,omitempty" validate:"required,min=2,max=100"`
	Address     string `json:"address,omitempty" validate:"required,min=2,max=255"`
	PostalCode  string `json:"postal_code,omitempty" validate:"required,min=2,max=20"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"required,min=5,max=30"`
}
