package users

// User is a login account. Role "user" accounts may be linked to one
// customer; the password hash never leaves this package through the API.
type User struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	CustomerID *int64 `json:"customer_id,omitempty"`

	passwordHash string
}

type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
