package dto

import (
	"github.com/articlehub/articlehub/internal/service"
)

// CreateUserRequest is the body of POST /users and POST /auth/registration.
type CreateUserRequest struct {
	FirstName  string  `json:"firstname"`
	LastName   string  `json:"lastname"`
	Patronymic *string `json:"patronymic,omitempty"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
}

// Validate checks required fields and formats.
func (r *CreateUserRequest) Validate() error {
	if err := requireText("firstname", r.FirstName); err != nil {
		return err
	}
	if err := requireText("lastname", r.LastName); err != nil {
		return err
	}
	if err := checkEmail("email", r.Email); err != nil {
		return err
	}
	return checkPassword("password", r.Password)
}

// ToInput converts the request to service input.
func (r *CreateUserRequest) ToInput() service.CreateUserInput {
	return service.CreateUserInput{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Patronymic: r.Patronymic,
		Email:      r.Email,
		Password:   r.Password,
	}
}

// UpdateUserRequest is the body of PUT /users. Omitted fields are kept.
type UpdateUserRequest struct {
	ID         *int64  `json:"id"`
	FirstName  *string `json:"firstname,omitempty"`
	LastName   *string `json:"lastname,omitempty"`
	Patronymic *string `json:"patronymic,omitempty"`
	Email      *string `json:"email,omitempty"`
	Password   *string `json:"password,omitempty"`
}

// Validate checks the id and any supplied fields.
func (r *UpdateUserRequest) Validate() error {
	if r.ID == nil || *r.ID <= 0 {
		return invalid("id", "must be a positive integer")
	}
	if r.FirstName != nil {
		if err := requireText("firstname", *r.FirstName); err != nil {
			return err
		}
	}
	if r.LastName != nil {
		if err := requireText("lastname", *r.LastName); err != nil {
			return err
		}
	}
	if r.Email != nil {
		if err := checkEmail("email", *r.Email); err != nil {
			return err
		}
	}
	if r.Password != nil {
		return checkPassword("password", *r.Password)
	}
	return nil
}

// ToInput converts the request to service input.
func (r *UpdateUserRequest) ToInput() service.UpdateUserInput {
	return service.UpdateUserInput{
		ID:         *r.ID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Patronymic: r.Patronymic,
		Email:      r.Email,
		Password:   r.Password,
	}
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both credentials are present.
func (r *LoginRequest) Validate() error {
	if err := checkEmail("email", r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return invalid("password", "is required")
	}
	return nil
}

// ToInput converts the request to service input.
func (r *LoginRequest) ToInput() service.LoginInput {
	return service.LoginInput{Email: r.Email, Password: r.Password}
}
