package dto

import "time"

// CreateUserRequest carries the body of POST /users.
type CreateUserRequest struct {
	Name           string `json:"name" validate:"required,max=120"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Password       string `json:"password" validate:"required,max=128"`
	PasswordSecond string `json:"password_second" validate:"required,max=128"`
	Cellphone      string `json:"cellphone" validate:"max=32"`
}

// UpdateUserRequest carries the body of PATCH /users/{id}. Nil fields keep
// the stored value.
type UpdateUserRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=120"`
	Password  *string `json:"password" validate:"omitempty,max=128"`
	Cellphone *string `json:"cellphone" validate:"omitempty,max=32"`
}

// BulkUserCandidate is one entry of a bulk registration request. Candidates
// are validated individually by the directory, not by the request validator,
// so that per-candidate rejection details keep their documented shape.
type BulkUserCandidate struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	PasswordSecond string `json:"password_second"`
	Cellphone      string `json:"cellphone"`
}

// BulkCreateRequest carries the body of POST /users/bulk. Users is a pointer
// so a missing "users" field is distinguishable from an empty list.
type BulkCreateRequest struct {
	Users *[]BulkUserCandidate `json:"users"`
}

// SearchUsersParams is the parsed form of the filtered-search query string.
// LoginBefore and LoginAfter are the raw parsed dates; the directory clamps
// them to day boundaries when building the predicate.
type SearchUsersParams struct {
	Active      *bool
	Name        string
	LoginBefore *time.Time
	LoginAfter  *time.Time
}

// IsZero reports whether no search parameter was supplied.
func (p SearchUsersParams) IsZero() bool {
	return p.Active == nil && p.Name == "" && p.LoginBefore == nil && p.LoginAfter == nil
}
