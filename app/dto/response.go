package dto

import (
	"time"

	"github.com/apavering/user-directory/app/models"
)

// Envelope is the uniform result wrapper of every directory operation.
// Code mirrors the HTTP status; Message is a plain string, a record, a
// sequence of records, or a nested Detail for 400/404 outcomes.
type Envelope struct {
	Code    int `json:"code"`
	Message any `json:"message"`
}

// Detail is the nested {code, message} payload carried inside 400/404
// envelopes. Consumers rely on message.code, so the code is duplicated.
type Detail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OK wraps a successful payload.
func OK(message any) Envelope {
	return Envelope{Code: 200, Message: message}
}

// Fail wraps a business failure with a plain string message.
func Fail(code int, message string) Envelope {
	return Envelope{Code: code, Message: message}
}

// FailNested wraps a business failure whose message is itself an envelope.
func FailNested(code int, message string) Envelope {
	return Envelope{Code: code, Message: Detail{Code: code, Message: message}}
}

// UserResponse is the API projection of a user. The password hash is never
// projected.
type UserResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Cellphone string `json:"cellphone"`
	Status    bool   `json:"status"`
	CreatedAt string `json:"created_at"`
}

// NewUserResponse converts a stored user into its API projection.
func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Cellphone: u.Cellphone,
		Status:    u.Status,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewUserResponses converts a slice of stored users.
func NewUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// BulkRejection records why one bulk candidate was not registered. UserName
// is always present; Password and Email carry the failed checks.
type BulkRejection struct {
	UserName string `json:"user_name"`
	Password string `json:"password,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Accepted reports whether the candidate passed both checks.
func (r BulkRejection) Accepted() bool {
	return r.Password == "" && r.Email == ""
}

// BulkReport is the structured message of a bulkUserCreate envelope.
type BulkReport struct {
	Code                 int             `json:"code"`
	Message              string          `json:"message,omitempty"`
	RegisteredUsers      int             `json:"registered_users"`
	NonRegisteredUsers   int             `json:"non_registered_users"`
	NonRegisteredDetails []BulkRejection `json:"non_registered_details"`
}
