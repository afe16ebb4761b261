package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apavering/user-directory/app/models"
	"github.com/apavering/user-directory/app/services"
	"github.com/apavering/user-directory/app/store"
)

/*
User Handler Test Cases:

1. TestCreateUserHandler_Success
   - Valid body -> 200 with "User created successfully with ID: n"

2. TestCreateUserHandler_InvalidJSON
   - Malformed body -> 400 "Invalid request body"

3. TestCreateUserHandler_MissingFields
   - Validator rejects -> 400 with field messages

4. TestCreateUserHandler_PasswordMismatch
   - Mismatch reported before field validation -> 400 "Passwords do not match"

5. TestCreateUserHandler_EmailSanitization
   - Email lowercased/trimmed before reaching the service

6. TestGetUserHandler_*
   - Invalid id -> 400; missing user -> 200 with null message;
     found -> 200 projection without password

7. TestUpdateUserHandler_NotFound
   - No active target -> 404 "User not found"

8. TestDeleteUserHandler_Success
   - 200 "User deleted successfully" even for unknown ids

9. TestListActiveUsersHandler_Empty
   - 404 nested "No active users found"

10. TestSearchUsersHandler_*
    - Empty query -> 400 nested without a store round-trip
    - Unknown-only keys -> 400 nested
    - Unparseable date -> 400 nested naming the parameter
    - Valid filter -> 200 list

11. TestBulkCreateUsersHandler_MissingUsersField
    - Body without "users" -> 400 nested "No users to register"
*/

// stubUsersStore backs the handler tests with canned store behavior.
type stubUsersStore struct {
	getActiveByIDFunc func(ctx context.Context, id int64) (*models.User, error)
	getByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	getAllActiveFunc  func(ctx context.Context) ([]models.User, error)
	createFunc        func(ctx context.Context, user *models.User) error
	bulkCreateFunc    func(ctx context.Context, users []models.User) ([]models.User, error)
	searchFunc        func(ctx context.Context, filter store.SearchFilter) ([]models.User, error)

	searchCalls int
}

func (s *stubUsersStore) GetActiveByID(ctx context.Context, id int64) (*models.User, error) {
	if s.getActiveByIDFunc != nil {
		return s.getActiveByIDFunc(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (s *stubUsersStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFunc != nil {
		return s.getByEmailFunc(ctx, email)
	}
	return nil, sql.ErrNoRows
}

func (s *stubUsersStore) GetAllActive(ctx context.Context) ([]models.User, error) {
	if s.getAllActiveFunc != nil {
		return s.getAllActiveFunc(ctx)
	}
	return nil, nil
}

func (s *stubUsersStore) Create(ctx context.Context, user *models.User) error {
	if s.createFunc != nil {
		return s.createFunc(ctx, user)
	}
	user.ID = 1
	user.CreatedAt = time.Now()
	return nil
}

func (s *stubUsersStore) BulkCreate(ctx context.Context, users []models.User) ([]models.User, error) {
	if s.bulkCreateFunc != nil {
		return s.bulkCreateFunc(ctx, users)
	}
	return users, nil
}

func (s *stubUsersStore) UpdateProfile(ctx context.Context, id int64, name, passwordHash, cellphone string) (int64, error) {
	return 1, nil
}

func (s *stubUsersStore) Deactivate(ctx context.Context, id int64) (int64, error) {
	return 1, nil
}

func (s *stubUsersStore) Search(ctx context.Context, filter store.SearchFilter) ([]models.User, error) {
	s.searchCalls++
	if s.searchFunc != nil {
		return s.searchFunc(ctx, filter)
	}
	return nil, nil
}

// newTestApp wires a full application over the stub store so requests run
// through the real router and middleware chain.
func newTestApp(users *stubUsersStore) *application {
	storage := store.Storage{Users: users}
	directory := services.NewUserDirectory(storage, services.NewBcryptHasher(4), services.NoopPublisher{}, nil)
	return &application{
		config:    config{addr: ":0"},
		store:     storage,
		directory: directory,
	}
}

func doRequest(t *testing.T, app *application, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	app.mount().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateUserHandler_Success(t *testing.T) {
	users := &stubUsersStore{
		createFunc: func(ctx context.Context, user *models.User) error {
			user.ID = 7
			user.CreatedAt = time.Now()
			return nil
		},
	}
	app := newTestApp(users)

	rec := doRequest(t, app, http.MethodPost, "/users/v1/users", map[string]string{
		"name":            "Test User",
		"email":           "test@example.com",
		"password":        "Password123",
		"password_second": "Password123",
		"cellphone":       "5511999999999",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(200), body["code"])
	assert.Equal(t, "User created successfully with ID: 7", body["message"])
}

func TestCreateUserHandler_InvalidJSON(t *testing.T) {
	app := newTestApp(&stubUsersStore{})

	rec := doRequest(t, app, http.MethodPost, "/users/v1/users", `{"name": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid request body", body["message"])
}

func TestCreateUserHandler_MissingFields(t *testing.T) {
	app := newTestApp(&stubUsersStore{})

	rec := doRequest(t, app, http.MethodPost, "/users/v1/users", map[string]string{
		"name":            "Test User",
		"password":        "Password123",
		"password_second": "Password123",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	msg, ok := body["message"].(string)
	require.True(t, ok)
	assert.Contains(t, msg, "Email is required")
}

func TestCreateUserHandler_PasswordMismatch(t *testing.T) {
	app := newTestApp(&stubUsersStore{})

	// The email is also invalid; the mismatch must win.
	rec := doRequest(t, app, http.MethodPost, "/users/v1/users", map[string]string{
		"name":            "Test User",
		"email":           "not-an-email",
		"password":        "Password123",
		"password_second": "Password456",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Passwords do not match", body["message"])
}

func TestCreateUserHandler_EmailSanitization(t *testing.T) {
	var gotEmail string
	users := &stubUsersStore{
		getByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			gotEmail = email
			return nil, sql.ErrNoRows
		},
	}
	app := newTestApp(users)

	rec := doRequest(t, app, http.MethodPost, "/users/v1/users", map[string]string{
		"name":            "Test User",
		"email":           "  Test@EXAMPLE.com  ",
		"password":        "Password123",
		"password_second": "Password123",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test@example.com", gotEmail)
}

func TestGetUserHandler_InvalidID(t *testing.T) {
	app := newTestApp(&stubUsersStore{})

	rec := doRequest(t, app, http.MethodGet, "/users/v1/users/abc", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid user id", body["message"])
}

func TestGetUserHandler_Missing(t *testing.T) {
	app := newTestApp(&stubUsersStore{})

	rec := doRequest(t, app, http.MethodGet, "/users/v1/users/999", nil)

	assert.Equal(t, http.StatusOK, rec.Code, "Missing user is still a 200")
	body := decodeBody(t, rec)
	assert.Equal(t, float64(200), body["code"])
	assert.Nil(t, body["message"])
}

func TestGetUserHandler_Found(t *testing.T) {
	users := &stubUsersStore{
		getActiveByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{
				ID:        id,
				Name:      "Test User",
				Email:     "test@example.com",
				Password:  "$2a$10$hash",
				Cellphone: "5511999999999",
				Status:    true,
				CreatedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
			}, nil
		},
	}
	app := newTestApp(users)

	rec := doRequest(t, app, http.MethodGet, "/users/v1/users/1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	message, ok := body["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), message["id"])
	assert.Equal(t, "Test User", message["name"])
	assert.Equal(t, "2026-01-15T10:30:00Z", message["created_at"])
	_, leaked := message["password"]
	assert.False(t, leaked, "Password hash must never be projected")
}

func TestUpdateUserHandler_NotFound(t *testing.T) {
	app := newTestApp(&stubUsersStore{})

	rec := doRequest(t, app, http.MethodPatch, "/users/v1/users/999", map[string]string{
		"name": "New Name",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "User not found", body["message"])
}

func TestDeleteUserHandler_Success(t *testing.T) {
	app := newTestApp(&stubUsersStore{})

	rec := doRequest(t, app, http.MethodDelete, "/users/v1/users/5", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "User deleted successfully", body["message"])
}

func TestListActiveUsersHandler_Empty(t *testing.T) {
	app := newTestApp(&stubUsersStore{})

	rec := doRequest(t, app, http.MethodGet, "/users/v1/users", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	message, ok := body["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(404), message["code"])
	assert.Equal(t, "No active users found", message["message"])
}

func TestSearchUsersHandler_EmptyQuery(t *testing.T) {
	users := &stubUsersStore{}
	app := newTestApp(users)

	rec := doRequest(t, app, http.MethodGet, "/users/v1/users/search", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	message, ok := body["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "No search parameters", message["message"])
	assert.Zero(t, users.searchCalls, "Empty search must not reach the store")
}

func TestSearchUsersHandler_UnknownKeysOnly(t *testing.T) {
	users := &stubUsersStore{}
	app := newTestApp(users)

	rec := doRequest(t, app, http.MethodGet, "/users/v1/users/search?foo=bar", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	message, ok := body["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "No search parameters", message["message"])
	assert.Zero(t, users.searchCalls)
}

func TestSearchUsersHandler_InvalidDate(t *testing.T) {
	app := newTestApp(&stubUsersStore{})

	rec := doRequest(t, app, http.MethodGet, "/users/v1/users/search?login_before_date=yesterday", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	message, ok := body["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Invalid login_before_date", message["message"])
}

func TestSearchUsersHandler_Success(t *testing.T) {
	var gotFilter store.SearchFilter
	users := &stubUsersStore{
		searchFunc: func(ctx context.Context, filter store.SearchFilter) ([]models.User, error) {
			gotFilter = filter
			return []models.User{
				{ID: 1, Name: "Maria Silva", Email: "maria@example.com", Status: true},
			}, nil
		},
	}
	app := newTestApp(users)

	rec := doRequest(t, app, http.MethodGet, "/users/v1/users/search?active=true&name=mar&login_after_date=2024-01-20", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	results, ok := body["message"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)

	require.NotNil(t, gotFilter.Active)
	assert.True(t, *gotFilter.Active)
	assert.Equal(t, "mar", gotFilter.Name)
	require.NotNil(t, gotFilter.LoginAfter)
	assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), *gotFilter.LoginAfter)
}

func TestSearchUsersHandler_ActiveFalse(t *testing.T) {
	var gotFilter store.SearchFilter
	users := &stubUsersStore{
		searchFunc: func(ctx context.Context, filter store.SearchFilter) ([]models.User, error) {
			gotFilter = filter
			return []models.User{{ID: 2, Name: "Inactive User", Status: false}}, nil
		},
	}
	app := newTestApp(users)

	rec := doRequest(t, app, http.MethodGet, "/users/v1/users/search?active=false", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotFilter.Active)
	assert.False(t, *gotFilter.Active, "Anything but true/1 means false")
}

func TestBulkCreateUsersHandler_MissingUsersField(t *testing.T) {
	app := newTestApp(&stubUsersStore{})

	rec := doRequest(t, app, http.MethodPost, "/users/v1/users/bulk", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	message, ok := body["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "No users to register", message["message"])
}

func TestBulkCreateUsersHandler_MixedBatch(t *testing.T) {
	users := &stubUsersStore{
		getByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == "taken@example.com" {
				return &models.User{ID: 9, Email: email}, nil
			}
			return nil, sql.ErrNoRows
		},
		bulkCreateFunc: func(ctx context.Context, batch []models.User) ([]models.User, error) {
			created := make([]models.User, len(batch))
			for i, u := range batch {
				u.ID = int64(100 + i)
				u.CreatedAt = time.Now()
				created[i] = u
			}
			return created, nil
		},
	}
	app := newTestApp(users)

	rec := doRequest(t, app, http.MethodPost, "/users/v1/users/bulk", map[string]any{
		"users": []map[string]string{
			{"name": "Good User", "email": "good@example.com", "password": "pw1", "password_second": "pw1"},
			{"name": "Taken User", "email": "taken@example.com", "password": "pw2", "password_second": "pw2"},
		},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	report, ok := body["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), report["registered_users"])
	assert.Equal(t, float64(1), report["non_registered_users"])

	details, ok := report["non_registered_details"].([]any)
	require.True(t, ok)
	require.Len(t, details, 1)
	detail := details[0].(map[string]any)
	assert.Equal(t, "Taken User", detail["user_name"])
	assert.Equal(t, "User already exists", detail["email"])
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "pw1", "Raw passwords must not appear in responses")
}
