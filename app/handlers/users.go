package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apavering/user-directory/app/dto"
)

// createUserHandler handles POST /users.
func (app *application) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, dto.Fail(http.StatusBadRequest, "Invalid request body"))
		return
	}

	req.Name = sanitizeText(req.Name, 120)
	req.Email = sanitizeEmail(req.Email, 255)
	req.Cellphone = sanitizeText(req.Cellphone, 32)

	// The password pair is compared by the directory before any format
	// validation so a mismatch is always reported as such.
	if req.Password == req.PasswordSecond {
		if env, ok := validateRequest(&req); !ok {
			writeEnvelope(w, env)
			return
		}
	}

	env, err := app.directory.CreateUser(r.Context(), req)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeEnvelope(w, env)
}

// getUserHandler handles GET /users/{id}.
func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	env, err := app.directory.GetUserByID(r.Context(), id)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeEnvelope(w, env)
}

// updateUserHandler handles PATCH /users/{id}.
func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, dto.Fail(http.StatusBadRequest, "Invalid request body"))
		return
	}
	if env, ok := validateRequest(&req); !ok {
		writeEnvelope(w, env)
		return
	}

	env, err := app.directory.UpdateUser(r.Context(), id, req)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeEnvelope(w, env)
}

// deleteUserHandler handles DELETE /users/{id}.
func (app *application) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	env, err := app.directory.DeleteUser(r.Context(), id)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeEnvelope(w, env)
}

// listActiveUsersHandler handles GET /users.
func (app *application) listActiveUsersHandler(w http.ResponseWriter, r *http.Request) {
	env, err := app.directory.GetAllActiveUsers(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeEnvelope(w, env)
}

// searchUsersHandler handles GET /users/search. An empty query string is
// rejected here, before any store round-trip.
func (app *application) searchUsersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if len(query) == 0 {
		writeEnvelope(w, dto.FailNested(http.StatusBadRequest, "No search parameters"))
		return
	}

	var params dto.SearchUsersParams

	if query.Has("active") {
		v := strings.ToLower(query.Get("active"))
		active := v == "true" || v == "1"
		params.Active = &active
	}
	params.Name = query.Get("name")

	if raw := query.Get("login_before_date"); raw != "" {
		t, err := parseSearchDate(raw)
		if err != nil {
			writeEnvelope(w, dto.FailNested(http.StatusBadRequest, "Invalid login_before_date"))
			return
		}
		params.LoginBefore = &t
	}
	if raw := query.Get("login_after_date"); raw != "" {
		t, err := parseSearchDate(raw)
		if err != nil {
			writeEnvelope(w, dto.FailNested(http.StatusBadRequest, "Invalid login_after_date"))
			return
		}
		params.LoginAfter = &t
	}

	env, err := app.directory.SearchUsers(r.Context(), params)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeEnvelope(w, env)
}

// bulkCreateUsersHandler handles POST /users/bulk.
func (app *application) bulkCreateUsersHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, dto.Fail(http.StatusBadRequest, "Invalid request body"))
		return
	}

	env, err := app.directory.BulkCreateUsers(r.Context(), req)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeEnvelope(w, env)
}

// parseIDParam extracts the numeric {id} path parameter, writing a 400
// envelope on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeEnvelope(w, dto.Fail(http.StatusBadRequest, "Invalid user id"))
		return 0, false
	}
	return id, true
}

// parseSearchDate accepts a plain date or a full RFC3339 timestamp.
func parseSearchDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
