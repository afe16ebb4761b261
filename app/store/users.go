package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/apavering/user-directory/app/models"
)

type UsersStore struct {
	db *sql.DB
}

const userColumns = `id, name, email, password, cellphone, status, created_at`

func scanUser(row interface{ Scan(dest ...any) error }, u *models.User) error {
	return row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.Cellphone,
		&u.Status,
		&u.CreatedAt,
	)
}

// GetActiveByID returns the user matching id with status=true, or
// sql.ErrNoRows when missing or soft-deleted.
func (s *UsersStore) GetActiveByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND status = TRUE`
	var user models.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail looks a user up by email regardless of status; soft-deleted
// records still reserve their address.
func (s *UsersStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var user models.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, email), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersStore) GetAllActive(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE status = TRUE ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *UsersStore) Create(ctx context.Context, user *models.User) error {
	query := `
	INSERT INTO users (name, email, password, cellphone, status)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at
	`
	return s.db.QueryRowContext(ctx, query,
		user.Name,
		user.Email,
		user.Password,
		user.Cellphone,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt)
}

// BulkCreate inserts all users in a single multi-row statement and returns
// them with assigned ids. An empty input returns an empty result without
// touching the database.
func (s *UsersStore) BulkCreate(ctx context.Context, users []models.User) ([]models.User, error) {
	if len(users) == 0 {
		return nil, nil
	}

	values := make([]string, 0, len(users))
	args := make([]any, 0, len(users)*5)
	for i, u := range users {
		base := i * 5
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, u.Name, u.Email, u.Password, u.Cellphone, u.Status)
	}

	query := `INSERT INTO users (name, email, password, cellphone, status) VALUES ` +
		strings.Join(values, ", ") + ` RETURNING id, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	created := make([]models.User, 0, len(users))
	i := 0
	for rows.Next() {
		u := users[i]
		if err := rows.Scan(&u.ID, &u.CreatedAt); err != nil {
			return nil, err
		}
		created = append(created, u)
		i++
	}
	return created, rows.Err()
}

// UpdateProfile overwrites the mutable user fields for the record matching
// id, whatever its status, and reports the number of affected rows.
func (s *UsersStore) UpdateProfile(ctx context.Context, id int64, name, passwordHash, cellphone string) (int64, error) {
	query := `UPDATE users SET name = $1, password = $2, cellphone = $3 WHERE id = $4`
	res, err := s.db.ExecContext(ctx, query, name, passwordHash, cellphone, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Deactivate soft-deletes the record matching id. Repeated calls are no-ops.
func (s *UsersStore) Deactivate(ctx context.Context, id int64) (int64, error) {
	query := `UPDATE users SET status = FALSE WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Search runs the dynamically built filtered query. See filter.go for the
// predicate and join construction rules.
func (s *UsersStore) Search(ctx context.Context, filter SearchFilter) ([]models.User, error) {
	query, args := buildSearchQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
