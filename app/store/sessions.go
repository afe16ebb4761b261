package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/apavering/user-directory/app/models"
)

// SessionsStore persists login events. The directory itself only reads
// sessions through the search join; writes come from the external
// authentication flow and from integration tests seeding login history.
type SessionsStore struct {
	db *sql.DB
}

func (s *SessionsStore) Create(ctx context.Context, userID int64, createdAt time.Time) (*models.Session, error) {
	query := `INSERT INTO sessions (user_id, created_at) VALUES ($1, $2) RETURNING id`
	session := models.Session{UserID: userID, CreatedAt: createdAt}
	if err := s.db.QueryRowContext(ctx, query, userID, createdAt).Scan(&session.ID); err != nil {
		return nil, err
	}
	return &session, nil
}
