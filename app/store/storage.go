package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/apavering/user-directory/app/models"
)

// Storage bundles the per-collection stores behind small interfaces so the
// service layer can be tested without a database.
type Storage struct {
	Users interface {
		GetActiveByID(ctx context.Context, id int64) (*models.User, error)
		GetByEmail(ctx context.Context, email string) (*models.User, error)
		GetAllActive(ctx context.Context) ([]models.User, error)
		Create(ctx context.Context, user *models.User) error
		BulkCreate(ctx context.Context, users []models.User) ([]models.User, error)
		UpdateProfile(ctx context.Context, id int64, name, passwordHash, cellphone string) (int64, error)
		Deactivate(ctx context.Context, id int64) (int64, error)
		Search(ctx context.Context, filter SearchFilter) ([]models.User, error)
	}
	Sessions interface {
		Create(ctx context.Context, userID int64, createdAt time.Time) (*models.Session, error)
	}
}

func NewStorage(db *sql.DB) Storage {
	return Storage{
		Users:    &UsersStore{db: db},
		Sessions: &SessionsStore{db: db},
	}
}
