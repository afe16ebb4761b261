package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/apavering/user-directory/app/cache"
	"github.com/apavering/user-directory/app/dto"
	"github.com/apavering/user-directory/app/logger"
	"github.com/apavering/user-directory/app/metrics"
	"github.com/apavering/user-directory/app/models"
	"github.com/apavering/user-directory/app/store"
)

// UserDirectory implements the user CRUD operations. Business outcomes are
// returned as envelope values; only infrastructure faults come back as
// errors, for the transport layer to map to a 500.
type UserDirectory struct {
	store     store.Storage
	hasher    Hasher
	publisher EventPublisher
	cache     *cache.UserCache
}

// NewUserDirectory wires the directory with its collaborators. publisher and
// cache may be nil; the corresponding side effects are then skipped.
func NewUserDirectory(st store.Storage, hasher Hasher, publisher EventPublisher, userCache *cache.UserCache) *UserDirectory {
	return &UserDirectory{
		store:     st,
		hasher:    hasher,
		publisher: publisher,
		cache:     userCache,
	}
}

// CreateUser registers a single user. Email uniqueness is check-then-act:
// concurrent requests for the same address can race, a documented invariant
// of this core rather than a store constraint.
func (d *UserDirectory) CreateUser(ctx context.Context, req dto.CreateUserRequest) (dto.Envelope, error) {
	if req.Password != req.PasswordSecond {
		return dto.Fail(400, "Passwords do not match"), nil
	}

	existing, err := d.store.Users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return dto.Envelope{}, err
	}
	if existing != nil {
		return dto.Fail(400, "User already exists"), nil
	}

	hash, err := d.hasher.Hash(req.Password)
	if err != nil {
		return dto.Envelope{}, err
	}

	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  hash,
		Cellphone: req.Cellphone,
		Status:    true,
	}
	if err := d.store.Users.Create(ctx, &user); err != nil {
		return dto.Envelope{}, err
	}

	metrics.RecordUsersCreated(1)
	d.publishCreated(ctx, user)

	return dto.OK(fmt.Sprintf("User created successfully with ID: %d", user.ID)), nil
}

// GetUserByID returns the active user matching id. A missing or
// soft-deleted user yields a 200 envelope with a null message: the result is
// a pass-through of the store lookup, not a 404.
func (d *UserDirectory) GetUserByID(ctx context.Context, id int64) (dto.Envelope, error) {
	if d.cache != nil {
		if user, found, err := d.cache.Get(ctx, id); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Int64("user_id", id).Msg("cache get failed")
		} else if found {
			return dto.OK(dto.NewUserResponse(*user)), nil
		}
	}

	user, err := d.store.Users.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dto.OK(nil), nil
		}
		return dto.Envelope{}, err
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, *user); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Int64("user_id", id).Msg("cache set failed")
		}
	}

	return dto.OK(dto.NewUserResponse(*user)), nil
}

// UpdateUser applies a partial update. The active record is loaded first to
// supply defaults for omitted fields; if none exists the update is rejected
// with a 404 instead of silently matching zero rows. The update itself is
// keyed on id alone, not re-scoped to status=true.
func (d *UserDirectory) UpdateUser(ctx context.Context, id int64, req dto.UpdateUserRequest) (dto.Envelope, error) {
	existing, err := d.store.Users.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dto.Fail(404, "User not found"), nil
		}
		return dto.Envelope{}, err
	}

	name := existing.Name
	if req.Name != nil {
		name = *req.Name
	}
	password := existing.Password
	if req.Password != nil {
		password, err = d.hasher.Hash(*req.Password)
		if err != nil {
			return dto.Envelope{}, err
		}
	}
	cellphone := existing.Cellphone
	if req.Cellphone != nil {
		cellphone = *req.Cellphone
	}

	if _, err := d.store.Users.UpdateProfile(ctx, id, name, password, cellphone); err != nil {
		return dto.Envelope{}, err
	}

	d.invalidate(ctx, id)

	return dto.OK("User updated successfully"), nil
}

// DeleteUser soft-deletes the record matching id. It does not check whether
// the record existed or was already inactive; repeated calls succeed alike.
func (d *UserDirectory) DeleteUser(ctx context.Context, id int64) (dto.Envelope, error) {
	if _, err := d.store.Users.Deactivate(ctx, id); err != nil {
		return dto.Envelope{}, err
	}

	metrics.RecordUserDeactivated()
	d.invalidate(ctx, id)

	if d.publisher != nil {
		if err := d.publisher.PublishUserDeactivated(ctx, id); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Int64("user_id", id).Msg("failed to publish user.deactivated")
		}
	}

	return dto.OK("User deleted successfully"), nil
}

// GetAllActiveUsers lists every user with status=true.
func (d *UserDirectory) GetAllActiveUsers(ctx context.Context) (dto.Envelope, error) {
	users, err := d.store.Users.GetAllActive(ctx)
	if err != nil {
		return dto.Envelope{}, err
	}
	if len(users) == 0 {
		return dto.FailNested(404, "No active users found"), nil
	}
	return dto.OK(dto.NewUserResponses(users)), nil
}

// SearchUsers runs the filtered search. Date bounds are clamped to their day
// boundaries in UTC: "before" to 23:59:59.999, "after" to 00:00:00. When
// both bounds are present the session predicate is their inclusive OR, a
// union of the two windows.
func (d *UserDirectory) SearchUsers(ctx context.Context, params dto.SearchUsersParams) (dto.Envelope, error) {
	if params.IsZero() {
		return dto.FailNested(400, "No search parameters"), nil
	}

	filter := store.SearchFilter{
		Active: params.Active,
		Name:   params.Name,
	}
	if params.LoginBefore != nil {
		bound := endOfDayUTC(*params.LoginBefore)
		filter.LoginBefore = &bound
	}
	if params.LoginAfter != nil {
		bound := startOfDayUTC(*params.LoginAfter)
		filter.LoginAfter = &bound
	}

	users, err := d.store.Users.Search(ctx, filter)
	if err != nil {
		return dto.Envelope{}, err
	}

	metrics.RecordUserSearch()

	if len(users) == 0 {
		return dto.FailNested(404, "No results for this search"), nil
	}
	return dto.OK(dto.NewUserResponses(users)), nil
}

// BulkCreateUsers validates candidates one at a time in request order, each
// existence check a separate store round-trip, then persists the accepted
// ones in a single batch insert. No transaction wraps the batch, so a
// partial batch failure can leave earlier rows applied.
func (d *UserDirectory) BulkCreateUsers(ctx context.Context, req dto.BulkCreateRequest) (dto.Envelope, error) {
	if req.Users == nil {
		return dto.FailNested(400, "No users to register"), nil
	}

	nonRegistered := []dto.BulkRejection{}
	var accepted []models.User

	for _, candidate := range *req.Users {
		rejection := dto.BulkRejection{UserName: candidate.Name}

		if candidate.Password != candidate.PasswordSecond {
			rejection.Password = "passwords do not match"
		}

		existing, err := d.store.Users.GetByEmail(ctx, candidate.Email)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return dto.Envelope{}, err
		}
		if existing != nil {
			rejection.Email = "User already exists"
		}

		if !rejection.Accepted() {
			nonRegistered = append(nonRegistered, rejection)
			continue
		}

		hash, err := d.hasher.Hash(candidate.Password)
		if err != nil {
			return dto.Envelope{}, err
		}
		accepted = append(accepted, models.User{
			Name:      candidate.Name,
			Email:     candidate.Email,
			Password:  hash,
			Cellphone: candidate.Cellphone,
			Status:    true,
		})
	}

	if len(accepted) == 0 {
		return dto.Envelope{Code: 400, Message: dto.BulkReport{
			Code:                 400,
			Message:              "Users did not pass validation",
			RegisteredUsers:      0,
			NonRegisteredUsers:   len(nonRegistered),
			NonRegisteredDetails: nonRegistered,
		}}, nil
	}

	created, err := d.store.Users.BulkCreate(ctx, accepted)
	if err != nil {
		return dto.Envelope{}, err
	}
	if len(created) == 0 {
		return dto.FailNested(400, "Could not register new users"), nil
	}

	metrics.RecordUsersCreated(len(created))
	for _, user := range created {
		d.publishCreated(ctx, user)
	}

	return dto.Envelope{Code: 200, Message: dto.BulkReport{
		Code:                 200,
		RegisteredUsers:      len(created),
		NonRegisteredUsers:   len(nonRegistered),
		NonRegisteredDetails: nonRegistered,
	}}, nil
}

func (d *UserDirectory) publishCreated(ctx context.Context, user models.User) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.PublishUserCreated(ctx, user); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Int64("user_id", user.ID).Msg("failed to publish user.created")
	}
}

func (d *UserDirectory) invalidate(ctx context.Context, id int64) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Invalidate(ctx, id); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Int64("user_id", id).Msg("cache invalidate failed")
	}
}

func endOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, time.UTC)
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
