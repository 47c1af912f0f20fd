package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username taken")
)

const userColumns = `id, username, password_hash, name, bio, language, private_profile, created, modified`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Bio, &u.Language, &u.PrivateProfile, &u.Created, &u.Modified,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) Create(ctx context.Context, username, passwordHash, name string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("new user id: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(
		ctx,
		`INSERT INTO users (id, username, password_hash, name)
			VALUES ($1, $2, $3, $4)
			RETURNING `+userColumns,
		id, username, passwordHash, name,
	))
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", id.String()))
	return user, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get_by_id")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", id.String()))

	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, err
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get_by_username")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, err
}

// UpdateProfile writes the profile fields of the given user.
func (r *Repo) UpdateProfile(ctx context.Context, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.update_profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	updated, err := scanUser(r.db.QueryRow(
		ctx,
		`UPDATE users
			SET name = $2, bio = $3, language = $4, private_profile = $5, modified = now()
			WHERE id = $1
			RETURNING `+userColumns,
		user.ID, user.Name, user.Bio, user.Language, user.PrivateProfile,
	))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, err
}
