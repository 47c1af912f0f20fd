package dbtest

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateUser inserts a user with a random username and returns its id.
func CreateUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	_, err = pool.Exec(
		context.Background(),
		`INSERT INTO users (id, username, password_hash, name) VALUES ($1, $2, $3, $4)`,
		id,
		gofakeit.Username()+"_"+id.String()[:8],
		"not-a-real-hash",
		gofakeit.Name(),
	)
	require.NoError(t, err)
	return id
}

// CreateExercise inserts a catalog exercise with the given name and returns its id.
func CreateExercise(t *testing.T, pool *pgxpool.Pool, name string) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	_, err = pool.Exec(
		context.Background(),
		`INSERT INTO exercises (id, name, exercise_type, equipment, primary_muscle_group)
			VALUES ($1, $2, 'weight_reps', 'barbell', 'chest')`,
		id,
		name,
	)
	require.NoError(t, err)
	return id
}

// Count returns the number of rows in table.
func Count(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT count(*) FROM `+table).Scan(&n))
	return n
}
