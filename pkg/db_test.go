package pkg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrors(t *testing.T) {
	uniqueErr := fmt.Errorf("insert set: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "set_logs_exercise_log_id_order_key",
	})
	fkErr := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUniqueViolationError(uniqueErr))
	assert.False(t, IsForeignKeyViolationError(uniqueErr))
	assert.Equal(t, "set_logs_exercise_log_id_order_key", PgConstraintName(uniqueErr))

	assert.True(t, IsForeignKeyViolationError(fkErr))
	assert.False(t, IsUniqueViolationError(fkErr))

	plain := errors.New("boom")
	assert.False(t, IsUniqueViolationError(plain))
	assert.False(t, IsForeignKeyViolationError(plain))
	assert.Empty(t, PgConstraintName(plain))
}
