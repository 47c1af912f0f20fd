package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymlog/internal/db"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

const setLogColumns = `id, exercise_log_id, "order", weight, reps, "end", created, modified`

// ExerciseLogRef addresses an exercise log by its workout and its order within it.
type ExerciseLogRef struct {
	UserID    uuid.UUID
	WorkoutID uuid.UUID
	Order     int
}

func scanSetLog(row pgx.Row) (*SetLog, error) {
	var exerciseLogID uuid.UUID
	return scanSetLogWith(row, &exerciseLogID)
}

// resolveExerciseLog finds the exercise log id, honoring workout ownership.
// A missing or foreign workout reports ErrWorkoutNotFound.
func resolveExerciseLog(ctx context.Context, q db.Querier, ref ExerciseLogRef) (uuid.UUID, error) {
	var exerciseLogID *uuid.UUID
	err := q.QueryRow(
		ctx,
		`SELECT el.id
			FROM workouts w
			LEFT JOIN exercise_logs el ON el.workout_id = w.id AND el."order" = $3
			WHERE w.id = $1 AND w.user_id = $2`,
		ref.WorkoutID, ref.UserID, ref.Order,
	).Scan(&exerciseLogID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrWorkoutNotFound
		}
		return uuid.Nil, fmt.Errorf("resolve exercise log: %w", err)
	}
	if exerciseLogID == nil {
		return uuid.Nil, ErrExerciseLogNotFound
	}
	return *exerciseLogID, nil
}

func (r *Repo) ListSetLogs(ctx context.Context, ref ExerciseLogRef) (_ []SetLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.set_logs.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", ref.WorkoutID.String()))

	exerciseLogID, err := resolveExerciseLog(ctx, r.db, ref)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+setLogColumns+` FROM set_logs WHERE exercise_log_id = $1 ORDER BY "order"`,
		exerciseLogID,
	)
	if err != nil {
		return nil, fmt.Errorf("list set logs [query]: %w", err)
	}
	defer rows.Close()

	setLogs := []SetLog{}
	for rows.Next() {
		sl, err := scanSetLog(rows)
		if err != nil {
			return nil, fmt.Errorf("list set logs [rows scan]: %w", err)
		}
		setLogs = append(setLogs, *sl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list set logs [rows error]: %w", err)
	}
	return setLogs, nil
}

func (r *Repo) GetSetLog(ctx context.Context, ref ExerciseLogRef, id uuid.UUID) (_ *SetLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.set_logs.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("set_log.id", id.String()))

	exerciseLogID, err := resolveExerciseLog(ctx, r.db, ref)
	if err != nil {
		return nil, err
	}
	return getSetLog(ctx, r.db, exerciseLogID, id)
}

func getSetLog(ctx context.Context, q db.Querier, exerciseLogID, id uuid.UUID) (*SetLog, error) {
	sl, err := scanSetLog(q.QueryRow(
		ctx,
		`SELECT `+setLogColumns+` FROM set_logs WHERE id = $1 AND exercise_log_id = $2`,
		id, exerciseLogID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSetLogNotFound
		}
		return nil, fmt.Errorf("get set log: %w", err)
	}
	return sl, nil
}

func (r *Repo) AddSetLog(ctx context.Context, ref ExerciseLogRef, setLog SetLog) (_ *SetLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.set_logs.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exerciseLogID, err := resolveExerciseLog(ctx, r.db, ref)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("new set log id: %w", err)
	}

	sl, err := scanSetLog(r.db.QueryRow(
		ctx,
		`INSERT INTO set_logs (id, exercise_log_id, "order", weight, reps, "end")
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+setLogColumns,
		id, exerciseLogID, setLog.Order, setLog.Weight, setLog.Reps, setLog.End,
	))
	if err != nil {
		return nil, mapSetLogWriteError(err, setLog.Order)
	}

	span.SetAttributes(attribute.String("set_log.id", id.String()))
	return sl, nil
}

func (r *Repo) UpdateSetLog(ctx context.Context, ref ExerciseLogRef, id uuid.UUID, patch SetLogPatch) (_ *SetLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.set_logs.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("set_log.id", id.String()))

	exerciseLogID, err := resolveExerciseLog(ctx, r.db, ref)
	if err != nil {
		return nil, err
	}

	sl, err := scanSetLog(r.db.QueryRow(
		ctx,
		`UPDATE set_logs
			SET "order" = COALESCE($3::integer, "order"),
				weight = COALESCE($4::double precision, weight),
				reps = COALESCE($5::integer, reps),
				"end" = CASE WHEN $6::boolean THEN $7::timestamptz ELSE "end" END,
				modified = now()
			WHERE id = $1 AND exercise_log_id = $2
			RETURNING `+setLogColumns,
		id, exerciseLogID, patch.Order, patch.Weight, patch.Reps, patch.EndSet, patch.End,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSetLogNotFound
		}
		order := 0
		if patch.Order != nil {
			order = *patch.Order
		}
		return nil, mapSetLogWriteError(err, order)
	}
	return sl, nil
}

func (r *Repo) DeleteSetLog(ctx context.Context, ref ExerciseLogRef, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.set_logs.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("set_log.id", id.String()))

	exerciseLogID, err := resolveExerciseLog(ctx, r.db, ref)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM set_logs WHERE id = $1 AND exercise_log_id = $2`, id, exerciseLogID)
	if err != nil {
		return fmt.Errorf("delete set log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSetLogNotFound
	}
	return nil
}

func mapSetLogWriteError(err error, order int) error {
	if pkg.IsUniqueViolationError(err) {
		return validation.Errors{"order": {fmt.Sprintf("Order %d is used more than once.", order)}}
	}
	return fmt.Errorf("write set log: %w", err)
}
