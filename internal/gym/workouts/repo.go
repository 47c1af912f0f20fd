package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymlog/internal/db"
	"github.com/2beens/gymlog/internal/gym/catalog"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrWorkoutNotFound     = errors.New("workout not found")
	ErrExerciseLogNotFound = errors.New("exercise log not found")
	ErrSetLogNotFound      = errors.New("set log not found")
)

const msgObjectDoesNotExist = `Invalid pk "%s" - object does not exist.`

var uniqueConstraintMessages = map[string]string{
	"exercise_logs_workout_id_order_key": "The fields workout, order must make a unique set.",
	"set_logs_exercise_log_id_order_key": "The fields exercise_log, order must make a unique set.",
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const workoutColumns = `id, routine_id, start, "end", duration, volume, created, modified`

func scanWorkout(row pgx.Row) (*Workout, error) {
	var (
		w        Workout
		duration pgtype.Interval
	)
	if err := row.Scan(
		&w.ID, &w.RoutineID, &w.Start, &w.End, &duration, &w.Volume, &w.Created, &w.Modified,
	); err != nil {
		return nil, err
	}
	w.Duration = db.DurationFromInterval(duration)
	return &w, nil
}

func (r *Repo) List(ctx context.Context, userID uuid.UUID) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+`
			FROM workouts
			WHERE user_id = $1
			ORDER BY created DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list workouts [query]: %w", err)
	}
	defer rows.Close()

	workouts := []Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("list workouts [rows scan]: %w", err)
		}
		workouts = append(workouts, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workouts [rows error]: %w", err)
	}

	if err := loadExerciseLogs(ctx, r.db, workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *Repo) Get(ctx context.Context, userID, id uuid.UUID) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id.String()))

	return getWorkout(ctx, r.db, userID, id)
}

func (r *Repo) Create(ctx context.Context, userID uuid.UUID, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workoutID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("new workout id: %w", err)
	}

	var created *Workout
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := checkReferences(ctx, tx, userID, workout); err != nil {
			return err
		}

		if _, err := tx.Exec(
			ctx,
			`INSERT INTO workouts (id, user_id, routine_id, start, "end", duration, volume)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			workoutID, userID, workout.RoutineID, workout.Start, workout.End,
			db.Interval(workout.Duration), workout.Volume,
		); err != nil {
			return fmt.Errorf("insert workout: %w", err)
		}

		if err := insertExerciseLogs(ctx, tx, workoutID, workout.ExerciseLogs); err != nil {
			return err
		}

		stored, err := getWorkout(ctx, tx, userID, workoutID)
		if err != nil {
			return err
		}
		created = stored
		return nil
	})
	if err != nil {
		return nil, mapWriteError(err)
	}

	span.SetAttributes(attribute.String("workout.id", workoutID.String()))
	return created, nil
}

// Replace overwrites the workout's scalar fields and swaps its whole exercise
// log tree for the given one, in a single transaction.
func (r *Repo) Replace(ctx context.Context, userID, id uuid.UUID, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.replace")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id.String()))

	var replaced *Workout
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var lockedID uuid.UUID
		if err := tx.QueryRow(
			ctx,
			`SELECT id FROM workouts WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			id, userID,
		).Scan(&lockedID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrWorkoutNotFound
			}
			return fmt.Errorf("lock workout: %w", err)
		}

		if err := checkReferences(ctx, tx, userID, workout); err != nil {
			return err
		}

		if _, err := tx.Exec(
			ctx,
			`UPDATE workouts
				SET routine_id = $2, start = $3, "end" = $4, duration = $5, volume = $6, modified = now()
				WHERE id = $1`,
			id, workout.RoutineID, workout.Start, workout.End,
			db.Interval(workout.Duration), workout.Volume,
		); err != nil {
			return fmt.Errorf("update workout: %w", err)
		}

		// set logs go with their exercise logs (ON DELETE CASCADE)
		if _, err := tx.Exec(ctx, `DELETE FROM exercise_logs WHERE workout_id = $1`, id); err != nil {
			return fmt.Errorf("delete exercise logs: %w", err)
		}

		if err := insertExerciseLogs(ctx, tx, id, workout.ExerciseLogs); err != nil {
			return err
		}

		stored, err := getWorkout(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		replaced = stored
		return nil
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	return replaced, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.id", id.String()))

	tag, err := r.db.Exec(ctx, `DELETE FROM workouts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	if pkg.IsUniqueViolationError(err) {
		msg, ok := uniqueConstraintMessages[pkg.PgConstraintName(err)]
		if !ok {
			msg = "Unique constraint violated."
		}
		return validation.Errors{validation.NonFieldErrorsKey: {msg}}
	}
	if pkg.IsForeignKeyViolationError(err) {
		return validation.Errors{validation.NonFieldErrorsKey: {"Referenced object does not exist."}}
	}
	return err
}

// checkReferences verifies the routine belongs to the user and all exercises exist.
func checkReferences(ctx context.Context, q db.Querier, userID uuid.UUID, workout Workout) error {
	errs := validation.Errors{}

	if workout.RoutineID != nil {
		var owned bool
		if err := q.QueryRow(
			ctx,
			`SELECT EXISTS (SELECT 1 FROM routines WHERE id = $1 AND user_id = $2)`,
			*workout.RoutineID, userID,
		).Scan(&owned); err != nil {
			return fmt.Errorf("check routine: %w", err)
		}
		if !owned {
			errs.Add("routineId", fmt.Sprintf(msgObjectDoesNotExist, *workout.RoutineID))
		}
	}

	ids := make([]uuid.UUID, 0, len(workout.ExerciseLogs))
	for _, el := range workout.ExerciseLogs {
		ids = append(ids, el.ExerciseID)
	}
	missing, err := catalog.FindMissing(ctx, q, ids)
	if err != nil {
		return err
	}
	missingSet := make(map[uuid.UUID]bool, len(missing))
	for _, id := range missing {
		missingSet[id] = true
	}
	for i, el := range workout.ExerciseLogs {
		if missingSet[el.ExerciseID] {
			errs.Add(validation.Path("exerciseLogs", i, "exerciseId"), fmt.Sprintf(msgObjectDoesNotExist, el.ExerciseID))
		}
	}

	return errs.Err()
}

func insertExerciseLogs(ctx context.Context, tx pgx.Tx, workoutID uuid.UUID, exerciseLogs []ExerciseLog) error {
	if len(exerciseLogs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, el := range exerciseLogs {
		exerciseLogID, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("new exercise log id: %w", err)
		}
		batch.Queue(
			`INSERT INTO exercise_logs (id, workout_id, exercise_id, "order") VALUES ($1, $2, $3, $4)`,
			exerciseLogID, workoutID, el.ExerciseID, el.Order,
		)
		for _, sl := range el.SetLogs {
			setLogID, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("new set log id: %w", err)
			}
			batch.Queue(
				`INSERT INTO set_logs (id, exercise_log_id, "order", weight, reps, "end")
					VALUES ($1, $2, $3, $4, $5, $6)`,
				setLogID, exerciseLogID, sl.Order, sl.Weight, sl.Reps, sl.End,
			)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert exercise logs: %w", err)
	}
	return nil
}

func getWorkout(ctx context.Context, q db.Querier, userID, id uuid.UUID) (*Workout, error) {
	w, err := scanWorkout(q.QueryRow(
		ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("get workout [query row]: %w", err)
	}

	workouts := []Workout{*w}
	if err := loadExerciseLogs(ctx, q, workouts); err != nil {
		return nil, err
	}
	return &workouts[0], nil
}

// loadExerciseLogs fills in the exercise log trees of the given workouts, sorted by order.
func loadExerciseLogs(ctx context.Context, q db.Querier, workouts []Workout) error {
	if len(workouts) == 0 {
		return nil
	}

	workoutIDs := make([]uuid.UUID, len(workouts))
	byWorkout := make(map[uuid.UUID]*Workout, len(workouts))
	for i := range workouts {
		workoutIDs[i] = workouts[i].ID
		workouts[i].ExerciseLogs = []ExerciseLog{}
		byWorkout[workouts[i].ID] = &workouts[i]
	}

	rows, err := q.Query(
		ctx,
		`SELECT el.id, el.workout_id, el."order", el.exercise_id, e.name, el.created, el.modified
			FROM exercise_logs el
			JOIN exercises e ON e.id = el.exercise_id
			WHERE el.workout_id = ANY($1::uuid[])
			ORDER BY el.workout_id, el."order"`,
		workoutIDs,
	)
	if err != nil {
		return fmt.Errorf("exercise logs [query]: %w", err)
	}

	type logRef struct {
		workoutID uuid.UUID
		index     int
	}
	logRefs := map[uuid.UUID]logRef{}
	for rows.Next() {
		var (
			el        ExerciseLog
			workoutID uuid.UUID
		)
		if err := rows.Scan(
			&el.ID, &workoutID, &el.Order, &el.ExerciseID, &el.ExerciseName, &el.Created, &el.Modified,
		); err != nil {
			rows.Close()
			return fmt.Errorf("exercise logs [rows scan]: %w", err)
		}
		el.SetLogs = []SetLog{}

		w := byWorkout[workoutID]
		w.ExerciseLogs = append(w.ExerciseLogs, el)
		logRefs[el.ID] = logRef{workoutID: workoutID, index: len(w.ExerciseLogs) - 1}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("exercise logs [rows error]: %w", err)
	}

	if len(logRefs) == 0 {
		return nil
	}

	setRows, err := q.Query(
		ctx,
		`SELECT sl.id, sl.exercise_log_id, sl."order", sl.weight, sl.reps, sl."end", sl.created, sl.modified
			FROM set_logs sl
			JOIN exercise_logs el ON el.id = sl.exercise_log_id
			WHERE el.workout_id = ANY($1::uuid[])
			ORDER BY sl.exercise_log_id, sl."order"`,
		workoutIDs,
	)
	if err != nil {
		return fmt.Errorf("set logs [query]: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var exerciseLogID uuid.UUID
		sl, err := scanSetLogWith(setRows, &exerciseLogID)
		if err != nil {
			return fmt.Errorf("set logs [rows scan]: %w", err)
		}
		ref, ok := logRefs[exerciseLogID]
		if !ok {
			continue
		}
		el := &byWorkout[ref.workoutID].ExerciseLogs[ref.index]
		el.SetLogs = append(el.SetLogs, *sl)
	}
	if err := setRows.Err(); err != nil {
		return fmt.Errorf("set logs [rows error]: %w", err)
	}

	return nil
}

func scanSetLogWith(row pgx.Row, exerciseLogID *uuid.UUID) (*SetLog, error) {
	var sl SetLog
	if err := row.Scan(
		&sl.ID, exerciseLogID, &sl.Order, &sl.Weight, &sl.Reps, &sl.End, &sl.Created, &sl.Modified,
	); err != nil {
		return nil, err
	}
	return &sl, nil
}
