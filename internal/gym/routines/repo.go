package routines

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

var ErrRoutineNotFound = errors.New("routine not found")

const msgExerciseDoesNotExist = `Invalid pk "%s" - object does not exist.`

// messages for unique constraint violations that slipped past pre-validation
var uniqueConstraintMessages = map[string]string{
	"routine_exercises_routine_id_order_key":       "The fields routine, order must make a unique set.",
	"routine_exercises_routine_id_exercise_id_key": "The fields routine, exercise must make a unique set.",
	"routine_sets_routine_exercise_id_order_key":   "The fields routine_exercise, order must make a unique set.",
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) List(ctx context.Context, userID uuid.UUID) (_ []Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, created, modified
			FROM routines
			WHERE user_id = $1
			ORDER BY created, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list routines [query]: %w", err)
	}
	defer rows.Close()

	routines := []Routine{}
	for rows.Next() {
		var routine Routine
		if err := rows.Scan(&routine.ID, &routine.Name, &routine.Created, &routine.Modified); err != nil {
			return nil, fmt.Errorf("list routines [rows scan]: %w", err)
		}
		routines = append(routines, routine)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routines [rows error]: %w", err)
	}

	if err := loadExercises(ctx, r.db, routines); err != nil {
		return nil, err
	}
	return routines, nil
}

func (r *Repo) Get(ctx context.Context, userID, id uuid.UUID) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", id.String()))

	return getRoutine(ctx, r.db, userID, id)
}

func (r *Repo) Create(ctx context.Context, userID uuid.UUID, routine Routine) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	routineID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("new routine id: %w", err)
	}

	var created *Routine
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := checkExercisesExist(ctx, tx, routine.RoutineExercises); err != nil {
			return err
		}

		if _, err := tx.Exec(
			ctx,
			`INSERT INTO routines (id, user_id, name) VALUES ($1, $2, $3)`,
			routineID, userID, routine.Name,
		); err != nil {
			return fmt.Errorf("insert routine: %w", err)
		}

		if err := insertExercises(ctx, tx, routineID, routine.RoutineExercises); err != nil {
			return err
		}

		stored, err := getRoutine(ctx, tx, userID, routineID)
		if err != nil {
			return err
		}
		created = stored
		return nil
	})
	if err != nil {
		return nil, mapWriteError(err)
	}

	span.SetAttributes(attribute.String("routine.id", routineID.String()))
	return created, nil
}

// Replace overwrites the routine's name and swaps its whole exercise tree for
// the given one, in a single transaction. The routine keeps its identity.
func (r *Repo) Replace(ctx context.Context, userID, id uuid.UUID, routine Routine) (_ *Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.replace")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", id.String()))

	var replaced *Routine
	err = db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		var lockedID uuid.UUID
		if err := tx.QueryRow(
			ctx,
			`SELECT id FROM routines WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			id, userID,
		).Scan(&lockedID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRoutineNotFound
			}
			return fmt.Errorf("lock routine: %w", err)
		}

		if err := checkExercisesExist(ctx, tx, routine.RoutineExercises); err != nil {
			return err
		}

		if _, err := tx.Exec(
			ctx,
			`UPDATE routines SET name = $2, modified = now() WHERE id = $1`,
			id, routine.Name,
		); err != nil {
			return fmt.Errorf("update routine: %w", err)
		}

		// routine sets go with their exercises (ON DELETE CASCADE)
		if _, err := tx.Exec(ctx, `DELETE FROM routine_exercises WHERE routine_id = $1`, id); err != nil {
			return fmt.Errorf("delete routine exercises: %w", err)
		}

		if err := insertExercises(ctx, tx, id, routine.RoutineExercises); err != nil {
			return err
		}

		stored, err := getRoutine(ctx, tx, userID, id)
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
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routines.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("routine.id", id.String()))

	tag, err := r.db.Exec(ctx, `DELETE FROM routines WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete routine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoutineNotFound
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
		// an exercise got deleted between the existence check and the insert
		return validation.Errors{validation.NonFieldErrorsKey: {"Referenced exercise does not exist."}}
	}
	return err
}

func checkExercisesExist(ctx context.Context, q db.Querier, exercises []RoutineExercise) error {
	ids := make([]uuid.UUID, 0, len(exercises))
	for _, re := range exercises {
		ids = append(ids, re.ExerciseID)
	}
	missing, err := catalog.FindMissing(ctx, q, ids)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}

	missingSet := make(map[uuid.UUID]bool, len(missing))
	for _, id := range missing {
		missingSet[id] = true
	}
	errs := validation.Errors{}
	for i, re := range exercises {
		if missingSet[re.ExerciseID] {
			errs.Add(validation.Path("routineExercises", i, "exerciseId"), fmt.Sprintf(msgExerciseDoesNotExist, re.ExerciseID))
		}
	}
	return errs
}

func insertExercises(ctx context.Context, tx pgx.Tx, routineID uuid.UUID, exercises []RoutineExercise) error {
	if len(exercises) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, re := range exercises {
		exerciseID, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("new routine exercise id: %w", err)
		}
		batch.Queue(
			`INSERT INTO routine_exercises (id, routine_id, exercise_id, "order", rest_timer, note)
				VALUES ($1, $2, $3, $4, $5, $6)`,
			exerciseID, routineID, re.ExerciseID, re.Order, db.Interval(re.RestTimer), re.Note,
		)
		for _, rs := range re.RoutineSets {
			setID, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("new routine set id: %w", err)
			}
			batch.Queue(
				`INSERT INTO routine_sets (id, routine_exercise_id, "order", weight, reps)
					VALUES ($1, $2, $3, $4, $5)`,
				setID, exerciseID, rs.Order, rs.Weight, rs.Reps,
			)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert routine exercises: %w", err)
	}
	return nil
}

func getRoutine(ctx context.Context, q db.Querier, userID, id uuid.UUID) (*Routine, error) {
	var routine Routine
	err := q.QueryRow(
		ctx,
		`SELECT id, name, created, modified FROM routines WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&routine.ID, &routine.Name, &routine.Created, &routine.Modified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoutineNotFound
		}
		return nil, fmt.Errorf("get routine [query row]: %w", err)
	}

	routines := []Routine{routine}
	if err := loadExercises(ctx, q, routines); err != nil {
		return nil, err
	}
	return &routines[0], nil
}

// loadExercises fills in the exercise trees of the given routines, sorted by order.
func loadExercises(ctx context.Context, q db.Querier, routines []Routine) error {
	if len(routines) == 0 {
		return nil
	}

	routineIDs := make([]uuid.UUID, len(routines))
	byRoutine := make(map[uuid.UUID]*Routine, len(routines))
	for i := range routines {
		routineIDs[i] = routines[i].ID
		routines[i].RoutineExercises = []RoutineExercise{}
		byRoutine[routines[i].ID] = &routines[i]
	}

	rows, err := q.Query(
		ctx,
		`SELECT re.id, re.routine_id, re."order", re.exercise_id, e.name, re.rest_timer, re.note, re.created, re.modified
			FROM routine_exercises re
			JOIN exercises e ON e.id = re.exercise_id
			WHERE re.routine_id = ANY($1::uuid[])
			ORDER BY re.routine_id, re."order"`,
		routineIDs,
	)
	if err != nil {
		return fmt.Errorf("routine exercises [query]: %w", err)
	}

	type exerciseRef struct {
		routineID uuid.UUID
		index     int
	}
	exerciseRefs := map[uuid.UUID]exerciseRef{}
	for rows.Next() {
		var (
			re        RoutineExercise
			routineID uuid.UUID
			restTimer pgtype.Interval
		)
		if err := rows.Scan(
			&re.ID, &routineID, &re.Order, &re.ExerciseID, &re.ExerciseName,
			&restTimer, &re.Note, &re.Created, &re.Modified,
		); err != nil {
			rows.Close()
			return fmt.Errorf("routine exercises [rows scan]: %w", err)
		}
		re.RestTimer = db.DurationFromInterval(restTimer)
		re.RoutineSets = []RoutineSet{}

		routine := byRoutine[routineID]
		routine.RoutineExercises = append(routine.RoutineExercises, re)
		exerciseRefs[re.ID] = exerciseRef{routineID: routineID, index: len(routine.RoutineExercises) - 1}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("routine exercises [rows error]: %w", err)
	}

	if len(exerciseRefs) == 0 {
		return nil
	}

	setRows, err := q.Query(
		ctx,
		`SELECT rs.id, rs.routine_exercise_id, rs."order", rs.weight, rs.reps, rs.created, rs.modified
			FROM routine_sets rs
			JOIN routine_exercises re ON re.id = rs.routine_exercise_id
			WHERE re.routine_id = ANY($1::uuid[])
			ORDER BY rs.routine_exercise_id, rs."order"`,
		routineIDs,
	)
	if err != nil {
		return fmt.Errorf("routine sets [query]: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var (
			rs                RoutineSet
			routineExerciseID uuid.UUID
		)
		if err := setRows.Scan(
			&rs.ID, &routineExerciseID, &rs.Order, &rs.Weight, &rs.Reps, &rs.Created, &rs.Modified,
		); err != nil {
			return fmt.Errorf("routine sets [rows scan]: %w", err)
		}
		ref, ok := exerciseRefs[routineExerciseID]
		if !ok {
			continue
		}
		re := &byRoutine[ref.routineID].RoutineExercises[ref.index]
		re.RoutineSets = append(re.RoutineSets, rs)
	}
	if err := setRows.Err(); err != nil {
		return fmt.Errorf("routine sets [rows error]: %w", err)
	}

	return nil
}
