package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymlog/internal/db"
	"github.com/2beens/gymlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrExerciseNotFound = errors.New("exercise not found")

type ListParams struct {
	MuscleGroup  MuscleGroup
	ExerciseType ExerciseType
	Equipment    Equipment
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const exerciseColumns = `
	id, name, name_translations, exercise_type, equipment, primary_muscle_group,
	other_muscles, small_image, large_image, created, modified
`

func scanExercise(row pgx.Row) (*Exercise, error) {
	var (
		e                                       Exercise
		exerciseType, equipment, primaryMuscles string
		otherMuscles                            []string
	)
	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.NameTranslations,
		&exerciseType,
		&equipment,
		&primaryMuscles,
		&otherMuscles,
		&e.SmallImage,
		&e.LargeImage,
		&e.Created,
		&e.Modified,
	); err != nil {
		return nil, err
	}
	e.ExerciseType = ExerciseType(exerciseType)
	e.Equipment = Equipment(equipment)
	e.PrimaryMuscleGroup = MuscleGroup(primaryMuscles)
	e.OtherMuscles = make([]MuscleGroup, 0, len(otherMuscles))
	for _, m := range otherMuscles {
		e.OtherMuscles = append(e.OtherMuscles, MuscleGroup(m))
	}
	return &e, nil
}

func (r *Repo) List(ctx context.Context, params ListParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("params.muscleGroup", string(params.MuscleGroup)),
		attribute.String("params.exerciseType", string(params.ExerciseType)),
		attribute.String("params.equipment", string(params.Equipment)),
	)

	rows, err := r.db.Query(
		ctx,
		`SELECT `+exerciseColumns+`
			FROM exercises
			WHERE ($1::text = '' OR primary_muscle_group = $1)
			  AND ($2::text = '' OR exercise_type = $2)
			  AND ($3::text = '' OR equipment = $3)
			ORDER BY name`,
		string(params.MuscleGroup),
		string(params.ExerciseType),
		string(params.Equipment),
	)
	if err != nil {
		return nil, fmt.Errorf("list exercises [query]: %w", err)
	}
	defer rows.Close()

	exercises := []Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("list exercises [rows scan]: %w", err)
		}
		exercises = append(exercises, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list exercises [rows error]: %w", err)
	}

	return exercises, nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	e, err := scanExercise(r.db.QueryRow(
		ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("get exercise [query row]: %w", err)
	}
	return e, nil
}

// Upsert inserts the exercise or updates the one with the same name in place.
// The returned exercise carries the stored id, timestamps and image keys.
func (r *Repo) Upsert(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	newID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("new id: %w", err)
	}

	translations := exercise.NameTranslations
	if translations == nil {
		translations = map[string]string{}
	}
	otherMuscles := make([]string, 0, len(exercise.OtherMuscles))
	for _, m := range exercise.OtherMuscles {
		otherMuscles = append(otherMuscles, string(m))
	}

	stored, err := scanExercise(r.db.QueryRow(
		ctx,
		`INSERT INTO exercises
				(id, name, name_translations, exercise_type, equipment, primary_muscle_group, other_muscles)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (name) DO UPDATE SET
				name_translations = EXCLUDED.name_translations,
				exercise_type = EXCLUDED.exercise_type,
				equipment = EXCLUDED.equipment,
				primary_muscle_group = EXCLUDED.primary_muscle_group,
				other_muscles = EXCLUDED.other_muscles,
				modified = now()
			RETURNING `+exerciseColumns,
		newID,
		exercise.Name,
		translations,
		string(exercise.ExerciseType),
		string(exercise.Equipment),
		string(exercise.PrimaryMuscleGroup),
		otherMuscles,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert exercise [%s]: %w", exercise.Name, err)
	}
	return stored, nil
}

func (r *Repo) SetImage(ctx context.Context, id uuid.UUID, variant ImageVariant, key string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.set_image")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var query string
	switch variant {
	case ImageSmall:
		query = `UPDATE exercises SET small_image = $2, modified = now() WHERE id = $1`
	case ImageLarge:
		query = `UPDATE exercises SET large_image = $2, modified = now() WHERE id = $1`
	default:
		return fmt.Errorf("unknown image variant: %q", variant)
	}

	tag, err := r.db.Exec(ctx, query, id, key)
	if err != nil {
		return fmt.Errorf("set exercise image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

// FindMissing returns those ids that reference no exercise. It runs on q so
// aggregate writes can check references inside their own transaction.
func FindMissing(ctx context.Context, q db.Querier, ids []uuid.UUID) (_ []uuid.UUID, err error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.find_missing")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := q.Query(ctx, `SELECT id FROM exercises WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("find exercises [query]: %w", err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]bool, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("find exercises [rows scan]: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find exercises [rows error]: %w", err)
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
