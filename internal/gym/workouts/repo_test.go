//go:build integration_test || all_tests

package workouts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/2beens/gymlog/internal/db/dbtest"
	"github.com/2beens/gymlog/internal/gym/routines"
	"github.com/2beens/gymlog/internal/gym/workouts"
	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func workoutTree(routineID *uuid.UUID, exerciseIDs ...uuid.UUID) workouts.Workout {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	workout := workouts.Workout{
		RoutineID: routineID,
		Start:     &start,
		Duration:  pkg.NewDuration(time.Hour + 15*time.Minute),
		Volume:    1200,
	}
	for i, exID := range exerciseIDs {
		workout.ExerciseLogs = append(workout.ExerciseLogs, workouts.ExerciseLog{
			Order:      i + 1,
			ExerciseID: exID,
			SetLogs: []workouts.SetLog{
				{Order: 2, Weight: 80, Reps: 6},
				{Order: 1, Weight: 70, Reps: 8},
			},
		})
	}
	return workout
}

func createRoutine(t *testing.T, repo *routines.Repo, userID, exerciseID uuid.UUID) uuid.UUID {
	t.Helper()
	routine, err := repo.Create(context.Background(), userID, routines.Routine{
		Name:             "Template",
		RoutineExercises: []routines.RoutineExercise{{Order: 1, ExerciseID: exerciseID}},
	})
	require.NoError(t, err)
	return routine.ID
}

func TestRepo_CreateGetList(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := workouts.NewRepo(pool)
	ctx := context.Background()

	userID := dbtest.CreateUser(t, pool)
	squat := dbtest.CreateExercise(t, pool, "Squat")
	deadlift := dbtest.CreateExercise(t, pool, "Deadlift")
	routineID := createRoutine(t, routines.NewRepo(pool), userID, squat)

	created, err := repo.Create(ctx, userID, workoutTree(&routineID, squat, deadlift))
	require.NoError(t, err)
	require.NotNil(t, created.RoutineID)
	assert.Equal(t, routineID, *created.RoutineID)
	assert.Equal(t, 75*time.Minute, created.Duration.Std())
	assert.Nil(t, created.End)
	require.Len(t, created.ExerciseLogs, 2)
	assert.Equal(t, "Deadlift", created.ExerciseLogs[1].ExerciseName)
	assert.Equal(t, 1, created.ExerciseLogs[0].SetLogs[0].Order)

	got, err := repo.Get(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	second, err := repo.Create(ctx, userID, workoutTree(nil))
	require.NoError(t, err)
	assert.Nil(t, second.RoutineID)
	assert.Empty(t, second.ExerciseLogs)

	// newest first
	list, err := repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Len(t, list[1].ExerciseLogs, 2)

	otherUser := dbtest.CreateUser(t, pool)
	_, err = repo.Get(ctx, otherUser, created.ID)
	assert.ErrorIs(t, err, workouts.ErrWorkoutNotFound)
}

func TestRepo_Create_ForeignRoutineAndMissingExercise(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := workouts.NewRepo(pool)
	ctx := context.Background()

	owner := dbtest.CreateUser(t, pool)
	userID := dbtest.CreateUser(t, pool)
	squat := dbtest.CreateExercise(t, pool, "Squat")
	foreignRoutine := createRoutine(t, routines.NewRepo(pool), owner, squat)

	_, err := repo.Create(ctx, userID, workoutTree(&foreignRoutine, squat, uuid.New()))
	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "routineId")
	assert.Contains(t, errs, "exerciseLogs[1].exerciseId")

	assert.Equal(t, 0, dbtest.Count(t, pool, "workouts"))
	assert.Equal(t, 0, dbtest.Count(t, pool, "exercise_logs"))
}

func TestRepo_Replace(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := workouts.NewRepo(pool)
	ctx := context.Background()

	userID := dbtest.CreateUser(t, pool)
	squat := dbtest.CreateExercise(t, pool, "Squat")
	row := dbtest.CreateExercise(t, pool, "Row")
	routineID := createRoutine(t, routines.NewRepo(pool), userID, squat)

	created, err := repo.Create(ctx, userID, workoutTree(&routineID, squat))
	require.NoError(t, err)

	replacement := workoutTree(nil, row)
	replacement.Duration = nil
	replacement.Volume = 0
	replaced, err := repo.Replace(ctx, userID, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, created.ID, replaced.ID)
	assert.Equal(t, created.Created, replaced.Created)
	assert.Nil(t, replaced.RoutineID)
	assert.Nil(t, replaced.Duration)
	assert.Zero(t, replaced.Volume)
	require.Len(t, replaced.ExerciseLogs, 1)
	assert.Equal(t, row, replaced.ExerciseLogs[0].ExerciseID)
	assert.NotEqual(t, created.ExerciseLogs[0].ID, replaced.ExerciseLogs[0].ID)

	assert.Equal(t, 1, dbtest.Count(t, pool, "exercise_logs"))
	assert.Equal(t, 2, dbtest.Count(t, pool, "set_logs"))

	// failed replace keeps the stored tree
	_, err = repo.Replace(ctx, userID, created.ID, workoutTree(nil, uuid.New()))
	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	got, err := repo.Get(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, replaced, got)

	intruder := dbtest.CreateUser(t, pool)
	_, err = repo.Replace(ctx, intruder, created.ID, workoutTree(nil))
	assert.ErrorIs(t, err, workouts.ErrWorkoutNotFound)
}

func TestRepo_RoutineDeleteDetachesWorkouts(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := workouts.NewRepo(pool)
	routinesRepo := routines.NewRepo(pool)
	ctx := context.Background()

	userID := dbtest.CreateUser(t, pool)
	squat := dbtest.CreateExercise(t, pool, "Squat")
	routineID := createRoutine(t, routinesRepo, userID, squat)

	created, err := repo.Create(ctx, userID, workoutTree(&routineID, squat))
	require.NoError(t, err)

	require.NoError(t, routinesRepo.Delete(ctx, userID, routineID))

	got, err := repo.Get(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RoutineID)
	assert.Len(t, got.ExerciseLogs, 1)
}

func TestRepo_Delete(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := workouts.NewRepo(pool)
	ctx := context.Background()

	userID := dbtest.CreateUser(t, pool)
	squat := dbtest.CreateExercise(t, pool, "Squat")

	created, err := repo.Create(ctx, userID, workoutTree(nil, squat))
	require.NoError(t, err)

	intruder := dbtest.CreateUser(t, pool)
	assert.ErrorIs(t, repo.Delete(ctx, intruder, created.ID), workouts.ErrWorkoutNotFound)

	require.NoError(t, repo.Delete(ctx, userID, created.ID))
	assert.Equal(t, 0, dbtest.Count(t, pool, "exercise_logs"))
	assert.Equal(t, 0, dbtest.Count(t, pool, "set_logs"))
	assert.ErrorIs(t, repo.Delete(ctx, userID, created.ID), workouts.ErrWorkoutNotFound)
}

func TestRepo_SetLogs(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := workouts.NewRepo(pool)
	ctx := context.Background()

	userID := dbtest.CreateUser(t, pool)
	squat := dbtest.CreateExercise(t, pool, "Squat")

	created, err := repo.Create(ctx, userID, workoutTree(nil, squat))
	require.NoError(t, err)
	ref := workouts.ExerciseLogRef{UserID: userID, WorkoutID: created.ID, Order: 1}

	setLogs, err := repo.ListSetLogs(ctx, ref)
	require.NoError(t, err)
	require.Len(t, setLogs, 2)
	assert.Equal(t, 1, setLogs[0].Order)

	end := time.Date(2024, 3, 1, 10, 20, 0, 0, time.UTC)
	added, err := repo.AddSetLog(ctx, ref, workouts.SetLog{Order: 3, Weight: 90, Reps: 4, End: &end})
	require.NoError(t, err)
	assert.Equal(t, 3, added.Order)
	require.NotNil(t, added.End)
	assert.True(t, end.Equal(*added.End))

	_, err = repo.AddSetLog(ctx, ref, workouts.SetLog{Order: 3, Weight: 90, Reps: 4})
	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, validation.Errors{"order": {"Order 3 is used more than once."}}, errs)

	got, err := repo.GetSetLog(ctx, ref, added.ID)
	require.NoError(t, err)
	assert.Equal(t, added, got)

	reps := 5
	updated, err := repo.UpdateSetLog(ctx, ref, added.ID, workouts.SetLogPatch{Reps: &reps})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Reps)
	assert.Equal(t, 90.0, updated.Weight)
	require.NotNil(t, updated.End)

	updated, err = repo.UpdateSetLog(ctx, ref, added.ID, workouts.SetLogPatch{EndSet: true})
	require.NoError(t, err)
	assert.Nil(t, updated.End)

	require.NoError(t, repo.DeleteSetLog(ctx, ref, added.ID))
	assert.ErrorIs(t, repo.DeleteSetLog(ctx, ref, added.ID), workouts.ErrSetLogNotFound)
	_, err = repo.GetSetLog(ctx, ref, added.ID)
	assert.ErrorIs(t, err, workouts.ErrSetLogNotFound)

	_, err = repo.ListSetLogs(ctx, workouts.ExerciseLogRef{UserID: userID, WorkoutID: created.ID, Order: 9})
	assert.ErrorIs(t, err, workouts.ErrExerciseLogNotFound)

	intruder := dbtest.CreateUser(t, pool)
	_, err = repo.ListSetLogs(ctx, workouts.ExerciseLogRef{UserID: intruder, WorkoutID: created.ID, Order: 1})
	assert.ErrorIs(t, err, workouts.ErrWorkoutNotFound)
}
