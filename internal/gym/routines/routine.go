package routines

import (
	"time"

	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
)

// DefaultRestTimer applies to routine exercises that do not set one.
const DefaultRestTimer = time.Minute

type Routine struct {
	ID               uuid.UUID         `json:"id"`
	Created          time.Time         `json:"created"`
	Modified         time.Time         `json:"modified"`
	Name             string            `json:"name"`
	RoutineExercises []RoutineExercise `json:"routineExercises"`
}

type RoutineExercise struct {
	ID           uuid.UUID     `json:"id"`
	Created      time.Time     `json:"created"`
	Modified     time.Time     `json:"modified"`
	Order        int           `json:"order"`
	ExerciseID   uuid.UUID     `json:"exerciseId"`
	ExerciseName string        `json:"exerciseName"`
	RestTimer    *pkg.Duration `json:"restTimer"`
	Note         string        `json:"note"`
	RoutineSets  []RoutineSet  `json:"routineSets"`
}

type RoutineSet struct {
	ID       uuid.UUID `json:"id"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Order    int       `json:"order"`
	Weight   float64   `json:"weight"`
	Reps     int       `json:"reps"`
}
