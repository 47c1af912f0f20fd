package workouts

import (
	"time"

	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
)

type Workout struct {
	ID           uuid.UUID     `json:"id"`
	Created      time.Time     `json:"created"`
	Modified     time.Time     `json:"modified"`
	RoutineID    *uuid.UUID    `json:"routineId"`
	Start        *time.Time    `json:"start"`
	End          *time.Time    `json:"end"`
	Duration     *pkg.Duration `json:"duration"`
	Volume       float64       `json:"volume"`
	ExerciseLogs []ExerciseLog `json:"exerciseLogs"`
}

type ExerciseLog struct {
	ID           uuid.UUID `json:"id"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
	Order        int       `json:"order"`
	ExerciseID   uuid.UUID `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName"`
	SetLogs      []SetLog  `json:"setLogs"`
}

type SetLog struct {
	ID       uuid.UUID  `json:"id"`
	Created  time.Time  `json:"created"`
	Modified time.Time  `json:"modified"`
	Order    int        `json:"order"`
	Weight   float64    `json:"weight"`
	Reps     int        `json:"reps"`
	End      *time.Time `json:"end"`
}

// SetLogPatch holds the set log fields to change; nil pointers are left as they are.
// EndSet marks End as given, so an explicit null clears it.
type SetLogPatch struct {
	Order  *int
	Weight *float64
	Reps   *int
	EndSet bool
	End    *time.Time
}
