package workouts

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
)

// WorkoutInput is the body of POST /workouts and PUT /workouts/{id}.
// PUT replaces every writable field: omitted nullable fields are cleared.
type WorkoutInput struct {
	RoutineID    *string            `json:"routineId" validate:"omitempty,uuid"`
	Start        *string            `json:"start" validate:"omitempty,rfc3339"`
	End          *string            `json:"end" validate:"omitempty,rfc3339"`
	Duration     *string            `json:"duration" validate:"omitempty,duration"`
	Volume       *float64           `json:"volume"`
	ExerciseLogs []ExerciseLogInput `json:"exerciseLogs" validate:"required,dive"`
}

type ExerciseLogInput struct {
	Order      *int          `json:"order" validate:"required,gte=1,lte=2147483647"`
	ExerciseID string        `json:"exerciseId" validate:"required,uuid"`
	SetLogs    []SetLogInput `json:"setLogs" validate:"required,dive"`
}

type SetLogInput struct {
	Order  *int     `json:"order" validate:"required,gte=1,lte=2147483647"`
	Weight *float64 `json:"weight" validate:"required"`
	Reps   *int     `json:"reps" validate:"required,gte=0,lte=2147483647"`
	End    *string  `json:"end" validate:"omitempty,rfc3339"`
}

func parseTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	// format already checked by the rfc3339 tag
	t, _ := time.Parse(time.RFC3339Nano, *s)
	return &t
}

func (in SetLogInput) setLog() SetLog {
	return SetLog{
		Order:  *in.Order,
		Weight: *in.Weight,
		Reps:   *in.Reps,
		End:    parseTime(in.End),
	}
}

// Validate checks the input structurally and converts it into a workout tree.
// Exercise and routine references are checked later, by the repo.
func (in WorkoutInput) Validate() (Workout, validation.Errors) {
	if errs := validation.Struct(in); errs != nil {
		return Workout{}, errs
	}

	errs := validation.Errors{}
	logOrders := make([]int, len(in.ExerciseLogs))
	for i, el := range in.ExerciseLogs {
		logOrders[i] = *el.Order
		setOrders := make([]int, len(el.SetLogs))
		for j, sl := range el.SetLogs {
			setOrders[j] = *sl.Order
		}
		errs.Merge(validation.CheckUniqueOrders(validation.Path("exerciseLogs", i, "setLogs"), setOrders))
	}
	errs.Merge(validation.CheckUniqueOrders("exerciseLogs", logOrders))
	if len(errs) > 0 {
		return Workout{}, errs
	}

	workout := Workout{
		Start:        parseTime(in.Start),
		End:          parseTime(in.End),
		ExerciseLogs: make([]ExerciseLog, 0, len(in.ExerciseLogs)),
	}
	if in.RoutineID != nil {
		routineID := uuid.MustParse(*in.RoutineID)
		workout.RoutineID = &routineID
	}
	if in.Duration != nil {
		d, _ := pkg.ParseDuration(*in.Duration)
		workout.Duration = pkg.NewDuration(d)
	}
	if in.Volume != nil {
		workout.Volume = *in.Volume
	}

	for _, el := range in.ExerciseLogs {
		exerciseLog := ExerciseLog{
			Order:      *el.Order,
			ExerciseID: uuid.MustParse(el.ExerciseID),
			SetLogs:    make([]SetLog, 0, len(el.SetLogs)),
		}
		for _, sl := range el.SetLogs {
			exerciseLog.SetLogs = append(exerciseLog.SetLogs, sl.setLog())
		}
		workout.ExerciseLogs = append(workout.ExerciseLogs, exerciseLog)
	}

	return workout, nil
}

// Validate checks a single set log, as posted to the set log sub-resource.
func (in SetLogInput) Validate() (SetLog, validation.Errors) {
	if errs := validation.Struct(in); errs != nil {
		return SetLog{}, errs
	}
	return in.setLog(), nil
}

// SetLogPatchInput is the body of PUT/PATCH on a single set log. Every field is optional.
type SetLogPatchInput struct {
	Order  *int           `json:"order" validate:"omitempty,gte=1,lte=2147483647"`
	Weight *float64       `json:"weight"`
	Reps   *int           `json:"reps" validate:"omitempty,gte=0,lte=2147483647"`
	End    NullableString `json:"end"`
}

// NullableString tells an omitted JSON field apart from an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func (in SetLogPatchInput) Validate() (SetLogPatch, validation.Errors) {
	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}

	patch := SetLogPatch{
		Order:  in.Order,
		Weight: in.Weight,
		Reps:   in.Reps,
		EndSet: in.End.Set,
	}
	if in.End.Value != nil {
		end, err := time.Parse(time.RFC3339Nano, *in.End.Value)
		if err != nil {
			errs.Add("end", validation.MsgInvalidDatetime)
		} else {
			patch.End = &end
		}
	}

	if len(errs) > 0 {
		return SetLogPatch{}, errs
	}
	return patch, nil
}
