package routines

import (
	"fmt"
	"strings"

	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
)

// RoutineInput is the body of POST /routines and PUT /routines/{id}.
type RoutineInput struct {
	Name             string                 `json:"name" validate:"required,max=255"`
	RoutineExercises []RoutineExerciseInput `json:"routineExercises" validate:"required,dive"`
}

type RoutineExerciseInput struct {
	Order       *int              `json:"order" validate:"required,gte=1,lte=2147483647"`
	ExerciseID  string            `json:"exerciseId" validate:"required,uuid"`
	RestTimer   *string           `json:"restTimer" validate:"omitempty,duration"`
	Note        string            `json:"note"`
	RoutineSets []RoutineSetInput `json:"routineSets" validate:"required,dive"`
}

type RoutineSetInput struct {
	Order  *int     `json:"order" validate:"required,gte=1,lte=2147483647"`
	Weight *float64 `json:"weight" validate:"required"`
	Reps   *int     `json:"reps" validate:"required,gte=0,lte=2147483647"`
}

const msgDuplicateExercise = "Exercise %s is used more than once in this routine."

// Validate checks the input structurally and converts it into a routine tree.
// References to the exercise catalog are checked later, by the repo.
func (in RoutineInput) Validate() (Routine, validation.Errors) {
	in.Name = strings.TrimSpace(in.Name)
	if errs := validation.Struct(in); errs != nil {
		return Routine{}, errs
	}

	errs := validation.Errors{}
	exerciseOrders := make([]int, len(in.RoutineExercises))
	seenExercises := map[uuid.UUID]int{}
	for i, re := range in.RoutineExercises {
		exerciseOrders[i] = *re.Order
		seenExercises[uuid.MustParse(re.ExerciseID)]++

		setOrders := make([]int, len(re.RoutineSets))
		for j, rs := range re.RoutineSets {
			setOrders[j] = *rs.Order
		}
		errs.Merge(validation.CheckUniqueOrders(validation.Path("routineExercises", i, "routineSets"), setOrders))
	}
	errs.Merge(validation.CheckUniqueOrders("routineExercises", exerciseOrders))
	for i, re := range in.RoutineExercises {
		if id := uuid.MustParse(re.ExerciseID); seenExercises[id] > 1 {
			errs.Add(validation.Path("routineExercises", i, "exerciseId"), fmt.Sprintf(msgDuplicateExercise, id))
		}
	}
	if len(errs) > 0 {
		return Routine{}, errs
	}

	routine := Routine{
		Name:             in.Name,
		RoutineExercises: make([]RoutineExercise, 0, len(in.RoutineExercises)),
	}
	for _, re := range in.RoutineExercises {
		restTimer := pkg.NewDuration(DefaultRestTimer)
		if re.RestTimer != nil {
			// format already checked by the duration tag
			d, _ := pkg.ParseDuration(*re.RestTimer)
			restTimer = pkg.NewDuration(d)
		}

		exercise := RoutineExercise{
			Order:       *re.Order,
			ExerciseID:  uuid.MustParse(re.ExerciseID),
			RestTimer:   restTimer,
			Note:        re.Note,
			RoutineSets: make([]RoutineSet, 0, len(re.RoutineSets)),
		}
		for _, rs := range re.RoutineSets {
			exercise.RoutineSets = append(exercise.RoutineSets, RoutineSet{
				Order:  *rs.Order,
				Weight: *rs.Weight,
				Reps:   *rs.Reps,
			})
		}
		routine.RoutineExercises = append(routine.RoutineExercises, exercise)
	}

	return routine, nil
}
