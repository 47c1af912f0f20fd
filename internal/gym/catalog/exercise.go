package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ExerciseType string

const (
	ExerciseTypeWeightReps             ExerciseType = "weight_reps"
	ExerciseTypeRepsOnly               ExerciseType = "reps_only"
	ExerciseTypeWeightedBodyweight     ExerciseType = "weighted_bodyweight"
	ExerciseTypeAssistedBodyweight     ExerciseType = "assisted_bodyweight"
	ExerciseTypeDuration               ExerciseType = "duration"
	ExerciseTypeWeightDuration         ExerciseType = "weight_duration"
	ExerciseTypeDistanceDuration       ExerciseType = "distance_duration"
	ExerciseTypeWeightDistance         ExerciseType = "weight_distance"
	ExerciseTypeBodyweightReps         ExerciseType = "bodyweight_reps"
	ExerciseTypeBodyweightAssistedReps ExerciseType = "bodyweight_assisted_reps"
	ExerciseTypeShortDistanceWeight    ExerciseType = "short_distance_weight"
)

var exerciseTypes = map[ExerciseType]bool{
	ExerciseTypeWeightReps:             true,
	ExerciseTypeRepsOnly:               true,
	ExerciseTypeWeightedBodyweight:     true,
	ExerciseTypeAssistedBodyweight:     true,
	ExerciseTypeDuration:               true,
	ExerciseTypeWeightDuration:         true,
	ExerciseTypeDistanceDuration:       true,
	ExerciseTypeWeightDistance:         true,
	ExerciseTypeBodyweightReps:         true,
	ExerciseTypeBodyweightAssistedReps: true,
	ExerciseTypeShortDistanceWeight:    true,
}

func (t ExerciseType) IsValid() bool {
	return exerciseTypes[t]
}

type Equipment string

const (
	EquipmentNone           Equipment = "none"
	EquipmentBarbell        Equipment = "barbell"
	EquipmentDumbbell       Equipment = "dumbbell"
	EquipmentKettlebell     Equipment = "kettlebell"
	EquipmentMachine        Equipment = "machine"
	EquipmentPlate          Equipment = "plate"
	EquipmentResistanceBand Equipment = "resistance_band"
	EquipmentSuspension     Equipment = "suspension"
	EquipmentOther          Equipment = "other"
)

var equipments = map[Equipment]bool{
	EquipmentNone:           true,
	EquipmentBarbell:        true,
	EquipmentDumbbell:       true,
	EquipmentKettlebell:     true,
	EquipmentMachine:        true,
	EquipmentPlate:          true,
	EquipmentResistanceBand: true,
	EquipmentSuspension:     true,
	EquipmentOther:          true,
}

// IsValid reports whether e is a known equipment; empty is allowed.
func (e Equipment) IsValid() bool {
	return e == "" || equipments[e]
}

type MuscleGroup string

const (
	MuscleGroupAbdominals MuscleGroup = "abdominals"
	MuscleGroupAbductors  MuscleGroup = "abductors"
	MuscleGroupAdductors  MuscleGroup = "adductors"
	MuscleGroupBiceps     MuscleGroup = "biceps"
	MuscleGroupLowerBack  MuscleGroup = "lower_back"
	MuscleGroupUpperBack  MuscleGroup = "upper_back"
	MuscleGroupCardio     MuscleGroup = "cardio"
	MuscleGroupChest      MuscleGroup = "chest"
	MuscleGroupCalves     MuscleGroup = "calves"
	MuscleGroupForearms   MuscleGroup = "forearms"
	MuscleGroupGlutes     MuscleGroup = "glutes"
	MuscleGroupHamstrings MuscleGroup = "hamstrings"
	MuscleGroupLats       MuscleGroup = "lats"
	MuscleGroupQuadriceps MuscleGroup = "quadriceps"
	MuscleGroupShoulders  MuscleGroup = "shoulders"
	MuscleGroupTriceps    MuscleGroup = "triceps"
	MuscleGroupTraps      MuscleGroup = "traps"
	MuscleGroupNeck       MuscleGroup = "neck"
	MuscleGroupFullBody   MuscleGroup = "full_body"
	MuscleGroupOther      MuscleGroup = "other"
)

var muscleGroups = map[MuscleGroup]bool{
	MuscleGroupAbdominals: true,
	MuscleGroupAbductors:  true,
	MuscleGroupAdductors:  true,
	MuscleGroupBiceps:     true,
	MuscleGroupLowerBack:  true,
	MuscleGroupUpperBack:  true,
	MuscleGroupCardio:     true,
	MuscleGroupChest:      true,
	MuscleGroupCalves:     true,
	MuscleGroupForearms:   true,
	MuscleGroupGlutes:     true,
	MuscleGroupHamstrings: true,
	MuscleGroupLats:       true,
	MuscleGroupQuadriceps: true,
	MuscleGroupShoulders:  true,
	MuscleGroupTriceps:    true,
	MuscleGroupTraps:      true,
	MuscleGroupNeck:       true,
	MuscleGroupFullBody:   true,
	MuscleGroupOther:      true,
}

func (m MuscleGroup) IsValid() bool {
	return muscleGroups[m]
}

type ImageVariant string

const (
	ImageSmall ImageVariant = "small"
	ImageLarge ImageVariant = "large"
)

func ParseImageVariant(s string) (ImageVariant, error) {
	switch v := ImageVariant(s); v {
	case ImageSmall, ImageLarge:
		return v, nil
	default:
		return "", fmt.Errorf("unknown image variant: %q", s)
	}
}

// ImageKey is the image store key of an imported exercise image.
func ImageKey(externalID string, variant ImageVariant) string {
	return fmt.Sprintf("exercise_%s_images/%s_%s_image.jpg", variant, externalID, variant)
}

type Exercise struct {
	ID                 uuid.UUID
	Name               string
	NameTranslations   map[string]string
	ExerciseType       ExerciseType
	Equipment          Equipment
	PrimaryMuscleGroup MuscleGroup
	OtherMuscles       []MuscleGroup
	SmallImage         *string
	LargeImage         *string
	Created            time.Time
	Modified           time.Time
}

func (e *Exercise) ImageKey(variant ImageVariant) *string {
	if variant == ImageSmall {
		return e.SmallImage
	}
	return e.LargeImage
}

// LocalizedName returns the translated name for lang, falling back to Name.
func (e *Exercise) LocalizedName(lang string) string {
	if lang == "" {
		return e.Name
	}
	if name := strings.TrimSpace(e.NameTranslations[lang]); name != "" {
		return name
	}
	return e.Name
}

type ExerciseView struct {
	ID                 uuid.UUID         `json:"id"`
	Created            time.Time         `json:"created"`
	Modified           time.Time         `json:"modified"`
	Name               string            `json:"name"`
	NameTranslations   map[string]string `json:"nameTranslations"`
	ExerciseType       ExerciseType      `json:"exerciseType"`
	Equipment          Equipment         `json:"equipment"`
	PrimaryMuscleGroup MuscleGroup       `json:"primaryMuscleGroup"`
	OtherMuscles       []MuscleGroup     `json:"otherMuscles"`
	SmallImage         *string           `json:"smallImage"`
	LargeImage         *string           `json:"largeImage"`
}

func imagePath(id uuid.UUID, variant ImageVariant, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	p := fmt.Sprintf("/exercises/%s/image/%s", id, variant)
	return &p
}

func (e *Exercise) View(lang string) ExerciseView {
	translations := e.NameTranslations
	if translations == nil {
		translations = map[string]string{}
	}
	otherMuscles := e.OtherMuscles
	if otherMuscles == nil {
		otherMuscles = []MuscleGroup{}
	}
	return ExerciseView{
		ID:                 e.ID,
		Created:            e.Created,
		Modified:           e.Modified,
		Name:               e.LocalizedName(lang),
		NameTranslations:   translations,
		ExerciseType:       e.ExerciseType,
		Equipment:          e.Equipment,
		PrimaryMuscleGroup: e.PrimaryMuscleGroup,
		OtherMuscles:       otherMuscles,
		SmallImage:         imagePath(e.ID, ImageSmall, e.SmallImage),
		LargeImage:         imagePath(e.ID, ImageLarge, e.LargeImage),
	}
}
