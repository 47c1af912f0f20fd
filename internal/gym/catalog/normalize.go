package catalog

import (
	"strings"
	"unicode"
)

var vocabularyAliases = map[string]string{
	"abs":           string(MuscleGroupAbdominals),
	"quads":         string(MuscleGroupQuadriceps),
	"band":          string(EquipmentResistanceBand),
	"bands":         string(EquipmentResistanceBand),
	"bodyweight":    string(EquipmentNone),
	"body_weight":   string(EquipmentNone),
	"full":          string(MuscleGroupFullBody),
	"back":          string(MuscleGroupUpperBack),
	"lower":         string(MuscleGroupLowerBack),
	"trapezius":     string(MuscleGroupTraps),
	"latissimus":    string(MuscleGroupLats),
	"weight_plate":  string(EquipmentPlate),
	"trx":           string(EquipmentSuspension),
	"cable":         string(EquipmentMachine),
	"smith_machine": string(EquipmentMachine),
}

// normalizeToken lower-cases s and joins its words with underscores,
// treating spaces, hyphens and ampersands as separators.
func normalizeToken(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_' || r == '&' || r == '/'
	})
	token := strings.Join(words, "_")
	if alias, ok := vocabularyAliases[token]; ok {
		return alias
	}
	return token
}

func NormalizeExerciseType(s string) (ExerciseType, bool) {
	t := ExerciseType(normalizeToken(s))
	return t, t.IsValid()
}

// NormalizeEquipment maps an empty or bodyweight equipment to none.
func NormalizeEquipment(s string) (Equipment, bool) {
	e := Equipment(normalizeToken(s))
	if e == "" {
		e = EquipmentNone
	}
	return e, e.IsValid()
}

func NormalizeMuscleGroup(s string) (MuscleGroup, bool) {
	m := MuscleGroup(normalizeToken(s))
	return m, m.IsValid()
}
