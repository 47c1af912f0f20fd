package validation

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/2beens/gymlog/pkg"

	log "github.com/sirupsen/logrus"
)

// NonFieldErrorsKey holds messages not tied to a single field.
const NonFieldErrorsKey = "nonFieldErrors"

// Errors maps a JSON field path (e.g. "exerciseLogs[1].setLogs[0].reps")
// to the messages explaining why the value was rejected.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Merge(other Errors) {
	for field, messages := range other {
		e[field] = append(e[field], messages...)
	}
}

// Err returns nil for an empty set, so it can be returned as a plain error.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// WriteResponse writes the errors as a 400 JSON body.
func WriteResponse(w http.ResponseWriter, errs Errors) {
	if err := pkg.WriteJSON(w, errs, http.StatusBadRequest); err != nil {
		log.Errorf("marshal validation errors: %s", err)
		http.Error(w, "validation failed", http.StatusBadRequest)
	}
}

// Path joins a field path and an index, e.g. Path("routineExercises", 1, "order").
func Path(prefix string, index int, field string) string {
	p := fmt.Sprintf("%s[%d]", prefix, index)
	if field != "" {
		p += "." + field
	}
	return p
}
