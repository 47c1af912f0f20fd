package workouts

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=setlogs_handler_mocks_test.go -package=workouts_test

type setLogsRepo interface {
	ListSetLogs(ctx context.Context, ref ExerciseLogRef) ([]SetLog, error)
	GetSetLog(ctx context.Context, ref ExerciseLogRef, id uuid.UUID) (*SetLog, error)
	AddSetLog(ctx context.Context, ref ExerciseLogRef, setLog SetLog) (*SetLog, error)
	UpdateSetLog(ctx context.Context, ref ExerciseLogRef, id uuid.UUID, patch SetLogPatch) (*SetLog, error)
	DeleteSetLog(ctx context.Context, ref ExerciseLogRef, id uuid.UUID) error
}

// SetLogsHandler serves the set logs of one exercise log, addressed
// as /workouts/{id}/exercises/{order}/sets.
type SetLogsHandler struct {
	repo           setLogsRepo
	metricsManager *metrics.Manager
}

func NewSetLogsHandler(repo setLogsRepo, metricsManager *metrics.Manager) *SetLogsHandler {
	return &SetLogsHandler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func exerciseLogRef(w http.ResponseWriter, r *http.Request) (ExerciseLogRef, bool) {
	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return ExerciseLogRef{}, false
	}

	vars := mux.Vars(r)
	workoutID, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "workout not found", http.StatusNotFound)
		return ExerciseLogRef{}, false
	}
	order, err := strconv.Atoi(vars["order"])
	if err != nil || order < 1 || order > math.MaxInt32 {
		http.Error(w, "exercise log not found", http.StatusNotFound)
		return ExerciseLogRef{}, false
	}

	return ExerciseLogRef{
		UserID:    userID,
		WorkoutID: workoutID,
		Order:     order,
	}, true
}

func setLogID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["setId"])
	if err != nil {
		http.Error(w, "set log not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func writeSetLog(w http.ResponseWriter, setLog *SetLog, statusCode int) {
	if err := pkg.WriteJSON(w, setLog, statusCode); err != nil {
		log.Errorf("marshal set log: %s", err)
		http.Error(w, "failed to marshal set log", http.StatusInternalServerError)
	}
}

func (handler *SetLogsHandler) writeRepoError(w http.ResponseWriter, op string, err error) {
	var errs validation.Errors
	switch {
	case errors.As(err, &errs):
		handler.countWrite(op, metrics.OutcomeInvalid)
		validation.WriteResponse(w, errs)
	case errors.Is(err, ErrWorkoutNotFound):
		handler.countWrite(op, metrics.OutcomeNotFound)
		http.Error(w, "workout not found", http.StatusNotFound)
	case errors.Is(err, ErrExerciseLogNotFound):
		handler.countWrite(op, metrics.OutcomeNotFound)
		http.Error(w, "exercise log not found", http.StatusNotFound)
	case errors.Is(err, ErrSetLogNotFound):
		handler.countWrite(op, metrics.OutcomeNotFound)
		http.Error(w, "set log not found", http.StatusNotFound)
	default:
		handler.countWrite(op, metrics.OutcomeError)
		log.Errorf("set log %s: %s", op, err)
		http.Error(w, "set log "+op+" failed", http.StatusInternalServerError)
	}
}

func (handler *SetLogsHandler) countWrite(op, outcome string) {
	if op == "get" || op == "list" {
		return
	}
	handler.metricsManager.AggregateWrite(metrics.AggregateSetLog, op, outcome)
}

func (handler *SetLogsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.set_logs.list")
	defer span.End()

	ref, ok := exerciseLogRef(w, r)
	if !ok {
		return
	}

	setLogs, err := handler.repo.ListSetLogs(ctx, ref)
	if err != nil {
		handler.writeRepoError(w, "list", err)
		return
	}

	if err := pkg.WriteJSON(w, setLogs, http.StatusOK); err != nil {
		log.Errorf("marshal set logs: %s", err)
		http.Error(w, "failed to marshal set logs", http.StatusInternalServerError)
	}
}

func (handler *SetLogsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.set_logs.add")
	defer span.End()

	ref, ok := exerciseLogRef(w, r)
	if !ok {
		return
	}
	if !pkg.HasJSONBody(r) {
		http.Error(w, "invalid content type", http.StatusUnsupportedMediaType)
		return
	}

	var input SetLogInput
	if errs := validation.DecodeJSON(r.Body, &input); errs != nil {
		handler.countWrite("create", metrics.OutcomeInvalid)
		validation.WriteResponse(w, errs)
		return
	}
	setLog, errs := input.Validate()
	if errs != nil {
		handler.countWrite("create", metrics.OutcomeInvalid)
		validation.WriteResponse(w, errs)
		return
	}

	created, err := handler.repo.AddSetLog(ctx, ref, setLog)
	if err != nil {
		handler.writeRepoError(w, "create", err)
		return
	}

	handler.countWrite("create", metrics.OutcomeOK)
	writeSetLog(w, created, http.StatusCreated)
}

func (handler *SetLogsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.set_logs.get")
	defer span.End()

	ref, ok := exerciseLogRef(w, r)
	if !ok {
		return
	}
	id, ok := setLogID(w, r)
	if !ok {
		return
	}

	setLog, err := handler.repo.GetSetLog(ctx, ref, id)
	if err != nil {
		handler.writeRepoError(w, "get", err)
		return
	}
	writeSetLog(w, setLog, http.StatusOK)
}

// HandleUpdate serves both PUT and PATCH, as a partial update.
func (handler *SetLogsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.set_logs.update")
	defer span.End()

	ref, ok := exerciseLogRef(w, r)
	if !ok {
		return
	}
	id, ok := setLogID(w, r)
	if !ok {
		return
	}
	if !pkg.HasJSONBody(r) {
		http.Error(w, "invalid content type", http.StatusUnsupportedMediaType)
		return
	}

	var input SetLogPatchInput
	if errs := validation.DecodeJSON(r.Body, &input); errs != nil {
		handler.countWrite("update", metrics.OutcomeInvalid)
		validation.WriteResponse(w, errs)
		return
	}
	patch, errs := input.Validate()
	if errs != nil {
		handler.countWrite("update", metrics.OutcomeInvalid)
		validation.WriteResponse(w, errs)
		return
	}

	updated, err := handler.repo.UpdateSetLog(ctx, ref, id, patch)
	if err != nil {
		handler.writeRepoError(w, "update", err)
		return
	}

	handler.countWrite("update", metrics.OutcomeOK)
	writeSetLog(w, updated, http.StatusOK)
}

func (handler *SetLogsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.set_logs.delete")
	defer span.End()

	ref, ok := exerciseLogRef(w, r)
	if !ok {
		return
	}
	id, ok := setLogID(w, r)
	if !ok {
		return
	}

	if err := handler.repo.DeleteSetLog(ctx, ref, id); err != nil {
		handler.writeRepoError(w, "delete", err)
		return
	}

	handler.countWrite("delete", metrics.OutcomeOK)
	w.WriteHeader(http.StatusNoContent)
}
