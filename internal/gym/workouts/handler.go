package workouts

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	List(ctx context.Context, userID uuid.UUID) ([]Workout, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Workout, error)
	Create(ctx context.Context, userID uuid.UUID, workout Workout) (*Workout, error)
	Replace(ctx context.Context, userID, id uuid.UUID, workout Workout) (*Workout, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type Handler struct {
	repo           workoutsRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo workoutsRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func workoutID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "workout not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func decodeInput(w http.ResponseWriter, r *http.Request) (Workout, bool) {
	if !pkg.HasJSONBody(r) {
		http.Error(w, "invalid content type", http.StatusUnsupportedMediaType)
		return Workout{}, false
	}

	var input WorkoutInput
	if errs := validation.DecodeJSON(r.Body, &input); errs != nil {
		validation.WriteResponse(w, errs)
		return Workout{}, false
	}
	workout, errs := input.Validate()
	if errs != nil {
		validation.WriteResponse(w, errs)
		return Workout{}, false
	}
	return workout, true
}

func writeWorkout(w http.ResponseWriter, workout *Workout, statusCode int) {
	if err := pkg.WriteJSON(w, workout, statusCode); err != nil {
		log.Errorf("marshal workout: %s", err)
		http.Error(w, "failed to marshal workout", http.StatusInternalServerError)
	}
}

func (handler *Handler) writeRepoError(w http.ResponseWriter, op string, err error) {
	var errs validation.Errors
	switch {
	case errors.As(err, &errs):
		handler.countWrite(op, metrics.OutcomeInvalid)
		validation.WriteResponse(w, errs)
	case errors.Is(err, ErrWorkoutNotFound):
		handler.countWrite(op, metrics.OutcomeNotFound)
		http.Error(w, "workout not found", http.StatusNotFound)
	default:
		handler.countWrite(op, metrics.OutcomeError)
		log.Errorf("workout %s: %s", op, err)
		http.Error(w, "workout "+op+" failed", http.StatusInternalServerError)
	}
}

func (handler *Handler) countWrite(op, outcome string) {
	if op == "get" || op == "list" {
		return
	}
	handler.metricsManager.AggregateWrite(metrics.AggregateWorkout, op, outcome)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	workouts, err := handler.repo.List(ctx, userID)
	if err != nil {
		handler.writeRepoError(w, "list", err)
		return
	}

	if err := pkg.WriteJSON(w, workouts, http.StatusOK); err != nil {
		log.Errorf("marshal workouts: %s", err)
		http.Error(w, "failed to marshal workouts", http.StatusInternalServerError)
	}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}
	id, ok := workoutID(w, r)
	if !ok {
		return
	}

	workout, err := handler.repo.Get(ctx, userID, id)
	if err != nil {
		handler.writeRepoError(w, "get", err)
		return
	}
	writeWorkout(w, workout, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}
	workout, ok := decodeInput(w, r)
	if !ok {
		handler.countWrite("create", metrics.OutcomeInvalid)
		return
	}

	created, err := handler.repo.Create(ctx, userID, workout)
	if err != nil {
		handler.writeRepoError(w, "create", err)
		return
	}

	handler.countWrite("create", metrics.OutcomeOK)
	log.Debugf("workout %s created by user %s", created.ID, userID)
	writeWorkout(w, created, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}
	id, ok := workoutID(w, r)
	if !ok {
		return
	}
	workout, ok := decodeInput(w, r)
	if !ok {
		handler.countWrite("replace", metrics.OutcomeInvalid)
		return
	}

	replaced, err := handler.repo.Replace(ctx, userID, id, workout)
	if err != nil {
		handler.writeRepoError(w, "replace", err)
		return
	}

	handler.countWrite("replace", metrics.OutcomeOK)
	writeWorkout(w, replaced, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}
	id, ok := workoutID(w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, userID, id); err != nil {
		handler.writeRepoError(w, "delete", err)
		return
	}

	handler.countWrite("delete", metrics.OutcomeOK)
	w.WriteHeader(http.StatusNoContent)
}
