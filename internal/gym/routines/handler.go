package routines

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

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=routines_test

type routinesRepo interface {
	List(ctx context.Context, userID uuid.UUID) ([]Routine, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Routine, error)
	Create(ctx context.Context, userID uuid.UUID, routine Routine) (*Routine, error)
	Replace(ctx context.Context, userID, id uuid.UUID, routine Routine) (*Routine, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type Handler struct {
	repo           routinesRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo routinesRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func routineID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "routine not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// decodeInput reads and validates the routine body, replying 400/415 on failure.
func decodeInput(w http.ResponseWriter, r *http.Request) (Routine, bool) {
	if !pkg.HasJSONBody(r) {
		http.Error(w, "invalid content type", http.StatusUnsupportedMediaType)
		return Routine{}, false
	}

	var input RoutineInput
	if errs := validation.DecodeJSON(r.Body, &input); errs != nil {
		validation.WriteResponse(w, errs)
		return Routine{}, false
	}
	routine, errs := input.Validate()
	if errs != nil {
		validation.WriteResponse(w, errs)
		return Routine{}, false
	}
	return routine, true
}

func (handler *Handler) writeRoutine(w http.ResponseWriter, routine *Routine, statusCode int) {
	if err := pkg.WriteJSON(w, routine, statusCode); err != nil {
		log.Errorf("marshal routine: %s", err)
		http.Error(w, "failed to marshal routine", http.StatusInternalServerError)
	}
}

// writeRepoError maps a repo error to a response and counts the write outcome (if op is set).
func (handler *Handler) writeRepoError(w http.ResponseWriter, op string, err error) {
	var errs validation.Errors
	switch {
	case errors.As(err, &errs):
		handler.countWrite(op, metrics.OutcomeInvalid)
		validation.WriteResponse(w, errs)
	case errors.Is(err, ErrRoutineNotFound):
		handler.countWrite(op, metrics.OutcomeNotFound)
		http.Error(w, "routine not found", http.StatusNotFound)
	default:
		handler.countWrite(op, metrics.OutcomeError)
		log.Errorf("routine %s: %s", op, err)
		http.Error(w, "routine "+op+" failed", http.StatusInternalServerError)
	}
}

func (handler *Handler) countWrite(op, outcome string) {
	if op == "get" || op == "list" {
		return
	}
	handler.metricsManager.AggregateWrite(metrics.AggregateRoutine, op, outcome)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.list")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}

	routines, err := handler.repo.List(ctx, userID)
	if err != nil {
		handler.writeRepoError(w, "list", err)
		return
	}

	if err := pkg.WriteJSON(w, routines, http.StatusOK); err != nil {
		log.Errorf("marshal routines: %s", err)
		http.Error(w, "failed to marshal routines", http.StatusInternalServerError)
	}
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.get")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}
	id, ok := routineID(w, r)
	if !ok {
		return
	}

	routine, err := handler.repo.Get(ctx, userID, id)
	if err != nil {
		handler.writeRepoError(w, "get", err)
		return
	}
	handler.writeRoutine(w, routine, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.add")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}
	routine, ok := decodeInput(w, r)
	if !ok {
		handler.countWrite("create", metrics.OutcomeInvalid)
		return
	}

	created, err := handler.repo.Create(ctx, userID, routine)
	if err != nil {
		handler.writeRepoError(w, "create", err)
		return
	}

	handler.countWrite("create", metrics.OutcomeOK)
	log.Debugf("routine %s created by user %s", created.ID, userID)
	handler.writeRoutine(w, created, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.update")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}
	id, ok := routineID(w, r)
	if !ok {
		return
	}
	routine, ok := decodeInput(w, r)
	if !ok {
		handler.countWrite("replace", metrics.OutcomeInvalid)
		return
	}

	replaced, err := handler.repo.Replace(ctx, userID, id, routine)
	if err != nil {
		handler.writeRepoError(w, "replace", err)
		return
	}

	handler.countWrite("replace", metrics.OutcomeOK)
	handler.writeRoutine(w, replaced, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routines.delete")
	defer span.End()

	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return
	}
	id, ok := routineID(w, r)
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
