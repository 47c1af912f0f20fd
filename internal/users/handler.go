package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=users_test

type usersRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, user User) (*User, error)
}

// Handler serves the user resource. Users only ever see themselves.
type Handler struct {
	repo usersRepo
}

func NewHandler(repo usersRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) actingUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (*User, bool) {
	userID, ok := auth.RequestUserID(w, r)
	if !ok {
		return nil, false
	}

	user, err := handler.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// session outlived its user
			http.Error(w, "no can do", http.StatusUnauthorized)
			return nil, false
		}
		log.Errorf("get acting user %s: %s", userID, err)
		http.Error(w, "get user failed", http.StatusInternalServerError)
		return nil, false
	}
	return user, true
}

// namedUser resolves {username}, which has to be the acting user.
func (handler *Handler) namedUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (*User, bool) {
	user, ok := handler.actingUser(ctx, w, r)
	if !ok {
		return nil, false
	}
	if mux.Vars(r)["username"] != user.Username {
		http.Error(w, "user not found", http.StatusNotFound)
		return nil, false
	}
	return user, true
}

func writeUser(w http.ResponseWriter, user *User) {
	if err := pkg.WriteJSON(w, user.View(), http.StatusOK); err != nil {
		log.Errorf("marshal user: %s", err)
		http.Error(w, "failed to marshal user", http.StatusInternalServerError)
	}
}

func (handler *Handler) updateProfile(ctx context.Context, w http.ResponseWriter, r *http.Request, user *User) {
	if !pkg.HasJSONBody(r) {
		http.Error(w, "invalid content type", http.StatusUnsupportedMediaType)
		return
	}

	var patch ProfilePatch
	if errs := validation.DecodeJSON(r.Body, &patch); errs != nil {
		validation.WriteResponse(w, errs)
		return
	}
	if errs := patch.Validate(); errs != nil {
		validation.WriteResponse(w, errs)
		return
	}

	patch.Apply(user)
	updated, err := handler.repo.UpdateProfile(ctx, *user)
	if err != nil {
		log.Errorf("update user %s: %s", user.ID, err)
		http.Error(w, "update user failed", http.StatusInternalServerError)
		return
	}
	writeUser(w, updated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.list")
	defer span.End()

	user, ok := handler.actingUser(ctx, w, r)
	if !ok {
		return
	}

	if err := pkg.WriteJSON(w, []UserView{user.View()}, http.StatusOK); err != nil {
		log.Errorf("marshal users: %s", err)
		http.Error(w, "failed to marshal users", http.StatusInternalServerError)
	}
}

func (handler *Handler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.me")
	defer span.End()

	user, ok := handler.actingUser(ctx, w, r)
	if !ok {
		return
	}
	writeUser(w, user)
}

func (handler *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.update_me")
	defer span.End()

	user, ok := handler.actingUser(ctx, w, r)
	if !ok {
		return
	}
	handler.updateProfile(ctx, w, r, user)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.get")
	defer span.End()

	user, ok := handler.namedUser(ctx, w, r)
	if !ok {
		return
	}
	writeUser(w, user)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.update")
	defer span.End()

	user, ok := handler.namedUser(ctx, w, r)
	if !ok {
		return
	}
	handler.updateProfile(ctx, w, r, user)
}
