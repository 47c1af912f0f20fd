package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/2beens/gymlog/internal/imagestore"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=catalog_test

type exercisesRepo interface {
	List(ctx context.Context, params ListParams) ([]Exercise, error)
	Get(ctx context.Context, id uuid.UUID) (*Exercise, error)
}

type imageOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type Handler struct {
	repo   exercisesRepo
	images imageOpener
}

func NewHandler(repo exercisesRepo, images imageOpener) *Handler {
	return &Handler{
		repo:   repo,
		images: images,
	}
}

// requestLanguage picks the ?lang query param, or the primary tag of the first
// Accept-Language entry ("ru-RU,ru;q=0.9" gives "ru").
func requestLanguage(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return strings.ToLower(lang)
	}
	accept := r.Header.Get("Accept-Language")
	if accept == "" {
		return ""
	}
	first, _, _ := strings.Cut(accept, ",")
	first, _, _ = strings.Cut(first, ";")
	tag, _, _ := strings.Cut(strings.TrimSpace(first), "-")
	if tag == "*" {
		return ""
	}
	return strings.ToLower(tag)
}

func parseListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	params := ListParams{
		MuscleGroup:  MuscleGroup(q.Get("muscleGroup")),
		ExerciseType: ExerciseType(q.Get("exerciseType")),
		Equipment:    Equipment(q.Get("equipment")),
	}
	if params.MuscleGroup != "" && !params.MuscleGroup.IsValid() {
		return params, fmt.Errorf("invalid muscle group: %s", params.MuscleGroup)
	}
	if params.ExerciseType != "" && !params.ExerciseType.IsValid() {
		return params, fmt.Errorf("invalid exercise type: %s", params.ExerciseType)
	}
	if !params.Equipment.IsValid() {
		return params, fmt.Errorf("invalid equipment: %s", params.Equipment)
	}
	return params, nil
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.list")
	defer span.End()

	params, err := parseListParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exercises, err := handler.repo.List(ctx, params)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		http.Error(w, "failed to list exercises", http.StatusInternalServerError)
		return
	}

	lang := requestLanguage(r)
	views := make([]ExerciseView, 0, len(exercises))
	for i := range exercises {
		views = append(views, exercises[i].View(lang))
	}

	if err := pkg.WriteJSON(w, views, http.StatusOK); err != nil {
		log.Errorf("marshal exercises: %s", err)
		http.Error(w, "failed to marshal exercises", http.StatusInternalServerError)
	}
}

func (handler *Handler) getExercise(w http.ResponseWriter, r *http.Request) (*Exercise, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "exercise not found", http.StatusNotFound)
		return nil, false
	}

	exercise, err := handler.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return nil, false
		}
		log.Errorf("get exercise %s: %s", id, err)
		http.Error(w, "failed to get exercise", http.StatusInternalServerError)
		return nil, false
	}
	return exercise, true
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.get")
	defer span.End()

	exercise, ok := handler.getExercise(w, r.WithContext(ctx))
	if !ok {
		return
	}

	if err := pkg.WriteJSON(w, exercise.View(requestLanguage(r)), http.StatusOK); err != nil {
		log.Errorf("marshal exercise: %s", err)
		http.Error(w, "failed to marshal exercise", http.StatusInternalServerError)
	}
}

func (handler *Handler) HandleGetImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.get_image")
	defer span.End()

	variant, err := ParseImageVariant(mux.Vars(r)["variant"])
	if err != nil {
		http.Error(w, "image not found", http.StatusNotFound)
		return
	}

	exercise, ok := handler.getExercise(w, r.WithContext(ctx))
	if !ok {
		return
	}

	key := exercise.ImageKey(variant)
	if key == nil || *key == "" {
		http.Error(w, "image not found", http.StatusNotFound)
		return
	}

	image, err := handler.images.Open(ctx, *key)
	if err != nil {
		if errors.Is(err, imagestore.ErrNotFound) {
			log.Warnf("exercise %s references missing image %s", exercise.ID, *key)
			http.Error(w, "image not found", http.StatusNotFound)
			return
		}
		log.Errorf("open image %s: %s", *key, err)
		http.Error(w, "get image failed", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := image.Close(); err != nil {
			log.Errorf("close image %s: %s", *key, err)
		}
	}()

	w.Header().Set("Content-Type", pkg.ContentType.JPEG)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, image); err != nil {
		log.Errorf("serve image %s: %s", *key, err)
	}
}
