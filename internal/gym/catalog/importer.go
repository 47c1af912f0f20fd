package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/2beens/gymlog/internal/imagestore"
	"github.com/2beens/gymlog/internal/validation"

	"github.com/google/uuid"
)

//go:generate mockgen -source=$GOFILE -destination=importer_mocks_test.go -package=catalog_test

type importerRepo interface {
	Upsert(ctx context.Context, exercise Exercise) (*Exercise, error)
	SetImage(ctx context.Context, id uuid.UUID, variant ImageVariant, key string) error
}

// Record is one exercise entry of the import file, keyed by its external id.
type Record struct {
	Title             string   `json:"title"`
	RuTitle           string   `json:"ru_title"`
	EsTitle           string   `json:"es_title"`
	ExerciseType      string   `json:"exercise_type"`
	EquipmentCategory string   `json:"equipment_category"`
	MuscleGroup       string   `json:"muscle_group"`
	OtherMuscles      []string `json:"other_muscles"`
	Thumbnail         string   `json:"thumbnail"`
	WebFeatureImage   string   `json:"web_feature_image"`
}

// Exercise validates and normalizes the record into a catalog exercise.
func (rec Record) Exercise() (Exercise, error) {
	errs := validation.Errors{}

	name := strings.TrimSpace(rec.Title)
	if name == "" {
		errs.Add("title", validation.MsgRequired)
	} else if len([]rune(name)) > 255 {
		errs.Add("title", "Ensure this field has no more than 255 characters.")
	}

	exerciseType, ok := NormalizeExerciseType(rec.ExerciseType)
	if !ok {
		errs.Add("exercise_type", fmt.Sprintf("%q is not a valid choice.", rec.ExerciseType))
	}
	equipment, ok := NormalizeEquipment(rec.EquipmentCategory)
	if !ok {
		errs.Add("equipment_category", fmt.Sprintf("%q is not a valid choice.", rec.EquipmentCategory))
	}
	primary, ok := NormalizeMuscleGroup(rec.MuscleGroup)
	if !ok {
		errs.Add("muscle_group", fmt.Sprintf("%q is not a valid choice.", rec.MuscleGroup))
	}

	otherMuscles := make([]MuscleGroup, 0, len(rec.OtherMuscles))
	for i, m := range rec.OtherMuscles {
		mg, ok := NormalizeMuscleGroup(m)
		if !ok {
			errs.Add(fmt.Sprintf("other_muscles[%d]", i), fmt.Sprintf("%q is not a valid choice.", m))
			continue
		}
		otherMuscles = append(otherMuscles, mg)
	}

	if err := errs.Err(); err != nil {
		return Exercise{}, err
	}

	translations := map[string]string{"en": name}
	if ru := strings.TrimSpace(rec.RuTitle); ru != "" {
		translations["ru"] = ru
	}
	if es := strings.TrimSpace(rec.EsTitle); es != "" {
		translations["es"] = es
	}

	return Exercise{
		Name:               name,
		NameTranslations:   translations,
		ExerciseType:       exerciseType,
		Equipment:          equipment,
		PrimaryMuscleGroup: primary,
		OtherMuscles:       otherMuscles,
	}, nil
}

// LoadRecords reads the import file: a JSON object of external id -> record.
// Records are decoded one by one later, so a malformed record only skips itself.
func LoadRecords(r io.Reader) (map[string]json.RawMessage, error) {
	var records map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode exercises file: %w", err)
	}
	return records, nil
}

type ImportStats struct {
	Total    int
	Imported int
	Skipped  int
	Images   int
}

type Importer struct {
	repo       importerRepo
	images     imagestore.Store
	httpClient *http.Client
	stdout     io.Writer
	stderr     io.Writer
}

func NewImporter(
	repo importerRepo,
	images imagestore.Store,
	httpClient *http.Client,
	stdout, stderr io.Writer,
) *Importer {
	return &Importer{
		repo:       repo,
		images:     images,
		httpClient: httpClient,
		stdout:     stdout,
		stderr:     stderr,
	}
}

// Run imports the records sequentially, ordered by external id as a string
// ("10" before "9"). The key order of the source file is not kept: records
// arrive as a map, so progress output follows the sorted ids instead.
// Per-record problems are reported on stderr and never abort the run.
func (i *Importer) Run(ctx context.Context, records map[string]json.RawMessage) (ImportStats, error) {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	stats := ImportStats{Total: len(ids)}
	_, _ = fmt.Fprintf(i.stdout, "Total exercises to import: %d\n", stats.Total)

	for idx, externalID := range ids {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		_, _ = fmt.Fprintf(i.stdout, "Processing exercise %d/%d (ID: %s)...\n", idx+1, stats.Total, externalID)
		if i.processRecord(ctx, externalID, records[externalID], &stats) {
			stats.Imported++
		} else {
			stats.Skipped++
		}
	}

	if stats.Skipped == 0 {
		_, _ = fmt.Fprintln(i.stdout, "Successfully imported all exercises")
	} else {
		_, _ = fmt.Fprintf(i.stdout, "Imported %d of %d exercises, %d skipped\n", stats.Imported, stats.Total, stats.Skipped)
	}
	return stats, nil
}

func (i *Importer) processRecord(ctx context.Context, externalID string, raw json.RawMessage, stats *ImportStats) bool {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		_, _ = fmt.Fprintf(i.stderr, "Error in data for exercise %s: %s\n", externalID, err)
		return false
	}

	exercise, err := rec.Exercise()
	if err != nil {
		_, _ = fmt.Fprintf(i.stderr, "Error in data for exercise %s: %s\n", externalID, err)
		return false
	}

	stored, err := i.repo.Upsert(ctx, exercise)
	if err != nil {
		_, _ = fmt.Fprintf(i.stderr, "Database error while processing exercise %s: %s\n", externalID, err)
		return false
	}

	if rec.Thumbnail != "" && stored.SmallImage == nil {
		if i.fetchImage(ctx, stored.ID, externalID, rec.Thumbnail, ImageSmall) {
			stats.Images++
		}
	}
	if rec.WebFeatureImage != "" && stored.LargeImage == nil {
		if i.fetchImage(ctx, stored.ID, externalID, rec.WebFeatureImage, ImageLarge) {
			stats.Images++
		}
	}

	_, _ = fmt.Fprintf(i.stdout, "Successfully processed exercise %s\n", externalID)
	return true
}

func (i *Importer) fetchImage(ctx context.Context, exerciseID uuid.UUID, externalID, url string, variant ImageVariant) bool {
	field := string(variant) + "_image"
	if err := i.downloadImage(ctx, exerciseID, externalID, url, variant); err != nil {
		_, _ = fmt.Fprintf(i.stderr, "Error downloading %s for exercise %s: %s\n", field, externalID, err)
		return false
	}
	_, _ = fmt.Fprintf(i.stdout, "Downloaded and saved %s for exercise %s\n", field, externalID)
	return true
}

func (i *Importer) downloadImage(ctx context.Context, exerciseID uuid.UUID, externalID, url string, variant ImageVariant) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := i.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	key := ImageKey(externalID, variant)
	if err := i.images.Save(ctx, key, resp.Body); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	if err := i.repo.SetImage(ctx, exerciseID, variant, key); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	return nil
}
