// Package artifact persists the fitted pipeline and the training reports.
package artifact

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yourusername/housing-predictor/internal/models"
	"github.com/yourusername/housing-predictor/internal/pipeline"
)

const formatVersion = 1

var (
	// ErrModelNotFound is returned when no artifact exists at the model path.
	ErrModelNotFound = errors.New("model artifact not found")
	// ErrMetricsNotFound is returned when no metrics record exists.
	ErrMetricsNotFound = errors.New("metrics record not found")
	// ErrIncompatibleArtifact is returned for artifacts written by another format version.
	ErrIncompatibleArtifact = errors.New("incompatible model artifact")
	// ErrStaleMetrics is returned when the model was replaced but its
	// metrics record could not be; metrics.json then describes the previous run.
	ErrStaleMetrics = errors.New("model replaced but metrics record is stale")
)

// Bundle is the on-disk envelope of a fitted pipeline.
type Bundle struct {
	FormatVersion int
	RunID         string
	CreatedAt     time.Time
	Pipeline      *pipeline.Pipeline
}

// Store reads and writes artifacts at fixed paths.
type Store struct {
	modelPath   string
	metricsPath string
}

// NewStore creates a store for the given artifact locations.
func NewStore(modelPath, metricsPath string) *Store {
	return &Store{modelPath: modelPath, metricsPath: metricsPath}
}

// ModelPath is where the pipeline lives.
func (s *Store) ModelPath() string { return s.modelPath }

// Save overwrites the model artifact atomically.
func (s *Store) Save(p *pipeline.Pipeline, runID string) error {
	data, err := encodePipeline(p, runID)
	if err != nil {
		return err
	}
	if err := WriteFile(s.modelPath, data); err != nil {
		return fmt.Errorf("failed to save pipeline: %w", err)
	}
	return nil
}

// SaveRun writes the model and its metrics record as a pair. Both are
// fully written to temp files before either is renamed into place, so an
// encode or write failure leaves the previous pair untouched. Only a failed
// final rename of the metrics file can split them; that returns ErrStaleMetrics.
func (s *Store) SaveRun(p *pipeline.Pipeline, record models.MetricsRecord) error {
	model, err := encodePipeline(p, record.RunID)
	if err != nil {
		return err
	}
	metrics, err := encodeMetrics(record)
	if err != nil {
		return err
	}

	modelTmp, err := stageFile(s.modelPath, model)
	if err != nil {
		return fmt.Errorf("failed to save pipeline: %w", err)
	}
	metricsTmp, err := stageFile(s.metricsPath, metrics)
	if err != nil {
		os.Remove(modelTmp)
		return fmt.Errorf("failed to save metrics: %w", err)
	}

	if err := os.Rename(modelTmp, s.modelPath); err != nil {
		os.Remove(modelTmp)
		os.Remove(metricsTmp)
		return fmt.Errorf("failed to save pipeline: %w", err)
	}
	if err := os.Rename(metricsTmp, s.metricsPath); err != nil {
		os.Remove(metricsTmp)
		return fmt.Errorf("%w: %v", ErrStaleMetrics, err)
	}
	return nil
}

func encodePipeline(p *pipeline.Pipeline, runID string) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("refusing to save nil pipeline")
	}
	var buf bytes.Buffer
	bundle := Bundle{FormatVersion: formatVersion, RunID: runID, CreatedAt: time.Now().UTC(), Pipeline: p}
	if err := gob.NewEncoder(&buf).Encode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to encode pipeline: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeMetrics(record models.MetricsRecord) ([]byte, error) {
	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode metrics: %w", err)
	}
	return append(data, '\n'), nil
}

// Load reads the model artifact.
func (s *Store) Load() (*pipeline.Pipeline, error) {
	bundle, err := s.LoadBundle()
	if err != nil {
		return nil, err
	}
	return bundle.Pipeline, nil
}

// LoadBundle reads the artifact together with its metadata.
func (s *Store) LoadBundle() (*Bundle, error) {
	file, err := os.Open(s.modelPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrModelNotFound, s.modelPath)
		}
		return nil, fmt.Errorf("failed to open pipeline: %w", err)
	}
	defer file.Close()

	var bundle Bundle
	if err := gob.NewDecoder(file).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline: %w", err)
	}
	if bundle.FormatVersion != formatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrIncompatibleArtifact, bundle.FormatVersion)
	}
	if bundle.Pipeline == nil || len(bundle.Pipeline.Stages) == 0 {
		return nil, fmt.Errorf("%w: empty pipeline", ErrIncompatibleArtifact)
	}
	return &bundle, nil
}

// SaveMetrics overwrites the metrics record atomically.
func (s *Store) SaveMetrics(record models.MetricsRecord) error {
	data, err := encodeMetrics(record)
	if err != nil {
		return err
	}
	if err := WriteFile(s.metricsPath, data); err != nil {
		return fmt.Errorf("failed to save metrics: %w", err)
	}
	return nil
}

// LoadMetrics reads the last metrics record.
func (s *Store) LoadMetrics() (*models.MetricsRecord, error) {
	data, err := os.ReadFile(s.metricsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrMetricsNotFound
		}
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}
	var record models.MetricsRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode metrics: %w", err)
	}
	return &record, nil
}

// WriteFile replaces path with data via a synced temp file in the same
// directory, so readers see either the old or the new content.
func WriteFile(path string, data []byte) error {
	tmpName, err := stageFile(path, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// stageFile writes data to a synced temp file next to path and returns its name.
func stageFile(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	fail := func(err error) (string, error) {
		os.Remove(tmpName)
		return "", err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fail(err)
	}
	return tmpName, nil
}
