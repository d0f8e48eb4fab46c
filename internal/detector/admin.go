package detector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"ai-detector/internal/common"
	"ai-detector/internal/ml"
	"ai-detector/internal/storage"
)

// Registry records trained model versions. *storage.Store implements it.
type Registry interface {
	UniqueVersion(base string) (string, error)
	AddVersion(v storage.ModelVersion, artifact []byte) (storage.ModelVersion, error)
	ActivateVersion(version string) error
	ActiveVersion() (*storage.ModelVersion, error)
	ListVersions() ([]storage.ModelVersion, error)
	Artifact(version string) ([]byte, error)
	Rollback() (*storage.ModelVersion, error)
}

// TrainResult describes a completed TrainAndPersist run.
type TrainResult struct {
	Model   *ml.Model
	Report  *ml.Report
	Path    string
	Version storage.ModelVersion
}

// Status summarizes the active scoring mode.
type Status struct {
	Source       string    `json:"source"`
	Trained      bool      `json:"trained"`
	ModelVersion string    `json:"model_version,omitempty"`
	ModelPath    string    `json:"model_path,omitempty"`
	LoadedAt     time.Time `json:"loaded_at,omitzero"`
	FeatureCount int       `json:"feature_count"`
	Registry     bool      `json:"registry"`
}

// LoadModel reads and activates the artifact at path. An empty path uses the
// configured model path. On failure the current state is kept.
func (s *Service) LoadModel(path string) (*ml.Model, error) {
	s.admin.Lock()
	defer s.admin.Unlock()

	if path == "" {
		path = s.modelPath
	}
	m, err := s.predictor.LoadFile(path)
	if err != nil {
		s.countError()
		return nil, err
	}
	return m, nil
}

// Restore activates the model file at the configured path, or the registry's
// active version when the file does not exist. Having neither leaves the
// service untrained and is not an error.
func (s *Service) Restore() error {
	s.admin.Lock()
	defer s.admin.Unlock()

	_, err := s.predictor.LoadFile(s.modelPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		s.countError()
		return err
	}
	if s.registry == nil {
		log.Info().Str("model_path", s.modelPath).Msg("No trained model found, using heuristic scorer")
		return nil
	}

	active, err := s.registry.ActiveVersion()
	if errors.Is(err, storage.ErrNoActiveVersion) {
		log.Info().Msg("Model registry has no active version, using heuristic scorer")
		return nil
	}
	if err != nil {
		s.countError()
		return fmt.Errorf("read active version: %w", err)
	}
	if err := s.activateFromRegistry(active.Version); err != nil {
		s.countError()
		return err
	}
	return nil
}

// TrainAndPersist trains a fresh model on corpus, saves it to path (the
// configured model path when empty), records it in the registry and only
// then publishes it. The artifact is staged next to path and moved into
// place after the registry accepted it, so a failed run leaves the file,
// the registry and the live model as they were.
func (s *Service) TrainAndPersist(ctx context.Context, corpus []ml.Sample, opts ml.TrainOptions, path string) (*TrainResult, error) {
	s.admin.Lock()
	defer s.admin.Unlock()

	if s.extractor == nil {
		return nil, fmt.Errorf("training requires a feature extractor")
	}
	if path == "" {
		path = s.modelPath
	}

	m, report, err := ml.Train(ctx, s.extractor, corpus, opts)
	if err != nil {
		s.countError()
		return nil, fmt.Errorf("train: %w", err)
	}

	if s.registry != nil {
		id, err := s.registry.UniqueVersion(m.Version)
		if err != nil {
			s.countError()
			return nil, fmt.Errorf("reserve version: %w", err)
		}
		m.Version = id
	}

	staged := stagingPath(path)
	if err := m.Save(staged); err != nil {
		s.countError()
		return nil, fmt.Errorf("save model: %w", err)
	}
	defer os.Remove(staged)

	result := &TrainResult{Model: m, Report: report, Path: path}

	var previous *storage.ModelVersion
	if s.registry != nil {
		v, prev, err := s.record(m, path, report)
		if err != nil {
			s.countError()
			return nil, err
		}
		result.Version = v
		previous = prev
	}

	if err := os.Rename(staged, path); err != nil {
		s.countError()
		if previous != nil {
			if restoreErr := s.registry.ActivateVersion(previous.Version); restoreErr != nil {
				log.Error().Err(restoreErr).Str("version", previous.Version).Msg("Failed to restore active version after failed save")
			}
		}
		return nil, fmt.Errorf("save model: %w", err)
	}

	s.predictor.Swap(m, path)
	if s.metrics != nil {
		s.metrics.ModelTrainingsInc()
	}

	log.Info().
		Str("version", m.Version).
		Str("model_path", path).
		Float64("test_accuracy", report.TestAccuracy).
		Float64("test_roc_auc", report.TestROCAUC).
		Msg("Model trained and activated")

	return result, nil
}

// record adds m to the registry and activates it. It returns the recorded
// version and the one that was active before, if any.
func (s *Service) record(m *ml.Model, path string, report *ml.Report) (storage.ModelVersion, *storage.ModelVersion, error) {
	previous, err := s.registry.ActiveVersion()
	if err != nil && !errors.Is(err, storage.ErrNoActiveVersion) {
		return storage.ModelVersion{}, nil, fmt.Errorf("read active version: %w", err)
	}

	artifact, err := m.Encode()
	if err != nil {
		return storage.ModelVersion{}, nil, err
	}
	v, err := s.registry.AddVersion(storage.ModelVersion{
		Version: m.Version,
		Path:    path,
		Report:  report,
	}, artifact)
	if err != nil {
		return storage.ModelVersion{}, nil, fmt.Errorf("record version: %w", err)
	}
	if err := s.registry.ActivateVersion(v.Version); err != nil {
		return storage.ModelVersion{}, nil, fmt.Errorf("activate version: %w", err)
	}
	v.IsActive = true
	return v, previous, nil
}

func stagingPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".staged")
}

// Rollback reactivates the registry version recorded before the active one,
// rewrites the model file with it and publishes it.
func (s *Service) Rollback() (*storage.ModelVersion, error) {
	s.admin.Lock()
	defer s.admin.Unlock()

	if s.registry == nil {
		return nil, ErrNoRegistry
	}

	current, err := s.registry.ActiveVersion()
	if err != nil {
		return nil, err
	}
	prev, err := s.registry.Rollback()
	if err != nil {
		return nil, err
	}

	if err := s.activateFromRegistry(prev.Version); err != nil {
		s.countError()
		if restoreErr := s.registry.ActivateVersion(current.Version); restoreErr != nil {
			log.Error().Err(restoreErr).Str("version", current.Version).Msg("Failed to restore active version after failed rollback")
		}
		return nil, fmt.Errorf("rollback to %s: %w", prev.Version, err)
	}

	log.Info().Str("from", current.Version).Str("to", prev.Version).Msg("Model rolled back")
	return prev, nil
}

// Versions lists the registry, newest first.
func (s *Service) Versions() ([]storage.ModelVersion, error) {
	s.admin.Lock()
	defer s.admin.Unlock()

	if s.registry == nil {
		return nil, ErrNoRegistry
	}
	return s.registry.ListVersions()
}

// Status reports the active scoring mode.
func (s *Service) Status() Status {
	s.admin.Lock()
	hasRegistry := s.registry != nil
	s.admin.Unlock()

	st := Status{Source: common.SourceHeuristic, Registry: hasRegistry}
	if a := s.predictor.Active(); a != nil {
		st.Source = common.SourceClassifier
		st.Trained = true
		st.ModelVersion = a.Model.Version
		st.ModelPath = a.Path
		st.LoadedAt = a.LoadedAt
		st.FeatureCount = len(a.Model.FeatureNames)
	}
	return st
}

// activateFromRegistry decodes a stored artifact, writes it to the model path
// and publishes it. Callers hold the admin lock.
func (s *Service) activateFromRegistry(version string) error {
	data, err := s.registry.Artifact(version)
	if err != nil {
		return err
	}
	m, err := ml.Decode(data)
	if err != nil {
		return err
	}
	if err := m.Save(s.modelPath); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	s.predictor.Swap(m, s.modelPath)
	return nil
}

func (s *Service) countError() {
	if s.metrics != nil {
		s.metrics.ErrorsInc()
	}
}
