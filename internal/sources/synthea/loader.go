// Package synthea loads Synthea-generated FHIR bundles from a local
// directory, one JSON file per patient. Used for demos and local development
// where no bundle store is provisioned.
package synthea

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ako1983/public-ai-engineering-interview/internal/emr"
	"github.com/ako1983/public-ai-engineering-interview/internal/fhir/r4"
	"github.com/ako1983/public-ai-engineering-interview/internal/sources"
)

// FileStore serves bundles from a directory of Synthea output files.
// Satisfies sources.BundleSource.
type FileStore struct {
	dir    string
	logger *zap.Logger

	// patient ID -> file path, built once at startup
	byPatient map[string]string
}

// NewFileStore scans dir and indexes each bundle by its patient ID
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle directory: %w", err)
	}

	store := &FileStore{
		dir:       dir,
		logger:    logger,
		byPatient: make(map[string]string),
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable bundle file",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}

		bundle, err := r4.ParseBundle(raw)
		if err != nil {
			logger.Warn("skipping malformed bundle file",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}

		patientID := emr.BuildIndex(bundle).PatientID()
		if patientID == "" {
			logger.Warn("skipping bundle without a patient",
				zap.String("file", entry.Name()))
			continue
		}

		store.byPatient[patientID] = path
	}

	logger.Info("synthea bundles indexed",
		zap.String("dir", dir),
		zap.Int("patients", len(store.byPatient)))

	return store, nil
}

// Bundle returns the raw bundle document for a patient
func (s *FileStore) Bundle(ctx context.Context, patientID string) ([]byte, error) {
	path, ok := s.byPatient[patientID]
	if !ok {
		return nil, sources.ErrNotFound
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	return raw, nil
}

// Patients returns the indexed patient IDs
func (s *FileStore) Patients() []string {
	ids := make([]string, 0, len(s.byPatient))
	for id := range s.byPatient {
		ids = append(ids, id)
	}
	return ids
}
