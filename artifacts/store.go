// Package artifacts generates and holds the derived files for a summary:
// audio narration, a PDF, and a DOCX. Files are request-scoped: they live in
// a per-job directory under the temp root and are removed on failure, after
// download, or by the janitor once the TTL passes.
package artifacts

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"tubebrief/errors"
)

type Store struct {
	root   string
	logger zerolog.Logger
}

func NewStore(root string, log zerolog.Logger) (*Store, error) {
	const op = "artifacts.NewStore"

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Internal(op, err, "Failed to create artifact root")
	}

	return &Store{
		root:   root,
		logger: log.With().Str("component", "artifacts").Logger(),
	}, nil
}

// Dir returns the per-job directory, creating it if needed.
func (s *Store) Dir(jobID string) (string, error) {
	const op = "artifacts.Dir"

	dir := filepath.Join(s.root, jobID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Internal(op, err, "Failed to create artifact directory")
	}
	return dir, nil
}

// Path resolves a file inside a job's directory without creating anything.
func (s *Store) Path(jobID, name string) string {
	return filepath.Join(s.root, jobID, name)
}

// Exists reports whether a named artifact is present and non-empty.
func (s *Store) Exists(jobID, name string) bool {
	info, err := os.Stat(s.Path(jobID, name))
	return err == nil && info.Size() > 0
}

// Remove deletes a job's directory and everything in it. Used on every
// failure path so no ephemeral file outlives its request.
func (s *Store) Remove(jobID string) {
	dir := filepath.Join(s.root, jobID)
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn().Err(err).Str("job_id", jobID).Msg("Failed to remove artifact directory")
	}
}

// Sweep removes job directories whose newest file is older than ttl. The
// janitor calls this periodically so downloads that never happen don't
// accumulate.
func (s *Store) Sweep(ttl time.Duration) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Artifact sweep failed to read root")
		return
	}

	cutoff := time.Now().Add(-ttl)
	removed := 0

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			s.logger.Warn().Err(err).Str("job_id", e.Name()).Msg("Artifact sweep failed to remove directory")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Swept expired artifact directories")
	}
}
