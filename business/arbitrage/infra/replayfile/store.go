// Package replayfile persists routes as JSON files between scan cycles.
package replayfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fd1az/solarb/business/arbitrage/app"
	"github.com/fd1az/solarb/internal/apperror"
	"github.com/fd1az/solarb/internal/logger"
)

// Config holds replay store configuration.
type Config struct {
	BestPathFile string
	TemplateFile string
}

// DefaultConfig returns file locations under dir.
func DefaultConfig(dir string) Config {
	return Config{
		BestPathFile: filepath.Join(dir, "best_path.json"),
		TemplateFile: filepath.Join(dir, "template.json"),
	}
}

// Store implements app.ReplayStore on the local filesystem.
type Store struct {
	cfg Config
	mu  sync.Mutex
	log logger.LoggerInterface
}

// NewStore creates a file-backed replay store.
func NewStore(cfg Config, log logger.LoggerInterface) *Store {
	return &Store{cfg: cfg, log: log}
}

// LoadBestPath implements app.ReplayStore.
func (s *Store) LoadBestPath(_ context.Context) (app.PersistedPath, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p app.PersistedPath
	if err := s.read(s.cfg.BestPathFile, &p); err != nil {
		return app.PersistedPath{}, err
	}
	if len(p.Hops) == 0 {
		return app.PersistedPath{}, apperror.New(apperror.CodeReplayInputInvalid,
			apperror.WithContext(s.cfg.BestPathFile))
	}
	return p, nil
}

// SaveBestPath implements app.ReplayStore. The write is atomic: a crash mid
// save never leaves a truncated file behind.
func (s *Store) SaveBestPath(_ context.Context, p app.PersistedPath) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(s.cfg.BestPathFile, p)
}

// LoadTemplate implements app.ReplayStore.
func (s *Store) LoadTemplate(_ context.Context) (app.PersistedTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t app.PersistedTemplate
	if err := s.read(s.cfg.TemplateFile, &t); err != nil {
		return app.PersistedTemplate{}, err
	}
	if len(t.Hops) == 0 {
		return app.PersistedTemplate{}, apperror.New(apperror.CodeReplayInputInvalid,
			apperror.WithContext(s.cfg.TemplateFile))
	}
	return t, nil
}

func (s *Store) read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperror.New(apperror.CodeReplayInputMissing,
				apperror.WithContext(path))
		}
		return apperror.Wrap(err, apperror.CodeReplayInputMissing,
			apperror.WithContext(path))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperror.Wrap(err, apperror.CodeReplayInputInvalid,
			apperror.WithContext(path))
	}
	return nil
}

func (s *Store) write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInvalidFormat,
			apperror.WithContext(path))
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError,
			apperror.WithContext(tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError,
			apperror.WithContext(path))
	}
	return nil
}
