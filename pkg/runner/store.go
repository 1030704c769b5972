// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/xataio/sandbench/pkg/history"
	"github.com/xataio/sandbench/pkg/measurement"
	"github.com/xataio/sandbench/pkg/results"
)

// Store holds the historical results a run is compared against.
type Store interface {
	Load(ctx context.Context) (measurement.Results, error)
	Save(ctx context.Context, r measurement.Results) error
	String() string
}

// FileStore keeps results in a YAML results file.
type FileStore struct {
	Path    string
	Version string
}

func (s *FileStore) Load(ctx context.Context) (measurement.Results, error) {
	return results.Read(s.Path, s.Version)
}

func (s *FileStore) Save(ctx context.Context, r measurement.Results) error {
	return results.Write(s.Path, s.Version, r)
}

func (s *FileStore) String() string {
	return s.Path
}

// HistoryStore keeps results in the Postgres history store. Load compares
// against the most recent run; Save pushes a new run.
type HistoryStore struct {
	Store   *history.Store
	GitSHA  string
	Version string
}

func (s *HistoryStore) Load(ctx context.Context) (measurement.Results, error) {
	run, r, err := s.Store.Latest(ctx)
	if errors.Is(err, history.ErrNoRuns) {
		return measurement.Results{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest run: %w", err)
	}

	if err := results.CheckVersion(run.Version, s.Version); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *HistoryStore) Save(ctx context.Context, r measurement.Results) error {
	if _, err := s.Store.Push(ctx, s.GitSHA, s.Version, r); err != nil {
		return fmt.Errorf("pushing run: %w", err)
	}
	return nil
}

func (s *HistoryStore) String() string {
	return "postgres schema " + s.Store.Schema()
}
