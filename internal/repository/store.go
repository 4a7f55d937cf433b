// Package repository provides the analysis record store: typed, keyed
// persistence for speech analyses, visual analyses, and per-analysis status
// records backed by PostgreSQL.
package repository

import (
	"context"
	"sync"

	apperrors "github.com/clipseek/clipseek/internal/errors"
	"github.com/clipseek/clipseek/internal/model"
	"github.com/clipseek/clipseek/internal/repository/common"
	"github.com/clipseek/clipseek/internal/repository/speech"
	"github.com/clipseek/clipseek/internal/repository/status"
	"github.com/clipseek/clipseek/internal/repository/visual"
)

// Store is the single shared handle to analysis persistence. It must be
// opened exactly once before use; operations on an unopened store fail with
// a configuration error. Open is idempotent and Close releases the pool.
//
// Every operation is a single atomic read or upsert, so readers never
// observe partially written records.
type Store struct {
	mu     sync.RWMutex
	pool   common.Pool
	speech speech.Repository
	visual visual.Repository
	status status.Repository
}

// NewStore creates an unopened Store
func NewStore() *Store {
	return &Store{}
}

// Open attaches the store to a connection pool. Calling Open on an already
// open store is a no-op.
func (s *Store) Open(pool common.Pool) error {
	if pool == nil {
		return apperrors.New(apperrors.CodeConfig, "store requires a connection pool")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		return nil
	}

	s.pool = pool
	s.speech = speech.NewRepository(pool)
	s.visual = visual.NewRepository(pool)
	s.status = status.NewRepository(pool)
	return nil
}

// Close releases the connection pool. Safe to call on an unopened store.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
		s.speech = nil
		s.visual = nil
		s.status = nil
	}
}

func (s *Store) guard() error {
	if s.pool == nil {
		return apperrors.New(apperrors.CodeConfig, "store is not initialized: call Open before use")
	}
	return nil
}

// GetSpeechAnalysis returns the latest speech record for a video path, or
// nil when none exists.
func (s *Store) GetSpeechAnalysis(ctx context.Context, videoPath string) (*model.SpeechAnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.speech.GetLatestByVideoPath(ctx, videoPath)
}

// GetSpeechAnalysisByID returns a speech record by analysis id, or nil when absent
func (s *Store) GetSpeechAnalysisByID(ctx context.Context, analysisID string) (*model.SpeechAnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.speech.GetByID(ctx, analysisID)
}

// SaveSpeechAnalysis upserts a speech record keyed by analysis id
func (s *Store) SaveSpeechAnalysis(ctx context.Context, result *model.SpeechAnalysisResult) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return err
	}
	return s.speech.Save(ctx, result)
}

// GetVisualAnalysis returns the latest visual record for a video path, or
// nil when none exists.
func (s *Store) GetVisualAnalysis(ctx context.Context, videoPath string) (*model.VisualAnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.visual.GetLatestByVideoPath(ctx, videoPath)
}

// GetVisualAnalysisByID returns a visual record by analysis id, or nil when absent
func (s *Store) GetVisualAnalysisByID(ctx context.Context, analysisID string) (*model.VisualAnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.visual.GetByID(ctx, analysisID)
}

// SaveVisualAnalysis upserts a visual record keyed by analysis id
func (s *Store) SaveVisualAnalysis(ctx context.Context, result *model.VisualAnalysisResult) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return err
	}
	return s.visual.Save(ctx, result)
}

// GetAnalysisStatus returns the status record for an analysis id, or nil when absent
func (s *Store) GetAnalysisStatus(ctx context.Context, analysisID string) (*model.AnalysisStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.status.GetByID(ctx, analysisID)
}

// GetAnalysisStatusByVideo returns all status records for a video path,
// most recently started first.
func (s *Store) GetAnalysisStatusByVideo(ctx context.Context, videoPath string) ([]*model.AnalysisStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.status.ListByVideoPath(ctx, videoPath)
}

// UpdateAnalysisStatus upserts a status record keyed by analysis id
func (s *Store) UpdateAnalysisStatus(ctx context.Context, st *model.AnalysisStatus) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return err
	}
	return s.status.Upsert(ctx, st)
}
