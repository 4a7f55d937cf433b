// Package search validates queries, loads cached analysis records, and runs
// the segment matcher over them.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/clipseek/clipseek/internal/errors"
	"github.com/clipseek/clipseek/internal/matcher"
	"github.com/clipseek/clipseek/internal/model"
)

// Store is the slice of the analysis record store the search service needs
type Store interface {
	GetSpeechAnalysis(ctx context.Context, videoPath string) (*model.SpeechAnalysisResult, error)
	GetVisualAnalysis(ctx context.Context, videoPath string) (*model.VisualAnalysisResult, error)
}

// Service finds matching segments in previously analyzed videos
type Service interface {
	Find(ctx context.Context, videoPath string, query string, opts matcher.Options) ([]model.FoundSegment, error)
}

// service implements Service
type service struct {
	store Store
}

// NewService creates a search Service
func NewService(store Store) Service {
	return &service{store: store}
}

// Find resolves query into ranked segments for the video. Malformed input is
// rejected before any store access; a requested source with no cached
// analysis at all yields a not-found error telling the caller to analyze
// first, rather than a silently empty result.
func (s *service) Find(ctx context.Context, videoPath string, query string, opts matcher.Options) ([]model.FoundSegment, error) {
	if videoPath == "" {
		return nil, errors.New(errors.CodeInvalidArg, "video path is required")
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New(errors.CodeInvalidArg, "query is required")
	}
	if opts.SearchType == "" {
		opts.SearchType = matcher.SearchBoth
	}
	switch opts.SearchType {
	case matcher.SearchSpeech, matcher.SearchVisual, matcher.SearchBoth:
	default:
		return nil, errors.New(errors.CodeInvalidArg,
			fmt.Sprintf("invalid search type %q: must be speech, visual, or both", opts.SearchType))
	}

	var speech *model.SpeechAnalysisResult
	var visual *model.VisualAnalysisResult
	var err error

	if opts.SearchType == matcher.SearchSpeech || opts.SearchType == matcher.SearchBoth {
		speech, err = s.store.GetSpeechAnalysis(ctx, videoPath)
		if err != nil {
			return nil, err
		}
	}
	if opts.SearchType == matcher.SearchVisual || opts.SearchType == matcher.SearchBoth {
		visual, err = s.store.GetVisualAnalysis(ctx, videoPath)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case opts.SearchType == matcher.SearchSpeech && speech == nil:
		return nil, errors.New(errors.CodeNotFound,
			fmt.Sprintf("no speech analysis found for %s: run speech analysis first", videoPath))
	case opts.SearchType == matcher.SearchVisual && visual == nil:
		return nil, errors.New(errors.CodeNotFound,
			fmt.Sprintf("no visual analysis found for %s: run visual analysis first", videoPath))
	case opts.SearchType == matcher.SearchBoth && speech == nil && visual == nil:
		return nil, errors.New(errors.CodeNotFound,
			fmt.Sprintf("no analysis found for %s: run speech or visual analysis first", videoPath))
	}

	return matcher.Find(query, speech, visual, opts), nil
}
