package matcher

import (
	"testing"

	"github.com/clipseek/clipseek/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func speechFixture(segments []model.TranscriptSegment, words []model.WordTimestamp) *model.SpeechAnalysisResult {
	return &model.SpeechAnalysisResult{
		AnalysisID: "speech-1",
		VideoPath:  "/videos/demo.mp4",
		Duration:   120,
		Language:   "en",
		Segments:   segments,
		Words:      words,
	}
}

func visualFixture(fps float64, frames []model.FrameAnalysis) *model.VisualAnalysisResult {
	return &model.VisualAnalysisResult{
		AnalysisID:     "visual-1",
		VideoPath:      "/videos/demo.mp4",
		Duration:       120,
		FPS:            fps,
		FramesAnalyzed: len(frames),
		Frames:         frames,
	}
}

func TestFind_SegmentHit(t *testing.T) {
	speech := speechFixture([]model.TranscriptSegment{
		{ID: 0, Start: 0, End: 5, Text: "we launched the product today"},
	}, nil)

	results := Find("product", speech, nil, Options{SearchType: SearchSpeech, ExpandBy: 0.5})

	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Start) // floored at 0
	assert.Equal(t, 5.5, results[0].End)
	assert.Equal(t, model.AnalysisTypeSpeech, results[0].MatchType)
	assert.Equal(t, 1.0, results[0].Confidence)
	assert.Equal(t, "we launched the product today", results[0].MatchedContent)
}

func TestFind_SegmentHitCoversExpandedSpan(t *testing.T) {
	speech := speechFixture([]model.TranscriptSegment{
		{ID: 0, Start: 10, End: 14, Text: "the quick brown fox"},
	}, nil)

	results := Find("fox", speech, nil, Options{SearchType: SearchSpeech, ExpandBy: 2})

	require.Len(t, results, 1)
	assert.Equal(t, 8.0, results[0].Start)
	assert.Equal(t, 16.0, results[0].End)
	assert.Equal(t, results[0].End-results[0].Start, results[0].Duration)
}

func TestFind_SegmentContext(t *testing.T) {
	segments := []model.TranscriptSegment{
		{ID: 0, Start: 0, End: 4, Text: "intro part"},
		{ID: 1, Start: 4, End: 8, Text: "the demo begins"},
		{ID: 2, Start: 8, End: 12, Text: "closing remarks"},
	}
	tests := []struct {
		name        string
		query       string
		wantContext string
	}{
		{"middle segment gets both neighbors", "demo", "intro part the demo begins closing remarks"},
		{"first segment clamps left", "intro", "intro part the demo begins"},
		{"last segment clamps right", "closing", "the demo begins closing remarks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Segments are far enough apart not to merge away the context
			results := Find(tt.query, speechFixture(segments, nil), nil, Options{SearchType: SearchSpeech})
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantContext, results[0].Context)
		})
	}
}

func TestFind_WordHit(t *testing.T) {
	speech := speechFixture(
		[]model.TranscriptSegment{{ID: 0, Start: 0, End: 10, Text: "we shipped the feature"}},
		[]model.WordTimestamp{{Word: "shipped", Start: 1.0, End: 1.4, Confidence: 0.93}},
	)

	// Disjoint query spans would merge; use a word-only query with a
	// min duration low enough to keep the narrow candidate
	results := Find("shipped", speech, nil, Options{SearchType: SearchSpeech, MinDuration: 0.1, ExpandBy: 0.5})

	require.Len(t, results, 1)
	// Segment hit and word hit overlap, so they merged; confidence is the max
	assert.Equal(t, 1.0, results[0].Confidence)
	assert.Contains(t, results[0].MatchedContent, "we shipped the feature")
	assert.Contains(t, results[0].MatchedContent, "shipped")
}

func TestFind_WordHitContextFromContainingSegment(t *testing.T) {
	speech := speechFixture(
		[]model.TranscriptSegment{
			{ID: 0, Start: 0, End: 5, Text: "first part"},
			{ID: 1, Start: 20, End: 30, Text: "velocity matters here"},
		},
		[]model.WordTimestamp{{Word: "velocity", Start: 21, End: 21.5, Confidence: 0.8}},
	)

	results := Find("velocity", speech, nil, Options{SearchType: SearchSpeech})
	require.Len(t, results, 1)

	// Word and segment candidates merge; the earliest (segment) context wins,
	// and the word's own context would have been the containing segment text
	assert.Contains(t, results[0].Context, "velocity matters here")
}

func TestFind_WordWithoutContainingSegment(t *testing.T) {
	speech := speechFixture(
		[]model.TranscriptSegment{{ID: 0, Start: 0, End: 5, Text: "unrelated"}},
		[]model.WordTimestamp{{Word: "orphan", Start: 50, End: 50.4, Confidence: 0.7}},
	)

	results := Find("orphan", speech, nil, Options{SearchType: SearchSpeech, MinDuration: 0.1})
	require.Len(t, results, 1)
	assert.Equal(t, "", results[0].Context)
	assert.Equal(t, 0.7, results[0].Confidence)
}

func TestFind_CaseSensitivity(t *testing.T) {
	speech := speechFixture([]model.TranscriptSegment{
		{ID: 0, Start: 0, End: 5, Text: "The Product Launch"},
	}, nil)

	insensitive := Find("product", speech, nil, Options{SearchType: SearchSpeech})
	assert.Len(t, insensitive, 1)

	sensitive := Find("product", speech, nil, Options{SearchType: SearchSpeech, CaseSensitive: true})
	assert.Empty(t, sensitive)

	exact := Find("Product", speech, nil, Options{SearchType: SearchSpeech, CaseSensitive: true})
	assert.Len(t, exact, 1)
}

func TestFind_VisualFrameHit(t *testing.T) {
	visual := visualFixture(1, []model.FrameAnalysis{
		{Timestamp: 10, Description: "red car in driveway", Objects: []string{"car", "driveway"}, Scene: "outdoor"},
	})

	results := Find("car", nil, visual, Options{SearchType: SearchVisual, ExpandBy: 0.5})

	require.Len(t, results, 1)
	assert.Equal(t, 9.5, results[0].Start)
	assert.Equal(t, 11.5, results[0].End) // timestamp + 1/fps + expand
	assert.Equal(t, model.AnalysisTypeVisual, results[0].MatchType)
	assert.Equal(t, 0.8, results[0].Confidence)
	assert.Equal(t, "red car in driveway", results[0].MatchedContent)
	assert.Equal(t, "Scene: outdoor, Objects: car, driveway", results[0].Context)
}

func TestFind_VisualMatchesSceneAndObjects(t *testing.T) {
	visual := visualFixture(2, []model.FrameAnalysis{
		{Timestamp: 5, Description: "two people talking", Objects: []string{"person", "desk"}, Scene: "office interior"},
	})

	assert.Len(t, Find("office", nil, visual, Options{SearchType: SearchVisual}), 1)
	assert.Len(t, Find("desk", nil, visual, Options{SearchType: SearchVisual}), 1)
	assert.Empty(t, Find("beach", nil, visual, Options{SearchType: SearchVisual}))
}

func TestFind_MinDurationFilter(t *testing.T) {
	speech := speechFixture(
		nil,
		[]model.WordTimestamp{{Word: "brief", Start: 1.1, End: 1.3, Confidence: 0.9}},
	)

	// Candidate spans 1.0–1.4 after expansion by 0.1: duration 0.4 < 2
	results := Find("brief", speech, nil, Options{SearchType: SearchSpeech, MinDuration: 2, ExpandBy: 0.1})
	assert.Empty(t, results)
}

func TestFind_MissingSourcesContributeNothing(t *testing.T) {
	assert.Empty(t, Find("anything", nil, nil, Options{SearchType: SearchBoth}))

	speech := speechFixture([]model.TranscriptSegment{
		{ID: 0, Start: 0, End: 5, Text: "hello world"},
	}, nil)
	results := Find("hello", speech, nil, Options{SearchType: SearchBoth})
	assert.Len(t, results, 1)

	// Speech-only search ignores visual data entirely
	visual := visualFixture(1, []model.FrameAnalysis{{Timestamp: 3, Description: "hello sign"}})
	results = Find("hello", nil, visual, Options{SearchType: SearchSpeech})
	assert.Empty(t, results)
}

func TestFind_EmptyQuery(t *testing.T) {
	speech := speechFixture([]model.TranscriptSegment{{ID: 0, Start: 0, End: 5, Text: "text"}}, nil)
	assert.Empty(t, Find("", speech, nil, Options{}))
	assert.Empty(t, Find("   ", speech, nil, Options{}))
}

func TestFind_MaxResultsTruncates(t *testing.T) {
	var segments []model.TranscriptSegment
	for i := 0; i < 8; i++ {
		// 10s apart so nothing merges
		segments = append(segments, model.TranscriptSegment{
			ID: i, Start: float64(i * 10), End: float64(i*10 + 3), Text: "repeated keyword here",
		})
	}

	results := Find("keyword", speechFixture(segments, nil), nil, Options{SearchType: SearchSpeech, MaxResults: 3})
	assert.Len(t, results, 3)
}

func TestFind_RankedByConfidenceDescending(t *testing.T) {
	speech := speechFixture(
		[]model.TranscriptSegment{{ID: 0, Start: 50, End: 55, Text: "target phrase"}},
		[]model.WordTimestamp{{Word: "target", Start: 10, End: 11, Confidence: 0.6}},
	)

	results := Find("target", speech, nil, Options{SearchType: SearchSpeech})
	require.Len(t, results, 2)
	assert.Equal(t, 1.0, results[0].Confidence)
	assert.Equal(t, 0.6, results[1].Confidence)
}

func TestFind_MixedTypeMergeKeepsSpeechLabel(t *testing.T) {
	speech := speechFixture([]model.TranscriptSegment{
		{ID: 0, Start: 9, End: 12, Text: "the car engine roars"},
	}, nil)
	visual := visualFixture(1, []model.FrameAnalysis{
		{Timestamp: 10, Description: "red car in driveway", Objects: []string{"car"}, Scene: "outdoor"},
	})

	results := Find("car", speech, visual, Options{SearchType: SearchBoth})

	require.Len(t, results, 1)
	assert.Equal(t, model.AnalysisTypeSpeech, results[0].MatchType)
	assert.Equal(t, 1.0, results[0].Confidence) // max of 1.0 and 0.8
	assert.Contains(t, results[0].MatchedContent, " | ")
}

func TestFind_DurationAlwaysEndMinusStart(t *testing.T) {
	speech := speechFixture(
		[]model.TranscriptSegment{
			{ID: 0, Start: 2, End: 6, Text: "alpha beta"},
			{ID: 1, Start: 5, End: 9, Text: "beta gamma"},
		},
		[]model.WordTimestamp{{Word: "beta", Start: 5.5, End: 5.9, Confidence: 0.95}},
	)
	visual := visualFixture(1, []model.FrameAnalysis{
		{Timestamp: 30, Description: "beta site logo", Scene: "screen"},
	})

	results := Find("beta", speech, visual, Options{SearchType: SearchBoth})
	require.NotEmpty(t, results)
	for _, seg := range results {
		assert.InDelta(t, seg.End-seg.Start, seg.Duration, 1e-9)
		assert.GreaterOrEqual(t, seg.Start, 0.0)
		assert.Greater(t, seg.End, seg.Start)
	}
}

func TestMergeOverlapping_TwoOverlapping(t *testing.T) {
	merged := MergeOverlapping([]model.FoundSegment{
		{Start: 2, End: 6, Duration: 4, MatchType: "speech", MatchedContent: "a", Confidence: 0.9, Context: "ctx-a"},
		{Start: 5, End: 9, Duration: 4, MatchType: "speech", MatchedContent: "b", Confidence: 0.7, Context: "ctx-b"},
	})

	require.Len(t, merged, 1)
	assert.Equal(t, 2.0, merged[0].Start)
	assert.Equal(t, 9.0, merged[0].End)
	assert.Equal(t, 7.0, merged[0].Duration)
	assert.Equal(t, "a | b", merged[0].MatchedContent)
	assert.Equal(t, 0.9, merged[0].Confidence)
	assert.Equal(t, "ctx-a", merged[0].Context) // earliest context wins
}

func TestMergeOverlapping_TouchingCountsAsOverlap(t *testing.T) {
	merged := MergeOverlapping([]model.FoundSegment{
		{Start: 0, End: 5, Duration: 5, MatchType: "speech", MatchedContent: "a", Confidence: 1},
		{Start: 5, End: 8, Duration: 3, MatchType: "speech", MatchedContent: "b", Confidence: 1},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, 8.0, merged[0].End)
}

func TestMergeOverlapping_ContainedCandidateKeepsAccumulatorEnd(t *testing.T) {
	merged := MergeOverlapping([]model.FoundSegment{
		{Start: 0, End: 10, Duration: 10, MatchType: "speech", MatchedContent: "outer", Confidence: 0.5},
		{Start: 2, End: 4, Duration: 2, MatchType: "speech", MatchedContent: "inner", Confidence: 0.9},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, 10.0, merged[0].End)
	assert.Equal(t, 0.9, merged[0].Confidence)
}

func TestMergeOverlapping_NoRemainingOverlaps(t *testing.T) {
	input := []model.FoundSegment{
		{Start: 12, End: 15, Duration: 3, MatchType: "visual", MatchedContent: "d", Confidence: 0.8},
		{Start: 0, End: 3, Duration: 3, MatchType: "speech", MatchedContent: "a", Confidence: 1},
		{Start: 2, End: 6, Duration: 4, MatchType: "visual", MatchedContent: "b", Confidence: 0.8},
		{Start: 6.5, End: 9, Duration: 2.5, MatchType: "speech", MatchedContent: "c", Confidence: 0.9},
		{Start: 14, End: 20, Duration: 6, MatchType: "visual", MatchedContent: "e", Confidence: 0.8},
	}

	merged := MergeOverlapping(input)

	require.Len(t, merged, 3)
	for i := 0; i < len(merged)-1; i++ {
		assert.Less(t, merged[i].End, merged[i+1].Start, "merged segments must not overlap")
	}
}

func TestMergeOverlapping_Idempotent(t *testing.T) {
	input := []model.FoundSegment{
		{Start: 0, End: 3, Duration: 3, MatchType: "speech", MatchedContent: "a", Confidence: 1},
		{Start: 2, End: 6, Duration: 4, MatchType: "visual", MatchedContent: "b", Confidence: 0.8},
		{Start: 10, End: 12, Duration: 2, MatchType: "visual", MatchedContent: "c", Confidence: 0.8},
	}

	once := MergeOverlapping(input)
	twice := MergeOverlapping(once)
	assert.Equal(t, once, twice)
}

func TestMergeOverlapping_Empty(t *testing.T) {
	assert.Nil(t, MergeOverlapping(nil))
	assert.Nil(t, MergeOverlapping([]model.FoundSegment{}))
}

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, SearchBoth, opts.SearchType)
	assert.Equal(t, 10, opts.MaxResults)
	assert.Equal(t, 1.0, opts.MinDuration)
	assert.Equal(t, 0.5, opts.ExpandBy)
	assert.False(t, opts.CaseSensitive)

	// Non-positive means unset: an explicit zero coerces too
	zeroed := Options{MaxResults: -1, MinDuration: 0, ExpandBy: 0}.withDefaults()
	assert.Equal(t, 10, zeroed.MaxResults)
	assert.Equal(t, 1.0, zeroed.MinDuration)
	assert.Equal(t, 0.5, zeroed.ExpandBy)
}
