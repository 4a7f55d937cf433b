// Package matcher resolves a free-text query against cached analysis records
// into a ranked, deduplicated list of time ranges. It is a pure function over
// its inputs: no I/O, no shared state.
package matcher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clipseek/clipseek/internal/model"
)

// Search type values accepted in Options.SearchType
const (
	SearchSpeech = "speech"
	SearchVisual = "visual"
	SearchBoth   = "both"
)

// Visual matches carry a fixed confidence: frame descriptions are inherently
// less precise than transcript evidence, so they are down-weighted uniformly.
const visualConfidence = 0.8

// Options controls matching behavior. Non-positive numeric fields mean
// "unset" and take the per-field default, so a zero Options is usable as-is;
// a literal zero cannot be requested for them.
type Options struct {
	SearchType    string
	MaxResults    int     // <= 0 means 10
	MinDuration   float64 // seconds; <= 0 means 1
	ExpandBy      float64 // seconds added on each side of a hit; <= 0 means 0.5
	CaseSensitive bool
}

// DefaultOptions returns the matcher defaults for searching both sources
func DefaultOptions() Options {
	return Options{
		SearchType:  SearchBoth,
		MaxResults:  10,
		MinDuration: 1,
		ExpandBy:    0.5,
	}
}

func (o Options) withDefaults() Options {
	if o.SearchType == "" {
		o.SearchType = SearchBoth
	}
	if o.MaxResults <= 0 {
		o.MaxResults = 10
	}
	if o.MinDuration <= 0 {
		o.MinDuration = 1
	}
	if o.ExpandBy <= 0 {
		o.ExpandBy = 0.5
	}
	return o
}

// Find resolves query into ranked segments. Either analysis record may be
// nil; a missing source simply contributes no candidates. Reporting "no
// analysis exists at all" is the caller's concern, not the matcher's.
func Find(query string, speech *model.SpeechAnalysisResult, visual *model.VisualAnalysisResult, opts Options) []model.FoundSegment {
	opts = opts.withDefaults()
	if strings.TrimSpace(query) == "" {
		return nil
	}

	needle := query
	if !opts.CaseSensitive {
		needle = strings.ToLower(needle)
	}

	var candidates []model.FoundSegment
	if (opts.SearchType == SearchSpeech || opts.SearchType == SearchBoth) && speech != nil {
		candidates = append(candidates, speechCandidates(needle, speech, opts)...)
	}
	if (opts.SearchType == SearchVisual || opts.SearchType == SearchBoth) && visual != nil {
		candidates = append(candidates, visualCandidates(needle, visual, opts)...)
	}

	candidates = filterMinDuration(candidates, opts.MinDuration)
	merged := MergeOverlapping(candidates)

	// Rank by confidence; stable sort keeps discovery order on ties
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	if len(merged) > opts.MaxResults {
		merged = merged[:opts.MaxResults]
	}
	return merged
}

// speechCandidates scans transcript segments and, independently, word-level
// timestamps. Both hit kinds are kept as separate candidates before merging:
// segment hits carry full confidence, word hits the word's own confidence.
func speechCandidates(needle string, speech *model.SpeechAnalysisResult, opts Options) []model.FoundSegment {
	var out []model.FoundSegment

	for i, seg := range speech.Segments {
		if !contains(seg.Text, needle, opts.CaseSensitive) {
			continue
		}
		out = append(out, newSegment(
			floorZero(seg.Start-opts.ExpandBy),
			seg.End+opts.ExpandBy,
			model.AnalysisTypeSpeech,
			seg.Text,
			1.0,
			segmentContext(speech.Segments, i),
		))
	}

	for _, word := range speech.Words {
		if !contains(word.Word, needle, opts.CaseSensitive) {
			continue
		}
		out = append(out, newSegment(
			floorZero(word.Start-opts.ExpandBy),
			word.End+opts.ExpandBy,
			model.AnalysisTypeSpeech,
			word.Word,
			word.Confidence,
			containingSegmentText(speech.Segments, word),
		))
	}

	return out
}

// visualCandidates scans frame descriptions, scenes, and object labels. A
// frame hit spans one sampling interval (1/fps) around the frame timestamp.
func visualCandidates(needle string, visual *model.VisualAnalysisResult, opts Options) []model.FoundSegment {
	frameSpan := 0.0
	if visual.FPS > 0 {
		frameSpan = 1 / visual.FPS
	}

	var out []model.FoundSegment
	for _, frame := range visual.Frames {
		if !frameMatches(frame, needle, opts.CaseSensitive) {
			continue
		}
		out = append(out, newSegment(
			floorZero(frame.Timestamp-opts.ExpandBy),
			frame.Timestamp+frameSpan+opts.ExpandBy,
			model.AnalysisTypeVisual,
			frame.Description,
			visualConfidence,
			fmt.Sprintf("Scene: %s, Objects: %s", frame.Scene, strings.Join(frame.Objects, ", ")),
		))
	}
	return out
}

func frameMatches(frame model.FrameAnalysis, needle string, caseSensitive bool) bool {
	if contains(frame.Description, needle, caseSensitive) || contains(frame.Scene, needle, caseSensitive) {
		return true
	}
	for _, obj := range frame.Objects {
		if contains(obj, needle, caseSensitive) {
			return true
		}
	}
	return false
}

// MergeOverlapping collapses touching or overlapping candidates into single
// segments. Within the returned set, sorted by start, no overlaps remain.
// Merging an already-merged list yields the same list.
//
// When segments of different match types merge, the result keeps the speech
// label: transcript evidence is considered the stronger signal.
func MergeOverlapping(candidates []model.FoundSegment) []model.FoundSegment {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]model.FoundSegment, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := []model.FoundSegment{sorted[0]}
	for _, cand := range sorted[1:] {
		acc := &merged[len(merged)-1]
		if cand.Start > acc.End {
			merged = append(merged, cand)
			continue
		}

		if cand.End > acc.End {
			acc.End = cand.End
		}
		acc.Duration = acc.End - acc.Start
		if acc.MatchType != cand.MatchType {
			acc.MatchType = model.AnalysisTypeSpeech
		}
		acc.MatchedContent = acc.MatchedContent + " | " + cand.MatchedContent
		if cand.Confidence > acc.Confidence {
			acc.Confidence = cand.Confidence
		}
		// Context stays the accumulator's: earliest wins
	}
	return merged
}

func filterMinDuration(candidates []model.FoundSegment, minDuration float64) []model.FoundSegment {
	out := candidates[:0]
	for _, cand := range candidates {
		if cand.Duration >= minDuration {
			out = append(out, cand)
		}
	}
	return out
}

// segmentContext joins the segment's text with one neighbor on each side,
// clamped at the array bounds, in original order.
func segmentContext(segments []model.TranscriptSegment, i int) string {
	lo := i - 1
	if lo < 0 {
		lo = 0
	}
	hi := i + 1
	if hi > len(segments)-1 {
		hi = len(segments) - 1
	}

	parts := make([]string, 0, 3)
	for j := lo; j <= hi; j++ {
		parts = append(parts, segments[j].Text)
	}
	return strings.Join(parts, " ")
}

// containingSegmentText returns the text of the first segment that
// temporally contains the word, or "" when none does.
func containingSegmentText(segments []model.TranscriptSegment, word model.WordTimestamp) string {
	for _, seg := range segments {
		if word.Start >= seg.Start && word.End <= seg.End {
			return seg.Text
		}
	}
	return ""
}

func contains(haystack, needle string, caseSensitive bool) bool {
	if !caseSensitive {
		haystack = strings.ToLower(haystack)
	}
	return strings.Contains(haystack, needle)
}

func newSegment(start, end float64, matchType, content string, confidence float64, context string) model.FoundSegment {
	return model.FoundSegment{
		Start:          start,
		End:            end,
		Duration:       end - start,
		MatchType:      matchType,
		MatchedContent: content,
		Confidence:     confidence,
		Context:        context,
	}
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
