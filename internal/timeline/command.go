// Package timeline builds the editor-bridge command payload for inserting a
// found segment into a timeline. The bridge transport itself lives outside
// this repository; only the command shape is produced here.
package timeline

import "github.com/clipseek/clipseek/internal/model"

// Insertion modes understood by the editor bridge
const (
	ModeInsert    = "insert"
	ModeOverwrite = "overwrite"
)

// InsertCommand is the placement request sent to the editor bridge. In and
// out points are source-clip-relative seconds.
type InsertCommand struct {
	SourceItem       string  `json:"sourceItemReference"`
	InPoint          float64 `json:"inPoint"`
	OutPoint         float64 `json:"outPoint"`
	TimelinePosition float64 `json:"timelinePosition"`
	VideoTrack       int     `json:"videoTrack"`
	AudioTrack       int     `json:"audioTrack"`
	Mode             string  `json:"mode"`
}

// NewInsertCommand maps a found segment onto the bridge command shape at the
// given timeline position.
func NewInsertCommand(sourceItem string, segment model.FoundSegment, timelinePosition float64, videoTrack, audioTrack int, mode string) InsertCommand {
	if mode != ModeInsert && mode != ModeOverwrite {
		mode = ModeInsert
	}
	return InsertCommand{
		SourceItem:       sourceItem,
		InPoint:          segment.Start,
		OutPoint:         segment.End,
		TimelinePosition: timelinePosition,
		VideoTrack:       videoTrack,
		AudioTrack:       audioTrack,
		Mode:             mode,
	}
}
