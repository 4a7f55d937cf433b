package visual

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeFrameDescription(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want FrameDescription
	}{
		{
			name: "plain json",
			raw:  `{"description": "a car in a driveway", "objects": ["car", "driveway"], "scene": "outdoor"}`,
			want: FrameDescription{
				Description: "a car in a driveway",
				Objects:     []string{"car", "driveway"},
				Scene:       "outdoor",
				Parsed:      true,
			},
		},
		{
			name: "fenced json with language tag",
			raw:  "```json\n{\"description\": \"two people talking\", \"objects\": [\"person\"], \"scene\": \"office\"}\n```",
			want: FrameDescription{
				Description: "two people talking",
				Objects:     []string{"person"},
				Scene:       "office",
				Parsed:      true,
			},
		},
		{
			name: "fenced json without language tag",
			raw:  "```\n{\"description\": \"a skyline at dusk\", \"scene\": \"city\"}\n```",
			want: FrameDescription{
				Description: "a skyline at dusk",
				Objects:     []string{},
				Scene:       "city",
				Parsed:      true,
			},
		},
		{
			name: "missing scene falls back to sentinel",
			raw:  `{"description": "blurry frame"}`,
			want: FrameDescription{
				Description: "blurry frame",
				Objects:     []string{},
				Scene:       UnknownScene,
				Parsed:      true,
			},
		},
		{
			name: "free text degrades to raw description",
			raw:  "The image shows a person standing near a whiteboard.",
			want: FrameDescription{
				Description: "The image shows a person standing near a whiteboard.",
				Objects:     []string{},
				Scene:       UnknownScene,
			},
		},
		{
			name: "json without description degrades",
			raw:  `{"objects": ["tree"]}`,
			want: FrameDescription{
				Description: `{"objects": ["tree"]}`,
				Objects:     []string{},
				Scene:       UnknownScene,
			},
		},
		{
			name: "whitespace trimmed",
			raw:  "  \n a dark frame \n ",
			want: FrameDescription{
				Description: "a dark frame",
				Objects:     []string{},
				Scene:       UnknownScene,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeFrameDescription(tt.raw))
		})
	}
}
