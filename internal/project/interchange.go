// Package project converts timeline state to and from the versioned
// interchange document used for saving and loading projects.
package project

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/timeline"
)

// FormatVersion is written into every document. Only one version exists so
// far, and loading does not branch on it.
const FormatVersion = 1

const (
	defaultElementLength = 6.0
)

type Document struct {
	Version     int                  `json:"version" yaml:"version"`
	Tracks      []TrackDoc           `json:"tracks" yaml:"tracks"`
	FPS         *int                 `json:"fps,omitempty" yaml:"fps,omitempty"`
	Width       *int                 `json:"width,omitempty" yaml:"width,omitempty"`
	Height      *int                 `json:"height,omitempty" yaml:"height,omitempty"`
	AspectRatio timeline.AspectRatio `json:"aspectRatio,omitempty" yaml:"aspectRatio,omitempty"`
}

type TrackDoc struct {
	ID       string       `json:"id" yaml:"id"`
	Type     string       `json:"type" yaml:"type"`
	Label    string       `json:"label" yaml:"label"`
	Muted    bool         `json:"muted,omitempty" yaml:"muted,omitempty"`
	Locked   bool         `json:"locked,omitempty" yaml:"locked,omitempty"`
	Elements []ElementDoc `json:"elements" yaml:"elements"`
}

type ElementDoc struct {
	ID    string   `json:"id" yaml:"id"`
	Type  string   `json:"type" yaml:"type"`
	Start *float64 `json:"s" yaml:"s"`
	End   *float64 `json:"e" yaml:"e"`
	Name  string   `json:"name" yaml:"name"`
	Props Props    `json:"props" yaml:"props"`
}

// Props carries every optional clip field. Keys are always written, with
// null for unset values; readers treat null and missing alike.
type Props struct {
	TrimStart          *float64                 `json:"trimStart" yaml:"trimStart"`
	TrimEnd            *float64                 `json:"trimEnd" yaml:"trimEnd"`
	Src                *string                  `json:"src" yaml:"src"`
	Thumbnail          *string                  `json:"thumbnail" yaml:"thumbnail"`
	SourceDuration     *float64                 `json:"sourceDuration" yaml:"sourceDuration"`
	Text               *string                  `json:"text" yaml:"text"`
	TextStyle          *timeline.TextStyle      `json:"textStyle" yaml:"textStyle"`
	Volume             *float64                 `json:"volume" yaml:"volume"`
	Speed              *float64                 `json:"speed" yaml:"speed"`
	FadeIn             *float64                 `json:"fadeIn" yaml:"fadeIn"`
	FadeOut            *float64                 `json:"fadeOut" yaml:"fadeOut"`
	Opacity            *float64                 `json:"opacity" yaml:"opacity"`
	Brightness         *float64                 `json:"brightness" yaml:"brightness"`
	Contrast           *float64                 `json:"contrast" yaml:"contrast"`
	Saturation         *float64                 `json:"saturation" yaml:"saturation"`
	ColorLabel         *string                  `json:"colorLabel" yaml:"colorLabel"`
	Transition         *timeline.TransitionKind `json:"transition" yaml:"transition"`
	TransitionDuration *float64                 `json:"transitionDuration" yaml:"transitionDuration"`
}

// ToInterchange builds the document for s. Clip pointers are copied so the
// document shares nothing with the state.
func ToInterchange(s timeline.State) Document {
	doc := Document{
		Version:     FormatVersion,
		Tracks:      make([]TrackDoc, len(s.Tracks)),
		FPS:         &s.FPS,
		Width:       &s.Width,
		Height:      &s.Height,
		AspectRatio: s.AspectRatio,
	}
	for i, t := range s.Tracks {
		td := TrackDoc{
			ID:       t.ID,
			Type:     string(t.Kind),
			Label:    t.Label,
			Muted:    t.Muted,
			Locked:   t.Locked,
			Elements: make([]ElementDoc, len(t.Clips)),
		}
		for j, c := range t.Clips {
			td.Elements[j] = elementFromClip(c.Clone())
		}
		doc.Tracks[i] = td
	}
	return doc
}

func elementFromClip(c timeline.Clip) ElementDoc {
	return ElementDoc{
		ID:    c.ID,
		Type:  string(c.Kind),
		Start: &c.Start,
		End:   &c.End,
		Name:  c.Name,
		Props: Props{
			TrimStart:          &c.TrimStart,
			TrimEnd:            &c.TrimEnd,
			Src:                c.Src,
			Thumbnail:          c.Thumbnail,
			SourceDuration:     c.SourceDuration,
			Text:               c.Text,
			TextStyle:          c.TextStyle,
			Volume:             c.Volume,
			Speed:              c.Speed,
			FadeIn:             c.FadeIn,
			FadeOut:            c.FadeOut,
			Opacity:            c.Opacity,
			Brightness:         c.Brightness,
			Contrast:           c.Contrast,
			Saturation:         c.Saturation,
			ColorLabel:         c.ColorLabel,
			Transition:         c.Transition,
			TransitionDuration: c.TransitionDuration,
		},
	}
}

// FromInterchange rebuilds the parts of a state a document describes. A
// document without a tracks list yields an empty patch. Missing ids are
// generated, a missing end is start+6s, a missing trimEnd is the clip length,
// and canvas fields fall back to 30fps at 1920x1080.
func FromInterchange(doc Document) timeline.Patch {
	if doc.Tracks == nil {
		return timeline.Patch{}
	}

	tracks := make([]timeline.Track, len(doc.Tracks))
	for i, td := range doc.Tracks {
		id := td.ID
		if id == "" {
			id = timeline.NewID(timeline.TrackIDPrefix)
		}
		t := timeline.Track{
			ID:     id,
			Kind:   timeline.TrackKind(td.Type),
			Label:  td.Label,
			Muted:  td.Muted,
			Locked: td.Locked,
			Clips:  make([]timeline.Clip, len(td.Elements)),
		}
		for j, el := range td.Elements {
			t.Clips[j] = clipFromElement(el)
		}
		tracks[i] = t
	}

	p := timeline.Patch{
		Tracks: &tracks,
		FPS:    intOr(doc.FPS, timeline.DefaultFPS),
		Width:  intOr(doc.Width, timeline.DefaultWidth),
		Height: intOr(doc.Height, timeline.DefaultHeight),
	}
	if doc.AspectRatio != "" {
		ratio := doc.AspectRatio
		p.AspectRatio = &ratio
	}
	return p
}

func clipFromElement(el ElementDoc) timeline.Clip {
	id := el.ID
	if id == "" {
		id = timeline.NewID(timeline.ClipIDPrefix)
	}
	var start float64
	if el.Start != nil {
		start = *el.Start
	}
	end := start + defaultElementLength
	if el.End != nil {
		end = *el.End
	}
	trimEnd := end - start
	if el.Props.TrimEnd != nil {
		trimEnd = *el.Props.TrimEnd
	}
	var trimStart float64
	if el.Props.TrimStart != nil {
		trimStart = *el.Props.TrimStart
	}

	pr := el.Props
	c := timeline.Clip{
		ID:                 id,
		Kind:               timeline.ClipKind(el.Type),
		Start:              start,
		End:                end,
		TrimStart:          trimStart,
		TrimEnd:            trimEnd,
		Name:               el.Name,
		Src:                pr.Src,
		Thumbnail:          pr.Thumbnail,
		SourceDuration:     pr.SourceDuration,
		Text:               pr.Text,
		TextStyle:          pr.TextStyle,
		Volume:             pr.Volume,
		Speed:              pr.Speed,
		FadeIn:             pr.FadeIn,
		FadeOut:            pr.FadeOut,
		Opacity:            pr.Opacity,
		Brightness:         pr.Brightness,
		Contrast:           pr.Contrast,
		Saturation:         pr.Saturation,
		ColorLabel:         pr.ColorLabel,
		Transition:         pr.Transition,
		TransitionDuration: pr.TransitionDuration,
	}
	return c.Clone()
}

func intOr(p *int, def int) *int {
	v := def
	if p != nil {
		v = *p
	}
	return &v
}

// Encode renders the interchange document for s as indented JSON.
func Encode(s timeline.State) ([]byte, error) {
	return json.MarshalIndent(ToInterchange(s), "", "  ")
}

// Decode parses a JSON document into a patch. It never fails: anything that
// is not a well-formed document decodes to an empty patch. Unknown fields are
// ignored.
func Decode(data []byte) timeline.Patch {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return timeline.Patch{}
	}
	return FromInterchange(doc)
}

// EncodeYAML renders the same document as YAML for hand editing.
func EncodeYAML(s timeline.State) ([]byte, error) {
	return yaml.Marshal(ToInterchange(s))
}

// DecodeYAML is the YAML counterpart of Decode.
func DecodeYAML(data []byte) timeline.Patch {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return timeline.Patch{}
	}
	return FromInterchange(doc)
}
