package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/3menions-ctrl/genesis-director-sub010/internal/project"
	"github.com/3menions-ctrl/genesis-director-sub010/internal/timeline"
)

var (
	ErrUnknownAction  = errors.New("unknown action type")
	ErrInvalidPayload = errors.New("invalid action payload")
)

var validate = newValidator()

// newValidator reports fields by their JSON names and knows the
// "transition" rule used by clip fields.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("transition", func(fl validator.FieldLevel) bool {
		return timeline.TransitionKind(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ActionRequest is the wire form of a timeline action.
type ActionRequest struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type setPlayheadPayload struct {
	Time *float64 `json:"time" validate:"required"`
}

type setPlayingPayload struct {
	Playing *bool `json:"playing" validate:"required"`
}

type selectClipPayload struct {
	ClipID  string `json:"clipId"`
	TrackID string `json:"trackId"`
}

type addClipPayload struct {
	TrackID string        `json:"trackId" validate:"required"`
	Clip    timeline.Clip `json:"clip"`
}

type clipRefPayload struct {
	TrackID string `json:"trackId" validate:"required"`
	ClipID  string `json:"clipId" validate:"required"`
}

type moveClipPayload struct {
	FromTrackID string   `json:"fromTrackId" validate:"required"`
	ToTrackID   string   `json:"toTrackId" validate:"required"`
	ClipID      string   `json:"clipId" validate:"required"`
	NewStart    *float64 `json:"newStart" validate:"required"`
}

type trimClipPayload struct {
	TrackID string   `json:"trackId" validate:"required"`
	ClipID  string   `json:"clipId" validate:"required"`
	Edge    string   `json:"edge" validate:"required,oneof=start end"`
	NewTime *float64 `json:"newTime" validate:"required"`
}

type addTrackPayload struct {
	ID     string `json:"id"`
	Type   string `json:"type" validate:"required,oneof=video audio text overlay"`
	Label  string `json:"label" validate:"max=200"`
	Muted  bool   `json:"muted"`
	Locked bool   `json:"locked"`
}

type trackRefPayload struct {
	TrackID string `json:"trackId" validate:"required"`
}

type setZoomPayload struct {
	Zoom *float64 `json:"zoom" validate:"required"`
}

type setScrollXPayload struct {
	X *float64 `json:"x" validate:"required"`
}

type updateClipPayload struct {
	TrackID string              `json:"trackId" validate:"required"`
	ClipID  string              `json:"clipId" validate:"required"`
	Updates timeline.ClipUpdate `json:"updates"`
}

type reorderClipPayload struct {
	TrackID  string `json:"trackId" validate:"required"`
	ClipID   string `json:"clipId" validate:"required"`
	NewIndex *int   `json:"newIndex" validate:"required"`
}

type moveTrackPayload struct {
	TrackID   string `json:"trackId" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type setLoopPayload struct {
	Looping *bool `json:"looping" validate:"required"`
}

type setAspectRatioPayload struct {
	Ratio string `json:"ratio" validate:"required"`
}

// DecodeAction turns a wire action into a reducer action. Payload fields
// are checked for presence, enum membership and clip property ranges;
// positions and zoom are left to the reducer, which clamps them.
func DecodeAction(req ActionRequest) (timeline.Action, error) {
	switch timeline.ActionType(req.Type) {
	case timeline.ActionSetPlayhead:
		p, err := decodePayload[setPlayheadPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.SetPlayhead{Time: *p.Time}, nil

	case timeline.ActionSetPlaying:
		p, err := decodePayload[setPlayingPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.SetPlaying{Playing: *p.Playing}, nil

	case timeline.ActionSelectClip:
		p, err := decodePayload[selectClipPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.SelectClip{ClipID: p.ClipID, TrackID: p.TrackID}, nil

	case timeline.ActionAddClip:
		p, err := decodePayload[addClipPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		if !validClipKind(p.Clip.Kind) {
			return nil, fmt.Errorf("%w: clip.type must be one of video image text audio", ErrInvalidPayload)
		}
		return timeline.AddClip{TrackID: p.TrackID, Clip: p.Clip}, nil

	case timeline.ActionRemoveClip:
		p, err := decodePayload[clipRefPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.RemoveClip{TrackID: p.TrackID, ClipID: p.ClipID}, nil

	case timeline.ActionMoveClip:
		p, err := decodePayload[moveClipPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.MoveClip{FromTrackID: p.FromTrackID, ToTrackID: p.ToTrackID, ClipID: p.ClipID, NewStart: *p.NewStart}, nil

	case timeline.ActionTrimClip:
		p, err := decodePayload[trimClipPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.TrimClip{TrackID: p.TrackID, ClipID: p.ClipID, Edge: timeline.Edge(p.Edge), NewTime: *p.NewTime}, nil

	case timeline.ActionAddTrack:
		p, err := decodePayload[addTrackPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		id := p.ID
		if id == "" {
			id = timeline.NewID(timeline.TrackIDPrefix)
		}
		return timeline.AddTrack{Track: timeline.Track{
			ID:     id,
			Kind:   timeline.TrackKind(p.Type),
			Label:  p.Label,
			Clips:  []timeline.Clip{},
			Muted:  p.Muted,
			Locked: p.Locked,
		}}, nil

	case timeline.ActionRemoveTrack:
		p, err := decodePayload[trackRefPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.RemoveTrack{TrackID: p.TrackID}, nil

	case timeline.ActionToggleMute:
		p, err := decodePayload[trackRefPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.ToggleTrackMute{TrackID: p.TrackID}, nil

	case timeline.ActionToggleLock:
		p, err := decodePayload[trackRefPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.ToggleTrackLock{TrackID: p.TrackID}, nil

	case timeline.ActionSetZoom:
		p, err := decodePayload[setZoomPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.SetZoom{Zoom: *p.Zoom}, nil

	case timeline.ActionSetScrollX:
		p, err := decodePayload[setScrollXPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.SetScrollX{X: *p.X}, nil

	case timeline.ActionLoadProject:
		doc, err := decodePayload[project.Document](req.Payload)
		if err != nil {
			return nil, err
		}
		patch := project.FromInterchange(doc)
		if patch.Empty() {
			return nil, fmt.Errorf("%w: document has no tracks", ErrInvalidPayload)
		}
		return timeline.LoadProject{Patch: patch}, nil

	case timeline.ActionUpdateClip:
		p, err := decodePayload[updateClipPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.UpdateClip{TrackID: p.TrackID, ClipID: p.ClipID, Updates: p.Updates}, nil

	case timeline.ActionReorderClip:
		p, err := decodePayload[reorderClipPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.ReorderClip{TrackID: p.TrackID, ClipID: p.ClipID, NewIndex: *p.NewIndex}, nil

	case timeline.ActionRippleDelete:
		p, err := decodePayload[clipRefPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.RippleDelete{TrackID: p.TrackID, ClipID: p.ClipID}, nil

	case timeline.ActionClearTimeline:
		return timeline.ClearTimeline{}, nil

	case timeline.ActionMoveTrack:
		p, err := decodePayload[moveTrackPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.MoveTrack{TrackID: p.TrackID, Direction: timeline.Direction(p.Direction)}, nil

	case timeline.ActionSetLoop:
		p, err := decodePayload[setLoopPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.SetLoop{Looping: *p.Looping}, nil

	case timeline.ActionSetAspectRatio:
		p, err := decodePayload[setAspectRatioPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		return timeline.SetAspectRatio{Ratio: timeline.AspectRatio(p.Ratio)}, nil

	case timeline.ActionToggleSnap:
		return timeline.ToggleSnap{}, nil

	case timeline.ActionSelectAllClips:
		return timeline.SelectAllClips{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Type)
}

func decodePayload[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := validate.Struct(v); err != nil {
		return v, fmt.Errorf("%w: %s", ErrInvalidPayload, validationMessage(err))
	}
	return v, nil
}

func validClipKind(k timeline.ClipKind) bool {
	switch k {
	case timeline.ClipVideo, timeline.ClipImage, timeline.ClipText, timeline.ClipAudio:
		return true
	}
	return false
}

// validationMessage flattens validator errors into "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
