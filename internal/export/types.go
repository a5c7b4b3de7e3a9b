package export

import "errors"

var (
	ErrTrackNotFound = errors.New("track not found")
	ErrNoMediaClips  = errors.New("track has no exportable clips")
)

// ExportRequest is the body of a project export call. An empty TrackID
// picks the first video track.
type ExportRequest struct {
	Format    string  `json:"format" validate:"omitempty,oneof=edl EDL"`
	TrackID   string  `json:"track_id,omitempty"`
	FrameRate float64 `json:"frame_rate,omitempty" validate:"gte=0,lte=240"`
	OutputDir string  `json:"output_dir,omitempty"`
	Title     string  `json:"title,omitempty" validate:"max=200"`
}

// ResolvedClip is one EDL event: a span of source media placed at a span
// of the record timeline.
type ResolvedClip struct {
	ClipID      string
	ClipName    string
	MediaPath   string
	Channel     string
	SourceInMs  int
	SourceOutMs int
	RecordInMs  int
	RecordOutMs int
}

type ExportResponse struct {
	Status          string   `json:"status"`
	Format          string   `json:"format"`
	OutputPath      string   `json:"output_path"`
	ClipCount       int      `json:"clip_count"`
	UnresolvedClips []string `json:"unresolved_clips"`
}
