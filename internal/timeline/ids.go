package timeline

import "github.com/google/uuid"

const (
	TrackIDPrefix   = "track"
	ClipIDPrefix    = "clip"
	ProjectIDPrefix = "project"
)

// NewID returns a random identifier of the form "<prefix>-<uuid>".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
