package timeline

type AspectRatio string

const (
	Ratio16x9 AspectRatio = "16:9"
	Ratio9x16 AspectRatio = "9:16"
	Ratio1x1  AspectRatio = "1:1"
	Ratio4x3  AspectRatio = "4:3"
	Ratio4x5  AspectRatio = "4:5"
	Ratio21x9 AspectRatio = "21:9"
)

type dimensions struct {
	width, height int
}

var canonicalSizes = map[AspectRatio]dimensions{
	Ratio16x9: {1920, 1080},
	Ratio9x16: {1080, 1920},
	Ratio1x1:  {1080, 1080},
	Ratio4x3:  {1440, 1080},
	Ratio4x5:  {1080, 1350},
	Ratio21x9: {2560, 1080},
}

// Valid reports whether r is one of the supported aspect ratios.
func (r AspectRatio) Valid() bool {
	_, ok := canonicalSizes[r]
	return ok
}

// Dimensions returns the canonical canvas size for r. Unknown ratios get
// the 16:9 size.
func Dimensions(r AspectRatio) (width, height int) {
	d, ok := canonicalSizes[r]
	if !ok {
		d = canonicalSizes[Ratio16x9]
	}
	return d.width, d.height
}
