package exclusion

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
)

// ErrInvalidZone is returned when a zone coordinate falls outside [0,1].
var ErrInvalidZone = errors.New("exclusion zone coordinate out of range")

// Side identifies which document an exclusion zone applies to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
	SideBoth  Side = "both"
)

// Zone defines a rectangular area to exclude from comparison.
// Coordinates are normalized (0.0 to 1.0) relative to page dimensions.
type Zone struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Name      string  `json:"name"`
	AppliesTo Side    `json:"applies_to"`
	Enabled   bool    `json:"enabled"`
}

// NewZone creates a validated exclusion zone. All four coordinates must
// lie within [0,1].
func NewZone(x, y, width, height float64, name string, appliesTo Side) (Zone, error) {
	z := Zone{
		X:         x,
		Y:         y,
		Width:     width,
		Height:    height,
		Name:      name,
		AppliesTo: appliesTo,
		Enabled:   true,
	}
	if err := z.validate(); err != nil {
		return Zone{}, err
	}
	return z, nil
}

func (z Zone) validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"x", z.X},
		{"y", z.Y},
		{"width", z.Width},
		{"height", z.Height},
	} {
		if v.value < 0.0 || v.value > 1.0 {
			return fmt.Errorf("%w: %s must be between 0.0 and 1.0, got %v", ErrInvalidZone, v.name, v.value)
		}
	}
	switch z.AppliesTo {
	case SideLeft, SideRight, SideBoth:
	case "":
		return fmt.Errorf("%w: applies_to is empty", ErrInvalidZone)
	default:
		return fmt.Errorf("%w: unknown applies_to %q", ErrInvalidZone, z.AppliesTo)
	}
	return nil
}

// ToPixels converts normalized coordinates to pixel coordinates
// (x, y, width, height) for the given page dimensions.
func (z Zone) ToPixels(pageWidth, pageHeight int) (int, int, int, int) {
	px := int(z.X * float64(pageWidth))
	py := int(z.Y * float64(pageHeight))
	pw := int(z.Width * float64(pageWidth))
	ph := int(z.Height * float64(pageHeight))
	return px, py, pw, ph
}

// ToRect converts the zone to an image.Rectangle in pixel space.
func (z Zone) ToRect(pageWidth, pageHeight int) image.Rectangle {
	px, py, pw, ph := z.ToPixels(pageWidth, pageHeight)
	return image.Rect(px, py, px+pw, py+ph)
}

// FromPixels creates a Zone from pixel coordinates normalized against the
// given page dimensions.
func FromPixels(x, y, width, height, pageWidth, pageHeight int, name string, appliesTo Side) (Zone, error) {
	if pageWidth <= 0 || pageHeight <= 0 {
		return Zone{}, fmt.Errorf("%w: page dimensions must be positive", ErrInvalidZone)
	}
	return NewZone(
		float64(x)/float64(pageWidth),
		float64(y)/float64(pageHeight),
		float64(width)/float64(pageWidth),
		float64(height)/float64(pageHeight),
		name,
		appliesTo,
	)
}

// UnmarshalJSON decodes a zone and re-validates its invariants.
func (z *Zone) UnmarshalJSON(data []byte) error {
	type plain Zone
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.AppliesTo == "" {
		p.AppliesTo = SideBoth
	}
	decoded := Zone(p)
	if err := decoded.validate(); err != nil {
		return err
	}
	*z = decoded
	return nil
}
