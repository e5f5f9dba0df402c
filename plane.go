package kms

import "fmt"

// PlaneType classifies a plane.
type PlaneType uint32

const (
	// PlaneTypeOverlay is any plane that is neither primary nor
	// cursor, historically called a sprite.
	PlaneTypeOverlay PlaneType = iota

	// PlaneTypePrimary is the plane a CRTC acts upon during mode
	// setting.
	PlaneTypePrimary

	// PlaneTypeCursor is a cursor plane.
	PlaneTypeCursor
)

func (t PlaneType) String() string {
	switch t {
	case PlaneTypeOverlay:
		return "overlay"
	case PlaneTypePrimary:
		return "primary"
	case PlaneTypeCursor:
		return "cursor"
	}
	return fmt.Sprintf("PlaneType(%d)", uint32(t))
}

// Plane is an image source eligible for blending by a CRTC.
type Plane struct {
	object

	// Keyed by CRTC discovery index, not object id.
	possibleCrtcs uint32

	formats []Format
}

func newPlane(dev *Device, id uint32) (*Plane, error) {
	fd, err := dev.facade()
	if err != nil {
		return nil, err
	}

	raw, err := fd.Plane(id)
	if err != nil {
		return nil, fmt.Errorf("querying plane %d: %w", id, err)
	}

	formats := make([]Format, 0, len(raw.Formats))
	for _, f := range raw.Formats {
		formats = append(formats, Format(f))
	}

	return &Plane{
		object:        object{dev: dev, id: id, typ: ObjectTypePlane},
		possibleCrtcs: raw.PossibleCrtcs,
		formats:       formats,
	}, nil
}

// Formats returns the pixel formats the plane supports.
func (p *Plane) Formats() []Format {
	return append([]Format(nil), p.formats...)
}

// SupportsFormat reports whether the plane can scan out the given
// pixel format.
func (p *Plane) SupportsFormat(f Format) bool {
	for _, have := range p.formats {
		if have == f {
			return true
		}
	}
	return false
}

// Type returns the plane classification. It is not cached: the value
// is read from the plane's "type" property on every call.
func (p *Plane) Type() (PlaneType, error) {
	prop, err := p.Property("type")
	if err != nil {
		return 0, err
	}
	if prop == nil {
		return 0, fmt.Errorf("plane %d has no type property: %w", p.id, ErrNotFound)
	}

	if prop.Value > uint64(PlaneTypeCursor) {
		return 0, fmt.Errorf("plane %d reports type %d: %w", p.id, prop.Value, ErrInvalidData)
	}
	return PlaneType(prop.Value), nil
}

// compatibleWith reports whether the plane can feed the given CRTC,
// testing the CRTC discovery index against the possible-CRTCs bitmask.
func (p *Plane) compatibleWith(crtc *Crtc) bool {
	return 1<<uint(crtc.Index())&p.possibleCrtcs != 0
}

func (p *Plane) String() string {
	return fmt.Sprintf("plane-%d", p.id)
}
