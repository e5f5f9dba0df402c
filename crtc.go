package kms

import "fmt"

// Crtc is a scanout engine: it blends the contents of its planes and
// generates the display timings feeding a connector.
type Crtc struct {
	object
	index int
}

func newCrtc(dev *Device, id uint32, index int) (*Crtc, error) {
	fd, err := dev.facade()
	if err != nil {
		return nil, err
	}

	// the query is only used to validate the id
	if _, err := fd.Crtc(id); err != nil {
		return nil, fmt.Errorf("querying crtc %d: %w", id, err)
	}

	return &Crtc{
		object: object{dev: dev, id: id, typ: ObjectTypeCrtc},
		index:  index,
	}, nil
}

// Index returns the position of the CRTC in the device's enumeration
// order. The "possible CRTCs" bitmasks of encoders and planes are keyed
// by this index, not by the object id.
func (c *Crtc) Index() int { return c.index }
