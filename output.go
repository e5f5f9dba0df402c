package kms

import (
	"fmt"
	"math"
	"sort"

	"github.com/NeowayLabs/kms/raw"
)

// Output is one resolved display path: a connector, the encoder
// driving it and the CRTC feeding the encoder. The triple is fixed at
// resolution time and never changes across commits.
type Output struct {
	dev       *Device
	connector *Connector
	crtc      *Crtc
	encoder   *Encoder
}

// Connector returns the output's display sink.
func (o *Output) Connector() *Connector { return o.connector }

// Crtc returns the output's scanout engine.
func (o *Output) Crtc() *Crtc { return o.crtc }

// Encoder returns the output's encoder.
func (o *Output) Encoder() *Encoder { return o.encoder }

// Planes returns the planes that can feed the output's CRTC.
func (o *Output) Planes() ([]*Plane, error) {
	if _, err := o.dev.facade(); err != nil {
		return nil, err
	}

	var planes []*Plane
	for _, plane := range o.dev.planes {
		if plane.compatibleWith(o.crtc) {
			planes = append(planes, plane)
		}
	}
	return planes, nil
}

// StartUpdate begins accumulating a state change for the output.
func (o *Output) StartUpdate() *Update {
	return &Update{output: o}
}

// Update accumulates property writes across the output's CRTC, its
// connector and any number of planes, then commits them as one atomic
// transaction. The builder methods only record intent; nothing touches
// the kernel before Commit.
type Update struct {
	output    *Output
	mode      *Mode
	connector *ConnectorUpdate
	planes    []*PlaneUpdate
}

// SetMode records a mode change for the pending update.
func (u *Update) SetMode(mode Mode) *Update {
	u.mode = &mode
	return u
}

// AddConnector records connector property writes for the pending
// update.
func (u *Update) AddConnector(connector *ConnectorUpdate) *Update {
	u.output.dev.log.Trace().
		Stringer("connector", connector.connector).
		Msg("adding connector update")
	u.connector = connector
	return u
}

// AddPlane records plane property writes for the pending update.
func (u *Update) AddPlane(plane *PlaneUpdate) *Update {
	u.output.dev.log.Trace().
		Stringer("plane", plane.plane).
		Msg("adding plane update")
	u.planes = append(u.planes, plane)
	return u
}

// propertyWrite is one staged (object, property, value) triple.
type propertyWrite struct {
	object   uint32
	property uint32
	value    uint64
}

// resolveProperty turns a symbolic name into the property id it has on
// obj right now. Missing names are a caller mistake, reported as
// ErrNotFound.
func resolveProperty(obj Object, name string) (uint32, error) {
	id, ok, err := obj.PropertyID(name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("object %d has no property %q: %w",
			obj.ObjectID(), name, ErrNotFound)
	}
	return id, nil
}

// Commit resolves every accumulated property name, groups the staged
// writes by object and issues one atomic transaction with mode changes
// allowed. The kernel applies all writes or none; on any failure the
// previous configuration stays visible.
//
// On success the untouched Output is returned for the next
// StartUpdate.
func (u *Update) Commit() (*Output, error) {
	dev := u.output.dev
	dev.log.Debug().Msg("starting atomic commit")

	fd, err := dev.facade()
	if err != nil {
		return nil, err
	}

	crtc := u.output.crtc
	crtcID := crtc.ObjectID()

	var writes []propertyWrite

	for _, plane := range u.planes {
		// every staged plane gets pointed at the output's CRTC
		propID, err := resolveProperty(plane.plane, "CRTC_ID")
		if err != nil {
			return nil, err
		}
		writes = append(writes, propertyWrite{plane.plane.ObjectID(), propID, uint64(crtcID)})

		for name, value := range plane.properties {
			propID, err := resolveProperty(plane.plane, name)
			if err != nil {
				return nil, err
			}
			writes = append(writes, propertyWrite{plane.plane.ObjectID(), propID, value})
		}
	}

	activeID, err := resolveProperty(crtc, "ACTIVE")
	if err != nil {
		return nil, err
	}
	writes = append(writes, propertyWrite{crtcID, activeID, 1})

	if u.mode != nil {
		timings := u.mode.timings()
		blobID, err := fd.CreateModeBlob(&timings)
		if err != nil {
			return nil, fmt.Errorf("creating mode blob: %w", err)
		}

		modePropID, err := resolveProperty(crtc, "MODE_ID")
		if err != nil {
			return nil, err
		}
		writes = append(writes, propertyWrite{crtcID, modePropID, uint64(blobID)})
	}

	if u.connector != nil {
		conn := u.connector.connector
		propID, err := resolveProperty(conn, "CRTC_ID")
		if err != nil {
			return nil, err
		}
		writes = append(writes, propertyWrite{conn.ObjectID(), propID, uint64(crtcID)})

		for name, value := range u.connector.properties {
			propID, err := resolveProperty(conn, name)
			if err != nil {
				return nil, err
			}
			writes = append(writes, propertyWrite{conn.ObjectID(), propID, value})
		}
	}

	objIDs, countProps, propIDs, propValues, err := groupWrites(writes)
	if err != nil {
		return nil, err
	}

	dev.log.Debug().
		Int("objects", len(objIDs)).
		Int("properties", len(propIDs)).
		Msg("committing")

	if err := fd.AtomicCommit(objIDs, countProps, propIDs, propValues, raw.AtomicAllowModeset); err != nil {
		return nil, fmt.Errorf("atomic commit: %w", err)
	}

	return u.output, nil
}

// groupWrites flattens staged writes into the four parallel arrays the
// atomic ioctl takes: object ids, per-object property counts, property
// ids and property values.
//
// The writes are sorted and deduplicated as exact triples first, which
// makes each object's properties contiguous. Only full duplicates
// collapse: two writes to the same (object, property) with different
// values both survive, and the kernel resolves them last-writer-wins.
func groupWrites(writes []propertyWrite) (objIDs, countProps, propIDs []uint32, propValues []uint64, err error) {
	sort.Slice(writes, func(i, j int) bool {
		a, b := writes[i], writes[j]
		if a.object != b.object {
			return a.object < b.object
		}
		if a.property != b.property {
			return a.property < b.property
		}
		return a.value < b.value
	})

	deduped := writes[:0]
	for i, w := range writes {
		if i > 0 && w == writes[i-1] {
			continue
		}
		deduped = append(deduped, w)
	}

	if uint64(len(deduped)) > math.MaxUint32 {
		return nil, nil, nil, nil, fmt.Errorf("%d staged properties: %w", len(deduped), ErrInvalidData)
	}

	var count uint32
	for i, w := range deduped {
		if i == 0 || w.object != deduped[i-1].object {
			if i > 0 {
				countProps = append(countProps, count)
			}
			objIDs = append(objIDs, w.object)
			count = 0
		}
		count++
		propIDs = append(propIDs, w.property)
		propValues = append(propValues, w.value)
	}
	if len(deduped) > 0 {
		countProps = append(countProps, count)
	}

	return objIDs, countProps, propIDs, propValues, nil
}

// ConnectorUpdate accumulates property writes for one connector.
type ConnectorUpdate struct {
	connector  *Connector
	properties map[string]uint64
}

// NewConnectorUpdate starts a connector state update.
func NewConnectorUpdate(connector *Connector) *ConnectorUpdate {
	return &ConnectorUpdate{
		connector:  connector,
		properties: make(map[string]uint64),
	}
}

// SetProperty stages a property write. The last write for a given name
// wins.
func (c *ConnectorUpdate) SetProperty(name string, value uint64) *ConnectorUpdate {
	c.connector.dev.log.Trace().
		Stringer("connector", c.connector).
		Str("property", name).
		Uint64("value", value).
		Msg("staging property")
	c.properties[name] = value
	return c
}

// PlaneUpdate accumulates property writes for one plane.
type PlaneUpdate struct {
	plane      *Plane
	properties map[string]uint64
}

// NewPlaneUpdate starts a plane state update.
func NewPlaneUpdate(plane *Plane) *PlaneUpdate {
	return &PlaneUpdate{
		plane:      plane,
		properties: make(map[string]uint64),
	}
}

// SetProperty stages a property write. The last write for a given name
// wins.
func (p *PlaneUpdate) SetProperty(name string, value uint64) *PlaneUpdate {
	p.plane.dev.log.Trace().
		Stringer("plane", p.plane).
		Str("property", name).
		Uint64("value", value).
		Msg("staging property")
	p.properties[name] = value
	return p
}

// SetFramebuffer attaches a framebuffer to the pending plane update.
func (p *PlaneUpdate) SetFramebuffer(fb *Framebuffer) *PlaneUpdate {
	return p.SetProperty("FB_ID", uint64(fb.ID()))
}

// SetDisplayCoordinates positions the plane on the display.
func (p *PlaneUpdate) SetDisplayCoordinates(x, y int) *PlaneUpdate {
	return p.
		SetProperty("CRTC_X", uint64(x)).
		SetProperty("CRTC_Y", uint64(y))
}

// SetDisplaySize sets the plane's size on the display.
func (p *PlaneUpdate) SetDisplaySize(width, height int) *PlaneUpdate {
	return p.
		SetProperty("CRTC_W", uint64(width)).
		SetProperty("CRTC_H", uint64(height))
}

// SetSourceCoordinates sets where in the framebuffer the plane reads
// from. Coordinates are float32 to allow sub-pixel positioning; the
// hardware takes them in 16.16 fixed point.
func (p *PlaneUpdate) SetSourceCoordinates(x, y float32) *PlaneUpdate {
	return p.
		SetProperty("SRC_X", fixed1616(x)).
		SetProperty("SRC_Y", fixed1616(y))
}

// SetSourceSize sets how much of the framebuffer the plane reads.
// Dimensions are float32 to allow sub-pixel sizes; the hardware takes
// them in 16.16 fixed point.
func (p *PlaneUpdate) SetSourceSize(width, height float32) *PlaneUpdate {
	return p.
		SetProperty("SRC_W", fixed1616(width)).
		SetProperty("SRC_H", fixed1616(height))
}

// fixed1616 encodes an unsigned 16.16 fixed point value into the low
// 32 bits of a property word, the layout the SRC_* plane properties
// require.
func fixed1616(v float32) uint64 {
	return uint64(uint32(math.Round(float64(v) * 65536.0)))
}
