package kms

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/NeowayLabs/kms/raw"
)

// BufferType selects the kind of scanout memory to allocate.
type BufferType int

const (
	// BufferTypeDumb is kernel allocated memory usable only for
	// scanout, not for GPU rendering.
	BufferTypeDumb BufferType = iota
)

// Device owns the connection to a DRM card and the display topology
// discovered on it. Every other type in this package is reachable from
// a Device and is only valid while the Device stays open.
//
// The topology is discovered once, at Open time; the hardware graph is
// static for the lifetime of the process. What does change at runtime
// (connection status, mode lists, properties) is never cached.
//
// A Device and the objects derived from it are not safe for concurrent
// use.
type Device struct {
	fd     facade
	log    zerolog.Logger
	closed bool

	crtcs      []*Crtc
	encoders   []*Encoder
	connectors []*Connector
	planes     []*Plane
}

// Option configures a Device at Open time.
type Option func(*Device)

// WithLogger sets the logger used for debug and trace output. The
// default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Device) { d.log = log }
}

// Open opens the DRM device at path, declares the atomic and universal
// planes client capabilities and discovers the card's display
// topology. Both capabilities are mandatory: a kernel that refuses
// either fails the open, since nothing in this package works without
// them.
func Open(path string, opts ...Option) (*Device, error) {
	fd, err := openCard(path)
	if err != nil {
		return nil, err
	}

	dev, err := newDevice(fd, opts...)
	if err != nil {
		fd.Close()
		return nil, err
	}
	return dev, nil
}

// OpenCard opens /dev/dri/card<n>.
func OpenCard(n int, opts ...Option) (*Device, error) {
	return Open(fmt.Sprintf("/dev/dri/card%d", n), opts...)
}

func newDevice(fd facade, opts ...Option) (*Device, error) {
	dev := &Device{
		fd:  fd,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(dev)
	}

	if err := fd.SetClientCap(raw.ClientCapAtomic); err != nil {
		return nil, fmt.Errorf("declaring atomic capability: %w", err)
	}
	if err := fd.SetClientCap(raw.ClientCapUniversalPlanes); err != nil {
		return nil, fmt.Errorf("declaring universal planes capability: %w", err)
	}

	res, err := fd.Resources()
	if err != nil {
		return nil, fmt.Errorf("enumerating resources: %w", err)
	}

	// CRTCs first: their discovery index keys the possible-CRTCs
	// bitmasks of the encoders and planes discovered after them.
	for idx, id := range res.Crtcs {
		crtc, err := newCrtc(dev, id, idx)
		if err != nil {
			return nil, err
		}
		dev.crtcs = append(dev.crtcs, crtc)
	}

	for _, id := range res.Encoders {
		encoder, err := newEncoder(dev, id)
		if err != nil {
			return nil, err
		}
		dev.encoders = append(dev.encoders, encoder)
	}

	for _, id := range res.Connectors {
		connector, err := newConnector(dev, id)
		if err != nil {
			return nil, err
		}
		dev.connectors = append(dev.connectors, connector)
	}

	planeIDs, err := fd.PlaneIDs()
	if err != nil {
		return nil, fmt.Errorf("enumerating planes: %w", err)
	}
	for _, id := range planeIDs {
		plane, err := newPlane(dev, id)
		if err != nil {
			return nil, err
		}
		dev.planes = append(dev.planes, plane)
	}

	dev.log.Debug().
		Int("crtcs", len(dev.crtcs)).
		Int("encoders", len(dev.encoders)).
		Int("connectors", len(dev.connectors)).
		Int("planes", len(dev.planes)).
		Msg("discovered display topology")

	return dev, nil
}

// facade returns the capability facade, or ErrDeviceClosed once the
// Device has been closed. Every operation that talks to the kernel
// goes through here; holding a node handle across Close is legal, and
// using it afterwards fails instead of crashing.
func (d *Device) facade() (facade, error) {
	if d.closed {
		return nil, ErrDeviceClosed
	}
	return d.fd, nil
}

// Close releases the connection to the card. Node handles derived from
// the Device stay around but fail every operation with
// ErrDeviceClosed.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.fd.Close()
}

// Connectors returns the discovered connectors in discovery order.
func (d *Device) Connectors() []*Connector {
	return append([]*Connector(nil), d.connectors...)
}

// Crtcs returns the discovered CRTCs in discovery order. The slice
// position of each CRTC matches its Index.
func (d *Device) Crtcs() []*Crtc {
	return append([]*Crtc(nil), d.crtcs...)
}

// Encoders returns the discovered encoders in discovery order.
func (d *Device) Encoders() []*Encoder {
	return append([]*Encoder(nil), d.encoders...)
}

// Planes returns the discovered planes in discovery order.
func (d *Device) Planes() []*Plane {
	return append([]*Plane(nil), d.planes...)
}

// Capability queries a device capability (raw.Cap* constants).
func (d *Device) Capability(cap uint64) (uint64, error) {
	fd, err := d.facade()
	if err != nil {
		return 0, err
	}
	return fd.GetCap(cap)
}

// HasDumbBuffer reports whether the card supports dumb buffer
// allocation.
func (d *Device) HasDumbBuffer() bool {
	val, err := d.Capability(raw.CapDumbBuffer)
	return err == nil && val != 0
}

// AllocateBuffer allocates scanout memory of the given geometry and
// maps it into the process. The returned buffer's geometry can be
// larger than requested; always use the reported values.
func (d *Device) AllocateBuffer(buftype BufferType, width, height, bpp uint32) (*Buffer, error) {
	switch buftype {
	case BufferTypeDumb:
		return newBuffer(d, width, height, bpp)
	}
	return nil, fmt.Errorf("buffer type %d: %w", buftype, ErrInvalidData)
}

// OutputFromConnector resolves a display path for the connector: the
// first encoder reachable from it and the first CRTC reachable from
// that encoder. First-fit keeps the resolution simple but performs no
// arbitration between outputs: with several simultaneous connectors
// the same CRTC can be picked twice. Callers building multi-display
// configurations must pick CRTCs themselves.
func (d *Device) OutputFromConnector(connector *Connector) (*Output, error) {
	encoders, err := connector.Encoders()
	if err != nil {
		return nil, err
	}
	if len(encoders) == 0 {
		return nil, fmt.Errorf("no encoder for connector %s: %w", connector, ErrNotFound)
	}
	encoder := encoders[0]

	crtcs, err := encoder.Crtcs()
	if err != nil {
		return nil, err
	}
	if len(crtcs) == 0 {
		return nil, fmt.Errorf("no CRTC for connector %s: %w", connector, ErrNotFound)
	}
	crtc := crtcs[0]

	d.log.Debug().
		Str("connector", connector.String()).
		Uint32("encoder", encoder.ObjectID()).
		Uint32("crtc", crtc.ObjectID()).
		Msg("resolved output")

	return &Output{
		dev:       d,
		connector: connector,
		encoder:   encoder,
		crtc:      crtc,
	}, nil
}
