package kms

import (
	"fmt"

	"github.com/NeowayLabs/kms/raw"
)

// ConnectorStatus is the probed connection state of a display sink.
type ConnectorStatus uint32

const (
	StatusConnected    ConnectorStatus = 1
	StatusDisconnected ConnectorStatus = 2
	StatusUnknown      ConnectorStatus = 3
)

func (s ConnectorStatus) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	case StatusUnknown:
		return "unknown"
	}
	return fmt.Sprintf("ConnectorStatus(%d)", uint32(s))
}

// ConnectorType is the physical kind of a connector.
type ConnectorType uint32

const (
	ConnectorTypeUnknown ConnectorType = iota
	ConnectorTypeVGA
	ConnectorTypeDVII
	ConnectorTypeDVID
	ConnectorTypeDVIA
	ConnectorTypeComposite
	ConnectorTypeSVideo
	ConnectorTypeLVDS
	ConnectorTypeComponent
	ConnectorTypeMiniDin9
	ConnectorTypeDisplayPort
	ConnectorTypeHDMIA
	ConnectorTypeHDMIB
	ConnectorTypeTV
	ConnectorTypeEDP
	ConnectorTypeVirtual
	ConnectorTypeDSI
	ConnectorTypeDPI
	ConnectorTypeWriteback
	ConnectorTypeSPI
)

func (t ConnectorType) String() string {
	switch t {
	case ConnectorTypeVGA:
		return "VGA"
	case ConnectorTypeDVII:
		return "DVI-I"
	case ConnectorTypeDVID:
		return "DVI-D"
	case ConnectorTypeDVIA:
		return "DVI-A"
	case ConnectorTypeComposite:
		return "Composite"
	case ConnectorTypeSVideo:
		return "S-VIDEO"
	case ConnectorTypeLVDS:
		return "LVDS"
	case ConnectorTypeComponent:
		return "Component"
	case ConnectorTypeMiniDin9:
		return "MiniDin9"
	case ConnectorTypeDisplayPort:
		return "DisplayPort"
	case ConnectorTypeHDMIA:
		return "HDMI-A"
	case ConnectorTypeHDMIB:
		return "HDMI-B"
	case ConnectorTypeTV:
		return "TV"
	case ConnectorTypeEDP:
		return "eDP"
	case ConnectorTypeVirtual:
		return "Virtual"
	case ConnectorTypeDSI:
		return "DSI"
	case ConnectorTypeDPI:
		return "DPI"
	case ConnectorTypeWriteback:
		return "Writeback"
	case ConnectorTypeSPI:
		return "SPI"
	}
	return "Unknown"
}

// Connector is a display sink attachment point: a physical connector,
// or a virtual one such as a fixed panel or a writeback engine.
//
// The connector kind, its kind-local index, its physical size and the
// ids of the encoders able to drive it are static and cached at
// discovery. The connection status and the supported mode list are
// not: both can change on hotplug and are queried live.
type Connector struct {
	object
	typ        ConnectorType
	typeID     uint32
	mmWidth    int
	mmHeight   int
	encoderIDs []uint32
}

func newConnector(dev *Device, id uint32) (*Connector, error) {
	fd, err := dev.facade()
	if err != nil {
		return nil, err
	}

	conn, err := fd.Connector(id)
	if err != nil {
		return nil, fmt.Errorf("querying connector %d: %w", id, err)
	}
	if conn.Type > uint32(ConnectorTypeSPI) {
		return nil, fmt.Errorf("connector %d reports type %d: %w", id, conn.Type, ErrInvalidData)
	}

	return &Connector{
		object:     object{dev: dev, id: id, typ: ObjectTypeConnector},
		typ:        ConnectorType(conn.Type),
		typeID:     conn.TypeID,
		mmWidth:    int(conn.MMWidth),
		mmHeight:   int(conn.MMHeight),
		encoderIDs: conn.Encoders,
	}, nil
}

// ConnectorType returns the connector kind.
func (c *Connector) ConnectorType() ConnectorType { return c.typ }

// ConnectorTypeID returns the index of the connector within its kind.
// The kernel reports connectors both by global object id and by a
// (kind, kind-local index) pair; "HDMI-A-1" is kind HDMI-A, index 1.
func (c *Connector) ConnectorTypeID() uint32 { return c.typeID }

// PhysicalSize returns the reported width and height of the display in
// millimeters.
func (c *Connector) PhysicalSize() (width, height int) {
	return c.mmWidth, c.mmHeight
}

// Status probes the current connection state of the sink.
func (c *Connector) Status() (ConnectorStatus, error) {
	fd, err := c.dev.facade()
	if err != nil {
		return 0, err
	}

	conn, err := fd.Connector(c.id)
	if err != nil {
		return 0, fmt.Errorf("querying connector %d: %w", c.id, err)
	}

	switch conn.Connection {
	case raw.Connected, raw.Disconnected, raw.UnknownConnection:
		return ConnectorStatus(conn.Connection), nil
	}
	return 0, fmt.Errorf("connector %d reports connection %d: %w",
		c.id, conn.Connection, ErrInvalidData)
}

// Modes returns the display modes the sink currently reports. The list
// is not exhaustive; hardware and driver can support additional
// timings.
func (c *Connector) Modes() ([]Mode, error) {
	fd, err := c.dev.facade()
	if err != nil {
		return nil, err
	}

	conn, err := fd.Connector(c.id)
	if err != nil {
		return nil, fmt.Errorf("querying connector %d: %w", c.id, err)
	}

	modes := make([]Mode, 0, len(conn.Modes))
	for _, info := range conn.Modes {
		modes = append(modes, newMode(info))
	}
	return modes, nil
}

// PreferredMode returns the first mode flagged preferred by the sink,
// or ErrNotFound when it reports none.
func (c *Connector) PreferredMode() (Mode, error) {
	modes, err := c.Modes()
	if err != nil {
		return Mode{}, err
	}

	for _, mode := range modes {
		if mode.HasType(ModeTypePreferred) {
			return mode, nil
		}
	}
	return Mode{}, fmt.Errorf("connector %s has no preferred mode: %w", c, ErrNotFound)
}

// Encoders returns the encoders able to drive this connector, in
// device discovery order.
func (c *Connector) Encoders() ([]*Encoder, error) {
	if _, err := c.dev.facade(); err != nil {
		return nil, err
	}

	var encoders []*Encoder
	for _, enc := range c.dev.encoders {
		for _, id := range c.encoderIDs {
			if enc.ObjectID() == id {
				encoders = append(encoders, enc)
				break
			}
		}
	}
	return encoders, nil
}

func (c *Connector) String() string {
	return fmt.Sprintf("%s-%d", c.typ, c.typeID)
}
