package kms

import (
	"bytes"
	"fmt"

	"github.com/NeowayLabs/kms/raw"
)

// ModeType classifies a display mode. The kernel reports it as a
// bitmask, so a mode can carry several types at once.
type ModeType uint32

const (
	ModeTypeBuiltin   ModeType = 1 << 0
	ModeTypeClockC    ModeType = 1<<1 | ModeTypeBuiltin
	ModeTypeCrtcC     ModeType = 1<<2 | ModeTypeBuiltin
	ModeTypePreferred ModeType = 1 << 3
	ModeTypeDefault   ModeType = 1 << 4
	ModeTypeUserDef   ModeType = 1 << 5
	ModeTypeDriver    ModeType = 1 << 6
)

// Mode is an immutable display timing descriptor.
type Mode struct {
	name string
	info raw.ModeInfo
}

func newMode(info raw.ModeInfo) Mode {
	return Mode{
		name: string(bytes.TrimRight(info.Name[:], "\x00")),
		info: info,
	}
}

// Name returns the human readable mode name, e.g. "1920x1080".
func (m Mode) Name() string { return m.name }

// Width returns the active horizontal size in pixels.
func (m Mode) Width() int { return int(m.info.Hdisplay) }

// Height returns the active vertical size in pixels.
func (m Mode) Height() int { return int(m.info.Vdisplay) }

// Refresh returns the vertical refresh rate in Hertz.
func (m Mode) Refresh() int { return int(m.info.Vrefresh) }

// Clock returns the pixel clock in kHz.
func (m Mode) Clock() int { return int(m.info.Clock) }

// HasType reports whether the mode carries the given classification
// bits. It is a mask membership test, not an equality test: a mode can
// be both preferred and driver generated.
func (m Mode) HasType(t ModeType) bool {
	return m.info.Type&uint32(t) == uint32(t)
}

func (m Mode) String() string {
	return fmt.Sprintf("%s: %d %d %d %d %d %d %d %d %d %d %x %x",
		m.name, m.info.Vrefresh, m.info.Clock,
		m.info.Hdisplay, m.info.HsyncStart, m.info.HsyncEnd, m.info.Htotal,
		m.info.Vdisplay, m.info.VsyncStart, m.info.VsyncEnd, m.info.Vtotal,
		m.info.Type, m.info.Flags)
}

// timings returns the raw struct sent to the kernel as a MODE_ID blob.
func (m Mode) timings() raw.ModeInfo { return m.info }
