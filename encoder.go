package kms

import "fmt"

// EncoderType is the kind of signal conversion an encoder performs.
type EncoderType uint32

const (
	EncoderTypeNone EncoderType = iota
	EncoderTypeDAC
	EncoderTypeTMDS
	EncoderTypeLVDS
	EncoderTypeTVDAC
	EncoderTypeVirtual
	EncoderTypeDSI
	EncoderTypeDPMST
	EncoderTypeDPI
)

func (t EncoderType) String() string {
	switch t {
	case EncoderTypeNone:
		return "None"
	case EncoderTypeDAC:
		return "DAC"
	case EncoderTypeTMDS:
		return "TMDS"
	case EncoderTypeLVDS:
		return "LVDS"
	case EncoderTypeTVDAC:
		return "TVDAC"
	case EncoderTypeVirtual:
		return "Virtual"
	case EncoderTypeDSI:
		return "DSI"
	case EncoderTypeDPMST:
		return "DP-MST"
	case EncoderTypeDPI:
		return "DPI"
	}
	return fmt.Sprintf("EncoderType(%d)", uint32(t))
}

// Encoder converts the pixel stream of a CRTC into a signal the
// attached display sink understands.
type Encoder struct {
	object
	typ EncoderType

	// Both masks are keyed by discovery index, not object id: bit n
	// refers to the nth enumerated CRTC or encoder.
	possibleCrtcs  uint32
	possibleClones uint32
}

func newEncoder(dev *Device, id uint32) (*Encoder, error) {
	fd, err := dev.facade()
	if err != nil {
		return nil, err
	}

	enc, err := fd.Encoder(id)
	if err != nil {
		return nil, fmt.Errorf("querying encoder %d: %w", id, err)
	}
	if enc.Type > uint32(EncoderTypeDPI) {
		return nil, fmt.Errorf("encoder %d reports type %d: %w", id, enc.Type, ErrInvalidData)
	}

	return &Encoder{
		object:         object{dev: dev, id: id, typ: ObjectTypeEncoder},
		typ:            EncoderType(enc.Type),
		possibleCrtcs:  enc.PossibleCrtcs,
		possibleClones: enc.PossibleClones,
	}, nil
}

// EncoderType returns the encoder kind.
func (e *Encoder) EncoderType() EncoderType { return e.typ }

// Crtcs returns the CRTCs this encoder can drive, in device discovery
// order. The filter tests the CRTC discovery index against the
// encoder's possible-CRTCs bitmask.
func (e *Encoder) Crtcs() ([]*Crtc, error) {
	if _, err := e.dev.facade(); err != nil {
		return nil, err
	}

	var crtcs []*Crtc
	for _, crtc := range e.dev.crtcs {
		if 1<<uint(crtc.Index())&e.possibleCrtcs != 0 {
			crtcs = append(crtcs, crtc)
		}
	}
	return crtcs, nil
}
