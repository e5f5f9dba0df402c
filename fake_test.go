package kms

import (
	"fmt"

	"github.com/NeowayLabs/kms/raw"
)

// fakeCard implements facade in memory. The fixture topology mimics a
// small two-head card:
//
//	crtc 31 (index 0), crtc 32 (index 1)
//	encoder 21 -> crtc index 0, encoder 22 -> crtc index 1
//	connector 11 (HDMI-A-1, connected, encoders 21 and 22)
//	connector 12 (DP-1, disconnected, encoder 22)
//	connector 13 (Writeback-1, no encoders)
//	plane 41 (primary, crtc index 0), plane 42 (overlay, crtc index 0),
//	plane 43 (primary, crtc index 1)
type fakeCard struct {
	clientCaps []uint64
	caps       map[uint64]uint64

	resources  raw.Resources
	crtcs      map[uint32]raw.Crtc
	encoders   map[uint32]raw.Encoder
	connectors map[uint32]raw.Connector
	planeIDs   []uint32
	planes     map[uint32]raw.Plane

	propNames map[uint32]string
	objProps  map[uint32]objectState

	nextHandle uint32
	dumbs      map[uint32]raw.DumbBuffer
	shortMap   bool

	nextFB uint32
	fbs    map[uint32]uint32 // fb id -> handle

	nextBlob uint32
	blobs    map[uint32]raw.ModeInfo

	commits []fakeCommit
	ops     []string
	closed  bool
}

type objectState struct {
	ids    []uint32
	values []uint64
}

type fakeCommit struct {
	objIDs     []uint32
	countProps []uint32
	propIDs    []uint32
	propValues []uint64
	flags      uint32
}

const (
	propActive = iota + 1
	propModeID
	propCrtcID
	propFBID
	propType
	propSrcX
	propSrcY
	propSrcW
	propSrcH
	propCrtcX
	propCrtcY
	propCrtcW
	propCrtcH
)

func testModeInfo(name string, width, height, refresh uint16, typ uint32) raw.ModeInfo {
	info := raw.ModeInfo{
		Clock:    uint32(width) * uint32(height) / 10,
		Hdisplay: width,
		Vdisplay: height,
		Vrefresh: uint32(refresh),
		Type:     typ,
	}
	copy(info.Name[:], name)
	return info
}

func planeProps(planeType uint64) objectState {
	return objectState{
		ids: []uint32{propCrtcID, propFBID, propType, propSrcX, propSrcY,
			propSrcW, propSrcH, propCrtcX, propCrtcY, propCrtcW, propCrtcH},
		values: []uint64{0, 0, planeType, 0, 0, 0, 0, 0, 0, 0, 0},
	}
}

func newFakeCard() *fakeCard {
	preferred := testModeInfo("1920x1080", 1920, 1080, 60, 1<<3|1<<6)
	fallback := testModeInfo("1280x720", 1280, 720, 60, 1<<6)

	return &fakeCard{
		caps: map[uint64]uint64{raw.CapDumbBuffer: 1},
		resources: raw.Resources{
			Crtcs:      []uint32{31, 32},
			Encoders:   []uint32{21, 22},
			Connectors: []uint32{11, 12, 13},
		},
		crtcs: map[uint32]raw.Crtc{
			31: {ID: 31},
			32: {ID: 32},
		},
		encoders: map[uint32]raw.Encoder{
			21: {ID: 21, Type: 2, PossibleCrtcs: 0b01},
			22: {ID: 22, Type: 2, PossibleCrtcs: 0b10},
		},
		connectors: map[uint32]raw.Connector{
			11: {
				ID: 11, Type: 11, TypeID: 1,
				Connection: raw.Connected,
				MMWidth:    600, MMHeight: 340,
				Modes:    []raw.ModeInfo{preferred, fallback},
				Encoders: []uint32{21, 22},
			},
			12: {
				ID: 12, Type: 10, TypeID: 1,
				Connection: raw.Disconnected,
				Encoders:   []uint32{22},
			},
			13: {
				ID: 13, Type: 18, TypeID: 1,
				Connection: raw.UnknownConnection,
			},
		},
		planeIDs: []uint32{41, 42, 43},
		planes: map[uint32]raw.Plane{
			41: {ID: 41, PossibleCrtcs: 0b01, Formats: []uint32{uint32(FormatXRGB8888), uint32(FormatARGB8888)}},
			42: {ID: 42, PossibleCrtcs: 0b01, Formats: []uint32{uint32(FormatARGB8888)}},
			43: {ID: 43, PossibleCrtcs: 0b10, Formats: []uint32{uint32(FormatXRGB8888)}},
		},
		propNames: map[uint32]string{
			propActive: "ACTIVE",
			propModeID: "MODE_ID",
			propCrtcID: "CRTC_ID",
			propFBID:   "FB_ID",
			propType:   "type",
			propSrcX:   "SRC_X",
			propSrcY:   "SRC_Y",
			propSrcW:   "SRC_W",
			propSrcH:   "SRC_H",
			propCrtcX:  "CRTC_X",
			propCrtcY:  "CRTC_Y",
			propCrtcW:  "CRTC_W",
			propCrtcH:  "CRTC_H",
		},
		objProps: map[uint32]objectState{
			31: {ids: []uint32{propActive, propModeID}, values: []uint64{0, 0}},
			32: {ids: []uint32{propActive, propModeID}, values: []uint64{0, 0}},
			11: {ids: []uint32{propCrtcID}, values: []uint64{0}},
			12: {ids: []uint32{propCrtcID}, values: []uint64{0}},
			13: {ids: []uint32{propCrtcID}, values: []uint64{0}},
			41: planeProps(uint64(PlaneTypePrimary)),
			42: planeProps(uint64(PlaneTypeOverlay)),
			43: planeProps(uint64(PlaneTypePrimary)),
		},
		dumbs:    map[uint32]raw.DumbBuffer{},
		fbs:      map[uint32]uint32{},
		nextFB:   100,
		blobs:    map[uint32]raw.ModeInfo{},
		nextBlob: 900,
	}
}

func (f *fakeCard) SetClientCap(cap uint64) error {
	f.clientCaps = append(f.clientCaps, cap)
	return nil
}

func (f *fakeCard) GetCap(cap uint64) (uint64, error) {
	return f.caps[cap], nil
}

func (f *fakeCard) Version() (raw.Version, error) {
	return raw.Version{Major: 1, Minor: 6, Name: "fake", Desc: "in-memory card"}, nil
}

func (f *fakeCard) Resources() (*raw.Resources, error) {
	res := f.resources
	return &res, nil
}

func (f *fakeCard) Crtc(id uint32) (*raw.Crtc, error) {
	crtc, ok := f.crtcs[id]
	if !ok {
		return nil, fmt.Errorf("fake: no crtc %d", id)
	}
	return &crtc, nil
}

func (f *fakeCard) Encoder(id uint32) (*raw.Encoder, error) {
	enc, ok := f.encoders[id]
	if !ok {
		return nil, fmt.Errorf("fake: no encoder %d", id)
	}
	return &enc, nil
}

func (f *fakeCard) Connector(id uint32) (*raw.Connector, error) {
	conn, ok := f.connectors[id]
	if !ok {
		return nil, fmt.Errorf("fake: no connector %d", id)
	}
	return &conn, nil
}

func (f *fakeCard) PlaneIDs() ([]uint32, error) {
	return append([]uint32(nil), f.planeIDs...), nil
}

func (f *fakeCard) Plane(id uint32) (*raw.Plane, error) {
	plane, ok := f.planes[id]
	if !ok {
		return nil, fmt.Errorf("fake: no plane %d", id)
	}
	return &plane, nil
}

func (f *fakeCard) Property(id uint32) (*raw.Property, error) {
	name, ok := f.propNames[id]
	if !ok {
		return nil, fmt.Errorf("fake: no property %d", id)
	}
	return &raw.Property{ID: id, Name: name}, nil
}

func (f *fakeCard) ObjectProperties(objType, objID uint32) ([]uint32, []uint64, error) {
	state, ok := f.objProps[objID]
	if !ok {
		return nil, nil, fmt.Errorf("fake: no object %d", objID)
	}
	return append([]uint32(nil), state.ids...), append([]uint64(nil), state.values...), nil
}

func (f *fakeCard) CreateDumb(width, height, bpp uint32) (*raw.DumbBuffer, error) {
	// grant a pitch aligned up to 64 bytes, as real drivers do
	pitch := (width*bpp/8 + 63) &^ 63
	f.nextHandle++
	dumb := raw.DumbBuffer{
		Width: width, Height: height, BPP: bpp,
		Handle: f.nextHandle,
		Pitch:  pitch,
		Size:   uint64(pitch) * uint64(height),
	}
	f.dumbs[dumb.Handle] = dumb
	return &dumb, nil
}

func (f *fakeCard) MapDumb(handle uint32) (uint64, error) {
	if _, ok := f.dumbs[handle]; !ok {
		return 0, fmt.Errorf("fake: no dumb buffer %d", handle)
	}
	return uint64(handle) << 12, nil
}

func (f *fakeCard) DestroyDumb(handle uint32) error {
	f.ops = append(f.ops, fmt.Sprintf("destroydumb %d", handle))
	if _, ok := f.dumbs[handle]; !ok {
		return fmt.Errorf("fake: no dumb buffer %d", handle)
	}
	delete(f.dumbs, handle)
	return nil
}

func (f *fakeCard) MapBuffer(offset, size uint64) ([]byte, error) {
	if f.shortMap {
		return make([]byte, size/2), nil
	}
	return make([]byte, size), nil
}

func (f *fakeCard) UnmapBuffer(data []byte) error {
	f.ops = append(f.ops, "unmap")
	return nil
}

func (f *fakeCard) AddFB(width, height, format, handle, pitch uint32) (uint32, error) {
	if _, ok := f.dumbs[handle]; !ok {
		return 0, fmt.Errorf("fake: no dumb buffer %d", handle)
	}
	f.nextFB++
	f.fbs[f.nextFB] = handle
	return f.nextFB, nil
}

func (f *fakeCard) RmFB(id uint32) error {
	f.ops = append(f.ops, fmt.Sprintf("rmfb %d", id))
	if _, ok := f.fbs[id]; !ok {
		return fmt.Errorf("fake: no framebuffer %d", id)
	}
	delete(f.fbs, id)
	return nil
}

func (f *fakeCard) CreateModeBlob(mode *raw.ModeInfo) (uint32, error) {
	f.nextBlob++
	f.blobs[f.nextBlob] = *mode
	return f.nextBlob, nil
}

func (f *fakeCard) AtomicCommit(objIDs, countProps, propIDs []uint32, propValues []uint64, flags uint32) error {
	f.commits = append(f.commits, fakeCommit{
		objIDs:     append([]uint32(nil), objIDs...),
		countProps: append([]uint32(nil), countProps...),
		propIDs:    append([]uint32(nil), propIDs...),
		propValues: append([]uint64(nil), propValues...),
		flags:      flags,
	})
	return nil
}

func (f *fakeCard) Close() error {
	f.closed = true
	return nil
}
