// Package raw implements the ioctl request/response layer of the DRM
// mode setting API. Every call takes the open card file, fills the
// kernel argument struct and performs the ioctl, growing result slices
// with the two-call count/fetch protocol where the kernel requires it.
//
// Only the calls needed by the atomic API are implemented.
package raw

import (
	"bytes"
	"os"
	"unsafe"

	"github.com/NeowayLabs/kms/ioctl"
)

const IOCTLBase = 'd'

const (
	DisplayModeLen = 32
	PropNameLen    = 32
)

// Client capabilities declared with SetClientCap.
const (
	ClientCapStereo3D = iota + 1
	ClientCapUniversalPlanes
	ClientCapAtomic
	ClientCapAspectRatio
	ClientCapWritebackConnectors
)

// Device capabilities queried with GetCap.
const (
	CapDumbBuffer = iota + 1
	CapVBlankHighCRTC
	CapDumbPreferredDepth
	CapDumbPreferShadow
	CapPrime
	CapTimestampMonotonic
	CapAsyncPageFlip
	CapCursorWidth
	CapCursorHeight

	CapAddFB2Modifiers = 0x10
)

// Object type tags used by the property and atomic ioctls.
const (
	ObjectAny       = 0
	ObjectProperty  = 0xb0b0b0b0
	ObjectBlob      = 0xbbbbbbbb
	ObjectConnector = 0xc0c0c0c0
	ObjectCrtc      = 0xcccccccc
	ObjectMode      = 0xdededede
	ObjectEncoder   = 0xe0e0e0e0
	ObjectPlane     = 0xeeeeeeee
	ObjectFB        = 0xfbfbfbfb
)

// Connector connection state.
const (
	Connected         = 1
	Disconnected      = 2
	UnknownConnection = 3
)

// Atomic commit flags.
const (
	AtomicTestOnly      = 0x0100
	AtomicNonblock      = 0x0200
	AtomicAllowModeset  = 0x0400
	AtomicPageFlipEvent = 0x0001
)

type (
	// ModeInfo mirrors struct drm_mode_modeinfo. It is both a query
	// result and the payload of MODE_ID property blobs, so its layout
	// must match the kernel exactly.
	ModeInfo struct {
		Clock                                         uint32
		Hdisplay, HsyncStart, HsyncEnd, Htotal, Hskew uint16
		Vdisplay, VsyncStart, VsyncEnd, Vtotal, Vscan uint16

		Vrefresh uint32

		Flags uint32
		Type  uint32
		Name  [DisplayModeLen]uint8
	}

	sysVersion struct {
		major   int32
		minor   int32
		patch   int32
		namelen int64
		name    uint64
		datelen int64
		date    uint64
		desclen int64
		desc    uint64
	}

	sysGetCap struct {
		cap uint64
		val uint64
	}

	sysSetClientCap struct {
		capability uint64
		value      uint64
	}

	sysResources struct {
		fbIDPtr              uint64
		crtcIDPtr            uint64
		connectorIDPtr       uint64
		encoderIDPtr         uint64
		countFbs             uint32
		countCrtcs           uint32
		countConnectors      uint32
		countEncoders        uint32
		minWidth, maxWidth   uint32
		minHeight, maxHeight uint32
	}

	sysCrtc struct {
		setConnectorsPtr uint64
		countConnectors  uint32

		id   uint32
		fbID uint32

		x, y uint32 // position on the framebuffer

		gammaSize uint32
		modeValid uint32
		mode      ModeInfo
	}

	sysGetEncoder struct {
		id  uint32
		typ uint32

		crtcID uint32

		possibleCrtcs  uint32
		possibleClones uint32
	}

	sysGetConnector struct {
		encodersPtr   uint64
		modesPtr      uint64
		propsPtr      uint64
		propValuesPtr uint64

		countModes    uint32
		countProps    uint32
		countEncoders uint32

		encoderID       uint32 // currently bound encoder
		id              uint32
		connectorType   uint32
		connectorTypeID uint32

		connection        uint32
		mmWidth, mmHeight uint32 // physical size in millimeters
		subpixel          uint32

		pad uint32
	}

	sysGetPlaneRes struct {
		planeIDPtr  uint64
		countPlanes uint32
	}

	sysGetPlane struct {
		id               uint32
		crtcID           uint32
		fbID             uint32
		possibleCrtcs    uint32
		gammaSize        uint32
		countFormatTypes uint32
		formatTypePtr    uint64
	}

	sysGetProperty struct {
		valuesPtr   uint64
		enumBlobPtr uint64

		id    uint32
		flags uint32
		name  [PropNameLen]uint8

		countValues    uint32
		countEnumBlobs uint32
	}

	sysObjGetProperties struct {
		propsPtr      uint64
		propValuesPtr uint64
		countProps    uint32
		objID         uint32
		objType       uint32
	}

	sysCreateDumb struct {
		height, width uint32
		bpp           uint32
		flags         uint32

		// returned values
		handle uint32
		pitch  uint32
		size   uint64
	}

	sysMapDumb struct {
		handle uint32
		pad    uint32

		// fake offset for the subsequent mmap call; fixed-size for
		// 32/64-bit compatibility
		offset uint64
	}

	sysDestroyDumb struct {
		handle uint32
	}

	sysFBCmd2 struct {
		fbID          uint32
		width, height uint32
		pixelFormat   uint32
		flags         uint32

		handles  [4]uint32
		pitches  [4]uint32
		offsets  [4]uint32
		modifier [4]uint64
	}

	sysRmFB struct {
		handle uint32
	}

	sysAtomic struct {
		flags         uint32
		countObjs     uint32
		objsPtr       uint64
		countPropsPtr uint64
		propsPtr      uint64
		propValuesPtr uint64
		reserved      uint64
		userData      uint64
	}

	sysCreateBlob struct {
		data   uint64
		length uint32
		blobID uint32
	}

	// Version describes the driver behind the card.
	Version struct {
		Major, Minor, Patch int32
		Name                string
		Date                string
		Desc                string
	}

	// Resources is the card-level resource enumeration.
	Resources struct {
		Fbs        []uint32
		Crtcs      []uint32
		Connectors []uint32
		Encoders   []uint32

		MinWidth, MaxWidth   uint32
		MinHeight, MaxHeight uint32
	}

	Crtc struct {
		ID        uint32
		BufferID  uint32
		X, Y      uint32
		GammaSize uint32
		ModeValid uint32
		Mode      ModeInfo
	}

	Encoder struct {
		ID   uint32
		Type uint32

		CrtcID uint32

		PossibleCrtcs  uint32
		PossibleClones uint32
	}

	Connector struct {
		ID        uint32
		EncoderID uint32
		Type      uint32
		TypeID    uint32

		Connection        uint32
		MMWidth, MMHeight uint32
		Subpixel          uint32

		Modes    []ModeInfo
		Encoders []uint32
	}

	Plane struct {
		ID            uint32
		CrtcID        uint32
		FbID          uint32
		PossibleCrtcs uint32
		GammaSize     uint32

		Formats []uint32
	}

	Property struct {
		ID    uint32
		Name  string
		Flags uint32
	}

	DumbBuffer struct {
		Width, Height uint32
		BPP           uint32
		Handle        uint32
		Pitch         uint32
		Size          uint64
	}
)

var (
	// DRM_IOWR(0x00, struct drm_version)
	IOCTLVersion = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysVersion{})), IOCTLBase, 0x00)

	// DRM_IOWR(0x0c, struct drm_get_cap)
	IOCTLGetCap = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetCap{})), IOCTLBase, 0x0c)

	// DRM_IOW(0x0d, struct drm_set_client_cap)
	IOCTLSetClientCap = ioctl.NewCode(ioctl.Write,
		uint16(unsafe.Sizeof(sysSetClientCap{})), IOCTLBase, 0x0d)

	// DRM_IOWR(0xA0, struct drm_mode_card_res)
	IOCTLModeResources = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysResources{})), IOCTLBase, 0xA0)

	// DRM_IOWR(0xA1, struct drm_mode_crtc)
	IOCTLModeGetCrtc = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCrtc{})), IOCTLBase, 0xA1)

	// DRM_IOWR(0xA6, struct drm_mode_get_encoder)
	IOCTLModeGetEncoder = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetEncoder{})), IOCTLBase, 0xA6)

	// DRM_IOWR(0xA7, struct drm_mode_get_connector)
	IOCTLModeGetConnector = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetConnector{})), IOCTLBase, 0xA7)

	// DRM_IOWR(0xAA, struct drm_mode_get_property)
	IOCTLModeGetProperty = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetProperty{})), IOCTLBase, 0xAA)

	// DRM_IOWR(0xAF, unsigned int)
	IOCTLModeRmFB = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(uint32(0))), IOCTLBase, 0xAF)

	// DRM_IOWR(0xB2, struct drm_mode_create_dumb)
	IOCTLModeCreateDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCreateDumb{})), IOCTLBase, 0xB2)

	// DRM_IOWR(0xB3, struct drm_mode_map_dumb)
	IOCTLModeMapDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysMapDumb{})), IOCTLBase, 0xB3)

	// DRM_IOWR(0xB4, struct drm_mode_destroy_dumb)
	IOCTLModeDestroyDumb = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysDestroyDumb{})), IOCTLBase, 0xB4)

	// DRM_IOWR(0xB5, struct drm_mode_get_plane_res)
	IOCTLModeGetPlaneResources = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetPlaneRes{})), IOCTLBase, 0xB5)

	// DRM_IOWR(0xB6, struct drm_mode_get_plane)
	IOCTLModeGetPlane = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetPlane{})), IOCTLBase, 0xB6)

	// DRM_IOWR(0xB8, struct drm_mode_fb_cmd2)
	IOCTLModeAddFB2 = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysFBCmd2{})), IOCTLBase, 0xB8)

	// DRM_IOWR(0xB9, struct drm_mode_obj_get_properties)
	IOCTLModeObjGetProperties = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysObjGetProperties{})), IOCTLBase, 0xB9)

	// DRM_IOWR(0xBC, struct drm_mode_atomic)
	IOCTLModeAtomic = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysAtomic{})), IOCTLBase, 0xBC)

	// DRM_IOWR(0xBD, struct drm_mode_create_blob)
	IOCTLModeCreatePropBlob = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysCreateBlob{})), IOCTLBase, 0xBD)
)

func do(file *os.File, code uint32, arg unsafe.Pointer) error {
	return ioctl.Do(uintptr(file.Fd()), uintptr(code), uintptr(arg))
}

func slicePtr32(s []uint32) uint64 {
	if len(s) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&s[0])))
}

func slicePtr64(s []uint64) uint64 {
	if len(s) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&s[0])))
}

func cstr(b []uint8) string {
	return string(bytes.TrimRight(b, "\x00"))
}

// The kernel updates the counts on the data call. On hotplug a count
// can grow past what was allocated after the sizing call; never index
// beyond the allocation.
func clamp(n uint32, allocated int) uint32 {
	if int(n) > allocated {
		return uint32(allocated)
	}
	return n
}

// GetVersion queries the driver name, version and description. The
// string buffers require a sizing call before the data call.
func GetVersion(file *os.File) (Version, error) {
	var name, date, desc []byte

	v := &sysVersion{}
	if err := do(file, IOCTLVersion, unsafe.Pointer(v)); err != nil {
		return Version{}, err
	}

	if v.namelen > 0 {
		name = make([]byte, v.namelen+1)
		v.name = uint64(uintptr(unsafe.Pointer(&name[0])))
	}
	if v.datelen > 0 {
		date = make([]byte, v.datelen+1)
		v.date = uint64(uintptr(unsafe.Pointer(&date[0])))
	}
	if v.desclen > 0 {
		desc = make([]byte, v.desclen+1)
		v.desc = uint64(uintptr(unsafe.Pointer(&desc[0])))
	}

	if err := do(file, IOCTLVersion, unsafe.Pointer(v)); err != nil {
		return Version{}, err
	}

	return Version{
		Major: v.major,
		Minor: v.minor,
		Patch: v.patch,
		Name:  cstr(name[:v.namelen]),
		Date:  cstr(date[:v.datelen]),
		Desc:  cstr(desc[:v.desclen]),
	}, nil
}

// GetCap queries a device capability.
func GetCap(file *os.File, cap uint64) (uint64, error) {
	c := &sysGetCap{cap: cap}
	if err := do(file, IOCTLGetCap, unsafe.Pointer(c)); err != nil {
		return 0, err
	}
	return c.val, nil
}

// SetClientCap declares a client capability to the kernel.
func SetClientCap(file *os.File, cap uint64) error {
	c := &sysSetClientCap{capability: cap, value: 1}
	return do(file, IOCTLSetClientCap, unsafe.Pointer(c))
}

// GetResources enumerates the card's framebuffers, CRTCs, connectors
// and encoders. The counts can change between the sizing call and the
// data call on hotplug; the shorter of the two is what the kernel
// filled in, and the caller gets whatever was reported.
func GetResources(file *os.File) (*Resources, error) {
	res := &sysResources{}
	if err := do(file, IOCTLModeResources, unsafe.Pointer(res)); err != nil {
		return nil, err
	}

	var fbs, crtcs, connectors, encoders []uint32

	if res.countFbs > 0 {
		fbs = make([]uint32, res.countFbs)
		res.fbIDPtr = slicePtr32(fbs)
	}
	if res.countCrtcs > 0 {
		crtcs = make([]uint32, res.countCrtcs)
		res.crtcIDPtr = slicePtr32(crtcs)
	}
	if res.countConnectors > 0 {
		connectors = make([]uint32, res.countConnectors)
		res.connectorIDPtr = slicePtr32(connectors)
	}
	if res.countEncoders > 0 {
		encoders = make([]uint32, res.countEncoders)
		res.encoderIDPtr = slicePtr32(encoders)
	}

	if err := do(file, IOCTLModeResources, unsafe.Pointer(res)); err != nil {
		return nil, err
	}

	return &Resources{
		Fbs:        fbs[:clamp(res.countFbs, len(fbs))],
		Crtcs:      crtcs[:clamp(res.countCrtcs, len(crtcs))],
		Connectors: connectors[:clamp(res.countConnectors, len(connectors))],
		Encoders:   encoders[:clamp(res.countEncoders, len(encoders))],
		MinWidth:   res.minWidth,
		MaxWidth:   res.maxWidth,
		MinHeight:  res.minHeight,
		MaxHeight:  res.maxHeight,
	}, nil
}

// GetCrtc queries a single CRTC.
func GetCrtc(file *os.File, id uint32) (*Crtc, error) {
	crtc := &sysCrtc{id: id}
	if err := do(file, IOCTLModeGetCrtc, unsafe.Pointer(crtc)); err != nil {
		return nil, err
	}

	return &Crtc{
		ID:        crtc.id,
		BufferID:  crtc.fbID,
		X:         crtc.x,
		Y:         crtc.y,
		GammaSize: crtc.gammaSize,
		ModeValid: crtc.modeValid,
		Mode:      crtc.mode,
	}, nil
}

// GetEncoder queries a single encoder.
func GetEncoder(file *os.File, id uint32) (*Encoder, error) {
	enc := &sysGetEncoder{id: id}
	if err := do(file, IOCTLModeGetEncoder, unsafe.Pointer(enc)); err != nil {
		return nil, err
	}

	return &Encoder{
		ID:             enc.id,
		Type:           enc.typ,
		CrtcID:         enc.crtcID,
		PossibleCrtcs:  enc.possibleCrtcs,
		PossibleClones: enc.possibleClones,
	}, nil
}

// GetConnector queries a single connector, including its currently
// probed mode list and the ids of the encoders that can drive it. The
// probe is live: the connection state and the mode list reflect what
// the sink reports at call time.
func GetConnector(file *os.File, id uint32) (*Connector, error) {
	conn := &sysGetConnector{id: id}
	if err := do(file, IOCTLModeGetConnector, unsafe.Pointer(conn)); err != nil {
		return nil, err
	}

	var (
		modes    []ModeInfo
		encoders []uint32
		props    []uint32
		propVals []uint64
	)

	if conn.countModes > 0 {
		modes = make([]ModeInfo, conn.countModes)
		conn.modesPtr = uint64(uintptr(unsafe.Pointer(&modes[0])))
	}
	if conn.countEncoders > 0 {
		encoders = make([]uint32, conn.countEncoders)
		conn.encodersPtr = slicePtr32(encoders)
	}
	if conn.countProps > 0 {
		props = make([]uint32, conn.countProps)
		conn.propsPtr = slicePtr32(props)
		propVals = make([]uint64, conn.countProps)
		conn.propValuesPtr = slicePtr64(propVals)
	}

	if err := do(file, IOCTLModeGetConnector, unsafe.Pointer(conn)); err != nil {
		return nil, err
	}

	return &Connector{
		ID:         conn.id,
		EncoderID:  conn.encoderID,
		Type:       conn.connectorType,
		TypeID:     conn.connectorTypeID,
		Connection: conn.connection,
		MMWidth:    conn.mmWidth,
		MMHeight:   conn.mmHeight,
		Subpixel:   conn.subpixel,
		Modes:      modes[:clamp(conn.countModes, len(modes))],
		Encoders:   encoders[:clamp(conn.countEncoders, len(encoders))],
	}, nil
}

// GetPlaneResources enumerates the plane ids of the card. Requires the
// universal planes client capability to also report primary and cursor
// planes.
func GetPlaneResources(file *os.File) ([]uint32, error) {
	res := &sysGetPlaneRes{}
	if err := do(file, IOCTLModeGetPlaneResources, unsafe.Pointer(res)); err != nil {
		return nil, err
	}

	var planes []uint32
	if res.countPlanes > 0 {
		planes = make([]uint32, res.countPlanes)
		res.planeIDPtr = slicePtr32(planes)
	}

	if err := do(file, IOCTLModeGetPlaneResources, unsafe.Pointer(res)); err != nil {
		return nil, err
	}

	return planes[:clamp(res.countPlanes, len(planes))], nil
}

// GetPlane queries a single plane, including its supported formats.
func GetPlane(file *os.File, id uint32) (*Plane, error) {
	plane := &sysGetPlane{id: id}
	if err := do(file, IOCTLModeGetPlane, unsafe.Pointer(plane)); err != nil {
		return nil, err
	}

	var formats []uint32
	if plane.countFormatTypes > 0 {
		formats = make([]uint32, plane.countFormatTypes)
		plane.formatTypePtr = slicePtr32(formats)
	}

	if err := do(file, IOCTLModeGetPlane, unsafe.Pointer(plane)); err != nil {
		return nil, err
	}

	return &Plane{
		ID:            plane.id,
		CrtcID:        plane.crtcID,
		FbID:          plane.fbID,
		PossibleCrtcs: plane.possibleCrtcs,
		GammaSize:     plane.gammaSize,
		Formats:       formats[:clamp(plane.countFormatTypes, len(formats))],
	}, nil
}

// GetProperty resolves a property id to its name and flags.
func GetProperty(file *os.File, id uint32) (*Property, error) {
	prop := &sysGetProperty{id: id}
	if err := do(file, IOCTLModeGetProperty, unsafe.Pointer(prop)); err != nil {
		return nil, err
	}

	return &Property{
		ID:    prop.id,
		Name:  cstr(prop.name[:]),
		Flags: prop.flags,
	}, nil
}

// GetObjectProperties lists the (property id, value) pairs currently
// attached to the object identified by (objType, objID).
func GetObjectProperties(file *os.File, objType, objID uint32) ([]uint32, []uint64, error) {
	req := &sysObjGetProperties{objType: objType, objID: objID}
	if err := do(file, IOCTLModeObjGetProperties, unsafe.Pointer(req)); err != nil {
		return nil, nil, err
	}

	var (
		ids    []uint32
		values []uint64
	)
	if req.countProps > 0 {
		ids = make([]uint32, req.countProps)
		req.propsPtr = slicePtr32(ids)
		values = make([]uint64, req.countProps)
		req.propValuesPtr = slicePtr64(values)
	}

	if err := do(file, IOCTLModeObjGetProperties, unsafe.Pointer(req)); err != nil {
		return nil, nil, err
	}

	n := clamp(req.countProps, len(ids))
	return ids[:n], values[:n], nil
}

// CreateDumb allocates a dumb buffer of the requested geometry. The
// kernel is free to return a larger width, height, pitch and size than
// requested to satisfy hardware alignment; callers must use the
// returned values.
func CreateDumb(file *os.File, width, height, bpp uint32) (*DumbBuffer, error) {
	buf := &sysCreateDumb{width: width, height: height, bpp: bpp}
	if err := do(file, IOCTLModeCreateDumb, unsafe.Pointer(buf)); err != nil {
		return nil, err
	}

	return &DumbBuffer{
		Width:  buf.width,
		Height: buf.height,
		BPP:    buf.bpp,
		Handle: buf.handle,
		Pitch:  buf.pitch,
		Size:   buf.size,
	}, nil
}

// MapDumb returns the fake offset to mmap the dumb buffer at.
func MapDumb(file *os.File, handle uint32) (uint64, error) {
	req := &sysMapDumb{handle: handle}
	if err := do(file, IOCTLModeMapDumb, unsafe.Pointer(req)); err != nil {
		return 0, err
	}
	return req.offset, nil
}

// DestroyDumb releases the device memory behind a dumb buffer.
func DestroyDumb(file *os.File, handle uint32) error {
	return do(file, IOCTLModeDestroyDumb, unsafe.Pointer(&sysDestroyDumb{handle: handle}))
}

// AddFB2 registers a buffer as a framebuffer with an explicit pixel
// format and returns the framebuffer id.
func AddFB2(file *os.File, width, height, pixelFormat, handle, pitch uint32) (uint32, error) {
	fb := &sysFBCmd2{
		width:       width,
		height:      height,
		pixelFormat: pixelFormat,
	}
	fb.handles[0] = handle
	fb.pitches[0] = pitch

	if err := do(file, IOCTLModeAddFB2, unsafe.Pointer(fb)); err != nil {
		return 0, err
	}
	return fb.fbID, nil
}

// RmFB unregisters a framebuffer.
func RmFB(file *os.File, id uint32) error {
	return do(file, IOCTLModeRmFB, unsafe.Pointer(&sysRmFB{handle: id}))
}

// CreateModeBlob stores a mode timing struct as a kernel blob and
// returns the blob id, suitable as a MODE_ID property value.
func CreateModeBlob(file *os.File, mode *ModeInfo) (uint32, error) {
	blob := &sysCreateBlob{
		data:   uint64(uintptr(unsafe.Pointer(mode))),
		length: uint32(unsafe.Sizeof(*mode)),
	}
	if err := do(file, IOCTLModeCreatePropBlob, unsafe.Pointer(blob)); err != nil {
		return 0, err
	}
	return blob.blobID, nil
}

// AtomicCommit performs one atomic transaction. objIDs lists each
// object once, countProps gives the number of consecutive entries of
// propIDs/propValues belonging to that object; the slices must be
// mutually consistent. The kernel applies every write or none.
func AtomicCommit(file *os.File, objIDs, countProps, propIDs []uint32, propValues []uint64, flags uint32) error {
	req := &sysAtomic{
		flags:         flags,
		countObjs:     uint32(len(objIDs)),
		objsPtr:       slicePtr32(objIDs),
		countPropsPtr: slicePtr32(countProps),
		propsPtr:      slicePtr32(propIDs),
		propValuesPtr: slicePtr64(propValues),
	}
	return do(file, IOCTLModeAtomic, unsafe.Pointer(req))
}
