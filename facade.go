package kms

import (
	"fmt"
	"os"

	"launchpad.net/gommap"

	"github.com/NeowayLabs/kms/raw"
)

// facade is the capability surface the resource graph is built on. The
// only production implementation is card, backed by an open /dev/dri
// node; tests substitute an in-memory fake.
type facade interface {
	SetClientCap(cap uint64) error
	GetCap(cap uint64) (uint64, error)
	Version() (raw.Version, error)

	Resources() (*raw.Resources, error)
	Crtc(id uint32) (*raw.Crtc, error)
	Encoder(id uint32) (*raw.Encoder, error)
	Connector(id uint32) (*raw.Connector, error)
	PlaneIDs() ([]uint32, error)
	Plane(id uint32) (*raw.Plane, error)

	Property(id uint32) (*raw.Property, error)
	ObjectProperties(objType, objID uint32) ([]uint32, []uint64, error)

	CreateDumb(width, height, bpp uint32) (*raw.DumbBuffer, error)
	MapDumb(handle uint32) (uint64, error)
	DestroyDumb(handle uint32) error
	MapBuffer(offset, size uint64) ([]byte, error)
	UnmapBuffer(data []byte) error

	AddFB(width, height, format, handle, pitch uint32) (uint32, error)
	RmFB(id uint32) error

	CreateModeBlob(mode *raw.ModeInfo) (uint32, error)
	AtomicCommit(objIDs, countProps, propIDs []uint32, propValues []uint64, flags uint32) error

	Close() error
}

// card implements facade on top of an open DRM card node.
type card struct {
	file *os.File
}

func openCard(path string) (*card, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening card: %w", err)
	}
	return &card{file: file}, nil
}

func (c *card) SetClientCap(cap uint64) error { return raw.SetClientCap(c.file, cap) }
func (c *card) GetCap(cap uint64) (uint64, error) {
	return raw.GetCap(c.file, cap)
}
func (c *card) Version() (raw.Version, error) { return raw.GetVersion(c.file) }

func (c *card) Resources() (*raw.Resources, error) { return raw.GetResources(c.file) }
func (c *card) Crtc(id uint32) (*raw.Crtc, error) { return raw.GetCrtc(c.file, id) }
func (c *card) Encoder(id uint32) (*raw.Encoder, error) {
	return raw.GetEncoder(c.file, id)
}
func (c *card) Connector(id uint32) (*raw.Connector, error) {
	return raw.GetConnector(c.file, id)
}
func (c *card) PlaneIDs() ([]uint32, error)       { return raw.GetPlaneResources(c.file) }
func (c *card) Plane(id uint32) (*raw.Plane, error) { return raw.GetPlane(c.file, id) }

func (c *card) Property(id uint32) (*raw.Property, error) {
	return raw.GetProperty(c.file, id)
}
func (c *card) ObjectProperties(objType, objID uint32) ([]uint32, []uint64, error) {
	return raw.GetObjectProperties(c.file, objType, objID)
}

func (c *card) CreateDumb(width, height, bpp uint32) (*raw.DumbBuffer, error) {
	return raw.CreateDumb(c.file, width, height, bpp)
}
func (c *card) MapDumb(handle uint32) (uint64, error) { return raw.MapDumb(c.file, handle) }
func (c *card) DestroyDumb(handle uint32) error       { return raw.DestroyDumb(c.file, handle) }

func (c *card) MapBuffer(offset, size uint64) ([]byte, error) {
	data, err := gommap.MapAt(0, c.file.Fd(), int64(offset), int64(size),
		gommap.PROT_READ|gommap.PROT_WRITE, gommap.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return data, nil
}

func (c *card) UnmapBuffer(data []byte) error {
	return gommap.MMap(data).UnsafeUnmap()
}

func (c *card) AddFB(width, height, format, handle, pitch uint32) (uint32, error) {
	return raw.AddFB2(c.file, width, height, format, handle, pitch)
}
func (c *card) RmFB(id uint32) error { return raw.RmFB(c.file, id) }

func (c *card) CreateModeBlob(mode *raw.ModeInfo) (uint32, error) {
	return raw.CreateModeBlob(c.file, mode)
}

func (c *card) AtomicCommit(objIDs, countProps, propIDs []uint32, propValues []uint64, flags uint32) error {
	return raw.AtomicCommit(c.file, objIDs, countProps, propIDs, propValues, flags)
}

func (c *card) Close() error { return c.file.Close() }
