package kms

import (
	"errors"
	"fmt"
)

// Buffer is a mapped scanout memory allocation. It must be turned into
// a Framebuffer before the device can display it.
//
// The geometry is whatever the kernel granted: width, height, pitch
// and size can all exceed the requested values to satisfy hardware
// alignment.
type Buffer struct {
	dev *Device

	width, height uint32
	pitch         uint32
	size          uint64

	handle   uint32
	data     []byte
	released bool
}

func newBuffer(dev *Device, width, height, bpp uint32) (*Buffer, error) {
	fd, err := dev.facade()
	if err != nil {
		return nil, err
	}

	dumb, err := fd.CreateDumb(width, height, bpp)
	if err != nil {
		return nil, fmt.Errorf("allocating %dx%d@%d buffer: %w", width, height, bpp, err)
	}

	offset, err := fd.MapDumb(dumb.Handle)
	if err != nil {
		fd.DestroyDumb(dumb.Handle)
		return nil, fmt.Errorf("requesting map offset: %w", err)
	}

	data, err := fd.MapBuffer(offset, dumb.Size)
	if err != nil {
		fd.DestroyDumb(dumb.Handle)
		return nil, fmt.Errorf("mapping buffer: %w", err)
	}
	if uint64(len(data)) < dumb.Size {
		fd.UnmapBuffer(data)
		fd.DestroyDumb(dumb.Handle)
		return nil, fmt.Errorf("mapping returned %d of %d bytes: %w",
			len(data), dumb.Size, ErrInvalidData)
	}

	dev.log.Debug().
		Uint32("handle", dumb.Handle).
		Uint32("width", dumb.Width).
		Uint32("height", dumb.Height).
		Uint32("pitch", dumb.Pitch).
		Uint64("size", dumb.Size).
		Msg("allocated dumb buffer")

	return &Buffer{
		dev:    dev,
		width:  dumb.Width,
		height: dumb.Height,
		pitch:  dumb.Pitch,
		size:   dumb.Size,
		handle: dumb.Handle,
		data:   data,
	}, nil
}

// Width returns the granted width in pixels.
func (b *Buffer) Width() uint32 { return b.width }

// Height returns the granted height in lines.
func (b *Buffer) Height() uint32 { return b.height }

// Pitch returns the granted line stride in bytes.
func (b *Buffer) Pitch() uint32 { return b.pitch }

// Size returns the granted allocation size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Data returns the mapped memory. Writes land in device memory and
// become visible on the next scanout of a framebuffer backed by this
// buffer.
func (b *Buffer) Data() []byte { return b.data }

// ToFramebuffer registers the buffer as a scanout source with the
// given pixel format. Ownership of the buffer moves to the returned
// Framebuffer: close the Framebuffer, not the Buffer.
func (b *Buffer) ToFramebuffer(format Format) (*Framebuffer, error) {
	fd, err := b.dev.facade()
	if err != nil {
		return nil, err
	}

	id, err := fd.AddFB(b.width, b.height, uint32(format), b.handle, b.pitch)
	if err != nil {
		return nil, fmt.Errorf("registering framebuffer: %w", err)
	}

	b.dev.log.Debug().
		Uint32("fb", id).
		Uint32("handle", b.handle).
		Stringer("format", format).
		Msg("registered framebuffer")

	return &Framebuffer{Buffer: b, id: id}, nil
}

// Close unmaps the buffer and releases the device side allocation.
// Closing is best effort: the returned error is informational, there
// is no recovery beyond reporting it.
func (b *Buffer) Close() error {
	if b.released {
		return nil
	}
	b.released = true

	fd, err := b.dev.facade()
	if err != nil {
		return err
	}

	unmapErr := fd.UnmapBuffer(b.data)
	b.data = nil
	return errors.Join(unmapErr, fd.DestroyDumb(b.handle))
}

// Framebuffer is a registered scanout image source. It owns the Buffer
// backing it; the buffer's accessors are promoted, so the framebuffer
// can be written through Data directly.
type Framebuffer struct {
	*Buffer
	id       uint32
	released bool
}

// ID returns the framebuffer id, the value carried by a plane's FB_ID
// property.
func (f *Framebuffer) ID() uint32 { return f.id }

// Close unregisters the framebuffer and then releases the underlying
// buffer. The order matters: the scanout id must go before the memory
// behind it.
func (f *Framebuffer) Close() error {
	if f.released {
		return nil
	}
	f.released = true

	fd, err := f.dev.facade()
	if err != nil {
		return err
	}

	return errors.Join(fd.RmFB(f.id), f.Buffer.Close())
}
