package kms

import "errors"

var (
	// ErrNotFound is returned when a named property does not exist on
	// an object, or when no compatible encoder or CRTC exists for a
	// connector.
	ErrNotFound = errors.New("kms: not found")

	// ErrInvalidData is returned when a value reported by the kernel
	// does not decode into any known tag, or when a count overflows
	// the width the kernel ABI requires.
	ErrInvalidData = errors.New("kms: invalid data from device")

	// ErrDeviceClosed is returned by any operation attempted through a
	// handle whose owning Device has been closed.
	ErrDeviceClosed = errors.New("kms: device closed")
)
