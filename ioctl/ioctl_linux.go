// Package ioctl builds ioctl request codes and performs the raw system
// call. Only the generic encoding used by most architectures is
// implemented; see include/ARCH/ioctl.h for the exceptions (powerpc for
// instance uses 3 bits for the direction and 13 for the size).
package ioctl

import (
	"fmt"
	"os"
	"syscall"
)

// Request code layout on generic architectures:
//
//	bits    meaning
//	31-30   direction: 00 none, 01 write, 10 read, 11 read/write
//	29-16   size of the argument struct
//	15-8    ascii character unique to the driver
//	7-0     function number
//
// So 0x82187201 is a read with an argument of 0x218 bytes, driver
// character 'r', function 1.
// Source: https://www.kernel.org/doc/Documentation/ioctl/ioctl-decoding.txt

const (
	None  = uint8(0x0)
	Write = uint8(0x1)
	Read  = uint8(0x2)
)

// NewCode encodes an ioctl request code from the direction, the size of
// the argument struct, the driver character and the function number. It
// panics on values that cannot be encoded, since every call site passes
// compile-time constants.
func NewCode(dir uint8, sz uint16, uniq, fn uint8) uint32 {
	if dir > Write|Read {
		panic(fmt.Errorf("invalid ioctl direction: %d", dir))
	}

	if sz > 2<<14 {
		panic(fmt.Errorf("invalid ioctl size value: %d", sz))
	}

	var code uint32
	code |= uint32(dir) << 30
	code |= uint32(sz) << 16 // sz has 14 usable bits
	code |= uint32(uniq) << 8
	code |= uint32(fn)
	return code
}

// Do performs the ioctl system call on fd with the given request code
// and argument pointer. The returned error wraps the errno reported by
// the kernel.
func Do(fd, cmd, ptr uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, cmd, ptr)
	if errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}
