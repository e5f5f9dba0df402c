package kms

// Format is a fourcc pixel format code. Formats are treated as opaque
// tokens: the package passes them between the kernel and the caller
// without interpreting their layout.
type Format uint32

const (
	// FormatRGB888 is [23:0] R:G:B 8:8:8 little endian ('RG24').
	FormatRGB888 Format = 0x34324752

	// FormatXRGB8888 is [31:0] x:R:G:B 8:8:8:8 little endian ('XR24').
	FormatXRGB8888 Format = 0x34325258

	// FormatARGB8888 is [31:0] A:R:G:B 8:8:8:8 little endian ('AR24').
	FormatARGB8888 Format = 0x34325241
)

func (f Format) String() string {
	return string([]byte{
		byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24),
	})
}
