// Package kms provides structured access to the kernel mode setting
// (KMS) side of the drm/kms subsystem: discovering the display topology
// of a card (connectors, encoders, CRTCs and planes), describing display
// timings, allocating dumb buffers for scanout and committing a new
// visible configuration to the hardware in one atomic transaction.
//
// The package only speaks the atomic API. Legacy (SetCrtc based) mode
// setting is out of scope, as are rendering, compositing and vblank
// scheduling.
package kms
