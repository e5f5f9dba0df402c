package kms

import "github.com/NeowayLabs/kms/raw"

// Version identifies the driver behind a card (e.g. i915, vc4).
type Version = raw.Version

// Version queries the driver name, version and description.
func (d *Device) Version() (Version, error) {
	fd, err := d.facade()
	if err != nil {
		return Version{}, err
	}
	return fd.Version()
}
