package kms

import "fmt"

// ObjectType is the kernel tag identifying the kind of a mode object.
type ObjectType uint32

const (
	ObjectTypeCrtc      ObjectType = 0xcccccccc
	ObjectTypeConnector ObjectType = 0xc0c0c0c0
	ObjectTypeEncoder   ObjectType = 0xe0e0e0e0
	ObjectTypePlane     ObjectType = 0xeeeeeeee
)

// Object is implemented by every hardware addressable entity: CRTCs,
// connectors, encoders and planes.
type Object interface {
	// Device returns the owning Device.
	Device() *Device

	// ObjectID returns the kernel assigned object id.
	ObjectID() uint32

	// ObjectType returns the kernel object type tag.
	ObjectType() ObjectType

	// Properties lists the properties currently attached to the
	// object. The list is queried from the kernel on every call; see
	// the object documentation.
	Properties() ([]Property, error)

	// Property returns the first property with the given name, or nil
	// when the object has no such property.
	Property(name string) (*Property, error)

	// PropertyID resolves a property name to its id. ok is false when
	// the object has no property with that name.
	PropertyID(name string) (id uint32, ok bool, err error)
}

// object is the shared core embedded by every node type. It carries the
// back-reference to the owning Device and implements the generic
// property introspection.
type object struct {
	dev *Device
	id  uint32
	typ ObjectType
}

func (o *object) Device() *Device        { return o.dev }
func (o *object) ObjectID() uint32       { return o.id }
func (o *object) ObjectType() ObjectType { return o.typ }

// Properties queries the kernel for the (id, value) pairs attached to
// the object and resolves each id to its name. Property ids are only
// stable for the lifetime of the query, and the attached set can change
// at runtime (e.g. when a blob is created), so nothing is cached:
// callers issuing several lookups pay the enumeration each time.
func (o *object) Properties() ([]Property, error) {
	fd, err := o.dev.facade()
	if err != nil {
		return nil, err
	}

	ids, values, err := fd.ObjectProperties(uint32(o.typ), o.id)
	if err != nil {
		return nil, fmt.Errorf("listing properties of object %d: %w", o.id, err)
	}

	props := make([]Property, 0, len(ids))
	for i, id := range ids {
		raw, err := fd.Property(id)
		if err != nil {
			return nil, fmt.Errorf("resolving property %d: %w", id, err)
		}

		props = append(props, Property{
			ObjectID: o.id,
			ID:       id,
			Name:     raw.Name,
			Value:    values[i],
		})
	}

	return props, nil
}

func (o *object) Property(name string) (*Property, error) {
	props, err := o.Properties()
	if err != nil {
		return nil, err
	}

	for i := range props {
		if props[i].Name == name {
			return &props[i], nil
		}
	}
	return nil, nil
}

func (o *object) PropertyID(name string) (uint32, bool, error) {
	prop, err := o.Property(name)
	if err != nil {
		return 0, false, err
	}
	if prop == nil {
		return 0, false, nil
	}
	return prop.ID, true, nil
}
