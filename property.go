package kms

// Property is a named, per-object hardware state value. The 64-bit
// value carries plain integers as well as encoded fixed-point numbers
// and blob ids, depending on the property.
//
// The id is only valid for the lifetime of the query that produced it;
// the kernel identifies properties by number, not name, so symbolic
// access always goes through an enumerate-then-match step.
type Property struct {
	ObjectID uint32
	ID       uint32
	Name     string
	Value    uint64
}
