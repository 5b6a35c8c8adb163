package space

// RegisterTable maps (offset, size) pairs within the register space to
// their canonical architecture name (e.g. "r0", "sp", "cpsr"), and
// supports the reverse name -> Varnode lookup the formatter and
// browser tooling need. A data-driven table, built from the loaded
// specification's varnode_sym entries, rather than a fixed set of
// register aliases.
type RegisterTable struct {
	space     *Space
	byRange   map[registerKey]string
	byName    map[string]Varnode
}

type registerKey struct {
	offset uint64
	size   uint32
}

func NewRegisterTable(registerSpace *Space) *RegisterTable {
	return &RegisterTable{
		space:   registerSpace,
		byRange: map[registerKey]string{},
		byName:  map[string]Varnode{},
	}
}

// Register records a named register occupying [offset, offset+size)
// in the register space.
func (rt *RegisterTable) Register(name string, offset uint64, size uint32) {
	vn := Varnode{Space: rt.space, Offset: offset, Size: size}
	rt.byRange[registerKey{offset, size}] = name
	rt.byName[name] = vn
}

// NameOf returns the canonical name for a varnode occupying exactly
// [offset, offset+size), if one was registered.
func (rt *RegisterTable) NameOf(offset uint64, size uint32) (string, bool) {
	name, ok := rt.byRange[registerKey{offset, size}]
	return name, ok
}

// Lookup returns the varnode registered under name.
func (rt *RegisterTable) Lookup(name string) (Varnode, bool) {
	vn, ok := rt.byName[name]
	return vn, ok
}
