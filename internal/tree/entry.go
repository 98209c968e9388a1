package tree

// entry holds the names shared by every element kind.
type entry struct {
	srcName  string
	dstNames []string
	comment  string
}

// SrcName returns the element's name in the source namespace.
func (e *entry) SrcName() string {
	return e.srcName
}

// DstName returns the name in destination namespace ns, or "" when absent.
func (e *entry) DstName(ns int) string {
	if ns < 0 || ns >= len(e.dstNames) {
		return ""
	}

	return e.dstNames[ns]
}

// Name returns the name for ns, where SrcNamespaceID selects the source name.
func (e *entry) Name(ns int) string {
	if ns == SrcNamespaceID {
		return e.srcName
	}

	return e.DstName(ns)
}

// NameOrSrc is Name with the source name as fallback for absent names.
func (e *entry) NameOrSrc(ns int) string {
	if name := e.Name(ns); name != "" {
		return name
	}

	return e.srcName
}

// Comment returns the element's documentation comment.
func (e *entry) Comment() string {
	return e.comment
}

func (e *entry) setDstName(ns int, name string) (bool, string) {
	if ns >= len(e.dstNames) {
		grown := make([]string, ns+1)
		copy(grown, e.dstNames)
		e.dstNames = grown
	}

	if prev := e.dstNames[ns]; prev != "" && prev != name {
		return false, prev
	}

	e.dstNames[ns] = name

	return true, ""
}

// ClassMapping is a class and its members.
type ClassMapping struct {
	entry

	tree        *MappingTree
	fields      []*FieldMapping
	fieldsByKey map[string][]*FieldMapping
	methods     []*MethodMapping
	methodsByID map[string][]*MethodMapping
}

// Fields returns the class fields in insertion order.
func (c *ClassMapping) Fields() []*FieldMapping {
	return c.fields
}

// Methods returns the class methods in insertion order.
func (c *ClassMapping) Methods() []*MethodMapping {
	return c.methods
}

// Field looks up a field by source name and descriptor. An empty desc
// matches any descriptor.
func (c *ClassMapping) Field(name, desc string) *FieldMapping {
	m, _ := findMember(c.fieldsByKey, name, desc)
	return m
}

// Method looks up a method by source name and descriptor. An empty desc
// matches any descriptor.
func (c *ClassMapping) Method(name, desc string) *MethodMapping {
	m, _ := findMember(c.methodsByID, name, desc)
	return m
}

// memberMapping is the part shared by fields and methods.
type memberMapping struct {
	entry

	owner   *ClassMapping
	srcDesc string
}

func (m *memberMapping) base() *memberMapping {
	return m
}

// Owner returns the declaring class.
func (m *memberMapping) Owner() *ClassMapping {
	return m.owner
}

// SrcDesc returns the descriptor in the source namespace.
func (m *memberMapping) SrcDesc() string {
	return m.srcDesc
}

// Desc returns the descriptor with class references mapped into ns.
func (m *memberMapping) Desc(ns int) string {
	if ns == SrcNamespaceID || m.srcDesc == "" {
		return m.srcDesc
	}

	return m.owner.tree.MapDesc(m.srcDesc, ns)
}

// FieldMapping is a field of a class.
type FieldMapping struct {
	memberMapping
}

// MethodMapping is a method of a class.
type MethodMapping struct {
	memberMapping

	args []*ArgMapping
}

// Args returns the method parameters in insertion order.
func (m *MethodMapping) Args() []*ArgMapping {
	return m.args
}

// Arg looks up a parameter by argument position, or by local variable index
// when argPos is negative.
func (m *MethodMapping) Arg(argPos, lvIndex int) *ArgMapping {
	for _, a := range m.args {
		if argPos >= 0 && a.argPos == argPos {
			return a
		}

		if argPos < 0 && lvIndex >= 0 && a.lvIndex == lvIndex {
			return a
		}
	}

	return nil
}

// ArgMapping is a method parameter.
type ArgMapping struct {
	entry

	method  *MethodMapping
	argPos  int
	lvIndex int
}

// Method returns the declaring method.
func (a *ArgMapping) Method() *MethodMapping {
	return a.method
}

// ArgPosition returns the zero-based argument position, or -1 if unknown.
func (a *ArgMapping) ArgPosition() int {
	return a.argPos
}

// LvIndex returns the local variable index, or -1 if unknown.
func (a *ArgMapping) LvIndex() int {
	return a.lvIndex
}

type member interface {
	*FieldMapping | *MethodMapping
	base() *memberMapping
}

// findMember resolves (name, desc) against a by-name index. An empty desc on
// either side acts as a wildcard as long as the match is unambiguous.
func findMember[M member](byName map[string][]M, name, desc string) (M, error) {
	var zero M

	candidates := byName[name]

	if desc == "" {
		switch len(candidates) {
		case 0:
			return zero, nil
		case 1:
			return candidates[0], nil
		default:
			return zero, errAmbiguousMember(name, len(candidates))
		}
	}

	var (
		loose      M
		looseCount int
	)

	for _, m := range candidates {
		switch m.base().srcDesc {
		case desc:
			return m, nil
		case "":
			loose = m
			looseCount++
		}
	}

	if looseCount > 1 {
		return zero, errAmbiguousMember(name, looseCount)
	}

	return loose, nil
}
