package tree

import (
	"slices"
)

// Metadata is a key/value property carried alongside the mappings.
type Metadata struct {
	Key   string
	Value string
}

// MappingTree is an in-memory multi-namespace mapping.
//
// A tree is written once by replaying event streams into it and read many
// times afterwards. It is not safe for concurrent mutation.
type MappingTree struct {
	srcNs    string
	dstNs    []string
	metadata []Metadata
	classes  []*ClassMapping
	classIdx map[string]*ClassMapping

	build buildState
}

// New creates an empty tree. Namespaces are fixed by the first stream
// replayed into it.
func New() *MappingTree {
	return &MappingTree{
		classIdx: make(map[string]*ClassMapping),
	}
}

// SrcNamespace returns the source namespace name.
func (t *MappingTree) SrcNamespace() string {
	return t.srcNs
}

// DstNamespaces returns a copy of the destination namespace names.
func (t *MappingTree) DstNamespaces() []string {
	return slices.Clone(t.dstNs)
}

// Namespaces returns the source namespace followed by all destinations.
func (t *MappingTree) Namespaces() []string {
	if t.srcNs == "" {
		return nil
	}

	return append([]string{t.srcNs}, t.dstNs...)
}

// NamespaceID returns SrcNamespaceID for the source namespace, the dst index
// for a destination namespace and MissingNamespaceID otherwise.
func (t *MappingTree) NamespaceID(name string) int {
	if name == t.srcNs && name != "" {
		return SrcNamespaceID
	}

	if i := slices.Index(t.dstNs, name); i >= 0 {
		return i
	}

	return MissingNamespaceID
}

// Metadata returns the tree properties in insertion order.
func (t *MappingTree) Metadata() []Metadata {
	return slices.Clone(t.metadata)
}

// Classes returns the classes in insertion order.
func (t *MappingTree) Classes() []*ClassMapping {
	return t.classes
}

// Class looks up a class by its source name.
func (t *MappingTree) Class(srcName string) *ClassMapping {
	return t.classIdx[srcName]
}

// ClassByName looks up a class by its name in namespace ns.
func (t *MappingTree) ClassByName(name string, ns int) *ClassMapping {
	if ns == SrcNamespaceID {
		return t.Class(name)
	}

	for _, c := range t.classes {
		if c.DstName(ns) == name {
			return c
		}
	}

	return nil
}

// MapClassName maps a source class name into ns. Unknown classes and
// absent names keep the source name.
func (t *MappingTree) MapClassName(srcName string, ns int) string {
	c := t.classIdx[srcName]
	if c == nil {
		return srcName
	}

	return c.NameOrSrc(ns)
}

// MapDesc maps every class reference of a source descriptor into ns.
func (t *MappingTree) MapDesc(desc string, ns int) string {
	return MapDesc(desc, func(name string) string {
		return t.MapClassName(name, ns)
	})
}

// Stats counts the elements of a tree.
type Stats struct {
	Classes int
	Fields  int
	Methods int
	Args    int
}

// Stats returns element counts.
func (t *MappingTree) Stats() Stats {
	s := Stats{Classes: len(t.classes)}

	for _, c := range t.classes {
		s.Fields += len(c.fields)
		s.Methods += len(c.methods)

		for _, m := range c.methods {
			s.Args += len(m.args)
		}
	}

	return s
}

// Accept replays the whole tree into v.
func (t *MappingTree) Accept(v Visitor) error {
	if err := v.VisitNamespaces(t.srcNs, slices.Clone(t.dstNs)); err != nil {
		return err
	}

	for _, md := range t.metadata {
		if err := v.VisitMetadata(md.Key, md.Value); err != nil {
			return err
		}
	}

	for _, c := range t.classes {
		if err := acceptClass(c, v); err != nil {
			return err
		}
	}

	return v.VisitEnd()
}

func acceptClass(c *ClassMapping, v Visitor) error {
	ok, err := v.VisitClass(c.srcName)
	if err != nil || !ok {
		return err
	}

	ok, err = acceptElement(v, KindClass, &c.entry)
	if err != nil || !ok {
		return err
	}

	for _, f := range c.fields {
		ok, err := v.VisitField(f.srcName, f.srcDesc)
		if err != nil {
			return err
		}

		if !ok {
			continue
		}

		if _, err := acceptElement(v, KindField, &f.entry); err != nil {
			return err
		}
	}

	for _, m := range c.methods {
		if err := acceptMethod(m, v); err != nil {
			return err
		}
	}

	return nil
}

func acceptMethod(m *MethodMapping, v Visitor) error {
	ok, err := v.VisitMethod(m.srcName, m.srcDesc)
	if err != nil || !ok {
		return err
	}

	ok, err = acceptElement(v, KindMethod, &m.entry)
	if err != nil || !ok {
		return err
	}

	for _, a := range m.args {
		ok, err := v.VisitMethodArg(a.argPos, a.lvIndex, a.srcName)
		if err != nil {
			return err
		}

		if !ok {
			continue
		}

		if _, err := acceptElement(v, KindMethodArg, &a.entry); err != nil {
			return err
		}
	}

	return nil
}

// acceptElement emits names, content and comment of one element and reports
// whether the visitor wants its children.
func acceptElement(v Visitor, kind ElementKind, e *entry) (bool, error) {
	for ns, name := range e.dstNames {
		if name == "" {
			continue
		}

		if err := v.VisitDstName(kind, ns, name); err != nil {
			return false, err
		}
	}

	ok, err := v.VisitElementContent(kind)
	if err != nil || !ok {
		return false, err
	}

	if e.comment != "" {
		if err := v.VisitComment(kind, e.comment); err != nil {
			return false, err
		}
	}

	return true, nil
}
