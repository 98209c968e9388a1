package tree

import (
	"slices"

	"qm-layer/internal/diagnostic"
)

// buildState tracks the element currently receiving names while a stream is
// replayed into the tree.
type buildState struct {
	nsMap  []int
	class  *ClassMapping
	field  *FieldMapping
	method *MethodMapping
	arg    *ArgMapping
}

func errAmbiguousMember(name string, n int) error {
	return diagnostic.Conflictf("member %q without descriptor matches %d entries", name, n)
}

// VisitNamespaces fixes the namespaces on first use. Later streams must share
// the source namespace; unseen destination namespaces are appended.
func (t *MappingTree) VisitNamespaces(src string, dst []string) error {
	if err := checkNamespaces(src, dst); err != nil {
		return err
	}

	t.build = buildState{}

	if t.srcNs == "" {
		t.srcNs = src
		t.dstNs = slices.Clone(dst)
		t.build.nsMap = make([]int, len(dst))

		for i := range dst {
			t.build.nsMap[i] = i
		}

		return nil
	}

	if src != t.srcNs {
		return diagnostic.Schemaf("source namespace %q does not match tree source namespace %q", src, t.srcNs)
	}

	t.build.nsMap = make([]int, len(dst))

	for i, ns := range dst {
		idx := slices.Index(t.dstNs, ns)
		if idx < 0 {
			t.dstNs = append(t.dstNs, ns)
			idx = len(t.dstNs) - 1
		}

		t.build.nsMap[i] = idx
	}

	return nil
}

func checkNamespaces(src string, dst []string) error {
	if src == "" {
		return diagnostic.Schemaf("empty source namespace")
	}

	seen := map[string]struct{}{src: {}}

	for _, ns := range dst {
		if ns == "" {
			return diagnostic.Schemaf("empty destination namespace")
		}

		if _, ok := seen[ns]; ok {
			return diagnostic.Schemaf("namespace %q declared twice", ns)
		}

		seen[ns] = struct{}{}
	}

	return nil
}

// VisitMetadata records a property, replacing an earlier value for the key.
func (t *MappingTree) VisitMetadata(key, value string) error {
	for i := range t.metadata {
		if t.metadata[i].Key == key {
			t.metadata[i].Value = value
			return nil
		}
	}

	t.metadata = append(t.metadata, Metadata{Key: key, Value: value})

	return nil
}

func (t *MappingTree) VisitClass(srcName string) (bool, error) {
	if t.build.nsMap == nil {
		return false, diagnostic.Formatf("", 0, "class %q visited before namespaces", srcName)
	}

	c := t.classIdx[srcName]
	if c == nil {
		c = &ClassMapping{
			entry:       entry{srcName: srcName},
			tree:        t,
			fieldsByKey: make(map[string][]*FieldMapping),
			methodsByID: make(map[string][]*MethodMapping),
		}
		t.classes = append(t.classes, c)
		t.classIdx[srcName] = c
	}

	t.build.class = c
	t.build.field = nil
	t.build.method = nil
	t.build.arg = nil

	return true, nil
}

func (t *MappingTree) VisitField(srcName, srcDesc string) (bool, error) {
	c := t.build.class
	if c == nil {
		return false, diagnostic.Formatf("", 0, "field %q visited outside a class", srcName)
	}

	f, err := findMember(c.fieldsByKey, srcName, srcDesc)
	if err != nil {
		return false, err
	}

	if f == nil {
		f = &FieldMapping{memberMapping{entry: entry{srcName: srcName}, owner: c, srcDesc: srcDesc}}
		c.fields = append(c.fields, f)
		c.fieldsByKey[srcName] = append(c.fieldsByKey[srcName], f)
	} else if f.srcDesc == "" {
		f.srcDesc = srcDesc
	}

	t.build.field = f
	t.build.method = nil
	t.build.arg = nil

	return true, nil
}

func (t *MappingTree) VisitMethod(srcName, srcDesc string) (bool, error) {
	c := t.build.class
	if c == nil {
		return false, diagnostic.Formatf("", 0, "method %q visited outside a class", srcName)
	}

	m, err := findMember(c.methodsByID, srcName, srcDesc)
	if err != nil {
		return false, err
	}

	if m == nil {
		m = &MethodMapping{memberMapping: memberMapping{entry: entry{srcName: srcName}, owner: c, srcDesc: srcDesc}}
		c.methods = append(c.methods, m)
		c.methodsByID[srcName] = append(c.methodsByID[srcName], m)
	} else if m.srcDesc == "" {
		m.srcDesc = srcDesc
	}

	t.build.field = nil
	t.build.method = m
	t.build.arg = nil

	return true, nil
}

func (t *MappingTree) VisitMethodArg(argPos, lvIndex int, srcName string) (bool, error) {
	m := t.build.method
	if m == nil {
		return false, diagnostic.Formatf("", 0, "parameter %q visited outside a method", srcName)
	}

	if argPos < 0 && lvIndex < 0 {
		return false, diagnostic.Formatf("", 0, "parameter %q has neither position nor local variable index", srcName)
	}

	a := m.Arg(argPos, lvIndex)
	if a == nil {
		a = &ArgMapping{entry: entry{srcName: srcName}, method: m, argPos: argPos, lvIndex: lvIndex}
		m.args = append(m.args, a)
	} else {
		if srcName != "" && a.srcName != "" && a.srcName != srcName {
			return false, diagnostic.Conflictf("parameter %d of %s.%s%s: source name %q contradicts %q",
				max(argPos, lvIndex), m.owner.srcName, m.srcName, m.srcDesc, srcName, a.srcName)
		}

		if a.srcName == "" {
			a.srcName = srcName
		}

		if a.argPos < 0 {
			a.argPos = argPos
		}

		if a.lvIndex < 0 {
			a.lvIndex = lvIndex
		}
	}

	t.build.arg = a

	return true, nil
}

func (t *MappingTree) VisitDstName(kind ElementKind, ns int, name string) error {
	if ns < 0 || ns >= len(t.build.nsMap) {
		return diagnostic.Formatf("", 0, "destination namespace index %d out of range", ns)
	}

	e, desc, err := t.current(kind)
	if err != nil {
		return err
	}

	if name == "" {
		return nil
	}

	idx := t.build.nsMap[ns]
	if ok, prev := e.setDstName(idx, name); !ok {
		return diagnostic.Conflictf("%s %q: %s name %q contradicts %q",
			kind, e.srcName+desc, t.dstNs[idx], name, prev)
	}

	return nil
}

func (t *MappingTree) VisitElementContent(kind ElementKind) (bool, error) {
	if _, _, err := t.current(kind); err != nil {
		return false, err
	}

	return true, nil
}

func (t *MappingTree) VisitComment(kind ElementKind, comment string) error {
	e, _, err := t.current(kind)
	if err != nil {
		return err
	}

	if comment != "" {
		e.comment = comment
	}

	return nil
}

// VisitEnd closes the current stream. The tree may receive further streams.
func (t *MappingTree) VisitEnd() error {
	t.build = buildState{}
	return nil
}

func (t *MappingTree) current(kind ElementKind) (*entry, string, error) {
	var (
		e    *entry
		desc string
	)

	switch kind {
	case KindClass:
		if t.build.class != nil {
			e = &t.build.class.entry
		}
	case KindField:
		if t.build.field != nil {
			e, desc = &t.build.field.entry, t.build.field.srcDesc
		}
	case KindMethod:
		if t.build.method != nil {
			e, desc = &t.build.method.entry, t.build.method.srcDesc
		}
	case KindMethodArg:
		if t.build.arg != nil {
			e = &t.build.arg.entry
		}
	}

	if e == nil {
		return nil, "", diagnostic.Formatf("", 0, "%s event without an open %s", kind, kind)
	}

	return e, desc, nil
}
