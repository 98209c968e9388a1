package tree

import (
	"fmt"
	"slices"
)

// Equal reports whether two trees hold the same namespaces, metadata and
// elements. Element order is ignored; namespace order is not.
func Equal(a, b *MappingTree) bool {
	return len(Diff(a, b)) == 0
}

// Diff lists the structural differences between two trees.
func Diff(a, b *MappingTree) []string {
	var diffs []string

	report := func(format string, args ...any) {
		diffs = append(diffs, fmt.Sprintf(format, args...))
	}

	if a.srcNs != b.srcNs || !slices.Equal(a.dstNs, b.dstNs) {
		report("namespaces %v != %v", a.Namespaces(), b.Namespaces())
		return diffs
	}

	if !sameMetadata(a.metadata, b.metadata) {
		report("metadata %v != %v", a.metadata, b.metadata)
	}

	if len(a.classes) != len(b.classes) {
		report("class count %d != %d", len(a.classes), len(b.classes))
	}

	for _, ca := range a.classes {
		cb := b.Class(ca.srcName)
		if cb == nil {
			report("class %q missing", ca.srcName)
			continue
		}

		diffEntry(report, "class "+ca.srcName, &ca.entry, &cb.entry, len(a.dstNs))
		diffClass(report, ca, cb, len(a.dstNs))
	}

	return diffs
}

func diffClass(report func(string, ...any), ca, cb *ClassMapping, nsCount int) {
	if len(ca.fields) != len(cb.fields) || len(ca.methods) != len(cb.methods) {
		report("class %q member count differs", ca.srcName)
	}

	for _, fa := range ca.fields {
		fb := cb.Field(fa.srcName, fa.srcDesc)
		if fb == nil || fb.srcDesc != fa.srcDesc {
			report("field %s.%s:%s missing", ca.srcName, fa.srcName, fa.srcDesc)
			continue
		}

		diffEntry(report, "field "+ca.srcName+"."+fa.srcName, &fa.entry, &fb.entry, nsCount)
	}

	for _, ma := range ca.methods {
		mb := cb.Method(ma.srcName, ma.srcDesc)
		if mb == nil || mb.srcDesc != ma.srcDesc {
			report("method %s.%s%s missing", ca.srcName, ma.srcName, ma.srcDesc)
			continue
		}

		key := "method " + ca.srcName + "." + ma.srcName + ma.srcDesc
		diffEntry(report, key, &ma.entry, &mb.entry, nsCount)

		if len(ma.args) != len(mb.args) {
			report("%s arg count %d != %d", key, len(ma.args), len(mb.args))
		}

		for _, aa := range ma.args {
			ab := mb.Arg(aa.argPos, aa.lvIndex)
			if ab == nil {
				report("%s arg %d/%d missing", key, aa.argPos, aa.lvIndex)
				continue
			}

			diffEntry(report, fmt.Sprintf("%s arg %d", key, aa.lvIndex), &aa.entry, &ab.entry, nsCount)
		}
	}
}

func diffEntry(report func(string, ...any), what string, a, b *entry, nsCount int) {
	if a.srcName != b.srcName {
		report("%s: source name %q != %q", what, a.srcName, b.srcName)
	}

	for ns := range nsCount {
		if a.DstName(ns) != b.DstName(ns) {
			report("%s: name[%d] %q != %q", what, ns, a.DstName(ns), b.DstName(ns))
		}
	}

	if a.comment != b.comment {
		report("%s: comment %q != %q", what, a.comment, b.comment)
	}
}

func sameMetadata(a, b []Metadata) bool {
	if len(a) != len(b) {
		return false
	}

	for _, ma := range a {
		if !slices.Contains(b, ma) {
			return false
		}
	}

	return true
}
