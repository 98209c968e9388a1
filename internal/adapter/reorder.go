package adapter

import (
	"slices"

	"qm-layer/internal/diagnostic"
	"qm-layer/internal/match"
	"qm-layer/internal/tree"
)

// DstReorder emits only the selected destination namespaces, in the selected
// order. Names for other destination namespaces are dropped.
type DstReorder struct {
	Forwarder

	order []string
	// nsMap maps incoming dst indexes to outgoing ones, -1 when dropped.
	nsMap []int
}

// NewDstReorder creates a DstReorder forwarding to next.
func NewDstReorder(next tree.Visitor, dst ...string) *DstReorder {
	return &DstReorder{Forwarder: Forwarder{Next: next}, order: dst}
}

func (r *DstReorder) VisitNamespaces(src string, dst []string) error {
	r.nsMap = make([]int, len(dst))
	for i := range r.nsMap {
		r.nsMap[i] = -1
	}

	for out, ns := range r.order {
		in := slices.Index(dst, ns)
		if in < 0 {
			return missingNamespace(ns, src, dst)
		}

		if r.nsMap[in] >= 0 {
			return diagnostic.Schemaf("namespace %q selected twice", ns)
		}

		r.nsMap[in] = out
	}

	return r.Next.VisitNamespaces(src, slices.Clone(r.order))
}

func (r *DstReorder) VisitDstName(kind tree.ElementKind, ns int, name string) error {
	if ns < 0 || ns >= len(r.nsMap) {
		return diagnostic.Formatf("", 0, "destination namespace index %d out of range", ns)
	}

	out := r.nsMap[ns]
	if out < 0 {
		return nil
	}

	return r.Next.VisitDstName(kind, out, name)
}

func missingNamespace(ns, src string, dst []string) error {
	known := append([]string{src}, dst...)

	return diagnostic.Schemaf("namespace %q is not a destination namespace of %v", ns, known).
		WithSuggestions(match.Suggest(ns, dst)...)
}
