package adapter

import "qm-layer/internal/tree"

// Renamer relabels namespaces. Namespaces without an entry pass through.
type Renamer struct {
	Forwarder

	names map[string]string
}

// NewRenamer creates a Renamer forwarding to next. names maps old namespace
// names to new ones.
func NewRenamer(next tree.Visitor, names map[string]string) *Renamer {
	return &Renamer{Forwarder: Forwarder{Next: next}, names: names}
}

func (r *Renamer) VisitNamespaces(src string, dst []string) error {
	renamed := make([]string, len(dst))
	for i, ns := range dst {
		renamed[i] = r.rename(ns)
	}

	return r.Next.VisitNamespaces(r.rename(src), renamed)
}

func (r *Renamer) rename(ns string) string {
	if to, ok := r.names[ns]; ok {
		return to
	}

	return ns
}
