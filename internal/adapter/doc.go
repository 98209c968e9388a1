// Package adapter provides namespace transforms over mapping event streams.
//
// Each transform wraps a downstream tree.Visitor and forwards a reinterpreted
// stream; none of them mutates a tree. They compose through Chain:
//
//	v := adapter.Chain(writer,
//		adapter.SwitchSource("intermediary"),
//		adapter.ReorderDst("named"),
//	)
//	err := merged.Accept(v)
//
// The first transform in the list sees the events first.
package adapter

import "qm-layer/internal/tree"

// Transform wraps next with one stream transformation.
type Transform func(next tree.Visitor) tree.Visitor

// Chain builds the decorator chain ending in sink.
func Chain(sink tree.Visitor, transforms ...Transform) tree.Visitor {
	v := sink

	for i := len(transforms) - 1; i >= 0; i-- {
		v = transforms[i](v)
	}

	return v
}

// Rename returns a Transform applying NewRenamer.
func Rename(names map[string]string) Transform {
	return func(next tree.Visitor) tree.Visitor {
		return NewRenamer(next, names)
	}
}

// SwitchSource returns a Transform applying NewSourceSwitch.
func SwitchSource(ns string, opts ...SourceSwitchOption) Transform {
	return func(next tree.Visitor) tree.Visitor {
		return NewSourceSwitch(next, ns, opts...)
	}
}

// ReorderDst returns a Transform applying NewDstReorder.
func ReorderDst(ns ...string) Transform {
	return func(next tree.Visitor) tree.Visitor {
		return NewDstReorder(next, ns...)
	}
}
