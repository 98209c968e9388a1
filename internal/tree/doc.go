// Package tree provides the in-memory multi-namespace mapping model.
//
// A MappingTree holds one source namespace and an ordered list of destination
// namespaces. Classes are keyed by their source name; fields and methods by
// (source name, source descriptor); method arguments by position or local
// variable index. Every element carries one optional name per destination
// namespace. Absent names fall back to the source name.
//
// # Event stream
//
// Mappings travel between components as a push-based event stream described
// by the Visitor interface:
//
//	VisitNamespaces
//	VisitMetadata*
//	( VisitClass VisitDstName* VisitElementContent VisitComment?
//	    ( VisitField | VisitMethod ( ... VisitMethodArg ... )* )* )*
//	VisitEnd
//
// A MappingTree is itself a Visitor, so building a tree means replaying a
// stream into it, and Accept replays the tree into any other Visitor. The tree
// has no knowledge of serialization formats.
//
// # Merging
//
// Replaying several streams into one tree merges them. The source namespace
// must match across streams; new destination namespaces are appended.
// Contradicting non-empty names for the same element and namespace fail with
// a conflict error.
package tree
