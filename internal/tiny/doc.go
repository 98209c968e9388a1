// Package tiny reads and writes the tiny v2 mapping format.
//
// A tiny v2 file is tab separated and line oriented:
//
//	tiny	2	0	official	intermediary	named
//		escaped-names
//	c	a	net/minecraft/class_1	net/minecraft/Block
//		c	class comment
//		f	I	b	field_1	hardness
//		m	(La;)V	c	method_1	setState
//			p	1		state
//
// The header carries the format version followed by the namespaces, the
// first being the source namespace. Indentation expresses nesting: fields
// and methods belong to the preceding class, parameters to the preceding
// method, and a "c" row one level deeper than an element is its comment.
// Every element row has exactly one cell per namespace; empty destination
// cells mean the source name is inherited.
//
// The reader pushes events into a tree.Visitor; the Writer is a tree.Visitor
// that serializes the events it receives.
package tiny

const (
	formatName   = "tiny"
	majorVersion = "2"
	minorVersion = "0"
)

// PropEscapedNames is the property declaring that names use escape sequences.
const PropEscapedNames = "escaped-names"
