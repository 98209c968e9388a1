package tree

//go:generate go tool stringer -type=ElementKind -trimprefix=Kind -output=kind_string.go

// ElementKind identifies which element a name, comment or content event
// applies to.
type ElementKind int

const (
	KindClass ElementKind = iota
	KindField
	KindMethod
	KindMethodArg
)
