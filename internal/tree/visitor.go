package tree

// Namespace ids used by lookups. Destination namespaces are addressed by
// their zero-based index.
const (
	SrcNamespaceID     = -1
	MissingNamespaceID = -2
)

// Visitor receives a mapping event stream.
//
// The element calls (VisitClass, VisitField, VisitMethod, VisitMethodArg) and
// VisitElementContent return false to skip the element's remaining events.
// Destination namespace indexes in VisitDstName refer to the dst slice of the
// most recent VisitNamespaces call.
type Visitor interface {
	VisitNamespaces(src string, dst []string) error
	VisitMetadata(key, value string) error
	VisitClass(srcName string) (bool, error)
	VisitField(srcName, srcDesc string) (bool, error)
	VisitMethod(srcName, srcDesc string) (bool, error)
	VisitMethodArg(argPos, lvIndex int, srcName string) (bool, error)
	VisitDstName(kind ElementKind, ns int, name string) error
	VisitElementContent(kind ElementKind) (bool, error)
	VisitComment(kind ElementKind, comment string) error
	VisitEnd() error
}
