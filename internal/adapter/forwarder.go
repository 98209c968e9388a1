package adapter

import "qm-layer/internal/tree"

// Forwarder passes every event to Next unchanged. Transforms embed it and
// override the events they reinterpret.
type Forwarder struct {
	Next tree.Visitor
}

func (f *Forwarder) VisitNamespaces(src string, dst []string) error {
	return f.Next.VisitNamespaces(src, dst)
}

func (f *Forwarder) VisitMetadata(key, value string) error {
	return f.Next.VisitMetadata(key, value)
}

func (f *Forwarder) VisitClass(srcName string) (bool, error) {
	return f.Next.VisitClass(srcName)
}

func (f *Forwarder) VisitField(srcName, srcDesc string) (bool, error) {
	return f.Next.VisitField(srcName, srcDesc)
}

func (f *Forwarder) VisitMethod(srcName, srcDesc string) (bool, error) {
	return f.Next.VisitMethod(srcName, srcDesc)
}

func (f *Forwarder) VisitMethodArg(argPos, lvIndex int, srcName string) (bool, error) {
	return f.Next.VisitMethodArg(argPos, lvIndex, srcName)
}

func (f *Forwarder) VisitDstName(kind tree.ElementKind, ns int, name string) error {
	return f.Next.VisitDstName(kind, ns, name)
}

func (f *Forwarder) VisitElementContent(kind tree.ElementKind) (bool, error) {
	return f.Next.VisitElementContent(kind)
}

func (f *Forwarder) VisitComment(kind tree.ElementKind, comment string) error {
	return f.Next.VisitComment(kind, comment)
}

func (f *Forwarder) VisitEnd() error {
	return f.Next.VisitEnd()
}
