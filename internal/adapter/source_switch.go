package adapter

import (
	"qm-layer/internal/diagnostic"
	"qm-layer/internal/match"
	"qm-layer/internal/tree"
)

// SourceSwitchOption configures a SourceSwitch.
type SourceSwitchOption func(*SourceSwitch)

// DropMissing drops elements that have no name in the new source namespace
// instead of keying them by their old source name.
func DropMissing() SourceSwitchOption {
	return func(s *SourceSwitch) {
		s.dropMissing = true
	}
}

// SourceSwitch re-keys a stream by another namespace. The previous source
// namespace takes the new source's destination slot, and member descriptors
// are rewritten into the new source namespace.
//
// Descriptor rewriting needs the complete class table, so each stream is
// buffered until VisitEnd and then replayed downstream.
type SourceSwitch struct {
	next        tree.Visitor
	newSrc      string
	dropMissing bool

	buf *tree.MappingTree
}

// NewSourceSwitch creates a SourceSwitch forwarding to next.
func NewSourceSwitch(next tree.Visitor, newSrc string, opts ...SourceSwitchOption) *SourceSwitch {
	s := &SourceSwitch{next: next, newSrc: newSrc}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *SourceSwitch) VisitNamespaces(src string, dst []string) error {
	s.buf = tree.New()
	return s.buf.VisitNamespaces(src, dst)
}

func (s *SourceSwitch) VisitMetadata(key, value string) error {
	return s.buffer().VisitMetadata(key, value)
}

func (s *SourceSwitch) VisitClass(srcName string) (bool, error) {
	return s.buffer().VisitClass(srcName)
}

func (s *SourceSwitch) VisitField(srcName, srcDesc string) (bool, error) {
	return s.buffer().VisitField(srcName, srcDesc)
}

func (s *SourceSwitch) VisitMethod(srcName, srcDesc string) (bool, error) {
	return s.buffer().VisitMethod(srcName, srcDesc)
}

func (s *SourceSwitch) VisitMethodArg(argPos, lvIndex int, srcName string) (bool, error) {
	return s.buffer().VisitMethodArg(argPos, lvIndex, srcName)
}

func (s *SourceSwitch) VisitDstName(kind tree.ElementKind, ns int, name string) error {
	return s.buffer().VisitDstName(kind, ns, name)
}

func (s *SourceSwitch) VisitElementContent(kind tree.ElementKind) (bool, error) {
	return s.buffer().VisitElementContent(kind)
}

func (s *SourceSwitch) VisitComment(kind tree.ElementKind, comment string) error {
	return s.buffer().VisitComment(kind, comment)
}

// VisitEnd replays the buffered stream under the new source namespace.
func (s *SourceSwitch) VisitEnd() error {
	buf := s.buffer()
	s.buf = nil

	if err := buf.VisitEnd(); err != nil {
		return err
	}

	return s.replay(buf)
}

// buffer returns the stream buffer. Events before VisitNamespaces go to an
// empty tree, which rejects them.
func (s *SourceSwitch) buffer() *tree.MappingTree {
	if s.buf == nil {
		s.buf = tree.New()
	}

	return s.buf
}

func (s *SourceSwitch) replay(t *tree.MappingTree) error {
	id := t.NamespaceID(s.newSrc)

	switch id {
	case tree.MissingNamespaceID:
		return diagnostic.Schemaf("namespace %q is not part of %v", s.newSrc, t.Namespaces()).
			WithSuggestions(match.Suggest(s.newSrc, t.Namespaces())...)
	case tree.SrcNamespaceID:
		return t.Accept(s.next)
	}

	dst := t.DstNamespaces()
	dst[id] = t.SrcNamespace()

	if err := s.next.VisitNamespaces(s.newSrc, dst); err != nil {
		return err
	}

	for _, md := range t.Metadata() {
		if err := s.next.VisitMetadata(md.Key, md.Value); err != nil {
			return err
		}
	}

	e := &switchEmitter{next: s.next, id: id, nsCount: len(dst), dropMissing: s.dropMissing}

	for _, c := range t.Classes() {
		if err := e.class(c); err != nil {
			return err
		}
	}

	return s.next.VisitEnd()
}

// element is the read side shared by all mapping kinds.
type element interface {
	SrcName() string
	DstName(ns int) string
	Comment() string
}

// switchEmitter writes a tree's elements keyed by dst namespace id.
type switchEmitter struct {
	next        tree.Visitor
	id          int
	nsCount     int
	dropMissing bool
}

// name returns the element's name in the new source namespace and whether
// the element is emitted at all.
func (e *switchEmitter) name(el element) (string, bool) {
	if name := el.DstName(e.id); name != "" {
		return name, true
	}

	return el.SrcName(), !e.dropMissing
}

func (e *switchEmitter) class(c *tree.ClassMapping) error {
	name, keep := e.name(c)
	if !keep {
		return nil
	}

	ok, err := e.next.VisitClass(name)
	if err != nil || !ok {
		return err
	}

	ok, err = e.content(tree.KindClass, c)
	if err != nil || !ok {
		return err
	}

	for _, f := range c.Fields() {
		name, keep := e.name(f)
		if !keep {
			continue
		}

		ok, err := e.next.VisitField(name, f.Desc(e.id))
		if err != nil {
			return err
		}

		if !ok {
			continue
		}

		if _, err := e.content(tree.KindField, f); err != nil {
			return err
		}
	}

	for _, m := range c.Methods() {
		if err := e.method(m); err != nil {
			return err
		}
	}

	return nil
}

func (e *switchEmitter) method(m *tree.MethodMapping) error {
	name, keep := e.name(m)
	if !keep {
		return nil
	}

	ok, err := e.next.VisitMethod(name, m.Desc(e.id))
	if err != nil || !ok {
		return err
	}

	ok, err = e.content(tree.KindMethod, m)
	if err != nil || !ok {
		return err
	}

	for _, a := range m.Args() {
		// Parameters are never dropped; an unnamed one stays unnamed.
		name := a.DstName(e.id)
		if name == "" {
			name = a.SrcName()
		}

		ok, err := e.next.VisitMethodArg(a.ArgPosition(), a.LvIndex(), name)
		if err != nil {
			return err
		}

		if !ok {
			continue
		}

		if _, err := e.content(tree.KindMethodArg, a); err != nil {
			return err
		}
	}

	return nil
}

// content emits the destination names with the old source name moved into
// the new source's slot, then the element content and comment.
func (e *switchEmitter) content(kind tree.ElementKind, el element) (bool, error) {
	for ns := range e.nsCount {
		name := el.DstName(ns)
		if ns == e.id {
			name = el.SrcName()
		}

		if name == "" {
			continue
		}

		if err := e.next.VisitDstName(kind, ns, name); err != nil {
			return false, err
		}
	}

	ok, err := e.next.VisitElementContent(kind)
	if err != nil || !ok {
		return false, err
	}

	if c := el.Comment(); c != "" {
		if err := e.next.VisitComment(kind, c); err != nil {
			return false, err
		}
	}

	return true, nil
}
