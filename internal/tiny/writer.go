package tiny

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"qm-layer/internal/diagnostic"
	"qm-layer/internal/tree"
)

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithEscapedNames declares the escaped-names property and escapes special
// characters in names. Without it such names are rejected.
func WithEscapedNames() WriterOption {
	return func(w *Writer) {
		w.escapeNames = true
	}
}

// Writer serializes a mapping event stream as tiny v2. Rows are written in
// visit order; destination names land in the column of their namespace.
type Writer struct {
	out         *bufio.Writer
	escapeNames bool

	dstCount  int
	inContent bool
	pending   *row
}

// row is an element whose names are still being collected.
type row struct {
	depth int
	cells []string // tag, optional descriptor or index, then names
	names int      // index of the source name within cells
	kind  tree.ElementKind
}

// NewWriter creates a Writer emitting to w. The output is flushed by VisitEnd.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	tw := &Writer{out: bufio.NewWriter(w)}

	for _, opt := range opts {
		opt(tw)
	}

	return tw
}

func (w *Writer) VisitNamespaces(src string, dst []string) error {
	if len(dst) == 0 {
		return diagnostic.Schemaf("tiny v2 needs at least one destination namespace")
	}

	w.dstCount = len(dst)
	w.inContent = false
	w.pending = nil

	cells := append([]string{formatName, majorVersion, minorVersion, src}, dst...)
	if err := w.writeLine(0, cells); err != nil {
		return err
	}

	if w.escapeNames {
		return w.writeLine(1, []string{PropEscapedNames})
	}

	return nil
}

func (w *Writer) VisitMetadata(key, value string) error {
	if key == PropEscapedNames {
		return nil
	}

	if w.inContent {
		return diagnostic.Formatf("", 0, "property %q after the first class", key)
	}

	if value == "" {
		return w.writeLine(1, []string{escape(key)})
	}

	return w.writeLine(1, []string{escape(key), escape(value)})
}

func (w *Writer) VisitClass(srcName string) (bool, error) {
	w.inContent = true
	return true, w.open(0, tree.KindClass, []string{"c"}, srcName)
}

func (w *Writer) VisitField(srcName, srcDesc string) (bool, error) {
	return true, w.open(1, tree.KindField, []string{"f", srcDesc}, srcName)
}

func (w *Writer) VisitMethod(srcName, srcDesc string) (bool, error) {
	return true, w.open(1, tree.KindMethod, []string{"m", srcDesc}, srcName)
}

func (w *Writer) VisitMethodArg(argPos, lvIndex int, srcName string) (bool, error) {
	if lvIndex < 0 {
		return false, diagnostic.Formatf("", 0, "parameter %d has no local variable index", argPos)
	}

	return true, w.open(2, tree.KindMethodArg, []string{"p", strconv.Itoa(lvIndex)}, srcName)
}

func (w *Writer) VisitDstName(kind tree.ElementKind, ns int, name string) error {
	if w.pending == nil || w.pending.kind != kind {
		return diagnostic.Formatf("", 0, "%s name without an open %s row", kind, kind)
	}

	if ns < 0 || ns >= w.dstCount {
		return diagnostic.Formatf("", 0, "destination namespace index %d out of range", ns)
	}

	w.pending.cells[w.pending.names+1+ns] = name

	return nil
}

func (w *Writer) VisitElementContent(tree.ElementKind) (bool, error) {
	return true, w.flushRow()
}

func (w *Writer) VisitComment(kind tree.ElementKind, comment string) error {
	if err := w.flushRow(); err != nil {
		return err
	}

	depth := 1
	switch kind {
	case tree.KindField, tree.KindMethod:
		depth = 2
	case tree.KindMethodArg:
		depth = 3
	}

	// Comments are always escaped in tiny v2.
	return w.writeRaw(strings.Repeat("\t", depth) + "c\t" + escape(comment))
}

func (w *Writer) VisitEnd() error {
	if err := w.flushRow(); err != nil {
		return err
	}

	if err := w.out.Flush(); err != nil {
		return diagnostic.IO("", "flush", err)
	}

	return nil
}

func (w *Writer) open(depth int, kind tree.ElementKind, head []string, srcName string) error {
	if err := w.flushRow(); err != nil {
		return err
	}

	cells := make([]string, len(head)+1+w.dstCount)
	copy(cells, head)
	cells[len(head)] = srcName

	w.pending = &row{depth: depth, cells: cells, names: len(head), kind: kind}

	return nil
}

func (w *Writer) flushRow() error {
	if w.pending == nil {
		return nil
	}

	r := w.pending
	w.pending = nil

	// Descriptors are never escaped, so a special character would split the row.
	for i := 1; i < r.names; i++ {
		if needsEscape(r.cells[i]) {
			return diagnostic.Formatf("", 0, "%s descriptor %q contains a tab, newline or backslash", r.kind, r.cells[i])
		}
	}

	for i := r.names; i < len(r.cells); i++ {
		name := r.cells[i]
		if !needsEscape(name) {
			continue
		}

		if !w.escapeNames {
			return diagnostic.Formatf("", 0, "name %q needs escaping; enable escaped names", name)
		}

		r.cells[i] = escape(name)
	}

	return w.writeLine(r.depth, r.cells)
}

func (w *Writer) writeLine(depth int, cells []string) error {
	return w.writeRaw(strings.Repeat("\t", depth) + strings.Join(cells, "\t"))
}

func (w *Writer) writeRaw(line string) error {
	if _, err := w.out.WriteString(line); err != nil {
		return diagnostic.IO("", "write", err)
	}

	if err := w.out.WriteByte('\n'); err != nil {
		return diagnostic.IO("", "write", err)
	}

	return nil
}
