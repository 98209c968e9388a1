package tiny

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"qm-layer/internal/diagnostic"
	"qm-layer/internal/tree"
)

const maxLineSize = 1 << 20

// ReadOption configures Read.
type ReadOption func(*reader)

// WithSource names the input in errors and diagnostics.
func WithSource(name string) ReadOption {
	return func(r *reader) {
		r.source = name
	}
}

// WithDiagnostics collects non-fatal findings, such as skipped rows, into d.
func WithDiagnostics(d *diagnostic.Diagnostics) ReadOption {
	return func(r *reader) {
		r.diags = d
	}
}

// ReadFile reads the tiny v2 file at path into v.
func ReadFile(path string, v tree.Visitor, opts ...ReadOption) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return diagnostic.NotFoundf(path, "mapping file does not exist")
		}

		return diagnostic.IO(path, "open", err)
	}
	defer f.Close()

	return Read(f, v, append([]ReadOption{WithSource(path)}, opts...)...)
}

// Read parses a tiny v2 stream and replays it into v.
func Read(r io.Reader, v tree.Visitor, opts ...ReadOption) error {
	rd := &reader{
		visitor: v,
		diags:   &diagnostic.Diagnostics{},
		skip:    -1,
	}

	for _, opt := range opts {
		opt(rd)
	}

	rd.scanner = bufio.NewScanner(r)
	rd.scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return rd.run()
}

// reader holds the parse state of one stream.
type reader struct {
	source  string
	diags   *diagnostic.Diagnostics
	visitor tree.Visitor
	scanner *bufio.Scanner
	line    int

	nsCount      int
	escapedNames bool
	inContent    bool

	// open[d] is the kind of the element opened at depth d, or -1.
	open [3]tree.ElementKind
	// skip is the depth of an element the visitor declined, or -1.
	skip int
}

func (r *reader) next() (string, bool, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", false, diagnostic.IO(r.source, "read", err)
		}

		return "", false, nil
	}

	r.line++

	return strings.TrimSuffix(r.scanner.Text(), "\r"), true, nil
}

func (r *reader) run() error {
	if err := r.readHeader(); err != nil {
		return err
	}

	for i := range r.open {
		r.open[i] = -1
	}

	for {
		line, ok, err := r.next()
		if err != nil {
			return err
		}

		if !ok {
			break
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		if err := r.readLine(line); err != nil {
			return r.locate(err)
		}
	}

	return r.locate(r.visitor.VisitEnd())
}

func (r *reader) readHeader() error {
	line, ok, err := r.next()
	if err != nil {
		return err
	}

	if !ok {
		return diagnostic.Formatf(r.source, 0, "empty input")
	}

	cells := strings.Split(line, "\t")
	if len(cells) < 3 || cells[0] != formatName {
		return diagnostic.Formatf(r.source, r.line, "missing %q header", formatName)
	}

	if cells[1] != majorVersion || cells[2] != minorVersion {
		return diagnostic.Formatf(r.source, r.line, "unsupported version %s.%s", cells[1], cells[2])
	}

	namespaces := cells[3:]

	// Two-line form: the version line is followed by a namespace row.
	if len(namespaces) == 0 {
		line, ok, err := r.next()
		if err != nil {
			return err
		}

		if !ok {
			return diagnostic.Formatf(r.source, r.line, "missing namespace row")
		}

		namespaces = strings.Split(line, "\t")
	}

	if len(namespaces) < 2 {
		return diagnostic.Formatf(r.source, r.line, "need a source and at least one destination namespace, got %d", len(namespaces))
	}

	r.nsCount = len(namespaces)

	return r.locate(r.visitor.VisitNamespaces(namespaces[0], namespaces[1:]))
}

func (r *reader) readLine(line string) error {
	depth := 0
	for depth < len(line) && line[depth] == '\t' {
		depth++
	}

	cells := strings.Split(line[depth:], "\t")

	if !r.inContent && depth == 1 {
		return r.readProperty(cells)
	}

	if r.skip >= 0 {
		if depth > r.skip {
			return nil
		}

		r.skip = -1
	}

	kind := cells[0]

	switch {
	case kind == "c" && depth == 0:
		r.inContent = true
		return r.readClass(cells[1:])
	case kind == "c":
		return r.readComment(depth, cells[1:])
	case kind == "f" || kind == "m":
		return r.readMember(depth, kind, cells[1:])
	case kind == "p":
		return r.readArg(depth, cells[1:])
	case kind == "v":
		r.diags.AddWarning("skipped_variable", "local variable rows are not retained", r.source, r.line)
		r.skip = depth
		return nil
	default:
		return diagnostic.Formatf(r.source, r.line, "unknown row kind %q at depth %d", kind, depth)
	}
}

// readProperty decodes a header property. Keys and values are always
// escaped, independent of escaped-names.
func (r *reader) readProperty(cells []string) error {
	key, err := unescape(cells[0])
	if err != nil {
		return diagnostic.Formatf(r.source, r.line, "property key %q: %v", cells[0], err)
	}

	if key == PropEscapedNames {
		r.escapedNames = true
	}

	value := ""
	if len(cells) > 1 {
		raw := strings.Join(cells[1:], "\t")

		value, err = unescape(raw)
		if err != nil {
			return diagnostic.Formatf(r.source, r.line, "property %q value %q: %v", key, raw, err)
		}
	}

	return r.visitor.VisitMetadata(key, value)
}

func (r *reader) readClass(cells []string) error {
	names, err := r.names(cells)
	if err != nil {
		return err
	}

	if names[0] == "" {
		return diagnostic.Formatf(r.source, r.line, "class without source name")
	}

	r.open = [3]tree.ElementKind{-1, -1, -1}

	ok, err := r.visitor.VisitClass(names[0])
	if err != nil {
		return err
	}

	return r.finishElement(0, tree.KindClass, ok, names)
}

func (r *reader) readMember(depth int, tag string, cells []string) error {
	if depth != 1 || r.open[0] != tree.KindClass {
		return diagnostic.Formatf(r.source, r.line, "%q row outside a class", tag)
	}

	if len(cells) < 1 {
		return diagnostic.Formatf(r.source, r.line, "%q row without descriptor", tag)
	}

	desc := cells[0]

	names, err := r.names(cells[1:])
	if err != nil {
		return err
	}

	if names[0] == "" {
		return diagnostic.Formatf(r.source, r.line, "%q row without source name", tag)
	}

	r.open[1], r.open[2] = -1, -1

	var (
		ok   bool
		kind tree.ElementKind
	)

	if tag == "f" {
		kind = tree.KindField
		ok, err = r.visitor.VisitField(names[0], desc)
	} else {
		kind = tree.KindMethod
		ok, err = r.visitor.VisitMethod(names[0], desc)
	}

	if err != nil {
		return err
	}

	return r.finishElement(1, kind, ok, names)
}

func (r *reader) readArg(depth int, cells []string) error {
	if depth != 2 || r.open[1] != tree.KindMethod {
		return diagnostic.Formatf(r.source, r.line, "parameter row outside a method")
	}

	if len(cells) < 1 {
		return diagnostic.Formatf(r.source, r.line, "parameter row without local variable index")
	}

	lvIndex, err := strconv.Atoi(cells[0])
	if err != nil || lvIndex < 0 {
		return diagnostic.Formatf(r.source, r.line, "invalid local variable index %q", cells[0])
	}

	names, err := r.names(cells[1:])
	if err != nil {
		return err
	}

	r.open[2] = -1

	ok, err := r.visitor.VisitMethodArg(-1, lvIndex, names[0])
	if err != nil {
		return err
	}

	return r.finishElement(2, tree.KindMethodArg, ok, names)
}

func (r *reader) readComment(depth int, cells []string) error {
	owner := depth - 1
	if owner > 2 || r.open[owner] < 0 {
		return diagnostic.Formatf(r.source, r.line, "comment without an owning element")
	}

	comment, err := unescape(strings.Join(cells, "\t"))
	if err != nil {
		return diagnostic.Formatf(r.source, r.line, "comment: %v", err)
	}

	return r.visitor.VisitComment(r.open[owner], comment)
}

// finishElement emits destination names and content for an element opened at
// depth, or arranges for its children to be skipped.
func (r *reader) finishElement(depth int, kind tree.ElementKind, ok bool, names []string) error {
	if !ok {
		r.skip = depth
		return nil
	}

	for i, name := range names[1:] {
		if name == "" {
			continue
		}

		if err := r.visitor.VisitDstName(kind, i, name); err != nil {
			return err
		}
	}

	ok, err := r.visitor.VisitElementContent(kind)
	if err != nil {
		return err
	}

	if !ok {
		r.skip = depth
		return nil
	}

	r.open[depth] = kind

	return nil
}

// names validates the row width and decodes the name cells.
func (r *reader) names(cells []string) ([]string, error) {
	if len(cells) != r.nsCount {
		return nil, diagnostic.Formatf(r.source, r.line, "row has %d name columns, expected %d", len(cells), r.nsCount)
	}

	if !r.escapedNames {
		return cells, nil
	}

	names := make([]string, len(cells))

	for i, cell := range cells {
		name, err := unescape(cell)
		if err != nil {
			return nil, diagnostic.Formatf(r.source, r.line, "name %q: %v", cell, err)
		}

		names[i] = name
	}

	return names, nil
}

// locate adds the current position to classified errors that lack one.
func (r *reader) locate(err error) error {
	var de *diagnostic.Error
	if errors.As(err, &de) && de.Source == "" && de.Line == 0 {
		de.Source = r.source
		de.Line = r.line
	}

	return err
}
