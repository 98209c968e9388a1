package tree

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qm-layer/internal/diagnostic"
)

// sample builds official -> [intermediary, named] with one class, a field,
// a method and a parameter.
func sample(t *testing.T) *MappingTree {
	t.Helper()

	mt := New()
	require.NoError(t, mt.VisitNamespaces("official", []string{"intermediary", "named"}))
	require.NoError(t, mt.VisitMetadata("escaped-names", ""))

	_, err := mt.VisitClass("a")
	require.NoError(t, err)
	require.NoError(t, mt.VisitDstName(KindClass, 0, "net/minecraft/class_1"))
	require.NoError(t, mt.VisitDstName(KindClass, 1, "net/minecraft/Block"))
	require.NoError(t, mt.VisitComment(KindClass, "A block."))

	_, err = mt.VisitField("b", "La;")
	require.NoError(t, err)
	require.NoError(t, mt.VisitDstName(KindField, 0, "field_1"))
	require.NoError(t, mt.VisitDstName(KindField, 1, "hardness"))

	_, err = mt.VisitMethod("c", "(La;I)V")
	require.NoError(t, err)
	require.NoError(t, mt.VisitDstName(KindMethod, 0, "method_1"))

	_, err = mt.VisitMethodArg(-1, 1, "")
	require.NoError(t, err)
	require.NoError(t, mt.VisitDstName(KindMethodArg, 1, "other"))

	require.NoError(t, mt.VisitEnd())

	return mt
}

func TestBuildAndLookup(t *testing.T) {
	mt := sample(t)

	assert.Equal(t, []string{"official", "intermediary", "named"}, mt.Namespaces())
	assert.Equal(t, SrcNamespaceID, mt.NamespaceID("official"))
	assert.Equal(t, 1, mt.NamespaceID("named"))
	assert.Equal(t, MissingNamespaceID, mt.NamespaceID("hashed"))

	c := mt.Class("a")
	require.NotNil(t, c)
	assert.Equal(t, "net/minecraft/class_1", c.DstName(0))
	assert.Equal(t, "net/minecraft/Block", c.Name(1))
	assert.Equal(t, "a", c.Name(SrcNamespaceID))
	assert.Equal(t, "A block.", c.Comment())
	assert.Same(t, c, mt.ClassByName("net/minecraft/Block", 1))

	f := c.Field("b", "")
	require.NotNil(t, f)
	assert.Equal(t, "La;", f.SrcDesc())
	assert.Equal(t, "Lnet/minecraft/class_1;", f.Desc(0))

	m := c.Method("c", "(La;I)V")
	require.NotNil(t, m)
	assert.Equal(t, "(Lnet/minecraft/Block;I)V", m.Desc(1))
	assert.Equal(t, "", m.DstName(1))
	assert.Equal(t, "c", m.NameOrSrc(1))

	a := m.Arg(-1, 1)
	require.NotNil(t, a)
	assert.Equal(t, "other", a.DstName(1))
	assert.Same(t, m, a.Method())

	assert.Equal(t, Stats{Classes: 1, Fields: 1, Methods: 1, Args: 1}, mt.Stats())
}

func TestAcceptReplaysEquivalentTree(t *testing.T) {
	mt := sample(t)

	copied := New()
	require.NoError(t, mt.Accept(copied))

	assert.True(t, Equal(mt, copied), "diff: %v\n%s", Diff(mt, copied), spew.Sdump(copied.Classes()))
}

func TestMergeAppendsDestinationNamespaces(t *testing.T) {
	mt := New()

	require.NoError(t, mt.VisitNamespaces("official", []string{"named"}))
	_, err := mt.VisitClass("a")
	require.NoError(t, err)
	require.NoError(t, mt.VisitDstName(KindClass, 0, "com/example/Thing"))
	require.NoError(t, mt.VisitEnd())

	require.NoError(t, mt.VisitNamespaces("official", []string{"intermediary", "named"}))
	_, err = mt.VisitClass("a")
	require.NoError(t, err)
	require.NoError(t, mt.VisitDstName(KindClass, 0, "net/minecraft/class_1"))
	require.NoError(t, mt.VisitDstName(KindClass, 1, "com/example/Thing"))
	_, err = mt.VisitClass("z")
	require.NoError(t, err)
	require.NoError(t, mt.VisitEnd())

	assert.Equal(t, []string{"named", "intermediary"}, mt.DstNamespaces())
	require.Len(t, mt.Classes(), 2)

	c := mt.Class("a")
	assert.Equal(t, "com/example/Thing", c.DstName(0))
	assert.Equal(t, "net/minecraft/class_1", c.DstName(1))
	assert.Equal(t, "", mt.Class("z").DstName(1))
}

func TestNamespaceSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		dst  []string
	}{
		{name: "different source", src: "obfuscated", dst: []string{"intermediary"}},
		{name: "duplicate destination", src: "official", dst: []string{"named", "named"}},
		{name: "destination equals source", src: "official", dst: []string{"official"}},
		{name: "empty source", src: "", dst: []string{"named"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt := New()
			require.NoError(t, mt.VisitNamespaces("official", []string{"intermediary"}))
			require.NoError(t, mt.VisitEnd())

			err := mt.VisitNamespaces(tt.src, tt.dst)
			assert.ErrorIs(t, err, diagnostic.ErrSchema)
		})
	}
}

func TestContradictingNameIsConflict(t *testing.T) {
	mt := sample(t)

	require.NoError(t, mt.VisitNamespaces("official", []string{"named"}))
	_, err := mt.VisitClass("a")
	require.NoError(t, err)

	// Same name again is fine, a different one is not.
	require.NoError(t, mt.VisitDstName(KindClass, 0, "net/minecraft/Block"))
	err = mt.VisitDstName(KindClass, 0, "net/minecraft/Stone")
	require.ErrorIs(t, err, diagnostic.ErrConflict)
	assert.Contains(t, err.Error(), "net/minecraft/Stone")

	// Empty names never overwrite.
	require.NoError(t, mt.VisitDstName(KindClass, 0, ""))
	assert.Equal(t, "net/minecraft/Block", mt.Class("a").DstName(1))
}

func TestMemberKeys(t *testing.T) {
	mt := New()
	require.NoError(t, mt.VisitNamespaces("official", []string{"named"}))
	_, err := mt.VisitClass("a")
	require.NoError(t, err)

	// Overloads are distinct entries.
	_, err = mt.VisitMethod("m", "()V")
	require.NoError(t, err)
	_, err = mt.VisitMethod("m", "(I)V")
	require.NoError(t, err)
	assert.Len(t, mt.Class("a").Methods(), 2)

	// A descriptor-less lookup of an overloaded name is ambiguous.
	_, err = mt.VisitMethod("m", "")
	assert.ErrorIs(t, err, diagnostic.ErrConflict)

	// A descriptor-less field picks up its descriptor later.
	_, err = mt.VisitField("f", "")
	require.NoError(t, err)
	_, err = mt.VisitField("f", "I")
	require.NoError(t, err)

	fields := mt.Class("a").Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, "I", fields[0].SrcDesc())
}

func TestEventsOutsideElementFail(t *testing.T) {
	mt := New()

	_, err := mt.VisitClass("a")
	require.ErrorIs(t, err, diagnostic.ErrFormat)

	require.NoError(t, mt.VisitNamespaces("official", []string{"named"}))

	_, err = mt.VisitField("f", "I")
	require.ErrorIs(t, err, diagnostic.ErrFormat)

	_, err = mt.VisitClass("a")
	require.NoError(t, err)

	err = mt.VisitDstName(KindMethod, 0, "x")
	require.ErrorIs(t, err, diagnostic.ErrFormat)

	err = mt.VisitDstName(KindClass, 3, "x")
	require.ErrorIs(t, err, diagnostic.ErrFormat)
}

// skipper drops one class and records everything else it sees.
type skipper struct {
	*MappingTree

	skip string
}

func (s *skipper) VisitClass(srcName string) (bool, error) {
	if srcName == s.skip {
		return false, nil
	}

	return s.MappingTree.VisitClass(srcName)
}

func TestAcceptHonorsSkips(t *testing.T) {
	mt := sample(t)

	require.NoError(t, mt.VisitNamespaces("official", []string{"intermediary", "named"}))
	_, err := mt.VisitClass("d")
	require.NoError(t, err)
	require.NoError(t, mt.VisitEnd())

	out := &skipper{MappingTree: New(), skip: "a"}
	require.NoError(t, mt.Accept(out))

	assert.Nil(t, out.Class("a"))
	assert.NotNil(t, out.Class("d"))
}

func TestEqualDetectsDifferences(t *testing.T) {
	a := sample(t)
	b := sample(t)
	assert.True(t, Equal(a, b))

	require.NoError(t, b.VisitNamespaces("official", []string{"intermediary", "named"}))
	_, err := b.VisitClass("a")
	require.NoError(t, err)
	_, err = b.VisitField("extra", "I")
	require.NoError(t, err)
	require.NoError(t, b.VisitEnd())

	assert.False(t, Equal(a, b))
	assert.NotEmpty(t, Diff(a, b))
}

func TestElementKindString(t *testing.T) {
	assert.Equal(t, "Class", KindClass.String())
	assert.Equal(t, "MethodArg", KindMethodArg.String())
	assert.Equal(t, "ElementKind(9)", ElementKind(9).String())
}
