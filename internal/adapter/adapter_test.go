package adapter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qm-layer/internal/diagnostic"
	"qm-layer/internal/tiny"
	"qm-layer/internal/tree"
)

const threeNs = "tiny\t2\t0\tofficial\tintermediary\tnamed\n" +
	"c\ta\tnet/minecraft/class_1\tnet/minecraft/Block\n" +
	"\tc\tA block.\n" +
	"\tf\tLa;\tb\tfield_1\tparent\n" +
	"\tm\t(La;Lzz;)V\tc\tmethod_1\t\n" +
	"\t\tp\t1\t\t\tstate\n" +
	"c\tzz\t\tcom/example/Orphan\n"

func parse(t *testing.T, s string) *tree.MappingTree {
	t.Helper()

	mt := tree.New()
	require.NoError(t, tiny.Read(strings.NewReader(s), mt))

	return mt
}

func apply(t *testing.T, src *tree.MappingTree, transforms ...Transform) *tree.MappingTree {
	t.Helper()

	out := tree.New()
	require.NoError(t, src.Accept(Chain(out, transforms...)))

	return out
}

func TestRenameRelabelsNamespacesOnly(t *testing.T) {
	src := parse(t, threeNs)
	out := apply(t, src, Rename(map[string]string{"intermediary": "hashed", "absent": "x"}))

	assert.Equal(t, []string{"official", "hashed", "named"}, out.Namespaces())
	assert.Equal(t, src.Stats(), out.Stats())

	from := src.NamespaceID("intermediary")
	to := out.NamespaceID("hashed")

	for _, c := range src.Classes() {
		oc := out.Class(c.SrcName())
		require.NotNil(t, oc)
		assert.Equal(t, c.DstName(from), oc.DstName(to))

		for _, m := range c.Methods() {
			om := oc.Method(m.SrcName(), m.SrcDesc())
			require.NotNil(t, om)
			assert.Equal(t, m.SrcDesc(), om.SrcDesc())
			assert.Equal(t, m.DstName(from), om.DstName(to))
		}
	}
}

func TestRenameSourceNamespace(t *testing.T) {
	src := parse(t, "tiny\t2\t0\tobfuscated\tintermediary\nc\ta.b.C\tnet/minecraft/class_1\n")
	out := apply(t, src, Rename(map[string]string{"obfuscated": "official"}))

	assert.Equal(t, "official", out.SrcNamespace())
	assert.Equal(t, "net/minecraft/class_1", out.Class("a.b.C").DstName(0))
}

func TestReorderIsLossless(t *testing.T) {
	src := parse(t, threeNs)

	swapped := apply(t, src, ReorderDst("named", "intermediary"))
	assert.Equal(t, []string{"named", "intermediary"}, swapped.DstNamespaces())
	assert.Equal(t, "net/minecraft/Block", swapped.Class("a").DstName(0))
	assert.Equal(t, "net/minecraft/class_1", swapped.Class("a").DstName(1))

	restored := apply(t, swapped, ReorderDst("intermediary", "named"))
	assert.True(t, tree.Equal(src, restored), "diff %v\n%s", tree.Diff(src, restored), spew.Sdump(restored.Namespaces()))
}

func TestReorderSubset(t *testing.T) {
	src := parse(t, threeNs)
	out := apply(t, src, ReorderDst("named"))

	assert.Equal(t, []string{"official", "named"}, out.Namespaces())
	assert.Equal(t, "net/minecraft/Block", out.Class("a").DstName(0))
	assert.Equal(t, "parent", out.Class("a").Field("b", "La;").DstName(0))
	assert.Equal(t, src.Stats(), out.Stats())
}

func TestReorderUnknownNamespace(t *testing.T) {
	src := parse(t, threeNs)

	err := src.Accept(Chain(tree.New(), ReorderDst("nmaed")))
	require.ErrorIs(t, err, diagnostic.ErrSchema)

	var de *diagnostic.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"named"}, de.Suggestions)

	err = src.Accept(Chain(tree.New(), ReorderDst("named", "named")))
	assert.ErrorIs(t, err, diagnostic.ErrSchema)
}

func TestSourceSwitch(t *testing.T) {
	src := parse(t, threeNs)
	out := apply(t, src, SwitchSource("intermediary"))

	assert.Equal(t, []string{"intermediary", "official", "named"}, out.Namespaces())

	c := out.Class("net/minecraft/class_1")
	require.NotNil(t, c)
	assert.Equal(t, "a", c.DstName(0))
	assert.Equal(t, "net/minecraft/Block", c.DstName(1))
	assert.Equal(t, "A block.", c.Comment())

	f := c.Field("field_1", "")
	require.NotNil(t, f)
	assert.Equal(t, "Lnet/minecraft/class_1;", f.SrcDesc())
	assert.Equal(t, "b", f.DstName(0))

	// Classes without an intermediary name keep their old key.
	m := c.Method("method_1", "(Lnet/minecraft/class_1;Lzz;)V")
	require.NotNil(t, m)
	require.Len(t, m.Args(), 1)
	assert.Equal(t, "state", m.Args()[0].DstName(1))

	orphan := out.Class("zz")
	require.NotNil(t, orphan)
	assert.Equal(t, "zz", orphan.DstName(0))
	assert.Equal(t, "com/example/Orphan", orphan.DstName(1))
}

func TestSourceSwitchDropMissing(t *testing.T) {
	src := parse(t, threeNs)
	out := apply(t, src, SwitchSource("intermediary", DropMissing()))

	assert.Nil(t, out.Class("zz"))

	// The method has no named name but does have an intermediary one.
	c := out.Class("net/minecraft/class_1")
	require.NotNil(t, c)
	assert.Len(t, c.Methods(), 1)
}

func TestSourceSwitchToCurrentSourceIsIdentity(t *testing.T) {
	src := parse(t, threeNs)
	out := apply(t, src, SwitchSource("official"))

	assert.True(t, tree.Equal(src, out), "diff %v", tree.Diff(src, out))
}

func TestSourceSwitchUnknownNamespace(t *testing.T) {
	src := parse(t, threeNs)

	err := src.Accept(Chain(tree.New(), SwitchSource("intermediate")))
	require.ErrorIs(t, err, diagnostic.ErrSchema)

	var de *diagnostic.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"intermediary"}, de.Suggestions)
}

func TestChainOrder(t *testing.T) {
	src := parse(t, "tiny\t2\t0\tobfuscated\tint\nc\ta\tclass_1\n")

	// Rename runs first, so the switch can see the renamed namespace.
	out := apply(t, src, Rename(map[string]string{"int": "intermediary"}), SwitchSource("intermediary"))
	assert.Equal(t, []string{"intermediary", "obfuscated"}, out.Namespaces())

	err := src.Accept(Chain(tree.New(), SwitchSource("intermediary"), Rename(map[string]string{"int": "intermediary"})))
	assert.ErrorIs(t, err, diagnostic.ErrSchema)
}

func TestExportChainWritesIntermediaryToNamed(t *testing.T) {
	src := parse(t, threeNs)

	var buf bytes.Buffer
	require.NoError(t, src.Accept(Chain(tiny.NewWriter(&buf), SwitchSource("intermediary"), ReorderDst("named"))))

	expected := "tiny\t2\t0\tintermediary\tnamed\n" +
		"c\tnet/minecraft/class_1\tnet/minecraft/Block\n" +
		"\tc\tA block.\n" +
		"\tf\tLnet/minecraft/class_1;\tfield_1\tparent\n" +
		"\tm\t(Lnet/minecraft/class_1;Lzz;)V\tmethod_1\t\n" +
		"\t\tp\t1\t\tstate\n" +
		"c\tzz\tcom/example/Orphan\n"

	assert.Equal(t, expected, buf.String())
}
