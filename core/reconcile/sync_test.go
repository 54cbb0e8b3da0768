package reconcile_test

import (
	"testing"

	"cpk-sync/core/reconcile"
	"cpk-sync/core/t2b"
	"cpk-sync/core/t2b/t2btest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync_RoundTripIdentity(t *testing.T) {
	buf := t2btest.NewBuilder().
		Item("data/", "chr001.bin", "", "", 1, 0, 4096).
		Item("data/", "chr002.bin", "", "", 1, 0, 8192).
		Entry("CPK_HEADER", 2).
		Bytes()

	out, plan, err := reconcile.Sync(buf, buf, reconcile.Options{})
	require.NoError(t, err)
	assert.Equal(t, buf, out)
	assert.Equal(t, 2, plan.Summary.Patched)
}

func TestSync_PatchesSizeField(t *testing.T) {
	origBuf := t2btest.NewBuilder().
		Item("data/", "chr001.bin", 0, 0, 1, 0, 100).
		Bytes()
	patchedBuf := t2btest.NewBuilder().
		Item("data/", "chr001.bin", "", "", 1, 0, 4096).
		Bytes()

	out, plan, err := reconcile.Sync(origBuf, patchedBuf, reconcile.Options{})
	require.NoError(t, err)
	require.Len(t, plan.Patches, 1)

	// Width preservation: the output buffer length never changes.
	require.Len(t, out, len(origBuf))

	// The patched entry's size field decodes to the new value.
	outTbl, err := t2b.Parse(out, t2b.SelectAuto)
	require.NoError(t, err)
	dest, ok := outTbl.Records[0].DestField()
	require.True(t, ok)
	assert.Equal(t, int64(4096), dest.Int)

	// Locality: all bytes outside the patched size field are unchanged.
	p := plan.Patches[0]
	for i := range out {
		if i >= p.Offset && i < p.Offset+p.Width {
			continue
		}
		assert.Equal(t, origBuf[i], out[i], "byte %d outside the size field changed", i)
	}
}

func TestSync_UnmatchedKeepsOriginalSize(t *testing.T) {
	origBuf := t2btest.NewBuilder().
		Item("data/", "chr001.bin", 0, 0, 1, 0, 100).
		Item("data/", "chr002.bin", 0, 0, 1, 0, 200).
		Bytes()
	patchedBuf := t2btest.NewBuilder().
		Item("data/", "chr001.bin", "", "", 1, 0, 4096).
		Bytes()

	out, plan, err := reconcile.Sync(origBuf, patchedBuf, reconcile.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Summary.Unmatched)

	outTbl, err := t2b.Parse(out, t2b.SelectAuto)
	require.NoError(t, err)
	dest, ok := outTbl.Records[1].DestField()
	require.True(t, ok)
	assert.Equal(t, int64(200), dest.Int)
}

func TestSync_ForcedSchema(t *testing.T) {
	origBuf := t2btest.NewBuilder().
		Item("data/", "chr001.bin", 0, 0, 1, 0, 100).
		Bytes()
	// This patched table matches neither structural discriminator, which is
	// what the selector override exists for.
	patchedBuf := t2btest.NewBuilder().
		Item("data/", "chr001.bin", 7, 7, 1, 0, 4096).
		Bytes()

	_, plan, err := reconcile.Sync(origBuf, patchedBuf, reconcile.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Summary.Unmatched)

	_, plan, err = reconcile.Sync(origBuf, patchedBuf, reconcile.Options{Schema: t2b.SelectCurrent})
	require.NoError(t, err)
	require.Len(t, plan.Patches, 1)
	assert.Equal(t, int64(4096), plan.Patches[0].Value)
}

func TestSync_DuplicateKeyProducesNoOutput(t *testing.T) {
	origBuf := t2btest.NewBuilder().
		Item("data/", "chr001.bin", 0, 0, 1, 0, 100).
		Bytes()
	patchedBuf := t2btest.NewBuilder().
		Item("data/", "chr001.bin", "", "", 1, 0, 4096).
		Item("data/", "chr001.bin", "", "", 1, 0, 8192).
		Bytes()

	out, plan, err := reconcile.Sync(origBuf, patchedBuf, reconcile.Options{})
	assert.ErrorIs(t, err, reconcile.ErrDuplicateKey)
	assert.Nil(t, out)
	assert.Nil(t, plan)
}

func TestSync_UnknownSchemaSelector(t *testing.T) {
	buf := t2btest.NewBuilder().
		Item("data/", "chr001.bin", "", "", 1, 0, 4096).
		Bytes()

	out, _, err := reconcile.Sync(buf, buf, reconcile.Options{Schema: t2b.Selector("v2")})
	assert.ErrorIs(t, err, t2b.ErrUnsupportedSchema)
	assert.Nil(t, out)
}
