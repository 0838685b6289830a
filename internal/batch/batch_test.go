package batch

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/assetpipe/internal/assettype"
)

// mockSource is a byte slice source that counts reads and can fail reads
// overlapping a poisoned offset.
type mockSource struct {
	data   []byte
	reads  int
	poison int64
	bufs   [][]byte
}

func newMockSource(data []byte) *mockSource {
	return &mockSource{data: data, poison: -1}
}

func (m *mockSource) ReadAt(p []byte, off int64) (int, error) {
	m.reads++
	m.bufs = append(m.bufs, p)
	if m.poison >= off && m.poison < off+int64(len(p)) {
		return 0, errors.New("injected fault")
	}
	return bytes.NewReader(m.data).ReadAt(p, off)
}

func (m *mockSource) Size() int64 {
	return int64(len(m.data))
}

func ref(name string, off, size int64) Ref {
	return Ref{Container: "c", Name: name, Offset: off, Size: size, Kind: assettype.KindOther, Hash: name}
}

func collect(r *Reader, src Source, refs []Ref) []Result {
	var out []Result
	r.ReadAll(src, refs, func(res Result) { out = append(out, res) })
	return out
}

func TestSplitGroups(t *testing.T) {
	t.Parallel()

	plan := []Ref{
		{Container: "a", Name: "1"},
		{Container: "a", Name: "2"},
		{Container: "b", Name: "3"},
		{Container: "a", Name: "4"},
	}
	groups := SplitGroups(plan)
	require.Len(t, groups, 3)
	assert.Equal(t, "a", groups[0].Container)
	assert.Len(t, groups[0].Refs, 2)
	assert.Equal(t, "b", groups[1].Container)
	assert.Equal(t, "a", groups[2].Container)
	assert.Equal(t, "4", groups[2].Refs[0].Name)

	assert.Empty(t, SplitGroups(nil))
}

func TestSortByOffset(t *testing.T) {
	t.Parallel()

	refs := []Ref{ref("c", 20, 1), ref("a", 0, 1), ref("b", 10, 1)}
	SortByOffset(refs)
	assert.Equal(t, "a", refs[0].Name)
	assert.Equal(t, "b", refs[1].Name)
	assert.Equal(t, "c", refs[2].Name)
}

func TestGroupAdjacent(t *testing.T) {
	t.Parallel()

	refs := []Ref{ref("a", 0, 10), ref("b", 10, 5), ref("c", 20, 5), ref("d", 25, 5)}
	spans := groupAdjacent(refs, 0)
	require.Len(t, spans, 2)
	assert.Equal(t, int64(0), spans[0].start)
	assert.Equal(t, int64(15), spans[0].end)
	assert.Len(t, spans[0].refs, 2)
	assert.Equal(t, int64(20), spans[1].start)
	assert.Equal(t, int64(30), spans[1].end)

	capped := groupAdjacent(refs, 12)
	assert.Len(t, capped, 3)
}

func TestReadAllCoalescesAdjacent(t *testing.T) {
	t.Parallel()

	src := newMockSource([]byte("aaaabbbbccccdddd"))
	refs := []Ref{ref("a", 0, 4), ref("b", 4, 4), ref("d", 12, 4)}

	results := collect(NewReader(), src, refs)
	require.Len(t, results, 3)
	for _, res := range results {
		require.NoError(t, res.Err)
	}
	assert.Equal(t, []byte("aaaa"), results[0].Data)
	assert.Equal(t, []byte("bbbb"), results[1].Data)
	assert.Equal(t, []byte("dddd"), results[2].Data)
	assert.Equal(t, 2, src.reads)
}

func TestReadAllCoalescedResultsOwnTheirBytes(t *testing.T) {
	t.Parallel()

	src := newMockSource([]byte("aaaabbbbcccc"))
	results := collect(NewReader(), src, []Ref{ref("a", 0, 4), ref("b", 4, 4), ref("c", 8, 4)})
	require.Len(t, results, 3)
	require.Equal(t, 1, src.reads)

	// Scribbling over the span buffer must not reach the results.
	clear(src.bufs[0])
	assert.Equal(t, []byte("aaaa"), results[0].Data)
	assert.Equal(t, []byte("bbbb"), results[1].Data)
	assert.Equal(t, []byte("cccc"), results[2].Data)
}

func TestReadAllFaultIsolated(t *testing.T) {
	t.Parallel()

	src := newMockSource([]byte("aaaabbbbcccc"))
	src.poison = 5
	refs := []Ref{ref("a", 0, 4), ref("b", 4, 4), ref("c", 8, 4)}

	results := collect(NewReader(), src, refs)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, []byte("cccc"), results[2].Data)
}

func TestReadAllSeparateReads(t *testing.T) {
	t.Parallel()

	src := newMockSource([]byte("aaaabbbb"))
	results := collect(NewReader(WithMaxSpanBytes(-1)), src, []Ref{ref("a", 0, 4), ref("b", 4, 4)})
	require.Len(t, results, 2)
	assert.Equal(t, 2, src.reads)
}

func TestReadAllRejectsImplausibleSizes(t *testing.T) {
	t.Parallel()

	src := newMockSource(make([]byte, 32))
	refs := []Ref{ref("neg", 0, -1), ref("big", 0, 20), ref("past", 30, 4), ref("ok", 0, 4)}

	results := collect(NewReader(WithMaxAssetSize(16)), src, refs)
	require.Len(t, results, 4)
	for _, res := range results[:3] {
		assert.ErrorIs(t, res.Err, assettype.ErrAssetSize, res.Ref.Name)
	}
	assert.NoError(t, results[3].Err)
	assert.Equal(t, 1, src.reads)
}

func TestReadOneShortRead(t *testing.T) {
	t.Parallel()

	r := NewReader()
	_, err := readRange(bytes.NewReader([]byte("ab")), 0, 4)
	assert.ErrorIs(t, err, ErrShortRead)

	data, err := r.ReadOne(newMockSource([]byte("hello")), ref("h", 1, 3))
	require.NoError(t, err)
	assert.Equal(t, []byte("ell"), data)
}

var _ io.ReaderAt = (*mockSource)(nil)
