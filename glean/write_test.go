package glean

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type group struct {
	Facts     []json.RawMessage `json:"facts"`
	Predicate string            `json:"predicate"`
}

func decodeGroups(t *testing.T, data []byte) []group {
	t.Helper()

	var groups []group
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	require.NoError(t, dec.Decode(&groups))
	return groups
}

func writeString(t *testing.T, out *Output) string {
	t.Helper()

	var buf bytes.Buffer
	n, err := out.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	return buf.String()
}

// populate adds one fact of every kind, deliberately not in output order.
func populate(out *Output) {
	out.Metadata(4, 1, nil)
	out.DisplayNameSymbol(3, 7)
	out.SrcFile(1, "src/main.go")
	out.FileLanguage(2, 1, 16)
	out.Symbol(3, "scip-go gomod example v1 `example`/main().")
	out.FileRange(4, 1, Range{LineBegin: 1, ColumnBegin: 2, LineEnd: 1, ColumnEnd: 8})
	out.Definition(3, 4)
	out.Reference(3, 4)
	out.Documentation(5, "Returns <b>a & b</b>")
	out.SymbolDocumentation(3, 5)
	out.LocalName(6, "x")
	out.SymbolName(3, 6)
	out.SymbolKind(3, 7)
	out.DisplayName(7, "main")
}

func TestWriteTo_Golden(t *testing.T) {
	want, err := os.ReadFile(filepath.Join("testdata", "all_predicates.json"))
	require.NoError(t, err)

	out := New()
	populate(out)
	assert.Equal(t, string(want), writeString(t, out))
}

func TestWriteTo_Empty(t *testing.T) {
	assert.Equal(t, "[]\n", writeString(t, New()))

	var zero Output
	assert.Equal(t, "[]\n", writeString(t, &zero))
}

func TestWriteTo_SourceFilesReversed(t *testing.T) {
	out := New()
	out.SrcFile(1, "a")
	out.SrcFile(2, "b")
	out.SrcFile(3, "c")

	got := writeString(t, out)
	assert.Equal(t, `[{"facts":[{"id":3,"key":"c"},{"id":2,"key":"b"},{"id":1,"key":"a"}],"predicate":"src.File.1"}]`+"\n", got)
}

func TestWriteTo_MetadataOnly(t *testing.T) {
	out := New()
	out.Metadata(0, 1, nil)

	groups := decodeGroups(t, []byte(writeString(t, out)))
	require.Len(t, groups, 1)
	assert.Equal(t, "scip.Metadata.1", groups[0].Predicate)
	assert.JSONEq(t, `{"key":{"textEncoding":1,"toolInfo":null,"version":0}}`, string(groups[0].Facts[0]))
}

func TestWriteTo_MetadataToolInfo(t *testing.T) {
	out := New()
	info := &ToolInfo{Name: "scip-go", Version: "0.1.4"}
	out.Metadata(1, 2, info)
	info.Name = "changed"

	got := writeString(t, out)
	assert.Equal(t,
		`[{"facts":[{"key":{"textEncoding":2,"toolInfo":{"toolName":"scip-go","toolArguments":[],"version":"0.1.4"},"version":1}}],"predicate":"scip.Metadata.1"}]`+"\n",
		got)
}

func TestWriteTo_Chunking(t *testing.T) {
	const n = ChunkSize + 1

	out := New()
	for i := 1; i <= n; i++ {
		out.Symbol(ID(i), "s")
	}

	groups := decodeGroups(t, []byte(writeString(t, out)))
	require.Len(t, groups, 2)
	require.Len(t, groups[0].Facts, ChunkSize)
	require.Len(t, groups[1].Facts, 1)

	id := func(raw json.RawMessage) ID {
		var rec struct {
			ID ID `json:"id"`
		}
		require.NoError(t, json.Unmarshal(raw, &rec))
		return rec.ID
	}
	for i, g := range groups {
		assert.Equal(t, "scip.Symbol.1", g.Predicate, "group %d", i)
	}
	assert.Equal(t, ID(n), id(groups[0].Facts[0]))
	assert.Equal(t, ID(2), id(groups[0].Facts[ChunkSize-1]))
	assert.Equal(t, ID(1), id(groups[1].Facts[0]))
}

func TestWriteTo_GroupCounts(t *testing.T) {
	counts := map[Predicate]int{
		PredicateSrcFile:    1,
		PredicateReference:  2 * ChunkSize,
		PredicateDefinition: ChunkSize - 1,
		PredicateLocalName:  2*ChunkSize + 3,
	}

	out := New()
	// references first to make sure append order does not matter
	for i := range counts[PredicateReference] {
		out.Reference(ID(i), ID(i+1))
	}
	for i := range counts[PredicateLocalName] {
		out.LocalName(ID(i), "n")
	}
	for i := range counts[PredicateDefinition] {
		out.Definition(ID(i), ID(i+1))
	}
	out.SrcFile(1, "f")

	for p, n := range counts {
		assert.Equal(t, n, out.Len(p), p.String())
	}
	assert.Equal(t, 1+2*ChunkSize+ChunkSize-1+2*ChunkSize+3, out.Total())

	data := []byte(writeString(t, out))
	groups := decodeGroups(t, data)

	want := []struct {
		predicate string
		size      int
	}{
		{"src.File.1", 1},
		{"scip.LocalName.1", ChunkSize},
		{"scip.LocalName.1", ChunkSize},
		{"scip.LocalName.1", 3},
		{"scip.Definition.1", ChunkSize - 1},
		{"scip.Reference.1", ChunkSize},
		{"scip.Reference.1", ChunkSize},
	}
	require.Len(t, groups, len(want))
	for i, w := range want {
		assert.Equal(t, w.predicate, groups[i].Predicate, "group %d", i)
		assert.Len(t, groups[i].Facts, w.size, "group %d", i)
	}

	assert.Equal(t, len(want)-1, strings.Count(string(data), "},\n{\"facts\":"))
	assert.False(t, strings.Contains(string(data), ",]"))
}

func TestWriteTo_Idempotent(t *testing.T) {
	a, b := New(), New()
	populate(a)
	populate(b)

	assert.Equal(t, writeString(t, a), writeString(t, b))
}

func TestWriteTo_LineSeparators(t *testing.T) {
	out := New()
	out.Documentation(1, "a\u2028b\u2029c \\u2028")

	got := writeString(t, out)
	assert.Equal(t, "[{\"facts\":[{\"id\":1,\"key\":\"a\u2028b\u2029c \\\\u2028\"}],\"predicate\":\"scip.Documentation.1\"}]\n", got)
}

func TestWriteTo_Drained(t *testing.T) {
	out := New()
	out.SrcFile(1, "a")
	writeString(t, out)

	assert.Equal(t, 0, out.Total())

	n, err := out.WriteTo(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrDrained)
	assert.Zero(t, n)

	assert.Panics(t, func() { out.SrcFile(2, "b") })
}

var errSink = errors.New("sink is full")

// failingWriter accepts limit writes and then fails.
type failingWriter struct {
	limit int
	buf   bytes.Buffer
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.limit == 0 {
		return 0, errSink
	}
	w.limit--
	return w.buf.Write(p)
}

func TestWriteTo_SinkError(t *testing.T) {
	for _, limit := range []int{0, 1, 2, 3, 4} {
		out := New()
		out.SrcFile(1, "a")
		out.Symbol(2, "b")

		w := &failingWriter{limit: limit}
		n, err := out.WriteTo(w)
		require.Error(t, err, "limit %d", limit)
		assert.Same(t, errSink, err, "sink error must not be wrapped")
		assert.Equal(t, int64(w.buf.Len()), n)
		assert.Panics(t, func() { out.SrcFile(3, "c") })
	}
}

func TestLegacyChunks(t *testing.T) {
	records := make([]any, 0, 2*ChunkSize+1)
	for i := range 2*ChunkSize + 1 {
		records = append(records, i)
	}

	var sizes []int
	var firsts []any
	for chunk := range legacyChunks(records) {
		sizes = append(sizes, len(chunk))
		firsts = append(firsts, chunk[0])
	}
	assert.Equal(t, []int{ChunkSize, ChunkSize, 1}, sizes)
	assert.Equal(t, []any{2 * ChunkSize, ChunkSize, 0}, firsts)

	for range legacyChunks(nil) {
		t.Fatal("no chunks expected for empty input")
	}
}

func TestRawLineSeparators(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"no escapes", `"abc"`, `"abc"`},
		{"line separator", `"a\u2028b"`, "\"a\u2028b\""},
		{"paragraph separator", `"\u2029"`, "\"\u2029\""},
		{"escaped backslash", `"\\u2028"`, `"\\u2028"`},
		{"other unicode escape", `"\u0001"`, `"\u0001"`},
		{"truncated", `\u202`, `\u202`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(rawLineSeparators([]byte(tt.in))))
		})
	}
}
