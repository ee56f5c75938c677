package etl

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pixperk/bulksql/internal/bulk"
	"github.com/pixperk/bulksql/internal/config"
	"github.com/pixperk/bulksql/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	writes  map[string][]string
	failing error
}

func newMemorySink() *memorySink {
	return &memorySink{writes: make(map[string][]string)}
}

func (m *memorySink) Write(_ context.Context, target sink.Target, stmt string) error {
	if m.failing != nil {
		return m.failing
	}
	if stmt == "" {
		return sink.ErrEmptyStatement
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes[target.FileName()] = append(m.writes[target.FileName()], stmt)
	return nil
}

type fakeExtractor map[string]bulk.Batch

func (f fakeExtractor) Extract(_ context.Context, table string, limit int) (bulk.Batch, error) {
	rows, ok := f[table]
	if !ok {
		return nil, errors.New("relation does not exist")
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func numbered(n int) bulk.Batch {
	rows := make(bulk.Batch, n)
	for i := range rows {
		rows[i] = bulk.Row{{Column: "id", Value: i + 1}, {Column: "v", Value: "x"}}
	}
	return rows
}

func TestBuildStatements_InsertChunks(t *testing.T) {
	stmts, err := BuildStatements("t", numbered(5), BuildOptions{Kind: KindInsert, BatchSize: 2, Strict: true})
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t, "INSERT INTO t (`id`,`v`) VALUES (5,'x');\n", stmts[2])
}

func TestBuildStatements_Update(t *testing.T) {
	stmts, err := BuildStatements("t", numbered(2), BuildOptions{
		Kind:   KindUpdate,
		Keys:   bulk.NewKeySet("id"),
		Strict: true,
	})
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "UPDATE t SET v = CASE WHEN id = '1' THEN 'x' WHEN id = '2' THEN 'x' END WHERE id IN ('1','2');\n", stmts[0])
}

func TestBuildStatements_Strict(t *testing.T) {
	ragged := bulk.Batch{
		{{Column: "id", Value: 1}, {Column: "v", Value: 1}},
		{{Column: "id", Value: 2}},
	}

	_, err := BuildStatements("t", ragged, BuildOptions{Kind: KindInsert, Strict: true})
	assert.ErrorIs(t, err, bulk.ErrMalformedRow)

	// permissive mode keeps going
	stmts, err := BuildStatements("t", ragged, BuildOptions{Kind: KindInsert})
	require.NoError(t, err)
	assert.Equal(t, []string{"INSERT INTO t (`id`,`v`) VALUES (1,1),(2);\n"}, stmts)

	missingKey := bulk.Batch{{{Column: "v", Value: 1}}}
	_, err = BuildStatements("t", missingKey, BuildOptions{Kind: KindUpdate, Keys: bulk.NewKeySet("id"), Strict: true})
	assert.ErrorIs(t, err, bulk.ErrMissingKey)

	_, err = BuildStatements("t", numbered(1), BuildOptions{Kind: KindUpdate, Strict: true})
	assert.ErrorContains(t, err, "key column")

	_, err = BuildStatements("t; DROP", numbered(1), BuildOptions{})
	assert.ErrorContains(t, err, "invalid table name")
}

func TestLoadStatements_StopsOnError(t *testing.T) {
	s := newMemorySink()
	s.failing = errors.New("disk full")

	n, err := LoadStatements(context.Background(), s, sink.Target{Table: "t"}, []string{"A;", "B;"}, nil)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, s.failing)
	assert.ErrorContains(t, err, "statement 1/2")
}

func TestRunJob(t *testing.T) {
	s := newMemorySink()
	var started, completed []string

	res := RunJob(context.Background(), s, Job{
		Table:  config.ResolvedTableConfig{Name: "items", BatchSize: 2, FileName: "seed"},
		Rows:   numbered(3),
		Kind:   KindInsert,
		Strict: true,
	}, &Options{
		OnTableStart:    func(name string) { started = append(started, name) },
		OnTableComplete: func(name string, _ TableResult) { completed = append(completed, name) },
	})

	require.NoError(t, res.Error)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.RowCount)
	assert.Equal(t, 2, res.Statements)
	assert.Len(t, s.writes["seed"], 2)
	assert.Equal(t, []string{"items"}, started)
	assert.Equal(t, []string{"items"}, completed)
}

func TestRunJob_NothingToWrite(t *testing.T) {
	var failed error
	res := RunJob(context.Background(), newMemorySink(), Job{
		Table: config.ResolvedTableConfig{Name: "items"},
		Rows:  bulk.Batch{},
	}, &Options{OnTableError: func(_ string, err error) { failed = err }})

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Error, ErrNothingToWrite)
	assert.Equal(t, res.Error, failed)
}

func TestDumpTables(t *testing.T) {
	src := fakeExtractor{
		"a": numbered(4),
		"b": numbered(1),
	}
	s := newMemorySink()
	tables := []config.ResolvedTableConfig{
		{Name: "a", BatchSize: 3},
		{Name: "missing", BatchSize: 3},
		{Name: "b", BatchSize: 3},
	}

	results := DumpTables(context.Background(), src, s, tables, 0, true, nil)

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.Equal(t, 2, results[0].Statements)
	assert.False(t, results[1].Success)
	assert.ErrorContains(t, results[1].Error, "extraction failed")
	assert.True(t, results[2].Success)
	assert.Len(t, s.writes["a"], 2)
	assert.Len(t, s.writes["b"], 1)
}

func TestDumpTables_Limit(t *testing.T) {
	s := newMemorySink()
	results := DumpTables(context.Background(), fakeExtractor{"a": numbered(10)}, s,
		[]config.ResolvedTableConfig{{Name: "a", BatchSize: 100}}, 2, false, nil)

	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].RowCount)
	assert.Equal(t, []string{"INSERT INTO a (`id`,`v`) VALUES (1,'x'),(2,'x');\n"}, s.writes["a"])
}

func TestDumpTables_EmptyTable(t *testing.T) {
	for _, strict := range []bool{true, false} {
		s := newMemorySink()
		var completed []string
		results := DumpTables(context.Background(), fakeExtractor{"empty": bulk.Batch{}}, s,
			[]config.ResolvedTableConfig{{Name: "empty", BatchSize: 10}}, 0, strict,
			&Options{OnTableComplete: func(name string, _ TableResult) { completed = append(completed, name) }})

		require.Len(t, results, 1)
		assert.True(t, results[0].Success, "strict=%v", strict)
		assert.NoError(t, results[0].Error)
		assert.Zero(t, results[0].Statements)
		assert.Empty(t, s.writes)
		assert.Equal(t, []string{"empty"}, completed)
	}
}
