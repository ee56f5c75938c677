package bulk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_Empty(t *testing.T) {
	assert.Equal(t, "", Insert("t", nil))
	assert.Equal(t, "", Insert("t", Batch{}))
	assert.Equal(t, "", Insert("t", Batch{{}}))
}

func TestInsert_TwoRows(t *testing.T) {
	rows := Batch{
		{{"a", 1}, {"b", "x"}},
		{{"a", 2}, {"b", "y"}},
	}

	got := Insert("t", rows)

	assert.Equal(t, "INSERT INTO t (`a`,`b`) VALUES (1,'x'),(2,'y');\n", got)
}

func TestInsert_ValueFormatting(t *testing.T) {
	rows := Batch{
		{{"id", 1}, {"name", "O'Brien \"Bob\"\\\n"}, {"note", nil}, {"created_at", Raw("NOW()")}, {"price", 9.5}},
	}

	got := Insert("people", rows)

	want := "INSERT INTO people (`id`,`name`,`note`,`created_at`,`price`) VALUES " +
		`(1,'O\'Brien \"Bob\"\\\n',NULL,NOW(),9.5);` + "\n"
	assert.Equal(t, want, got)
}

func TestInsert_TupleShape(t *testing.T) {
	const n, k = 25, 4
	rows := make(Batch, n)
	for i := range rows {
		rows[i] = Row{{"c1", i}, {"c2", i * 2}, {"c3", i * 3}, {"c4", i * 4}}
	}

	got := Insert("nums", rows)

	require.True(t, strings.HasPrefix(got, "INSERT INTO nums (`c1`,`c2`,`c3`,`c4`) VALUES ("))
	require.True(t, strings.HasSuffix(got, ");\n"))

	body := strings.TrimSuffix(strings.SplitN(got, " VALUES ", 2)[1], ";\n")
	tuples := strings.Split(strings.Trim(body, "()"), "),(")
	require.Len(t, tuples, n)
	for _, tuple := range tuples {
		assert.Len(t, strings.Split(tuple, ","), k)
	}
}

func TestInsert_ColumnOrderFromFirstRow(t *testing.T) {
	rows := Batch{
		{{"b", 1}, {"a", 2}},
		{{"b", 3}, {"a", 4}},
	}

	got := Insert("t", rows)

	assert.Equal(t, "INSERT INTO t (`b`,`a`) VALUES (1,2),(3,4);\n", got)
}

func TestInsert_TableNameNotQuoted(t *testing.T) {
	got := Insert("db.t", Batch{{{"a", 1}}})
	assert.Equal(t, "INSERT INTO db.t (`a`) VALUES (1);\n", got)
}
