package framex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Text(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	cases := []struct {
		value Value
		want  string
	}{
		{Null(), ""},
		{Int(42), "42"},
		{Float(1.5), "1.5"},
		{Str("hello"), "hello"},
		{Bool(true), "true"},
		{Time(ts), "2024-05-01 12:30:00"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.value.Text())
	}
}

func TestValue_Float64(t *testing.T) {
	f, ok := Int(3).Float64()
	require.True(t, ok)
	assert.Equal(t, 3.0, f)

	f, ok = Str(" 2.5 ").Float64()
	require.True(t, ok)
	assert.Equal(t, 2.5, f)

	_, ok = Str("abc").Float64()
	assert.False(t, ok)

	_, ok = Null().Float64()
	assert.False(t, ok)

	f, ok = Bool(true).Float64()
	require.True(t, ok)
	assert.Equal(t, 1.0, f)
}

func TestValue_Compare(t *testing.T) {
	assert.Equal(t, 0, Int(2).Compare(Float(2.0))) // numeric families compare numerically
	assert.Equal(t, -1, Null().Compare(Int(0)))    // null before everything
	assert.Equal(t, 1, Int(0).Compare(Null()))
	assert.Equal(t, -1, Str("a").Compare(Str("b")))
	assert.Equal(t, -1, Time(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)).
		Compare(Time(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))))
}

func TestFromAny(t *testing.T) {
	assert.Equal(t, Null(), FromAny(nil))
	assert.Equal(t, Int(5), FromAny(5))
	assert.Equal(t, Int(5), FromAny(int64(5)))
	assert.Equal(t, Float(2.5), FromAny(2.5))
	assert.Equal(t, Str("x"), FromAny("x"))
	assert.Equal(t, Bool(true), FromAny(true))
}

func TestTable_AddColumnBackfillsNull(t *testing.T) {
	tbl := NewTable("a")
	tbl.AppendRow(Row{"a": Int(1)})
	tbl.AddColumn("b")
	require.Equal(t, []string{"a", "b"}, tbl.Columns)
	assert.True(t, tbl.Rows[0].Get("b").IsNull())
}

func TestTable_AppendRowDropsUndeclared(t *testing.T) {
	tbl := NewTable("a")
	tbl.AppendRow(Row{"a": Int(1), "ghost": Int(2)})
	_, ok := tbl.Rows[0]["ghost"]
	assert.False(t, ok)
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl := NewTable("a")
	tbl.AppendRow(Row{"a": Int(1)})

	c := tbl.Clone()
	c.Columns[0] = "renamed"
	c.Rows[0]["renamed"] = Int(99)

	assert.Equal(t, []string{"a"}, tbl.Columns)
	assert.Equal(t, Int(1), tbl.Rows[0].Get("a"))
}
