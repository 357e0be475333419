package framex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRow_Arithmetic(t *testing.T) {
	ev := NewFormulaEvaluator()
	result, err := ev.EvaluateRow("Quantity * Price", map[string]any{
		"Quantity": int64(3),
		"Price":    2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 7.5, result)
}

func TestEvaluateRow_Conditional(t *testing.T) {
	ev := NewFormulaEvaluator()
	result, err := ev.EvaluateRow(`Amount > 0 ? "Positive" : "Negative"`, map[string]any{
		"Amount": int64(-3),
	})
	require.NoError(t, err)
	assert.Equal(t, "Negative", result)
}

func TestEvaluateRow_RowMapAccess(t *testing.T) {
	ev := NewFormulaEvaluator()
	result, err := ev.EvaluateRow(`row["Unit Price"] * 2`, map[string]any{
		"Unit Price": 4.0,
	})
	require.NoError(t, err)
	assert.Equal(t, 8.0, result)
}

func TestEvaluateRow_FunctionLibrary(t *testing.T) {
	ev := NewFormulaEvaluator()

	result, err := ev.EvaluateRow(`concat(upper(name), "-", 1)`, map[string]any{"name": "ab"})
	require.NoError(t, err)
	assert.Equal(t, "AB-1", result)

	result, err = ev.EvaluateRow(`substr(name, 0, 2)`, map[string]any{"name": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "he", result)

	result, err = ev.EvaluateRow(`isnull(gone)`, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, true, result)
}

func TestEvaluateRow_UndefinedVariableIsNil(t *testing.T) {
	ev := NewFormulaEvaluator()
	result, err := ev.EvaluateRow("missing", map[string]any{"present": 1})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestEvaluateRow_CompileError(t *testing.T) {
	ev := NewFormulaEvaluator()
	_, err := ev.EvaluateRow("1 +", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile formula")
}

func TestEvaluateRow_EmptyFormula(t *testing.T) {
	ev := NewFormulaEvaluator()
	_, err := ev.EvaluateRow("  ", map[string]any{})
	require.Error(t, err)
}

func TestEvaluateRow_CachedProgramReused(t *testing.T) {
	ev := NewFormulaEvaluator()
	for i := 0; i < 3; i++ {
		result, err := ev.EvaluateRow("n + 1", map[string]any{"n": int64(i)})
		require.NoError(t, err)
		assert.EqualValues(t, i+1, result)
	}
}

func TestCompileFormula(t *testing.T) {
	assert.NoError(t, CompileFormula("a + b"))
	assert.Error(t, CompileFormula("a +"))
}
