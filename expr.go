package framex

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FormulaEvaluator evaluates a formula against one row of a table.
// Column values are bound by name; the whole row is also bound as "row"
// so columns whose names are not valid identifiers stay reachable
// (row["Unit Price"]). A small text/numeric/date function library is
// always available. The evaluator is sandboxed: formulas see only the
// row environment and the curated functions.
type FormulaEvaluator interface {
	EvaluateRow(formula string, row map[string]any) (any, error)
}

// exprEvaluator implements FormulaEvaluator using expr-lang/expr.
type exprEvaluator struct {
	cache sync.Map // formula string → compiled *vm.Program
}

// NewFormulaEvaluator creates a formula evaluator backed by expr-lang/expr.
func NewFormulaEvaluator() FormulaEvaluator {
	return &exprEvaluator{}
}

func (e *exprEvaluator) EvaluateRow(formula string, row map[string]any) (any, error) {
	if strings.TrimSpace(formula) == "" {
		return nil, fmt.Errorf("empty formula")
	}
	program, err := e.compile(formula)
	if err != nil {
		return nil, fmt.Errorf("compile formula %q: %w", formula, err)
	}
	env := make(map[string]any, len(row)+len(formulaFuncs)+1)
	for k, v := range formulaFuncs {
		env[k] = v
	}
	for k, v := range row {
		env[k] = v
	}
	env["row"] = row
	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("evaluate formula %q: %w", formula, err)
	}
	return result, nil
}

func (e *exprEvaluator) compile(formula string) (*vm.Program, error) {
	if cached, ok := e.cache.Load(formula); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(formula, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	e.cache.Store(formula, program)
	return program, nil
}

// CompileFormula checks a formula for syntax errors without running it.
// Used by workflow validation.
func CompileFormula(formula string) error {
	_, err := expr.Compile(formula, expr.AllowUndefinedVariables())
	return err
}

// formulaFuncs is the curated function library available to formulas,
// supplementing expr's own builtins (abs, ceil, floor, round, upper,
// lower, trim, replace, split, join, len, int, float, string, ...).
var formulaFuncs = map[string]any{
	"isnull": func(v any) bool { return v == nil },
	"concat": func(parts ...any) string {
		var b strings.Builder
		for _, p := range parts {
			if p == nil {
				continue
			}
			fmt.Fprintf(&b, "%v", p)
		}
		return b.String()
	},
	"substr": func(s string, start, end int) string {
		r := []rune(s)
		if start < 0 {
			start = 0
		}
		if end > len(r) {
			end = len(r)
		}
		if start >= end {
			return ""
		}
		return string(r[start:end])
	},
	"year":  func(t time.Time) int { return t.Year() },
	"month": func(t time.Time) int { return int(t.Month()) },
	"day":   func(t time.Time) int { return t.Day() },
	"now":   func() time.Time { return time.Now() },
}
