// Package filter narrows a page of search results with user supplied
// expr-lang expressions, e.g.
//
//	isMovie() and StartYear >= 2000 and HasPoster
//	containsText(Title, "returns") or Kind == "series"
package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/reelscout/omdb"
)

// Filter is a compiled result filter
type Filter struct {
	program    *vm.Program
	expression string
}

// Compile compiles a filter expression.
// Expressions must evaluate to a boolean.
func Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression"}
	}

	program, err := expr.Compile(expression,
		expr.Env(environment(omdb.Item{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{Expression: expression, Reason: err.Error(), Err: err}
	}

	return &Filter{program: program, expression: expression}, nil
}

// Evaluate reports whether item matches the filter
func (f *Filter) Evaluate(item omdb.Item) (bool, error) {
	result, err := expr.Run(f.program, environment(item))
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, ItemID: item.ID, Reason: err.Error(), Err: err}
	}

	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression: f.expression,
			ItemID:     item.ID,
			Reason:     fmt.Sprintf("expected bool, got %T", result),
		}
	}
	return matched, nil
}

// Apply returns the items matching the filter, preserving order.
// Items that fail to evaluate are skipped and the first error is returned.
func (f *Filter) Apply(items []omdb.Item) ([]omdb.Item, error) {
	matched := make([]omdb.Item, 0, len(items))
	var firstErr error
	for _, item := range items {
		ok, err := f.Evaluate(item)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			matched = append(matched, item)
		}
	}
	return matched, firstErr
}

// String returns the original expression
func (f *Filter) String() string {
	return f.expression
}

// environment exposes an item and the helper functions to expressions
func environment(item omdb.Item) map[string]any {
	return map[string]any{
		// Item properties
		"ID":        item.ID,
		"Title":     item.Title,
		"Year":      item.Year,
		"StartYear": item.StartYear(),
		"Kind":      string(item.Kind),
		"HasPoster": item.HasPoster(),

		// Kind helpers
		"isMovie": func() bool {
			return item.Kind.IsMovie()
		},
		"isSeries": func() bool {
			return item.Kind.IsSeries()
		},

		// String helpers
		"containsText": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"hasPrefix": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"hasSuffix": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
	}
}
