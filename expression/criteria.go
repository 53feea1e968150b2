/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expression

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Criteria is a compiled boolean expression evaluated per candidate. The
// candidate is bound as the implicit evaluation subject, so an expression such
// as "Age > 20" reads fields directly off the candidate. An expression may
// instead address the candidate through the variable "it" ("it.Age > 20").
type Criteria struct {
	// Source is the expression text the criteria was compiled from.
	Source string

	program *vm.Program
}

// NewCriteria compiles source into a Criteria.
func NewCriteria(source string) (*Criteria, error) {
	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile criteria %q: %w", source, err)
	}
	return &Criteria{Source: source, program: program}, nil
}

// MustCriteria compiles source and panics on error; intended for wiring-time
// constants.
func MustCriteria(source string) *Criteria {
	c, err := NewCriteria(source)
	if err != nil {
		panic(err)
	}
	return c
}

// Matches evaluates the criteria against candidate. Evaluation first binds the
// candidate as the environment; if that fails structurally the candidate is
// re-bound to the variable "it" and evaluated again. A nil result is false
// rather than an error.
func (c *Criteria) Matches(candidate any) (bool, error) {
	out, err := expr.Run(c.program, candidate)
	if err != nil {
		out, err = expr.Run(c.program, map[string]any{"it": candidate})
		if err != nil {
			return false, fmt.Errorf("evaluate criteria %q: %w", c.Source, err)
		}
	}
	if out == nil {
		return false, nil
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("criteria %q evaluated to %T, want bool", c.Source, out)
	}
	return matched, nil
}
