/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package expression

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
)

// Comparator orders two candidates: negative when a sorts before b, zero when
// equal. Sorting is always stable, so equal elements keep their snapshot
// order.
type Comparator func(a, b any) int

// ByField builds an ascending comparator evaluating the given expression per
// element, typically a field path such as "Age" or "Profile.Score". Supported
// result kinds: numbers, strings, booleans and times; everything else falls
// back to string comparison of the formatted value.
func ByField(path string) (Comparator, error) {
	return byField(path, false)
}

// ByFieldDesc is ByField with the order reversed.
func ByFieldDesc(path string) (Comparator, error) {
	return byField(path, true)
}

func byField(path string, desc bool) (Comparator, error) {
	program, err := expr.Compile(path, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile sort expression %q: %w", path, err)
	}

	keyOf := func(candidate any) any {
		out, err := expr.Run(program, candidate)
		if err != nil {
			out, err = expr.Run(program, map[string]any{"it": candidate})
			if err != nil {
				return nil
			}
		}
		return out
	}

	return func(a, b any) int {
		ordering := compareValues(keyOf(a), keyOf(b))
		if desc {
			return -ordering
		}
		return ordering
	}, nil
}

func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if fa, aok := toFloat(a); aok {
		if fb, bok := toFloat(b); bok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}

	if ta, aok := a.(time.Time); aok {
		if tb, bok := b.(time.Time); bok {
			return ta.Compare(tb)
		}
	}

	if ba, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
