/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

// Unset marks an offset or limit as unbounded.
const Unset = -1

// Query captures filtering, ordering and pagination for a keyspace scan. The
// criteria and sort sources are opaque here; each engine resolves them into
// its own representation through its accessors. A Query is built with the
// chainable setters and must not be modified once handed to an engine.
type Query struct {
	// Criteria is the opaque predicate source, nil when unfiltered.
	Criteria any
	// Sort is the opaque ordering source, nil when unordered.
	Sort any
	// Offset is the number of leading elements to skip, Unset for none.
	Offset int64
	// Limit is the maximum number of elements to produce, Unset for all.
	Limit int
}

// New creates an empty query matching everything.
func New() *Query {
	return &Query{Offset: Unset, Limit: Unset}
}

// WithCriteria sets the predicate source.
func (q *Query) WithCriteria(criteria any) *Query {
	q.Criteria = criteria
	return q
}

// OrderBy sets the ordering source.
func (q *Query) OrderBy(sort any) *Query {
	q.Sort = sort
	return q
}

// Skip sets the number of leading elements to drop.
func (q *Query) Skip(offset int64) *Query {
	q.Offset = offset
	return q
}

// Take caps the number of elements produced.
func (q *Query) Take(limit int) *Query {
	q.Limit = limit
	return q
}
