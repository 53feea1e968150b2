/*
Package query defines the generic query value and the resolve-then-execute
contract shared by all query engines.

A Query carries opaque criteria and sort sources plus offset/limit bounds.
The Engine base resolves those sources through a CriteriaAccessor and a
SortAccessor configured at construction and hands the resolved attributes to
the concrete Executor, which owns the evaluation strategy. Every engine
executes against exactly one storage adapter, registered once at wiring time.
*/
package query
