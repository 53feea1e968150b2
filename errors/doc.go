/*
Package errors defines the error taxonomy of the keyvalue module.

Callers distinguish failure classes with the IsX helpers or errors.Is against
the exported sentinels: duplicate-key (insert against an existing id),
invalid-usage (violated caller precondition), multiplicity (cardinality
constraint violated) and adapter-required (query engine used before wiring).
Absent values are never errors; lookups of missing ids report "no value".

The Translator hook converts opaque backend failures into domain errors at the
Execute escape-hatch boundary.
*/
package errors
