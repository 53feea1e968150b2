/*
Package mapstore provides the concurrency-safe in-memory reference adapter.

Entries live in a two-level structure, keyspace name → container, with the
container backend selectable per store (hash-backed by default, insertion
ordered as an alternative). Enumerations are read-committed at enumeration
time: a scan started while writers are active may or may not observe their
writes. That is an explicit non-guarantee of the contract, not a bug.
*/
package mapstore
