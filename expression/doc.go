/*
Package expression is the reference query engine: filtering by a compiled
boolean expression evaluated per candidate and ordering by an arbitrary
comparator, both applied in memory over the full keyspace enumeration.

The enumeration it operates on is read-committed at enumeration time, never a
transactional snapshot; see the datastore package.
*/
package expression
