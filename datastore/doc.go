/*
Package datastore defines the storage adapter contract of the keyvalue module.

The central interface is Adapter: keyspace-partitioned put/get/delete/count
plus lazy enumeration, with query execution delegated to a pluggable query
engine. Base is an embeddable helper wiring an adapter to its engine the way
every concrete backend does it. The package-level generic helpers (GetAs,
DeleteAs, GetAllOfAs, FindAs) add type narrowing on top of the untyped
contract: the point-operation helpers filter silently on a type mismatch,
while FindAs fails the whole stream, which is the stricter engine contract.

Implementations:
  - mapstore: concurrency-safe in-memory reference adapter
  - dynamo: DynamoDB-backed adapter
*/
package datastore
