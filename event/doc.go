/*
Package event carries the lifecycle notifications emitted around template
operations: before/after records for insert, update, delete, get and
drop-keyspace.

Delivery is best effort. Publishers must never block or fail the originating
data operation; the template additionally recovers panics raised by a
publisher. A template publishes everything by default and can be restricted to
an allow-list of (operation, phase) kinds.
*/
package event
