/*
Package registry manages entity type metadata: keyspace names and identifier
access.

Keyspace Registry:
Maps a Go type to the named keyspace holding its entries. Unregistered types
default to their struct name; the first resolution is cached and stays stable
for the lifetime of the process:

	registry.RegisterKeyspace[User]("users")

Identifier Access:
Extracts and assigns entity identifiers. Types with an "ID string" field work
out of the box through reflection; anything else registers an explicit
accessor:

	registry.RegisterIDAccessor(
	    func(u User) string { return u.Key },
	    func(u *User, id string) { u.Key = id },
	)

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
