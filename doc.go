/*
Package keyvalue provides a generic, asynchronous key-value persistence
abstraction: storage-agnostic CRUD and querying over entities partitioned
into named keyspaces, with physical storage delegated to a pluggable adapter
and filtering/sorting/pagination delegated to a pluggable query engine.

The Template composes one adapter with the external collaborators: a keyspace
resolver, an identifier generator, a lifecycle event publisher and an
exception translator. Operations return async handles (Task for scalars,
Stream for sequences); nothing blocks the calling goroutine.

Basic Usage:

	store := mapstore.New()
	ops := keyvalue.New(store)
	defer ops.Destroy()

	type Player struct {
		ID   string
		Name string
		Age  int
	}

	// Insert with a generated id, then query.
	inserted, err := ops.Insert(ctx, &Player{Name: "bob", Age: 30}).Await(ctx)

	adults := keyvalue.Find[*Player](ctx, ops,
		query.New().WithCriteria("Age > 20").OrderBy("Age"))
	players, err := adults.Collect(ctx)

Storage backends:
  - mapstore: concurrency-safe in-memory reference adapter
  - dynamo: DynamoDB-backed adapter

For more information, see the documentation at https://github.com/suparena/keyvalue
*/
package keyvalue
