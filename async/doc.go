/*
Package async provides the deferred-execution primitives used throughout the
keyvalue module.

Task[T] represents a single asynchronous result: the computation runs on a
background goroutine and the caller collects the outcome with Await. Stream[T]
represents a lazy sequence of results delivered through a buffered channel fed
by a producer goroutine, mirroring the streaming-worker pattern used by the
DynamoDB adapter. Cancellation and backpressure are properties of these types:
cancelling a Task or Stream stops the underlying producer, but never undoes
work that already reached the backing store.
*/
package async
