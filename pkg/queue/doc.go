// Package queue implements a storage-backed task queue with dead-letter
// handling.
//
// An Enqueuer marshals payloads into pending tasks; a Worker polls one or
// more queues, claims tasks with a lock, and runs the registered Handler
// for the task name. Failed tasks retry with a linear backoff until
// MaxRetries is exhausted, then move to the dead-letter queue for manual
// inspection. Enqueueing with MaxRetries 0 gives reject-without-requeue
// semantics: the first handler error dead-letters the message.
//
// Two repositories are provided: MemoryStorage for tests and local runs,
// and PGStorage on PostgreSQL with SKIP LOCKED claims for production.
package queue
