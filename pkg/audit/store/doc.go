// Package store provides audit storage backends.
//
// The SQLite backend is the durable default: WAL mode, a busy timeout, a
// single writer connection and a prepared insert path. The memory backend
// exists for tests and dry runs.
//
// Timestamps are stored as fixed-width UTC text so that SQL string
// comparison and chronological comparison agree.
package store
