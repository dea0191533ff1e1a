// Package objectstore persists entities generically from their schema
// descriptors, with no per-entity SQL.
//
// A Store[T] owns the canonical in-memory copy of every object of one type:
//   - LoadAll reads the whole primary table and each junction table once
//   - Insert, Update, UpdateProperty and HardDelete write inside a
//     transaction and touch the cache only after it commits
//   - SoftDelete only evicts from the cache; the row has already been
//     flagged through a property update
//
// # Cache
//
// Exactly one object exists per primary key and every read returns that
// same handle. Objects are built from a Bundle of column values through the
// mapping's constructor, never through setters, so loading does not trigger
// writes.
//
// # Junction tables
//
// Associations are synchronised by deleting every row for the owner and
// re-inserting the current values. Row counts per owner are small.
//
// # Errors
//
// Every failed statement is logged with its SQL and the driver error, the
// transaction is rolled back and the error is returned wrapped. Coding
// errors go through package invariant.
package objectstore
