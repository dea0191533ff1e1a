// Package schema holds the declarative descriptors of persisted entities.
//
// A Table lists the fields of one entity type in column order, the first
// being the integer primary key, plus the junction tables that store its
// associations. Descriptors are plain data: the object store and the schema
// helper iterate them instead of relying on reflection.
//
// Enum properties are stored as strings through an EnumMapping, a bijection
// that is validated when it is built.
package schema
