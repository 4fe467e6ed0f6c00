// Package store is the album persistence layer behind the /db endpoints.
//
// AlbumStore is the narrow CRUD contract the HTTP handlers depend on.
// SQLStore implements it over database/sql with the sqlite3 driver, and
// InstrumentedStore decorates any AlbumStore with spans and metrics.
// The schema is owned by the embedded migrations in migrations/ and is
// applied with golang-migrate, either at startup (database.auto_migrate)
// or through "albumsvc migrate up".
package store
