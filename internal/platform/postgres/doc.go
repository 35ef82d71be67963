// Package postgres provides PostgreSQL implementations of the store
// interfaces. All stores accept a store.DBTX so they work against either a
// database connection or a transaction, and map driver errors onto the
// store package's sentinel errors.
package postgres
