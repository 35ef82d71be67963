// Package memory provides in-memory implementations of the store interfaces.
// They back local development and tests, and serve deployments that opt out
// of PostgreSQL via database.use_memory. All stores are safe for concurrent
// use and return defensive copies so callers cannot mutate shared state.
package memory
