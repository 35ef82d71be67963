// Package service contains the application's use-case layer. Services
// orchestrate domain entities, the knowledge-tracing engine and the store
// interfaces, and own transactional boundaries. HTTP handlers call into
// services and never touch stores directly.
package service
