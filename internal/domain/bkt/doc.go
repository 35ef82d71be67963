// Package bkt implements Bayesian Knowledge Tracing: per-skill mastery
// estimation from answer evidence, and the adaptive question selection
// heuristics built on top of it.
package bkt
