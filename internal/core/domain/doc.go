// Package domain contains the core entities of the insight engine:
// knowledge records, query contexts, synthesis results and domain errors.
// It has no dependencies on adapters or infrastructure.
package domain
