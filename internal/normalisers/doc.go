// Package normalisers provides implementations of the RecordNormaliser
// interface. Each normaliser knows how to turn one raw snapshot format
// into canonical knowledge records.
package normalisers
