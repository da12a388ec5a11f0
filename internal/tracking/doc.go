// Package tracking decides whether a learner knows a word. It accumulates
// per-word evidence (lookups, exposures, Anki review maturity), turns it
// into an integer score with configurable weights and compares the score
// against a threshold that is lower for cognates of words in languages the
// learner already speaks.
package tracking
