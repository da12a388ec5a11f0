// Package processor contains the application logic behind the wordsieve
// commands. It wires settings, the record store, the AnkiConnect client,
// the cognate judge and audio into a tracker and prints the results. This
// package serves as the main coordinator between all other components.
package processor
