// Package domain holds the error taxonomy and text normalization shared by
// the tracking, anki and config packages.
package domain
