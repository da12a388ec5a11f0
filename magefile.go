//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "wordsieve"

// Default target
var Default = Build

// Build compiles the wordsieve binary.
func Build() error {
	return sh.RunV("go", "build", "-o", binary, "./cmd/wordsieve")
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs wordsieve into GOBIN.
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/wordsieve")
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm(binary)
}
