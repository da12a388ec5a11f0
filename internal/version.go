package internal

// Version is the wordsieve release version.
var Version = "0.3.0"
