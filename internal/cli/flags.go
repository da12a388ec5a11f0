package cli

import "strings"

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile  string
	Language string
	LogLevel string

	// Assessment flags
	BatchFile string
	Refresh   bool

	// Lookup and export flags
	Play       bool
	Audio      []string // name=source pairs
	Sentence   string
	Definition string
	Frequency  string
	Force      bool

	// Reset flags
	Data bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{}
}

// AudioSources parses the --audio name=source pairs. Entries without a
// name or source are skipped.
func (f *Flags) AudioSources() (names []string, sources map[string]string) {
	sources = make(map[string]string)
	for _, pair := range f.Audio {
		name, source, ok := strings.Cut(pair, "=")
		name, source = strings.TrimSpace(name), strings.TrimSpace(source)
		if !ok || name == "" || source == "" {
			continue
		}
		if _, dup := sources[name]; !dup {
			names = append(names, name)
		}
		sources[name] = source
	}
	return names, sources
}
