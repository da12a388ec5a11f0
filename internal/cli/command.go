package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wordsieve/internal"
)

// Actions carries out the commands. The processor implements it.
type Actions interface {
	Lookup(ctx context.Context, word string) error
	Seen(ctx context.Context, words []string) error
	Score(ctx context.Context, words []string) error
	Known(ctx context.Context, words []string) error
	Refresh(ctx context.Context, word string) error

	AnkiStatus(ctx context.Context) error
	AnkiDecks(ctx context.Context) error
	AnkiFields(ctx context.Context, noteType string) error
	AnkiBrowse(ctx context.Context, mature bool) error
	AnkiDefaultModel(ctx context.Context) error
	AnkiAdd(ctx context.Context, word string) error

	SettingsGet(key string) error
	SettingsSet(key, value string) error
	SettingsReset() error
	SettingsShow() error

	Reset(ctx context.Context) error
	Close() error
}

// Opener creates the Actions for one command run.
type Opener func() (Actions, error)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, v *viper.Viper, open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wordsieve",
		Short: "Vocabulary knowledge tracker backed by Anki",
		Long: `wordsieve tracks how well you know the words of a language you study.

Lookups, exposures and your Anki review history are combined into a
per-word score. Words scoring above a threshold count as known; cognates
of languages you already speak need less evidence.

Examples:
  wordsieve lookup gato --lang es        # Record a dictionary lookup
  wordsieve seen el gato duerme          # Record exposures while reading
  wordsieve score gato                   # Show the score and verdict
  wordsieve known --batch words.txt      # Classify a word list
  wordsieve anki status                  # Check the AnkiConnect connection`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	setupFlags(rootCmd, flags, v)

	rootCmd.AddCommand(
		lookupCommand(flags, open),
		seenCommand(open),
		assessCommand("score", "Show the knowledge score of words", flags, open, Actions.Score),
		assessCommand("known", "Classify words as known or unknown", flags, open, Actions.Known),
		refreshCommand(open),
		ankiCommand(flags, open),
		settingsCommand(open),
		resetCommand(flags, open),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags, v *viper.Viper) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wordsieve.yaml)")
	cmd.PersistentFlags().StringVarP(&flags.Language, "lang", "l", "", "Language of the words (default: target_language setting)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")

	bindFlagsToViper(cmd.PersistentFlags(), v)
}

// bindFlagsToViper lets flags override the settings of the same meaning.
func bindFlagsToViper(fs *pflag.FlagSet, v *viper.Viper) {
	v.BindPFlag("target_language", fs.Lookup("lang"))
	v.BindPFlag("log.level", fs.Lookup("log-level"))
}

// run opens the actions, runs fn and closes them again.
func run(open Opener, fn func(Actions) error) error {
	a, err := open()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func lookupCommand(flags *Flags, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup WORD",
		Short: "Record a dictionary lookup (counted once per day)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(open, func(a Actions) error { return a.Lookup(cmd.Context(), args[0]) })
		},
	}
	cmd.Flags().BoolVar(&flags.Play, "play", false, "Play pronunciation audio after recording")
	cmd.Flags().StringArrayVar(&flags.Audio, "audio", nil, "Audio source as name=url-or-path (repeatable)")
	return cmd
}

func seenCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "seen WORD...",
		Short: "Record exposures to words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(open, func(a Actions) error { return a.Seen(cmd.Context(), args) })
		},
	}
}

func assessCommand(use, short string, flags *Flags, open Opener, action func(Actions, context.Context, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [WORD...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && flags.BatchFile == "" {
				return fmt.Errorf("no words given; pass words or --batch FILE")
			}
			return run(open, func(a Actions) error { return action(a, cmd.Context(), args) })
		},
	}
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Read words from file (one per line, optional '= lang')")
	cmd.Flags().BoolVar(&flags.Refresh, "refresh", false, "Refresh Anki evidence even if it is still fresh")
	return cmd
}

func refreshCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh WORD",
		Short: "Fetch Anki review evidence for a word now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(open, func(a Actions) error { return a.Refresh(cmd.Context(), args[0]) })
		},
	}
}

func ankiCommand(flags *Flags, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anki",
		Short: "Inspect and export to Anki through AnkiConnect",
	}

	simple := func(use, short string, fn func(Actions, context.Context) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(open, func(a Actions) error { return fn(a, cmd.Context()) })
			},
		}
	}

	fields := &cobra.Command{
		Use:   "fields [NOTE_TYPE]",
		Short: "List the fields of a note type (default: note_type setting)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			noteType := ""
			if len(args) == 1 {
				noteType = args[0]
			}
			return run(open, func(a Actions) error { return a.AnkiFields(cmd.Context(), noteType) })
		},
	}

	add := &cobra.Command{
		Use:   "add WORD",
		Short: "Add a note for a word unless it is already known",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(open, func(a Actions) error { return a.AnkiAdd(cmd.Context(), args[0]) })
		},
	}
	add.Flags().StringVar(&flags.Sentence, "sentence", "", "Example sentence")
	add.Flags().StringVar(&flags.Definition, "definition", "", "Definition")
	add.Flags().StringVar(&flags.Frequency, "frequency", "", "Frequency rank or stars for the frequency field")
	add.Flags().StringArrayVar(&flags.Audio, "audio", nil, "Audio source as name=url (repeatable)")
	add.Flags().BoolVar(&flags.Force, "force", false, "Add the note even if the word is known")

	cmd.AddCommand(
		simple("status", "Show AnkiConnect version and matched note counts", Actions.AnkiStatus),
		simple("decks", "List decks", Actions.AnkiDecks),
		fields,
		simple("browse-mature", "Open the Anki browser on mature notes", func(a Actions, ctx context.Context) error {
			return a.AnkiBrowse(ctx, true)
		}),
		simple("browse-young", "Open the Anki browser on young notes", func(a Actions, ctx context.Context) error {
			return a.AnkiBrowse(ctx, false)
		}),
		simple("default-model", "Create the default note type if missing", Actions.AnkiDefaultModel),
		add,
	)
	return cmd
}

func settingsCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get KEY",
			Short: "Print a setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(open, func(a Actions) error { return a.SettingsGet(args[0]) })
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Change and save a setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(open, func(a Actions) error { return a.SettingsSet(args[0], args[1]) })
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset all settings to their defaults",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(open, Actions.SettingsReset)
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print all settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(open, Actions.SettingsShow)
			},
		},
	)
	return cmd
}

func resetCommand(flags *Flags, open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all word records",
		Long: `Delete all word records.

With --data the whole data directory (records and audio cache) is moved
to an archive directory next to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(open, func(a Actions) error { return a.Reset(cmd.Context()) })
		},
	}
	cmd.Flags().BoolVar(&flags.Data, "data", false, "Archive the whole data directory")
	return cmd
}

// ConfigPath returns the config file in use: cfgFile if set, otherwise
// $HOME/.wordsieve.yaml.
func ConfigPath(cfgFile string) string {
	if cfgFile != "" {
		return cfgFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wordsieve.yaml"
	}
	return filepath.Join(home, ".wordsieve.yaml")
}

// InitConfig initializes viper configuration
func InitConfig(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		v.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".wordsieve" (without extension)
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".wordsieve")
	}

	// Environment variables: WORDSIEVE_TRACKING_KNOWN_THRESHOLD etc.
	v.SetEnvPrefix("WORDSIEVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}
}
