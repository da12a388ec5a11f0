package processor

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/wordsieve/internal"
	"codeberg.org/snonux/wordsieve/internal/anki"
	"codeberg.org/snonux/wordsieve/internal/config"
)

func (p *Processor) ankiClient() (*anki.Client, error) {
	if p.anki == nil {
		return nil, fmt.Errorf("anki is disabled (set %s to true)", config.KeyEnableAnki)
	}
	return p.anki, nil
}

// AnkiStatus prints the AnkiConnect version and how many notes match the
// mature and young queries.
func (p *Processor) AnkiStatus(ctx context.Context) error {
	c, err := p.ankiClient()
	if err != nil {
		return err
	}
	version, err := c.Version(ctx)
	if err != nil {
		return err
	}
	p.printf("AnkiConnect %s (API version %d)\n", c.Endpoint(), version)
	if version < anki.APIVersion {
		p.printf("Warning: API version %d or newer required\n", anki.APIVersion)
	}

	q := p.settings.Tracking
	mature, young, err := c.MatchedCounts(ctx, q.QueryMature, q.QueryYoung)
	if err != nil {
		return err
	}
	p.printf("Mature notes: %d (%s)\n", mature, q.QueryMature)
	p.printf("Young notes:  %d (%s)\n", young, q.QueryYoung)
	return nil
}

// AnkiDecks prints all deck names, marking the configured deck.
func (p *Processor) AnkiDecks(ctx context.Context) error {
	c, err := p.ankiClient()
	if err != nil {
		return err
	}
	decks, err := c.DeckNames(ctx)
	if err != nil {
		return err
	}
	for _, d := range decks {
		marker := " "
		if d == p.settings.DeckName {
			marker = "*"
		}
		p.printf("%s %s\n", marker, d)
	}
	return nil
}

// AnkiFields prints the fields of noteType (default: the configured note
// type) and which role each one is mapped to.
func (p *Processor) AnkiFields(ctx context.Context, noteType string) error {
	c, err := p.ankiClient()
	if err != nil {
		return err
	}
	if noteType == "" {
		noteType = p.settings.NoteType
	}
	fields, err := c.ModelFieldNames(ctx, noteType)
	if err != nil {
		return err
	}

	roles := fieldRoles(p.settings.Fields)
	for _, f := range fields {
		if role, ok := roles[f]; ok {
			p.printf("%s\t(%s)\n", f, role)
		} else {
			p.printf("%s\n", f)
		}
	}
	return nil
}

func fieldRoles(f config.NoteFields) map[string]string {
	roles := make(map[string]string)
	for field, role := range map[string]string{
		f.Sentence:      "sentence",
		f.Word:          "word",
		f.Frequency:     "frequency",
		f.Definition1:   "definition",
		f.Definition2:   "definition#2",
		f.Pronunciation: "pronunciation",
		f.Image:         "image",
	} {
		if field != "" && field != config.Disabled {
			roles[field] = role
		}
	}
	return roles
}

// AnkiBrowse opens the Anki browser on the mature or young query.
func (p *Processor) AnkiBrowse(ctx context.Context, mature bool) error {
	c, err := p.ankiClient()
	if err != nil {
		return err
	}
	query := p.settings.Tracking.QueryYoung
	if mature {
		query = p.settings.Tracking.QueryMature
	}
	ids, err := c.GuiBrowse(ctx, query)
	if err != nil {
		return err
	}
	p.printf("Browsing %d cards: %s\n", len(ids), query)
	return nil
}

// AnkiDefaultModel creates the default note type if it is missing.
func (p *Processor) AnkiDefaultModel(ctx context.Context) error {
	c, err := p.ankiClient()
	if err != nil {
		return err
	}
	created, err := c.AddDefaultModel(ctx)
	if err != nil {
		return err
	}
	if created {
		p.printf("Created note type %q\n", anki.DefaultModelName)
	} else {
		p.printf("Note type %q already exists\n", anki.DefaultModelName)
	}
	return nil
}

// AnkiAdd exports word as a note. Known words are refused unless --force.
func (p *Processor) AnkiAdd(ctx context.Context, word string) error {
	c, err := p.ankiClient()
	if err != nil {
		return err
	}

	a, err := p.tracker.Evaluate(ctx, word, p.language(), p.now())
	if err != nil {
		return err
	}
	if a.Known && !p.flags.Force {
		return fmt.Errorf("%q is already known (score %d >= %d); use --force to add it anyway",
			a.Record.Word, a.Score, a.Threshold)
	}

	s := p.settings
	note := anki.Note{
		Deck:   s.DeckName,
		Model:  s.NoteType,
		Fields: s.Fields.NoteValues(config.NoteContent{
			Sentence:    p.flags.Sentence,
			Word:        a.Record.Word,
			Frequency:   p.flags.Frequency,
			Definition1: p.flags.Definition,
		}),
		Tags:   s.Tags,
		Audio:  p.noteAudio(),
	}
	id, err := c.AddNote(ctx, note)
	if err != nil {
		return err
	}
	p.printf("Added note %d for %q to %s\n", id, a.Record.Word, s.DeckName)
	return nil
}

// noteAudio turns the --audio sources into media for the pronunciation
// field. Remote sources are fetched by Anki itself.
func (p *Processor) noteAudio() []anki.Media {
	names, sources := p.flags.AudioSources()
	if len(names) == 0 {
		return nil
	}
	field := p.settings.Fields.Pronunciation
	if field == "" || field == config.Disabled {
		p.log.Warn("ignoring audio, no pronunciation field configured",
			zap.String("setting", config.KeyPronunciationField))
		return nil
	}

	media := make([]anki.Media, 0, len(names))
	for _, name := range names {
		src := sources[name]
		m := anki.Media{Fields: []string{field}}
		if strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "http://") {
			m.URL = src
			m.Filename = internal.SanitizeFilename(name) + urlExt(src)
		} else {
			abs, err := filepath.Abs(src)
			if err != nil {
				abs = src
			}
			m.Path = abs
			m.Filename = internal.SanitizeFilename(name) + filepath.Ext(src)
		}
		media = append(media, m)
	}
	return media
}

func urlExt(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ".mp3"
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return ".mp3"
}
