package anki

import (
	"context"
	"slices"

	"codeberg.org/snonux/wordsieve/internal/domain"
)

// NoteField is one field of a note as returned by notesInfo.
type NoteField struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// NoteInfo is a note as returned by notesInfo.
type NoteInfo struct {
	NoteID    int64                `json:"noteId"`
	ModelName string               `json:"modelName"`
	Tags      []string             `json:"tags"`
	Fields    map[string]NoteField `json:"fields"`
}

// FindNotes returns the ids of notes matching an Anki search query.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	if err := c.invoke(ctx, "findNotes", map[string]string{"query": query}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// NotesInfo fetches the notes with the given ids.
func (c *Client) NotesInfo(ctx context.Context, ids []int64) ([]NoteInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var notes []NoteInfo
	if err := c.invoke(ctx, "notesInfo", map[string][]int64{"notes": ids}, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// NoteFields returns the named fields of each note as plain text. Fields a
// note lacks are left out of its map.
func (c *Client) NoteFields(ctx context.Context, ids []int64, fields ...string) (map[int64]map[string]string, error) {
	notes, err := c.NotesInfo(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]map[string]string, len(notes))
	for _, n := range notes {
		values := make(map[string]string, len(fields))
		for _, name := range fields {
			if f, ok := n.Fields[name]; ok {
				values[name] = PlainText(f.Value)
			}
		}
		out[n.NoteID] = values
	}
	return out, nil
}

// MatchedCounts counts the notes matching the mature and young queries.
// Young notes that also match the mature query are counted as mature only.
func (c *Client) MatchedCounts(ctx context.Context, matureQuery, youngQuery string) (mature, young int, err error) {
	matureIDs, err := c.FindNotes(ctx, matureQuery)
	if err != nil {
		return 0, 0, err
	}
	youngIDs, err := c.FindNotes(ctx, youngQuery)
	if err != nil {
		return 0, 0, err
	}
	for _, id := range youngIDs {
		if !slices.Contains(matureIDs, id) {
			young++
		}
	}
	return len(matureIDs), young, nil
}

// Note is a flashcard to add.
type Note struct {
	Deck   string
	Model  string
	Fields map[string]string
	Tags   []string
	// Audio attaches remote audio files to fields.
	Audio          []Media
	AllowDuplicate bool
}

// Media is a file AnkiConnect downloads and stores with the note.
type Media struct {
	URL      string   `json:"url,omitempty"`
	Path     string   `json:"path,omitempty"`
	Filename string   `json:"filename"`
	Fields   []string `json:"fields"`
}

type noteParams struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
	Options   noteOptions       `json:"options"`
	Audio     []Media           `json:"audio,omitempty"`
}

type noteOptions struct {
	AllowDuplicate bool `json:"allowDuplicate"`
}

// AddNote adds n and returns the new note id.
func (c *Client) AddNote(ctx context.Context, n Note) (int64, error) {
	if n.Deck == "" {
		return 0, domain.NewValidationError("deck_name", "must not be empty")
	}
	if n.Model == "" {
		return 0, domain.NewValidationError("note_type", "must not be empty")
	}
	if len(n.Fields) == 0 {
		return 0, domain.NewValidationError("fields", "note has no fields")
	}
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}

	params := map[string]noteParams{"note": {
		DeckName:  n.Deck,
		ModelName: n.Model,
		Fields:    n.Fields,
		Tags:      tags,
		Options:   noteOptions{AllowDuplicate: n.AllowDuplicate},
		Audio:     n.Audio,
	}}
	var id int64
	if err := c.invoke(ctx, "addNote", params, &id); err != nil {
		return 0, err
	}
	return id, nil
}
