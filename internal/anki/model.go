package anki

import (
	"context"
	"slices"
)

// DefaultModelName is the note type created by AddDefaultModel.
const DefaultModelName = "vocabsieve-notes"

// DefaultModelFields are the fields of the default note type, in order.
var DefaultModelFields = []string{"Sentence", "Word", "Definition", "Definition#2", "Pronunciation", "Image"}

// CardTemplate is one card type of a note type.
type CardTemplate struct {
	Name  string `json:"Name"`
	Front string `json:"Front"`
	Back  string `json:"Back"`
}

// Model is a note type to create.
type Model struct {
	Name      string
	Fields    []string
	CSS       string
	Templates []CardTemplate
}

type modelParams struct {
	ModelName     string         `json:"modelName"`
	InOrderFields []string       `json:"inOrderFields"`
	CSS           string         `json:"css"`
	CardTemplates []CardTemplate `json:"cardTemplates"`
}

const defaultCSS = `.card {
 font-family: arial;
 font-size: 20px;
 text-align: center;
 color: black;
 background-color: white;
}`

const defaultFront = `{{Sentence}}
<hr>
<b>{{Word}}</b>`

const defaultBack = `{{FrontSide}}
<hr id=answer>
{{Definition}}
{{#Definition#2}}<hr>{{Definition#2}}{{/Definition#2}}
{{Pronunciation}}
{{Image}}`

// DefaultModel returns the stock sentence-mining note type.
func DefaultModel() Model {
	return Model{
		Name:   DefaultModelName,
		Fields: slices.Clone(DefaultModelFields),
		CSS:    defaultCSS,
		Templates: []CardTemplate{{
			Name:  "Card 1",
			Front: defaultFront,
			Back:  defaultBack,
		}},
	}
}

// CreateModel creates the note type m.
func (c *Client) CreateModel(ctx context.Context, m Model) error {
	params := modelParams{
		ModelName:     m.Name,
		InOrderFields: m.Fields,
		CSS:           m.CSS,
		CardTemplates: m.Templates,
	}
	return c.invoke(ctx, "createModel", params, nil)
}

// AddDefaultModel creates the default note type unless a note type of that
// name exists. It reports whether it created one.
func (c *Client) AddDefaultModel(ctx context.Context) (bool, error) {
	names, err := c.ModelNames(ctx)
	if err != nil {
		return false, err
	}
	if slices.Contains(names, DefaultModelName) {
		return false, nil
	}
	if err := c.CreateModel(ctx, DefaultModel()); err != nil {
		return false, err
	}
	return true, nil
}
