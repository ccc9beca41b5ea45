package graphs

import (
	"encoding/json"
	"io"
)

// JSON defines an Engine that renders the merged configuration itself as indented
// JSON. Useful for inspecting what the browser engine would be given.
type JSON struct{}

var _ Engine = JSON{}

func (JSON) Name() string { return "json" }

func (JSON) New(o *Options) (Handle, error) {
	jsonData, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return nil, err
	}
	return &JSONDocument{Base: NewBase(o), data: jsonData}, nil
}

// JSONDocument is a rendered configuration.
type JSONDocument struct {
	Base
	data []byte
}

func (d *JSONDocument) ContentType() string { return "application/json" }

func (d *JSONDocument) Render(w io.Writer) error {
	_, err := w.Write(d.data)
	return err
}
