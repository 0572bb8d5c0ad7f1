package digest

import (
	"bytes"
	_ "embed"
	"text/template"
)

type Item struct {
	Ordinal  int
	Title    string
	Meta     string
	Score    int
	Tags     string
	Link     string
	Abstract string
}

type Data struct {
	Title      string
	Date       string
	SnapshotID string
	Items      []Item
}

//go:embed digest.tmpl
var digestTpl string

var compiled = template.Must(template.New("digest").Parse(digestTpl))

func Render(d Data) (string, error) {
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
