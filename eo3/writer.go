package eo3

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"gopkg.in/yaml.v2"

	"github.com/sansa-eo/spot-eo3/utils"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var sidecarSuffixes = map[Format]string{
	FormatJSON: ".odc-dataset.json",
	FormatYAML: ".odc-metadata.yaml",
}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := sidecarSuffixes[f]; !ok {
		return "", fmt.Errorf("unsupported output format %q, expected json or yaml", s)
	}
	return f, nil
}

// SidecarPath replaces the extension of path with the suffix of f.
func SidecarPath(path string, f Format) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + sidecarSuffixes[f]
}

// Encode serialises doc. JSON is indented by two spaces with no
// trailing newline.
func Encode(doc *Dataset, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
	case FormatYAML:
		return yaml.Marshal(doc)
	}
	return nil, fmt.Errorf("unsupported output format %q", f)
}

// Decode is the inverse of Encode.
func Decode(data []byte, f Format) (*Dataset, error) {
	doc := &Dataset{}
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, doc)
	default:
		err = fmt.Errorf("unsupported output format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// WriteSidecar writes doc next to the raster at path, replacing any
// previous document, and returns the path written.
func WriteSidecar(path string, doc *Dataset, f Format) (string, error) {
	outPath := SidecarPath(path, f)
	data, err := Encode(doc, f)
	if err != nil {
		return "", utils.NewError(utils.KindWrite, outPath, err)
	}

	if err := renameio.WriteFile(outPath, data, 0644); err != nil {
		return "", utils.NewError(utils.KindWrite, outPath, err)
	}
	return outPath, nil
}
