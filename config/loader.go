package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/speakeasy-api/lintcompose/errors"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const (
	ErrUnsupportedFormat = errors.Error("unsupported config format")
	ErrNotFound          = errors.Error("no config file found")
	ErrInvalidJSON       = errors.Error("invalid JSON")
)

// Format is the encoding of a composition document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// DefaultFileNames are the names Discover looks for, in order of preference.
var DefaultFileNames = []string{
	"lintcompose.yaml",
	"lintcompose.yml",
	"lintcompose.json",
	"lintcompose.toml",
}

// FormatForPath picks the document format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", ErrUnsupportedFormat.Wrapf("%q", path)
	}
}

// Load reads and validates a document in the given format.
func Load(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case FormatJSON:
		if err := decodeJSON(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case FormatTOML:
		if err := decodeTOML(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, ErrUnsupportedFormat.Wrapf("%q", format)
	}

	if err := Validate(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// LoadFile loads the document at path. A relative base_dir, or a missing one, is
// resolved against the document's directory.
func LoadFile(path string) (*Document, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	doc, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	switch {
	case doc.BaseDir == "":
		doc.BaseDir = dir
	case !filepath.IsAbs(doc.BaseDir):
		doc.BaseDir = filepath.Join(dir, doc.BaseDir)
	}

	return doc, nil
}

// Discover returns the path of the first default config file present in dir.
func Discover(dir string) (string, error) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return "", ErrNotFound.Wrapf("looked for %s in %s", strings.Join(DefaultFileNames, ", "), dir)
}

// decodeTOML decodes TOML into a generic tree, then through yaml.v3 so every format
// shares the same field mapping and rule setting handling.
func decodeTOML(data []byte, doc *Document) error {
	var raw map[string]any
	dec := toml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	var node yaml.Node
	if err := node.Encode(raw); err != nil {
		return err
	}
	return node.Decode(doc)
}

// decodeJSON reads JSON into a yaml.Node so object keys keep their order and the
// document decodes through the same yaml.v3 hooks as the other formats.
func decodeJSON(data []byte, doc *Document) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if !gjson.ValidBytes(data) {
		return ErrInvalidJSON
	}

	return jsonNode(gjson.ParseBytes(data)).Decode(doc)
}

func jsonNode(result gjson.Result) *yaml.Node {
	switch {
	case result.IsObject():
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		result.ForEach(func(key, value gjson.Result) bool {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key.String()},
				jsonNode(value),
			)
			return true
		})
		return node
	case result.IsArray():
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		result.ForEach(func(_, value gjson.Result) bool {
			node.Content = append(node.Content, jsonNode(value))
			return true
		})
		return node
	}

	switch result.Type {
	case gjson.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: result.Str}
	case gjson.Number:
		tag := "!!float"
		if _, err := strconv.ParseInt(result.Raw, 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: result.Raw}
	case gjson.True, gjson.False:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(result.Bool())}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
