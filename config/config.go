// Package config loads lint composition documents from YAML, JSON or TOML files and
// turns them into resolved configurations.
package config

import (
	"github.com/speakeasy-api/lintcompose/composer"
	"github.com/speakeasy-api/lintcompose/sequencedmap"
	"gopkg.in/yaml.v3"
)

// Document is a composition document as written on disk.
type Document struct {
	// Extends lists the presets to apply, in order. A single string is accepted.
	Extends StringList `yaml:"extends,omitempty" json:"extends,omitempty" validate:"dive,required"`

	// Plugins lists plugins to enable. Duplicates are ignored.
	Plugins []string `yaml:"plugins,omitempty" json:"plugins,omitempty" validate:"dive,required"`

	// Rules apply to every file.
	Rules *sequencedmap.Map[string, any] `yaml:"rules,omitempty" json:"rules,omitempty"`

	// Overrides apply to matching files only, in order.
	Overrides []Override `yaml:"overrides,omitempty" json:"overrides,omitempty" validate:"dive"`

	// BaseDir is the directory override patterns are relative to. Relative values are
	// taken from the directory holding the document.
	BaseDir string `yaml:"base_dir,omitempty" json:"base_dir,omitempty"`
}

// Override is a rule table scoped to files matching Files and not matching Ignores.
type Override struct {
	Files   []string                       `yaml:"files,omitempty" json:"files,omitempty" validate:"required_without=Ignores,dive,required,glob"`
	Ignores []string                       `yaml:"ignores,omitempty" json:"ignores,omitempty" validate:"dive,required,glob"`
	Rules   *sequencedmap.Map[string, any] `yaml:"rules" json:"rules" validate:"required"`
}

// StringList is a list of strings that can also be written as a single string.
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}

	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*l = list
	return nil
}

// Blocks returns the document's rule tables in resolution order: the global rules, then
// each override.
func (d *Document) Blocks() []composer.Block {
	blocks := make([]composer.Block, 0, len(d.Overrides)+1)
	if d.Rules.Len() > 0 {
		blocks = append(blocks, composer.Block{Rules: d.Rules})
	}
	for _, o := range d.Overrides {
		blocks = append(blocks, composer.Block{
			Files:   o.Files,
			Ignores: o.Ignores,
			Rules:   o.Rules,
		})
	}
	return blocks
}

// Resolve composes the document against catalog. Options are applied after the
// document's own base directory.
func (d *Document) Resolve(catalog composer.Catalog, opts ...composer.Option) (*composer.Configuration, error) {
	opts = append([]composer.Option{composer.WithBaseDir(d.BaseDir)}, opts...)
	return composer.New(catalog, opts...).Resolve(d.Extends, d.Plugins, d.Blocks()...)
}
