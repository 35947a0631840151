package config

import (
	"fmt"

	"github.com/cognicore/napkin/pkg/napkin/annotate"
	"github.com/cognicore/napkin/pkg/napkin/classify"
)

// Loader loads the configuration file and constructs components
type Loader struct {
	ConfigPath string

	// LexiconPath overrides the lexicon named in the configuration file.
	LexiconPath string
}

// Components holds the loaded configuration and the components built from it
type Components struct {
	Config  Config
	Lexicon []string
}

// Load reads the configuration files and returns initialized components.
// Without a ConfigPath the Default configuration is used.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{Config: Default()}

	if l.ConfigPath != "" {
		cfg, err := LoadConfig(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		comp.Config = *cfg
	}

	if err := comp.Config.Validate(); err != nil {
		return nil, err
	}

	lexiconPath := comp.Config.Lexicon
	if l.LexiconPath != "" {
		lexiconPath = l.LexiconPath
	}
	if lexiconPath != "" {
		lex, err := LoadLexicon(lexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex.Words
	}

	return comp, nil
}

// NewClassifier builds the classifier described by the configuration.
func (c Config) NewClassifier() *classify.Classifier {
	return classify.New(classify.Options{
		Verbatim:   c.Classify.Verbatim,
		FullLabels: c.Classify.FullLabels,
		Labels:     c.Classify.Labels,
	})
}

// NewTextAnnotator builds the built-in text annotator with the loaded lexicon.
func (comp *Components) NewTextAnnotator() (*annotate.Text, error) {
	return annotate.NewText(annotate.TextOptions{Lexicon: comp.Lexicon})
}
