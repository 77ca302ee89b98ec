package lexer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigFile represents the structure of a YAML or TOML lexer configuration file.
type ConfigFile struct {
	Special []SpecialRule `yaml:"special" toml:"special"`
	Comment string        `yaml:"comment,omitempty" toml:"comment,omitempty"`
	Keyword []KeywordRule `yaml:"keyword,omitempty" toml:"keyword,omitempty"`
}

// SpecialRule names a character sequence that always forms a token of its own.
type SpecialRule struct {
	Text string `yaml:"text" toml:"text"`
}

// KeywordRule adds an alternative spelling for a keyword.
type KeywordRule struct {
	Text    string `yaml:"text" toml:"text"`
	Keyword string `yaml:"keyword" toml:"keyword"`
}

// Config holds the lexical settings used by the Arranger and Lexicalizer.
type Config struct {
	SpecialChars []string           // split out of words, in priority order
	Comment      string             // comment marker; empty disables comments
	Aliases      map[string]Keyword // extra keyword spellings

	// Precomputed lookup map from spelling to keyword
	lookup map[string]Keyword
}

// DefaultSpecialChars returns the characters split out of words by default.
func DefaultSpecialChars() []string {
	return []string{",", "(", ")", "[", "]", "{", "}"}
}

// DefaultConfig returns the default lexer configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		SpecialChars: DefaultSpecialChars(),
		Comment:      "--",
		Aliases:      map[string]Keyword{},
	}

	// Default settings should never conflict, so we panic if there's an error
	if err := cfg.BuildLookup(); err != nil {
		panic(fmt.Sprintf("Invalid default lexer config: %v", err))
	}

	return cfg
}

// LoadConfigFile loads and parses a configuration file. Files ending in
// .toml are decoded as TOML, everything else as YAML.
func LoadConfigFile(filename string) (*ConfigFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filename, err)
	}

	var file ConfigFile
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse TOML in config file '%s': %w", filename, err)
		}
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse YAML in config file '%s': %w", filename, err)
		}
	}

	return &file, nil
}

// ApplyConfigToDefaults applies the settings from a ConfigFile to a copy of
// the defaults. Returns an error if keyword spellings conflict.
func ApplyConfigToDefaults(file *ConfigFile) (*Config, error) {
	cfg := DefaultConfig()

	if len(file.Special) > 0 {
		cfg.SpecialChars = make([]string, 0, len(file.Special))
		for _, rule := range file.Special {
			cfg.SpecialChars = append(cfg.SpecialChars, rule.Text)
		}
	}

	if file.Comment != "" {
		cfg.Comment = file.Comment
	}

	for _, rule := range file.Keyword {
		kw, err := ParseKeyword(rule.Keyword)
		if err != nil {
			return nil, fmt.Errorf("keyword rule '%s': %w", rule.Text, err)
		}
		if existing, ok := cfg.Aliases[rule.Text]; ok && existing != kw {
			return nil, fmt.Errorf("'%s' is defined as both %s and %s", rule.Text, existing.Name(), kw.Name())
		}
		cfg.Aliases[rule.Text] = kw
	}

	if err := cfg.BuildLookup(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// BuildLookup validates the configuration and creates the precomputed
// spelling lookup map. It must be called after the fields are modified.
func (c *Config) BuildLookup() error {
	seen := make(map[string]bool)
	for _, sc := range c.SpecialChars {
		if sc == "" {
			return fmt.Errorf("special character must not be empty")
		}
		if strings.IndexFunc(sc, unicode.IsSpace) >= 0 {
			return fmt.Errorf("special character '%s' contains whitespace", sc)
		}
		if seen[sc] {
			return fmt.Errorf("special character '%s' is listed twice", sc)
		}
		seen[sc] = true
	}
	if strings.IndexFunc(c.Comment, unicode.IsSpace) >= 0 {
		return fmt.Errorf("comment marker '%s' contains whitespace", c.Comment)
	}

	c.lookup = make(map[string]Keyword, int(keywordCount)+len(c.Aliases))
	for _, kw := range Keywords() {
		c.lookup[kw.String()] = kw
	}
	for text, kw := range c.Aliases {
		if !kw.Valid() {
			return fmt.Errorf("alias '%s' refers to an unknown keyword", text)
		}
		if text == "" || strings.IndexFunc(text, unicode.IsSpace) >= 0 {
			return fmt.Errorf("invalid keyword spelling '%s'", text)
		}
		if existing, ok := c.lookup[text]; ok && existing != kw {
			return fmt.Errorf("'%s' is defined as both %s and %s", text, existing.Name(), kw.Name())
		}
		c.lookup[text] = kw
	}
	return nil
}

// lookupKeyword finds the keyword spelled by text.
func (c *Config) lookupKeyword(text string) (Keyword, bool) {
	if c.lookup == nil {
		if err := c.BuildLookup(); err != nil {
			return 0, false
		}
	}
	kw, ok := c.lookup[text]
	return kw, ok
}

// File converts the configuration back into its file representation.
func (c *Config) File() *ConfigFile {
	file := &ConfigFile{Comment: c.Comment}
	for _, sc := range c.SpecialChars {
		file.Special = append(file.Special, SpecialRule{Text: sc})
	}

	texts := make([]string, 0, len(c.Aliases))
	for text := range c.Aliases {
		texts = append(texts, text)
	}
	sort.Strings(texts)
	for _, text := range texts {
		file.Keyword = append(file.Keyword, KeywordRule{Text: text, Keyword: c.Aliases[text].Name()})
	}
	return file
}
