package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Dialect is the set of grammar toggles an RS-274/NGC stream is parsed
// under. The base grammar is fixed; every optional production is gated
// by one of these fields.
type Dialect struct {
	// ParseComments, when set, captures comment text into Comment
	// directives; when unset, comments are recognized and discarded.
	ParseComments bool `toml:"parse_comments"`
	// ParseTrailingComment recognizes `;` trailing comments in addition
	// to `( ... )` inline comments.
	ParseTrailingComment bool `toml:"parse_trailing_comment"`
	// ParseChecksum accepts and verifies `*NN` checksums at line end.
	ParseChecksum bool `toml:"parse_checksum"`
	// ParseParameters accepts `#<id>` dereference and `#<id> = <value>`
	// assignment.
	ParseParameters bool `toml:"parse_parameters"`
	// ParseExpressions accepts bracketed infix expressions and function
	// calls.
	ParseExpressions bool `toml:"parse_expressions"`
	// StringValue accepts `"..."` string literals wherever a real value
	// is allowed.
	StringValue bool `toml:"string_value"`
	// OptionalValue allows a word letter to have no value.
	OptionalValue bool `toml:"optional_value"`
	// Extended allows the letters e o u v w as word letters and allows
	// `;` as a trailing-comment delimiter.
	Extended bool `toml:"extended"`

	// NamedParameters allows a parameter id to be a bracket-quoted name
	// (`#<_x>`) in addition to a numeric id. Off by default: the base
	// grammar only promises numeric ids.
	NamedParameters bool `toml:"named_parameters"`

	// MaxExpressionDepth bounds the number of items an expression's
	// accumulation buffer may hold; zero means unbounded.
	MaxExpressionDepth int `toml:"max_expression_depth"`
	// MaxCommentLength bounds the number of bytes a captured comment may
	// hold; zero means unbounded.
	MaxCommentLength int `toml:"max_comment_length"`
}

// DefaultDialect returns the base RS-274/NGC dialect: comments discarded,
// no trailing comments, no checksum, parameters and expressions enabled,
// no string values, no optional values, non-extended letter set.
func DefaultDialect() *Dialect {
	return &Dialect{
		ParseComments:        false,
		ParseTrailingComment: false,
		ParseChecksum:        false,
		ParseParameters:      true,
		ParseExpressions:     true,
		StringValue:          false,
		OptionalValue:        false,
		Extended:             false,
		NamedParameters:      false,
		MaxExpressionDepth:   0,
		MaxCommentLength:     0,
	}
}

// GetConfigPath returns the platform-specific dialect config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "gcode-parser")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "dialect.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "gcode-parser")

	default:
		return "dialect.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "dialect.toml"
	}

	return filepath.Join(configDir, "dialect.toml")
}

// LoadDialect loads a dialect from the default config file.
func LoadDialect() (*Dialect, error) {
	return LoadDialectFrom(GetConfigPath())
}

// LoadDialectFrom loads and overrides DefaultDialect's fields from the
// TOML file at path. A missing file is not an error: the defaults are
// returned unchanged.
func LoadDialectFrom(path string) (*Dialect, error) {
	d := DefaultDialect()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return d, nil
	}

	if _, err := toml.DecodeFile(path, d); err != nil {
		return nil, fmt.Errorf("failed to parse dialect file: %w", err)
	}

	return d, nil
}

// Save writes d to the default config file.
func (d *Dialect) Save() error {
	return d.SaveTo(GetConfigPath())
}

// SaveTo writes d as TOML to path, creating parent directories as needed.
func (d *Dialect) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user-specified config file path
	if err != nil {
		return fmt.Errorf("failed to create dialect file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("failed to encode dialect: %w", err)
	}

	return nil
}
