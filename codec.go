package pathobj

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// Document formats
///////////////////////////////////////////////////////////////////////////////

// Format names an encoding that Objects can be decoded from and encoded to.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DetectFormat picks a Format from the extension of a file name.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Decode decodes data in the given format and wraps the result.
func Decode(data []byte, format Format, opts ObjectOpts) (*Object, error) {
	switch format {
	case FormatJSON:
		return FromJSON(data, opts)
	case FormatYAML:
		return FromYAML(data, opts)
	case FormatTOML:
		return FromTOML(data, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

///////////////////////////////////////////////////////////////////////////////
// Decoders
///////////////////////////////////////////////////////////////////////////////

// FromJSON decodes a JSON document. Objects become map[string]any, arrays
// []any and numbers float64.
func FromJSON(data []byte, opts ObjectOpts) (*Object, error) {
	root, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return New(root, opts), nil
}

func decodeJSON(data []byte) (any, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	return gjson.ParseBytes(data).Value(), nil
}

// FromYAML decodes a YAML document. Mappings with non string keys are
// converted to map[string]any with their keys formatted as text.
func FromYAML(data []byte, opts ObjectOpts) (*Object, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	root, err := toPlain(raw)
	if err != nil {
		return nil, err
	}
	return New(root, opts), nil
}

// FromTOML decodes a TOML document. Arrays of tables become []any of
// map[string]any; dates and times stay time.Time leaves.
func FromTOML(data []byte, opts ObjectOpts) (*Object, error) {
	raw := map[string]any{}
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	root, err := toPlain(raw)
	if err != nil {
		return nil, err
	}
	return New(root, opts), nil
}

///////////////////////////////////////////////////////////////////////////////
// Encoders
///////////////////////////////////////////////////////////////////////////////

// Encode renders the plain form of the Object in format. JSON output is
// indented by two spaces. TOML requires a mapping root.
func (o *Object) Encode(format Format) ([]byte, error) {
	plain, err := toPlain(o.data)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON:
		return json.MarshalIndent(plain, "", "  ")
	case FormatYAML:
		return yaml.Marshal(plain)
	case FormatTOML:
		if kindOf(plain) != mappingNode {
			return nil, fmt.Errorf("%w: TOML needs a mapping root, have %s", ErrUnsupportedFormat, kindOf(plain))
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(plain); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
