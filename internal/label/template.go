package label

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"labelprint/internal/services"
)

// Template is a parsed label template. It is read-only after parsing.
type Template struct {
	name         string
	text         string
	placeholders []string
}

// LoadTemplate reads and parses the template at path.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrTemplate, "label", "load", fmt.Sprintf("read template %s", path), err)
	}
	return ParseTemplate(filepath.Base(path), string(data))
}

// ParseTemplate parses template text already in memory.
func ParseTemplate(name, text string) (*Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, services.Wrap(services.ErrTemplate, "label", "parse", fmt.Sprintf("template %q is empty", name), nil)
	}
	seen := make(map[string]struct{})
	if _, err := expand(text, func(key string) string {
		seen[key] = struct{}{}
		return ""
	}); err != nil {
		return nil, services.Wrap(services.ErrTemplate, "label", "parse", fmt.Sprintf("template %s", name), err)
	}
	names := make([]string, 0, len(seen))
	for key := range seen {
		names = append(names, key)
	}
	sort.Strings(names)
	return &Template{name: name, text: text, placeholders: names}, nil
}

// Name returns the template's display name.
func (t *Template) Name() string { return t.name }

// Text returns the raw template markup.
func (t *Template) Text() string { return t.text }

// Placeholders returns the sorted field names the template references.
func (t *Template) Placeholders() []string { return slices.Clone(t.placeholders) }

// Fill substitutes fields into tpl. Every referenced placeholder must have a
// value; otherwise the error lists all missing names.
func Fill(tpl *Template, fields map[string]string) (string, error) {
	if tpl == nil {
		return "", services.Wrap(services.ErrTemplate, "label", "fill", "no template loaded", nil)
	}
	var missing []string
	out, err := expand(tpl.text, func(key string) string {
		value, ok := fields[key]
		if !ok {
			missing = append(missing, key)
		}
		return value
	})
	if err != nil {
		return "", services.Wrap(services.ErrTemplate, "label", "fill", fmt.Sprintf("template %s", tpl.name), err)
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		missing = slices.Compact(missing)
		return "", services.Wrap(services.ErrTemplate, "label", "fill",
			fmt.Sprintf("template %s has no value for %s", tpl.name, strings.Join(missing, ", ")), nil)
	}
	return out, nil
}

// expand replaces $NAME and ${NAME} with mapping(NAME) and $$ with a single
// dollar. A $ followed by anything else is kept as written. A brace that is
// unterminated, empty, or holds a non-identifier is an error with its 1-based
// line and column.
func expand(text string, mapping func(string) string) (string, error) {
	var buf strings.Builder
	buf.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] != '$' || i+1 >= len(text) {
			buf.WriteByte(text[i])
			continue
		}
		next := text[i+1]
		switch {
		case next == '$':
			buf.WriteByte('$')
			i++
		case next == '{':
			end := strings.IndexByte(text[i+2:], '}')
			if end < 0 || !isFieldName(text[i+2 : i+2+end]) {
				line, col := position(text, i)
				return "", fmt.Errorf("invalid placeholder at line %d, col %d", line, col)
			}
			buf.WriteString(mapping(text[i+2 : i+2+end]))
			i += end + 2
		case isNameStart(next):
			j := i + 2
			for j < len(text) && isNameByte(text[j]) {
				j++
			}
			buf.WriteString(mapping(text[i+1 : j]))
			i = j - 1
		default:
			buf.WriteByte('$')
		}
	}
	return buf.String(), nil
}

func position(text string, offset int) (int, int) {
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndexByte(before, '\n')
	return line, col
}

func isNameStart(b byte) bool {
	return b == '_' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}

func isNameByte(b byte) bool {
	return isNameStart(b) || b >= '0' && b <= '9'
}

func isFieldName(key string) bool {
	if key == "" || !isNameStart(key[0]) {
		return false
	}
	for i := 1; i < len(key); i++ {
		if !isNameByte(key[i]) {
			return false
		}
	}
	return true
}
