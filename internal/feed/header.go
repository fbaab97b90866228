package feed

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Position is the fallback column for a field whose header could not be
// matched by name.
type Position int

const (
	// PositionNone marks a field absent when no header matches.
	PositionNone Position = -1
	// PositionLast falls back to the final header column.
	PositionLast Position = -2
)

// At returns an explicit zero-based fallback column.
func At(i int) Position {
	if i < 0 {
		return PositionNone
	}
	return Position(i)
}

// index resolves p against a header of the given width.
func (p Position) index(width int) (int, bool) {
	switch {
	case p == PositionLast:
		if width == 0 {
			return 0, false
		}
		return width - 1, true
	case p < 0:
		return 0, false
	case int(p) >= width:
		return 0, false
	default:
		return int(p), true
	}
}

func (p Position) String() string {
	switch p {
	case PositionLast:
		return "last"
	case PositionNone:
		return "none"
	default:
		return strconv.Itoa(int(p))
	}
}

// UnmarshalYAML accepts "last", "none" or a column index.
func (p *Position) UnmarshalYAML(node *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(node.Value)) {
	case "last":
		*p = PositionLast
		return nil
	case "none", "":
		*p = PositionNone
		return nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(node.Value))
	if err != nil || i < 0 {
		return eris.Errorf("feed: invalid fallback position %q (line %d)", node.Value, node.Line)
	}
	*p = Position(i)
	return nil
}

// FieldSpec declares how one semantic field is located in a header row.
// Aliases are exact matches against cleaned headers, tried in order.
// Contains holds case-insensitive substrings tried after the aliases. Fallback is used when nothing matches.
type FieldSpec struct {
	Key      string   `yaml:"key"`
	Aliases  []string `yaml:"aliases"`
	Contains []string `yaml:"contains"`
	Fallback Position `yaml:"fallback"`
}

// UnmarshalYAML defaults an omitted fallback to PositionNone.
func (f *FieldSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain FieldSpec
	p := plain{Fallback: PositionNone}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*f = FieldSpec(p)
	return nil
}

// CleanHeader strips quotes, carriage returns and newlines, then trims
// surrounding whitespace.
func CleanHeader(h string) string {
	h = strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(h)
	return strings.TrimSpace(h)
}

// HeaderMap maps semantic field keys to column indexes. It is built once per
// table by Resolve and never modified.
type HeaderMap struct {
	columns map[string]int
	width   int
}

// Index returns the column for key. ok is false when the field is absent.
func (m HeaderMap) Index(key string) (int, bool) {
	i, ok := m.columns[key]
	return i, ok
}

// Width is the number of header columns the map was resolved against.
func (m HeaderMap) Width() int { return m.width }

// Len is the number of resolved fields.
func (m HeaderMap) Len() int { return len(m.columns) }

// Resolve builds a HeaderMap for header using the schema's field table. It
// never fails: unmatched fields use their fallback or are left absent.
func Resolve(header []string, schema Schema) HeaderMap {
	cleaned := make([]string, len(header))
	folded := make([]string, len(header))
	exact := make(map[string]int, len(header))
	for i, h := range header {
		cleaned[i] = CleanHeader(h)
		folded[i] = fold(cleaned[i])
		if _, dup := exact[cleaned[i]]; !dup {
			exact[cleaned[i]] = i
		}
	}

	m := HeaderMap{columns: make(map[string]int, len(schema.Fields)), width: len(header)}
	for _, spec := range schema.Fields {
		if i, ok := resolveField(spec, exact, folded); ok {
			m.columns[spec.Key] = i
			continue
		}
		if i, ok := spec.Fallback.index(len(header)); ok {
			m.columns[spec.Key] = i
		}
	}
	return m
}

func resolveField(spec FieldSpec, exact map[string]int, folded []string) (int, bool) {
	for _, alias := range spec.Aliases {
		if i, ok := exact[strings.TrimSpace(alias)]; ok {
			return i, true
		}
	}
	for _, sub := range spec.Contains {
		needle := fold(sub)
		if needle == "" {
			continue
		}
		for i, h := range folded {
			if strings.Contains(h, needle) {
				return i, true
			}
		}
	}
	return 0, false
}

// fold case-folds s. Accents are kept so "día" does not match "media".
// Composed and decomposed spellings of the same letter fold alike.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
