// Package render turns session values and failures into display text.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/itsmostafa/prayog/internal/engine"
	"github.com/itsmostafa/prayog/internal/value"
)

const (
	previewDepth    = 2
	previewItems    = 3
	nestedItems     = 2
	previewTextRune = 20
)

// Formatter renders values for one output stream.
type Formatter struct {
	styles styles
}

// New returns a formatter for w. When colorize is false all styling is
// stripped; otherwise colour follows what the terminal behind w supports.
func New(w io.Writer, colorize bool) *Formatter {
	r := lipgloss.NewRenderer(w)
	if !colorize {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Formatter{styles: newStyles(r)}
}

// NewWithProfile returns a formatter that always uses profile.
func NewWithProfile(w io.Writer, profile termenv.Profile) *Formatter {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	return &Formatter{styles: newStyles(r)}
}

// Format renders v.
func (f *Formatter) Format(v value.Value) string {
	switch x := v.(type) {
	case nil, value.Null:
		return f.styles.null.Render("null")
	case value.Bool:
		return f.styles.boolean.Render(strconv.FormatBool(bool(x)))
	case value.Int:
		return f.styles.number.Render(strconv.FormatInt(int64(x), 10))
	case value.Float:
		return f.styles.number.Render(formatFloat(float64(x)))
	case value.String:
		return f.styles.text.Render(strconv.Quote(string(x)))
	case value.List:
		text := fmt.Sprintf("array(%d) %s", len(x), listPreview(x, previewDepth, previewItems))
		return f.styles.list.Render(text)
	case *value.Map:
		text := fmt.Sprintf("map(%d) %s", x.Len(), mapPreview(x, previewDepth, previewItems))
		return f.styles.list.Render(text)
	case *value.Object:
		return f.styles.object.Render(fmt.Sprintf("object(%s)", x.Class))
	case *value.Resource:
		return f.styles.resource.Render(fmt.Sprintf("resource(%s)", x.Kind))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatError renders an evaluation failure.
func (f *Formatter) FormatError(kind engine.Kind, message string) string {
	return f.styles.err.Render(fmt.Sprintf("Error (%s): %s", kind, message))
}

// Banner returns the default welcome text.
func (f *Formatter) Banner(engineName, version string) string {
	var b strings.Builder
	b.WriteString(f.styles.title.Render("Prayog - interactive " + engineName + " session"))
	b.WriteString("\n")
	b.WriteString(f.styles.dim.Render("version " + version))
	b.WriteString("\n")
	b.WriteString("Type 'exit' or press Ctrl+D to quit.\n\n")
	return b.String()
}

// Farewell returns the text printed when the session ends.
func (f *Formatter) Farewell() string {
	return "\nGoodbye!\n"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func listPreview(items value.List, depth, limit int) string {
	if len(items) == 0 {
		return "[]"
	}
	parts := make([]string, 0, min(len(items), limit)+1)
	for i, item := range items {
		if i >= limit {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, preview(item, depth-1))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func mapPreview(m *value.Map, depth, limit int) string {
	if m.Len() == 0 {
		return "[]"
	}
	parts := make([]string, 0, min(m.Len(), limit)+1)
	for i, k := range m.Keys {
		if i >= limit {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, strconv.Quote(k)+" => "+preview(m.Values[k], depth-1))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// preview renders a nested value without styling.
func preview(v value.Value, depth int) string {
	if depth <= 0 {
		return "..."
	}
	switch x := v.(type) {
	case nil, value.Null:
		return "null"
	case value.Bool:
		return strconv.FormatBool(bool(x))
	case value.Int:
		return strconv.FormatInt(int64(x), 10)
	case value.Float:
		return formatFloat(float64(x))
	case value.String:
		runes := []rune(string(x))
		if len(runes) > previewTextRune {
			return strconv.Quote(string(runes[:previewTextRune])) + "..."
		}
		return strconv.Quote(string(x))
	case value.List:
		return listPreview(x, depth, nestedItems)
	case *value.Map:
		return mapPreview(x, depth, nestedItems)
	case *value.Object:
		return x.Class
	case *value.Resource:
		return "resource(" + x.Kind + ")"
	default:
		return fmt.Sprintf("%v", v)
	}
}
