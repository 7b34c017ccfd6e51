package teaui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"tableflip.dev/nbook/pkg/cell"
)

// markdown renders markdown cells, keeping one renderer per wrap width.
type markdown struct {
	width    int
	renderer *glamour.TermRenderer
	cache    map[string]string
}

func (m *markdown) render(source string, width int) string {
	width = max(width, 10)
	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return source
		}
		m.renderer = r
		m.width = width
		m.cache = make(map[string]string)
	}
	if out, ok := m.cache[source]; ok {
		return out
	}
	out, err := m.renderer.Render(source)
	if err != nil {
		return source
	}
	out = strings.Trim(out, "\n")
	m.cache[source] = out
	return out
}

// renderedOutput is the text form of one output record.
type renderedOutput struct {
	Text  string
	Error bool
}

// outputText turns nbformat output records into plain text. Rich mime types
// fall back to text/plain, then to a placeholder naming the mime type.
func outputText(outputs []cell.Output) []renderedOutput {
	var out []renderedOutput
	for _, raw := range outputs {
		var o struct {
			OutputType string          `json:"output_type"`
			Name       string          `json:"name"`
			Text       json.RawMessage `json:"text"`
			Data       map[string]any  `json:"data"`
			EName      string          `json:"ename"`
			EValue     string          `json:"evalue"`
		}
		if err := json.Unmarshal(raw, &o); err != nil {
			out = append(out, renderedOutput{Text: "<unreadable output>", Error: true})
			continue
		}
		switch o.OutputType {
		case "stream":
			out = append(out, renderedOutput{Text: multiline(o.Text), Error: o.Name == "stderr"})
		case "execute_result", "display_data":
			out = append(out, renderedOutput{Text: mimeText(o.Data)})
		case "error":
			out = append(out, renderedOutput{Text: fmt.Sprintf("%s: %s", o.EName, o.EValue), Error: true})
		default:
			out = append(out, renderedOutput{Text: fmt.Sprintf("<%s>", o.OutputType)})
		}
	}
	return out
}

func multiline(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimRight(s, "\n")
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.TrimRight(strings.Join(lines, ""), "\n")
	}
	return string(raw)
}

func mimeText(data map[string]any) string {
	if v, ok := data["text/plain"]; ok {
		switch t := v.(type) {
		case string:
			return strings.TrimRight(t, "\n")
		case []any:
			var b strings.Builder
			for _, line := range t {
				if s, ok := line.(string); ok {
					b.WriteString(s)
				}
			}
			return strings.TrimRight(b.String(), "\n")
		}
	}
	for mime := range data {
		return fmt.Sprintf("<%s>", mime)
	}
	return ""
}
