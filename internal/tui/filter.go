package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wealthwise/wealthwise/pkg/query"
)

// filterForm edits one text field per filter key of an entity.
type filterForm struct {
	keys   []string
	inputs []textinput.Model
	focus  int
	open   bool
}

var filterPlaceholders = map[string]string{
	"minAmount":       "0.00",
	"maxAmount":       "0.00",
	"date":            "YYYY-MM-DD",
	"transactionType": "INCOME | EXPENSE",
	"frequency":       "DAILY | WEEKLY | MONTHLY | YEARLY",
	"isActive":        "true | false",
}

func newFilterForm(e query.Entity) filterForm {
	keys := e.Keys()
	inputs := make([]textinput.Model, len(keys))
	for i, k := range keys {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 64
		ti.Width = 32
		ti.Placeholder = filterPlaceholders[k]
		inputs[i] = ti
	}
	return filterForm{keys: keys, inputs: inputs}
}

// Open focuses the first field.
func (f filterForm) Open() (filterForm, tea.Cmd) {
	f.open = true
	f.focus = 0
	return f, f.refocus()
}

// Close blurs every field and keeps the values.
func (f filterForm) Close() filterForm {
	f.open = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f
}

// Clear empties every field.
func (f filterForm) Clear() filterForm {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	return f
}

// Set fills the field for key, ignoring unknown keys.
func (f filterForm) Set(key, value string) filterForm {
	for i, k := range f.keys {
		if k == key {
			f.inputs[i].SetValue(value)
		}
	}
	return f
}

// Filters returns the non-empty fields as a FilterSet.
func (f filterForm) Filters() query.FilterSet {
	out := query.FilterSet{}
	for i, k := range f.keys {
		if v := strings.TrimSpace(f.inputs[i].Value()); v != "" {
			out[k] = v
		}
	}
	return out
}

func (f filterForm) refocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

// Update moves between fields and forwards typing to the focused one.
// submitted is true when enter was pressed.
func (f filterForm) Update(msg tea.KeyMsg) (form filterForm, submitted bool, cmd tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		f.focus = (f.focus + 1) % len(f.inputs)
		return f, false, f.refocus()
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + len(f.inputs)) % len(f.inputs)
		return f, false, f.refocus()
	case "enter":
		return f.Close(), true, nil
	case "esc":
		return f.Close(), false, nil
	}
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, false, cmd
}

// View renders the form, one labelled field per line.
func (f filterForm) View() string {
	var b strings.Builder
	b.WriteString("\n  " + sectionHeaderStyle.Render("Filters") + "\n\n")
	for i, k := range f.keys {
		label := dimStyle.Render(padRight(k, 26))
		prefix := "    "
		if i == f.focus {
			label = selectedStyle.Render(padRight(k, 26))
			prefix = "  " + inputPromptStyle.Render("> ")
		}
		b.WriteString(prefix + label + f.inputs[i].View() + "\n")
	}
	return b.String()
}

// summarizeFilters renders the active filters on one line.
func summarizeFilters(f query.FilterSet) string {
	keys := f.Active()
	if len(keys) == 0 {
		return ""
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := query.Format(f[k])
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, " ")
}
