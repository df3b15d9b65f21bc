package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/deskroster/deskroster/internal/directory"
)

// TagPicker is a fuzzy-searchable overlay for toggling tag filters. It
// reads and mutates the shared FilterState directly so the list behind
// it re-filters as tags toggle.
type TagPicker struct {
	input    textinput.Model
	allTags  []string
	filtered []string
	cursor   int
	visible  bool
	width    int
	height   int
	filter   *directory.FilterState
}

func NewTagPicker() *TagPicker {
	ti := textinput.New()
	ti.Placeholder = "Filter tags..."
	ti.CharLimit = 60
	ti.Width = 30
	return &TagPicker{input: ti}
}

// Show opens the picker over the given tag universe and filter state.
func (p *TagPicker) Show(tags []string, filter *directory.FilterState) {
	p.allTags = tags
	p.filter = filter
	p.input.SetValue("")
	p.input.Focus()
	p.cursor = 0
	p.visible = true
	p.refilter()
}

func (p *TagPicker) Hide() {
	p.visible = false
	p.input.Blur()
}

func (p *TagPicker) IsVisible() bool {
	return p.visible
}

func (p *TagPicker) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// refilter narrows the tag list with fuzzy matching on the query.
func (p *TagPicker) refilter() {
	query := strings.TrimSpace(p.input.Value())
	if query == "" {
		p.filtered = p.allTags
	} else {
		matches := fuzzy.Find(query, p.allTags)
		filtered := make([]string, 0, len(matches))
		for _, m := range matches {
			filtered = append(filtered, p.allTags[m.Index])
		}
		p.filtered = filtered
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = 0
	}
}

// Selected returns the tag under the cursor, or "" when the list is empty.
func (p *TagPicker) Selected() string {
	if p.cursor < 0 || p.cursor >= len(p.filtered) {
		return ""
	}
	return p.filtered[p.cursor]
}

func (p *TagPicker) Update(msg tea.Msg) (*TagPicker, tea.Cmd) {
	if !p.visible {
		return p, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.Hide()
			return p, nil
		case "up", "ctrl+k":
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		case "down", "ctrl+j":
			if p.cursor < len(p.filtered)-1 {
				p.cursor++
			}
			return p, nil
		case "enter", " ":
			if tag := p.Selected(); tag != "" && p.filter != nil {
				p.filter.ToggleTag(tag)
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.refilter()
	return p, cmd
}

func (p *TagPicker) View() string {
	if !p.visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(DialogTitleStyle.Render("Filter by Tag"))
	b.WriteString("\n\n")
	b.WriteString(SearchBoxStyle.Render(p.input.View()))
	b.WriteString("\n\n")

	if len(p.filtered) == 0 {
		b.WriteString(DimStyle.Render("  no tags"))
	}
	for i, tag := range p.filtered {
		selected := false
		if p.filter != nil {
			_, selected = p.filter.SelectedTags[tag]
		}
		mark := "  "
		if selected {
			mark = "✓ "
		}
		line := mark + tag
		if i == p.cursor {
			b.WriteString(HighlightStyle.Render("› " + line))
		} else if selected {
			b.WriteString(TagActiveStyle.Render(line))
		} else {
			b.WriteString(RowStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(DimStyle.Render("[Enter] Toggle  [↑↓] Navigate  [Esc] Close"))

	box := DialogBoxStyle.Render(b.String())
	return centerInScreen(box, p.width, p.height)
}
