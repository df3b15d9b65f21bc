package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/deskroster/deskroster/internal/directory"
)

// Palette is the command search overlay: one input searching navigation
// actions, contacts, servers and groups at once.
type Palette struct {
	input   textinput.Model
	results []directory.PaletteResult
	cursor  int
	visible bool
	width   int
	height  int

	contacts []directory.Contact
	servers  []directory.Server
	groups   []directory.Group
}

func NewPalette() *Palette {
	ti := textinput.New()
	ti.Placeholder = "Search or type a command..."
	ti.CharLimit = 120
	ti.Width = 50
	return &Palette{input: ti}
}

// Show opens the palette over the given collections.
func (p *Palette) Show(contacts []directory.Contact, servers []directory.Server, groups []directory.Group) {
	p.contacts = contacts
	p.servers = servers
	p.groups = groups
	p.input.SetValue("")
	p.input.Focus()
	p.cursor = 0
	p.visible = true
	p.updateResults()
}

func (p *Palette) Hide() {
	p.visible = false
	p.input.Blur()
}

func (p *Palette) IsVisible() bool {
	return p.visible
}

func (p *Palette) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Selected returns the result under the cursor.
func (p *Palette) Selected() (directory.PaletteResult, bool) {
	if p.cursor < 0 || p.cursor >= len(p.results) {
		return directory.PaletteResult{}, false
	}
	return p.results[p.cursor], true
}

// Query returns the current input text.
func (p *Palette) Query() string {
	return p.input.Value()
}

func (p *Palette) updateResults() {
	p.results = directory.CommandSearch(p.input.Value(), p.contacts, p.servers, p.groups)
	p.cursor = 0
}

// Update handles input. When the user confirms a result it is returned
// via the paletteSelectedMsg command so the parent model can act on it.
func (p *Palette) Update(msg tea.Msg) (*Palette, tea.Cmd) {
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
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
			return p, nil
		case "enter":
			if result, ok := p.Selected(); ok {
				query := p.Query()
				p.Hide()
				return p, func() tea.Msg {
					return paletteSelectedMsg{result: result, query: query}
				}
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.updateResults()
	return p, cmd
}

func paletteTypeLabel(t directory.PaletteResultType) string {
	switch t {
	case directory.PaletteContact:
		return "contact"
	case directory.PaletteServer:
		return "server"
	case directory.PaletteGroup:
		return "team"
	default:
		return "action"
	}
}

func (p *Palette) View() string {
	if !p.visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(DialogTitleStyle.Render("Go to"))
	b.WriteString("\n\n")
	b.WriteString(SearchBoxStyle.Render(p.input.View()))
	b.WriteString("\n\n")

	if len(p.results) == 0 {
		b.WriteString(DimStyle.Render("  no matches"))
		b.WriteString("\n")
	}
	for i, result := range p.results {
		label := result.Title
		if result.Subtitle != "" {
			label += "  " + DimStyle.Render(result.Subtitle)
		}
		kind := TagStyle.Render(paletteTypeLabel(result.Type))
		if i == p.cursor {
			b.WriteString(HighlightStyle.Render("› "+result.Title) + "  " + kind)
		} else {
			b.WriteString("  " + label + "  " + kind)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(DimStyle.Render("[Enter] Open  [↑↓] Navigate  [Esc] Close"))

	box := DialogBoxStyle.Render(b.String())
	return centerInScreen(box, p.width, p.height)
}
