package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/deskroster/deskroster/internal/directory"
)

// AddDialog collects the fields for a new manual contact.
type AddDialog struct {
	inputs  []textinput.Model
	focused int
	visible bool
	width   int
	height  int
	errMsg  string
}

const (
	addFieldName = iota
	addFieldEmail
	addFieldTitle
	addFieldPhone
	addFieldCount
)

var addFieldLabels = [addFieldCount]string{"Name", "Email", "Title", "Phone"}

func NewAddDialog() *AddDialog {
	inputs := make([]textinput.Model, addFieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = MaxNameLength
		ti.Width = 40
		ti.Placeholder = addFieldLabels[i]
		inputs[i] = ti
	}
	return &AddDialog{inputs: inputs}
}

// Show resets the form and displays it. On confirm Update emits a
// contactSubmittedMsg with the entered contact.
func (d *AddDialog) Show(prefillEmail string) {
	for i := range d.inputs {
		d.inputs[i].SetValue("")
		d.inputs[i].Blur()
	}
	if prefillEmail != "" {
		d.inputs[addFieldEmail].SetValue(prefillEmail)
	}
	d.focused = addFieldName
	d.inputs[d.focused].Focus()
	d.errMsg = ""
	d.visible = true
}

func (d *AddDialog) Hide() {
	d.visible = false
	for i := range d.inputs {
		d.inputs[i].Blur()
	}
}

func (d *AddDialog) IsVisible() bool {
	return d.visible
}

func (d *AddDialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Validate checks the form and returns an error message, or "" when the
// form can be submitted.
func (d *AddDialog) Validate() string {
	email := strings.TrimSpace(d.inputs[addFieldEmail].Value())
	if email == "" {
		return "email is required"
	}
	if !strings.Contains(email, "@") {
		return "email must contain @"
	}
	return ""
}

// Contact builds the contact from the current form values.
func (d *AddDialog) Contact() directory.Contact {
	return directory.Contact{
		Name:   strings.TrimSpace(d.inputs[addFieldName].Value()),
		Email:  strings.TrimSpace(d.inputs[addFieldEmail].Value()),
		Title:  strings.TrimSpace(d.inputs[addFieldTitle].Value()),
		Phone:  strings.TrimSpace(d.inputs[addFieldPhone].Value()),
		Manual: true,
	}
}

func (d *AddDialog) setFocus(i int) {
	d.inputs[d.focused].Blur()
	d.focused = i
	d.inputs[d.focused].Focus()
}

func (d *AddDialog) Update(msg tea.Msg) (*AddDialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			d.Hide()
			return d, nil
		case "tab", "down":
			d.setFocus((d.focused + 1) % addFieldCount)
			return d, nil
		case "shift+tab", "up":
			d.setFocus((d.focused + addFieldCount - 1) % addFieldCount)
			return d, nil
		case "enter":
			if errMsg := d.Validate(); errMsg != "" {
				d.errMsg = errMsg
				return d, nil
			}
			contact := d.Contact()
			d.Hide()
			return d, func() tea.Msg {
				return contactSubmittedMsg{contact: contact}
			}
		}
	}

	var cmd tea.Cmd
	d.inputs[d.focused], cmd = d.inputs[d.focused].Update(msg)
	d.errMsg = ""
	return d, cmd
}

func (d *AddDialog) View() string {
	if !d.visible {
		return ""
	}

	var b strings.Builder
	b.WriteString(DialogTitleStyle.Render("New Contact"))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(ColorTextDim).Width(8)
	for i := range d.inputs {
		b.WriteString(labelStyle.Render(addFieldLabels[i]))
		b.WriteString(" ")
		b.WriteString(d.inputs[i].View())
		b.WriteString("\n")
	}

	if d.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(d.errMsg))
	}
	b.WriteString("\n")
	b.WriteString(DimStyle.Render("[Enter] Save  [Tab] Next field  [Esc] Cancel"))

	box := DialogBoxStyle.Render(b.String())
	return centerInScreen(box, d.width, d.height)
}
