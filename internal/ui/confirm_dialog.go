package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmDialog asks a yes/no question, used for contact deletion.
type ConfirmDialog struct {
	title    string
	message  string
	visible  bool
	yes      bool
	width    int
	height   int
	onResult func(confirmed bool)
}

func NewConfirmDialog() *ConfirmDialog {
	return &ConfirmDialog{}
}

// Show displays the dialog. onResult fires exactly once on confirm or
// cancel.
func (d *ConfirmDialog) Show(title, message string, onResult func(confirmed bool)) {
	d.title = title
	d.message = message
	d.onResult = onResult
	d.visible = true
	d.yes = false
}

func (d *ConfirmDialog) Hide() {
	d.visible = false
	d.onResult = nil
}

func (d *ConfirmDialog) IsVisible() bool {
	return d.visible
}

func (d *ConfirmDialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

func (d *ConfirmDialog) finish(confirmed bool) {
	cb := d.onResult
	d.Hide()
	if cb != nil {
		cb(confirmed)
	}
}

func (d *ConfirmDialog) Update(msg tea.Msg) (*ConfirmDialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "n":
			d.finish(false)
		case "y":
			d.finish(true)
		case "left", "right", "tab":
			d.yes = !d.yes
		case "enter":
			d.finish(d.yes)
		}
	}
	return d, nil
}

func (d *ConfirmDialog) View() string {
	if !d.visible {
		return ""
	}

	title := DialogTitleStyle.Render(d.title)
	message := lipgloss.NewStyle().Foreground(ColorText).Render(d.message)

	var yesBtn, noBtn string
	if d.yes {
		yesBtn = DialogButtonActiveStyle.Render("Yes")
		noBtn = DialogButtonStyle.Render("No")
	} else {
		yesBtn = DialogButtonStyle.Render("Yes")
		noBtn = DialogButtonActiveStyle.Render("No")
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, yesBtn, noBtn)

	content := lipgloss.JoinVertical(lipgloss.Center, title, "", message, "", buttons)
	box := DialogBoxStyle.Render(content)
	return centerInScreen(box, d.width, d.height)
}
