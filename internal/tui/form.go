package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// form edits a title and a description. Used for both add and edit.
type form struct {
	// targetID is the item being edited; zero when adding.
	targetID int

	title       textinput.Model
	description textarea.Model
	onDesc      bool
}

func newForm(targetID int, title, description string, width int) form {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 200
	ti.Width = max(width-4, 20)
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(title)
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Description"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(max(width-2, 20))
	ta.SetHeight(6)
	ta.Cursor.SetMode(cursor.CursorStatic)
	ta.SetValue(description)
	ta.Blur()

	return form{targetID: targetID, title: ti, description: ta}
}

func (f form) adding() bool { return f.targetID == 0 }

func (f form) values() (string, string) {
	return f.title.Value(), f.description.Value()
}

// switchField moves focus between the title and the description.
func (f *form) switchField() {
	f.onDesc = !f.onDesc
	if f.onDesc {
		f.title.Blur()
		f.description.Focus()
		return
	}
	f.description.Blur()
	f.title.Focus()
}

// update forwards a message to the focused field.
func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.onDesc {
		f.description, cmd = f.description.Update(msg)
	} else {
		f.title, cmd = f.title.Update(msg)
	}
	return cmd
}
