package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrNoSelection is returned when the picker is closed without a choice
var ErrNoSelection = errors.New("no selection made")

// PickerItem is one entry of a Picker list
type PickerItem struct {
	Label  string // first line
	Detail string // second line, muted
	Value  string // returned when chosen
}

// FilterValue implements list.Item
func (i PickerItem) FilterValue() string { return i.Label + " " + i.Value }

// Title implements list.DefaultItem
func (i PickerItem) Title() string { return i.Label }

// Description implements list.DefaultItem
func (i PickerItem) Description() string { return i.Detail }

// Picker lets the user choose one item from a list, or type a value that
// is not listed
type Picker struct {
	Title string

	// ManualPrompt labels the free-form entry; empty disables it
	ManualPrompt string

	// Validate checks a typed value before it is accepted
	Validate func(string) error
}

// pickerKeyMap defines key bindings for the list view
type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Filter key.Binding
	Enter  key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Filter, k.Enter, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Filter},
		{k.Enter, k.Manual, k.Quit},
	}
}

// manualKeyMap defines key bindings for free-form entry
type manualKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.Confirm, m.Cancel}}
}

type pickerModel struct {
	picker Picker

	list       list.Model
	input      textinput.Model
	help       help.Model
	keys       pickerKeyMap
	manualKeys manualKeyMap

	manual   bool
	inputErr error
	choice   string
	chosen   bool
}

func newPickerModel(p Picker, items []PickerItem, width int) pickerModel {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(PrimaryColor).
		BorderForeground(PrimaryColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(TextColor).
		BorderForeground(PrimaryColor)

	// Title, items (two lines plus spacing) and pagination
	height := len(items)*3 + 4
	if height > 24 {
		height = 24
	}

	l := list.New(listItems, delegate, width, height)
	l.Title = p.Title
	l.Styles.Title = HeaderTitleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 64
	input.Width = 30

	keys := pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "enter manually"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	if p.ManualPrompt == "" {
		keys.Manual.SetEnabled(false)
	}

	return pickerModel{
		picker: p,
		list:   l,
		input:  input,
		help:   help.New(),
		keys:   keys,
		manualKeys: manualKeyMap{
			Confirm: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "confirm"),
			),
			Cancel: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "back"),
			),
		},
	}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 4)
		return m, nil

	case tea.KeyMsg:
		if m.manual {
			return m.updateManual(msg)
		}
		// While filtering, keys go to the filter input
		if m.list.FilterState() != list.Filtering {
			switch {
			case key.Matches(msg, m.keys.Quit) && m.list.FilterState() == list.Unfiltered:
				return m, tea.Quit
			case key.Matches(msg, m.keys.Enter):
				if item, ok := m.list.SelectedItem().(PickerItem); ok {
					m.choice = item.Value
					m.chosen = true
					return m, tea.Quit
				}
				return m, nil
			case key.Matches(msg, m.keys.Manual):
				m.manual = true
				m.inputErr = nil
				m.input.SetValue("")
				cmd := m.input.Focus()
				return m, cmd
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateManual handles keyboard input during free-form entry
func (m pickerModel) updateManual(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.manualKeys.Cancel):
		m.manual = false
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.manualKeys.Confirm):
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			return m, nil
		}
		if m.picker.Validate != nil {
			if err := m.picker.Validate(value); err != nil {
				m.inputErr = err
				return m, nil
			}
		}
		m.choice = value
		m.chosen = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.inputErr = nil
	return m, cmd
}

func (m pickerModel) View() string {
	if m.chosen {
		return ""
	}

	var b strings.Builder
	if m.manual {
		b.WriteString(HeaderTitleStyle.Render(m.picker.Title))
		b.WriteString("\n\n  ")
		b.WriteString(ResultKeyStyle.Render(m.picker.ManualPrompt + ":"))
		b.WriteString(" ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.inputErr != nil {
			b.WriteString("  ")
			b.WriteString(ErrorMessageStyle.Render(fmt.Sprintf("%s %v", FailureMarker, m.inputErr)))
			b.WriteString("\n")
		}
		b.WriteString("\n  ")
		b.WriteString(m.help.View(m.manualKeys))
		b.WriteString("\n")
		return b.String()
	}

	if len(m.list.Items()) == 0 {
		b.WriteString(HeaderTitleStyle.Render(m.picker.Title))
		b.WriteString("\n\n  ")
		b.WriteString(lipgloss.NewStyle().Foreground(WarningColor).Bold(true).Render(WarningMarker + " Nothing to choose from"))
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteString("\n\n")
	}
	b.WriteString("  ")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Run shows the picker and returns the chosen value. It returns
// ErrNoSelection when the user quits and ErrInterrupted when ctx ends.
func (p Picker) Run(ctx context.Context, items []PickerItem, opts ...tea.ProgramOption) (string, error) {
	opts = append(opts, tea.WithContext(ctx))
	final, err := tea.NewProgram(newPickerModel(p, items, GetTerminalWidth()), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
			return "", ErrInterrupted
		}
		return "", err
	}

	m, ok := final.(pickerModel)
	if !ok || !m.chosen {
		return "", ErrNoSelection
	}
	return m.choice, nil
}
