package prompt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	chooserCursorConstant               = "> "
	chooserIndentConstant               = "  "
	chooserEntryTemplateConstant        = "%s%s"
	chooserHelpTextConstant             = "↑/↓ move • enter select • q quit"
	chooserRunErrorTemplateConstant     = "unable to run chooser: %w"
	chooserDescriptionSeparatorConstant = "  "
)

var (
	chooserTitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#61AFEF")).MarginBottom(1)
	chooserSelectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379")).Bold(true)
	chooserDescriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#636B78"))
	chooserHelpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#5C6370")).MarginTop(1)
)

// MenuEntry is one selectable line of the chooser.
type MenuEntry struct {
	Name        string
	Description string
}

type chooserKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

func defaultChooserKeyMap() chooserKeyMap {
	return chooserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ChooserModel is the bubbletea model behind MenuChooser.
type ChooserModel struct {
	title     string
	entries   []MenuEntry
	cursor    int
	chosen    int
	cancelled bool
	keys      chooserKeyMap
}

// NewChooserModel builds a chooser positioned on the first entry.
func NewChooserModel(title string, entries []MenuEntry) ChooserModel {
	return ChooserModel{title: title, entries: entries, chosen: -1, keys: defaultChooserKeyMap()}
}

// Init satisfies tea.Model.
func (model ChooserModel) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and records the selection.
func (model ChooserModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	keyMessage, isKeyMessage := message.(tea.KeyMsg)
	if !isKeyMessage {
		return model, nil
	}

	switch {
	case key.Matches(keyMessage, model.keys.Quit):
		model.cancelled = true
		return model, tea.Quit
	case key.Matches(keyMessage, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}
	case key.Matches(keyMessage, model.keys.Down):
		if model.cursor < len(model.entries)-1 {
			model.cursor++
		}
	case key.Matches(keyMessage, model.keys.Select):
		if len(model.entries) > 0 {
			model.chosen = model.cursor
			return model, tea.Quit
		}
	}
	return model, nil
}

// View renders the entry list with the cursor.
func (model ChooserModel) View() string {
	var builder strings.Builder
	builder.WriteString(chooserTitleStyle.Render(model.title))
	builder.WriteString("\n")
	for entryIndex, entry := range model.entries {
		line := entry.Name
		if len(entry.Description) > 0 {
			line += chooserDescriptionSeparatorConstant + chooserDescriptionStyle.Render(entry.Description)
		}
		if entryIndex == model.cursor {
			builder.WriteString(fmt.Sprintf(chooserEntryTemplateConstant, chooserCursorConstant, chooserSelectedStyle.Render(line)))
		} else {
			builder.WriteString(fmt.Sprintf(chooserEntryTemplateConstant, chooserIndentConstant, line))
		}
		builder.WriteString("\n")
	}
	builder.WriteString(chooserHelpStyle.Render(chooserHelpTextConstant))
	builder.WriteString("\n")
	return builder.String()
}

// Selection returns the chosen entry name, or ErrCancelled when the user quit.
func (model ChooserModel) Selection() (string, error) {
	if model.cancelled || model.chosen < 0 || model.chosen >= len(model.entries) {
		return "", ErrCancelled
	}
	return model.entries[model.chosen].Name, nil
}

// MenuChooser runs the chooser as a bubbletea program.
type MenuChooser struct {
	input  io.Reader
	output io.Writer
}

// NewMenuChooser constructs a chooser bound to the provided terminal streams.
func NewMenuChooser(input io.Reader, output io.Writer) *MenuChooser {
	return &MenuChooser{input: input, output: output}
}

// Choose shows the entries and returns the chosen name.
func (chooser *MenuChooser) Choose(title string, entries []MenuEntry) (string, error) {
	if len(entries) == 0 {
		return "", ErrNoOptions
	}

	var programOptions []tea.ProgramOption
	if chooser.input != nil {
		programOptions = append(programOptions, tea.WithInput(chooser.input))
	}
	if chooser.output != nil {
		programOptions = append(programOptions, tea.WithOutput(chooser.output))
	}

	program := tea.NewProgram(NewChooserModel(title, entries), programOptions...)
	finalModel, runError := program.Run()
	if runError != nil {
		return "", fmt.Errorf(chooserRunErrorTemplateConstant, runError)
	}
	chooserModel, isChooserModel := finalModel.(ChooserModel)
	if !isChooserModel {
		return "", ErrCancelled
	}
	return chooserModel.Selection()
}
