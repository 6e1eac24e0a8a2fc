package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/argon2-wasm/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	paramStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type action struct {
	name   string
	help   string
	fields []string
}

var actions = []action{
	{name: "hash", help: "derive a PHC string with a random salt", fields: []string{"password"}},
	{name: "verify", help: "check a password against a PHC string", fields: []string{"password", "encoded"}},
	{name: "raw", help: "derive a hex tag from a fixed salt", fields: []string{"password", "salt"}},
}

type modelState int

const (
	stateSelectAction modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	err      error
	hasher   *runtime.Hasher
	params   runtime.Params
	source   string
	result   string
	elapsed  time.Duration
	inputs   []textinput.Model
	selected int
	focusIdx int
	busy     bool
	state    modelState
}

type resultMsg struct {
	err     error
	result  string
	elapsed time.Duration
}

func newInteractiveModel(h *runtime.Hasher, params runtime.Params, source string) *interactiveModel {
	return &interactiveModel{
		hasher: h,
		params: params,
		source: source,
		state:  stateSelectAction,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectAction && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectAction && m.selected < len(actions)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectAction:
				m.prepareInputs()
				m.state = stateInputArgs
				return m, textinput.Blink

			case stateInputArgs:
				if m.busy {
					return m, nil
				}
				m.busy = true
				return m, m.runAction(m.values())

			case stateShowResult:
				m.reset()
			}
			return m, nil

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}
			return m, nil

		case "esc":
			m.reset()
			return m, nil
		}

	case resultMsg:
		m.busy = false
		m.result = msg.result
		m.err = msg.err
		m.elapsed = msg.elapsed
		m.state = stateShowResult
		return m, nil
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) reset() {
	m.state = stateSelectAction
	m.inputs = nil
	m.result = ""
	m.err = nil
}

func (m *interactiveModel) prepareInputs() {
	a := actions[m.selected]
	m.inputs = make([]textinput.Model, len(a.fields))
	for i, field := range a.fields {
		ti := textinput.New()
		ti.Prompt = field + ": "
		ti.Width = 60
		if field == "password" {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) values() []string {
	vals := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		vals[i] = input.Value()
	}
	return vals
}

// runAction runs the selected action off the UI goroutine.
func (m *interactiveModel) runAction(vals []string) tea.Cmd {
	name, h, params := actions[m.selected].name, m.hasher, m.params
	return func() tea.Msg {
		ctx := context.Background()
		start := time.Now()

		var (
			result string
			err    error
		)
		switch name {
		case "hash":
			result, err = h.Hash(ctx, vals[0], params)
		case "verify":
			var ok bool
			if ok, err = h.Verify(ctx, vals[0], strings.TrimSpace(vals[1])); err == nil {
				result = "mismatch"
				if ok {
					result = "ok"
				}
			}
		case "raw":
			var tag []byte
			if tag, err = h.HashRaw(ctx, []byte(vals[0]), []byte(vals[1]), params); err == nil {
				result = fmt.Sprintf("%x", tag)
			}
		}
		return resultMsg{result: result, err: err, elapsed: time.Since(start)}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Argon2"))
	b.WriteString(" ")
	b.WriteString(m.source)
	b.WriteString("\n")
	b.WriteString(paramStyle.Render(formatParams(m.params)))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectAction:
		b.WriteString("Select an action:\n\n")
		for i, a := range actions {
			line := fmt.Sprintf("%-7s %s", a.name, a.help)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter choose • q quit"))

	case stateInputArgs:
		a := actions[m.selected]
		b.WriteString(fmt.Sprintf("%s\n\n", actionStyle.Render(a.name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.busy {
			b.WriteString(helpStyle.Render("working..."))
		} else {
			b.WriteString(helpStyle.Render("tab next field • enter run • esc back"))
		}

	case stateShowResult:
		a := actions[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s (%s):\n\n", actionStyle.Render(a.name), m.elapsed.Round(time.Millisecond)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatParams(p runtime.Params) string {
	return fmt.Sprintf("%s v=%s m=2^%d KiB t=%d p=%d len=%d",
		p.Algorithm, p.Version, p.MemoryCost, p.TimeCost, p.Parallelism, p.OutputLength)
}

func runInteractive(h *runtime.Hasher, params runtime.Params, source string) error {
	p := tea.NewProgram(newInteractiveModel(h, params, source), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
