package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/mattn/go-isatty"
)

// ErrNoDecision is returned when the prompt closes without an answer.
var ErrNoDecision = errors.New("prompt closed without a decision")

// Prompt is the bubbletea model of a single checkpoint.
//
// It offers Stop, Continue and Skip with Continue preselected; closing it any other way is a Stop.
type Prompt struct {
	checkpoint models.Checkpoint
	choices    []models.Decision
	cursor     int
	decision   models.Decision
	done       bool
	keys       keyMap
	help       help.Model
}

var _ tea.Model = (*Prompt)(nil)

// NewPrompt creates a Prompt for cp.
func NewPrompt(cp models.Checkpoint) *Prompt {
	choices := cp.Choices()
	cursor := 0
	for i, c := range choices {
		if c == models.DecisionContinue {
			cursor = i
		}
	}
	return &Prompt{
		checkpoint: cp,
		choices:    choices,
		cursor:     cursor,
		keys:       newKeyMap(),
		help:       help.New(),
	}
}

// Decision returns the operator's answer, and false while the prompt is still open.
func (m *Prompt) Decision() (models.Decision, bool) {
	return m.decision, m.done
}

// Selected returns the highlighted choice.
func (m *Prompt) Selected() models.Decision {
	return m.choices[m.cursor]
}

func (m *Prompt) Init() tea.Cmd {
	return nil
}

func (m *Prompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.stop):
			return m.choose(models.DecisionStop)
		case key.Matches(msg, m.keys.cont):
			return m.choose(models.DecisionContinue)
		case key.Matches(msg, m.keys.skip):
			return m.choose(models.DecisionSkip)
		case key.Matches(msg, m.keys.choose):
			return m.choose(m.Selected())
		case key.Matches(msg, m.keys.left):
			m.cursor = (m.cursor + len(m.choices) - 1) % len(m.choices)
		case key.Matches(msg, m.keys.right):
			m.cursor = (m.cursor + 1) % len(m.choices)
		case key.Matches(msg, m.keys.showHelp):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

func (m *Prompt) choose(d models.Decision) (tea.Model, tea.Cmd) {
	m.decision = d
	m.done = true
	return m, tea.Quit
}

func (m *Prompt) View() string {
	if m.done {
		return ""
	}

	cp := m.checkpoint
	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Checkpoint %d/%d", cp.Index, cp.Total)))
	b.WriteString("\n")
	b.WriteString(cp.Message)
	b.WriteString("\n\n")

	buttons := make([]string, 0, len(m.choices))
	for i, c := range m.choices {
		if i == m.cursor {
			buttons = append(buttons, styles.selected.Render(c.String()))
		} else {
			buttons = append(buttons, styles.button.Render(c.String()))
		}
	}
	b.WriteString(strings.Join(buttons, " "))
	b.WriteString("\n")
	if m.Selected() == models.DecisionStop {
		b.WriteString(styles.warn.Render("Stop ends the run; plays already added are kept."))
	} else {
		b.WriteString(styles.help.Render(hint(cp.Kind)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Decider answers checkpoints.
type Decider interface {
	Decide(ctx context.Context, cp models.Checkpoint) (models.Decision, error)
}

func hint(kind models.CheckpointKind) string {
	if kind == models.CheckpointAfterRecord {
		return "Continue moves on to the next track."
	}
	return "Plays for this track run without further prompts."
}

// PromptDecider asks the operator through an interactive [Prompt] at every checkpoint.
type PromptDecider struct {
	in  io.Reader
	out io.Writer
}

// NewPromptDecider creates a PromptDecider reading keys from in and drawing to out.
func NewPromptDecider(in io.Reader, out io.Writer) *PromptDecider {
	return &PromptDecider{in: in, out: out}
}

// Decide runs the prompt until the operator answers. Any failure is reported as Stop with an error.
func (d *PromptDecider) Decide(ctx context.Context, cp models.Checkpoint) (models.Decision, error) {
	p := tea.NewProgram(NewPrompt(cp), tea.WithContext(ctx), tea.WithInput(d.in), tea.WithOutput(d.out))

	final, err := p.Run()
	if err != nil {
		return models.DecisionStop, fmt.Errorf("prompt failed: %w", err)
	}

	prompt, ok := final.(*Prompt)
	if !ok {
		return models.DecisionStop, ErrNoDecision
	}
	decision, done := prompt.Decision()
	if !done {
		return models.DecisionStop, ErrNoDecision
	}
	return decision, nil
}

// AutoDecider answers every checkpoint with the same decision, for unattended runs.
type AutoDecider struct {
	decision models.Decision
	logger   *log.Logger
}

// NewAutoDecider creates an AutoDecider that always answers d.
func NewAutoDecider(d models.Decision, logger *log.Logger) *AutoDecider {
	return &AutoDecider{decision: d, logger: logger}
}

func (d *AutoDecider) Decide(ctx context.Context, cp models.Checkpoint) (models.Decision, error) {
	if d.logger != nil {
		d.logger.Debug("auto-answering checkpoint", "kind", cp.Kind, "record", cp.Index, "decision", d.decision)
	}
	return d.decision, nil
}

// ErrNoTerminal is returned by the decider chosen when nobody can answer a prompt.
var ErrNoTerminal = errors.New("stdin is not a terminal; pass --yes to run unattended")

// NewDecider picks how checkpoints are answered: automatically with Continue when auto is set,
// interactively when in is a terminal, and otherwise by always stopping.
func NewDecider(in *os.File, out io.Writer, auto bool, logger *log.Logger) Decider {
	switch {
	case auto:
		return NewAutoDecider(models.DecisionContinue, logger)
	case in != nil && (isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd())):
		return NewPromptDecider(in, out)
	default:
		return failSafe{}
	}
}

// failSafe stops at the first checkpoint.
type failSafe struct{}

func (failSafe) Decide(context.Context, models.Checkpoint) (models.Decision, error) {
	return models.DecisionStop, ErrNoTerminal
}
