package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Answerer is the TUI-facing subset of the retrieval pipeline.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

type turn struct {
	question string
	answer   string
}

// answerMsg carries a completed generation back into the update loop.
type answerMsg struct {
	question string
	answer   string
	err      error
}

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	answerer Answerer
	input    textinput.Model
	viewport viewport.Model
	turns    []turn
	status   string
	ready    bool
	thinking bool
}

// New creates a chat model ready to run in a Bubble Tea program.
func New(answerer Answerer, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{answerer: answerer, input: ti, viewport: vp, status: summary}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case answerMsg:
		m.thinking = false
		answer := msg.answer
		if msg.err != nil {
			// The pipeline's answer string already explains the failure.
			m.status = "Last request failed."
		} else {
			m.status = "Ready."
		}
		m.turns = append(m.turns, turn{question: msg.question, answer: answer})
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.thinking {
				m.input.SetValue("")
				m.thinking = true
				m.status = "Thinking..."
				return m, m.ask(q)
			}
		case "up":
			m.viewport.LineUp(3)
			return m, nil
		case "down":
			m.viewport.LineDown(3)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	answerer := m.answerer
	return func() tea.Msg {
		answer, err := answerer.Answer(context.Background(), question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("RAG Chat")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "No questions yet. Ask something about your documents."
	}
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: "+t.question) + "\n")
		b.WriteString(t.answer)
	}
	return b.String()
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
