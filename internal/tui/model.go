// Package tui is a terminal chat interface over the answer service,
// used for local sessions without the HTTP server.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docsbot/internal/domain"
)

// AnswerPort is the TUI-facing subset of the answer service.
type AnswerPort interface {
	Answer(ctx context.Context, prompt string) (domain.Stream, error)
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	service    AnswerPort
	input      textinput.Model
	viewport   viewport.Model
	status     string
	lastPrompt string
	lastAnswer string
	ready      bool
}

// New creates a new chat model instance.
func New(service AnswerPort, documents int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the docs and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		status:   fmt.Sprintf("Indexed %d documents. Ask away.", documents),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := promptBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + prompt box + spacer
		vh := msg.Height - reserved - ah
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderConversation())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			prompt := strings.TrimSpace(m.input.Value())
			if prompt != "" {
				m.lastPrompt = prompt
				answer, err := m.ask(prompt)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.lastAnswer = ""
				} else {
					m.status = "Answered."
					m.lastAnswer = answer
				}
				m.input.SetValue("")
				m.viewport.SetContent(m.renderConversation())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs the full retrieval-answer path and drains the token stream.
func (m Model) ask(prompt string) (string, error) {
	stream, err := m.service.Answer(context.Background(), prompt)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var b strings.Builder
	for {
		token, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		b.WriteString(token)
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("docsbot")
	answer := answerBoxStyle.Render(m.viewport.View())
	input := promptBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderConversation() string {
	if m.lastPrompt == "" {
		return "No questions yet."
	}
	q := promptStyle.Render("You: " + m.lastPrompt)
	if m.lastAnswer == "" {
		return q
	}
	return q + "\n\n" + m.lastAnswer
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
