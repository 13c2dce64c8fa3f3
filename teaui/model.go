// Copyright (c) Microsoft. All rights reserved.

package teaui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/microsoft/agno-client-go/agno"
	"github.com/microsoft/agno-client-go/genui"
)

var (
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	agentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	memberStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141"))
	toolStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pauseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// RenderedUI is the payload of ui:render emissions: a component
// together with its terminal rendering.
type RenderedUI struct {
	Component *agno.UIComponent
	Output    string
}

// Options configures the chat model.
type Options struct {
	// Registry renders generative-UI components. Defaults to
	// genui.NewRegistry().
	Registry *genui.Registry

	// Placeholder is the input placeholder text.
	Placeholder string
}

// Model is a Bubble Tea chat program over one [agno.Client]. It drains
// the bridge's notice channel, keeps the latest run-state snapshot, and
// issues client calls from commands so Update never blocks.
type Model struct {
	ctx      context.Context
	client   *agno.Client
	registry *genui.Registry
	notices  <-chan Notice

	input textinput.Model
	spin  spinner.Model

	state *agno.RunState

	// history holds replayed messages from a loaded session; messages
	// is the live transcript, upserted from per-message emissions and
	// replaced wholesale by state snapshots.
	history  []*agno.ChatMessage
	messages []*agno.ChatMessage
	renders  map[string]string
	errLine  string
	width    int
}

// NewModel builds a chat model reading notices from bridge.
func NewModel(ctx context.Context, client *agno.Client, bridge *Bridge, opts Options) Model {
	registry := opts.Registry
	if registry == nil {
		registry = genui.NewRegistry()
	}
	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	if ti.Placeholder == "" {
		ti.Placeholder = "Message the agent"
	}
	ti.Focus()
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	return Model{
		ctx:      ctx,
		client:   client,
		registry: registry,
		notices:  bridge.Notices(),
		input:    ti,
		spin:     sp,
		renders:  make(map[string]string),
	}
}

// Init starts the spinner, the input cursor, and the notice pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, waitForNotice(m.notices))
}

// errMsg reports a failed client call.
type errMsg struct{ err error }

// Update consumes key presses, bridge notices, and command results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.input.Width = max(typed.Width-4, 20)
		return m, nil

	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.running() {
				return m, m.cancelCmd()
			}
			return m, tea.Quit
		case "enter":
			if m.paused() {
				return m, m.continueCmd()
			}
			content := strings.TrimSpace(m.input.Value())
			if content == "" || m.running() {
				return m, nil
			}
			m.input.Reset()
			m.errLine = ""
			return m, m.sendCmd(content)
		}

	case NoticeMsg:
		m = m.applyNotice(typed.Notice)
		return m, waitForNotice(m.notices)

	case errMsg:
		m.errLine = typed.err.Error()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyNotice folds one client emission into the view state. Content
// deltas arrive as message:update clones, so the transcript repaints
// incrementally; state snapshots replace the live transcript wholesale.
func (m Model) applyNotice(n Notice) Model {
	switch n.Event {
	case agno.StateChange, agno.RunCancelledNotice, agno.RunPausedNotice, agno.RunContinuedNotice:
		if state, ok := n.Payload.(*agno.RunState); ok {
			m.state = state
			m.messages = state.Messages
		}
	case agno.MessageUpdate, agno.MessageComplete,
		agno.MemberStarted, agno.MemberContent, agno.MemberCompleted:
		if msg, ok := n.Payload.(*agno.ChatMessage); ok {
			m.messages = upsertMessage(m.messages, msg)
		}
	case agno.MessageRefreshed:
		if msgs, ok := n.Payload.([]*agno.ChatMessage); ok {
			m.history = msgs
			m.state = nil
			m.messages = nil
			m.renders = make(map[string]string)
		}
	case agno.MessageError:
		if p, ok := n.Payload.(*agno.ErrorPayload); ok && !p.Recoverable {
			m.errLine = p.Err
		}
	case agno.UIUpdate, agno.UIComplete:
		if ui, ok := n.Payload.(*agno.UIComponent); ok {
			m.renderUI(ui)
		}
	}
	return m
}

// upsertMessage replaces the message with the same id, or appends.
func upsertMessage(msgs []*agno.ChatMessage, msg *agno.ChatMessage) []*agno.ChatMessage {
	for i, existing := range msgs {
		if existing.ID == msg.ID {
			out := append([]*agno.ChatMessage(nil), msgs...)
			out[i] = msg
			return out
		}
	}
	return append(msgs, msg)
}

// renderUI renders the component once, caches the output, and announces
// it on ui:render so other subscribers see the finished rendering.
func (m Model) renderUI(ui *agno.UIComponent) {
	key := uiKey(ui)
	if _, done := m.renders[key]; done {
		return
	}
	out, err := m.registry.Render(ui)
	if err != nil {
		out = errStyle.Render(fmt.Sprintf("[%s: %v]", ui.Component, err))
	}
	m.renders[key] = out
	m.client.Events().Emit(agno.UIRender, &RenderedUI{Component: ui, Output: out})
}

func (m Model) sendCmd(content string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.client.SendMessage(m.ctx, content); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// continueCmd resolves every pending tool call with a confirmation
// result. Real frontend tools would execute here.
func (m Model) continueCmd() tea.Cmd {
	state := m.state
	return func() tea.Msg {
		if state == nil {
			return nil
		}
		results := make([]agno.ToolResult, 0, len(state.PendingTools))
		for _, tc := range state.PendingTools {
			results = append(results, agno.ToolResult{
				ToolCallID: tc.ID,
				Result:     json.RawMessage(`{"status":"confirmed"}`),
			})
		}
		if _, err := m.client.ContinueRun(m.ctx, state.RunID, results); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) cancelCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.CancelRun(m.ctx, ""); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) running() bool {
	if m.state == nil {
		return false
	}
	return m.state.Status == agno.RunStatusStreaming
}

func (m Model) paused() bool {
	return m.state != nil && m.state.Status == agno.RunStatusPaused
}

// View renders the transcript, the pause prompt when applicable, the
// error line, and the input.
func (m Model) View() string {
	var b strings.Builder

	for _, msg := range m.history {
		b.WriteString(m.renderMessage(msg) + "\n")
	}
	for _, msg := range m.messages {
		b.WriteString(m.renderMessage(msg) + "\n")
	}

	if m.running() {
		b.WriteString(m.spin.View() + toolStyle.Render("streaming") + "\n")
	}
	if m.paused() {
		b.WriteString(pauseStyle.Render(m.pausePrompt()) + "\n")
	}
	if m.errLine != "" {
		b.WriteString(errStyle.Render("error: "+m.errLine) + "\n")
	}

	b.WriteString("\n" + m.input.View() + "\n")
	b.WriteString(helpStyle.Render("enter send · esc cancel · ctrl+c quit"))
	return b.String()
}

func (m Model) renderMessage(msg *agno.ChatMessage) string {
	var b strings.Builder
	switch {
	case msg.Role == agno.RoleUser:
		b.WriteString(userStyle.Render("you") + " " + msg.Content)
	case msg.MemberID != "":
		b.WriteString(memberStyle.Render(msg.MemberID) + " " + msg.Content)
	default:
		b.WriteString(agentStyle.Render("agent") + " " + msg.Content)
	}
	for _, tc := range msg.ToolCalls {
		fmt.Fprintf(&b, "\n%s", toolStyle.Render(fmt.Sprintf("⚙ %s [%s]", tc.Name, tc.Status)))
	}
	for _, ui := range msg.UI {
		if out, ok := m.renders[uiKey(ui)]; ok {
			b.WriteString("\n" + out)
		}
	}
	return b.String()
}

func (m Model) pausePrompt() string {
	names := make([]string, 0, len(m.state.PendingTools))
	for _, tc := range m.state.PendingTools {
		names = append(names, tc.Name)
	}
	return fmt.Sprintf("paused, waiting on %s. press enter to confirm", strings.Join(names, ", "))
}

func uiKey(ui *agno.UIComponent) string {
	if ui.ID != "" {
		return ui.ID
	}
	return ui.Component + "/" + ui.Title
}

// Run wires a bridge to the client and blocks in the Bubble Tea program
// until the user quits or ctx is cancelled.
func Run(ctx context.Context, client *agno.Client, opts Options) error {
	bridge := NewBridge(client)
	defer bridge.Close()

	model := NewModel(ctx, client, bridge, opts)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
