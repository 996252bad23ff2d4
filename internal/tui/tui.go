// Package tui implements the interactive docdash dashboard.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/docdash/docdash/internal/api"
	"github.com/docdash/docdash/internal/chat"
	"github.com/docdash/docdash/internal/config"
	"github.com/docdash/docdash/internal/dashboard"
	"github.com/docdash/docdash/internal/store"
	"github.com/docdash/docdash/pkg/models"
)

const (
	askPlaceholder   = "Ask a question about your documents..."
	indexPlaceholder = "Path of a file to index..."
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("63"))
	tabStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	activeTab   = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true).Padding(0, 1)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	asstStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	refStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
)

type model struct {
	cfg      *config.Config
	storage  chat.Storage
	client   *api.Client
	dash     *dashboard.Orchestrator
	registry *chat.Registry
	session  *chat.Session

	input      textinput.Model
	spin       spinner.Model
	transcript viewport.Model
	renderer   *glamour.TermRenderer

	// One cancel func per conversation with a query in flight. Switching
	// away cancels the request; a completion for a non-active conversation
	// is dropped.
	cancels map[string]context.CancelFunc

	convCursor int
	status     string
	width      int
	height     int
	ready      bool
}

func initialModel(cfg *config.Config, storage chat.Storage, client *api.Client, dash *dashboard.Orchestrator, registry *chat.Registry, session *chat.Session) model {
	input := textinput.New()
	input.Placeholder = askPlaceholder
	input.Prompt = "> "
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	return model{
		cfg:      cfg,
		storage:  storage,
		client:   client,
		dash:     dash,
		registry: registry,
		session:  session,
		input:    input,
		spin:     spin,
		cancels:  make(map[string]context.CancelFunc),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.refresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.busy() {
			cmds = append(cmds, cmd)
			m.refresh()
		}

	case QueryCompletedMsg:
		delete(m.cancels, msg.ConversationID)
		if msg.ConversationID != m.session.ConversationID() {
			// Stale completion for a switched-away conversation.
			return m, nil
		}
		if msg.Err != nil {
			m.session.Fail(msg.MessageID, msg.Err)
			m.status = "Query failed: " + msg.Err.Error()
			cmds = append(cmds, clearStatusCmd())
		} else {
			m.session.Resolve(msg.MessageID, msg.Response)
		}
		m.refresh()

	case IndexCompletedMsg:
		m.session.SetReady(m.dash.Ready())
		if msg.Err != nil {
			m.status = "Indexing failed: " + msg.Err.Error()
		} else if last := m.dash.State().LastMessage; last != "" {
			m.status = last
		} else {
			m.status = "Documents indexed."
		}
		cmds = append(cmds, clearStatusCmd())
		m.refresh()

	case StatusExpiredMsg:
		m.status = ""

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.teardown()
			return m, tea.Quit

		case "tab":
			m.toggleTab()
			m.refresh()

		case "ctrl+n":
			m.createConversation()
			m.refresh()

		case "ctrl+r":
			m.toggleLatestReferences()
			m.refresh()

		case "up", "down":
			if m.dash.State().ActiveTab == dashboard.TabConversations {
				m.moveConversationCursor(msg.String() == "down")
				m.refresh()
			} else {
				var cmd tea.Cmd
				m.transcript, cmd = m.transcript.Update(msg)
				cmds = append(cmds, cmd)
			}

		case "enter":
			cmds = append(cmds, m.submit()...)
			m.refresh()

		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit handles enter on the current tab: send a question, or index a file.
func (m *model) submit() []tea.Cmd {
	if m.dash.State().ActiveTab == dashboard.TabDocuments {
		return m.submitIndex()
	}
	return m.submitQuestion()
}

func (m *model) submitQuestion() []tea.Cmd {
	question := m.input.Value()
	m.session.SetReady(m.dash.Ready())

	messageID, ok := m.session.Begin(question)
	if !ok {
		var cmds []tea.Cmd
		switch {
		case strings.TrimSpace(question) == "":
			// Nothing to report; an empty question is silently dropped.
		case !m.dash.Ready():
			m.status = "Indexing in progress, try again shortly."
			cmds = append(cmds, clearStatusCmd())
		case m.session.InFlight():
			m.status = "Still waiting for the previous answer."
			cmds = append(cmds, clearStatusCmd())
		}
		return cmds
	}

	m.input.Reset()
	conversationID := m.session.ConversationID()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancels[conversationID] = cancel

	return []tea.Cmd{
		queryCmd(ctx, m.client, conversationID, messageID, strings.TrimSpace(question)),
		m.spin.Tick,
	}
}

func (m *model) submitIndex() []tea.Cmd {
	path := strings.TrimSpace(m.input.Value())
	if path == "" {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		m.status = "Cannot read file: " + err.Error()
		return []tea.Cmd{clearStatusCmd()}
	}

	m.input.Reset()
	m.session.SetReady(false)
	files := []api.File{{Name: filepath.Base(path), Content: content}}

	return []tea.Cmd{
		indexCmd(context.Background(), m.dash, files),
		m.spin.Tick,
	}
}

func (m *model) toggleTab() {
	if m.dash.State().ActiveTab == dashboard.TabConversations {
		m.dash.SetTab(dashboard.TabDocuments)
		m.input.Placeholder = indexPlaceholder
	} else {
		m.dash.SetTab(dashboard.TabConversations)
		m.input.Placeholder = askPlaceholder
	}
}

func (m *model) createConversation() {
	conv := m.registry.Create()
	m.activateConversation(conv.ID)
	m.convCursor = 0
}

func (m *model) moveConversationCursor(down bool) {
	conversations := m.registry.List()
	if down && m.convCursor < len(conversations)-1 {
		m.convCursor++
	} else if !down && m.convCursor > 0 {
		m.convCursor--
	} else {
		return
	}
	m.activateConversation(conversations[m.convCursor].ID)
}

// activateConversation switches the active chat session: the outgoing
// session's in-flight query is cancelled, its transcript flushed, and the new
// conversation's transcript loaded.
func (m *model) activateConversation(id string) {
	current := m.session.ConversationID()
	if id == current {
		return
	}
	if cancel, ok := m.cancels[current]; ok {
		cancel()
		delete(m.cancels, current)
	}
	m.session.Flush()
	m.registry.Select(id)
	m.session = chat.NewSession(m.storage, m.client, id)
	m.session.SetReady(m.dash.Ready())
}

func (m *model) toggleLatestReferences() {
	messages := m.session.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleAssistant && len(messages[i].References) > 0 {
			m.session.ToggleReferences(messages[i].ID)
			return
		}
	}
}

func (m *model) teardown() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.session.Flush()
}

func (m *model) busy() bool {
	return m.session.InFlight() || m.dash.State().Indexing
}

func (m *model) layout() {
	bodyHeight := m.height - 6
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.transcript = viewport.New(m.transcriptWidth(), bodyHeight)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.transcriptWidth()-2),
	)
	if err == nil {
		m.renderer = renderer
	}
}

func (m *model) listWidth() int {
	w := m.width / 3
	if w < 24 {
		w = 24
	}
	return w
}

func (m *model) transcriptWidth() int {
	w := m.width - m.listWidth() - 1
	if w < 20 {
		w = 20
	}
	return w
}

// refresh re-renders the content of the main panel.
func (m *model) refresh() {
	if !m.ready {
		return
	}
	if m.dash.State().ActiveTab == dashboard.TabDocuments {
		m.transcript.SetContent(m.renderDocuments())
		return
	}
	m.transcript.SetContent(m.renderTranscript())
	m.transcript.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := m.renderHeader()
	body := m.renderBody()
	input := m.input.View()
	footer := m.renderFooter()

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, body, input, footer)
}

func (m model) renderHeader() string {
	title := titleStyle.Render(" docdash ")

	st := m.dash.State()
	conversationsTab := tabStyle.Render("Conversations")
	documentsTab := tabStyle.Render("Documents")
	if st.ActiveTab == dashboard.TabConversations {
		conversationsTab = activeTab.Render("Conversations")
	} else {
		documentsTab = activeTab.Render("Documents")
	}

	right := ""
	if st.Indexing {
		right = m.spin.View() + " indexing"
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", conversationsTab, documentsTab, " ", dimStyle.Render(right))
}

func (m model) renderBody() string {
	if m.dash.State().ActiveTab == dashboard.TabDocuments {
		return m.transcript.View()
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		lipgloss.NewStyle().Width(m.listWidth()).Render(m.renderConversations()),
		dimStyle.Render("│"),
		m.transcript.View(),
	)
}

func (m model) renderConversations() string {
	var s strings.Builder
	active, _ := m.registry.Active()

	for _, conv := range m.registry.List() {
		cursor := "  "
		style := lipgloss.NewStyle()
		if conv.ID == active.ID {
			cursor = "> "
			style = cursorStyle
		}

		s.WriteString(style.Render(cursor+conv.Title) + "\n")
		s.WriteString(dimStyle.Render(fmt.Sprintf("  %s · %s", conv.Timestamp, conv.Model)) + "\n")
	}

	return s.String()
}

func (m model) renderTranscript() string {
	messages := m.session.Messages()
	if len(messages) == 0 {
		return dimStyle.Render("No messages yet. Ask something below.")
	}

	var s strings.Builder
	for i, msg := range messages {
		if i > 0 {
			s.WriteString("\n")
		}

		label := asstStyle
		if msg.Role == models.RoleUser {
			label = userStyle
		}
		s.WriteString(label.Render(msg.Role.DisplayName()) + "\n")

		switch msg.Status {
		case models.StatusLoading:
			s.WriteString(m.spin.View() + " Thinking...\n")
		case models.StatusError:
			s.WriteString(errStyle.Render(msg.Content) + "\n")
		default:
			s.WriteString(m.renderContent(msg) + "\n")
		}

		if len(msg.References) > 0 {
			if m.session.ReferencesVisible(msg.ID) {
				for _, ref := range msg.References {
					s.WriteString(refStyle.Render("  • ["+ref+"]") + "\n")
				}
			} else {
				s.WriteString(refStyle.Render(fmt.Sprintf("  %d reference(s), ctrl+r to expand", len(msg.References))) + "\n")
			}
		}
	}

	return s.String()
}

func (m model) renderContent(msg models.ChatMessage) string {
	if msg.Role == models.RoleAssistant && m.renderer != nil {
		if rendered, err := m.renderer.Render(msg.Content); err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	return msg.Content
}

func (m model) renderDocuments() string {
	st := m.dash.State()
	if len(st.Documents) == 0 {
		return dimStyle.Render("No documents indexed yet. Enter a file path below to index one.")
	}

	var s strings.Builder
	for _, doc := range st.Documents {
		s.WriteString(fmt.Sprintf("%s  %s\n", cursorStyle.Render(doc.Name), dimStyle.Render(formatSize(doc.Size))))
		s.WriteString(dimStyle.Render("  indexed "+doc.IndexedAt) + "\n\n")
	}

	s.WriteString(dimStyle.Render(fmt.Sprintf("%d document(s)", len(st.Documents))))
	if st.LastIndexedAt != "" {
		s.WriteString(dimStyle.Render(" · last indexed " + st.LastIndexedAt))
	}
	if st.LastMessage != "" {
		s.WriteString("\n" + dimStyle.Render(st.LastMessage))
	}

	return s.String()
}

func (m model) renderFooter() string {
	info := "tab: switch panel • ctrl+n: new chat • ctrl+r: references • esc: quit"
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return dimStyle.Render(info)
}

// formatSize renders a byte count for display.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(cfg *config.Config, st *store.Store, client *api.Client) error {
	registry := chat.NewRegistry(st, cfg.Model)
	registry.LoadOrInit()

	active, ok := registry.Active()
	if !ok {
		return fmt.Errorf("no active conversation")
	}

	dash := dashboard.New(st, client)
	session := chat.NewSession(st, client, active.ID)

	p := tea.NewProgram(
		initialModel(cfg, st, client, dash, registry, session),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
