package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/minjae-ko/docchat/internal/core/export"
	"github.com/minjae-ko/docchat/internal/core/models"
	"github.com/minjae-ko/docchat/internal/core/status"
)

const sidebarWidth = 32

// offlineNotice is appended locally, without contacting the backend, when a
// query is submitted while the connectivity flag is offline.
const offlineNotice = "Cannot reach the backend server. Check that it is running and try again."

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submitQuery()

	case "ctrl+n":
		if _, err := m.store.CreateSession(); err != nil {
			m.notice = "Could not create chat: " + err.Error()
			m.noticeErr = true
			return m, nil
		}
		m.notice = ""
		return m.refreshChat(), nil

	case "ctrl+x":
		active := m.store.Active()
		if active == nil {
			return m, nil
		}
		if err := m.store.DeleteSession(active.ID); err != nil {
			m.notice = "Could not delete chat: " + err.Error()
			m.noticeErr = true
			return m, nil
		}
		m.notice = ""
		return m.refreshChat(), nil

	case "ctrl+k":
		return m.selectAdjacentSession(-1), nil

	case "ctrl+j":
		return m.selectAdjacentSession(1), nil

	case "ctrl+y":
		return m.copyLastAnswer(), nil

	case "ctrl+e":
		return m.exportActiveSession(), nil

	case "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitQuery implements the submission gate: blank input and in-flight
// queries are rejected locally, offline submissions append a synthetic
// assistant notice without touching the network. Every accepted submission
// eventually advances the log by exactly one assistant entry.
func (m Model) submitQuery() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	active := m.store.Active()
	if active == nil {
		created, err := m.store.CreateSession()
		if err != nil {
			m.notice = "Could not create chat: " + err.Error()
			m.noticeErr = true
			return m, nil
		}
		active = created
	}

	if m.pending[active.ID] {
		return m, nil
	}

	if m.health == status.Offline {
		log := append(cloneMessages(active.Messages), models.ErrorMessage(offlineNotice))
		if err := m.store.AppendExchange(active.ID, log); err != nil {
			m.notice = "Could not save chat: " + err.Error()
			m.noticeErr = true
			return m, nil
		}
		return m.refreshChat(), nil
	}

	log := append(cloneMessages(active.Messages), models.UserMessage(text))
	if err := m.store.AppendExchange(active.ID, log); err != nil {
		m.notice = "Could not save chat: " + err.Error()
		m.noticeErr = true
		return m, nil
	}

	m.input.Reset()
	m.notice = ""
	m.pending[active.ID] = true
	m.queryGen[active.ID]++

	m = m.refreshChat()
	return m, sendQuery(m.client, active.ID, m.queryGen[active.ID], text)
}

func (m Model) selectAdjacentSession(delta int) Model {
	sessions := m.store.Sessions()
	if len(sessions) == 0 {
		return m
	}

	index := 0
	for i, s := range sessions {
		if s.ID == m.store.ActiveID() {
			index = i
			break
		}
	}

	index += delta
	if index < 0 {
		index = 0
	}
	if index >= len(sessions) {
		index = len(sessions) - 1
	}

	m.store.SelectSession(sessions[index].ID)
	return m.refreshChat()
}

func (m Model) copyLastAnswer() Model {
	active := m.store.Active()
	if active == nil {
		return m
	}
	for i := len(active.Messages) - 1; i >= 0; i-- {
		msg := active.Messages[i]
		if msg.Role == models.RoleAssistant && !msg.Error {
			if err := clipboard.WriteAll(msg.Content); err != nil {
				m.notice = "Clipboard unavailable: " + err.Error()
				m.noticeErr = true
				return m
			}
			m.notice = "Answer copied to clipboard"
			m.noticeErr = false
			return m
		}
	}
	m.notice = "No answer to copy yet"
	m.noticeErr = true
	return m
}

func (m Model) exportActiveSession() Model {
	active := m.store.Active()
	if active == nil {
		return m
	}

	transcript, err := export.Render(m.cfg.ExportTemplate, active)
	if err != nil {
		m.notice = "Export failed: " + err.Error()
		m.noticeErr = true
		return m
	}

	path := fmt.Sprintf("chat-%s.md", active.ID)
	if err := os.WriteFile(path, []byte(transcript), 0644); err != nil {
		m.notice = "Export failed: " + err.Error()
		m.noticeErr = true
		return m
	}

	m.notice = "Exported " + path
	m.noticeErr = false
	return m
}

func (m Model) resizeChat() Model {
	if m.width == 0 || m.height == 0 {
		return m
	}

	chatWidth := m.width - sidebarWidth - 1
	chatHeight := m.height - 6 // header, input, help, notice

	if !m.chatReady {
		m.chat = viewport.New(chatWidth, chatHeight)
		m.chatReady = true
	} else {
		m.chat.Width = chatWidth
		m.chat.Height = chatHeight
	}
	m.input.Width = m.width - 4

	return m.refreshChat()
}

func (m Model) refreshChat() Model {
	if !m.chatReady {
		return m
	}
	m.chat.SetContent(m.renderTranscript())
	m.chat.GotoBottom()
	return m
}

func (m Model) renderTranscript() string {
	active := m.store.Active()
	if active == nil {
		return "\nNo chat selected. Press ctrl+n to start one."
	}
	if len(active.Messages) == 0 {
		if m.health == status.Offline {
			return "\n" + errorBubbleStyle.Render("Backend is unreachable.") +
				"\nStart the backend server, then ask away."
		}
		return "\nAsk a question to get answers grounded in your uploaded documents."
	}

	wrap := lipgloss.NewStyle().Width(m.chat.Width - 2)

	var b strings.Builder
	for _, msg := range active.Messages {
		switch msg.Role {
		case models.RoleUser:
			b.WriteString(userStyle.Render("You"))
		default:
			b.WriteString(assistantStyle.Render("Assistant"))
		}
		b.WriteString("\n")

		content := msg.Content
		if msg.Error {
			b.WriteString(wrap.Render(errorBubbleStyle.Render(content)))
		} else {
			b.WriteString(wrap.Render(content))
		}
		b.WriteString("\n")

		if msg.HasAnswer != nil && !*msg.HasAnswer && !msg.Error {
			b.WriteString(noAnswerStyle.Render("(no grounded answer found in the documents)"))
			b.WriteString("\n")
		}

		if len(msg.Sources) > 0 {
			b.WriteString(sourceStyle.Render("Sources:"))
			b.WriteString("\n")
			for _, src := range msg.Sources {
				line := fmt.Sprintf("  - %s, page %d", src.Filename, src.Page)
				if src.Type == "table" {
					line += " [table]"
				}
				b.WriteString(sourceStyle.Render(line))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	if active := m.store.Active(); active != nil && m.pending[active.ID] {
		b.WriteString(assistantStyle.Render("Assistant"))
		b.WriteString("\nthinking...\n")
	}

	return b.String()
}

func (m Model) viewSidebar() string {
	var b strings.Builder
	b.WriteString(sidebarTitleStyle.Render("Chats"))
	b.WriteString("\n\n")

	sessions := m.store.Sessions()
	if len(sessions) == 0 {
		b.WriteString(sessionMetaStyle.Render("No chats yet"))
		b.WriteString("\n")
		b.WriteString(sessionMetaStyle.Render("ctrl+n to start one"))
		return lipgloss.NewStyle().Width(sidebarWidth).Render(b.String())
	}

	for _, s := range sessions {
		title := models.Truncate(s.Title, sidebarWidth-6)
		if s.ID == m.store.ActiveID() {
			b.WriteString(selectedSessionStyle.Render("> " + title))
		} else {
			b.WriteString(sessionStyle.Render(title))
		}
		b.WriteString("\n")

		preview := "empty"
		if s.LastMessage != nil {
			preview = models.Truncate(*s.LastMessage, sidebarWidth-6)
		}
		b.WriteString(sessionMetaStyle.Render(preview))
		b.WriteString("\n")
		b.WriteString(sessionMetaStyle.Render(humanize.Time(s.UpdatedAt)))
		b.WriteString("\n\n")
	}

	return lipgloss.NewStyle().Width(sidebarWidth).Render(b.String())
}

func (m Model) viewHeader() string {
	chatTab := tabStyle.Render("Chat")
	filesTab := tabStyle.Render("Files")
	if m.tab == tabChat {
		chatTab = activeTabStyle.Render("Chat")
	} else {
		filesTab = activeTabStyle.Render("Files")
	}

	var indicator string
	switch m.health {
	case status.Online:
		indicator = onlineStyle.Render("● online")
	case status.Offline:
		indicator = offlineStyle.Render("● offline")
	default:
		indicator = checkingStyle.Render("● checking...")
	}

	left := chatTab + filesTab
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(indicator)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + indicator
}

func (m Model) viewChat() string {
	if !m.chatReady {
		return "Loading..."
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewSidebar(), " ", m.chat.View())

	prompt := "> " + m.input.View()
	if active := m.store.Active(); active != nil && m.pending[active.ID] {
		prompt = "> " + helpStyle.Render("waiting for answer...")
	}

	notice := ""
	if m.notice != "" {
		if m.noticeErr {
			notice = bannerErrStyle.Render(m.notice)
		} else {
			notice = bannerOKStyle.Render(m.notice)
		}
	}

	help := helpStyle.Render("enter send • ctrl+n new • ctrl+x delete • ctrl+j/k switch chat • ctrl+y copy • ctrl+e export • tab files • ctrl+c quit")

	return body + "\n" + prompt + "\n" + notice + "\n" + help
}
