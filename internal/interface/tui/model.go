// Package tui is the interactive terminal client: a chat tab backed by the
// session store and a files tab over the backend registry, with a polled
// connectivity flag gating both.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/minjae-ko/docchat/internal/core/api"
	"github.com/minjae-ko/docchat/internal/core/config"
	"github.com/minjae-ko/docchat/internal/core/files"
	"github.com/minjae-ko/docchat/internal/core/models"
	"github.com/minjae-ko/docchat/internal/core/status"
	"github.com/minjae-ko/docchat/internal/core/store"
)

// timeNow is stubbed in tests.
var timeNow = time.Now

type tabID int

const (
	tabChat tabID = iota
	tabFiles
)

// filesMode tracks which prompt, if any, owns the keyboard on the files tab.
type filesMode int

const (
	filesBrowse filesMode = iota
	filesUploadPrompt
	filesDatePrompt
)

type Model struct {
	cfg    *config.Config
	client *api.Client
	store  *store.Store

	tab    tabID
	health status.State

	width  int
	height int

	// chat
	input     textinput.Model
	chat      viewport.Model
	chatReady bool
	pending   map[string]bool
	queryGen  map[string]int
	notice    string
	noticeErr bool

	// files
	files      []models.FileRecord
	fileStats  *models.FileStatistics
	filter     files.Filter
	fileCursor int
	mode       filesMode
	pathInput  textinput.Model
	dateInput  textinput.Model
	uploading  bool
	banner     string
	bannerErr  bool
}

func New(cfg *config.Config, client *api.Client, st *store.Store) Model {
	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.CharLimit = 2000
	input.Focus()

	pathInput := textinput.New()
	pathInput.Placeholder = "path to document (.pdf .docx .txt .md)"
	pathInput.CharLimit = 500

	dateInput := textinput.New()
	dateInput.Placeholder = "date filter (250830, 2025-08-30, yesterday...)"
	dateInput.CharLimit = 50

	return Model{
		cfg:       cfg,
		client:    client,
		store:     st,
		tab:       tabChat,
		health:    status.Checking,
		input:     input,
		pathInput: pathInput,
		dateInput: dateInput,
		pending:   make(map[string]bool),
		queryGen:  make(map[string]int),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		checkHealth(m.client),
		loadFiles(m.client),
		textinput.Blink,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.resizeChat()
		return m, nil

	case tickMsg:
		return m, checkHealth(m.client)

	case healthMsg:
		m.health = msg.state
		return m, pollTick(m.cfg.PollInterval)

	case filesLoadedMsg:
		m.files = msg.files
		m.fileStats = msg.stats
		if m.fileCursor >= len(m.visibleFiles()) {
			m.fileCursor = 0
		}
		return m, nil

	case filesErrMsg:
		m.banner = "Failed to load file list: " + msg.err.Error()
		m.bannerErr = true
		return m, nil

	case uploadDoneMsg:
		m.uploading = false
		m.banner = uploadBanner(msg.result)
		m.bannerErr = false
		return m, loadFiles(m.client)

	case uploadErrMsg:
		// Backend {error} strings surface verbatim; no refetch on failure.
		m.uploading = false
		m.banner = msg.err.Error()
		m.bannerErr = true
		return m, nil

	case deleteDoneMsg:
		m.banner = "Deleted " + msg.filename
		m.bannerErr = false
		return m, loadFiles(m.client)

	case deleteErrMsg:
		m.banner = msg.err.Error()
		m.bannerErr = true
		return m, nil

	case downloadDoneMsg:
		m.banner = "Saved " + msg.path
		m.bannerErr = false
		return m, nil

	case downloadErrMsg:
		m.banner = msg.err.Error()
		m.bannerErr = true
		return m, nil

	case queryDoneMsg:
		return m.applyQueryResult(msg.sessionID, msg.gen, answerMessage(msg.result)), nil

	case queryErrMsg:
		return m.applyQueryResult(msg.sessionID, msg.gen, models.ErrorMessage("Query failed: "+msg.err.Error())), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "tab":
			if m.tab == tabChat {
				m.tab = tabFiles
			} else {
				m.tab = tabChat
			}
			return m, nil
		}

		switch m.tab {
		case tabChat:
			return m.updateChat(msg)
		case tabFiles:
			return m.updateFiles(msg)
		}
	}

	return m, nil
}

// applyQueryResult appends the assistant entry to the session that issued
// the query. A session deleted while the request was in flight discards the
// response; a stale generation (superseded submission) is dropped too.
func (m Model) applyQueryResult(sessionID string, gen int, reply models.Message) Model {
	delete(m.pending, sessionID)

	if m.queryGen[sessionID] != gen {
		return m
	}
	owner := m.findSession(sessionID)
	if owner == nil {
		return m
	}

	log := append(cloneMessages(owner.Messages), reply)
	if err := m.store.AppendExchange(sessionID, log); err != nil {
		m.notice = "Could not save chat: " + err.Error()
		m.noticeErr = true
		return m
	}
	return m.refreshChat()
}

func (m Model) findSession(id string) *models.Session {
	for _, s := range m.store.Sessions() {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (m Model) visibleFiles() []models.FileRecord {
	return m.filter.Apply(m.files)
}

func (m Model) View() string {
	header := m.viewHeader()

	var body string
	switch m.tab {
	case tabChat:
		body = m.viewChat()
	case tabFiles:
		body = m.viewFiles()
	}

	return header + "\n" + body
}

func cloneMessages(msgs []models.Message) []models.Message {
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out
}

func answerMessage(result *api.QueryResult) models.Message {
	hasAnswer := result.HasAnswer
	return models.Message{
		Role:      models.RoleAssistant,
		Content:   result.Answer,
		Sources:   result.Sources,
		HasAnswer: &hasAnswer,
	}
}
