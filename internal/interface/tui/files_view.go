package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/minjae-ko/docchat/internal/core/api"
	"github.com/minjae-ko/docchat/internal/core/files"
	"github.com/minjae-ko/docchat/internal/core/status"
)

func uploadBanner(result *api.UploadResult) string {
	return fmt.Sprintf("Indexed %s (%d chunks)", result.Filename, result.ChunksCount)
}

func (m Model) updateFiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case filesUploadPrompt:
		return m.updateUploadPrompt(msg)
	case filesDatePrompt:
		return m.updateDatePrompt(msg)
	}

	visible := m.visibleFiles()

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		if m.fileCursor > 0 {
			m.fileCursor--
		}
		return m, nil

	case "down", "j":
		if m.fileCursor < len(visible)-1 {
			m.fileCursor++
		}
		return m, nil

	case "r":
		m.banner = ""
		return m, loadFiles(m.client)

	case "u":
		if m.health == status.Offline {
			m.banner = "Backend is unreachable; uploads need a connection"
			m.bannerErr = true
			return m, nil
		}
		m.mode = filesUploadPrompt
		m.pathInput.Reset()
		m.pathInput.Focus()
		return m, nil

	case "d":
		if m.fileCursor >= len(visible) {
			return m, nil
		}
		m.banner = ""
		return m, deleteFile(m.client, visible[m.fileCursor])

	case "o":
		if m.fileCursor >= len(visible) {
			return m, nil
		}
		file := visible[m.fileCursor]
		return m, downloadFile(m.client, file, filepath.Base(file.Filename))

	case "t":
		m.filter.DocType = nextDocType(files.DocTypes(m.files), m.filter.DocType)
		m.fileCursor = 0
		return m, nil

	case "f":
		m.mode = filesDatePrompt
		m.dateInput.Reset()
		m.dateInput.Focus()
		return m, nil

	case "c":
		m.filter = files.Filter{}
		m.fileCursor = 0
		return m, nil
	}

	return m, nil
}

func (m Model) updateUploadPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = filesBrowse
		m.pathInput.Blur()
		return m, nil

	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		m.mode = filesBrowse
		m.pathInput.Blur()
		if path == "" {
			return m, nil
		}
		m.uploading = true
		m.banner = "Uploading " + filepath.Base(path) + "..."
		m.bannerErr = false
		return m, uploadFile(m.client, path)
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m Model) updateDatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = filesBrowse
		m.dateInput.Blur()
		return m, nil

	case "enter":
		input := strings.TrimSpace(m.dateInput.Value())
		m.mode = filesBrowse
		m.dateInput.Blur()
		if input == "" {
			m.filter.Date = ""
			m.fileCursor = 0
			return m, nil
		}
		bucket, err := files.ParseDateBucket(input, timeNow())
		if err != nil {
			m.banner = err.Error()
			m.bannerErr = true
			return m, nil
		}
		m.filter.Date = bucket
		m.fileCursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

// nextDocType cycles no-filter -> each known type -> no-filter.
func nextDocType(types []string, current string) string {
	if len(types) == 0 {
		return ""
	}
	if current == "" {
		return types[0]
	}
	for i, t := range types {
		if t == current {
			if i+1 < len(types) {
				return types[i+1]
			}
			return ""
		}
	}
	return ""
}

func (m Model) viewFiles() string {
	var b strings.Builder

	switch m.mode {
	case filesUploadPrompt:
		b.WriteString("Upload: " + m.pathInput.View() + "\n")
	case filesDatePrompt:
		b.WriteString("Date filter: " + m.dateInput.View() + "\n")
	default:
		b.WriteString(m.viewFilterLine() + "\n")
	}

	if m.banner != "" {
		if m.bannerErr {
			b.WriteString(bannerErrStyle.Render(m.banner))
		} else {
			b.WriteString(bannerOKStyle.Render(m.banner))
		}
	}
	b.WriteString("\n\n")

	visible := m.visibleFiles()
	if len(visible) == 0 {
		if len(m.files) == 0 {
			b.WriteString("No documents uploaded yet. Press u to upload one.\n")
		} else {
			b.WriteString("No documents match the current filters. Press c to clear them.\n")
		}
	} else {
		b.WriteString(fmt.Sprintf("%-12s %-14s %-40s %10s\n", "DATE", "TYPE", "TITLE", "SIZE"))
		for i, f := range visible {
			date := "-"
			if f.Date != "" {
				date = files.FormatDate(f.Date)
			}
			docType := f.DocType
			if docType == "" {
				docType = "-"
			}
			line := fmt.Sprintf("%-12s %-14s %-40s %10s",
				date, docType, truncateCell(f.DisplayTitle(), 40), humanize.Bytes(uint64(f.Size)))
			if i == m.fileCursor {
				b.WriteString(selectedFileStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	if m.fileStats != nil {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d documents indexed", m.fileStats.TotalCount)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("u upload • d delete • o download • t type filter • f date filter • c clear • r refresh • tab chat • q quit"))
	return b.String()
}

func (m Model) viewFilterLine() string {
	var parts []string
	if m.filter.DocType != "" {
		parts = append(parts, "type="+m.filter.DocType)
	}
	if m.filter.Date != "" {
		parts = append(parts, "date="+files.FormatDate(m.filter.Date))
	}
	if len(parts) == 0 {
		return helpStyle.Render("No filters")
	}
	return "Filters: " + strings.Join(parts, " AND ")
}

func truncateCell(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
