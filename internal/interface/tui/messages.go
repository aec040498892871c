package tui

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/minjae-ko/docchat/internal/core/api"
	"github.com/minjae-ko/docchat/internal/core/models"
	"github.com/minjae-ko/docchat/internal/core/status"
)

type tickMsg time.Time

type healthMsg struct {
	state status.State
}

type filesLoadedMsg struct {
	files []models.FileRecord
	stats *models.FileStatistics
}

type filesErrMsg struct {
	err error
}

type uploadDoneMsg struct {
	result *api.UploadResult
}

type uploadErrMsg struct {
	err error
}

type deleteDoneMsg struct {
	filename string
}

type deleteErrMsg struct {
	err error
}

type downloadDoneMsg struct {
	path string
}

type downloadErrMsg struct {
	err error
}

// queryDoneMsg and queryErrMsg carry the owning session id and generation so
// a response arriving after its session was deleted can be discarded instead
// of being applied to whatever is active now.
type queryDoneMsg struct {
	sessionID string
	gen       int
	result    *api.QueryResult
}

type queryErrMsg struct {
	sessionID string
	gen       int
	err       error
}

func pollTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func checkHealth(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		h, err := client.Health(context.Background())
		return healthMsg{state: status.Classify(h, err)}
	}
}

func loadFiles(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		files, stats, err := client.ListFiles(context.Background())
		if err != nil {
			return filesErrMsg{err}
		}
		return filesLoadedMsg{files: files, stats: stats}
	}
}

func uploadFile(client *api.Client, path string) tea.Cmd {
	return func() tea.Msg {
		result, err := client.Upload(context.Background(), path)
		if err != nil {
			return uploadErrMsg{err}
		}
		return uploadDoneMsg{result: result}
	}
}

func deleteFile(client *api.Client, file models.FileRecord) tea.Cmd {
	return func() tea.Msg {
		if err := client.DeleteFile(context.Background(), file.ID); err != nil {
			return deleteErrMsg{err}
		}
		return deleteDoneMsg{filename: file.Filename}
	}
}

func downloadFile(client *api.Client, file models.FileRecord, dest string) tea.Cmd {
	return func() tea.Msg {
		out, err := os.Create(dest)
		if err != nil {
			return downloadErrMsg{err}
		}
		defer out.Close()

		if err := client.Download(context.Background(), file.ID, out); err != nil {
			_ = os.Remove(dest)
			return downloadErrMsg{err}
		}
		return downloadDoneMsg{path: dest}
	}
}

func sendQuery(client *api.Client, sessionID string, gen int, query string) tea.Cmd {
	return func() tea.Msg {
		result, err := client.Query(context.Background(), query)
		if err != nil {
			return queryErrMsg{sessionID: sessionID, gen: gen, err: err}
		}
		return queryDoneMsg{sessionID: sessionID, gen: gen, result: result}
	}
}
