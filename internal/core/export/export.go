// Package export renders a session transcript through a mustache template.
// Users can override the template by dropping export_template.txt into the
// config directory.
package export

import (
	"fmt"

	"github.com/cbroglie/mustache"

	"github.com/minjae-ko/docchat/internal/core/models"
)

// Render produces the transcript for one session using the given template.
func Render(template string, sess *models.Session) (string, error) {
	msgs := make([]map[string]interface{}, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		sources := make([]map[string]interface{}, 0, len(m.Sources))
		for _, src := range m.Sources {
			sources = append(sources, map[string]interface{}{
				"filename": src.Filename,
				"page":     src.Page,
				"is_table": src.Type == "table",
			})
		}
		msgs = append(msgs, map[string]interface{}{
			"role":    string(m.Role),
			"content": m.Content,
			"error":   m.Error,
			"sources": sources,
		})
	}

	data := map[string]interface{}{
		"title":      sess.Title,
		"created_at": sess.CreatedAt.Format("2006-01-02 15:04"),
		"updated_at": sess.UpdatedAt.Format("2006-01-02 15:04"),
		"messages":   msgs,
	}

	out, err := mustache.Render(template, data)
	if err != nil {
		return "", fmt.Errorf("render transcript: %w", err)
	}
	return out, nil
}
