package models

// FileRecord is a backend-owned document entry. The client only reads these.
type FileRecord struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	DocType  string `json:"doc_type,omitempty"`
	DocTitle string `json:"doc_title,omitempty"`
	Date     string `json:"date,omitempty"` // 6-digit YYMMDD bucket
}

// DisplayTitle prefers the parsed document title over the raw filename.
func (f FileRecord) DisplayTitle() string {
	if f.DocTitle != "" {
		return f.DocTitle
	}
	return f.Filename
}

// FileStatistics is the aggregate block returned alongside the file list.
type FileStatistics struct {
	TotalCount int            `json:"total_count"`
	ByDocType  map[string]int `json:"by_doc_type"`
}
