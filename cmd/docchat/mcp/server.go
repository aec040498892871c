package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/minjae-ko/docchat/internal/core/api"
	"github.com/minjae-ko/docchat/internal/core/config"
	"github.com/minjae-ko/docchat/internal/core/files"
)

// QueryDocumentsArgs defines arguments for the query_documents tool
type QueryDocumentsArgs struct {
	Question string `json:"question" jsonschema:"description=Natural-language question to answer from the indexed documents,required"`
}

// ListDocumentsArgs defines arguments for the list_documents tool
type ListDocumentsArgs struct {
	DocType string `json:"doc_type,omitempty" jsonschema:"description=Only return documents of this type"`
	Date    string `json:"date,omitempty" jsonschema:"description=Only return documents from this date (YYMMDD or YYYY-MM-DD)"`
}

// AnswerResult is the query_documents response payload
type AnswerResult struct {
	Answer    string         `json:"answer"`
	HasAnswer bool           `json:"has_answer"`
	Sources   []SourceDetail `json:"sources"`
}

// SourceDetail is one citation in a query answer
type SourceDetail struct {
	Filename string `json:"filename"`
	Page     int    `json:"page"`
	Type     string `json:"type,omitempty"`
}

// DocumentSummary is one registry entry in the list_documents response
type DocumentSummary struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Title    string `json:"title"`
	DocType  string `json:"doc_type,omitempty"`
	Date     string `json:"date,omitempty"`
	Size     int64  `json:"size_bytes"`
}

// StartServer starts the MCP server
func StartServer(cfg *config.Config) error {
	client := api.New(cfg.ServerURL, cfg.RequestTimeout)

	s := server.NewMCPServer(
		"docchat",
		"1.0.0",
	)

	queryTool := mcp.NewTool("query_documents",
		mcp.WithDescription("Answer a question from the indexed documents. Returns the answer text, whether it is grounded in the documents, and the source citations."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural-language question to answer from the indexed documents")),
	)
	s.AddTool(queryTool, makeQueryDocumentsHandler(client))

	listTool := mcp.NewTool("list_documents",
		mcp.WithDescription("List the documents in the backend registry, optionally filtered by type and date"),
		mcp.WithString("doc_type",
			mcp.Description("Only return documents of this type")),
		mcp.WithString("date",
			mcp.Description("Only return documents from this date (YYMMDD or YYYY-MM-DD)")),
	)
	s.AddTool(listTool, makeListDocumentsHandler(client))

	return server.ServeStdio(s)
}

func makeQueryDocumentsHandler(client *api.Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args QueryDocumentsArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		result, err := client.Query(ctx, args.Question)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		answer := AnswerResult{
			Answer:    result.Answer,
			HasAnswer: result.HasAnswer,
			Sources:   []SourceDetail{},
		}
		for _, src := range result.Sources {
			answer.Sources = append(answer.Sources, SourceDetail{
				Filename: src.Filename,
				Page:     src.Page,
				Type:     src.Type,
			})
		}

		resultJSON, err := json.Marshal(answer)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

func makeListDocumentsHandler(client *api.Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListDocumentsArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		listing, stats, err := client.ListFiles(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load file list: %v", err)), nil
		}

		filter := files.Filter{DocType: args.DocType}
		if args.Date != "" {
			bucket, err := files.ParseDateBucket(args.Date, time.Now())
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid date: %v", err)), nil
			}
			filter.Date = bucket
		}
		visible := filter.Apply(listing)

		docs := []DocumentSummary{}
		for _, f := range visible {
			docs = append(docs, DocumentSummary{
				ID:       f.ID,
				Filename: f.Filename,
				Title:    f.DisplayTitle(),
				DocType:  f.DocType,
				Date:     f.Date,
				Size:     f.Size,
			})
		}

		payload := map[string]interface{}{
			"documents": docs,
		}
		if stats != nil {
			payload["statistics"] = stats
		}

		resultJSON, err := json.Marshal(payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}
