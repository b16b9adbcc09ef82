package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/intake/internal/pipeline"
	"github.com/kalambet/intake/internal/storage"
)

// NewMCPServer creates an MCP server exposing document processing and
// conversation lookup as tools.
func NewMCPServer(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"intake",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("intake classifies documents (PDF, JSON orders, emails), extracts key fields, and keeps a per-conversation log."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("process_document",
			mcp.WithDescription("Classify a document and extract its key fields. Input is a path ending in .pdf, a JSON object, or email text."),
			mcp.WithString("input", mcp.Description("PDF path, JSON text, or message text"), mcp.Required()),
			mcp.WithString("conversation_id", mcp.Description("Conversation to append to; a new one is started when empty")),
		),
		mcpProcessDocument(deps),
	)

	s.AddTool(
		mcp.NewTool("get_conversation",
			mcp.WithDescription("Return every extraction record of a conversation in time order."),
			mcp.WithString("conversation_id", mcp.Description("Conversation id"), mcp.Required()),
		),
		mcpGetConversation(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"intake://conversations",
			"Recent Conversations",
			mcp.WithResourceDescription("The 10 most recently active conversations"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceConversations(deps),
	)

	return s
}

func mcpProcessDocument(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := req.RequireString("input")
		if err != nil {
			return mcpError("input is required"), nil
		}

		out, err := deps.Processor.Process(ctx, pipeline.Request{
			Input:          pipeline.InputFromArg(input),
			Source:         "mcp",
			ConversationID: req.GetString("conversation_id", ""),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("processing failed: %v", err)), nil
		}

		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetConversation(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("conversation_id")
		if err != nil {
			return mcpError("conversation_id is required"), nil
		}

		records, err := deps.Processor.Conversation(id)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("conversation %s not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get conversation: %v", err)), nil
		}

		b, err := json.Marshal(records)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal records: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceConversations(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		convs, err := deps.Processor.Conversations(10, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list conversations: %w", err)
		}
		if convs == nil {
			convs = []storage.ConversationSummary{}
		}

		b, err := json.Marshal(convs)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal conversations: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
