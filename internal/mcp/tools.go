package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dadukhankevin/Glance/internal/shards"
)

const (
	toolCreateShard = "create_shard"
	toolViewShards  = "view_shards"
	toolSearchTags  = "search_tags"
	toolDeleteTag   = "delete_tag"
)

const createShardDescription = `Save a shard: a live window into a region of a source file.

The region is anchored by from_text (its first line) and to_text (its last
line), so it keeps resolving as the file changes. Calling this again with the
same file and from_text refreshes the existing shard instead of creating a
duplicate. Add a summary when your interpretation of the code is worth more
than the code itself; leave it empty for self-explanatory regions.`

const viewShardsDescription = `View shards filtered by tags or file, oldest first.

Each shard resolves against the current file content and reports a health
verdict. Healthy shards show their summary when one exists; degraded and stale
shards fall back to raw content. Stale shards are deleted after repeated
viewing unless re-created. At least one filter (tags or file) is required.`

const searchTagsDescription = `Search existing tags by name.

Returns matching tags ranked exact match first, then prefix matches, then
substring matches, with shard counts. Use this to discover what memory exists
before viewing or creating shards.`

const deleteTagDescription = `Remove a tag from every shard that carries it.

Shards left with no tags are deleted outright. Use this to retire a topic
that no longer matters.`

// ToolOutput wraps tool results for JSON delivery.
type ToolOutput struct {
	Data any `json:"data"`
}

// CreateShardInput is the input schema for the create_shard tool.
type CreateShardInput struct {
	File     string   `json:"file" jsonschema:"path to the source file, relative to the project root"`
	FromText string   `json:"from_text" jsonschema:"text marking the start of the region, typically a function signature"`
	ToText   string   `json:"to_text" jsonschema:"text marking the end of the region, typically its last line"`
	Tags     []string `json:"tags" jsonschema:"tags for organizing and finding shards later"`
	Summary  string   `json:"summary,omitempty" jsonschema:"optional interpretation shown instead of raw content while the shard is healthy"`
}

// ViewShardsInput is the input schema for the view_shards tool.
type ViewShardsInput struct {
	Tags   []string `json:"tags,omitempty" jsonschema:"show shards carrying any of these tags"`
	File   string   `json:"file,omitempty" jsonschema:"show shards anchored in this file"`
	Raw    bool     `json:"raw,omitempty" jsonschema:"show raw file content even when a summary exists"`
	Limit  int      `json:"limit,omitempty" jsonschema:"maximum shards to return, default 50"`
	Offset int      `json:"offset,omitempty" jsonschema:"skip this many shards, oldest first"`
}

// SearchTagsInput is the input schema for the search_tags tool.
type SearchTagsInput struct {
	Query string `json:"query" jsonschema:"text to match against tag names"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum tags to return, default 5"`
}

// DeleteTagInput is the input schema for the delete_tag tool.
type DeleteTagInput struct {
	Tag string `json:"tag" jsonschema:"the tag to remove from all shards"`
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner,
		&mcpsdk.Tool{Name: toolCreateShard, Description: createShardDescription},
		s.handleCreateShard)
	mcpsdk.AddTool(s.inner,
		&mcpsdk.Tool{Name: toolViewShards, Description: viewShardsDescription},
		s.handleViewShards)
	mcpsdk.AddTool(s.inner,
		&mcpsdk.Tool{Name: toolSearchTags, Description: searchTagsDescription},
		s.handleSearchTags)
	mcpsdk.AddTool(s.inner,
		&mcpsdk.Tool{Name: toolDeleteTag, Description: deleteTagDescription},
		s.handleDeleteTag)
}

func (s *Server) handleCreateShard(ctx context.Context, req *mcpsdk.CallToolRequest, input CreateShardInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.File == "" || input.FromText == "" || input.ToText == "" {
		return errorResult(fmt.Errorf("file, from_text, and to_text are required"))
	}

	result, err := s.svc.Create(ctx, shards.CreateParams{
		File:     input.File,
		FromText: input.FromText,
		ToText:   input.ToText,
		Tags:     input.Tags,
		Summary:  input.Summary,
	})
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(result)
}

func (s *Server) handleViewShards(ctx context.Context, req *mcpsdk.CallToolRequest, input ViewShardsInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if len(input.Tags) == 0 && input.File == "" {
		return errorResult(fmt.Errorf(
			"provide at least one filter (tags or file); use search_tags or the %s resource to discover tags",
			tagsResourceURI))
	}

	result, err := s.svc.View(ctx, shards.ViewParams{
		Tags:   input.Tags,
		File:   input.File,
		Raw:    input.Raw,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err)
	}

	if result.Total == 0 {
		return jsonResult(map[string]string{
			"status":  "empty",
			"message": fmt.Sprintf("No shards found matching %s.", describeFilters(input)),
		})
	}

	return jsonResult(result)
}

func (s *Server) handleSearchTags(ctx context.Context, req *mcpsdk.CallToolRequest, input SearchTagsInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Query == "" {
		return errorResult(fmt.Errorf("query is required"))
	}

	matches, err := s.svc.SearchTags(ctx, input.Query, input.Limit)
	if err != nil {
		return errorResult(err)
	}

	if len(matches) == 0 {
		return jsonResult(map[string]string{
			"status":  "empty",
			"message": fmt.Sprintf("No tags matched %q. Read the %s resource to see what exists.", input.Query, tagsResourceURI),
		})
	}

	return jsonResult(matches)
}

func (s *Server) handleDeleteTag(ctx context.Context, req *mcpsdk.CallToolRequest, input DeleteTagInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Tag == "" {
		return errorResult(fmt.Errorf("tag is required"))
	}

	result, err := s.svc.DeleteTag(ctx, input.Tag)
	if err != nil {
		return errorResult(err)
	}

	if result.ShardsModified == 0 {
		return jsonResult(map[string]string{
			"status":  "not_found",
			"message": fmt.Sprintf("No shards carry the tag %q.", input.Tag),
		})
	}

	return jsonResult(result)
}

func describeFilters(input ViewShardsInput) string {
	var parts []string
	if len(input.Tags) > 0 {
		parts = append(parts, fmt.Sprintf("tags %v", input.Tags))
	}
	if input.File != "" {
		parts = append(parts, fmt.Sprintf("file %q", input.File))
	}
	return strings.Join(parts, " and ")
}

// errorResult returns a tool error as an MCP result rather than a protocol
// failure, so the calling agent sees the message.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult marshals data as indented JSON into the result content.
func jsonResult(data any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(encoded)}},
	}, ToolOutput{Data: data}, nil
}
