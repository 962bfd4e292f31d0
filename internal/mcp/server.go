// Package mcp exposes glance over the Model Context Protocol on stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dadukhankevin/Glance/internal/shards"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "glance"
	// serverVersion is the MCP server implementation version.
	serverVersion = "0.2.0"

	// tagsResourceURI addresses the tag activity resource.
	tagsResourceURI = "glance://tags"
	// topTagCount is how many tags the resource lists.
	topTagCount = 20
)

// serverInstructions teaches connecting agents the shard workflow.
const serverInstructions = `Glance is a memory system that saves live windows into code regions.
Shards are pointers (file + from_text + to_text) that resolve to current content on every view.

Start of a session: read the glance://tags resource to see what memory exists,
then call view_shards for tags related to your task. Check Glance before
re-reading files with other tools; when you learn something worth keeping,
create a shard for it.

- glance://tags resource: top tags by recent activity. Start here.
- view_shards(tags, file): load shards by tag or file. At least one filter required.
- search_tags: discover tags by name.
- create_shard: bookmark a code region. Upserts on file+from_text match.
- delete_tag: remove a tag everywhere. Shards left untagged are deleted.

Add summaries for complex code where your interpretation saves future context;
skip them when the code speaks for itself. When view_shards reports stale
shards, re-create them to refresh or let them expire.`

// Server wraps the MCP SDK server with the glance tool registrations.
type Server struct {
	inner *mcpsdk.Server
	svc   *shards.Service
}

// NewServer creates an MCP server with all glance tools and resources
// registered.
func NewServer(svc *shards.Service) *Server {
	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: serverVersion,
		},
		&mcpsdk.ServerOptions{Instructions: serverInstructions},
	)

	srv := &Server{inner: inner, svc: svc}
	srv.registerTools()
	srv.registerResources()

	return srv
}

// Run starts the MCP server on stdio transport. It blocks until the
// context is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	if err := s.inner.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// RunWithTransport starts the MCP server on the given transport.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	if err := s.inner.Run(ctx, transport); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func (s *Server) registerResources() {
	s.inner.AddResource(&mcpsdk.Resource{
		Name:        "tags",
		URI:         tagsResourceURI,
		Description: "Top tags ranked by most recent shard activity. Check this at session start.",
		MIMEType:    "application/json",
	}, s.handleTagsResource)
}

func (s *Server) handleTagsResource(ctx context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
	infos, err := s.svc.TopTags(ctx, topTagCount)
	if err != nil {
		return nil, err
	}

	var payload any
	if len(infos) == 0 {
		payload = map[string]string{
			"status": "empty",
			"message": "No shards exist yet for this codebase. Use create_shard to bookmark " +
				"important regions as you explore, so future sessions start with context.",
		}
	} else {
		rows := make([]shards.TagMatch, 0, len(infos))
		for _, info := range infos {
			rows = append(rows, shards.TagMatch{Tag: info.Tag, ShardCount: info.ShardCount})
		}
		payload = rows
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}

	return &mcpsdk.ReadResourceResult{
		Contents: []*mcpsdk.ResourceContents{
			{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
		},
	}, nil
}
