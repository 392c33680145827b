package profileserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_profile/internal/engine"
	"github.com/anatolykoptev/go_profile/internal/engine/assemble"
	"github.com/anatolykoptev/go_profile/internal/engine/store"
)

// GetInput is the input of profile_get.
type GetInput struct {
	Username string `json:"username" jsonschema:"Username or profile URL (required)"`
}

// ListInput is the input of profile_list.
type ListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of profiles to return (default 50, 0 or negative = 50)"`
}

// ListOutput is the result of profile_list.
type ListOutput struct {
	Profiles []store.Summary `json:"profiles"`
	Total    int             `json:"total"`
}

const defaultListLimit = 50

func registerProfileGet(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:         "profile_get",
		Description:  "Load the last saved extraction of a profile by username or profile URL. Requires persistence.",
		OutputSchema: extractionSchema,
		Annotations:  &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input GetInput) (*mcp.CallToolResult, assemble.Extraction, error) {
		out, err := getProfile(ctx, input)
		return nil, out, err
	})
}

func registerProfileList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "profile_list",
		Description: "List saved profiles, most recently saved first. Returns username, name, headline and extraction time per profile. Get full results with profile_get.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
		out, err := listProfiles(ctx, input)
		return nil, out, err
	})
}

func getProfile(ctx context.Context, input GetInput) (assemble.Extraction, error) {
	username := engine.NormUsername(input.Username)
	if username == "" {
		return assemble.Extraction{}, errors.New("username is required")
	}
	s, err := defaultStore()
	if err != nil {
		return assemble.Extraction{}, err
	}
	return s.Load(ctx, username)
}

func listProfiles(ctx context.Context, input ListInput) (ListOutput, error) {
	s, err := defaultStore()
	if err != nil {
		return ListOutput{}, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.List(ctx, limit)
	if err != nil {
		return ListOutput{}, err
	}
	if rows == nil {
		rows = []store.Summary{}
	}
	return ListOutput{Profiles: rows, Total: len(rows)}, nil
}
