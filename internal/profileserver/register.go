// Package profileserver exposes profile extraction as MCP tools.
package profileserver

import (
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_profile/internal/engine/store"
)

var errNoStore = errors.New("persistence is disabled (set DATABASE_URL or SQLITE_PATH)")

// RegisterTools registers all profile tools on the given MCP server:
// profile_extract, profile_reextract, profile_get, profile_list.
func RegisterTools(server *mcp.Server) {
	registerProfileExtract(server)
	registerProfileReextract(server)
	registerProfileGet(server)
	registerProfileList(server)
}

func defaultStore() (store.Store, error) {
	s := store.Default()
	if s == nil {
		return nil, errNoStore
	}
	return s, nil
}
