// go_profile: professional profile extraction MCP server.
//
// Exposes four MCP tools: profile_extract, profile_reextract, profile_get,
// profile_list. Documents are fetched by the caller; this server only parses.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_profile/internal/engine"
	"github.com/anatolykoptev/go_profile/internal/engine/store"
	"github.com/anatolykoptev/go_profile/internal/profileserver"
)

var version = "dev"

func main() {
	_ = godotenv.Load() // .env is optional; process environment wins
	setLogLevel(env.Str("LOG_LEVEL", "info"))

	mcpPort := env.Str("MCP_PORT", "8893")
	initEngine()
	defer closeStore()

	slog.Info("starting go_profile",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_profile",
		Version: version,
	}, nil)

	profileserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 4))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_profile",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func setLogLevel(s string) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		slog.Warn("invalid LOG_LEVEL, using info", slog.String("value", s))
		level = slog.LevelInfo
	}
	slog.SetLogLoggerLevel(level)
}

func initEngine() {
	c := engine.Config{
		Markdown:         strings.EqualFold(env.Str("DESCRIPTION_FORMAT", "text"), "markdown"),
		OwnDomains:       env.List("OWN_DOMAINS", "linkedin.com,lnkd.in"),
		MaxDocumentBytes: env.Int("MAX_DOCUMENT_BYTES", 8<<20),
		CacheTTL:         env.Duration("CACHE_TTL", engine.DefaultCacheTTL),
		CacheMaxEntries:  env.Int("CACHE_MAX_ENTRIES", 1000),
		DatabaseURL:      env.Str("DATABASE_URL", ""),
		SQLitePath:       env.Str("SQLITE_PATH", ""),
	}
	engine.Init(c)

	// Profile store: Postgres if configured, else SQLite, else disabled.
	switch {
	case c.DatabaseURL != "":
		pg, err := store.ConnectPostgres(context.Background(), c.DatabaseURL)
		if err != nil {
			slog.Warn("profile store init failed, persistence disabled", slog.Any("error", err))
		} else {
			store.SetDefault(pg)
			slog.Info("profile store initialized", slog.String("backend", "postgres"))
		}
	case c.SQLitePath != "":
		lite, err := store.OpenSQLite(c.SQLitePath)
		if err != nil {
			slog.Warn("profile store init failed, persistence disabled", slog.Any("error", err))
		} else {
			store.SetDefault(lite)
			slog.Info("profile store initialized", slog.String("backend", "sqlite"), slog.String("path", c.SQLitePath))
		}
	}

	engine.InitCache(env.Str("REDIS_URL", ""), c.CacheTTL, c.CacheMaxEntries)
}

func closeStore() {
	if s := store.Default(); s != nil {
		if err := s.Close(); err != nil {
			slog.Warn("profile store close failed", slog.Any("error", err))
		}
	}
}
