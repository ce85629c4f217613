package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"quickshelf/internal/adapters/filesystem"
	mcpadapter "quickshelf/internal/adapters/mcp"
	"quickshelf/internal/adapters/sqlite"
	"quickshelf/internal/application"
	"quickshelf/internal/config"
	"quickshelf/internal/logging"
	"quickshelf/internal/rules"
)

const version = "0.1.0"

func main() {
	configFlag := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		log.Printf("quickshelf-mcp: %v, falling back to defaults", err)
		cfg = config.Fallback()
	}

	// Stdout carries the MCP protocol, so logs go to stderr.
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.LogOutputs("stderr"),
	})
	if err != nil {
		log.Fatalf("quickshelf-mcp: %v", err)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		log.Fatalf("quickshelf-mcp: %v", err)
	}

	history, err := sqlite.Open(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("quickshelf-mcp: %v", err)
	}
	defer history.Close()

	ruleSet, warnings, err := cfg.RuleSet()
	if err != nil {
		logger.Warn("category rules invalid, using built-in defaults", logging.Error(err))
		ruleSet, warnings = rules.Default(), nil
	}

	desktop, err := filesystem.NewDesktop(cfg.Paths.DesktopDir, cfg.Organizer.IncludeHidden)
	if err != nil {
		log.Fatalf("quickshelf-mcp: %v", err)
	}

	configPath := *configFlag
	organizer, err := application.New(application.Options{
		Desktop:  desktop,
		History:  history,
		Rules:    ruleSet,
		Warnings: warnings,
		Logger:   logger,
		LockPath: cfg.LockPath(),
		ReloadRules: func() (*rules.Set, []rules.Warning, error) {
			fresh, _, _, err := config.Load(configPath)
			if err != nil {
				return nil, nil, err
			}
			return fresh.RuleSet()
		},
	})
	if err != nil {
		log.Fatalf("quickshelf-mcp: %v", err)
	}

	mcpServer := server.NewMCPServer(
		"quickshelf-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, organizer)
	mcpadapter.RegisterWriteTools(mcpServer, organizer)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("quickshelf-mcp: %v", err)
	}
}
