package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/option"

	"autocrm/internal/config"
	"autocrm/internal/crm"
	"autocrm/internal/google"
	"autocrm/internal/mcpserver"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	log.Printf("🚀 Starting CRM MCP Server")

	cfg := config.New()
	ctx := context.Background()

	creds, err := cfg.GoogleCredentials()
	if err != nil {
		log.Fatalf("❌ google credentials: %v", err)
	}
	httpClient, err := google.HTTPClient(ctx, creds)
	if err != nil {
		log.Fatalf("❌ google auth: %v", err)
	}
	ws, err := google.NewWorkspace(ctx, google.WorkspaceConfig{
		SpreadsheetID: cfg.SheetID,
		StockTab:      cfg.StockTab,
		LeadsTab:      cfg.LeadsTab,
		DriveParentID: cfg.DriveParentFolderID,
		CalendarID:    cfg.CalendarID,
		TimeZone:      cfg.TimeZone,
	}, option.WithHTTPClient(httpClient))
	if err != nil {
		log.Fatalf("❌ google workspace: %v", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "autocrm-mcp",
		Version: "1.0.0",
	}, nil)
	mcpserver.New(crm.NewDispatcher(ws.Stock, ws.Leads, ws.Folders, ws.Calendar, cfg.Location())).Register(server)

	log.Printf("🔗 Starting CRM MCP server on stdin/stdout...")
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		log.Fatalf("❌ CRM MCP Server failed: %v", err)
	}
}
