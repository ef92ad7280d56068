package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"autocrm/internal/auth"
	"autocrm/internal/config"
	"autocrm/internal/crm"
	"autocrm/internal/google"
	"autocrm/internal/llm"
	"autocrm/internal/promptctx"
	"autocrm/internal/scheduler"
	"autocrm/internal/session"
	"autocrm/internal/storage"
	"autocrm/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authSvc, err := auth.NewWithRepo(fileRepo(cfg.AllowlistFilePath), fileRepo(cfg.PendingFilePath), cfg.AllowedUsers)
	if err != nil {
		log.Fatalf("failed to init auth: %v", err)
	}

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
	dispatcher := crm.NewDispatcher(ws.Stock, ws.Leads, ws.Folders, ws.Calendar, loc)

	chain, err := llm.NewFactory(cfg).CreateChain(ctx, string(cfg.LLMProvider), cfg.LLMFallbacks)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}
	model := llm.NewResilient(chain, cfg.RetryAttempts, cfg.RetryBackoff)
	model.OnAttempt = session.RecordAttempt

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			rec = fr
		}
	}

	processor := &session.Processor{
		LLM:        model,
		Dispatcher: dispatcher,
		Stock:      ws.Stock,
		Leads:      ws.Leads,
		Context:    promptctx.NewBuilder(readSystemPrompt(cfg.SystemPromptPath), cfg.HistoryWindow, cfg.SnapshotMaxRecords, cfg.SnapshotEmptyStop),
		Recorder:   rec,
	}

	bot, err := telegram.New(cfg.TelegramBotToken, authSvc, session.NewStore(cfg.QuotaPerMinute), processor, cfg.AdminUserID, loc)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	digest := &scheduler.Digest{Leads: ws.Leads, Location: loc, Notify: bot.Notify}
	sched := scheduler.New(cfg.DigestCron, loc)
	sched.SetDigestFunction(digest.Run)
	if err := sched.Start(); err != nil {
		log.Printf("❌ failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	log.Printf("🚀 Bot started (provider=%s, fallbacks=%v)", cfg.LLMProvider, cfg.LLMFallbacks)
	bot.Start(ctx)
}

func fileRepo(path string) auth.Repository {
	if path == "" {
		return nil
	}
	repo, err := auth.NewFileRepository(path)
	if err != nil {
		log.Printf("failed to init repo %s: %v", path, err)
		return nil
	}
	return repo
}

func readSystemPrompt(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("system prompt file not found or unreadable at %s: %v", path, err)
		return ""
	}
	return string(data)
}
