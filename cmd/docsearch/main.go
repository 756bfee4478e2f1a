package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docsearch/internal/api"
	"docsearch/internal/config"
	"docsearch/internal/domain"
	"docsearch/internal/service"
	"docsearch/internal/tui"
	"docsearch/internal/watcher"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, baseURL, watchDir string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docsearch/config.yaml if not provided)")
	flag.StringVar(&baseURL, "api", "", "Backend base URL (overrides config)")
	flag.StringVar(&watchDir, "watch", "", "Upload files dropped into this directory (overrides config)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if watchDir != "" {
		cfg.Watch.Dir = watchDir
	}

	client, err := api.NewClient(api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.Timeout()})
	if err != nil {
		log.Fatalf("backend client init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var files <-chan string
	if cfg.Watch.Dir != "" {
		w, err := watcher.New(cfg.Watch.Extensions, log.Default())
		if err != nil {
			log.Fatalf("drop folder watcher init failed: %v", err)
		}
		defer w.Stop()
		files, err = w.Watch(ctx, cfg.Watch.Dir)
		if err != nil {
			log.Fatalf("failed to watch %s: %v", cfg.Watch.Dir, err)
		}
	}

	// stdout belongs to the UI
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		log.Fatalf("failed to create log directory: %v", err)
	}
	logFile, err := tea.LogToFile(cfg.Log.File, "docsearch ")
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logFile.Close()

	logger := log.Default()
	svc := service.New(client, logger)

	pickerRoot, _ := os.Getwd()
	m := tui.New(ctx, svc, tui.Options{
		Chat:       domain.ChatOptions{UseSearch: cfg.Chat.UseSearch, UseSemantic: cfg.Chat.UseSemantic},
		SearchTop:  cfg.Search.Top,
		UseVector:  cfg.Search.UseVector,
		NoticeTTL:  cfg.NoticeDuration(),
		BaseURL:    client.BaseURL(),
		WatchDir:   cfg.Watch.Dir,
		PickerRoot: pickerRoot,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if files != nil {
		logger.Printf("watching %s for new files", cfg.Watch.Dir)
		go func() {
			for path := range files {
				p.Send(tui.WatchedFileMsg{Path: path})
			}
		}()
	}
	logger.Printf("starting against %s", client.BaseURL())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
