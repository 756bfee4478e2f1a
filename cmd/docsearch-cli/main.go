package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"docsearch/internal/api"
	"docsearch/internal/config"
	"docsearch/internal/service"
)

const usage = `Usage: docsearch-cli [--config=docsearch.yaml] [--api=URL] [-v] <command> [args]

Commands:
  ls                               list stored documents
  upload FILE...                   upload files one at a time
  rm NAME                          delete a document
  search [-vector] [-top N] QUERY  search the index
  ask [-context TEXT] QUESTION     ask a single question
  summarize [-max N] FILE|-        summarize a file or stdin
  chat [-no-search] [-semantic]    interactive chat session
  create-index                     create the search index if missing
  reindex [-yes]                   reindex every stored file
  clear-search                     clear the search index (admin)
  clear-storage                    clear blob storage (admin)
  clear-all                        clear both (admin)
`

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	boldRed   = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
)

// app carries what every command needs.
type app struct {
	svc *service.Service
	cfg *config.AppConfig
	in  io.Reader
	out io.Writer
}

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "", "Path to YAML config file (optional)")
	baseURL := flag.String("api", "", "Backend base URL (overrides config)")
	verbose := flag.Bool("v", false, "Log requests to stderr")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if *cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(*cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "docsearch ", log.LstdFlags)
	}
	client, err := api.NewClient(api.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.Timeout()})
	if err != nil {
		log.Fatalf("backend client init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{svc: service.New(client, logger), cfg: cfg, in: os.Stdin, out: os.Stdout}
	if err := a.run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, boldRed("error:"), api.Message(err, "request failed"))
		stop()
		os.Exit(1)
	}
}
