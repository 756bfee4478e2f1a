package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"docsearch/internal/api"
	"docsearch/internal/domain"
	"docsearch/internal/format"
)

var errAborted = errors.New("aborted")

func (a *app) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "ls", "list":
		return a.list(ctx)
	case "upload":
		return a.upload(ctx, args)
	case "rm", "delete":
		return a.remove(ctx, args)
	case "search":
		return a.search(ctx, args)
	case "ask":
		return a.ask(ctx, args)
	case "summarize":
		return a.summarize(ctx, args)
	case "chat":
		return a.chat(ctx, args)
	case "create-index":
		res, err := a.svc.CreateIndex(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, boldGreen("✓"), orDefault(res.Message, "Index ready"))
		return nil
	case "reindex":
		return a.reindex(ctx, args)
	case "clear-search", "clear-storage", "clear-all":
		return a.clear(ctx, name, args)
	}
	return fmt.Errorf("unknown command %q (run without arguments for help)", name)
}

func (a *app) list(ctx context.Context) error {
	docs, err := a.svc.Documents(ctx)
	if err != nil {
		return err
	}
	a.printDocuments(docs)
	return nil
}

func (a *app) printDocuments(docs []domain.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(a.out, faint("No files yet."))
		return
	}
	for _, d := range docs {
		fmt.Fprintf(a.out, "%s  %s\n", boldCyan(d.Name), faint(format.Size(d.Size)+" · "+format.Date(d.LastModified)))
	}
}

func (a *app) upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: upload FILE...")
	}
	var last []domain.Document
	for _, path := range args {
		out, err := a.svc.Upload(ctx, path)
		if err != nil {
			return fmt.Errorf("%s: %s", path, api.Message(err, "upload failed"))
		}
		fmt.Fprintf(a.out, "%s uploaded %s\n", boldGreen("✓"), out.FileName)
		if out.RefreshErr == nil {
			last = out.Documents
		}
	}
	if last != nil {
		fmt.Fprintln(a.out)
		a.printDocuments(last)
	}
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: rm [-yes] NAME")
	}
	name := fs.Arg(0)
	if !*yes && !a.confirm(fmt.Sprintf("Delete %q?", name)) {
		return errAborted
	}
	if _, err := a.svc.Delete(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s deleted %s\n", boldGreen("✓"), name)
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	vector := fs.Bool("vector", a.cfg.Search.UseVector, "Use vector search")
	top := fs.Int("top", a.cfg.Search.Top, "Number of results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")
	results, err := a.svc.Search(ctx, query, *vector, *top)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(a.out, faint("No results."))
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(a.out, "%s %s %s\n", yellow(fmt.Sprintf("%d.", i+1)), boldCyan(r.Title), faint(fmt.Sprintf("(%s, score %.3f)", r.FileName, r.Score)))
		fmt.Fprintf(a.out, "   %s\n", excerpt(r.Content, 240))
	}
	return nil
}

func (a *app) ask(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	contextText := fs.String("context", "", "Text to answer from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		return errors.New("usage: ask [-context TEXT] QUESTION")
	}
	answer, err := a.svc.Ask(ctx, question, *contextText)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, answer)
	return nil
}

func (a *app) summarize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	maxLength := fs.Int("max", a.cfg.Summarize.MaxLength, "Maximum summary length")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: summarize [-max N] FILE|-")
	}
	var data []byte
	var err error
	if fs.Arg(0) == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(fs.Arg(0))
	}
	if err != nil {
		return err
	}
	summary, err := a.svc.Summarize(ctx, string(data), *maxLength)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, summary)
	return nil
}

// chat runs a line-based session; history is dropped on exit.
func (a *app) chat(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	noSearch := fs.Bool("no-search", !a.cfg.Chat.UseSearch, "Answer without document search")
	semantic := fs.Bool("semantic", a.cfg.Chat.UseSemantic, "Use semantic ranking")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts := domain.ChatOptions{UseSearch: !*noSearch, UseSemantic: *semantic}

	fmt.Fprintln(a.out, boldGreen("Internal Search AI chat"))
	fmt.Fprintln(a.out, faint("Type a message and press Enter. /clear resets the session, /exit quits."))
	var history []domain.ChatMessage
	scanner := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit", "exit", "quit":
			return nil
		case "/clear":
			history = nil
			fmt.Fprintln(a.out, faint("(chat cleared)"))
			continue
		}
		history = append(history, domain.ChatMessage{Role: domain.RoleUser, Content: line})
		reply, err := a.svc.Chat(ctx, append([]domain.ChatMessage(nil), history...), opts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(a.out, boldRed("error:"), api.Message(err, "failed to get a response"))
			continue
		}
		history = append(history, reply)
		fmt.Fprintf(a.out, "%s %s\n\n", boldCyan("AI:"), reply.Content)
	}
	return scanner.Err()
}

func (a *app) reindex(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reindex", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes && !a.confirm("Reindex every stored file? A missing index is created first.") {
		return errAborted
	}
	out, err := a.svc.Reindex(ctx)
	if err != nil {
		return err
	}
	for _, item := range out.Result.Results {
		status := boldGreen(item.Status)
		if item.Error != "" {
			status = boldRed(item.Status) + " " + item.Error
		}
		fmt.Fprintf(a.out, "  %s %s\n", item.File, status)
	}
	fmt.Fprintln(a.out, boldGreen("✓"), out.Summary())
	return nil
}

func (a *app) clear(ctx context.Context, name string, args []string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	password := fs.String("password", os.Getenv("DOCSEARCH_ADMIN_PASSWORD"), "Admin password (default $DOCSEARCH_ADMIN_PASSWORD)")
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.svc.Authenticate(ctx, *password); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return errors.New("invalid password")
		}
		return err
	}
	prompts := map[string]string{
		"clear-search":  "Delete every entry in the search index? This cannot be undone.",
		"clear-storage": "Delete every file in blob storage? This cannot be undone.",
		"clear-all":     "Delete both the search index and blob storage? This cannot be undone.",
	}
	if !*yes && !a.confirm(prompts[name]) {
		return errAborted
	}
	switch name {
	case "clear-search":
		res, err := a.svc.ClearSearch(ctx, *password)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s Search index cleared (index: %s)\n", boldGreen("✓"), res.IndexName)
	case "clear-storage":
		res, err := a.svc.ClearStorage(ctx, *password)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s Storage cleared (deleted files: %d)\n", boldGreen("✓"), res.DeletedCount)
	default:
		res, err := a.svc.ClearAll(ctx, *password)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s All data cleared (deleted files: %d)\n", boldGreen("✓"), res.Storage.DeletedCount)
	}
	return nil
}

// confirm asks on a.out and reads one line; only "y" or "yes" proceeds.
func (a *app) confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s %s ", yellow(prompt), faint("[y/N]"))
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
