package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sameanonim/imageboard/internal/apiclient"
	"github.com/sameanonim/imageboard/internal/config"
	"github.com/sameanonim/imageboard/internal/logger"
	"github.com/sameanonim/imageboard/internal/prefs"
	"github.com/sameanonim/imageboard/internal/session"
	"github.com/sameanonim/imageboard/internal/view"
)

var metricsAddr string

func initWatchCommand() *cobra.Command {
	watchCommand := &cobra.Command{
		Use:   "watch <board> <thread-id>",
		Short: "Follows a thread, printing every page change",
		Args:  cobra.ExactArgs(2),
		RunE:  runWatchCommand,
	}
	watchCommand.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address for the Prometheus /metrics endpoint, disabled when empty")
	return watchCommand
}

func loadConfig() *config.Config {
	if configPath != "" {
		return config.MustLoad(configPath)
	}
	cfg := config.Default(baseURL, socketURL)
	cfg.StorePath = storePath
	return cfg
}

func runWatchCommand(cmd *cobra.Command, args []string) error {
	board := args[0]
	threadID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid thread id %q: %w", args[1], err)
	}

	cfg := loadConfig()
	logger.Initialize(cfg.LogLevel, cfg.LogJSON)

	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Log.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	store, err := prefs.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("opening preference store: %w", err)
	}
	defer store.Close()

	s := session.New(session.Params{
		Config:   cfg,
		Store:    store,
		Prompter: newTerminalPrompter(os.Stdin, os.Stdout),
		Observer: printChange,
		Reload:   func() { fmt.Println("* reply accepted, thread will refresh on the next poll") },
	})
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	initial, err := apiclient.New(cfg.Server.BaseURL).GetThread(ctx, board, threadID)
	cancel()
	if err != nil {
		return fmt.Errorf("loading thread %s/%d: %w", board, threadID, err)
	}

	action := fmt.Sprintf("/api/boards/%s/threads/%d/reply", board, threadID)
	s.OpenThread(board, threadID, action, initial, nil)
	fmt.Printf("watching /%s/%d, %d posts. Type 'help' for commands.\n", board, threadID, len(initial))

	return commandLoop(s, os.Stdin)
}

// printChange streams document mutations to the terminal, one line each.
func printChange(c view.Change) {
	switch c.Op {
	case "text":
		fmt.Printf("~ %s: %s\n", c.NodeID, c.Text)
	default:
		fmt.Printf("~ %s %s in %s\n", c.Op, c.NodeID, c.ContainerID)
	}
}

func commandLoop(s *session.Session, in *os.File) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "help":
			fmt.Println("commands: quote <id>, report <id>, hide <id>, attach <path>..., name <text>, say <text>, draft, reply, theme, quit")
		case "quote":
			withID(fields, s.Quote)
		case "report":
			withID(fields, func(id int64) { s.Report(context.Background(), id) })
		case "hide":
			withID(fields, s.HidePost)
		case "attach":
			if err := s.AttachFiles(fields[1:]); err != nil {
				logger.Log.Warn("attachment rejected", "error", err)
			}
		case "name":
			s.SetName(strings.Join(fields[1:], " "))
		case "say":
			s.SetContent(strings.Join(fields[1:], " "))
			s.ExpandQuickReply()
		case "draft":
			s.SaveDraft()
		case "reply":
			if err := s.SubmitQuickReply(context.Background()); err != nil {
				logger.Log.Warn("reply rejected", "error", err)
			}
		case "theme":
			fmt.Printf("theme: %s\n", s.ToggleTheme(context.Background()))
		case "quit":
			return nil
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func withID(fields []string, fn func(int64)) {
	if len(fields) < 2 {
		fmt.Println("missing post id")
		return
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		fmt.Printf("invalid post id %q\n", fields[1])
		return
	}
	fn(id)
}
