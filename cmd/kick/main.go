// Command kick is a small CLI for the Kick API: it can follow live chat,
// run the OAuth login flow, and look up channels.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/kickwire/kickapi"
	"github.com/kickwire/kickapi/internal/config"
	"github.com/kickwire/kickapi/internal/logger"
	"github.com/kickwire/kickapi/internal/telemetry"
	"github.com/kickwire/kickapi/livechat"
	"github.com/kickwire/kickapi/oauth"
)

const usage = `Usage: kick [flags] <command>

Commands:
  chat                Follow live chat for the configured chatrooms
  channel <slug>      Look up a channel by slug
  auth login          Run the OAuth authorization-code flow
  auth refresh        Exchange a refresh token for new tokens
  auth revoke         Revoke a token

Flags:
`

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the configuration file")
	logLevel := flag.String("log-level", "", "Log level: DEBUG, INFO, WARN, ERROR (overrides config)")
	noColor := flag.Bool("no-color", false, "Disable colored output (overrides TTY detection)")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Optional; local development convenience.
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if *logLevel != "" {
		level = logger.ParseLevel(*logLevel)
	}
	colored := !*noColor && term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""

	log, err := logger.Setup(logger.Config{
		Level:     level,
		FileLevel: slog.LevelDebug,
		Colored:   colored,
		LogDir:    cfg.LogDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("Received shutdown signal", "signal", sig.String())
		cancel()

		time.AfterFunc(10*time.Second, func() {
			log.Error("Graceful shutdown timed out, forcing exit")
			os.Exit(1)
		})
	}()

	switch args[0] {
	case "chat":
		err = runChat(ctx, cfg, log)
	case "channel":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: kick channel <slug>")
			os.Exit(2)
		}
		err = runChannel(ctx, cfg, log, args[1])
	case "auth":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: kick auth <login|refresh|revoke>")
			os.Exit(2)
		}
		err = runAuth(ctx, args[1], log)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", args[0])
		flag.Usage()
		os.Exit(2)
	}

	if err != nil && ctx.Err() == nil {
		log.Error("Command failed", "command", args[0], "error", err)
		os.Exit(1)
	}

	if ctx.Err() != nil {
		log.Info("Shutdown complete")
	}
}

// runChat follows every configured chatroom until shutdown.
func runChat(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	telemetry.Init()

	chatrooms := cfg.Chatrooms
	if len(chatrooms) == 0 {
		return fmt.Errorf("no chatrooms configured")
	}

	group, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		group.Go(func() error { return serveMetrics(ctx, cfg.MetricsAddr, log) })
	}

	for _, chatroomID := range chatrooms {
		chatroomID := chatroomID
		group.Go(func() error { return followChatroom(ctx, chatroomID, log) })
	}

	err := group.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func followChatroom(ctx context.Context, chatroomID int64, log *slog.Logger) error {
	session, err := livechat.Connect(ctx, chatroomID, livechat.WithLogger(log))
	if err != nil {
		return fmt.Errorf("connecting to chatroom %d: %w", chatroomID, err)
	}
	defer session.Close()

	log.Info("Following chat", "chatroom", chatroomID)

	for {
		msg, err := session.NextMessage(ctx)
		if err != nil {
			return fmt.Errorf("reading chatroom %d: %w", chatroomID, err)
		}
		if msg == nil {
			log.Info("Chat stream ended", "chatroom", chatroomID)
			return nil
		}

		fmt.Printf("[%d] %s: %s\n", chatroomID, msg.Sender.Username, msg.Content)
	}
}

func serveMetrics(ctx context.Context, addr string, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("Metrics server started", "addr", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func runChannel(ctx context.Context, cfg *config.Config, log *slog.Logger, slug string) error {
	if cfg.Token == "" {
		return fmt.Errorf("channel lookup requires a token (set KICK_TOKEN)")
	}

	client := kickapi.New(kickapi.WithToken(cfg.Token), kickapi.WithLogger(log))
	channel, err := client.Channels().Get(ctx, slug)
	if err != nil {
		return err
	}

	fmt.Printf("Channel:     %s\n", channel.Slug)
	fmt.Printf("Broadcaster: %d\n", channel.BroadcasterUserID)
	if channel.Category != nil {
		fmt.Printf("Category:    %s\n", channel.Category.Name)
	}
	if channel.Stream != nil && channel.Stream.IsLive {
		fmt.Printf("Live:        yes (%d viewers)\n", channel.Stream.ViewerCount)
		fmt.Printf("Title:       %s\n", channel.StreamTitle)
	} else {
		fmt.Printf("Live:        no\n")
	}
	return nil
}

func runAuth(ctx context.Context, action string, log *slog.Logger) error {
	authCfg, err := oauth.FromEnv()
	if err != nil {
		return err
	}

	switch action {
	case "login":
		authURL, state, verifier := authCfg.AuthorizationURL(
			oauth.ScopeUserRead,
			oauth.ScopeChannelRead,
			oauth.ScopeChatWrite,
		)

		fmt.Println()
		fmt.Println("Open this URL in your browser:")
		fmt.Println()
		fmt.Println("  " + authURL)
		fmt.Println()
		fmt.Println("Waiting for authorization...")

		code, err := authCfg.AwaitCallback(ctx, state)
		if err != nil {
			return err
		}

		token, err := authCfg.Exchange(ctx, code, verifier)
		if err != nil {
			return err
		}

		log.Info("Authorization complete", "expires", token.Expiry.Format(time.RFC3339))
		fmt.Printf("KICK_TOKEN=%s\n", token.AccessToken)
		fmt.Printf("KICK_REFRESH_TOKEN=%s\n", token.RefreshToken)
		return nil

	case "refresh":
		refreshToken := os.Getenv("KICK_REFRESH_TOKEN")
		token, err := authCfg.Refresh(ctx, refreshToken)
		if err != nil {
			return err
		}

		log.Info("Token refreshed", "expires", token.Expiry.Format(time.RFC3339))
		fmt.Printf("KICK_TOKEN=%s\n", token.AccessToken)
		fmt.Printf("KICK_REFRESH_TOKEN=%s\n", token.RefreshToken)
		return nil

	case "revoke":
		token := os.Getenv("KICK_TOKEN")
		if token == "" {
			return fmt.Errorf("KICK_TOKEN is not set")
		}
		if err := authCfg.Revoke(ctx, token, "access_token"); err != nil {
			return err
		}
		log.Info("Token revoked")
		return nil

	default:
		return fmt.Errorf("unknown auth action %q", action)
	}
}
