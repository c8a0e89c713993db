// Package main is the Joshu CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/joshu/internal/answer"
	"github.com/hyperjump/joshu/internal/cli"
	"github.com/hyperjump/joshu/internal/citation"
	"github.com/hyperjump/joshu/internal/config"
	"github.com/hyperjump/joshu/internal/embedding"
	"github.com/hyperjump/joshu/internal/fetch"
	"github.com/hyperjump/joshu/internal/indexer"
	"github.com/hyperjump/joshu/internal/keyword"
	"github.com/hyperjump/joshu/internal/llm"
	"github.com/hyperjump/joshu/internal/models"
	"github.com/hyperjump/joshu/internal/scrape"
	"github.com/hyperjump/joshu/internal/server"
	"github.com/hyperjump/joshu/internal/storage"
	"github.com/hyperjump/joshu/internal/store"
	"github.com/hyperjump/joshu/internal/watcher"
	"github.com/hyperjump/joshu/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/joshu/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "joshu server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API tokens may live in a .env during development; Load never
	// overrides variables already set in the real environment.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "scrape":
		runScrape()
	case "embed":
		runEmbed()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("joshu version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	host := fs.String("host", "", "listen host (overrides config)")
	port := fs.Int("port", 0, "listen port (overrides config)")
	debug := fs.Bool("debug", false, "enable debug logging (retrieval scores, prompt sizes, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Engine, components.Store, cfg, logger, version)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printAskUsage prints ask subcommand usage.
func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: joshu ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "Question is all remaining arguments joined by spaces. Multi-word questions work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
By default the question is answered in-process using the config's store and
API credentials. Use --http to ask a running server instead.

Examples:
  joshu ask when is GA5 due
  joshu ask "when is GA5 due"                 # same as above
  joshu ask --http "when is GA5 due"          # via a running server
  joshu ask --image screenshot.webp "what does this dashboard show"
  joshu ask --link https://discourse.example.com/t/ga5/1234 "clarify this thread"
  joshu ask --output json "when is GA5 due"   # structured JSON for other apps
`)
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting (e.g. "ga5 deadline" vs ga5 deadline).
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// askArgsReorder moves any flags (and their values) that appear after the question
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "joshu ask \"question\" -output json"
// would otherwise leave -output unparsed.
func askArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// encodeImageFile reads path and returns its content as a data URL. The
// content type is sniffed from the bytes.
func encodeImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := http.DetectContentType(data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func runAsk() {
	askArgs := askArgsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for in-process mode)")
	httpMode := fs.Bool("http", false, "ask a running server over HTTP instead of answering in-process")
	serverURL := fs.String("server", "http://localhost:8080", "server URL for --http")
	imagePath := fs.String("image", "", "attach an image file to the question")
	link := fs.String("link", "", "attach a URL whose page content supplements the context")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(askArgs)

	if fs.NArg() < 1 {
		printAskUsage(fs)
		os.Exit(1)
	}
	question := buildQuestion(fs.Args())
	if question == "" {
		printAskUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	req := &models.AskRequest{Question: question, Link: *link}
	if *imagePath != "" {
		image, err := encodeImageFile(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
			os.Exit(1)
		}
		req.Image = image
	}

	if *httpMode {
		response, err := askViaHTTP(*serverURL, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteAnswer(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	response, err := components.Engine.Ask(context.Background(), req)
	if err != nil {
		// Upstream failures degrade in band, same as the HTTP handler.
		if errors.Is(err, answer.ErrUpstream) {
			response = &models.AskResponse{
				Answer: fmt.Sprintf("Error generating response: %v", err),
				Links:  []models.CitationLink{},
			}
		} else {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteAnswer(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL string, req *models.AskRequest) (*models.AskResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runScrape() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: joshu scrape <posts|course> [flags]")
		fmt.Println("  joshu scrape posts    Collect forum posts from the configured Discourse category")
		fmt.Println("  joshu scrape course   Convert course repo files to scraped JSON documents")
		os.Exit(1)
	}
	sub := os.Args[2]
	switch sub {
	case "posts":
		runScrapePosts(os.Args[3:])
	case "course":
		runScrapeCourse(os.Args[3:])
	default:
		fmt.Printf("Unknown scrape subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runScrapePosts(args []string) {
	fs := flag.NewFlagSet("scrape posts", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	baseURL := fs.String("base-url", "", "Discourse base URL (overrides config)")
	category := fs.Int("category", 0, "Discourse category ID (overrides config)")
	from := fs.String("from", "", "start date YYYY-MM-DD, inclusive (overrides config)")
	to := fs.String("to", "", "end date YYYY-MM-DD, inclusive (overrides config)")
	out := fs.String("out", "", "output directory (overrides config)")
	_ = fs.Parse(args)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.Scrape.BaseURL = *baseURL
	}
	if *category != 0 {
		cfg.Scrape.Category = *category
	}
	if *from != "" {
		cfg.Scrape.From = *from
	}
	if *to != "" {
		cfg.Scrape.To = *to
	}
	if *out != "" {
		cfg.Scrape.PostsDir = *out
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	scraper, err := scrape.NewDiscourseScraper(&cfg.Scrape, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid scrape config: %v\n", err)
		os.Exit(1)
	}
	posts, err := scraper.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scrape failed: %v\n", err)
		os.Exit(1)
	}
	path, err := scrape.SavePosts(cfg.Scrape.PostsDir, posts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Save failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Scraped %d post(s) to %s\n", len(posts), path)
}

func runScrapeCourse(args []string) {
	fs := flag.NewFlagSet("scrape course", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	repo := fs.String("repo", "", "course repo directory (overrides config)")
	out := fs.String("out", "", "output directory (overrides config)")
	_ = fs.Parse(args)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *repo != "" {
		cfg.Scrape.CourseRepo = *repo
	}
	if *out != "" {
		cfg.Scrape.CourseDir = *out
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	scraper := scrape.NewCourseScraper(cfg.Scrape.CourseRepo, cfg.Scrape.CourseDir, logger)
	n, err := scraper.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scrape failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Scraped %d file(s) to %s\n", n, cfg.Scrape.CourseDir)
}

func runEmbed() {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	force := fs.Bool("force", false, "re-embed every chunk even when a cached vector exists")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	embedder, err := embedding.NewClient(embeddingClientConfig(cfg))
	if err != nil {
		logger.Fatal("Failed to create embedding client", zap.Error(err))
	}
	defer embedder.Close()

	cache, err := storage.NewSQLiteVectorCache(cfg.Embedding.CachePath)
	if err != nil {
		logger.Fatal("Failed to open embedding cache", zap.Error(err))
	}
	defer cache.Close()

	var opts []indexer.PipelineOption
	if *force {
		opts = append(opts, indexer.WithForce())
	}
	pipeline := indexer.NewPipeline(
		embedder,
		cache,
		indexer.NewChunker(cfg.Embedding.ChunkSize, cfg.Embedding.ChunkOverlap),
		cfg.Embedding.Model,
		cfg.Embedding.BatchSize,
		logger,
		opts...,
	)
	stats, err := pipeline.Run(context.Background(), cfg.Scrape.CourseDir, cfg.Scrape.PostsDir, cfg.Store.Path)
	if err != nil {
		logger.Fatal("Embed failed", zap.Error(err))
	}
	fmt.Printf("Embedded %d document(s) as %d chunk(s): %d from cache, %d embedded, %d skipped\n",
		stats.Docs, stats.Chunks, stats.CacheHits, stats.Embedded, stats.Skipped)
	fmt.Printf("Store written to %s\n", cfg.Store.Path)
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	embedAfter := fs.Bool("embed", false, "re-run the embed pipeline after each rescrape")
	debug := fs.Bool("debug", false, "enable debug logging (file events, watched directories)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var pipeline *indexer.Pipeline
	if *embedAfter {
		embedder, err := embedding.NewClient(embeddingClientConfig(cfg))
		if err != nil {
			logger.Fatal("Failed to create embedding client", zap.Error(err))
		}
		defer embedder.Close()
		cache, err := storage.NewSQLiteVectorCache(cfg.Embedding.CachePath)
		if err != nil {
			logger.Fatal("Failed to open embedding cache", zap.Error(err))
		}
		defer cache.Close()
		pipeline = indexer.NewPipeline(
			embedder,
			cache,
			indexer.NewChunker(cfg.Embedding.ChunkSize, cfg.Embedding.ChunkOverlap),
			cfg.Embedding.Model,
			cfg.Embedding.BatchSize,
			logger,
		)
	}

	scraper := scrape.NewCourseScraper(cfg.Scrape.CourseRepo, cfg.Scrape.CourseDir, logger)
	rescrape := func() {
		ctx := context.Background()
		n, err := scraper.Run(ctx)
		if err != nil {
			logger.Warn("course rescrape failed", zap.Error(err))
			return
		}
		logger.Info("course rescraped", zap.Int("files", n))
		if pipeline == nil {
			return
		}
		stats, err := pipeline.Run(ctx, cfg.Scrape.CourseDir, cfg.Scrape.PostsDir, cfg.Store.Path)
		if err != nil {
			logger.Warn("embed after rescrape failed", zap.Error(err))
			return
		}
		logger.Info("store rebuilt",
			zap.Int("chunks", stats.Chunks),
			zap.Int("cache_hits", stats.CacheHits),
			zap.Int("embedded", stats.Embedded),
		)
	}

	// Scrape once at startup; the watcher only reports changes.
	rescrape()

	w := watcher.New(
		cfg.Scrape.CourseRepo,
		scrape.WatchedExtensions(),
		time.Duration(cfg.Watch.DebounceMs)*time.Millisecond,
		rescrape,
		logger,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := w.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	w.Stop()
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct store mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = read the store directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	var status map[string]any
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		st, err := store.Load(cfg.Store.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load store: %v\n", err)
			os.Exit(1)
		}
		status = map[string]any{
			"records":         st.Len(),
			"dimensions":      st.Dimensions(),
			"sources":         st.CountBySource(),
			"skipped_records": st.Skipped(),
			"store_path":      st.Path(),
			"retrieval":       cfg.Ask.Retrieval,
			"version":         version,
		}
		if info, err := os.Stat(st.Path()); err == nil {
			status["store_file_bytes"] = info.Size()
		}
		if diskBytes, err := storage.DatabaseDiskUsage(cfg.Embedding.CachePath); err == nil {
			status["cache_disk_bytes"] = diskBytes
		}
	}

	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (map[string]any, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return status, nil
}

// Components holds initialized services.
type Components struct {
	Store     *store.Store
	Embedder  embedding.Embedder
	Completer llm.Completer
	Keywords  *keyword.Index
	Engine    *answer.Engine
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Completer != nil {
		_ = c.Completer.Close()
	}
	if c.Keywords != nil {
		_ = c.Keywords.Close()
	}
}

func embeddingClientConfig(cfg *config.Config) embedding.ClientConfig {
	return embedding.ClientConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKeyEnv:  cfg.Embedding.APIKeyEnv,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	st, err := store.Load(cfg.Store.Path, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	client, err := embedding.NewClient(embeddingClientConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	embedder := embedding.NewCachedEmbedder(client, cfg.Embedding.CacheSize)

	completer, err := llm.NewClient(llm.ClientConfig{
		BaseURL:     cfg.Completion.BaseURL,
		APIKeyEnv:   cfg.Completion.APIKeyEnv,
		Model:       cfg.Completion.Model,
		MaxTokens:   cfg.Completion.MaxTokens,
		Temperature: cfg.Completion.Temperature,
		Timeout:     time.Duration(cfg.Completion.TimeoutSecs) * time.Second,
	})
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	var keywords *keyword.Index
	if cfg.Ask.Retrieval == config.RetrievalKeyword {
		keywords, err = keyword.Build(st)
		if err != nil {
			_ = embedder.Close()
			_ = completer.Close()
			return nil, fmt.Errorf("failed to build keyword index: %w", err)
		}
	}

	var fetcher *fetch.Fetcher
	if cfg.Ask.FetchLinksOrDefault() {
		fetcher = fetch.New(0, cfg.Ask.FetchMaxBytes)
	}

	defaults := make([]models.CitationLink, 0, len(cfg.Links.Defaults))
	for _, l := range cfg.Links.Defaults {
		defaults = append(defaults, models.CitationLink{URL: l.URL, Text: l.Text})
	}

	engine := answer.NewEngine(answer.Params{
		Store:       st,
		Embedder:    embedder,
		Completer:   completer,
		Keywords:    keywords,
		Fetcher:     fetcher,
		Synthesizer: citation.NewSynthesizer(cfg.Links.ForumBaseURL, cfg.Links.CourseBaseURL, cfg.Links.DefaultURL),
		Ask:         &cfg.Ask,
		Defaults:    defaults,
		Logger:      logger,
	})

	logger.Info("components initialized",
		zap.Int("records", st.Len()),
		zap.Int("dimensions", st.Dimensions()),
		zap.String("retrieval", cfg.Ask.Retrieval),
	)

	return &Components{
		Store:     st,
		Embedder:  embedder,
		Completer: completer,
		Keywords:  keywords,
		Engine:    engine,
	}, nil
}

func printUsage() {
	fmt.Println(`joshu - Retrieval-augmented question answering for course forums

Usage:
  joshu server [flags]                 Start the HTTP API server
  joshu ask [flags] <question>         Answer a question
  joshu scrape <posts|course> [flags]  Collect forum posts or course files
  joshu embed [flags]                  Chunk and embed scraped documents into the store
  joshu watch [flags]                  Watch the course repo and rescrape on change
  joshu status [flags]                 Show store and server status
  joshu version                        Show version
  joshu help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/joshu/config.yaml)
  --host string      Listen host (overrides config)
  --port int         Listen port (overrides config)
  --debug            Enable debug logging (retrieval scores, prompt sizes, etc.)

Ask Flags:
  --config string    Config file path (for in-process mode)
  --http             Ask a running server over HTTP instead of answering in-process
  --server string    Server URL for --http (default: http://localhost:8080)
  --image string     Attach an image file to the question
  --link string      Attach a URL whose page content supplements the context
  --output string    Output format: text or json (default: text)

Scrape Flags:
  --config string    Config file path
  posts:  --base-url, --category, --from, --to, --out override the config
  course: --repo, --out override the config

Embed Flags:
  --config string    Config file path
  --force            Re-embed every chunk even when a cached vector exists

Watch Flags:
  --config string    Config file path
  --embed            Re-run the embed pipeline after each rescrape
  --debug            Enable debug logging (file events, watched directories)

Status Flags:
  --config string    Config file path (for direct store mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to read the store directly.
  --output string    Output format: text or json (default: text)

Examples:
  joshu server
  joshu ask "when is the GA5 deadline"
  joshu ask --output json "should I use gpt-4o-mini or gpt-3.5-turbo"
  joshu scrape posts --from 2025-01-01 --to 2025-04-14
  joshu scrape course
  joshu embed
  joshu watch --embed
  joshu status
  joshu status --output json`)
}
