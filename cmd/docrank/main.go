package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/config"
	"github.com/kailas-cloud/docrank/internal/db"
	dbRedis "github.com/kailas-cloud/docrank/internal/db/redis"
	"github.com/kailas-cloud/docrank/internal/domain"
	"github.com/kailas-cloud/docrank/internal/loader"
	logpkg "github.com/kailas-cloud/docrank/internal/logger"
	"github.com/kailas-cloud/docrank/internal/metrics"
	"github.com/kailas-cloud/docrank/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/docrank/internal/transport/openai"
	"github.com/kailas-cloud/docrank/internal/usecase/lexical"
	"github.com/kailas-cloud/docrank/internal/usecase/relevance"
	"github.com/kailas-cloud/docrank/internal/usecase/report"
	"github.com/kailas-cloud/docrank/internal/usecase/similarity"
	"github.com/kailas-cloud/docrank/internal/version"
)

// docsFolderEnv is the environment fallback for the documents folder.
const docsFolderEnv = "DOCRANK_DOCS"

func main() {
	app := &cli.App{
		Name:    "docrank",
		Usage:   "Rank the text files of a folder against a free-text query",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "folder",
				Aliases: []string{"f"},
				Usage:   "Path to the documents folder",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Search query",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Embedding model name (overrides config)",
			},
		},
		Action: searchCommand,
		Commands: []*cli.Command{
			{
				Name:   "top-terms",
				Usage:  "Print the heaviest TF-IDF terms of the corpus",
				Action: topTermsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "folder",
						Aliases: []string{"f"},
						Usage:   "Path to the documents folder",
					},
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of terms to print",
						Value:   10,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.GetEnv())
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if model := c.String("model"); model != "" {
		cfg.Embedding.Model = model
	}

	logger, err := logpkg.New(config.GetEnv(), cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

func searchCommand(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docrank",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("batch_size", cfg.Embedding.BatchSize),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	folder, err := resolveFolder(c, cfg)
	if err != nil {
		return err
	}
	query, err := resolveQuery(c)
	if err != nil {
		return err
	}
	// The lexical signals score the leading query term, as typed.
	keyword := strings.ToLower(strings.Fields(query)[0])

	docs, err := loadDocuments(folder, cfg, logger)
	if err != nil {
		return err
	}

	ctx := logpkg.ContextWithLogger(c.Context, logger)

	embedder, cleanup, err := buildEmbedder(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// A failed probe is advisory: the similarity pass degrades to zero
	// scores on its own if the provider stays down.
	if hc, ok := embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			logger.Warn("Embedding provider unavailable, similarity may degrade", zap.Error(err))
		}
	}

	engine := similarity.NewEngine(embedder, docs, cfg.Embedding.BatchSize, logger)

	scorer, err := lexical.NewScorer(docs, lexical.Config{
		MaxFeatures: cfg.Lexical.MaxFeatures,
		StopWords:   cfg.Lexical.StopWords,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("fit lexical scorer: %w", err)
	}

	blender, err := relevance.NewBlender(cfg.Weights.ToDomain(), logger)
	if err != nil {
		return err
	}

	start := time.Now()

	simResult := engine.Similarities(ctx, query)
	tfidfScores := scorer.ScoresFor(keyword)

	records, err := blender.Blend(docs, simResult.Scores, tfidfScores, keyword)
	if err != nil {
		return fmt.Errorf("blend relevance: %w", err)
	}

	status := "ok"
	if simResult.Degraded {
		status = "degraded"
	}
	metrics.SearchesTotal.WithLabelValues(status).Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.DocumentsRankedTotal.Add(float64(len(records)))

	reporter := report.New(report.Config{
		OutputDir:       cfg.Output.Dir,
		TimestampFormat: cfg.Output.TimestampFormat,
		Logger:          logger,
	})
	fmt.Print(reporter.Render(records, keyword, query))

	path, err := reporter.Save(records, keyword, query)
	if err != nil {
		return err
	}
	fmt.Printf("Results have been saved in file: %s\n", path)

	logger.Info("Search finished",
		zap.Int("documents", len(records)),
		zap.String("keyword", keyword),
		zap.Bool("similarity_degraded", simResult.Degraded),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func topTermsCommand(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	folder, err := resolveFolder(c, cfg)
	if err != nil {
		return err
	}

	docs, err := loadDocuments(folder, cfg, logger)
	if err != nil {
		return err
	}

	scorer, err := lexical.NewScorer(docs, lexical.Config{
		MaxFeatures: cfg.Lexical.MaxFeatures,
		StopWords:   cfg.Lexical.StopWords,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("fit lexical scorer: %w", err)
	}

	for _, tw := range scorer.TopTerms(c.Int("count")) {
		fmt.Printf("%-24s %.4f\n", tw.Term, tw.Weight)
	}
	return nil
}

func loadDocuments(folder string, cfg config.Config, logger *zap.Logger) ([]domain.Document, error) {
	l, err := loader.New(loader.Config{
		Folder:    folder,
		Extension: cfg.Loader.Extension,
		Encoding:  cfg.Loader.Encoding,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	docs, err := l.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded documents", zap.String("folder", folder), zap.Int("count", len(docs)))
	return docs, nil
}

// buildEmbedder assembles the decorator chain: OpenAI-compatible provider,
// optionally wrapped by the Redis embedding cache.
func buildEmbedder(ctx context.Context, cfg config.Config, logger *zap.Logger) (domain.Embedder, func(), error) {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:   cfg.Embedding.APIKey,
		BaseURL:  cfg.Embedding.BaseURL,
		Model:    cfg.Embedding.Model,
		Provider: cfg.Embedding.Provider,
	})

	if !cfg.Cache.Enabled() {
		return base, func() {}, nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Username: cfg.Cache.Username,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create cache store: %w", err)
	}

	readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		// The cache is an optimization: fall back to the bare provider.
		logger.Warn("Embedding cache not ready, continuing without it", zap.Error(err))
		store.Close()
		return base, func() {}, nil
	}
	logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))

	var kv kvStore = store
	if cfg.Cache.TTLHours > 0 {
		kv = ttlStore{inner: store, ttl: time.Duration(cfg.Cache.TTLHours) * time.Hour}
	}

	cached := embcache.New(base, kv, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, logger)
	return cached, store.Close, nil
}

// kvStore is the slice of db.Store the embedding cache consumes.
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ttlStore routes writes through SetWithTTL so cached embeddings expire.
type ttlStore struct {
	inner db.Store
	ttl   time.Duration
}

func (s ttlStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, key)
}

func (s ttlStore) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.SetWithTTL(ctx, key, value, s.ttl)
}

func resolveFolder(c *cli.Context, cfg config.Config) (string, error) {
	if folder := c.String("folder"); folder != "" {
		return folder, nil
	}
	if cfg.Loader.Folder != "" {
		return cfg.Loader.Folder, nil
	}
	if folder := os.Getenv(docsFolderEnv); folder != "" {
		return folder, nil
	}
	return prompt("Enter the path to documents folder: ")
}

func resolveQuery(c *cli.Context) (string, error) {
	if query := strings.TrimSpace(c.String("query")); query != "" {
		return query, nil
	}
	return prompt("Enter a query to search the documents: ")
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("empty input")
	}
	return line, nil
}
