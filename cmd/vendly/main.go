package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/redis/go-redis/v9"
	"github.com/viant/afs"
	"github.com/viant/vendly/cache"
	rediscache "github.com/viant/vendly/cache/redis"
	"github.com/viant/vendly/cache/semantic"
	"github.com/viant/vendly/config"
	"github.com/viant/vendly/embeddings"
	"github.com/viant/vendly/embeddings/voyageai"
	"github.com/viant/vendly/llms"
	"github.com/viant/vendly/llms/ai21"
	"github.com/viant/vendly/llms/together"
	"github.com/viant/vendly/vectordb/sqlitevec"
)

func main() {
	startGops()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "embed":
		embedCmd(os.Args[2:])
	case "chat":
		chatCmd(os.Args[2:])
	case "cache":
		cacheCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: vendly <command> [options]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  embed   Embed texts through a configured provider")
	fmt.Fprintln(os.Stderr, "  chat    One-shot chat completion (ai21|together)")
	fmt.Fprintln(os.Stderr, "  cache   Operate on an LLM cache (lookup/update/clear)")
}

func embedCmd(args []string) {
	flags := flag.NewFlagSet("embed", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	provider := flags.String("provider", "", "embedder: voyageai|simple")
	model := flags.String("model", "", "embedding model")
	apiKey := flags.String("key", "", "API key (optional, defaults to provider env variable)")
	batch := flags.Int("batch", 0, "per-request batch size (0 uses the model default)")
	truncation := flags.Bool("truncation", false, "ask the provider to truncate over-long inputs")
	progress := flags.Bool("progress", false, "show per-chunk progress")
	input := flags.String("input", "", "URL or path of a file with one text per line (default: stdin)")
	asQuery := flags.Bool("query", false, "embed a single text as a search query")
	dims := flags.Bool("dims", false, "print vector dimensions instead of values")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := loadConfig(*configPath)
	embedder := selectEmbedder(ctx, cfg, *provider, *model, *apiKey, *batch, *truncation, *progress)

	texts, err := readTexts(ctx, *input)
	if err != nil {
		log.Fatalf("embed: read input: %v", err)
	}

	var vectors [][]float32
	if *asQuery {
		if len(texts) != 1 {
			log.Fatalf("embed: -query expects exactly one input text, got %d", len(texts))
		}
		vector, err := embedder.EmbedQuery(ctx, texts[0])
		if err != nil {
			log.Fatalf("embed: %v", err)
		}
		vectors = [][]float32{vector}
	} else {
		if vectors, err = embedder.EmbedDocuments(ctx, texts); err != nil {
			log.Fatalf("embed: %v", err)
		}
	}

	writer := json.NewEncoder(os.Stdout)
	if *dims {
		for _, vector := range vectors {
			fmt.Println(len(vector))
		}
		return
	}
	for _, vector := range vectors {
		if err := writer.Encode(vector); err != nil {
			log.Fatalf("embed: write output: %v", err)
		}
	}
}

func chatCmd(args []string) {
	flags := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	provider := flags.String("provider", "", "chat model: ai21|together")
	model := flags.String("model", "", "model name")
	apiKey := flags.String("key", "", "API key (optional, defaults to provider env variable)")
	prompt := flags.String("prompt", "", "user prompt (required)")
	system := flags.String("system", "", "system prompt (optional)")
	maxTokens := flags.Int("max-tokens", 0, "completion token limit")
	temperature := flags.Float64("temperature", 0, "sampling temperature")
	flags.Parse(args)

	if *prompt == "" {
		log.Fatalf("chat: -prompt is required")
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := loadConfig(*configPath)
	chat := selectChatModel(cfg, *provider, *model, *apiKey)

	request := llms.ChatRequest{MaxTokens: *maxTokens, Temperature: *temperature}
	if *system != "" {
		request.Messages = append(request.Messages, llms.Message{Role: llms.RoleSystem, Content: *system})
	}
	request.Messages = append(request.Messages, llms.Message{Role: llms.RoleUser, Content: *prompt})

	response, err := chat.Generate(ctx, request)
	if err != nil {
		log.Fatalf("chat: %v", err)
	}
	for _, generation := range response.Generations {
		fmt.Println(generation.Text)
	}
}

func cacheCmd(args []string) {
	flags := flag.NewFlagSet("cache", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	driver := flags.String("driver", "", "cache driver: redis|semantic")
	addr := flags.String("addr", "", "redis address (driver=redis)")
	dsn := flags.String("dsn", "", "sqlite DSN (driver=semantic)")
	op := flags.String("op", "lookup", "operation: lookup|update|clear")
	prompt := flags.String("prompt", "", "prompt text")
	llmString := flags.String("llm", "", "llm identity string")
	text := flags.String("text", "", "generation text to store (op=update)")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := loadConfig(*configPath)
	llmCache := selectCache(ctx, cfg, *driver, *addr, *dsn)

	switch *op {
	case "lookup":
		generations, err := llmCache.Lookup(ctx, *prompt, *llmString)
		if err != nil {
			log.Fatalf("cache lookup: %v", err)
		}
		if generations == nil {
			fmt.Println("miss")
			return
		}
		for _, generation := range generations {
			fmt.Println(generation.Text)
		}
	case "update":
		if *text == "" {
			log.Fatalf("cache update: -text is required")
		}
		if err := llmCache.Update(ctx, *prompt, *llmString, []llms.Generation{{Text: *text}}); err != nil {
			log.Fatalf("cache update: %v", err)
		}
	case "clear":
		if err := llmCache.Clear(ctx); err != nil {
			log.Fatalf("cache clear: %v", err)
		}
	default:
		log.Fatalf("cache: unknown operation %q", *op)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return &config.Config{}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func selectEmbedder(ctx context.Context, cfg *config.Config, provider, model, apiKey string, batch int, truncation, progress bool) embeddings.Embedder {
	if provider == "" {
		provider = cfg.Embeddings.Provider
	}
	if model == "" {
		model = cfg.Embeddings.Model
	}
	if apiKey == "" {
		apiKey = cfg.Embeddings.APIKey
	}
	if batch == 0 {
		batch = cfg.Embeddings.BatchSize
	}
	switch provider {
	case "", "simple":
		return embeddings.NewSimpleEmbedder(64)
	case "voyageai":
		opts := []voyageai.Option{voyageai.WithBatchSizeTable(cfg.Embeddings.BatchSizes)}
		if batch > 0 {
			opts = append(opts, voyageai.WithBatchSize(batch))
		}
		if truncation || (cfg.Embeddings.Truncation != nil && *cfg.Embeddings.Truncation) {
			opts = append(opts, voyageai.WithClientOptions(voyageai.WithTruncation(true)))
		}
		if progress || cfg.Embeddings.Progress {
			opts = append(opts, voyageai.WithProgress(func(done, total int) {
				fmt.Fprintf(os.Stderr, "\rembedding chunk %d/%d", done, total)
				if done == total {
					fmt.Fprintln(os.Stderr)
				}
			}))
		}
		embedder, err := voyageai.New(apiKey, model, opts...)
		if err != nil {
			log.Fatalf("embed: %v", err)
		}
		return embedder
	default:
		log.Fatalf("embed: unknown provider %q", provider)
		return nil
	}
}

func selectChatModel(cfg *config.Config, provider, model, apiKey string) llms.ChatModel {
	if provider == "" {
		provider = cfg.Chat.Provider
	}
	if model == "" {
		model = cfg.Chat.Model
	}
	if apiKey == "" {
		apiKey = cfg.Chat.APIKey
	}
	switch provider {
	case "ai21":
		chat, err := ai21.New(model, ai21.Config{APIKey: apiKey, APIHost: cfg.Chat.APIHost})
		if err != nil {
			log.Fatalf("chat: %v", err)
		}
		return chat
	case "together":
		chat, err := together.New(apiKey, model)
		if err != nil {
			log.Fatalf("chat: %v", err)
		}
		return chat
	default:
		log.Fatalf("chat: unknown provider %q", provider)
		return nil
	}
}

func selectCache(ctx context.Context, cfg *config.Config, driver, addr, dsn string) cache.LLMCache {
	if driver == "" {
		driver = cfg.Cache.Driver
	}
	if addr == "" {
		addr = cfg.Cache.Addr
	}
	if dsn == "" {
		dsn = cfg.Cache.DSN
	}
	switch driver {
	case "redis":
		if addr == "" {
			addr = "localhost:6379"
		}
		client := redis.NewClient(&redis.Options{Addr: addr})
		opts := []rediscache.Option{}
		if cfg.Cache.Prefix != "" {
			opts = append(opts, rediscache.WithPrefix(cfg.Cache.Prefix))
		}
		redisCache, err := rediscache.New(client, opts...)
		if err != nil {
			log.Fatalf("cache: %v", err)
		}
		return redisCache
	case "semantic":
		if dsn == "" {
			log.Fatalf("cache: -dsn is required for the semantic driver")
		}
		store, err := sqlitevec.NewStore(sqlitevec.WithDSN(dsn))
		if err != nil {
			log.Fatalf("cache: %v", err)
		}
		embedder := selectEmbedder(ctx, cfg, "", "", "", 0, false, false)
		opts := []semantic.Option{}
		if cfg.Cache.Threshold > 0 {
			opts = append(opts, semantic.WithScoreThreshold(cfg.Cache.Threshold))
		}
		semanticCache, err := semantic.New(store, embedder, opts...)
		if err != nil {
			log.Fatalf("cache: %v", err)
		}
		return semanticCache
	case "", "memory":
		return cache.NewMemory()
	default:
		log.Fatalf("cache: unknown driver %q", driver)
		return nil
	}
}

func readTexts(ctx context.Context, input string) ([]string, error) {
	var data []byte
	var err error
	if input == "" {
		if data, err = os.ReadFile("/dev/stdin"); err != nil {
			return nil, err
		}
	} else {
		fs := afs.New()
		if data, err = fs.DownloadWithURL(ctx, input); err != nil {
			return nil, err
		}
	}
	var texts []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			texts = append(texts, trimmed)
		}
	}
	return texts, nil
}

func startGops() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}
