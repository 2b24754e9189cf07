package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mindbook/mindbook/cmd/mindbook/internal/config"
	"github.com/mindbook/mindbook/pkg/assist"
	"github.com/mindbook/mindbook/pkg/embed"
	"github.com/mindbook/mindbook/pkg/kv"
	"github.com/mindbook/mindbook/pkg/notegraph"
	"github.com/mindbook/mindbook/pkg/textgen"
)

var (
	// Global flags.
	verbose bool
	user    string
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:   "mindbook",
	Short: "Personal memory store with temporal and semantic recall",
	Long: `mindbook - capture notes and ask questions about them later.

Notes are embedded and indexed two ways: a date hierarchy (what happened
on January 5th) and a similarity web (what do I know about alice). Questions
are routed to whichever index fits and answered by a language model grounded
in the retrieved notes.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/mindbook/config.yaml
  Linux:   ~/.config/mindbook/config.yaml
  Windows: %AppData%/mindbook/config.yaml

Examples:
  mindbook add "met alice for coffee, she got a new job"
  mindbook ask "what is alice up to these days"
  mindbook ask --user bob "what happened on january 5th"
  mindbook wipe delete`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&user, "user", "u", "", "owner partition (default from config)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "note database directory (default from config)")
}

// runtime bundles everything a command needs to serve one invocation.
type runtime struct {
	cfg       *config.Config
	assistant *assist.Assistant
	owner     string

	kvStore kv.Store
}

func (r *runtime) close() {
	if r.kvStore != nil {
		if err := r.kvStore.Close(); err != nil {
			slog.Warn("closing note database", "err", err)
		}
	}
}

// newRuntime loads configuration and wires the full stack: badger,
// embedder, completer, note store, assistant.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	embedder, completer, err := buildProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dir := dataDir
	if dir == "" {
		dir = cfg.ResolveDataDir()
	}
	kvStore, err := kv.NewBadger(kv.BadgerOptions{
		Options: &kv.Options{Separator: notegraph.GraphSeparator},
		Dir:     dir,
	})
	if err != nil {
		return nil, fmt.Errorf("open note database: %w", err)
	}

	store := notegraph.NewStore(notegraph.Config{
		Store:           kvStore,
		Embedder:        embedder,
		RelateThreshold: cfg.RelateThreshold,
		SearchThreshold: cfg.SearchThreshold,
		TopK:            cfg.TopK,
		Symmetric:       cfg.Symmetric,
		Logger:          logger,
	})

	owner := user
	if owner == "" {
		owner = cfg.User
	}

	return &runtime{
		cfg: cfg,
		assistant: assist.New(assist.Config{
			Store:     store,
			Completer: completer,
			Logger:    logger,
		}),
		owner:   owner,
		kvStore: kvStore,
	}, nil
}

// buildProviders constructs the embedder and completer for the
// configured backend.
func buildProviders(ctx context.Context, cfg *config.Config) (embed.Embedder, textgen.Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		var eopts []embed.Option
		if cfg.OpenAI.EmbedModel != "" {
			eopts = append(eopts, embed.WithModel(cfg.OpenAI.EmbedModel))
		}
		if cfg.OpenAI.Dimension > 0 {
			eopts = append(eopts, embed.WithDimension(cfg.OpenAI.Dimension))
		}
		if cfg.OpenAI.BaseURL != "" {
			eopts = append(eopts, embed.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		var topts []textgen.Option
		if cfg.OpenAI.ChatModel != "" {
			topts = append(topts, textgen.WithModel(cfg.OpenAI.ChatModel))
		}
		if cfg.OpenAI.BaseURL != "" {
			topts = append(topts, textgen.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		return embed.NewOpenAI(cfg.OpenAI.APIKey, eopts...), textgen.NewOpenAI(cfg.OpenAI.APIKey, topts...), nil

	case config.ProviderGemini:
		var eopts []embed.Option
		if cfg.Gemini.EmbedModel != "" {
			eopts = append(eopts, embed.WithModel(cfg.Gemini.EmbedModel))
		}
		if cfg.Gemini.Dimension > 0 {
			eopts = append(eopts, embed.WithDimension(cfg.Gemini.Dimension))
		}
		embedder, err := embed.NewGemini(ctx, cfg.Gemini.APIKey, eopts...)
		if err != nil {
			return nil, nil, err
		}
		var topts []textgen.Option
		if cfg.Gemini.ChatModel != "" {
			topts = append(topts, textgen.WithModel(cfg.Gemini.ChatModel))
		}
		completer, err := textgen.NewGemini(ctx, cfg.Gemini.APIKey, topts...)
		if err != nil {
			return nil, nil, err
		}
		return embedder, completer, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func logLevel() slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
