package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"

	"github.com/m-mizutani/trek/pkg/adapter"
	"github.com/m-mizutani/trek/pkg/repository"
	"github.com/m-mizutani/trek/pkg/utils/logging"
)

// config holds configuration values
type config struct {
	logLevel string

	// Repository
	project     string
	database    string
	credentials string

	// LLM backend
	ollamaAddr string
	model      string
	maxTokens  int64

	// Identity provider
	firebaseAPIKey string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("TREK_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "credentials-file",
			Usage:       "Path to a service account credentials JSON file",
			Sources:     cli.EnvVars("GOOGLE_APPLICATION_CREDENTIALS"),
			Destination: &cfg.credentials,
		},
	}
}

// llmFlags returns flags for the generation backend with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "ollama-addr",
			Usage:       "Ollama server address",
			Value:       "http://127.0.0.1:11434",
			Sources:     cli.EnvVars("OLLAMA_ADDR"),
			Destination: &cfg.ollamaAddr,
		},
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "Model name to generate with",
			Value:       "llama3.2:1b",
			Sources:     cli.EnvVars("TREK_MODEL"),
			Destination: &cfg.model,
		},
		&cli.IntFlag{
			Name:        "max-tokens",
			Usage:       "Token limit per generation",
			Value:       2000,
			Sources:     cli.EnvVars("TREK_MAX_TOKENS"),
			Destination: &cfg.maxTokens,
		},
	}
}

// authFlags returns flags for the identity provider with destination config
func authFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firebase-api-key",
			Usage:       "Firebase web API key for password sign-in",
			Sources:     cli.EnvVars("FIREBASE_API_KEY"),
			Destination: &cfg.firebaseAPIKey,
		},
	}
}

// loggerContext installs a logger built from the configured level into the
// context and as the process default.
func (cfg *config) loggerContext(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

func (cfg *config) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if cfg.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.credentials))
	}
	return opts
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database, cfg.clientOptions()...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newLLM creates the Ollama generation backend
func (cfg *config) newLLM() adapter.LLM {
	return adapter.NewOllama(
		adapter.WithAddr(cfg.ollamaAddr),
		adapter.WithModel(cfg.model),
		adapter.WithMaxTokens(int(cfg.maxTokens)),
	)
}

// newIdentity creates the Firebase identity client
func (cfg *config) newIdentity(ctx context.Context) (adapter.Identity, error) {
	if cfg.firebaseAPIKey == "" {
		return nil, goerr.New("firebase-api-key is required")
	}

	identity, err := adapter.NewFirebase(ctx, cfg.firebaseAPIKey, cfg.clientOptions())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create identity client")
	}
	return identity, nil
}
