package main

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"storygen-ai-api/internal/application/story"
	"storygen-ai-api/internal/config"
	"storygen-ai-api/internal/wire"
	"storygen-ai-api/pkg/logger"
)

type rootOptions struct {
	apiKey    string
	configDir string
	env       string
	logLevel  string
	pretty    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "storyctl",
		Short: "Generate short stories and image prompts with Groq models",
		Long: `storyctl talks to the Groq chat completion API directly.

The API key is read from --api-key, then GROQ_API_KEY (a .env file in the
working directory is loaded first).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "Groq API key (overrides GROQ_API_KEY)")
	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", "configs", "Directory containing config.yaml")
	root.PersistentFlags().StringVar(&opts.env, "config-env", "", "Config environment (defaults to APP_ENV)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", true, "Pretty print JSON output")

	root.AddCommand(
		generateCmd(opts),
		modelsCmd(opts),
		infoCmd(opts),
		imagePromptsCmd(opts),
	)
	return root
}

// service 按命令行参数加载配置并组装故事生成服务
func (o *rootOptions) service(cmd *cobra.Command) (*story.Service, *slog.Logger, error) {
	loadOpts := []config.Option{config.WithConfigDir(o.configDir), config.WithAPIKey(o.apiKey)}
	if o.env != "" {
		loadOpts = append(loadOpts, config.WithEnv(o.env))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(logger.Config{
		Level:  o.logLevel,
		Format: "text",
		Output: cmd.ErrOrStderr(),
	})

	svc, err := wire.InitializeStoryService(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return svc, log, nil
}

func (o *rootOptions) print(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if o.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
