// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	apperrors "storygen-ai-api/pkg/errors"
)

const defaultConfigDir = "configs"

// ${VAR} 或 ${VAR:default}
// g1: 变量名, g2: 默认值部分（含冒号）, g3: 默认值内容
var envPlaceholder = regexp.MustCompile(`\${(\w+)(:([^}]*))?}`)

type loadOptions struct {
	dir    string
	env    string
	apiKey string
}

// Option 加载选项
type Option func(*loadOptions)

// WithConfigDir 指定配置目录，默认 configs
func WithConfigDir(dir string) Option {
	return func(o *loadOptions) { o.dir = dir }
}

// WithEnv 指定环境名，默认取 APP_ENV
func WithEnv(env string) Option {
	return func(o *loadOptions) { o.env = env }
}

// WithAPIKey 显式传入的 API Key 优先于配置文件与环境变量
func WithAPIKey(key string) Option {
	return func(o *loadOptions) { o.apiKey = key }
}

// Load 加载配置文件
// 按优先级加载：默认配置 -> 环境配置 -> 环境变量 -> 显式参数
func Load(opts ...Option) (*Config, error) {
	o := loadOptions{dir: defaultConfigDir, env: os.Getenv("APP_ENV")}
	for _, opt := range opts {
		opt(&o)
	}
	if o.env == "" {
		o.env = "development"
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 加载默认配置（缺失时完全依赖默认值和环境变量）
	if err := loadConfigFile(v, filepath.Join(o.dir, "config.yaml")); err != nil {
		return nil, err
	}

	// 2. 加载环境特定配置
	if err := loadConfigFile(v, filepath.Join(o.dir, fmt.Sprintf("config.%s.yaml", o.env))); err != nil {
		return nil, err
	}

	// 3. 绑定环境变量 (直接覆盖)，groq.api_key -> GROQ_API_KEY
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if key := strings.TrimSpace(o.apiKey); key != "" {
		cfg.Groq.APIKey = key
	}
	cfg.App.Env = o.env

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验必填项
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Groq.APIKey) == "" {
		return apperrors.Configuration(
			"groq api key not found: set GROQ_API_KEY or pass it explicitly (get one at https://console.groq.com/)")
	}
	if c.Normalizer.SimilarityThreshold <= 0 || c.Normalizer.SimilarityThreshold > 1 {
		return apperrors.Configuration("normalizer.similarity_threshold must be within (0, 1]")
	}
	if c.Groq.Temperature < 0 || c.Groq.Temperature > 2 {
		return apperrors.Configuration("groq.temperature must be within [0, 2]")
	}
	if c.Groq.TopP <= 0 || c.Groq.TopP > 1 {
		return apperrors.Configuration("groq.top_p must be within (0, 1]")
	}
	return nil
}

// loadConfigFile 读取文件，执行环境变量替换，并加载到 viper
func loadConfigFile(v *viper.Viper, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	reader := strings.NewReader(expandEnv(string(content)))
	if v.ConfigFileUsed() == "" {
		if err := v.ReadConfig(reader); err != nil {
			return fmt.Errorf("failed to read processed config %s: %w", path, err)
		}
		v.SetConfigFile(path)
		return nil
	}
	if err := v.MergeConfig(reader); err != nil {
		return fmt.Errorf("failed to merge processed config %s: %w", path, err)
	}
	return nil
}

// expandEnv 替换字符串中的 ${VAR:default} 占位符，未定义且无默认值的保留原样
func expandEnv(s string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envPlaceholder.FindStringSubmatch(match)
		key := submatch[1]
		hasDefault := submatch[2] != ""
		defVal := submatch[3]

		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		if hasDefault {
			return defVal
		}
		return match
	})
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "storygen-ai-api")
	v.SetDefault("app.version", "v0.0.0")

	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	// 一次生成包含三次串行调用，每次最长 60s
	v.SetDefault("server.http.write_timeout", "200s")
	v.SetDefault("server.http.idle_timeout", "120s")
	v.SetDefault("server.http.shutdown_timeout", "15s")

	// 键需要先注册，AutomaticEnv 才能在 Unmarshal 时生效
	v.SetDefault("groq.api_key", "")
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.timeout", "60s")
	v.SetDefault("groq.rate_limit_backoff", "2s")
	v.SetDefault("groq.temperature", 0.8)
	v.SetDefault("groq.top_p", 0.9)
	v.SetDefault("groq.max_tokens", 1000)
	v.SetDefault("groq.probe_max_tokens", 10)
	v.SetDefault("groq.select_on_startup", true)

	v.SetDefault("normalizer.similarity_threshold", 0.7)
	v.SetDefault("normalizer.window", 2)
	v.SetDefault("normalizer.min_sentence_length", 10)

	v.SetDefault("image_prompt.max_length", 300)

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.logging.output", "stdout")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
}
