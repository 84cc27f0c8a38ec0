package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rakki194/nlrouter/internal/domain"
	"github.com/rakki194/nlrouter/internal/infra/scoring"
)

// Catalog is the normalized content of a router config file: the tool
// descriptors plus the runtime settings.
type Catalog struct {
	Tools   []domain.Tool
	Runtime Runtime
}

// Runtime holds the router's runtime settings.
type Runtime struct {
	CacheTTL            time.Duration
	MaxCacheSize        int
	MaxSuggestions      int
	MinScore            float64
	HealthCheckInterval time.Duration
	ListenAddress       string
	StorePath           string
	Weights             scoring.Weights
}

// Loader reads and validates router config files.
type Loader struct {
	logger   *zap.Logger
	validate *validator.Validate
}

type rawCatalog struct {
	Tools         []rawTool        `mapstructure:"tools" validate:"dive"`
	Cache         rawCacheConfig   `mapstructure:"cache"`
	Suggestions   rawSuggestConfig `mapstructure:"suggestions"`
	Weights       rawWeights       `mapstructure:"weights"`
	Observability rawObservability `mapstructure:"observability"`
	Health        rawHealthConfig  `mapstructure:"health"`
	StorePath     string           `mapstructure:"storePath"`
}

type rawTool struct {
	Name           string         `mapstructure:"name" validate:"required"`
	Description    string         `mapstructure:"description" validate:"required"`
	Category       string         `mapstructure:"category" validate:"required"`
	Method         string         `mapstructure:"method" validate:"omitempty,oneof=function http mcp"`
	Tags           []string       `mapstructure:"tags"`
	Parameters     []rawParameter `mapstructure:"parameters" validate:"dive"`
	Examples       []string       `mapstructure:"examples"`
	Enabled        *bool          `mapstructure:"enabled"`
	Priority       float64        `mapstructure:"priority" validate:"gte=0"`
	TimeoutSeconds int            `mapstructure:"timeoutSeconds" validate:"gte=0"`
}

type rawParameter struct {
	Name        string   `mapstructure:"name" validate:"required"`
	Type        string   `mapstructure:"type" validate:"required"`
	Required    bool     `mapstructure:"required"`
	Default     any      `mapstructure:"default"`
	Constraints []string `mapstructure:"constraints"`
	Description string   `mapstructure:"description"`
}

type rawCacheConfig struct {
	TTLSeconds int `mapstructure:"ttlSeconds" validate:"gte=0"`
	MaxSize    int `mapstructure:"maxSize" validate:"gte=0"`
}

type rawSuggestConfig struct {
	Max      int     `mapstructure:"max" validate:"gte=0"`
	MinScore float64 `mapstructure:"minScore" validate:"gte=0"`
}

type rawWeights struct {
	PriorityFactor  *float64 `mapstructure:"priorityFactor"`
	NameMatch       *float64 `mapstructure:"nameMatch"`
	DescriptionWord *float64 `mapstructure:"descriptionWord"`
	TagMatch        *float64 `mapstructure:"tagMatch"`
	ExampleMatch    *float64 `mapstructure:"exampleMatch"`
	PathBonus       *float64 `mapstructure:"pathBonus"`
	GitBonus        *float64 `mapstructure:"gitBonus"`
	DirtyCommit     *float64 `mapstructure:"dirtyCommit"`
	BatchBonus      *float64 `mapstructure:"batchBonus"`
	SingleItemBonus *float64 `mapstructure:"singleItemBonus"`
	PreferenceBonus *float64 `mapstructure:"preferenceBonus"`
	MaxScore        *float64 `mapstructure:"maxScore"`
}

type rawObservability struct {
	ListenAddress string `mapstructure:"listenAddress"`
}

type rawHealthConfig struct {
	CheckSeconds int `mapstructure:"checkSeconds" validate:"gte=0"`
}

// NewLoader creates a loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger:   logger.Named("catalog"),
		validate: validator.New(),
	}
}

func newCatalogViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.ttlSeconds", int(domain.DefaultCacheTTL/time.Second))
	v.SetDefault("cache.maxSize", domain.DefaultMaxCacheSize)
	v.SetDefault("suggestions.max", domain.DefaultMaxSuggestions)
	v.SetDefault("suggestions.minScore", domain.DefaultMinScore)
	v.SetDefault("health.checkSeconds", int(domain.DefaultHealthCheckInterval/time.Second))
	v.SetDefault("observability.listenAddress", domain.DefaultListenAddress)
}

// Load reads, validates, and normalizes a config file.
func (l *Loader) Load(ctx context.Context, path string) (Catalog, error) {
	if path == "" {
		return Catalog{}, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read config: %w", err)
	}

	expanded, missing, err := expandConfigEnv(data)
	if err != nil {
		return Catalog{}, err
	}
	if len(missing) > 0 {
		l.logger.Warn("missing environment variables in config", zap.String("path", path), zap.Strings("missing", missing))
	}

	v := newCatalogViper()
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return Catalog{}, fmt.Errorf("parse config: %w", err)
	}

	var cfg rawCatalog
	if err := v.Unmarshal(&cfg); err != nil {
		return Catalog{}, fmt.Errorf("decode config: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return Catalog{}, err
	}

	if err := l.validate.Struct(cfg); err != nil {
		return Catalog{}, fmt.Errorf("validate config: %w", err)
	}

	var validationErrors []string
	nameSeen := make(map[string]struct{})
	tools := make([]domain.Tool, 0, len(cfg.Tools))

	for i, raw := range cfg.Tools {
		tool := normalizeTool(raw)
		if _, exists := nameSeen[tool.Name]; exists {
			validationErrors = append(validationErrors, fmt.Sprintf("tools[%d]: duplicate name %q", i, tool.Name))
			continue
		}
		nameSeen[tool.Name] = struct{}{}

		if err := tool.Validate(); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("tools[%d]: %v", i, err))
			continue
		}
		tools = append(tools, tool)
	}

	if len(validationErrors) > 0 {
		return Catalog{}, errors.New(strings.Join(validationErrors, "; "))
	}

	return Catalog{
		Tools:   tools,
		Runtime: normalizeRuntime(cfg),
	}, nil
}

func normalizeTool(raw rawTool) domain.Tool {
	method := domain.Method(raw.Method)
	if raw.Method == "" {
		method = domain.MethodFunction
	}
	enabled := true
	if raw.Enabled != nil {
		enabled = *raw.Enabled
	}
	timeout := domain.DefaultToolTimeout
	if raw.TimeoutSeconds > 0 {
		timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}

	params := make([]domain.Parameter, 0, len(raw.Parameters))
	for _, p := range raw.Parameters {
		params = append(params, domain.Parameter{
			Name:        p.Name,
			Type:        p.Type,
			Required:    p.Required,
			Default:     p.Default,
			Constraints: p.Constraints,
			Description: p.Description,
		})
	}
	if len(params) == 0 {
		params = nil
	}

	return domain.Tool{
		Name:        strings.TrimSpace(raw.Name),
		Description: strings.TrimSpace(raw.Description),
		Category:    strings.TrimSpace(raw.Category),
		Method:      method,
		Tags:        raw.Tags,
		Parameters:  params,
		Examples:    raw.Examples,
		Enabled:     enabled,
		Priority:    raw.Priority,
		Timeout:     timeout,
	}
}

func normalizeRuntime(cfg rawCatalog) Runtime {
	runtime := Runtime{
		CacheTTL:            time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		MaxCacheSize:        cfg.Cache.MaxSize,
		MaxSuggestions:      cfg.Suggestions.Max,
		MinScore:            cfg.Suggestions.MinScore,
		HealthCheckInterval: time.Duration(cfg.Health.CheckSeconds) * time.Second,
		ListenAddress:       cfg.Observability.ListenAddress,
		StorePath:           cfg.StorePath,
		Weights:             normalizeWeights(cfg.Weights),
	}
	return runtime
}

func normalizeWeights(raw rawWeights) scoring.Weights {
	weights := scoring.DefaultWeights()
	apply := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&weights.PriorityFactor, raw.PriorityFactor)
	apply(&weights.NameMatch, raw.NameMatch)
	apply(&weights.DescriptionWord, raw.DescriptionWord)
	apply(&weights.TagMatch, raw.TagMatch)
	apply(&weights.ExampleMatch, raw.ExampleMatch)
	apply(&weights.PathBonus, raw.PathBonus)
	apply(&weights.GitBonus, raw.GitBonus)
	apply(&weights.DirtyCommit, raw.DirtyCommit)
	apply(&weights.BatchBonus, raw.BatchBonus)
	apply(&weights.SingleItemBonus, raw.SingleItemBonus)
	apply(&weights.PreferenceBonus, raw.PreferenceBonus)
	apply(&weights.MaxScore, raw.MaxScore)
	return weights
}
