package suggest

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rakki194/nlrouter/internal/domain"
	"github.com/rakki194/nlrouter/internal/infra/registry"
	"github.com/rakki194/nlrouter/internal/infra/routercache"
	"github.com/rakki194/nlrouter/internal/infra/scoring"
	"github.com/rakki194/nlrouter/internal/infra/telemetry"
)

// Observer receives one observation per pipeline request. The cache outcome
// is CacheOutcomeNone when the request failed before the cache was consulted.
type Observer interface {
	ObserveSuggest(duration time.Duration, cache telemetry.CacheOutcome, err error)
}

// Pipeline answers suggestion requests: cache check, candidate fetch,
// scoring, truncation, response build, cache store. Failures are wrapped and
// re-raised; no retries, no partial results.
type Pipeline struct {
	registry       *registry.Registry
	cache          *routercache.Cache
	scorer         *scoring.Scorer
	emitter        *Emitter
	clock          domain.Clock
	logger         *zap.Logger
	observers      []Observer
	maxSuggestions int
	minScore       float64
}

// Config wires a pipeline.
type Config struct {
	Registry  *registry.Registry
	Cache     *routercache.Cache
	Scorer    *scoring.Scorer
	Emitter   *Emitter
	Clock     domain.Clock
	Logger    *zap.Logger
	Observers []Observer

	// Limits applied when a request leaves them unset; zero values fall back
	// to the package defaults.
	MaxSuggestions int
	MinScore       float64
}

// NewPipeline builds a pipeline from its collaborators.
func NewPipeline(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = domain.SystemClock()
	}
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = NewEmitter()
	}
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = scoring.NewScorer(scoring.DefaultWeights())
	}
	maxSuggestions := cfg.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = domain.DefaultMaxSuggestions
	}
	minScore := cfg.MinScore
	if minScore <= 0 {
		minScore = domain.DefaultMinScore
	}
	return &Pipeline{
		registry:       cfg.Registry,
		cache:          cfg.Cache,
		scorer:         scorer,
		emitter:        emitter,
		clock:          clock,
		logger:         logger.Named("suggest"),
		observers:      cfg.Observers,
		maxSuggestions: maxSuggestions,
		minScore:       minScore,
	}
}

// Emitter returns the pipeline's event emitter for subscription.
func (p *Pipeline) Emitter() *Emitter { return p.emitter }

// Suggest processes one request.
func (p *Pipeline) Suggest(ctx context.Context, req domain.SuggestRequest) (domain.SuggestResponse, error) {
	const op = "suggest"
	start := p.clock.Now()

	ctx, meta := telemetry.EnsureRequestMeta(ctx, req.RequestID)
	logger := telemetry.LoggerWithRequest(ctx, p.logger)

	req = p.normalizeRequest(req)
	if strings.TrimSpace(req.Text) == "" {
		err := domain.Wrap(domain.CodeInvalidArgument, op, domain.ErrEmptyQuery)
		p.finish(meta.RequestID, "", start, telemetry.CacheOutcomeNone, 0, err, logger)
		return domain.SuggestResponse{}, err
	}

	key, err := routercache.Key(req)
	if err != nil {
		wrapped := domain.Wrap(domain.CodeInternal, op, err)
		p.finish(meta.RequestID, "", start, telemetry.CacheOutcomeNone, 0, wrapped, logger)
		return domain.SuggestResponse{}, wrapped
	}

	if cached, age, ok := p.cache.Get(key); ok {
		elapsed := p.clock.Now().Sub(start)
		cached.RequestID = meta.RequestID
		cached.ProcessingTime = elapsed
		cached.CacheInfo = domain.CacheInfo{Hit: true, Key: key, Age: age}

		p.emit(Event{
			Name:      EventCacheHit,
			RequestID: meta.RequestID,
			CacheKey:  key,
			Duration:  elapsed,
		})
		p.observe(elapsed, telemetry.CacheOutcomeHit, nil)
		logger.Debug("served from cache",
			telemetry.CacheKeyField(key),
			telemetry.DurationField(elapsed),
		)
		return cached, nil
	}

	p.emit(Event{Name: EventCacheMiss, RequestID: meta.RequestID, CacheKey: key})

	if p.registry.Size() == 0 {
		err := domain.Wrap(domain.CodeFailedPrecond, op, domain.ErrNoToolsAvailable)
		p.finish(meta.RequestID, key, start, telemetry.CacheOutcomeMiss, 0, err, logger)
		return domain.SuggestResponse{}, err
	}

	if err := ctx.Err(); err != nil {
		wrapped := domain.Wrap(domain.CodeCanceled, op, err)
		p.finish(meta.RequestID, key, start, telemetry.CacheOutcomeMiss, 0, wrapped, logger)
		return domain.SuggestResponse{}, wrapped
	}

	candidates := p.registry.ContextualTools(req.Context)
	ranked := p.scorer.Rank(req.Text, candidates, req.Context)

	suggestions := make([]domain.Suggestion, 0, req.MaxSuggestions)
	for _, result := range ranked {
		if result.Score < req.MinScore {
			continue
		}
		if len(suggestions) >= req.MaxSuggestions {
			break
		}
		suggestion := domain.Suggestion{
			Tool:           result.Tool,
			Score:          result.Score,
			ParameterHints: parameterHints(result.Tool, req.Context),
		}
		if req.IncludeReasoning {
			suggestion.Reasoning = result.Reasoning
		}
		suggestions = append(suggestions, suggestion)
	}

	elapsed := p.clock.Now().Sub(start)
	response := domain.SuggestResponse{
		Suggestions:    suggestions,
		RequestID:      meta.RequestID,
		ProcessingTime: elapsed,
		CacheInfo:      domain.CacheInfo{Hit: false, Key: key},
	}
	p.cache.Set(key, response)

	p.emit(Event{
		Name:        EventSuggestionComplete,
		RequestID:   meta.RequestID,
		CacheKey:    key,
		Suggestions: len(suggestions),
		Duration:    elapsed,
	})
	p.observe(elapsed, telemetry.CacheOutcomeMiss, nil)
	logger.Debug("suggestions built",
		zap.Int("candidates", len(candidates)),
		zap.Int("suggestions", len(suggestions)),
		telemetry.DurationField(elapsed),
	)
	return response, nil
}

// Cleanup proactively purges expired cache entries.
func (p *Pipeline) Cleanup() int {
	return p.cache.Cleanup()
}

func (p *Pipeline) finish(requestID, key string, start time.Time, cache telemetry.CacheOutcome, suggestions int, err error, logger *zap.Logger) {
	elapsed := p.clock.Now().Sub(start)
	p.emit(Event{
		Name:        EventError,
		RequestID:   requestID,
		CacheKey:    key,
		Suggestions: suggestions,
		Duration:    elapsed,
		Error:       err.Error(),
	})
	p.observe(elapsed, cache, err)
	logger.Warn("suggestion request failed", zap.Error(err), telemetry.DurationField(elapsed))
}

func (p *Pipeline) emit(event Event) {
	event.Timestamp = p.clock.Now()
	p.emitter.Emit(event)
}

func (p *Pipeline) observe(duration time.Duration, cache telemetry.CacheOutcome, err error) {
	for _, observer := range p.observers {
		observer.ObserveSuggest(duration, cache, err)
	}
}

func (p *Pipeline) normalizeRequest(req domain.SuggestRequest) domain.SuggestRequest {
	if req.MaxSuggestions <= 0 {
		req.MaxSuggestions = p.maxSuggestions
	}
	if req.MinScore <= 0 {
		req.MinScore = p.minScore
	}
	return req
}

// parameterHints fills obvious parameter values from the request context.
func parameterHints(tool domain.Tool, ctx domain.QueryContext) map[string]string {
	hints := make(map[string]string)
	for _, param := range tool.Parameters {
		name := strings.ToLower(param.Name)
		switch {
		case ctx.CurrentPath != "" && (name == "path" || name == "directory" || name == "cwd"):
			hints[param.Name] = ctx.CurrentPath
		case len(ctx.SelectedItems) == 1 && (name == "file" || name == "item" || name == "target"):
			hints[param.Name] = ctx.SelectedItems[0]
		case len(ctx.SelectedItems) > 1 && (name == "files" || name == "items" || name == "targets"):
			hints[param.Name] = strings.Join(ctx.SelectedItems, ",")
		}
	}
	if len(hints) == 0 {
		return nil
	}
	return hints
}
