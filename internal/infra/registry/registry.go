package registry

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/rakki194/nlrouter/internal/domain"
)

// Registry owns the tool map and the two derived indices. Every tool name
// present in an index bucket exists in the main map; empty buckets are pruned
// on unregister.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]domain.Tool
	byCategory map[string]map[string]struct{}
	byTag      map[string]map[string]struct{}
	logger     *zap.Logger
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tools:      make(map[string]domain.Tool),
		byCategory: make(map[string]map[string]struct{}),
		byTag:      make(map[string]map[string]struct{}),
		logger:     logger.Named("registry"),
	}
}

// Register validates and inserts a tool. A tool with the same name is
// silently replaced (unregister-then-insert). Validation failure leaves the
// registry untouched.
func (r *Registry) Register(tool domain.Tool) error {
	if err := tool.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		r.removeLocked(tool.Name)
		r.logger.Debug("tool replaced", zap.String("tool", tool.Name))
	}

	stored := domain.CloneTool(tool)
	r.tools[stored.Name] = stored
	r.indexLocked(stored)
	return nil
}

// Unregister removes a tool and prunes its index entries. Absent names are a
// no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(name)
}

// Get returns a copy of a tool by name.
func (r *Registry) Get(name string) (domain.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return domain.Tool{}, false
	}
	return domain.CloneTool(tool), true
}

// Has reports whether a tool is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// List returns all tools sorted by name.
func (r *Registry) List() []domain.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, domain.CloneTool(tool))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Size returns the number of registered tools.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Categories returns every category with at least one tool, sorted.
func (r *Registry) Categories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byCategory))
	for category := range r.byCategory {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// ToolsByCategory returns all tools in a category sorted by name.
func (r *Registry) ToolsByCategory(category string) []domain.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collectLocked(r.byCategory[category])
}

// ToolsByTags returns tools carrying every requested tag, sorted by name.
func (r *Registry) ToolsByTags(tags []string) []domain.Tool {
	if len(tags) == 0 {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := r.byTag[tags[0]]
	if len(candidates) == 0 {
		return nil
	}

	names := make(map[string]struct{}, len(candidates))
	for name := range candidates {
		names[name] = struct{}{}
	}
	for _, tag := range tags[1:] {
		bucket := r.byTag[tag]
		for name := range names {
			if _, ok := bucket[name]; !ok {
				delete(names, name)
			}
		}
		if len(names) == 0 {
			return nil
		}
	}
	return r.collectLocked(names)
}

func (r *Registry) collectLocked(names map[string]struct{}) []domain.Tool {
	if len(names) == 0 {
		return nil
	}
	out := make([]domain.Tool, 0, len(names))
	for name := range names {
		if tool, ok := r.tools[name]; ok {
			out = append(out, domain.CloneTool(tool))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) indexLocked(tool domain.Tool) {
	bucket, ok := r.byCategory[tool.Category]
	if !ok {
		bucket = make(map[string]struct{})
		r.byCategory[tool.Category] = bucket
	}
	bucket[tool.Name] = struct{}{}

	for _, tag := range tool.Tags {
		tagBucket, ok := r.byTag[tag]
		if !ok {
			tagBucket = make(map[string]struct{})
			r.byTag[tag] = tagBucket
		}
		tagBucket[tool.Name] = struct{}{}
	}
}

func (r *Registry) removeLocked(name string) {
	tool, ok := r.tools[name]
	if !ok {
		return
	}
	delete(r.tools, name)

	if bucket, ok := r.byCategory[tool.Category]; ok {
		delete(bucket, name)
		if len(bucket) == 0 {
			delete(r.byCategory, tool.Category)
		}
	}
	for _, tag := range tool.Tags {
		if bucket, ok := r.byTag[tag]; ok {
			delete(bucket, name)
			if len(bucket) == 0 {
				delete(r.byTag, tag)
			}
		}
	}
}
