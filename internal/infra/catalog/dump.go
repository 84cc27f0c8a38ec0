package catalog

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Dump renders a normalized view of a catalog: defaults applied, tool
// entries in load order. Useful for inspecting what the router will
// actually serve.
func Dump(cat Catalog) (string, error) {
	type dumpParameter struct {
		Name        string   `yaml:"name"`
		Type        string   `yaml:"type"`
		Required    bool     `yaml:"required,omitempty"`
		Default     any      `yaml:"default,omitempty"`
		Constraints []string `yaml:"constraints,omitempty"`
		Description string   `yaml:"description,omitempty"`
	}
	type dumpTool struct {
		Name        string          `yaml:"name"`
		Description string          `yaml:"description"`
		Category    string          `yaml:"category"`
		Method      string          `yaml:"method"`
		Tags        []string        `yaml:"tags,omitempty"`
		Parameters  []dumpParameter `yaml:"parameters,omitempty"`
		Examples    []string        `yaml:"examples,omitempty"`
		Enabled     bool            `yaml:"enabled"`
		Priority    float64         `yaml:"priority"`
		Timeout     string          `yaml:"timeout"`
	}
	type dumpRuntime struct {
		CacheTTL            string  `yaml:"cacheTTL"`
		MaxCacheSize        int     `yaml:"maxCacheSize"`
		MaxSuggestions      int     `yaml:"maxSuggestions"`
		MinScore            float64 `yaml:"minScore"`
		HealthCheckInterval string  `yaml:"healthCheckInterval"`
		ListenAddress       string  `yaml:"listenAddress"`
		StorePath           string  `yaml:"storePath,omitempty"`
	}
	type dumpDoc struct {
		Runtime dumpRuntime `yaml:"runtime"`
		Tools   []dumpTool  `yaml:"tools"`
	}

	doc := dumpDoc{
		Runtime: dumpRuntime{
			CacheTTL:            cat.Runtime.CacheTTL.String(),
			MaxCacheSize:        cat.Runtime.MaxCacheSize,
			MaxSuggestions:      cat.Runtime.MaxSuggestions,
			MinScore:            cat.Runtime.MinScore,
			HealthCheckInterval: cat.Runtime.HealthCheckInterval.String(),
			ListenAddress:       cat.Runtime.ListenAddress,
			StorePath:           cat.Runtime.StorePath,
		},
		Tools: make([]dumpTool, 0, len(cat.Tools)),
	}

	for _, tool := range cat.Tools {
		entry := dumpTool{
			Name:        tool.Name,
			Description: tool.Description,
			Category:    tool.Category,
			Method:      string(tool.Method),
			Tags:        tool.Tags,
			Examples:    tool.Examples,
			Enabled:     tool.Enabled,
			Priority:    tool.Priority,
			Timeout:     tool.Timeout.Round(time.Second).String(),
		}
		for _, p := range tool.Parameters {
			entry.Parameters = append(entry.Parameters, dumpParameter{
				Name:        p.Name,
				Type:        p.Type,
				Required:    p.Required,
				Default:     p.Default,
				Constraints: p.Constraints,
				Description: p.Description,
			})
		}
		doc.Tools = append(doc.Tools, entry)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode catalog: %w", err)
	}
	return string(out), nil
}
