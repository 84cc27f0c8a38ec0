package catalog

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// expandConfigEnv substitutes ${VAR} references in a YAML document before
// decoding. Unset variables expand to the empty string and are reported so
// the caller can warn about them.
func expandConfigEnv(raw []byte) (string, []string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return "", nil, fmt.Errorf("parse config: %w", err)
	}

	tracker := &envTracker{missing: make(map[string]struct{})}
	tracker.walk(&root)

	expanded, err := yaml.Marshal(&root)
	if err != nil {
		return "", nil, fmt.Errorf("encode expanded config: %w", err)
	}
	return string(expanded), tracker.missingNames(), nil
}

type envTracker struct {
	missing map[string]struct{}
}

func (t *envTracker) walk(node *yaml.Node) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			t.walk(child)
		}
	case yaml.MappingNode:
		// Values only; keys keep their literal names.
		for i := 0; i+1 < len(node.Content); i += 2 {
			t.walk(node.Content[i+1])
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			t.walk(node.Alias)
		}
	case yaml.ScalarNode:
		t.expandScalar(node)
	}
}

func (t *envTracker) expandScalar(node *yaml.Node) {
	if node.Tag != "" && node.Tag != "!!str" {
		return
	}
	if !strings.Contains(node.Value, "$") {
		return
	}

	expanded := os.Expand(node.Value, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		t.missing[key] = struct{}{}
		return ""
	})
	if expanded == node.Value {
		return
	}

	// Quoted scalars stay strings; plain scalars are re-typed so numeric or
	// boolean substitutions decode as such.
	if node.Style != 0 {
		node.Tag = "!!str"
		node.Value = expanded
		return
	}
	node.Tag, node.Value = retypeScalar(expanded)
}

func (t *envTracker) missingNames() []string {
	if len(t.missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(t.missing))
	for name := range t.missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func retypeScalar(value string) (string, string) {
	if strings.TrimSpace(value) == "" {
		return "!!str", value
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
		return "!!str", value
	}

	switch v := parsed.(type) {
	case nil:
		return "!!null", "null"
	case bool:
		return "!!bool", strconv.FormatBool(v)
	case int:
		return "!!int", strconv.Itoa(v)
	case int64:
		return "!!int", strconv.FormatInt(v, 10)
	case uint64:
		return "!!int", strconv.FormatUint(v, 10)
	case float64:
		return "!!float", strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return "!!str", value
	}
}
