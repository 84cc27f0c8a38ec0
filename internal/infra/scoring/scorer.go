package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rakki194/nlrouter/internal/domain"
)

// PreferenceCategory is the context preference key holding the user's
// preferred tool category.
const PreferenceCategory = "category"

// Scorer computes heuristic relevance scores for tools against a free-text
// query and a context object.
type Scorer struct {
	weights Weights
}

// Result pairs a tool with its score and reasoning trace.
type Result struct {
	Tool      domain.Tool
	Score     float64
	Reasoning []string
}

// NewScorer creates a scorer. Zero-valued weight fields fall back to
// defaults only for the structural fields (max score, priority factor); a
// deliberately zeroed bonus stays zero.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights.withDefaults()}
}

// Weights returns the active weight set.
func (s *Scorer) Weights() Weights { return s.weights }

// Score computes a relevance score in [0, MaxScore] for a single tool.
// Components are additive then clamped.
func (s *Scorer) Score(query string, tool domain.Tool, ctx domain.QueryContext) Result {
	w := s.weights
	normQuery := normalize(query)
	queryWords := splitWords(normQuery)

	score := tool.Priority * w.PriorityFactor
	reasoning := []string{fmt.Sprintf("priority base %.1f", score)}

	if nameMatches(tool.Name, normQuery, queryWords) {
		score += w.NameMatch
		reasoning = append(reasoning, fmt.Sprintf("name matches query (+%.0f)", w.NameMatch))
	}

	if n := descriptionWordMatches(tool.Description, queryWords); n > 0 {
		gained := float64(n) * w.DescriptionWord
		score += gained
		reasoning = append(reasoning, fmt.Sprintf("%d description word(s) match (+%.0f)", n, gained))
	}

	for _, tag := range tool.Tags {
		if partialMatch(normalize(tag), normQuery) {
			score += w.TagMatch
			reasoning = append(reasoning, fmt.Sprintf("tag %q matches (+%.0f)", tag, w.TagMatch))
		}
	}

	for _, example := range tool.Examples {
		if partialMatch(normalize(example), normQuery) {
			score += w.ExampleMatch
			reasoning = append(reasoning, fmt.Sprintf("example %q matches (+%.0f)", example, w.ExampleMatch))
		}
	}

	score, reasoning = s.applyContext(score, reasoning, tool, ctx)

	if score > w.MaxScore {
		score = w.MaxScore
		reasoning = append(reasoning, fmt.Sprintf("clamped to %.0f", w.MaxScore))
	}

	return Result{Tool: tool, Score: score, Reasoning: reasoning}
}

// Rank scores every candidate and orders the results by descending score.
// The sort is stable, so ties keep candidate order.
func (s *Scorer) Rank(query string, candidates []domain.Tool, ctx domain.QueryContext) []Result {
	results := make([]Result, 0, len(candidates))
	for _, tool := range candidates {
		results = append(results, s.Score(query, tool, ctx))
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

func (s *Scorer) applyContext(score float64, reasoning []string, tool domain.Tool, ctx domain.QueryContext) (float64, []string) {
	w := s.weights

	if ctx.CurrentPath != "" && tool.HasTag(domain.TagFileOperations) {
		score += w.PathBonus
		reasoning = append(reasoning, fmt.Sprintf("current path with file-operations tool (+%.0f)", w.PathBonus))
	}

	if ctx.GitStatus != nil && ctx.GitStatus.IsRepository && tool.HasTag(domain.TagGit) {
		score += w.GitBonus
		reasoning = append(reasoning, fmt.Sprintf("git repository detected (+%.0f)", w.GitBonus))
		if ctx.GitStatus.IsDirty && strings.Contains(strings.ToLower(tool.Name), "commit") {
			score += w.DirtyCommit
			reasoning = append(reasoning, fmt.Sprintf("dirty repository with commit tool (+%.0f)", w.DirtyCommit))
		}
	}

	switch {
	case len(ctx.SelectedItems) > 1 && tool.HasTag(domain.TagBatchOperations):
		score += w.BatchBonus
		reasoning = append(reasoning, fmt.Sprintf("multiple items selected (+%.0f)", w.BatchBonus))
	case len(ctx.SelectedItems) == 1 && tool.HasTag(domain.TagSingleItem):
		score += w.SingleItemBonus
		reasoning = append(reasoning, fmt.Sprintf("single item selected (+%.0f)", w.SingleItemBonus))
	}

	if preferred, ok := ctx.Preferences[PreferenceCategory]; ok && preferred == tool.Category {
		score += w.PreferenceBonus
		reasoning = append(reasoning, fmt.Sprintf("category matches user preference (+%.0f)", w.PreferenceBonus))
	}

	return score, reasoning
}

func normalize(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	lowered = strings.ReplaceAll(lowered, "_", " ")
	lowered = strings.ReplaceAll(lowered, "-", " ")
	return lowered
}

func splitWords(s string) []string {
	return strings.Fields(s)
}

// nameMatches checks the normalized name against the query in both
// directions, then falls back to per-word containment. Words shorter than
// three characters are skipped to avoid matching on articles.
func nameMatches(name, normQuery string, queryWords []string) bool {
	normName := normalize(name)
	if normName == "" || normQuery == "" {
		return false
	}
	if strings.Contains(normQuery, normName) || strings.Contains(normName, normQuery) {
		return true
	}
	for _, word := range queryWords {
		if len(word) < 3 {
			continue
		}
		if strings.Contains(normName, word) {
			return true
		}
	}
	return false
}

func descriptionWordMatches(description string, queryWords []string) int {
	descWords := splitWords(normalize(description))
	matched := 0
	for _, qw := range queryWords {
		if len(qw) < 3 {
			continue
		}
		for _, dw := range descWords {
			if len(dw) < 3 {
				continue
			}
			if strings.Contains(dw, qw) || strings.Contains(qw, dw) {
				matched++
				break
			}
		}
	}
	return matched
}

func partialMatch(candidate, normQuery string) bool {
	if candidate == "" || normQuery == "" {
		return false
	}
	return strings.Contains(normQuery, candidate) || strings.Contains(candidate, normQuery)
}
