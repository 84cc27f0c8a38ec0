package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rakki194/nlrouter/internal/domain"
)

func tool(name string, priority float64, tags ...string) domain.Tool {
	return domain.Tool{
		Name:        name,
		Description: "does something useful",
		Category:    "misc",
		Method:      domain.MethodFunction,
		Tags:        tags,
		Enabled:     true,
		Priority:    priority,
		Timeout:     10 * time.Second,
	}
}

func TestScore_PriorityBase(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	result := scorer.Score("completely unrelated words", tool("xyzzy", 80), domain.QueryContext{})
	assert.InDelta(t, 8.0, result.Score, 0.001)
	assert.NotEmpty(t, result.Reasoning)
}

func TestScore_NameMatchDominates(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	matching := scorer.Score("rename", tool("rename", 50), domain.QueryContext{})
	other := scorer.Score("rename", tool("xyzzy", 50), domain.QueryContext{})

	// Equal in every respect except the name: the name match is worth the
	// full name weight.
	assert.GreaterOrEqual(t, matching.Score-other.Score, 40.0)
}

func TestScore_DescriptionWords(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	candidate := tool("xyzzy", 0)
	candidate.Description = "show repository status"

	result := scorer.Score("check repository status", candidate, domain.QueryContext{})
	// Two query words overlap description words, 10 points each.
	assert.InDelta(t, 20.0, result.Score, 0.001)
}

func TestScore_TagAndExampleMatches(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	candidate := tool("xyzzy", 0, "deploy")
	candidate.Examples = []string{"deploy the service"}

	result := scorer.Score("deploy the service now", candidate, domain.QueryContext{})
	// Tag "deploy" is a substring of the query (+15) and the example is a
	// substring of the query (+20).
	assert.InDelta(t, 35.0, result.Score, 0.001)
}

func TestScore_GitContextBonuses(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	ctx := domain.QueryContext{
		GitStatus: &domain.GitStatus{IsRepository: true, IsDirty: true},
	}

	commitTool := scorer.Score("qqq", tool("git_commit", 0, domain.TagGit), ctx)
	assert.InDelta(t, 30.0, commitTool.Score, 0.001) // 20 git + 10 dirty commit

	statusTool := scorer.Score("qqq", tool("git_status", 0, domain.TagGit), ctx)
	assert.InDelta(t, 20.0, statusTool.Score, 0.001)

	noGit := scorer.Score("qqq", tool("xyzzy", 0), ctx)
	assert.InDelta(t, 0.0, noGit.Score, 0.001)
}

func TestScore_SelectionBonuses(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	batch := tool("xyzzy", 0, domain.TagBatchOperations)
	single := tool("qwert", 0, domain.TagSingleItem)

	multi := domain.QueryContext{SelectedItems: []string{"a", "b"}}
	one := domain.QueryContext{SelectedItems: []string{"a"}}

	assert.InDelta(t, 15.0, scorer.Score("zzz", batch, multi).Score, 0.001)
	assert.InDelta(t, 0.0, scorer.Score("zzz", batch, one).Score, 0.001)
	assert.InDelta(t, 10.0, scorer.Score("zzz", single, one).Score, 0.001)
	assert.InDelta(t, 0.0, scorer.Score("zzz", single, multi).Score, 0.001)
}

func TestScore_PreferenceBonus(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	candidate := tool("xyzzy", 0)
	candidate.Category = "git"
	ctx := domain.QueryContext{Preferences: map[string]string{PreferenceCategory: "git"}}

	assert.InDelta(t, 10.0, scorer.Score("zzz", candidate, ctx).Score, 0.001)
}

func TestScore_ClampedToMax(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	candidate := tool("deploy", 1000, "deploy")
	candidate.Description = "deploy deploy deploy"
	candidate.Examples = []string{"deploy", "deploy it", "deploy now"}

	result := scorer.Score("deploy", candidate, domain.QueryContext{})
	assert.InDelta(t, 100.0, result.Score, 0.001)
}

func TestRank_StableOnTies(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	first := tool("aaaa", 50)
	second := tool("bbbb", 50)
	winner := tool("match", 50)

	results := scorer.Rank("match", []domain.Tool{first, second, winner}, domain.QueryContext{})
	require.Len(t, results, 3)
	assert.Equal(t, "match", results[0].Tool.Name)
	assert.Equal(t, "aaaa", results[1].Tool.Name)
	assert.Equal(t, "bbbb", results[2].Tool.Name)
}

func TestScore_CustomWeights(t *testing.T) {
	weights := DefaultWeights()
	weights.NameMatch = 70
	scorer := NewScorer(weights)

	result := scorer.Score("rename", tool("rename", 0), domain.QueryContext{})
	assert.InDelta(t, 70.0, result.Score, 0.001)
}
