package scoring

// Weights holds the scoring constants. The defaults are hand-tuned rather
// than derived, so every weight is configurable through the catalog instead
// of being fixed at call sites.
type Weights struct {
	PriorityFactor  float64 `json:"priorityFactor"`
	NameMatch       float64 `json:"nameMatch"`
	DescriptionWord float64 `json:"descriptionWord"`
	TagMatch        float64 `json:"tagMatch"`
	ExampleMatch    float64 `json:"exampleMatch"`
	PathBonus       float64 `json:"pathBonus"`
	GitBonus        float64 `json:"gitBonus"`
	DirtyCommit     float64 `json:"dirtyCommit"`
	BatchBonus      float64 `json:"batchBonus"`
	SingleItemBonus float64 `json:"singleItemBonus"`
	PreferenceBonus float64 `json:"preferenceBonus"`
	MaxScore        float64 `json:"maxScore"`
}

// DefaultWeights returns the stock weights.
func DefaultWeights() Weights {
	return Weights{
		PriorityFactor:  0.1,
		NameMatch:       40,
		DescriptionWord: 10,
		TagMatch:        15,
		ExampleMatch:    20,
		PathBonus:       15,
		GitBonus:        20,
		DirtyCommit:     10,
		BatchBonus:      15,
		SingleItemBonus: 10,
		PreferenceBonus: 10,
		MaxScore:        100,
	}
}

func (w Weights) withDefaults() Weights {
	defaults := DefaultWeights()
	if w.MaxScore <= 0 {
		w.MaxScore = defaults.MaxScore
	}
	if w.PriorityFactor <= 0 {
		w.PriorityFactor = defaults.PriorityFactor
	}
	return w
}
