package settings

// Outcome records one attempted write of a remote setting.
// Updated is true iff the store accepted the write.
type Outcome struct {
	Name    string      `json:"name" yaml:"name"`
	Value   interface{} `json:"value" yaml:"value"`
	Updated bool        `json:"updated" yaml:"updated"`
}

// Outcomes is the ordered result of a reconciliation pass
type Outcomes []Outcome

// UpdatedCount returns how many writes succeeded
func (o Outcomes) UpdatedCount() int {
	n := 0
	for _, outcome := range o {
		if outcome.Updated {
			n++
		}
	}
	return n
}

// AnyUpdated reports whether at least one write succeeded
func (o Outcomes) AnyUpdated() bool {
	return o.UpdatedCount() > 0
}

// Failed returns the outcomes whose write was rejected
func (o Outcomes) Failed() Outcomes {
	var failed Outcomes
	for _, outcome := range o {
		if !outcome.Updated {
			failed = append(failed, outcome)
		}
	}
	return failed
}

// Names returns the setting names in outcome order
func (o Outcomes) Names() []string {
	names := make([]string, 0, len(o))
	for _, outcome := range o {
		names = append(names, outcome.Name)
	}
	return names
}
