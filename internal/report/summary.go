package report

// Summarize aggregates the records. Every name in patternNames gets a count, zero included.
func Summarize(records []*Record, grouping *Grouping, patternNames []string) *Summary {
	if records == nil {
		records = []*Record{}
	}

	patterns := make(map[string]int, len(patternNames))
	for _, name := range patternNames {
		count := 0
		for _, r := range records {
			if r.HasTag(name) {
				count++
			}
		}
		patterns[name] = count
	}

	return &Summary{
		Total:      len(records),
		Duplicates: len(grouping.Clusters()),
		Patterns:   patterns,
		Records:    records,
	}
}
