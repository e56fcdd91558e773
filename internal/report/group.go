package report

// Grouping partitions records by fingerprint, preserving first-seen order.
type Grouping struct {
	order   []string
	members map[string][]*Record
}

// GroupDuplicates groups records by exact fingerprint and marks every member of a
// group with two or more records with the shared fingerprint.
func GroupDuplicates(records []*Record) *Grouping {
	g := &Grouping{members: make(map[string][]*Record)}
	for _, r := range records {
		if _, ok := g.members[r.Fingerprint]; !ok {
			g.order = append(g.order, r.Fingerprint)
		}
		g.members[r.Fingerprint] = append(g.members[r.Fingerprint], r)
	}

	for _, fp := range g.order {
		group := g.members[fp]
		if len(group) < 2 {
			continue
		}
		for _, r := range group {
			r.DuplicateGroup = fp
		}
	}
	return g
}

// Clusters returns the fingerprints shared by more than one record, in first-seen order.
func (g *Grouping) Clusters() []string {
	var out []string
	for _, fp := range g.order {
		if len(g.members[fp]) > 1 {
			out = append(out, fp)
		}
	}
	return out
}
