// Package report holds the audit data model, duplicate grouping and the output writers.
package report

// Record describes one discovered build file.
type Record struct {
	Path        string   `json:"path"`
	Fingerprint string   `json:"fingerprint"`
	Size        int      `json:"size"`
	BaseImages  []string `json:"base_images"`
	Tags        []string `json:"tags"`
	// DuplicateGroup is set only when another record shares the fingerprint.
	DuplicateGroup string `json:"duplicate_group,omitempty"`
}

// HasTag reports whether the record carries the named pattern tag.
func (r *Record) HasTag(name string) bool {
	for _, tag := range r.Tags {
		if tag == name {
			return true
		}
	}
	return false
}

// Summary is the document emitted for one invocation.
type Summary struct {
	Total      int            `json:"total"`
	Duplicates int            `json:"duplicates"`
	Patterns   map[string]int `json:"patterns"`
	Records    []*Record      `json:"records"`
}
