package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var patternNames = []string{"python_poetry", "multi_stage", "cuda"}

func sampleRecords() []*Record {
	return []*Record{
		{Path: "fks/a/Dockerfile", Fingerprint: "aaaaaaaaaaaa", Size: 3, BaseImages: []string{"python:3.11"}, Tags: []string{"python_poetry"}},
		{Path: "fks/b/Dockerfile", Fingerprint: "bbbbbbbbbbbb", Size: 2, BaseImages: []string{}, Tags: []string{}},
		{Path: "personal/a/Dockerfile", Fingerprint: "aaaaaaaaaaaa", Size: 3, BaseImages: []string{"python:3.11"}, Tags: []string{"python_poetry"}},
		{Path: "personal/c/Dockerfile", Fingerprint: "cccccccccccc", Size: 5, BaseImages: []string{"nvidia/cuda:12.2", "ubuntu:22.04"}, Tags: []string{"multi_stage", "cuda"}},
		{Path: "personal/d/Dockerfile", Fingerprint: "aaaaaaaaaaaa", Size: 3, BaseImages: []string{"python:3.11"}, Tags: []string{"python_poetry"}},
	}
}

func TestGroupDuplicates(t *testing.T) {
	records := sampleRecords()
	g := GroupDuplicates(records)

	assert.Equal(t, []string{"aaaaaaaaaaaa"}, g.Clusters())

	var marked []string
	for _, r := range records {
		if r.DuplicateGroup == "aaaaaaaaaaaa" {
			marked = append(marked, r.Path)
		}
	}
	assert.Equal(t, []string{"fks/a/Dockerfile", "personal/a/Dockerfile", "personal/d/Dockerfile"}, marked)

	for _, r := range records {
		if r.DuplicateGroup != "" {
			assert.Equal(t, r.Fingerprint, r.DuplicateGroup)
		}
	}
	assert.Empty(t, records[1].DuplicateGroup)
	assert.Empty(t, records[3].DuplicateGroup)
}

func TestSummarize(t *testing.T) {
	records := sampleRecords()
	s := Summarize(records, GroupDuplicates(records), patternNames)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.Duplicates)
	assert.Equal(t, map[string]int{"python_poetry": 3, "multi_stage": 1, "cuda": 1}, s.Patterns)
	for name, count := range s.Patterns {
		assert.LessOrEqual(t, count, s.Total, name)
	}
	assert.LessOrEqual(t, s.Duplicates, s.Total)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, GroupDuplicates(nil), patternNames)

	data, err := MarshalJSON(s)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, float64(0), doc["total"])
	assert.Equal(t, float64(0), doc["duplicates"])
	assert.Equal(t, []interface{}{}, doc["records"])
	assert.Equal(t, map[string]interface{}{"python_poetry": float64(0), "multi_stage": float64(0), "cuda": float64(0)}, doc["patterns"])
}

func TestMarshalJSONLayout(t *testing.T) {
	records := []*Record{
		{Path: "fks/a/Dockerfile", Fingerprint: "aaaaaaaaaaaa", Size: 1, BaseImages: []string{"node:20"}, Tags: []string{}},
		{Path: "fks/b/Dockerfile", Fingerprint: "aaaaaaaaaaaa", Size: 1, BaseImages: []string{"node:20"}, Tags: []string{}},
	}
	s := Summarize(records, GroupDuplicates(records), []string{"node_react"})

	data, err := MarshalJSON(s)
	require.NoError(t, err)

	want := `{
  "total": 2,
  "duplicates": 1,
  "patterns": {
    "node_react": 0
  },
  "records": [
    {
      "path": "fks/a/Dockerfile",
      "fingerprint": "aaaaaaaaaaaa",
      "size": 1,
      "base_images": [
        "node:20"
      ],
      "tags": [],
      "duplicate_group": "aaaaaaaaaaaa"
    },
    {
      "path": "fks/b/Dockerfile",
      "fingerprint": "aaaaaaaaaaaa",
      "size": 1,
      "base_images": [
        "node:20"
      ],
      "tags": [],
      "duplicate_group": "aaaaaaaaaaaa"
    }
  ]
}
`
	assert.Equal(t, want, string(data))
}

func TestMarshalJSONOmitsDuplicateGroupForUniqueRecords(t *testing.T) {
	records := []*Record{{Path: "a/Dockerfile", Fingerprint: "abc", BaseImages: []string{}, Tags: []string{}}}
	s := Summarize(records, GroupDuplicates(records), nil)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, s))
	assert.NotContains(t, buf.String(), "duplicate_group")
}

func TestWriteSARIF(t *testing.T) {
	records := sampleRecords()
	s := Summarize(records, GroupDuplicates(records), patternNames)
	rules := []RuleInfo{
		{Name: "python_poetry", Description: "poetry install or lock"},
		{Name: "multi_stage", Description: "multi-stage build"},
		{Name: "cuda", Description: "GPU base image"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, s, rules))

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID     string                 `json:"ruleId"`
				Level      string                 `json:"level"`
				Properties map[string]interface{} `json:"properties"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, "dfaudit", run.Tool.Driver.Name)

	var ruleIDs []string
	for _, r := range run.Tool.Driver.Rules {
		ruleIDs = append(ruleIDs, r.ID)
	}
	assert.Equal(t, []string{"python_poetry", "multi_stage", "cuda", DuplicateRuleID}, ruleIDs)

	counts := map[string]int{}
	for _, r := range run.Results {
		counts[r.RuleID]++
		assert.NotEmpty(t, r.Properties["fingerprint"])
		if r.RuleID == DuplicateRuleID {
			assert.Equal(t, "warning", r.Level)
			assert.Equal(t, "aaaaaaaaaaaa", r.Properties["duplicate_group"])
		}
	}
	assert.Equal(t, map[string]int{"python_poetry": 3, "multi_stage": 1, "cuda": 1, DuplicateRuleID: 3}, counts)
}
