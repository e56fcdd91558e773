// Package classify turns discovered build files into report records.
package classify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"

	"github.com/scan-io-git/dfaudit/internal/report"
)

// FingerprintLength is the number of hex characters kept from the content digest.
const FingerprintLength = 12

// baseImageStop is the full Unicode whitespace set; RE2 \s alone is ASCII-only.
const baseImageStop = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`

var reBaseImage = regexp.MustCompile(`(?m)^FROM +([^` + baseImageStop + `]+)`)

// Classifier produces records from file contents. It holds no mutable state.
type Classifier struct {
	table Table
	mode  DecodeMode
}

// New returns a Classifier applying table with the given decode mode.
func New(table Table, mode DecodeMode) *Classifier {
	return &Classifier{table: table, mode: mode}
}

// Table returns the pattern table used for tagging.
func (c *Classifier) Table() Table {
	return c.table
}

// ClassifyFile reads the file at path and classifies it under relPath.
func (c *Classifier) ClassifyFile(path, relPath string) (*report.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", relPath, err)
	}
	rec, err := c.Classify(relPath, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to classify %q: %w", relPath, err)
	}
	return rec, nil
}

// Classify builds a record from raw file content.
func (c *Classifier) Classify(relPath string, raw []byte) (*report.Record, error) {
	text, err := Decode(raw, c.mode)
	if err != nil {
		return nil, err
	}

	return &report.Record{
		Path:        relPath,
		Fingerprint: Fingerprint(raw),
		Size:        CountLines(text),
		BaseImages:  BaseImages(text),
		Tags:        c.table.Tags(text),
	}, nil
}

// Fingerprint returns the truncated lowercase hex SHA-256 of raw.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}

// BaseImages returns the argument of every line starting with FROM, in file order.
func BaseImages(text string) []string {
	images := []string{}
	for _, m := range reBaseImage.FindAllStringSubmatch(text, -1) {
		images = append(images, m[1])
	}
	return images
}
