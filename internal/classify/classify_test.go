package classify

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/dfaudit/pkg/shared/config"
)

func mustTable(t *testing.T, defs []Definition) Table {
	t.Helper()
	table, err := Compile(defs)
	require.NoError(t, err)
	return table
}

func defaultClassifier(t *testing.T, mode DecodeMode) *Classifier {
	return New(mustTable(t, DefaultDefinitions()), mode)
}

func TestClassifyTags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "poetry install",
			content: "FROM python:3.11\nRUN pip install poetry && poetry install\n",
			want:    []string{"python_poetry"},
		},
		{
			name:    "poetry lock with uvicorn",
			content: "FROM python:3.12\nRUN poetry lock\nCMD [\"uvicorn\", \"app:app\"]\n",
			want:    []string{"python_poetry", "python_uvicorn"},
		},
		{
			name:    "multi stage",
			content: "FROM python:3.11 AS builder\nRUN true\nFROM python:3.11-slim\n",
			want:    []string{"multi_stage"},
		},
		{
			name:    "AS not on a FROM line",
			content: "FROM alpine\nRUN echo ' AS '\n",
			want:    []string{},
		},
		{
			name:    "lowercase as is not a stage",
			content: "FROM golang:1.22 as build\n",
			want:    []string{},
		},
		{
			name:    "cuda is case insensitive",
			content: "FROM NVIDIA/CUDA:12.2.0-runtime-ubuntu22.04\n",
			want:    []string{"cuda"},
		},
		{
			name:    "rust",
			content: "FROM rust:1.77\nRUN cargo build --release\n",
			want:    []string{"rust_cargo"},
		},
		{
			name:    "node with npm ci",
			content: "FROM node:20\nRUN npm ci\n",
			want:    []string{"node_react"},
		},
		{
			name:    "node with yarn",
			content: "FROM node:20\nRUN yarn build\n",
			want:    []string{"node_react"},
		},
		{
			name:    "dotnet restore",
			content: "FROM mcr.microsoft.com/dotnet/sdk:8.0\nRUN dotnet restore\n",
			want:    []string{"dotnet"},
		},
		{
			name:    "poetry is case sensitive",
			content: "RUN Poetry Install\n",
			want:    []string{},
		},
		{
			name:    "empty content",
			content: "",
			want:    []string{},
		},
	}

	c := defaultClassifier(t, DecodeIgnore)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := c.Classify("fks/Dockerfile", []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Tags)
		})
	}
}

func TestClassifyMultiStageBaseImages(t *testing.T) {
	content := "FROM python:3.11 AS builder\nRUN poetry install\nFROM python:3.11-slim\nCOPY --from=builder /app /app\n"

	rec, err := defaultClassifier(t, DecodeIgnore).Classify("fks/api/Dockerfile", []byte(content))
	require.NoError(t, err)

	assert.Equal(t, "fks/api/Dockerfile", rec.Path)
	assert.Equal(t, []string{"python:3.11", "python:3.11-slim"}, rec.BaseImages)
	assert.Contains(t, rec.Tags, "multi_stage")
	assert.Equal(t, 4, rec.Size)
	assert.Empty(t, rec.DuplicateGroup)
}

func TestBaseImages(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "none", text: "RUN echo\n", want: []string{}},
		{name: "repeated image kept", text: "FROM alpine\nFROM alpine\n", want: []string{"alpine", "alpine"}},
		{name: "several spaces", text: "FROM    ubuntu:22.04 AS base\n", want: []string{"ubuntu:22.04"}},
		{name: "indented is not anchored", text: "  FROM alpine\n", want: []string{}},
		{name: "lowercase from ignored", text: "from alpine\n", want: []string{}},
		{name: "vertical tab ends the image", text: "FROM alpine\vAS x\n", want: []string{"alpine"}},
		{name: "no-break space ends the image", text: "FROM alpine\u00a0AS x\n", want: []string{"alpine"}},
		{name: "next line ends the image", text: "FROM alpine\u0085x\n", want: []string{"alpine"}},
		{name: "ideographic space ends the image", text: "FROM alpine\u3000x\n", want: []string{"alpine"}},
		{name: "platform flag is the argument", text: "FROM --platform=linux/amd64 golang:1.22\n", want: []string{"--platform=linux/amd64"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseImages(tt.text))
		})
	}
}

func TestFingerprint(t *testing.T) {
	raw := []byte("FROM scratch\n")
	sum := sha256.Sum256(raw)

	fp := Fingerprint(raw)
	assert.Len(t, fp, FingerprintLength)
	assert.Equal(t, hex.EncodeToString(sum[:])[:12], fp)
	assert.Equal(t, fp, Fingerprint([]byte("FROM scratch\n")))
	assert.NotEqual(t, fp, Fingerprint([]byte("FROM scratch \n")))
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"FROM a", 1},
		{"FROM a\n", 1},
		{"FROM a\nRUN b", 2},
		{"FROM a\n\n", 2},
		{"\n", 1},
		{"a\r\nb\r\n", 2},
		{"a\rb", 2},
		{"a\u2028b", 2},
		{"a\vb", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountLines(tt.text), "%q", tt.text)
	}
}

func TestDecodeModes(t *testing.T) {
	raw := []byte("FROM alp\xffine\r\nRUN x\n")

	text, err := Decode(raw, DecodeIgnore)
	require.NoError(t, err)
	assert.Equal(t, "FROM alpine\nRUN x\n", text)

	text, err = Decode(raw, DecodeReplace)
	require.NoError(t, err)
	assert.Equal(t, "FROM alp\uFFFDine\nRUN x\n", text)

	_, err = Decode(raw, DecodeStrict)
	assert.True(t, errors.Is(err, ErrInvalidEncoding))

	text, err = Decode([]byte("FROM alpine\n"), DecodeStrict)
	require.NoError(t, err)
	assert.Equal(t, "FROM alpine\n", text)
}

func TestClassifyStrictRejectsInvalidUTF8(t *testing.T) {
	_, err := defaultClassifier(t, DecodeStrict).Classify("x/Dockerfile", []byte{0xff, 0xfe})
	assert.True(t, errors.Is(err, ErrInvalidEncoding))

	rec, err := defaultClassifier(t, DecodeIgnore).Classify("x/Dockerfile", []byte("FROM nvidia\xff/cuda\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"nvidia/cuda"}, rec.BaseImages)
	assert.Equal(t, Fingerprint([]byte("FROM nvidia\xff/cuda\n")), rec.Fingerprint)
}

func TestParseDecodeMode(t *testing.T) {
	for in, want := range map[string]DecodeMode{"": DecodeIgnore, "IGNORE": DecodeIgnore, "replace": DecodeReplace, "strict": DecodeStrict} {
		got, err := ParseDecodeMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseDecodeMode("latin1")
	assert.EqualError(t, err, `unknown decode mode "latin1"`)
}

func TestClassifyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Dockerfile")
	require.NoError(t, os.WriteFile(path, []byte("FROM rust:1.77\nRUN cargo build\n"), 0644))

	c := defaultClassifier(t, DecodeIgnore)
	rec, err := c.ClassifyFile(path, "personal/tool/Dockerfile")
	require.NoError(t, err)
	assert.Equal(t, "personal/tool/Dockerfile", rec.Path)
	assert.Equal(t, []string{"rust_cargo"}, rec.Tags)

	_, err = c.ClassifyFile(filepath.Join(dir, "missing"), "personal/missing/Dockerfile")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCompile(t *testing.T) {
	table, err := Compile(DefaultDefinitions())
	require.NoError(t, err)
	assert.Equal(t, []string{"python_poetry", "python_uvicorn", "multi_stage", "cuda", "rust_cargo", "node_react", "dotnet"}, table.Names())

	_, err = Compile([]Definition{{Name: "bad", Expr: "(unclosed"}})
	assert.ErrorContains(t, err, `compile pattern "bad"`)

	_, err = Compile([]Definition{{Name: "a", Expr: "x"}, {Name: "a", Expr: "y"}})
	assert.EqualError(t, err, `pattern "a" is declared more than once`)

}

func TestDefinitionsFromConfig(t *testing.T) {
	assert.Equal(t, DefaultDefinitions(), DefinitionsFromConfig(nil))

	defs := DefinitionsFromConfig([]config.Pattern{{Name: "alpine", Expr: "alpine", IgnoreCase: true}})
	table := mustTable(t, defs)
	assert.Equal(t, []string{"alpine"}, table.Tags("FROM ALPINE:3.19\n"))
}
