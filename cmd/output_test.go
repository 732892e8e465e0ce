package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/spigell/skill-mapper/internal/ai"
	"github.com/spigell/skill-mapper/internal/filtering"
	"github.com/spigell/skill-mapper/internal/matcher"
	"github.com/spigell/skill-mapper/internal/store"
	"github.com/spigell/skill-mapper/internal/taxonomy"
)

func TestWriteResults(t *testing.T) {
	results := []matcher.Result{
		{Input: "Empathie", Skill: "Empathy", Category: taxonomy.HumanSkills, Confidence: 0.75},
		{Input: "teamwork", Skill: "Collaboration", Category: taxonomy.HumanSkills, Confidence: 1},
	}

	var text bytes.Buffer
	if err := writeResults(&text, results, outputText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(text.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", text.String())
	}
	if !strings.Contains(lines[1], "Empathy") || !strings.Contains(lines[1], "0.75") || !strings.HasSuffix(lines[1], "medium") {
		t.Fatalf("unexpected row: %q", lines[1])
	}

	var out bytes.Buffer
	if err := writeResults(&out, results, outputJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(out.Bytes(), &rows); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rows[1]["skill"] != "Collaboration" || rows[1]["tier"] != "high" || rows[1]["input"] != "teamwork" {
		t.Fatalf("unexpected json row: %v", rows[1])
	}
}

func TestWriteLinesEmptyJSON(t *testing.T) {
	var out bytes.Buffer
	if err := writeLines(&out, []string{}, outputJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", out.String())
	}
}

func TestValidOutput(t *testing.T) {
	if err := validOutput("yaml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if err := validOutput(outputJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteStats(t *testing.T) {
	stats := store.Stats{
		Total:      2,
		ByCategory: map[taxonomy.Category]int{taxonomy.ProblemSolving: 1, taxonomy.HumanSkills: 1},
		BySource:   map[ai.Source]int{ai.SourceText: 2},
		Recent: []store.IdentifiedSkill{
			{Skill: "Logic", DateIdentified: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		},
	}

	var out bytes.Buffer
	if err := writeStats(&out, stats, outputText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	for _, want := range []string{"total: 2", "  Human Skills: 1\n  Problem-Solving: 1", "  text: 2", "  Logic (2025-03-01)"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestWriteStatus(t *testing.T) {
	date := time.Now()
	status := []store.CategoryStatus{{
		Category: taxonomy.CreativeExpression,
		Skills: []store.SkillStatus{
			{Name: "Music", Identified: true, DateIdentified: &date},
			{Name: "Writing"},
		},
	}}

	var out bytes.Buffer
	if err := writeStatus(&out, status, outputText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Creative Expression (1/2)\n  [x] Music\n  [ ] Writing\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestWriteFilterStatus(t *testing.T) {
	statuses := []filtering.Status{
		{Name: "confidence", Enabled: true, Details: map[string]string{"min_confidence": "0.50"}},
		{Name: "already_saved", Enabled: true, Reason: "skip requested via flag", Details: map[string]string{"exclude_saved": "false"}},
		{Name: "other", Enabled: false},
	}

	var out bytes.Buffer
	if err := writeFilterStatus(&out, statuses, outputText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "confidence: enabled min_confidence=0.50\n" +
		"already_saved: enabled (skip requested via flag) exclude_saved=false\n" +
		"other: disabled\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestReadMedia(t *testing.T) {
	dir := t.TempDir()

	png := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o644); err != nil {
		t.Fatal(err)
	}
	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("just some text"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	media, err := readMedia(png, "image/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if media.MIMEType != "image/png" {
		t.Fatalf("expected image/png, got %q", media.MIMEType)
	}

	for _, path := range []string{notes, empty, filepath.Join(dir, "missing")} {
		if _, err := readMedia(path, "image/"); err == nil {
			t.Fatalf("expected error for %s", path)
		}
	}
}

func TestGetConfigValidates(t *testing.T) {
	viper.Set("ai.gemini.max-log-length", -1)
	t.Cleanup(func() { viper.Set("ai.gemini.max-log-length", 0) })

	if _, err := getConfig(); err == nil {
		t.Fatal("expected validation error for negative max-log-length")
	}

	viper.Set("ai.gemini.max-log-length", 0)
	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.StoreFile != defaultStoreFile {
		t.Fatalf("expected default store file, got %q", config.StoreFile)
	}
	if config.DialogueFile != defaultDialogueFile {
		t.Fatalf("expected default dialogue file, got %q", config.DialogueFile)
	}
	if config.Filters == nil || config.Filters.MinConfidence != matcher.MinConfidence {
		t.Fatalf("expected default min confidence, got %+v", config.Filters)
	}
	if config.AI == nil || config.AI.Gemini == nil || config.AI.Gemini.Model != defaultModel {
		t.Fatalf("expected default gemini model, got %+v", config.AI)
	}
}
