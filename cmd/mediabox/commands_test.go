package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mediabox/internal/history"
	"mediabox/internal/testsupport"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:02,000\n<i>Hello</i>\n\n2\n00:00:03,000 --> 00:00:04,000\nWorld\n"

func TestPluginsCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"plugins"}, "")
	if err != nil {
		t.Fatalf("plugins: %v", err)
	}
	for _, want := range []string{"demuxer", "webvtt", ".vtt .webvtt", "cea608"} {
		requireContains(t, out, want)
	}

	out, _, err = runCLI(t, []string{"plugins", "--json"}, "")
	if err != nil {
		t.Fatalf("plugins --json: %v", err)
	}
	var rows []pluginRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode plugins json: %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("expected 10 plugin rows, got %+v", rows)
	}
}

func TestProbeCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.baseDir, "in.srt"), sampleSRT)

	out, _, err := runCLI(t, []string{"probe", input}, env.configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, out, "Demuxer: srt")
	requireContains(t, out, "subtitle")

	out, _, err = runCLI(t, []string{"probe", "--json", input}, env.configPath)
	if err != nil {
		t.Fatalf("probe --json: %v", err)
	}
	var report probeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode probe json: %v", err)
	}
	if len(report.Tracks) != 1 || report.Tracks[0].Packets != 2 || report.Tracks[0].LastMS != 4000 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestTranscodeRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.baseDir, "in.srt"), sampleSRT)
	output := filepath.Join(env.baseDir, "out.vtt")

	out, _, err := runCLI(t, []string{"transcode", input, output}, env.configPath)
	if err != nil {
		t.Fatalf("transcode: %v", err)
	}
	requireContains(t, out, "Wrote "+output)
	requireContains(t, out, "webvtt")

	got := testsupport.ReadFile(t, output)
	want := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\n<i>Hello</i>\n\n00:00:03.000 --> 00:00:04.000\nWorld\n\n"
	if got != want {
		t.Fatalf("unexpected output %q", got)
	}

	out, _, err = runCLI(t, []string{"history", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	var entries []history.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode history json: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != history.StatusCompleted || entries[0].Output != output {
		t.Fatalf("unexpected history %+v", entries)
	}

	out, _, err = runCLI(t, []string{"history", "show", entries[0].ID}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Status:  completed")
	requireContains(t, out, "srt")

	out, _, err = runCLI(t, []string{"history", "prune", "--older-than", "1h"}, env.configPath)
	if err != nil {
		t.Fatalf("history prune: %v", err)
	}
	requireContains(t, out, "Removed 0 session(s)")
}

func TestTranscodeFailureIsRecorded(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.baseDir, "in.srt"), sampleSRT)
	output := filepath.Join(env.baseDir, "out.vtt")

	if _, _, err := runCLI(t, []string{"transcode", "--encoder", "ass", input, output}, env.configPath); err == nil {
		t.Fatal("expected unknown encoder to fail")
	}
	store := testsupport.MustOpenHistory(t, env.cfg)
	entries, err := store.List(t.Context(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != history.StatusFailed || entries[0].ErrorMessage == "" {
		t.Fatalf("unexpected history %+v", entries)
	}
}

func TestTranscodeCopyWithoutHistory(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithoutHistory())
	input := testsupport.WriteFile(t, filepath.Join(env.baseDir, "in.srt"), sampleSRT)
	output := filepath.Join(env.baseDir, "copy.srt")

	if _, _, err := runCLI(t, []string{"transcode", "--copy", input, output}, env.configPath); err != nil {
		t.Fatalf("transcode --copy: %v", err)
	}
	if got := testsupport.ReadFile(t, output); got != sampleSRT+"\n" {
		t.Fatalf("unexpected copy %q", got)
	}
	if _, err := os.Stat(env.cfg.Paths.HistoryDB); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no history database, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"history", "list"}, env.configPath); !errors.Is(err, errHistoryDisabled) {
		t.Fatalf("expected errHistoryDisabled, got %v", err)
	}
}

func TestTranscodePreflightRejectsMissingDir(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteFile(t, filepath.Join(env.baseDir, "in.srt"), sampleSRT)
	output := filepath.Join(env.baseDir, "missing", "out.vtt")

	_, _, err := runCLI(t, []string{"transcode", input, output}, env.configPath)
	if err == nil {
		t.Fatal("expected preflight failure")
	}
	requireContains(t, err.Error(), "preflight")
}

func TestDoctorCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Log directory")
	requireContains(t, out, "Encoder webvtt")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}
