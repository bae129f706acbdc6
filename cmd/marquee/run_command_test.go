package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/testsupport"
)

func TestRunCommandPrintsReportAndMSE(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeSample(t, 30)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, fragment := range []string{
		"== Dataset ==",
		"30 rows, 10 columns",
		"== Top actors ==",
		"== Average rating over years ==",
		"Mean Squared Error: ",
		"recorded in history",
	} {
		requireContains(t, out, fragment)
	}
	if _, err := os.Stat(env.cfg.LogPath()); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestRunCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeSample(t, 25)

	out, _, err := runCLI(t, []string{"run", "--json", "--no-history"}, env.configPath)
	if err != nil {
		t.Fatalf("run --json: %v", err)
	}
	var payload struct {
		RunID      string `json:"run_id"`
		Recorded   bool   `json:"recorded"`
		Evaluation struct {
			MSE       float64 `json:"mse"`
			TestSize  int     `json:"test_size"`
			TrainSize int     `json:"train_size"`
		} `json:"evaluation"`
		Clean struct {
			RowsOut int `json:"rows_out"`
		} `json:"clean"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if payload.RunID == "" || payload.Recorded {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Clean.RowsOut != 25 || payload.Evaluation.TestSize != 5 || payload.Evaluation.TrainSize != 20 {
		t.Fatalf("unexpected sizes: %+v", payload)
	}
	if _, err := os.Stat(env.cfg.HistoryPath()); !os.IsNotExist(err) {
		t.Fatalf("expected --no-history to skip the database, got %v", err)
	}
}

func TestRunCommandArgumentAndChartsDir(t *testing.T) {
	env := setupCLITestEnv(t)
	input := testsupport.WriteCSV(t, env.baseDir, "elsewhere.csv", testsupport.SampleMovies(30)...)
	chartsDir := filepath.Join(env.baseDir, "pngs")

	out, _, err := runCLI(t, []string{"run", input, "--charts-dir", chartsDir, "--top", "3"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Charts: 10 written to "+chartsDir)

	matches, err := filepath.Glob(filepath.Join(chartsDir, "*.png"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 10 {
		t.Fatalf("expected 10 charts, got %d", len(matches))
	}
}

func TestRunCommandMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing input")
	}
	requireContains(t, err.Error(), "load error")
}

func TestRunCommandRejectsNegativeTop(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeSample(t, 10)

	_, _, err := runCLI(t, []string{"run", "--top", "-1"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--top") {
		t.Fatalf("expected --top error, got %v", err)
	}
}

func TestDescribeCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeSample(t, 20)

	out, _, err := runCLI(t, []string{"describe"}, env.configPath)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	requireContains(t, out, "== Genre distribution ==")
	if strings.Contains(out, "Mean Squared Error") {
		t.Fatal("describe should not score the model")
	}

	out, _, err = runCLI(t, []string{"describe", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("describe --json: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if _, ok := payload["overview"]; !ok {
		t.Fatalf("expected overview key, got %v", payload)
	}
}

func TestCleanCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	movies := testsupport.SampleMovies(8)
	movies = append(movies, movies[2])
	testsupport.WriteBytes(t, env.cfg.Paths.Input, []byte(testsupport.CSV(movies...)))
	target := filepath.Join(env.baseDir, "out", "clean.csv")

	out, _, err := runCLI(t, []string{"clean", "--out", target}, env.configPath)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	requireContains(t, out, "Wrote 8 cleaned rows")
	requireContains(t, out, "Duplicate name and year")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read cleaned csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 9 {
		t.Fatalf("expected header plus 8 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Name,Year,Duration") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if strings.Contains(string(data), " min") {
		t.Fatal("expected durations to be numeric")
	}

	stdout, _, err := runCLI(t, []string{"clean"}, env.configPath)
	if err != nil {
		t.Fatalf("clean to stdout: %v", err)
	}
	if stdout != string(data) {
		t.Fatal("expected stdout output to match the written file")
	}
}
