package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"elatprep/internal/config"
	"elatprep/internal/failures"
	"elatprep/internal/testsupport"
)

type cliTestEnv struct {
	base     string
	input    string
	output   string
	videoDir string
	course   *testsupport.Course
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	for _, key := range []string{
		config.EnvInput, config.EnvOutput, config.EnvVideoDir,
		config.EnvLogLevel, config.EnvLogFormat, config.EnvHistory,
	} {
		t.Setenv(key, "")
	}
	t.Chdir(base)

	env := &cliTestEnv{
		base:     base,
		input:    filepath.Join(base, "course_structure.json"),
		output:   filepath.Join(base, "out", "course_structure.json"),
		videoDir: filepath.Join(base, "video"),
	}
	env.course = testsupport.NewCourse(t, env.input, env.videoDir)
	return env
}

func (e *cliTestEnv) runArgs(extra ...string) []string {
	args := []string{"--input", e.input, "--output", e.output, "--video-dir", e.videoDir, "--log-level", "error"}
	return append(args, extra...)
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIRootRewritesAndReportsSuccess(t *testing.T) {
	env := setupCLITestEnv(t)
	env.course.Video("abc123", "Old", "lecture1intro.mp4").Write()

	stdout, _, err := runCLI(t, env.runArgs()...)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "Processing successful. Results have been saved to: " + env.output + "\n"
	if stdout != want {
		t.Fatalf("unexpected stdout %q, want %q", stdout, want)
	}

	out := testsupport.ReadJSON(t, env.output)
	video := out[testsupport.VideoKey("abc123")].(map[string]any)
	if name := video["metadata"].(map[string]any)["display_name"]; name != "lecture1intro" {
		t.Fatalf("unexpected display name %v", name)
	}
}

func TestCLIRunSubcommandWithSummary(t *testing.T) {
	env := setupCLITestEnv(t)
	env.course.
		Video("abc123", "Old", "lecture1intro.mp4").
		Entry("only@two", map[string]any{"category": "video"}).
		Write()

	stdout, _, err := runCLI(t, append([]string{"run"}, env.runArgs("--summary")...)...)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Videos rewritten", "abc123", "lecture1intro", "only@two", "Processing successful."} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("summary missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "\x1b[") {
		t.Fatalf("summary should not be colorized for a buffer:\n%s", stdout)
	}
}

func TestCLIDryRunJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.course.Video("abc123", "Old", "clip9.m").Write()

	stdout, _, err := runCLI(t, env.runArgs("--dry-run", "--json")...)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var result struct {
		RunID  string `json:"run_id"`
		DryRun bool   `json:"dry_run"`
		Report struct {
			Renamed []struct {
				DisplayName string `json:"display_name"`
			} `json:"renamed"`
		} `json:"report"`
	}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decode json output: %v\n%s", err, stdout)
	}
	if !result.DryRun || result.RunID == "" || len(result.Report.Renamed) != 1 || result.Report.Renamed[0].DisplayName != "clip9" {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := os.Stat(env.output); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run wrote output: %v", err)
	}
}

func TestCLIDryRunMessage(t *testing.T) {
	env := setupCLITestEnv(t)
	env.course.Video("abc123", "Old", "clip9.m").Write()

	stdout, _, err := runCLI(t, env.runArgs("--dry-run")...)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout, "Dry run complete; no output written (would write "+env.output+")") {
		t.Fatalf("unexpected stdout %q", stdout)
	}
}

func TestCLIExitCodes(t *testing.T) {
	cases := []struct {
		name  string
		setup func(env *cliTestEnv)
		args  func(env *cliTestEnv) []string
		code  int
	}{
		{
			name:  "missing descriptor",
			setup: func(env *cliTestEnv) { env.course.Entry(testsupport.VideoKey("x"), testsupport.VideoRecord("a")).Write() },
			args:  func(env *cliTestEnv) []string { return env.runArgs() },
			code:  failures.ExitMissingDescriptor,
		},
		{
			name: "missing identifier",
			setup: func(env *cliTestEnv) {
				env.course.Entry(testsupport.VideoKey("x"), testsupport.VideoRecord("a")).
					Descriptor("x", []byte(`<video><encoded_video/></video>`)).Write()
			},
			args: func(env *cliTestEnv) []string { return env.runArgs() },
			code: failures.ExitMissingIdentifier,
		},
		{
			name:  "missing input",
			setup: func(env *cliTestEnv) {},
			args:  func(env *cliTestEnv) []string { return env.runArgs() },
			code:  failures.ExitConfiguration,
		},
		{
			name:  "unknown flag",
			setup: func(env *cliTestEnv) {},
			args:  func(env *cliTestEnv) []string { return []string{"--bogus"} },
			code:  failures.ExitConfiguration,
		},
		{
			name:  "bad log format",
			setup: func(env *cliTestEnv) { env.course.Write() },
			args:  func(env *cliTestEnv) []string { return env.runArgs("--log-format", "xml") },
			code:  failures.ExitConfiguration,
		},
		{
			name: "structure parse",
			setup: func(env *cliTestEnv) {
				_ = os.WriteFile(env.input, []byte("[1, 2]"), 0o644)
			},
			args: func(env *cliTestEnv) []string { return env.runArgs() },
			code: failures.ExitParse,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupCLITestEnv(t)
			tc.setup(env)
			_, _, err := runCLI(t, tc.args(env)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := failures.ExitCode(err); got != tc.code {
				t.Fatalf("exit code %d, want %d (err=%v)", got, tc.code, err)
			}
		})
	}
}

func TestCLIEnvironmentSuppliesPaths(t *testing.T) {
	env := setupCLITestEnv(t)
	env.course.Video("abc123", "Old", "a.mp4").Write()
	t.Setenv(config.EnvInput, env.input)
	t.Setenv(config.EnvOutput, env.output)
	t.Setenv(config.EnvVideoDir, env.videoDir)
	t.Setenv(config.EnvLogLevel, "error")

	if _, _, err := runCLI(t); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(env.output); err != nil {
		t.Fatalf("expected output: %v", err)
	}
}

func TestCLIConfigFileSuppliesPathsAndFlagsWin(t *testing.T) {
	env := setupCLITestEnv(t)
	env.course.Video("abc123", "Old", "a.mp4").Write()

	configPath := filepath.Join(env.base, "custom.toml")
	otherOutput := filepath.Join(env.base, "from-flag.json")
	testsupport.WriteFile(t, configPath, []byte(`[paths]
input = "course_structure.json"
output = "from-config.json"
video_dir = "video"

[logging]
level = "error"
`))

	if _, _, err := runCLI(t, "--config", configPath, "--output", otherOutput); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(otherOutput); err != nil {
		t.Fatalf("flag output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.base, "from-config.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("config output should not be written: %v", err)
	}
}

func TestCLIConfigInitShowValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.base, "conf", "elatprep.toml")

	stdout, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, "Wrote sample configuration to "+target) {
		t.Fatalf("unexpected init output %q", stdout)
	}

	_, _, err = runCLI(t, "config", "init", "--path", target)
	if failures.ExitCode(err) != failures.ExitConfiguration {
		t.Fatalf("expected configuration error for existing file, got %v", err)
	}
	if _, _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	stdout, _, err = runCLI(t, "--config", target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(stdout, "# source: "+target) || !strings.Contains(stdout, "[logging]") {
		t.Fatalf("unexpected show output:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, "--config", target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(stdout, "Configuration valid") {
		t.Fatalf("unexpected validate output %q", stdout)
	}

	_, _, err = runCLI(t, "--config", target, "config", "validate", "--paths")
	if failures.ExitCode(err) != failures.ExitConfiguration {
		t.Fatalf("expected unset paths to fail validation, got %v", err)
	}
}

func TestCLIHistoryListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	env.course.
		Video("abc123", "Old", "lecture1intro.mp4").
		Entry("only@two", map[string]any{}).
		Write()

	_, _, err := runCLI(t, "history", "list")
	if failures.ExitCode(err) != failures.ExitInput {
		t.Fatalf("expected missing ledger to be an input error, got %v", err)
	}

	stdout, _, err := runCLI(t, env.runArgs("--history", "--json")...)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var result struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}

	stdout, _, err = runCLI(t, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	if !strings.Contains(stdout, result.RunID) || !strings.Contains(stdout, "succeeded") {
		t.Fatalf("run missing from list:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, "history", "show", result.RunID)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	for _, want := range []string{"lecture1intro.mp4", "Old", "only@two", env.output} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("show output missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = runCLI(t, "history", "list", "--json")
	if err != nil {
		t.Fatalf("history list --json: %v", err)
	}
	var listing struct {
		Ledger string `json:"ledger"`
		Count  int    `json:"count"`
		Runs   []struct {
			ID string `json:"id"`
		} `json:"runs"`
	}
	if err := json.Unmarshal([]byte(stdout), &listing); err != nil {
		t.Fatalf("decode json list: %v\n%s", err, stdout)
	}
	if listing.Ledger == "" || listing.Count != 1 || len(listing.Runs) != 1 || listing.Runs[0].ID != result.RunID {
		t.Fatalf("unexpected json list:\n%s", stdout)
	}

	_, _, err = runCLI(t, "history", "show", "no-such-run")
	if failures.ExitCode(err) != failures.ExitInput {
		t.Fatalf("expected unknown run to be an input error, got %v", err)
	}
	_, _, err = runCLI(t, "history", "show")
	if failures.ExitCode(err) != failures.ExitConfiguration {
		t.Fatalf("expected missing argument to be a usage error, got %v", err)
	}
}

func TestCLILogFlagsOverrideInvalidConfigValues(t *testing.T) {
	env := setupCLITestEnv(t)
	env.course.Video("abc123", "Old", "a.mp4").Write()

	configPath := filepath.Join(env.base, "bad-logging.toml")
	testsupport.WriteFile(t, configPath, []byte("[logging]\nlevel = \"verbose\"\n"))

	if _, _, err := runCLI(t, "--config", configPath, "--log-level", "nope"); failures.ExitCode(err) != failures.ExitConfiguration {
		t.Fatalf("expected invalid flag level to fail, got %v", err)
	}
	args := append([]string{"--config", configPath}, env.runArgs()...)
	if _, _, err := runCLI(t, args...); err != nil {
		t.Fatalf("--log-level should replace the file's level: %v", err)
	}
}
