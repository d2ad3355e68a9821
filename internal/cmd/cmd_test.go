package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const scenarioYAML = `
name: handoff
start_ms: 0
ticks:
  - proposals:
      - {agent: planner, kind: narrate, resources: [speech], tier: planner, hold_ms: 500}
      - {agent: chat, kind: reply, resources: [speech], tier: activity, hold_ms: 200}
  - advance_ms: 10
    proposals:
      - {agent: reflex, kind: yelp, resources: [speech, head], tier: reflex, hold_ms: 50}
  - advance_ms: 100
`

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// resetState clears viper, flag values left over from earlier executions and
// any gateway variables in the environment.
func resetState(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, name := range []string{
		"OPENAI_API_KEY", "MCP_STDIO_COMMAND", "MCP_STDIO_ARGS",
		"RESOBOT_OPENAI_API_KEY", "RESOBOT_MCP_STDIO_COMMAND", "RESOBOT_MCP_STDIO_ARGS",
		"RESOBOT_LOGGING_LEVEL", "RESOBOT_LOGGING_DIR", "RESOBOT_ARBITER_TICK_INTERVAL_MS",
	} {
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exit *ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	return exit.Code
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "resobot-gw" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "resobot-gw")
	}

	expectedCmds := []string{"run", "simulate", "watch", "config", "version"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestRootCommand_NoArgs(t *testing.T) {
	resetState(t)

	output, err := executeCommand(rootCmd)
	if code := exitCode(t, err); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(output, "Usage:") {
		t.Errorf("expected help output, got:\n%s", output)
	}
}

func TestRootCommand_UnknownFlag(t *testing.T) {
	resetState(t)

	_, err := executeCommand(rootCmd, "run", "--bogus")
	if code := exitCode(t, err); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestVersion(t *testing.T) {
	for _, args := range [][]string{{"--version"}, {"version"}} {
		t.Run(args[0], func(t *testing.T) {
			resetState(t)
			output, err := executeCommand(rootCmd, args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output != "resobot-gw "+Version+"\n" {
				t.Errorf("output = %q", output)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	resetState(t)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	rootCmd.SetArgs([]string{"version"})
	if code := Execute(); code != 0 {
		t.Errorf("Execute(version) = %d", code)
	}

	resetState(t)
	rootCmd.SetArgs([]string{})
	if code := Execute(); code != 2 {
		t.Errorf("Execute() = %d, want 2", code)
	}

	resetState(t)
	rootCmd.SetArgs([]string{"simulate", filepath.Join(t.TempDir(), "missing.yaml")})
	if code := Execute(); code != 1 {
		t.Errorf("Execute(simulate missing) = %d, want 1", code)
	}
	if !strings.Contains(buf.String(), "Error:") {
		t.Errorf("error not printed:\n%s", buf.String())
	}
}

func TestRun_DryRun(t *testing.T) {
	resetState(t)

	output, err := executeCommand(rootCmd, "run", "--dry-run", "--log-level", "debug")
	if err != nil {
		t.Fatalf("dry run failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "dry run") {
		t.Errorf("expected debug log about the dry run, got:\n%s", output)
	}
}

func TestRun_MissingCredentials(t *testing.T) {
	resetState(t)

	output, err := executeCommand(rootCmd, "run")
	if code := exitCode(t, err); code != 2 {
		t.Errorf("exit code = %d, want 2\n%s", code, output)
	}
	if !strings.Contains(output, "openai_api_key") {
		t.Errorf("expected validation error in log, got:\n%s", output)
	}
}

func TestRun_Scenario(t *testing.T) {
	resetState(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RESOBOT_ARBITER_TICK_INTERVAL_MS", "1")
	path := writeFile(t, "handoff.yaml", scenarioYAML)

	output, err := executeCommand(rootCmd, "run", "--scenario", path)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, output)
	}
	for _, want := range []string{"scenario loaded", "intent committed", "lock preempted", "tick loop finished"} {
		if !strings.Contains(output, want) {
			t.Errorf("log missing %q:\n%s", want, output)
		}
	}
}

func TestRun_BadScenario(t *testing.T) {
	resetState(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := writeFile(t, "bad.yaml", "ticks:\n  - {at_ms: 1, advance_ms: 1}\n")

	_, err := executeCommand(rootCmd, "run", "--scenario", path)
	if code := exitCode(t, err); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestSimulate(t *testing.T) {
	resetState(t)
	path := writeFile(t, "handoff.yaml", scenarioYAML)

	output, err := executeCommand(rootCmd, "simulate", path)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	for _, want := range []string{
		"tick 0 @ 0ms",
		"reject    planner/narrate planner [speech]  conflict (chat)",
		"preempted speech held by chat (activity) until 200 by reflex/yelp",
		"handoff 3 ticks, 2 committed, 1 rejected, 1 preempted",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\x1b[") {
		t.Error("output to a buffer should be plain")
	}
}

func TestSimulate_JSON(t *testing.T) {
	resetState(t)
	path := writeFile(t, "handoff.yaml", scenarioYAML)

	output, err := executeCommand(rootCmd, "simulate", "--json", path)
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	var rep struct {
		Name  string `json:"name"`
		Ticks []struct {
			Index  int   `json:"index"`
			AtMs   int64 `json:"at_ms"`
			Report struct {
				Committed []struct {
					Agent string `json:"agent"`
				} `json:"committed"`
				Rejected []struct {
					Reason  string `json:"reason"`
					Blocker string `json:"blocker"`
				} `json:"rejected"`
			} `json:"report"`
			Locks []struct {
				Resource string `json:"resource"`
				Holder   string `json:"holder"`
			} `json:"locks"`
		} `json:"ticks"`
	}
	if err := json.Unmarshal([]byte(output), &rep); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, output)
	}
	if rep.Name != "handoff" || len(rep.Ticks) != 3 {
		t.Fatalf("report = %+v", rep)
	}
	first := rep.Ticks[0]
	if len(first.Report.Committed) != 1 || first.Report.Committed[0].Agent != "chat" {
		t.Errorf("tick 0 committed = %+v", first.Report.Committed)
	}
	if len(first.Report.Rejected) != 1 || first.Report.Rejected[0].Reason != "conflict" {
		t.Errorf("tick 0 rejected = %+v", first.Report.Rejected)
	}
	if rep.Ticks[1].AtMs != 10 || len(rep.Ticks[1].Locks) != 2 {
		t.Errorf("tick 1 = %+v", rep.Ticks[1])
	}
}

func TestSimulate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
		want string
	}{
		{
			name: "missing file",
			args: func(t *testing.T) []string {
				return []string{"simulate", filepath.Join(t.TempDir(), "missing.yaml")}
			},
			want: "missing.yaml",
		},
		{
			name: "invalid scenario",
			args: func(t *testing.T) []string {
				return []string{"simulate", writeFile(t, "bad.yaml", "ticks:\n  - {advance_ms: -1}\n")}
			},
			want: "non-negative",
		},
		{
			name: "unknown theme",
			args: func(t *testing.T) []string {
				return []string{"simulate", "--theme", "neon", writeFile(t, "s.yaml", scenarioYAML)}
			},
			want: "unknown theme",
		},
		{
			name: "no file",
			args: func(t *testing.T) []string { return []string{"simulate"} },
			want: "accepts 1 arg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetState(t)
			_, err := executeCommand(rootCmd, tt.args(t)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestWatch_MissingFile(t *testing.T) {
	resetState(t)

	_, err := executeCommand(rootCmd, "watch", filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConfigShow(t *testing.T) {
	resetState(t)
	t.Setenv("OPENAI_API_KEY", "sk-test-abcd")
	t.Setenv("RESOBOT_ARBITER_TICK_INTERVAL_MS", "250")
	cfgPath := writeFile(t, "config.yaml", "arbiter:\n  commit_topic: intents\n  cross_bans: [\"speech|ui\"]\n")

	output, err := executeCommand(rootCmd, "config", "show", "--config", cfgPath)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	for _, want := range []string{
		"openai_api_key: ****abcd",
		"commit_topic: intents",
		"tick_interval_ms: 250",
		"cross_bans: [speech|ui]",
		"level: info",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "sk-test-abcd") {
		t.Error("API key printed in full")
	}
}

func TestConfigShow_Invalid(t *testing.T) {
	resetState(t)
	cfgPath := writeFile(t, "config.yaml", "logging:\n  level: loud\n")

	_, err := executeCommand(rootCmd, "config", "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("err = %v, want logging.level validation error", err)
	}
}

func TestConfigPath(t *testing.T) {
	resetState(t)

	output, err := executeCommand(rootCmd, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, "(not created)") {
		t.Errorf("output = %q", output)
	}

	resetState(t)
	cfgPath := writeFile(t, "config.yaml", "runner:\n  poll_interval_ms: 100\n")
	output, err = executeCommand(rootCmd, "config", "path", "--config", cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(output) != cfgPath {
		t.Errorf("output = %q, want %q", output, cfgPath)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "(not set)"},
		{"abc", "****"},
		{"sk-1234567890", "****7890"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
