//go:build integration

package itest

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const cliTimeout = 30 * time.Second

// localEnv points both upstream services at loopback so config validation
// passes without real services running.
var localEnv = map[string]string{
	"TRANSCRIBE_BASE_URL": "http://127.0.0.1:19991",
	"VISION_BASE_URL":     "http://127.0.0.1:19992",
}

type robustCase struct {
	name         string
	args         []string
	env          map[string]string
	wantContains []string
}

func TestRobustness_ArgsValidation(t *testing.T) {
	cases := []robustCase{
		{
			name:         "analyze no args",
			args:         []string{"analyze"},
			wantContains: []string{"accepts 1 arg(s), received 0"},
		},
		{
			name:         "analyze too many args",
			args:         []string{"analyze", "a.mp4", "extra"},
			wantContains: []string{"accepts 1 arg(s), received 2"},
		},
		{
			name:         "unknown flag",
			args:         []string{"analyze", "a.mp4", "--wat"},
			wantContains: []string{"unknown flag: --wat"},
		},
		{
			name:         "missing transcription url",
			args:         []string{"analyze", "a.mp4"},
			wantContains: []string{"transcription base URL is required"},
		},
		{
			name: "non-loopback http url",
			args: []string{"analyze", "a.mp4"},
			env: map[string]string{
				"TRANSCRIBE_BASE_URL": "http://transcribe.example.com",
				"VISION_BASE_URL":     "http://127.0.0.1:19992",
			},
			wantContains: []string{"https is required"},
		},
		{
			name:         "missing input file",
			args:         []string{"analyze", "does-not-exist.mp4"},
			env:          localEnv,
			wantContains: []string{"stat input:"},
		},
		{
			name:         "batch missing job list",
			args:         []string{"batch", "no-such-jobs.yaml"},
			env:          localEnv,
			wantContains: []string{"read job list:"},
		},
		{
			name:         "learn missing labels",
			args:         []string{"learn", "no-such-labels.yaml"},
			env:          localEnv,
			wantContains: []string{"read labels:"},
		},
	}

	bin := buildCLI(t)
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			out := runCLI(t, bin, tc.args, tc.env)
			for _, want := range tc.wantContains {
				if !strings.Contains(out, want) {
					t.Fatalf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func buildCLI(t *testing.T) string {
	t.Helper()
	root := mustRepoRoot(t)
	bin := filepath.Join(t.TempDir(), "clipsight")

	cmd := exec.Command("go", "build", "-o", bin, "./cmd/clipsight")
	cmd.Dir = root
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build cli: %v\n%s", err, string(b))
	}
	return bin
}

func runCLI(t *testing.T, bin string, args []string, env map[string]string) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = t.TempDir() // keep any stray artifacts out of the repo
	cmd.Env = append(os.Environ(),
		"TRANSCRIBE_BASE_URL=", "VISION_BASE_URL=",
		"TRANSCRIBE_API_KEY=", "VISION_API_KEY=",
	)
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	b, _ := cmd.CombinedOutput()
	return string(b)
}
