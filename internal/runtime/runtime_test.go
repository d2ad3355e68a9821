package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/esnya/ResoBotGW/internal/arbiter"
	"github.com/esnya/ResoBotGW/internal/config"
	"github.com/esnya/ResoBotGW/internal/coordinator"
	"github.com/esnya/ResoBotGW/internal/event"
	"github.com/esnya/ResoBotGW/internal/intent"
	"github.com/esnya/ResoBotGW/internal/logging"
)

func validConfig() (*config.Config, error) {
	return config.FromEnv(map[string]string{config.EnvOpenAIAPIKey: "sk-test"})
}

func failingConfig() (*config.Config, error) {
	return config.FromEnv(map[string]string{})
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		load   func() (*config.Config, error)
		opts   Options
		cancel bool
		want   int
	}{
		{
			name: "dry run skips config",
			load: failingConfig,
			opts: Options{DryRun: true},
			want: ExitOK,
		},
		{
			name: "config error",
			load: failingConfig,
			opts: Options{Runner: RunnerFunc(func(context.Context) error { return nil })},
			want: ExitConfig,
		},
		{
			name: "runner completes",
			load: validConfig,
			opts: Options{Runner: RunnerFunc(func(context.Context) error { return nil })},
			want: ExitOK,
		},
		{
			name: "runner cancelled",
			load: validConfig,
			opts: Options{Runner: RunnerFunc(func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			})},
			cancel: true,
			want:   ExitOK,
		},
		{
			name: "runner fails",
			load: validConfig,
			opts: Options{Runner: RunnerFunc(func(context.Context) error { return errors.New("boom") })},
			want: ExitUnexpected,
		},
		{
			name: "runner panics",
			load: validConfig,
			opts: Options{Runner: RunnerFunc(func(context.Context) error { panic("bad runner") })},
			want: ExitUnexpected,
		},
		{
			name: "runner reports validation errors",
			load: validConfig,
			opts: Options{Runner: RunnerFunc(func(context.Context) error {
				return config.ValidationErrors{{Field: "x", Message: "bad"}}
			})},
			want: ExitConfig,
		},
		{
			name: "factory error",
			load: validConfig,
			opts: Options{NewRunner: func(*config.Config, *logging.Logger) (Runner, error) {
				return nil, errors.New("cannot build")
			}},
			want: ExitUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := New(WithConfigLoader(tt.load))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				time.AfterFunc(10*time.Millisecond, cancel)
			}

			if got := rt.Run(ctx, tt.opts); got != tt.want {
				t.Errorf("Run() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRun_DefaultsToNoopRunner(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithConfigLoader(validConfig), WithLogger(logging.NewWriterLogger(&buf, logging.LevelDebug)))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if got := rt.Run(ctx, Options{}); got != ExitOK {
		t.Errorf("Run() = %d, want %d", got, ExitOK)
	}
	if !strings.Contains(buf.String(), "noop runner active") {
		t.Errorf("noop runner was not used: %s", buf.String())
	}
}

func TestRun_CorrelationID(t *testing.T) {
	var buf bytes.Buffer
	rt := New(WithConfigLoader(validConfig), WithLogger(logging.NewWriterLogger(&buf, logging.LevelDebug)))

	var seen string
	code := rt.Run(context.Background(), Options{Runner: RunnerFunc(func(ctx context.Context) error {
		seen = logging.CorrelationIDFromContext(ctx)
		return nil
	})})
	if code != ExitOK {
		t.Fatalf("Run() = %d", code)
	}
	if len(seen) != 12 {
		t.Fatalf("runner saw cid %q", seen)
	}

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatal(err)
		}
		if entry["cid"] != seen {
			t.Errorf("log line without run cid: %s", line)
		}
	}
}

func TestRun_FactoryReceivesConfig(t *testing.T) {
	rt := New(WithConfigLoader(validConfig))

	var got *config.Config
	code := rt.Run(context.Background(), Options{NewRunner: func(cfg *config.Config, _ *logging.Logger) (Runner, error) {
		got = cfg
		return RunnerFunc(func(context.Context) error { return nil }), nil
	}})
	if code != ExitOK || got == nil || got.OpenAIAPIKey != "sk-test" {
		t.Errorf("code=%d cfg=%+v", code, got)
	}
}

func TestNoopRunner(t *testing.T) {
	r := NewNoopRunner(0, nil)
	if r.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval = %v", r.PollInterval)
	}

	r = NewNoopRunner(time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("noop runner did not stop")
	}
}

func TestTickLoop(t *testing.T) {
	var now atomic.Int64
	now.Store(1000)
	arb := arbiter.New(arbiter.WithClock(func() int64 { return now.Load() }))
	bus := event.NewBus()
	var commits atomic.Int32
	if _, err := bus.Subscribe(event.DefaultCommitTopic, func(event.Event) { commits.Add(1) }); err != nil {
		t.Fatal(err)
	}
	coord := coordinator.New(arb, bus)

	say := intent.MustNew(intent.Spec{Agent: "voice", Kind: "say", Resources: []intent.Resource{intent.Speech}, Tier: intent.Reflex, HoldMs: 0})
	var calls atomic.Int32
	flaky := coordinator.AsyncProposerFunc(func(ctx context.Context) ([]intent.Intent, error) {
		if calls.Add(1) == 2 {
			return nil, errors.New("transient")
		}
		return []intent.Intent{say}, nil
	})

	remaining := 3
	var reports []arbiter.Report
	loop := &TickLoop{
		Coordinator: coord,
		Proposers:   []coordinator.AsyncProposer{flaky},
		Interval:    time.Millisecond,
		Next: func() bool {
			if remaining == 0 {
				return false
			}
			remaining--
			now.Add(10)
			return true
		},
		OnReport: func(r arbiter.Report) { reports = append(reports, r) },
	}

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("proposer called %d times, want 3", calls.Load())
	}
	// The failed gather is skipped, the other two commit.
	if len(reports) != 2 || commits.Load() != 2 {
		t.Errorf("reports=%d commits=%d, want 2 each", len(reports), commits.Load())
	}
}

func TestTickLoop_Cancel(t *testing.T) {
	coord := coordinator.New(arbiter.New(), event.NewBus())
	loop := &TickLoop{Coordinator: coord, Interval: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	if err := loop.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}
