package cmd

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/enotify/enotify/internal/notifier"
	"github.com/enotify/enotify/internal/procwatch"
)

func TestWorkerArgs(t *testing.T) {
	req := notifier.WatchRequest{
		PID:            4242,
		AttachPatterns: []string{"logs/*.log", "core.*"},
		To:             []string{"a@example.com", "b@example.com"},
	}

	want := []string{
		"notify", "--watch-worker", "--pid", "4242",
		"--attach", "logs/*.log", "--attach", "core.*",
		"--to", "a@example.com", "--to", "b@example.com",
	}
	if got := workerArgs(req); !reflect.DeepEqual(got, want) {
		t.Errorf("workerArgs = %v, want %v", got, want)
	}
}

func TestWorkerArgsDestList(t *testing.T) {
	req := notifier.WatchRequest{PID: 7, DestListFile: "receivers.txt"}

	want := []string{"notify", "--watch-worker", "--pid", "7", "--destlist", "receivers.txt"}
	if got := workerArgs(req); !reflect.DeepEqual(got, want) {
		t.Errorf("workerArgs = %v, want %v", got, want)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", procwatch.ErrProcessNotFound), 1},
		{notifier.ErrAuthExhausted, 2},
		{notifier.ErrAuthFatal, 2},
		{fmt.Errorf("anything else"), 1},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
