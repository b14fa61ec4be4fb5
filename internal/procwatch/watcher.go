// Package procwatch polls a watch-set of processes for termination.
package procwatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/enotify/enotify/internal/logging"
	"github.com/shirou/gopsutil/v3/process"
)

// ErrProcessNotFound reports that the target pid had no live process when
// the watch started.
var ErrProcessNotFound = errors.New("process not found")

// Snapshot is the identity of a watched process, captured eagerly at watch
// start. A terminated process's metadata is gone from the process table, so
// the capture must happen while it is still alive.
type Snapshot struct {
	PID        int32
	Name       string
	CreateTime time.Time
	Cmdline    string
}

// Exists reports whether a live process with the given pid exists.
func Exists(pid int32) bool {
	ok, err := process.PidExists(pid)
	return err == nil && ok
}

// Watcher polls the watch-set at a fixed interval and yields batches of
// processes observed to have terminated since the previous poll.
type Watcher struct {
	// Interval between liveness polls.
	Interval time.Duration

	log *logging.Logger
}

// New creates a watcher with the default 1 second poll interval.
func New(log *logging.Logger) *Watcher {
	return &Watcher{Interval: time.Second, log: log}
}

type watched struct {
	proc *process.Process
	snap Snapshot
}

// Watch resolves the live process for pid, captures its snapshot, and
// returns a channel of non-empty termination batches. The channel closes
// once the watch-set is empty. A process that becomes unreachable between
// polls is the expected termination signal, never an error.
func (w *Watcher) Watch(pid int32) (<-chan []Snapshot, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, fmt.Errorf("%w: pid %d", ErrProcessNotFound, pid)
	}

	watchSet := []watched{{proc: proc, snap: w.capture(proc)}}

	batches := make(chan []Snapshot)
	go func() {
		defer close(batches)

		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()

		for len(watchSet) > 0 {
			<-ticker.C

			var ended []Snapshot
			alive := watchSet[:0]
			for _, entry := range watchSet {
				if isRunning(entry.proc) {
					alive = append(alive, entry)
				} else {
					w.log.Debug("Watched process has ended", map[string]interface{}{
						"pid": entry.snap.PID,
					})
					ended = append(ended, entry.snap)
				}
			}
			watchSet = alive

			if len(ended) > 0 {
				batches <- ended
			}
		}
	}()

	return batches, nil
}

// capture records name, creation time and command line while the process is
// still in the process table. Individual metadata reads that fail leave zero
// values; the watch itself goes on.
func (w *Watcher) capture(proc *process.Process) Snapshot {
	snap := Snapshot{PID: proc.Pid}

	if name, err := proc.Name(); err == nil {
		snap.Name = name
	} else {
		w.log.Debug("Could not read the process name", map[string]interface{}{
			"pid":   proc.Pid,
			"error": err.Error(),
		})
	}
	if cmdline, err := proc.Cmdline(); err == nil {
		snap.Cmdline = cmdline
	}
	if ms, err := proc.CreateTime(); err == nil {
		snap.CreateTime = time.UnixMilli(ms)
	}
	return snap
}

func isRunning(proc *process.Process) bool {
	running, err := proc.IsRunning()
	return err == nil && running
}
