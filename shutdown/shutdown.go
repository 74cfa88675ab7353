package shutdown

import (
	"container/heap"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/flanksource/commons/logger"
)

const (
	PriorityChild   = 0
	PriorityDefault = 100
	PriorityCleanup = 200
)

// ExitInterrupted is the status used when the user forces an exit.
const ExitInterrupted = 130

type Hook struct {
	label    string
	priority int
	fn       func()
	index    int // for heap interface
}

type HookHeap []*Hook

func (h HookHeap) Len() int           { return len(h) }
func (h HookHeap) Less(i, j int) bool { return h[i].priority < h[j].priority }
func (h HookHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *HookHeap) Push(x any) {
	n := len(*h)
	item := x.(*Hook)
	item.index = n
	*h = append(*h, item)
}

func (h *HookHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	*h = old[0 : n-1]
	return item
}

var (
	hooks    HookHeap
	hooksMux sync.Mutex

	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

func AddHook(label string, fn func()) *Hook {
	return AddHookWithPriority(label, PriorityDefault, fn)
}

func AddHookWithPriority(label string, priority int, fn func()) *Hook {
	hooksMux.Lock()
	defer hooksMux.Unlock()

	hook := &Hook{
		label:    label,
		priority: priority,
		fn:       fn,
	}
	heap.Push(&hooks, hook)
	return hook
}

// RemoveHook drops a hook that has not run yet.
func RemoveHook(hook *Hook) {
	if hook == nil {
		return
	}
	hooksMux.Lock()
	defer hooksMux.Unlock()

	if hook.index < 0 || hook.index >= len(hooks) || hooks[hook.index] != hook {
		return
	}
	heap.Remove(&hooks, hook.index)
}

// Pending returns the number of hooks that have not run yet.
func Pending() int {
	hooksMux.Lock()
	defer hooksMux.Unlock()
	return len(hooks)
}

// Shutdown runs every pending hook, lowest priority value first.
func Shutdown() {
	hooksMux.Lock()
	defer hooksMux.Unlock()

	if len(hooks) == 0 {
		return
	}

	logger.Debugf("Executing %d shutdown hooks", len(hooks))

	for hooks.Len() > 0 {
		hook := heap.Pop(&hooks).(*Hook)
		logger.Tracef("Executing shutdown hook: %s (priority=%d)", hook.label, hook.priority)

		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("Panic in shutdown hook %s: %v", hook.label, r)
				}
			}()
			hook.fn()
		}()
	}
}

// RecoverAndShutdown is deferred from main: it runs the hooks and turns a
// panic into an error message and exit status 1.
func RecoverAndShutdown() {
	r := recover()
	Shutdown()
	if r != nil {
		logger.Errorf("%v", r)
		exit(1)
	}
}

// WhileChildRuns calls fn, which is expected to wait on a child process that
// shares the terminal. The first interrupt is left to the child; a second one
// runs the shutdown hooks and exits with ExitInterrupted.
func WhileChildRuns(fn func() (int, error)) (int, error) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	defer func() {
		signal.Stop(sigChan)
		close(done)
	}()

	go func() {
		select {
		case <-done:
			return
		case sig := <-sigChan:
			_, _ = fmt.Fprintf(stderr, "\nReceived %s - waiting for the runner to stop...\n", sig)
			_, _ = fmt.Fprintf(stderr, "   Press Ctrl+C again to force immediate exit\n\n")
		}

		select {
		case <-done:
		case <-sigChan:
			_, _ = fmt.Fprintf(stderr, "\nForce exit\n")
			Shutdown()
			exit(ExitInterrupted)
		}
	}()

	return fn()
}
