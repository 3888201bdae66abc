package steamcmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/gameops/steamctl/internal/logging"
)

// maxLineBytes bounds a single SteamCMD output line; anything longer is
// split by the scanner rather than aborting the run.
const maxLineBytes = 1024 * 1024

// State is a runner lifecycle state. Completed and Failed are terminal; no
// events fire after either.
type State int32

// Lifecycle states, in order.
const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Process is a started SteamCMD child process.
type Process interface {
	// Stdout and Stderr stream the child's output. Both must be fully
	// drained before Wait is called.
	Stdout() io.Reader
	Stderr() io.Reader

	// Wait blocks until the process exits and returns its exit code. The
	// error is non-nil only when waiting itself failed; a nonzero exit is
	// reported through the code, not the error.
	Wait() (int, error)
}

// ProcessLauncher starts the SteamCMD executable. The default is backed by
// os/exec; tests replace the package Launcher with a mock.
type ProcessLauncher interface {
	Start(ctx context.Context, name string, args ...string) (Process, error)
}

// Launcher is the package-level ProcessLauncher. Replace in tests with a mock.
var Launcher ProcessLauncher = &execLauncher{} //nolint:gochecknoglobals // Required for test injection

type execLauncher struct{}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

func (l *execLauncher) Start(ctx context.Context, name string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if startErr := cmd.Start(); startErr != nil {
		return nil, startErr
	}
	return &execProcess{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}

// coreHooks receives lifecycle signals from runCore. Any field may be nil.
type coreHooks struct {
	progress func(Progress)
	output   func(line string, stream OutputStream)
	state    func(State)
}

func (h coreHooks) setState(s State) {
	if h.state != nil {
		h.state(s)
	}
}

// Run executes a single install/update/validate run and blocks until it
// finishes. Validation errors return before any process is spawned. Progress
// and raw output are delivered through the sinks on opts. On a nonzero exit
// the returned error is an *ExitError carrying the exit code and the full
// captured output.
func Run(ctx context.Context, executablePath string, opts InstallOptions) error {
	if err := validateRun(executablePath, opts); err != nil {
		return err
	}
	return runCore(ctx, executablePath, opts, coreHooks{
		progress: opts.OnProgress,
		output:   opts.OnOutput,
	})
}

func validateRun(executablePath string, opts InstallOptions) error {
	if strings.TrimSpace(executablePath) == "" {
		return ErrInvalidPath
	}
	return opts.Validate()
}

// runCore drives one run: synthetic starting progress, spawn, stream pumps,
// exit classification, synthetic complete progress. Both public surfaces
// (Run and Start) funnel through here; there is no second code path.
func runCore(ctx context.Context, executablePath string, opts InstallOptions, hooks coreHooks) error {
	log := logging.FromContext(ctx)

	// Sinks may be invoked from both stream pumps; serialize so each sink
	// observes one event at a time and per-stream order is preserved.
	var emitMu sync.Mutex
	emitProgress := func(p Progress) {
		if hooks.progress == nil {
			return
		}
		emitMu.Lock()
		defer emitMu.Unlock()
		hooks.progress(p)
	}
	emitOutput := func(line string, stream OutputStream) {
		if hooks.output == nil {
			return
		}
		emitMu.Lock()
		defer emitMu.Unlock()
		hooks.output(line, stream)
	}

	hooks.setState(StateStarting)
	emitProgress(Progress{Phase: PhaseStarting})

	args := BuildArguments(opts)
	// Argument values can carry credentials; log counts and ids only.
	log.Debug().
		Ctx(ctx).
		Str("component", "steamcmd").
		Str("operation", "run").
		Str("executable", executablePath).
		Int64("app_id", opts.AppID).
		Int64("workshop_id", opts.WorkshopID).
		Int("arg_count", len(args)).
		Msg("spawning steamcmd")

	proc, err := Launcher.Start(ctx, executablePath, args...)
	if err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "steamcmd").
			Err(err).
			Str("executable", executablePath).
			Msg("failed to spawn steamcmd")
		return SpawnError(err)
	}

	hooks.setState(StateRunning)

	var stdoutBuf, stderrBuf strings.Builder
	var g errgroup.Group
	g.Go(func() error {
		return pumpStream(proc.Stdout(), StreamStdout, &stdoutBuf, emitOutput, emitProgress)
	})
	g.Go(func() error {
		return pumpStream(proc.Stderr(), StreamStderr, &stderrBuf, emitOutput, nil)
	})

	pumpErr := g.Wait()
	code, waitErr := proc.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitErr != nil {
		return SpawnError(waitErr)
	}
	if pumpErr != nil {
		return SpawnError(pumpErr)
	}

	if code != 0 {
		log.Warn().
			Ctx(ctx).
			Str("component", "steamcmd").
			Int("exit_code", code).
			Msg("steamcmd exited nonzero")
		return &ExitError{
			ExitCode: code,
			Stdout:   stdoutBuf.String(),
			Stderr:   stderrBuf.String(),
		}
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "steamcmd").
		Msg("steamcmd completed")
	emitProgress(Progress{Phase: PhaseComplete, Percent: 100})
	return nil
}

// pumpStream reads one stream line by line, accumulates the raw text,
// forwards each line to the output sink, and (stdout only) feeds the
// progress parser. Lines are processed strictly in arrival order.
func pumpStream(
	r io.Reader,
	stream OutputStream,
	acc *strings.Builder,
	emitOutput func(string, OutputStream),
	emitProgress func(Progress),
) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		acc.WriteString(line)
		acc.WriteByte('\n')
		emitOutput(line, stream)
		if emitProgress != nil {
			if p, ok := ParseProgressLine(line); ok {
				emitProgress(p)
			}
		}
	}
	return scanner.Err()
}

// EventKind discriminates Job events.
type EventKind string

// Event kinds emitted by a Job. Exactly one of EventComplete or EventError
// is emitted per run, always last.
const (
	EventProgress EventKind = "progress"
	EventOutput   EventKind = "output"
	EventComplete EventKind = "complete"
	EventError    EventKind = "error"
)

// Event is one occurrence on a Job's event stream.
type Event struct {
	Kind EventKind

	// Progress is set for EventProgress.
	Progress Progress

	// Line and Stream are set for EventOutput.
	Line   string
	Stream OutputStream

	// Err is set for EventError.
	Err error
}

// Job is a live handle on one run. Events are delivered in emission order on
// the channel returned by Events; the channel closes after the terminal
// complete or error event.
type Job struct {
	// ID identifies the run in logs.
	ID string

	state   atomic.Int32
	mailbox *mailbox
	done    chan struct{}
	err     error
}

// Start begins a run and returns a Job immediately. Validation errors are
// returned synchronously and never spawn a process. The initial "starting"
// progress event is emitted after Start returns, so a caller always has the
// handle before the first event fires.
func Start(ctx context.Context, executablePath string, opts InstallOptions) (*Job, error) {
	if err := validateRun(executablePath, opts); err != nil {
		return nil, err
	}

	j := &Job{
		ID:      logging.NewID(),
		mailbox: newMailbox(),
		done:    make(chan struct{}),
	}
	j.state.Store(int32(StateIdle))

	go j.run(ctx, executablePath, opts)
	return j, nil
}

// Events returns the job's event stream. The same underlying run also feeds
// any sinks set on the options; both observe identical sequences. The first
// call starts delivery; from then on the channel must be drained, and it
// closes after the terminal event. Callers that only need the outcome should
// use Wait and never call Events.
func (j *Job) Events() <-chan Event {
	return j.mailbox.events()
}

// Wait blocks until the run reaches a terminal state and returns its error,
// if any. Safe to call from multiple goroutines.
func (j *Job) Wait() error {
	<-j.done
	return j.err
}

// State reports the current lifecycle state.
func (j *Job) State() State {
	return State(j.state.Load())
}

func (j *Job) run(ctx context.Context, executablePath string, opts InstallOptions) {
	hooks := coreHooks{
		progress: func(p Progress) {
			if opts.OnProgress != nil {
				opts.OnProgress(p)
			}
			j.mailbox.post(Event{Kind: EventProgress, Progress: p})
		},
		output: func(line string, stream OutputStream) {
			if opts.OnOutput != nil {
				opts.OnOutput(line, stream)
			}
			j.mailbox.post(Event{Kind: EventOutput, Line: line, Stream: stream})
		},
		state: func(s State) {
			j.state.Store(int32(s))
		},
	}

	err := runCore(ctx, executablePath, opts, hooks)
	if err != nil {
		j.state.Store(int32(StateFailed))
		j.mailbox.post(Event{Kind: EventError, Err: err})
	} else {
		j.state.Store(int32(StateCompleted))
		j.mailbox.post(Event{Kind: EventComplete})
	}
	j.mailbox.shut()

	j.err = err
	close(j.done)
}

// mailbox decouples event emission from consumption: posting never blocks
// the stream pumps, and a consumer that attaches late still sees every
// event in order. Delivery starts on the first events call, so a job whose
// stream is never requested queues its history and parks no goroutine.
type mailbox struct {
	mu     sync.Mutex
	queue  []Event
	wake   chan struct{}
	closed bool
	out    chan Event

	deliverOnce sync.Once
}

func newMailbox() *mailbox {
	return &mailbox{
		wake: make(chan struct{}, 1),
		out:  make(chan Event),
	}
}

func (m *mailbox) events() <-chan Event {
	m.deliverOnce.Do(func() { go m.deliver() })
	return m.out
}

func (m *mailbox) post(ev Event) {
	m.mu.Lock()
	m.queue = append(m.queue, ev)
	m.mu.Unlock()
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *mailbox) shut() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *mailbox) deliver() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			if m.closed {
				m.mu.Unlock()
				close(m.out)
				return
			}
			m.mu.Unlock()
			<-m.wake
			continue
		}
		ev := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		m.out <- ev
	}
}
