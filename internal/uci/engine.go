// Package uci drives a single external UCI chess engine process over its
// line-oriented text protocol.
//
// The engine accepts exactly one search request at a time. Issuing a new
// request while one is outstanding stops the running search and rejects the
// earlier caller with ErrCancelled. Progress ("info") lines refine the
// retained evaluation per ranked line monotonically by depth; a "bestmove"
// terminal line resolves the pending request.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/gamereview/internal/stats"
)

// Sentinel errors for well-defined engine failure modes.
var (
	// ErrUnavailable indicates the engine process could not be started
	// or has exited.
	ErrUnavailable = errors.New("uci: engine unavailable")

	// ErrTimeout indicates no settled score arrived within the request
	// deadline.
	ErrTimeout = errors.New("uci: search timed out")

	// ErrCancelled indicates the request was superseded by a newer one
	// or explicitly cancelled.
	ErrCancelled = errors.New("uci: request cancelled")
)

// Defaults for search requests.
const (
	// DefaultTimeout is the per-request wall-clock deadline.
	DefaultTimeout = 8 * time.Second

	// DefaultDepth is the search depth used when neither a depth nor a
	// time budget is given.
	DefaultDepth = 18

	// hashTableMB is the engine hash table size configured at startup.
	hashTableMB = 32
)

// SearchOptions controls a single Evaluate request.
type SearchOptions struct {
	// Depth is the fixed search depth. Ignored when MoveTime is set.
	Depth int

	// MoveTime is a fixed time budget for the search.
	MoveTime time.Duration

	// MultiPV is the number of ranked lines to request (1 or 2).
	// Zero means 1.
	MultiPV int

	// Timeout is the wall-clock deadline for this request.
	// Zero means DefaultTimeout.
	Timeout time.Duration
}

// request is the single in-flight search slot.
type request struct {
	multiPV int

	// lines holds the best evaluation retained so far per ranked-line
	// index (0-based). Guarded by Engine.mu.
	lines []Evaluation

	resolved bool
	evals    []Evaluation
	err      error
	done     chan struct{}
}

// Engine owns one external evaluation process. All search requests are
// serialized through a single pending slot; the Engine is safe for
// concurrent callers, but concurrent requests cancel each other.
type Engine struct {
	logger *zap.Logger
	stats  stats.Collector

	cmd *exec.Cmd // nil when attached to an in-memory transport

	wmu   sync.Mutex
	stdin io.Writer

	ready     chan struct{}
	readyOnce sync.Once

	mu      sync.Mutex
	pending *request
	closed  bool

	// discard counts terminal lines still owed by searches that were
	// stopped early; their bestmove must not resolve a newer request.
	discard int
}

// Start launches the engine binary at path and performs the UCI handshake.
// Returns ErrUnavailable if the process cannot be started. Callers should
// use WaitReady before issuing requests, or simply call Evaluate, which
// waits internally.
func Start(path string, logger *zap.Logger, collector stats.Collector) (*Engine, error) {
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", ErrUnavailable, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting %s: %v", ErrUnavailable, path, err)
	}

	e := New(stdin, stdout, logger, collector)
	e.cmd = cmd
	return e, nil
}

// New attaches an Engine to an arbitrary transport and begins the UCI
// handshake. The transport is typically the stdin/stdout of a process
// started by Start; tests substitute in-memory pipes.
func New(w io.Writer, r io.Reader, logger *zap.Logger, collector stats.Collector) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = stats.NewNoop()
	}

	e := &Engine{
		logger: logger,
		stats:  collector,
		stdin:  w,
		ready:  make(chan struct{}),
	}

	go e.readLoop(r)
	e.send("uci")

	return e
}

// WaitReady blocks until the engine has completed the UCI handshake and
// answered the readiness probe, or until ctx is done.
func (e *Engine) WaitReady(ctx context.Context) error {
	select {
	case <-e.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Evaluate analyzes the given FEN position and returns one Evaluation per
// requested ranked line, ordered by line index. Line indices the engine
// never reported on come back as zero-value Evaluations (depth 0, no
// score).
//
// Only one request may be outstanding: a call made while another is
// pending stops the running search and fails the earlier caller with
// ErrCancelled. Fails with ErrTimeout if no settled score for line 1
// arrived within the deadline, and ErrUnavailable if the engine is gone.
func (e *Engine) Evaluate(ctx context.Context, fen string, opts SearchOptions) ([]Evaluation, error) {
	if opts.MultiPV < 1 {
		opts.MultiPV = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Depth <= 0 && opts.MoveTime <= 0 {
		opts.Depth = DefaultDepth
	}

	if err := e.WaitReady(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrUnavailable
	}
	if e.pending != nil {
		// Preempt the outstanding request.
		e.stopLocked()
		e.stats.IncCounter(stats.MetricEvalCancelled, 1)
		e.resolveLocked(e.pending, nil, ErrCancelled)
	}
	req := &request{
		multiPV: opts.MultiPV,
		lines:   make([]Evaluation, opts.MultiPV),
		done:    make(chan struct{}),
	}
	e.pending = req
	e.mu.Unlock()

	e.stats.IncCounter(stats.MetricEvaluations, 1)
	start := time.Now()

	e.send("setoption name MultiPV value %d", opts.MultiPV)
	e.send("position fen %s", fen)
	if opts.MoveTime > 0 {
		e.send("go movetime %d", opts.MoveTime.Milliseconds())
	} else {
		e.send("go depth %d", opts.Depth)
	}

	timer := time.AfterFunc(opts.Timeout, func() { e.expire(req) })
	defer timer.Stop()

	select {
	case <-req.done:
	case <-ctx.Done():
		e.mu.Lock()
		if e.pending == req {
			e.stopLocked()
			e.resolveLocked(req, nil, ErrCancelled)
		}
		e.mu.Unlock()
		<-req.done
		if req.err != nil {
			return nil, ctx.Err()
		}
	}

	if req.err != nil {
		return nil, req.err
	}
	e.stats.ObserveHistogram(stats.MetricEvalSeconds, time.Since(start).Seconds())
	return req.evals, nil
}

// CancelOutstanding stops any search in flight, failing its caller with
// ErrCancelled. It is a no-op when nothing is pending.
func (e *Engine) CancelOutstanding() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return
	}
	e.stopLocked()
	e.stats.IncCounter(stats.MetricEvalCancelled, 1)
	e.resolveLocked(e.pending, nil, ErrCancelled)
}

// Close shuts the engine down. Any outstanding request fails with
// ErrCancelled.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.pending != nil {
		e.resolveLocked(e.pending, nil, ErrCancelled)
	}
	e.mu.Unlock()

	e.send("quit")
	if e.cmd != nil {
		if err := e.cmd.Wait(); err != nil {
			return fmt.Errorf("waiting for engine exit: %w", err)
		}
	}
	return nil
}

// send writes one protocol command line to the engine.
func (e *Engine) send(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	e.logger.Debug("engine command", zap.String("line", line))

	e.wmu.Lock()
	defer e.wmu.Unlock()
	if _, err := io.WriteString(e.stdin, line+"\n"); err != nil {
		// Engine death surfaces to callers via the read loop.
		e.logger.Warn("engine write failed", zap.Error(err))
	}
}

// readLoop consumes engine output line by line. On EOF the engine is gone:
// any pending request fails with ErrUnavailable and the Engine closes.
func (e *Engine) readLoop(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		e.dispatch(strings.TrimSpace(sc.Text()))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.pending != nil {
		e.resolveLocked(e.pending, nil, ErrUnavailable)
	}
}

// dispatch handles one line of engine output. Lines that match no
// recognized shape are skipped; engines emit plenty of banner and
// telemetry output that is not part of the request/response contract.
func (e *Engine) dispatch(line string) {
	switch {
	case line == "uciok":
		e.send("setoption name Hash value %d", hashTableMB)
		e.send("isready")

	case line == "readyok":
		e.readyOnce.Do(func() {
			e.logger.Debug("engine ready")
			close(e.ready)
		})

	case strings.HasPrefix(line, "info"):
		eval, multipv, ok := parseInfo(line)
		if !ok {
			return
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		req := e.pending
		if req == nil {
			return
		}
		idx := multipv - 1
		if idx >= len(req.lines) {
			return
		}
		// Monotonic refinement: never step back to a shallower depth.
		if eval.Depth < req.lines[idx].Depth {
			return
		}
		req.lines[idx] = eval

	case strings.HasPrefix(line, "bestmove"):
		move, ok := parseBestMove(line)
		if !ok {
			return
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.discard > 0 {
			// Terminal line of a search that was stopped early.
			e.discard--
			return
		}
		req := e.pending
		if req == nil {
			return
		}
		evals := e.collectLocked(req)
		if evals[0].BestMove == "" {
			evals[0].BestMove = move
		}
		e.resolveLocked(req, evals, nil)
	}
}

// expire handles a request deadline. A best-effort result is returned if
// line 1 already has a settled score; otherwise the caller gets ErrTimeout.
func (e *Engine) expire(req *request) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending != req {
		return
	}

	e.stopLocked()
	if req.lines[0].HasScore() {
		e.resolveLocked(req, e.collectLocked(req), nil)
		return
	}
	e.stats.IncCounter(stats.MetricEvalTimeouts, 1)
	e.resolveLocked(req, nil, ErrTimeout)
}

// stopLocked aborts the running search. The engine answers a stop with a
// terminal line for the aborted search, which must be discarded rather
// than resolve whatever request is pending by then. Caller must hold e.mu.
func (e *Engine) stopLocked() {
	e.send("stop")
	e.discard++
}

// collectLocked assembles the ordered per-line evaluations retained for
// req. Caller must hold e.mu.
func (e *Engine) collectLocked(req *request) []Evaluation {
	evals := make([]Evaluation, req.multiPV)
	copy(evals, req.lines)
	return evals
}

// resolveLocked completes req exactly once and frees the pending slot.
// Caller must hold e.mu.
func (e *Engine) resolveLocked(req *request, evals []Evaluation, err error) {
	if req.resolved {
		return
	}
	req.resolved = true
	req.evals = evals
	req.err = err
	if e.pending == req {
		e.pending = nil
	}
	close(req.done)
}
