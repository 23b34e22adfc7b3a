package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nholik/devops-course/internal/inventory"
	"github.com/rs/zerolog"
)

const (
	defaultBinary  = "yc"
	defaultTimeout = 30 * time.Second
	stderrLimit    = 512
)

type retryTiming struct {
	initial    time.Duration
	max        time.Duration
	maxElapsed time.Duration
}

var defaultRetryTiming = retryTiming{
	initial:    500 * time.Millisecond,
	max:        5 * time.Second,
	maxElapsed: 30 * time.Second,
}

// commandRunner executes a command and returns its captured output.
type commandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// CLISource lists instances by running `yc compute instance list --format json`.
type CLISource struct {
	logger   zerolog.Logger
	binary   string
	folderID string
	timeout  time.Duration
	retries  int
	timing   retryTiming
	run      commandRunner
}

// CLIOption customizes a CLISource.
type CLIOption func(*CLISource)

// WithBinary overrides the yc executable path.
func WithBinary(path string) CLIOption {
	return func(s *CLISource) {
		if path != "" {
			s.binary = path
		}
	}
}

// WithFolderID scopes the listing to a folder instead of the CLI profile default.
func WithFolderID(id string) CLIOption {
	return func(s *CLISource) {
		s.folderID = id
	}
}

// WithTimeout bounds each CLI attempt.
func WithTimeout(timeout time.Duration) CLIOption {
	return func(s *CLISource) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithRetries sets how many times a failed launch, exit or timeout is retried.
func WithRetries(retries int) CLIOption {
	return func(s *CLISource) {
		if retries >= 0 {
			s.retries = retries
		}
	}
}

// NewCLISource constructs a CLISource. By default a single attempt is made.
func NewCLISource(logger zerolog.Logger, opts ...CLIOption) *CLISource {
	s := &CLISource{
		logger:  logger,
		binary:  defaultBinary,
		timeout: defaultTimeout,
		timing:  defaultRetryTiming,
		run:     execRunner,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Args returns the arguments passed to the yc binary.
func (s *CLISource) Args() []string {
	args := []string{"compute", "instance", "list", "--format", "json"}
	if s.folderID != "" {
		args = append(args, "--folder-id", s.folderID)
	}
	return args
}

// List implements Source. It never returns a nil Instances slice on success.
func (s *CLISource) List(ctx context.Context) Result {
	var instances []inventory.Instance
	attempt := 0

	operation := func() error {
		attempt++
		listed, err := s.listOnce(ctx)
		if err != nil {
			var fetchErr *FetchError
			if errors.As(err, &fetchErr) && (fetchErr.Op == OpDecode || errors.Is(fetchErr.Err, exec.ErrNotFound)) {
				return backoff.Permanent(err)
			}
			s.logger.Debug().Err(err).Int("attempt", attempt).Msg("instance listing attempt failed")
			return err
		}
		instances = listed
		return nil
	}

	if err := backoff.Retry(operation, s.backOff(ctx)); err != nil {
		return Result{Instances: []inventory.Instance{}, Err: err}
	}
	if instances == nil {
		instances = []inventory.Instance{}
	}
	return Result{Instances: instances}
}

func (s *CLISource) backOff(ctx context.Context) backoff.BackOff {
	cfg := backoff.NewExponentialBackOff()
	cfg.InitialInterval = s.timing.initial
	cfg.MaxInterval = s.timing.max
	cfg.MaxElapsedTime = s.timing.maxElapsed
	cfg.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(cfg, uint64(s.retries)), ctx)
}

func (s *CLISource) listOnce(ctx context.Context) ([]inventory.Instance, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stdout, stderr, err := s.run(runCtx, s.binary, s.Args()...)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, wrapFetch(OpTimeout, fmt.Errorf("%s did not finish within %s", s.binary, s.timeout))
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := trimStderr(stderr); msg != "" {
				return nil, wrapFetch(OpExit, fmt.Errorf("%w: %s", err, msg))
			}
			return nil, wrapFetch(OpExit, err)
		}
		return nil, wrapFetch(OpExec, err)
	}

	var instances []inventory.Instance
	if err := json.Unmarshal(stdout, &instances); err != nil {
		return nil, wrapFetch(OpDecode, fmt.Errorf("parse instance list: %w", err))
	}
	return instances, nil
}

func trimStderr(stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if len(msg) > stderrLimit {
		msg = msg[:stderrLimit]
	}
	return msg
}
