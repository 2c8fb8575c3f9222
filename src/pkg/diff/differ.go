package diff

import (
	"context"
	"time"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/argocd"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/scrub"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/trace"
	"github.com/sethvargo/go-retry"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var logger = log.WithField("package", "diff")

const (
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 15 * time.Second
	DefaultConcurrency = 5
)

// Options configures how diffs are computed
type Options struct {
	CLI         argocd.CLIOptions
	MaxRetries  int           // attempts per application, at least 1
	RetryDelay  time.Duration // sleep between attempts that failed without output
	Concurrency int           // max argocd processes running at once
}

// Differ runs `argocd app diff` for applications
type Differ struct {
	opts     Options
	executor argocd.Executor

	// newBackoff builds the retry schedule of one Diff call
	newBackoff func(attempts int, delay time.Duration) retry.Backoff
}

func NewDiffer(executor argocd.Executor, opts Options) *Differ {
	return &Differ{
		opts:       opts,
		executor:   executor,
		newBackoff: constantBackoff,
	}
}

func constantBackoff(attempts int, delay time.Duration) retry.Backoff {
	if delay <= 0 {
		// go-retry rejects a zero constant
		delay = time.Nanosecond
	}
	// #nosec G115 - attempts is clamped to >= 1
	return retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(delay))
}

// attempt is the classification of a single argocd invocation
type attempt struct {
	kind   models.OutcomeKind
	diff   string
	stderr string
	err    error
}

// classify maps the argocd exit convention onto an outcome:
// exit 0 means no diff, a failed exit with stdout means there is a diff,
// a failed exit without stdout means the command itself failed.
func classify(stdout, stderr string, err error) attempt {
	switch {
	case err == nil:
		return attempt{kind: models.OutcomeClean}
	case stdout != "":
		return attempt{kind: models.OutcomeHasDiff, diff: stdout}
	default:
		return attempt{kind: models.OutcomeFault, stderr: stderr, err: err}
	}
}

func (d *Differ) maxRetries() int {
	if d.opts.MaxRetries < 1 {
		return 1
	}
	return d.opts.MaxRetries
}

// Diff computes the diff of one application at revision. It always returns exactly one
// outcome; failures are recorded on the outcome, never returned.
func (d *Differ) Diff(ctx context.Context, app models.Application, revision string) models.DiffOutcome {
	ctx, span := trace.StartSpan(ctx, "Diff", oteltrace.WithAttributes(attribute.String("app", app.Name())))
	defer span.End()

	bin := d.opts.CLI.Binary()
	args := d.opts.CLI.DiffArgs(app.Name(), revision)
	command := scrub.Token(argocd.CommandLine(bin, args), d.opts.CLI.AuthToken)
	lg := logger.WithField("app", app.Name())

	outcome := models.DiffOutcome{App: app}
	var last attempt
	err := retry.Do(ctx, d.newBackoff(d.maxRetries(), d.opts.RetryDelay), func(ctx context.Context) error {
		outcome.Attempts++
		lg.WithField("attempt", outcome.Attempts).WithField("command", command).Debug("Running argocd app diff")

		stdout, stderr, err := d.executor.Run(ctx, bin, args...)
		last = classify(stdout, stderr, err)
		if last.kind != models.OutcomeFault {
			return nil
		}
		lg.WithField("attempt", outcome.Attempts).
			WithField("stderr", scrub.Token(stderr, d.opts.CLI.AuthToken)).
			WithField("error", err).
			Warn("argocd app diff failed without output")
		return retry.RetryableError(err)
	})

	if err != nil {
		failure := &models.DiffFailure{Command: command, Err: err.Error()}
		if last.kind == models.OutcomeFault {
			failure.Stderr = scrub.Token(last.stderr, d.opts.CLI.AuthToken)
		}
		failure.Err = scrub.Token(failure.Err, d.opts.CLI.AuthToken)
		outcome.Failure = failure
		span.SetAttributes(attribute.String("outcome", models.OutcomeFault.String()))
		lg.WithField("attempts", outcome.Attempts).Error("Diff: giving up")
		return outcome
	}

	outcome.Diff = last.diff
	span.SetAttributes(attribute.String("outcome", outcome.Kind().String()))
	lg.WithField("attempts", outcome.Attempts).WithField("outcome", outcome.Kind().String()).Info("Diff: done.")
	return outcome
}
