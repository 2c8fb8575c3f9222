package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gh-nvat/gitops-argodiff/src/internal/runner"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/argocd"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/diff"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/github"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/template"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/trace"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "run")

// loadEnv fills the options that come from the environment rather than flags
func loadEnv(opts *runner.Options) {
	if opts.ArgocdAuthToken == "" {
		opts.ArgocdAuthToken = os.Getenv("ARGOCD_AUTH_TOKEN")
	}
	if opts.GhToken == "" {
		opts.GhToken = os.Getenv("GH_TOKEN")
		if opts.GhToken == "" {
			opts.GhToken = os.Getenv("GITHUB_TOKEN")
		}
	}
	if opts.GhAPIURL == "" {
		opts.GhAPIURL = os.Getenv("GITHUB_API_URL")
	}
	if opts.GhServerURL == "" {
		opts.GhServerURL = os.Getenv("GITHUB_SERVER_URL")
	}

	if runIdStr := os.Getenv("GITHUB_RUN_ID"); runIdStr != "" {
		runId, err := strconv.Atoi(runIdStr)
		if err != nil {
			logger.WithField("GITHUB_RUN_ID", runIdStr).Warn("Invalid GITHUB_RUN_ID, ignoring")
		} else {
			opts.GhRunId = runId
		}
	}
	if maxDiffLengthStr := os.Getenv("GITHUB_COMMENT_MAX_DIFF_LENGTH"); maxDiffLengthStr != "" {
		maxDiffLength, err := strconv.Atoi(maxDiffLengthStr)
		if err != nil || maxDiffLength <= 0 {
			logger.WithField("GITHUB_COMMENT_MAX_DIFF_LENGTH", maxDiffLengthStr).Warn("Invalid GITHUB_COMMENT_MAX_DIFF_LENGTH, ignoring")
		} else {
			opts.MaxDiffLength = maxDiffLength
		}
	}
}

// createRunner wires the components and creates the runner for the run mode
func createRunner(ctx context.Context, opts *runner.Options) (runner.RunnerInterface, error) {
	logger.WithField("opts", opts).Debug("Creating runner..")

	installer := &argocd.Installer{}
	cliPath, err := installer.EnsureCLI(ctx, opts.ArgocdCLIPath, opts.ArgocdCLIVersion, filepath.Join(opts.OutputDir, "bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to install argocd CLI: %w", err)
	}
	opts.ArgocdCLIPath = cliPath

	lister, err := argocd.NewClient(opts.ClientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create Argo CD client: %w", err)
	}
	differ := diff.NewDiffer(&argocd.ExecExecutor{}, opts.DiffOptions())
	renderer := template.NewRenderer()

	switch opts.RunMode {
	case runner.RunModeGitHub:
		ghClient, err := github.NewClient(opts.GhToken, opts.GhAPIURL)
		if err != nil {
			return nil, fmt.Errorf("GitHub authentication failed: %w", err)
		}
		runner, err := runner.NewRunnerGitHub(ctx, opts, ghClient, lister, differ, renderer)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub runner: %w", err)
		}
		return runner, nil
	case runner.RunModeLocal:
		runner, err := runner.NewRunnerLocal(ctx, opts, lister, differ, renderer)
		if err != nil {
			return nil, fmt.Errorf("failed to create Local runner: %w", err)
		}
		return runner, nil
	default:
		return nil, fmt.Errorf("invalid run mode: %s", opts.RunMode)
	}
}

func initialize(ctx context.Context, opts *runner.Options) (runner.RunnerInterface, error) {
	runner, err := createRunner(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	if err := runner.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize runner: %w", err)
	}
	return runner, nil
}

func run(ctx context.Context, opts *runner.Options) error {
	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}
	logger.WithField("opts", opts).Info("Running..")

	// Initialize tracer
	shutdown, err := trace.InitTracer("gitops-argodiff", opts.EnableExportPerformanceReport, opts.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer shutdown()

	// Validate options
	if err := validateOptions(opts); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	// Initialize runner
	appRunner, err := initialize(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	err = appRunner.Process()
	if err != nil {
		return fmt.Errorf("failed to process: %w", err)
	}

	return nil
}

func validateOptions(opts *runner.Options) error {
	// Validate run mode
	if opts.RunMode != runner.RunModeGitHub && opts.RunMode != runner.RunModeLocal {
		return fmt.Errorf("run-mode must be 'github' or 'local', got: %s", opts.RunMode)
	}

	if opts.ArgocdServer == "" {
		return fmt.Errorf("--argocd-server is required")
	}
	if opts.ArgocdAuthToken == "" {
		return fmt.Errorf("Argo CD token not found. Set ARGOCD_AUTH_TOKEN environment variable")
	}
	if opts.ArgocdInsecure && opts.ArgocdPlainText {
		return fmt.Errorf("--argocd-insecure and --argocd-plaintext cannot be used together")
	}

	if opts.Concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1, got: %d", opts.Concurrency)
	}
	if opts.MaxRetries < 1 {
		return fmt.Errorf("--max-retries must be at least 1, got: %d", opts.MaxRetries)
	}
	if opts.RetryDelay < 0 {
		return fmt.Errorf("--retry-delay cannot be negative, got: %s", opts.RetryDelay)
	}

	// Validate mode-specific options
	if opts.RunMode == runner.RunModeLocal {
		if opts.LcRepo == "" || opts.LcRevision == "" {
			return fmt.Errorf("local mode requires --repo and --revision")
		}
	} else {
		// GitHub mode
		if opts.GhRepo == "" {
			return fmt.Errorf("github mode requires --gh-repo")
		}
		if _, _, err := github.ParseOwnerRepo(opts.GhRepo); err != nil {
			return err
		}
		if opts.GhPrNumber <= 0 {
			return fmt.Errorf("github mode requires --gh-pr-number")
		}
	}

	return nil
}
