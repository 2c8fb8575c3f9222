package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/argocd"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/comment"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/diff"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/github"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/template"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/trace"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type RunnerGitHub struct {
	RunnerBase

	options  *Options
	ghclient github.GitHubClient

	prInfo *models.PullRequest

	// LastAction is what happened to the PR comment in the last Output
	LastAction comment.Action
}

// make RunnerGitHub implement RunnerInterface
var _ RunnerInterface = (*RunnerGitHub)(nil)

func NewRunnerGitHub(
	ctx context.Context,
	options *Options,
	ghclient github.GitHubClient,
	lister argocd.ApplicationLister,
	differ *diff.Differ,
	renderer *template.Renderer,
) (*RunnerGitHub, error) {
	if ghclient == nil {
		return nil, fmt.Errorf("GitHub client is not initialized")
	}
	baseRunner, err := NewRunnerBase(ctx, options, lister, differ, renderer)
	if err != nil {
		return nil, err
	}
	runner := &RunnerGitHub{
		RunnerBase: *baseRunner,
		ghclient:   ghclient,
		options:    options,
	}
	return runner, nil
}

func (r *RunnerGitHub) Initialize() error {
	lg := logger.WithField("func", "RunnerGitHub.Initialize()")
	lg.Info("Initializing runner: starting...")

	pr, err := r.ghclient.GetPR(r.Context, r.options.GhRepo, r.options.GhPrNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch pull request info: %w", err)
	}
	if pr.HeadSHA == "" {
		return fmt.Errorf("pull request #%d has no head commit", r.options.GhPrNumber)
	}
	r.prInfo = pr
	r.revision = pr.HeadSHA
	lg.WithField("headRef", pr.HeadRef).WithField("headSHA", pr.HeadSHA).Info("Diffing pull request head")

	if r.options.GhRunId == 0 {
		lg.Warn("GITHUB_RUN_ID env was not set. Diffs too long for the comment will not have artifact URLs.")
	}
	if r.options.MaxDiffLength <= 0 {
		r.options.MaxDiffLength = DefaultMaxDiffLength
	}

	lg.Info("Initializing runner: done.")
	return r.RunnerBase.Initialize()
}

func (r *RunnerGitHub) SelectApplications() ([]models.Application, error) {
	return r.RunnerBase.SelectApplications()
}

// DiffApplications moves diffs that do not fit in a comment to files in the output
// directory, to be uploaded as workflow artifacts.
func (r *RunnerGitHub) DiffApplications(apps []models.Application) ([]models.DiffOutcome, error) {
	outcomes, err := r.RunnerBase.DiffApplications(apps)
	if err != nil {
		return nil, err
	}

	for i, o := range outcomes {
		if len(o.Diff) <= r.options.MaxDiffLength {
			continue
		}
		logger.WithFields(map[string]interface{}{
			"app":        o.App.Name(),
			"diffLength": len(o.Diff),
			"maxLength":  r.options.MaxDiffLength,
		}).Info("Diff is too long, exporting as artifact")

		filename := fmt.Sprintf("diff-pr%d-%s.txt", r.options.GhPrNumber, unsafeFileChars.ReplaceAllString(o.App.Name(), "_"))
		if err := os.MkdirAll(r.options.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(r.options.OutputDir, filename)
		if err := os.WriteFile(path, []byte(o.Diff), 0644); err != nil {
			return nil, fmt.Errorf("failed to write diff file: %w", err)
		}

		artifactURL, err := github.GetWorkflowRunUrl(r.options.GhServerURL, r.options.GhRepo, r.options.GhRunId)
		if err != nil {
			logger.WithField("error", err).Warn("Failed to get workflow run URL, pointing to the file instead")
			artifactURL = ""
		}
		outcomes[i].DiffFilePath = path
		outcomes[i].DiffURL = artifactURL
	}
	return outcomes, nil
}

func (r *RunnerGitHub) Process() error {
	return r.RunnerBase.process(r)
}

func (r *RunnerGitHub) Output(data *models.ReportData) error {
	_, span := trace.StartSpan(r.Context, "Output")
	defer span.End()

	logger.Info("Output: starting...")
	if err := r.outputReportJson(data); err != nil {
		return err
	}
	if err := r.outputGitHubComment(data); err != nil {
		return err
	}
	logger.Info("Output: done.")
	return nil
}

// Post or update the report comment on the PR
func (r *RunnerGitHub) outputGitHubComment(data *models.ReportData) error {
	logger.Info("OutputGitHubComment: starting...")

	body, err := r.RenderComment(data)
	if err != nil {
		logger.WithField("error", err).Error("Failed to render markdown template")
		return err
	}
	logger.WithField("body", body).Debug("Rendered markdown")

	reconciler := comment.NewReconciler(r.ghclient, r.options.GhRepo, r.options.GhPrNumber, template.ToolCommentSignature)
	action, err := reconciler.Reconcile(r.Context, body, data.HasContent())
	if err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	r.LastAction = action
	logger.WithField("action", action).Info("OutputGitHubComment: done.")
	return nil
}
