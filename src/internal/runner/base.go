package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/argocd"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/diff"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/scrub"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/selector"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/template"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/trace"

	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "runner")

// ErrDiffFailures is returned by Process when at least one application could not be diffed.
// The report has been published when it is returned.
var ErrDiffFailures = errors.New("diff generation failed for at least one application")

type RunnerBase struct {
	Context context.Context
	Options *Options

	RunMode string

	Lister   argocd.ApplicationLister
	Differ   *diff.Differ
	Renderer *template.Renderer
	Policy   *selector.PolicyFilter // optional

	// revision diffed against, set by the concrete runner during Initialize
	revision string
}

func NewRunnerBase(
	ctx context.Context,
	options *Options,
	lister argocd.ApplicationLister,
	differ *diff.Differ,
	renderer *template.Renderer,
) (*RunnerBase, error) {
	runner := &RunnerBase{
		Context:  ctx,
		Options:  options,
		RunMode:  options.RunMode,
		Lister:   lister,
		Differ:   differ,
		Renderer: renderer,
	}
	return runner, nil
}

func (r *RunnerBase) Initialize() error {
	logger.Info("Initializing runner: starting...")

	if r.Lister == nil || r.Differ == nil || r.Renderer == nil {
		return fmt.Errorf("lister, differ and renderer are required")
	}

	if r.Options.SelectorPolicyPath != "" {
		logger.WithField("path", r.Options.SelectorPolicyPath).Info("Initialize runner: loading selector policy")
		policy, err := selector.NewPolicyFilterFromFile(r.Context, r.Options.SelectorPolicyPath)
		if err != nil {
			return fmt.Errorf("failed to load selector policy: %w", err)
		}
		r.Policy = policy
	}

	logger.Info("Initialize runner: done.")
	return nil
}

// SelectApplications fetches the inventory once. A failed fetch aborts the run.
func (r *RunnerBase) SelectApplications() ([]models.Application, error) {
	ctx, span := trace.StartSpan(r.Context, "SelectApplications")
	defer span.End()

	logger.Info("SelectApplications: starting...")
	apps, err := r.Lister.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}

	selected := selector.Select(apps, r.Options.SelectorRepo())
	if r.Policy != nil {
		selected, err = r.Policy.Filter(ctx, selected)
		if err != nil {
			return nil, err
		}
	}

	logger.WithField("count", len(selected)).Info("SelectApplications: done.")
	return selected, nil
}

func (r *RunnerBase) DiffApplications(apps []models.Application) ([]models.DiffOutcome, error) {
	ctx, span := trace.StartSpan(r.Context, "DiffApplications")
	defer span.End()

	if r.revision == "" {
		return nil, fmt.Errorf("no revision to diff against")
	}
	outcomes := r.Differ.DiffAll(ctx, apps, r.revision)
	if len(outcomes) != len(apps) {
		return nil, fmt.Errorf("expected %d diff outcomes, got %d", len(apps), len(outcomes))
	}
	return diff.SortOutcomes(outcomes), nil
}

// BuildReport selects, diffs and aggregates. Used by every run mode.
func (r *RunnerBase) BuildReport(instance RunnerInterface) (*models.ReportData, error) {
	apps, err := instance.SelectApplications()
	if err != nil {
		return nil, err
	}

	outcomes, err := instance.DiffApplications(apps)
	if err != nil {
		return nil, err
	}

	data := &models.ReportData{
		Repository: r.Options.Repo(),
		PRNumber:   r.Options.GhPrNumber,
		Commit:     r.revision,
		Timestamp:  time.Now(),
		ArgocdURL:  r.Options.UIBaseURL(),
		Outcomes:   outcomes,
		Summary:    models.Summarize(outcomes),
	}
	logger.WithField("summary", data.Summary).Info("Built report")
	return data, nil
}

func (r *RunnerBase) Process() error {
	return r.process(r)
}

// process runs the whole pipeline against instance so the concrete runner's overrides apply
func (r *RunnerBase) process(instance RunnerInterface) error {
	_, span := trace.StartSpan(r.Context, "Process")
	defer span.End()
	logger.Info("Process: starting...")

	data, err := r.BuildReport(instance)
	if err != nil {
		return err
	}

	if err := instance.Output(data); err != nil {
		return err
	}

	_, failed := diff.Partition(data.Outcomes)
	if len(failed) > 0 {
		for _, o := range failed {
			logger.WithField("app", o.App.Name()).WithField("error", o.Failure.Err).Error("Diff generation failed")
		}
		return fmt.Errorf("%w: %d of %d", ErrDiffFailures, len(failed), len(data.Outcomes))
	}
	logger.Info("Process: done.")
	return nil
}

// RenderComment renders the report body with its marker. Secrets are scrubbed here,
// once, after every part of the body has been assembled.
func (r *RunnerBase) RenderComment(data *models.ReportData) (string, error) {
	rendered, err := r.Renderer.RenderWithTemplates(r.Options.TemplatesPath, data)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	body := template.ToolCommentSignature + "\n\n" + rendered
	return scrub.Text(body), nil
}

func (r *RunnerBase) Output(data *models.ReportData) error {
	_, span := trace.StartSpan(r.Context, "Output")
	defer span.End()

	logger.Info("Output: starting...")
	if err := r.outputReportJson(data); err != nil {
		return err
	}
	logger.Info("Output: done.")
	return nil
}

// Exporting report json file to output directory if enabled
func (r *RunnerBase) outputReportJson(data *models.ReportData) error {
	if !r.Options.EnableExportReport {
		logger.Info("OutputJson: option was disabled")
		return nil
	}
	logger.Info("OutputJson: starting...")

	if err := os.MkdirAll(r.Options.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	resultsJson, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	filePath := filepath.Join(r.Options.OutputDir, "report.json")
	if err := os.WriteFile(filePath, []byte(scrub.Text(string(resultsJson))), 0644); err != nil {
		logger.WithField("filePath", filePath).WithField("error", err).Error("Failed to write report data to file")
		return err
	}
	logger.WithField("filePath", filePath).Info("Written report data to file")
	return nil
}
