package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/argocd"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/diff"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/template"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/trace"
)

// RunnerLocal diffs a revision without a pull request and prints the report
type RunnerLocal struct {
	RunnerBase

	Out io.Writer
}

// make RunnerLocal implement RunnerInterface
var _ RunnerInterface = (*RunnerLocal)(nil)

func NewRunnerLocal(
	ctx context.Context,
	options *Options,
	lister argocd.ApplicationLister,
	differ *diff.Differ,
	renderer *template.Renderer,
) (*RunnerLocal, error) {
	baseRunner, err := NewRunnerBase(ctx, options, lister, differ, renderer)
	if err != nil {
		return nil, err
	}
	runner := &RunnerLocal{
		RunnerBase: *baseRunner,
		Out:        os.Stdout,
	}
	return runner, nil
}

func (r *RunnerLocal) Initialize() error {
	r.revision = r.Options.LcRevision
	return r.RunnerBase.Initialize()
}

func (r *RunnerLocal) SelectApplications() ([]models.Application, error) {
	return r.RunnerBase.SelectApplications()
}

func (r *RunnerLocal) DiffApplications(apps []models.Application) ([]models.DiffOutcome, error) {
	return r.RunnerBase.DiffApplications(apps)
}

func (r *RunnerLocal) Process() error {
	return r.RunnerBase.process(r)
}

func (r *RunnerLocal) Output(data *models.ReportData) error {
	_, span := trace.StartSpan(r.Context, "Output")
	defer span.End()

	logger.Info("Output: starting...")
	if err := r.outputReportJson(data); err != nil {
		return err
	}

	body, err := r.RenderComment(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.Out, body); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	if r.Options.EnableExportReport {
		filePath := filepath.Join(r.Options.OutputDir, "report.md")
		if err := os.WriteFile(filePath, []byte(body), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.WithField("filePath", filePath).Info("Written report markdown to file")
	}
	logger.Info("Output: done.")
	return nil
}
