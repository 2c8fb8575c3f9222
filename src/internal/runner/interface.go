package runner

import "github.com/gh-nvat/gitops-argodiff/src/pkg/models"

type RunnerInterface interface {
	// Initialize the runner with necessary context and data
	Initialize() error

	// Fetch the inventory and keep the applications relevant to the current repository
	SelectApplications() ([]models.Application, error)

	// Diff every selected application at the revision under review
	DiffApplications(apps []models.Application) ([]models.DiffOutcome, error)

	// Main routine to process the runner
	Process() error

	// Handling the export
	Output(data *models.ReportData) error
}
