package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func app(name, sync string) models.Application {
	return models.Application{
		Metadata: models.ApplicationMetadata{Name: name},
		Status:   models.ApplicationStatus{Sync: models.SyncStatus{Status: sync}},
	}
}

func reportData(outcomes ...models.DiffOutcome) *models.ReportData {
	return &models.ReportData{
		Repository: "acme/deploy",
		PRNumber:   42,
		Commit:     "0a1b2c3d4e5f",
		Timestamp:  time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		ArgocdURL:  "https://argocd.example.com/",
		Outcomes:   outcomes,
		Summary:    models.Summarize(outcomes),
	}
}

func TestRenderEmptyReport(t *testing.T) {
	out, err := NewRenderer().Render(reportData(models.DiffOutcome{App: app("a-app", models.SyncStatusSynced)}))
	require.NoError(t, err)

	assert.Contains(t, out, "No differences found as of commit `0a1b2c3`.")
	assert.NotContains(t, out, "### [a-app]")
	assert.Equal(t, 1, strings.Count(out, "**Legend:**"))
}

func TestRenderDiffAndFailure(t *testing.T) {
	data := reportData(
		models.DiffOutcome{App: app("a-app", models.SyncStatusSynced), Attempts: 1},
		models.DiffOutcome{
			App:      app("b-app", models.SyncStatusOutOfSync),
			Diff:     "===== apps/Deployment ns/b ======\n<   replicas: 1\n>   replicas: 2\n",
			Attempts: 1,
		},
		models.DiffOutcome{
			App:      app("c-app", models.SyncStatusSynced),
			Attempts: 2,
			Failure: &models.DiffFailure{
				Stderr:  "rpc error: code = Unavailable\n",
				Err:     "exit status 20",
				Command: "argocd app diff c-app --revision 0a1b2c3 --auth-token=***",
			},
		},
	)

	out, err := NewRenderer().Render(data)
	require.NoError(t, err)

	assert.Contains(t, out, "Applications checked: 3 | With diff: 1 | Failed: 1")
	assert.NotContains(t, out, "[a-app]")

	assert.Contains(t, out, "### [b-app](https://argocd.example.com/applications/b-app)")
	assert.Contains(t, out, "✅ Diff generated · 🟡 OutOfSync · Health: Unknown · +1/-1")
	assert.Contains(t, out, "<summary>Diff of b-app</summary>")
	assert.Contains(t, out, ">   replicas: 2\n```")

	assert.Contains(t, out, "### [c-app](https://argocd.example.com/applications/c-app)")
	assert.Contains(t, out, "❌ Diff generation failed · 🟢 Synced")
	assert.Contains(t, out, "Error after 2 attempt(s)")
	assert.Contains(t, out, "rpc error: code = Unavailable\nexit status 20")
	assert.Contains(t, out, "Command: `argocd app diff c-app --revision 0a1b2c3 --auth-token=***`")

	assert.Equal(t, 1, strings.Count(out, "❌ Diff generation failed"))
	assert.Equal(t, 1, strings.Count(out, "**Legend:**"))
	assert.Less(t, strings.Index(out, "[b-app]"), strings.Index(out, "[c-app]"))
	assert.Less(t, strings.Index(out, "[c-app]"), strings.Index(out, "**Legend:**"))
}

func TestRenderApplicationDetails(t *testing.T) {
	a := app("b-app", models.SyncStatusSynced)
	a.Spec.Project = "payments"
	a.Spec.Destination = models.ApplicationDestination{Name: "prod-eu", Namespace: "billing"}
	a.Status.Health = models.HealthStatus{Status: "Degraded"}

	out, err := NewRenderer().Render(reportData(models.DiffOutcome{App: a, Diff: "> x\n", Attempts: 1}))
	require.NoError(t, err)

	assert.Contains(t, out, "🟢 Synced · Health: Degraded · +1/-0")
	assert.Contains(t, out, "Project: `payments` · Destination: `prod-eu/billing`")
}

func TestRenderWithoutDestinationOmitsDetailsLine(t *testing.T) {
	out, err := NewRenderer().Render(reportData(models.DiffOutcome{App: app("b-app", models.SyncStatusSynced), Diff: "> x\n"}))
	require.NoError(t, err)

	assert.NotContains(t, out, "Project:")
}

func TestRenderDiffContainingBackticks(t *testing.T) {
	d := ">   README.md: |\n>     ```yaml\n>     key: value\n>     ```\n"
	data := reportData(
		models.DiffOutcome{App: app("b-app", models.SyncStatusSynced), Diff: d},
		models.DiffOutcome{App: app("c-app", models.SyncStatusSynced), Diff: "> y\n"},
	)

	out, err := NewRenderer().Render(data)
	require.NoError(t, err)

	assert.Contains(t, out, "````diff\n"+d+"````\n")
	// the next application still gets its own regular fence
	assert.Contains(t, out, "```diff\n> y\n```\n")
}

func TestFence(t *testing.T) {
	tests := []struct {
		name     string
		contents []string
		expected string
	}{
		{"empty", nil, "```"},
		{"no backticks", []string{"plain"}, "```"},
		{"inline code", []string{"use `x` and ``y``"}, "```"},
		{"triple", []string{"```yaml"}, "````"},
		{"longest wins", []string{"```", "a ````` b"}, "``````"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fence(tt.contents...))
		})
	}
}

func TestDestination(t *testing.T) {
	a := app("x", "")
	assert.Equal(t, "", destination(a))
	a.Spec.Destination.Server = "https://kubernetes.default.svc"
	assert.Equal(t, "https://kubernetes.default.svc", destination(a))
	a.Spec.Destination.Namespace = "web"
	assert.Equal(t, "https://kubernetes.default.svc/web", destination(a))
	a.Spec.Destination.Name = "in-cluster"
	assert.Equal(t, "in-cluster/web", destination(a))
}

func TestRenderExportedDiff(t *testing.T) {
	data := reportData(models.DiffOutcome{
		App:          app("big", models.SyncStatusSynced),
		Diff:         strings.Repeat("> line\n", 10),
		DiffFilePath: "output/diff-pr42-big.txt",
		DiffURL:      "https://github.com/acme/deploy/actions/runs/7",
	})

	out, err := NewRenderer().Render(data)
	require.NoError(t, err)

	assert.Contains(t, out, "[workflow run artifacts](https://github.com/acme/deploy/actions/runs/7)")
	assert.NotContains(t, out, "> line")
}

func TestRenderWithCustomTemplates(t *testing.T) {
	dir := t.TempDir()
	custom := "custom header {{ .Repository }}\n{{ range .Reportable }}{{ template \"app.md.tmpl\" (appData $ .) }}{{ end }}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileNameCommentTemplate), []byte(custom), 0644))

	data := reportData(models.DiffOutcome{App: app("b-app", models.SyncStatusSynced), Diff: "> x\n"})
	out, err := NewRenderer().RenderWithTemplates(dir, data)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "custom header acme/deploy"))
	// app template falls back to the built-in one
	assert.Contains(t, out, "### [b-app]")
}

func TestRenderWithBrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileNameAppTemplate), []byte("{{ .Nope "), 0644))

	_, err := NewRenderer().RenderWithTemplates(dir, reportData())
	assert.Error(t, err)
}

func TestAppURL(t *testing.T) {
	assert.Equal(t, "https://argocd.example.com/applications/web", AppURL("https://argocd.example.com/", "web"))
}

func TestShortSHA(t *testing.T) {
	assert.Equal(t, "0a1b2c3", shortSHA("0a1b2c3d4e5f"))
	assert.Equal(t, "HEAD", shortSHA("HEAD"))
}
