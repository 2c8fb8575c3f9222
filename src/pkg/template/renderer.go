package template

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/diff"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "template")

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

// AppTemplateData is what app.md.tmpl is executed with
type AppTemplateData struct {
	ArgocdURL string
	Outcome   models.DiffOutcome
}

// Renderer renders the report Markdown
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render renders the report with the built-in templates
func (r *Renderer) Render(data *models.ReportData) (string, error) {
	return r.RenderWithTemplates("", data)
}

// RenderWithTemplates renders the report. Templates found in templatesPath replace the
// built-in ones of the same name; missing files fall back to the built-in version.
func (r *Renderer) RenderWithTemplates(templatesPath string, data *models.ReportData) (string, error) {
	tmpl := template.New("report").Funcs(funcMap())
	for _, name := range []string{FileNameCommentTemplate, FileNameAppTemplate} {
		content, err := loadTemplate(templatesPath, name)
		if err != nil {
			return "", err
		}
		if _, err := tmpl.New(name).Parse(content); err != nil {
			return "", fmt.Errorf("failed to parse template %s: %w", name, err)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, FileNameCommentTemplate, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func loadTemplate(templatesPath, name string) (string, error) {
	if templatesPath != "" {
		path := filepath.Join(templatesPath, name)
		content, err := os.ReadFile(path)
		if err == nil {
			logger.WithField("path", path).Debug("Using custom template")
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read template %s: %w", path, err)
		}
	}
	content, err := defaultTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read built-in template %s: %w", name, err)
	}
	return string(content), nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"appData": func(report *models.ReportData, o models.DiffOutcome) AppTemplateData {
			return AppTemplateData{ArgocdURL: report.ArgocdURL, Outcome: o}
		},
		"appURL":       AppURL,
		"syncSymbol":   syncSymbol,
		"syncStatus":   syncStatus,
		"healthStatus": healthStatus,
		"destination":  destination,
		"fence":        fence,
		"lineChanges":  lineChanges,
		"shortSHA":     shortSHA,
		"trimNewline":  func(s string) string { return strings.TrimRight(s, "\n") },

		"symbolDiffGenerated": func() string { return SymbolDiffGenerated },
		"symbolDiffFailed":    func() string { return SymbolDiffFailed },
		"symbolInSync":        func() string { return SymbolInSync },
		"symbolOutOfSync":     func() string { return SymbolOutOfSync },
	}
}

// AppURL links to an application in the Argo CD UI
func AppURL(argocdURL, name string) string {
	return strings.TrimRight(argocdURL, "/") + "/applications/" + name
}

func syncSymbol(app models.Application) string {
	if app.InSync() {
		return SymbolInSync
	}
	return SymbolOutOfSync
}

func syncStatus(app models.Application) string {
	if app.Status.Sync.Status == "" {
		return "Unknown"
	}
	return app.Status.Sync.Status
}

func healthStatus(app models.Application) string {
	if app.Status.Health.Status == "" {
		return "Unknown"
	}
	return app.Status.Health.Status
}

// destination renders "<cluster>/<namespace>", empty when the application has no destination
func destination(app models.Application) string {
	d := app.Spec.Destination
	cluster := d.Name
	if cluster == "" {
		cluster = d.Server
	}
	switch {
	case cluster == "":
		return d.Namespace
	case d.Namespace == "":
		return cluster
	default:
		return cluster + "/" + d.Namespace
	}
}

// fence returns a code fence longer than any backtick run in contents, at least three backticks
func fence(contents ...string) string {
	longest := 0
	for _, s := range contents {
		run := 0
		for _, c := range s {
			if c == '`' {
				run++
				if run > longest {
					longest = run
				}
			} else {
				run = 0
			}
		}
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

func lineChanges(content string) string {
	added, deleted, _ := diff.CalcLineChangesFromDiffContent(content)
	return fmt.Sprintf("+%d/-%d", added, deleted)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
