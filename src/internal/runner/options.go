package runner

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/argocd"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/diff"
)

const (
	RunModeGitHub = "github"
	RunModeLocal  = "local"

	// GitHub Comment body length limit is 65536 characters, the rest of the comment is about 2k characters.
	// 10k is a reasonable limit for one diff, as it is arguably humanly impossible to read a diff that is longer.
	DefaultMaxDiffLength = 10_000
)

type Options struct {
	// Run mode
	RunMode string // "github" or "local"
	Debug   bool   // Debug mode

	// Argo CD options
	ArgocdServer     string
	ArgocdAuthToken  string
	ArgocdURL        string // UI base URL for links, defaults to https://<server>
	ArgocdInsecure   bool
	ArgocdPlainText  bool
	ArgocdGrpcWeb    bool
	ArgocdCLIPath    string
	ArgocdCLIVersion string
	ArgocdExtraArgs  []string

	// Diff options
	Concurrency        int
	MaxRetries         int
	RetryDelay         time.Duration
	SelectorPolicyPath string // optional Rego policy excluding applications

	// Common options
	TemplatesPath                 string
	OutputDir                     string
	EnableExportReport            bool
	EnableExportPerformanceReport bool
	MaxDiffLength                 int

	// GitHub mode options
	GhRepo      string
	GhPrNumber  int
	GhToken     string
	GhAPIURL    string // GitHub Enterprise API URL
	GhServerURL string // for workflow run links
	GhRunId     int

	// Local mode options
	LcRepo     string
	LcRevision string
}

// String masks the tokens so options can be logged
func (o Options) String() string {
	masked := o
	if masked.ArgocdAuthToken != "" {
		masked.ArgocdAuthToken = "***"
	}
	if masked.GhToken != "" {
		masked.GhToken = "***"
	}
	type plain Options
	return fmt.Sprintf("%+v", plain(masked))
}

// Repo is the repository whose applications are diffed
func (o *Options) Repo() string {
	if o.RunMode == RunModeLocal {
		return o.LcRepo
	}
	return o.GhRepo
}

// SelectorRepo is the repository reference applications are matched against. In GitHub mode
// it is qualified with the GitHub host so that same-named repositories on other hosts never match.
func (o *Options) SelectorRepo() string {
	if o.RunMode == RunModeLocal {
		return o.LcRepo
	}
	host := "github.com"
	if o.GhServerURL != "" {
		if u, err := url.Parse(o.GhServerURL); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	}
	return host + "/" + strings.Trim(o.GhRepo, "/")
}

func (o *Options) UIBaseURL() string {
	if o.ArgocdURL != "" {
		return o.ArgocdURL
	}
	return argocd.ServerURL(o.ArgocdServer, o.ArgocdPlainText)
}

func (o *Options) CLIOptions() argocd.CLIOptions {
	return argocd.CLIOptions{
		Path:      o.ArgocdCLIPath,
		Server:    o.ArgocdServer,
		AuthToken: o.ArgocdAuthToken,
		Insecure:  o.ArgocdInsecure,
		PlainText: o.ArgocdPlainText,
		GrpcWeb:   o.ArgocdGrpcWeb,
		ExtraArgs: o.ArgocdExtraArgs,
	}
}

func (o *Options) ClientOptions() argocd.ClientOptions {
	return argocd.ClientOptions{
		Server:    o.ArgocdServer,
		AuthToken: o.ArgocdAuthToken,
		Insecure:  o.ArgocdInsecure,
		PlainText: o.ArgocdPlainText,
	}
}

func (o *Options) DiffOptions() diff.Options {
	return diff.Options{
		CLI:         o.CLIOptions(),
		MaxRetries:  o.MaxRetries,
		RetryDelay:  o.RetryDelay,
		Concurrency: o.Concurrency,
	}
}
