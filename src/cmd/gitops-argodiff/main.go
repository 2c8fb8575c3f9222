package main

import (
	"fmt"
	"os"

	"github.com/gh-nvat/gitops-argodiff/src/internal/runner"
	"github.com/gh-nvat/gitops-argodiff/src/pkg/diff"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command, parse args from CLI
func newRootCmd() *cobra.Command {
	opts := &runner.Options{}
	var configPath string

	cmd := &cobra.Command{
		Use:   "gitops-argodiff",
		Short: "Preview Argo CD application diffs on GitHub pull requests",
		Long: `gitops-argodiff finds the Argo CD applications sourced from a repository, runs
"argocd app diff" for each of them against a pull request head (or any revision),
and posts the result as a single comment that is kept up to date on every run.`,
		Version:       fmt.Sprintf("%s (built: %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := runner.ApplyConfigFile(cmd.Flags(), configPath); err != nil {
					return err
				}
			}
			loadEnv(opts)
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML file with flag values, keyed by flag name. Flags on the command line win.")

	// Run mode
	cmd.Flags().StringVar(&opts.RunMode, "run-mode", runner.RunModeGitHub, "Run mode: github or local")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Debug mode")

	// Argo CD flags
	cmd.Flags().StringVar(&opts.ArgocdServer, "argocd-server", "", "Argo CD server address, e.g. argocd.example.com ")
	cmd.Flags().StringVar(&opts.ArgocdURL, "argocd-url", "", "Argo CD UI base URL used for links (defaults to the server address)")
	cmd.Flags().BoolVar(&opts.ArgocdInsecure, "argocd-insecure", false, "Skip TLS certificate verification")
	cmd.Flags().BoolVar(&opts.ArgocdPlainText, "argocd-plaintext", false, "Connect to the Argo CD server without TLS")
	cmd.Flags().BoolVar(&opts.ArgocdGrpcWeb, "argocd-grpc-web", false, "Pass --grpc-web to the argocd CLI")
	cmd.Flags().StringVar(&opts.ArgocdCLIPath, "argocd-cli-path", "", "Path to the argocd binary (default: argocd from PATH)")
	cmd.Flags().StringVar(&opts.ArgocdCLIVersion, "argocd-version", "", "Download this argocd CLI release into <output-dir>/bin and use it")
	cmd.Flags().StringSliceVar(&opts.ArgocdExtraArgs, "argocd-extra-args", []string{}, "Extra arguments appended to every argocd app diff call")

	// Diff flags
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", diff.DefaultConcurrency, "Maximum number of diffs running at the same time")
	cmd.Flags().IntVar(&opts.MaxRetries, "max-retries", diff.DefaultMaxRetries, "Maximum number of attempts per application")
	cmd.Flags().DurationVar(&opts.RetryDelay, "retry-delay", diff.DefaultRetryDelay, "Delay between attempts")
	cmd.Flags().StringVar(&opts.SelectorPolicyPath, "selector-policy", "", "Rego file whose data.argodiff.exclude rule skips applications")

	// Common flags
	cmd.Flags().StringVar(&opts.TemplatesPath, "templates-path", "",
		"Path to a directory overriding comment.md.tmpl and/or app.md.tmpl")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "./output",
		"Output directory in case the tool need to export files. In local mode, the tool will export the report to this directory.")
	cmd.Flags().BoolVar(&opts.EnableExportReport, "enable-export-report", false, "Enable export report (json file to output dir)")
	cmd.Flags().BoolVar(&opts.EnableExportPerformanceReport, "enable-export-performance-report", false, "Enable export performance report (json file to output dir)")
	cmd.Flags().IntVar(&opts.MaxDiffLength, "max-diff-length", runner.DefaultMaxDiffLength,
		"Diffs longer than this are exported as files instead of being inlined [github mode]")

	// GitHub mode flags
	cmd.Flags().StringVar(&opts.GhRepo, "gh-repo", "",
		"GitHub repository (e.g., org/repo) [github mode]")
	cmd.Flags().IntVar(&opts.GhPrNumber, "gh-pr-number", 0,
		"GitHub PR number [github mode]")
	cmd.Flags().StringVar(&opts.GhAPIURL, "gh-api-url", "",
		"GitHub API URL for GitHub Enterprise [github mode]")

	// Local mode flags
	cmd.Flags().StringVar(&opts.LcRepo, "repo", "",
		"Repository whose applications are diffed, e.g. github.com/org/repo [local mode]")
	cmd.Flags().StringVar(&opts.LcRevision, "revision", "",
		"Revision to diff against [local mode]")

	return cmd
}
