package argocd

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Executor runs an external command and returns what it printed.
// A non-nil error does not imply empty stdout: `argocd app diff` exits 1 when there is a diff.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecExecutor runs commands with os/exec
type ExecExecutor struct{}

var _ Executor = (*ExecExecutor)(nil)

func (e *ExecExecutor) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// CLIOptions describes how to invoke the argocd CLI
type CLIOptions struct {
	Path      string // binary path, defaults to "argocd"
	Server    string
	AuthToken string
	Insecure  bool
	PlainText bool
	GrpcWeb   bool
	ExtraArgs []string
}

func (o CLIOptions) Binary() string {
	if o.Path == "" {
		return "argocd"
	}
	return o.Path
}

// DiffArgs builds the arguments of `argocd app diff` for one application at revision
func (o CLIOptions) DiffArgs(app, revision string) []string {
	args := []string{"app", "diff", app, "--revision", revision}
	if o.Server != "" {
		args = append(args, "--server", o.Server)
	}
	if o.AuthToken != "" {
		args = append(args, "--auth-token="+o.AuthToken)
	}
	if o.Insecure {
		args = append(args, "--insecure")
	}
	if o.PlainText {
		args = append(args, "--plaintext")
	}
	if o.GrpcWeb {
		args = append(args, "--grpc-web")
	}
	return append(args, o.ExtraArgs...)
}

// CommandLine renders a command for display. The caller is responsible for masking secrets.
func CommandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
