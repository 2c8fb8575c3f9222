package argocd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffArgs(t *testing.T) {
	o := CLIOptions{
		Server:    "argocd.example.com",
		AuthToken: "abc",
		Insecure:  true,
		GrpcWeb:   true,
		ExtraArgs: []string{"--local-repo-root", "/src"},
	}

	got := o.DiffArgs("billing", "0a1b2c3")

	assert.Equal(t, []string{
		"app", "diff", "billing", "--revision", "0a1b2c3",
		"--server", "argocd.example.com",
		"--auth-token=abc",
		"--insecure",
		"--grpc-web",
		"--local-repo-root", "/src",
	}, got)
}

func TestDiffArgsMinimal(t *testing.T) {
	got := CLIOptions{}.DiffArgs("web", "HEAD")
	assert.Equal(t, []string{"app", "diff", "web", "--revision", "HEAD"}, got)
	assert.Equal(t, "argocd", CLIOptions{}.Binary())
	assert.Equal(t, "/opt/argocd", CLIOptions{Path: "/opt/argocd"}.Binary())
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "argocd app diff web", CommandLine("argocd", []string{"app", "diff", "web"}))
}

func TestExecExecutor(t *testing.T) {
	e := &ExecExecutor{}

	stdout, stderr, err := e.Run(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 1")

	assert.Error(t, err)
	assert.Equal(t, "out\n", stdout)
	assert.Equal(t, "err\n", stderr)
}

func TestExecExecutorInheritsEnvironment(t *testing.T) {
	t.Setenv("ARGOCD_OPTS", "--grpc-web")
	e := &ExecExecutor{}

	stdout, _, err := e.Run(context.Background(), "sh", "-c", "printf %s \"$ARGOCD_OPTS\"")

	require.NoError(t, err)
	assert.Equal(t, "--grpc-web", stdout)
}

func TestEnsureCLI(t *testing.T) {
	downloads := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		downloads++
		assert.Equal(t, "/v2.11.0", r.URL.Path)
		_, _ = w.Write([]byte("#!/bin/sh\necho fake\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	inst := &Installer{URLFunc: func(version, _, _ string) string { return srv.URL + "/" + version }}

	path, err := inst.EnsureCLI(context.Background(), "", "v2.11.0", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "argocd-2.11.0"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0100)

	again, err := inst.EnsureCLI(context.Background(), "", "v2.11.0", dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, 1, downloads)
}

func TestEnsureCLINotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	inst := &Installer{URLFunc: func(version, _, _ string) string { return srv.URL + "/" + version }}
	_, err := inst.EnsureCLI(context.Background(), "", "v0.0.0", t.TempDir())
	assert.Error(t, err)
}

func TestEnsureCLIWithoutVersion(t *testing.T) {
	inst := &Installer{}
	path, err := inst.EnsureCLI(context.Background(), "/usr/local/bin/argocd", "", "")
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/argocd", path)

	path, err = inst.EnsureCLI(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "argocd", path)
}

func TestReleaseURL(t *testing.T) {
	assert.Equal(t,
		"https://github.com/argoproj/argo-cd/releases/download/v2.11.0/argocd-linux-amd64",
		ReleaseURL("2.11.0", "linux", "amd64"))
}
