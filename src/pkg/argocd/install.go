package argocd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const releaseURLTemplate = "https://github.com/argoproj/argo-cd/releases/download/%s/argocd-%s-%s"

// ReleaseURL returns the download URL of the argocd CLI for a version and platform
func ReleaseURL(version, goos, goarch string) string {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return fmt.Sprintf(releaseURLTemplate, version, goos, goarch)
}

// Installer makes sure an argocd binary of the requested version is available
type Installer struct {
	HTTPClient *http.Client
	// URLFunc overrides ReleaseURL, mostly for tests
	URLFunc func(version, goos, goarch string) string
}

// EnsureCLI returns the binary to run. With no version it returns path as is (or "argocd").
// With a version it downloads the release into dir once and returns the downloaded binary.
func (i *Installer) EnsureCLI(ctx context.Context, path, version, dir string) (string, error) {
	if version == "" {
		if path == "" {
			return "argocd", nil
		}
		return path, nil
	}

	target := filepath.Join(dir, "argocd-"+strings.TrimPrefix(version, "v"))
	if _, err := os.Stat(target); err == nil {
		logger.WithField("path", target).Debug("EnsureCLI: already installed")
		return target, nil
	}

	urlFunc := i.URLFunc
	if urlFunc == nil {
		urlFunc = ReleaseURL
	}
	url := urlFunc(version, runtime.GOOS, runtime.GOARCH)
	logger.WithField("url", url).WithField("target", target).Info("EnsureCLI: downloading argocd CLI...")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create install directory: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	client := i.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download argocd CLI: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download argocd CLI %s: status %d", version, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(dir, ".argocd-download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write argocd CLI: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write argocd CLI: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0755); err != nil {
		return "", fmt.Errorf("failed to make argocd CLI executable: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to install argocd CLI: %w", err)
	}

	logger.WithField("path", target).Info("EnsureCLI: done.")
	return target, nil
}
