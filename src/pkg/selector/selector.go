package selector

import (
	"net/url"
	"strings"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "selector")

// DefaultBranchRevisions are the target revisions treated as "tracks the default branch".
// An empty target revision means HEAD in Argo CD.
var DefaultBranchRevisions = []string{"main", "master", "HEAD"}

// Select returns the applications sourced from repo that track a default branch alias.
// Output order follows the input order but callers must not rely on it.
func Select(apps []models.Application, repo string) []models.Application {
	want := NormalizeRepo(repo)
	selected := make([]models.Application, 0, len(apps))
	for _, app := range apps {
		if !SameRepo(NormalizeRepo(app.Spec.Source.RepoURL), want) {
			continue
		}
		if !IsDefaultBranch(app.Spec.Source.TargetRevision) {
			logger.WithField("app", app.Name()).WithField("targetRevision", app.Spec.Source.TargetRevision).
				Debug("Skipping app not tracking the default branch")
			continue
		}
		selected = append(selected, app)
	}
	logger.WithField("repo", repo).WithField("total", len(apps)).WithField("selected", len(selected)).Info("Selected applications")
	return selected
}

func IsDefaultBranch(rev string) bool {
	if rev == "" {
		return true
	}
	rev = strings.TrimPrefix(rev, "refs/heads/")
	for _, alias := range DefaultBranchRevisions {
		if rev == alias {
			return true
		}
	}
	return false
}

// NormalizeRepo reduces a repository reference to "host/owner/repo" (or "owner/repo" when no
// host is given), lower-cased, without scheme, credentials, port, ".git" or trailing slash.
// Handles https://, ssh://, git@host:owner/repo and bare owner/repo forms.
func NormalizeRepo(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	var host, path string
	switch {
	case strings.Contains(ref, "://"):
		u, err := url.Parse(ref)
		if err != nil {
			return strings.ToLower(ref)
		}
		host, path = u.Hostname(), u.Path
	case strings.Contains(ref, "@") && strings.Contains(ref, ":"):
		// scp-like syntax: git@github.com:owner/repo.git
		rest := ref[strings.Index(ref, "@")+1:]
		parts := strings.SplitN(rest, ":", 2)
		host, path = parts[0], parts[1]
	default:
		path = ref
	}

	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")
	path = strings.Trim(path, "/")
	if host == "" {
		return strings.ToLower(path)
	}
	return strings.ToLower(host + "/" + path)
}

// SameRepo compares two normalized references. A bare owner/repo reference matches
// host/owner/repo on any host, but never a deeper path such as host/group/owner/repo.
func SameRepo(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return bareMatch(a, b) || bareMatch(b, a)
}

func bareMatch(qualified, bare string) bool {
	return strings.Count(bare, "/") == 1 &&
		strings.Count(qualified, "/") == 2 &&
		strings.HasSuffix(qualified, "/"+bare)
}
