package comment

import (
	"context"
	"fmt"
	"strings"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "comment")

// Store is the review thread the report lives on
type Store interface {
	GetComments(ctx context.Context, repo string, number int) ([]*models.Comment, error)
	CreateComment(ctx context.Context, repo string, number int, body string) (*models.Comment, error)
	UpdateComment(ctx context.Context, repo string, commentID int64, body string) error
}

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
)

// Reconciler keeps exactly one marked report comment on a pull request
type Reconciler struct {
	store  Store
	repo   string
	number int
	marker string
}

func NewReconciler(store Store, repo string, number int, marker string) *Reconciler {
	return &Reconciler{store: store, repo: repo, number: number, marker: marker}
}

// Reconcile publishes body. An existing marked comment is always updated, even with an
// empty report, so a stale report never survives. Without one, a comment is only created
// when hasContent is true.
func (r *Reconciler) Reconcile(ctx context.Context, body string, hasContent bool) (Action, error) {
	lg := logger.WithField("repo", r.repo).WithField("number", r.number)
	lg.Info("Reconcile: starting...")

	if !strings.Contains(body, r.marker) {
		return ActionSkipped, fmt.Errorf("comment body does not contain the marker %q", r.marker)
	}

	comments, err := r.store.GetComments(ctx, r.repo, r.number)
	if err != nil {
		return ActionSkipped, fmt.Errorf("failed to list comments: %w", err)
	}
	existing := FindMarked(comments, r.marker)

	switch {
	case existing != nil:
		if err := r.store.UpdateComment(ctx, r.repo, existing.ID, body); err != nil {
			return ActionSkipped, fmt.Errorf("failed to update comment %d: %w", existing.ID, err)
		}
		lg.WithField("commentID", existing.ID).Info("Updated existing GitHub comment")
		return ActionUpdated, nil
	case hasContent:
		created, err := r.store.CreateComment(ctx, r.repo, r.number, body)
		if err != nil {
			return ActionSkipped, fmt.Errorf("failed to create comment: %w", err)
		}
		lg.WithField("commentID", created.ID).Info("Created new GitHub comment")
		return ActionCreated, nil
	default:
		lg.Info("No diffs and no existing comment, nothing to post")
		return ActionSkipped, nil
	}
}

// FindMarked returns the first comment containing marker, or nil
func FindMarked(comments []*models.Comment, marker string) *models.Comment {
	for _, c := range comments {
		if c != nil && strings.Contains(c.Body, marker) {
			return c
		}
	}
	return nil
}
