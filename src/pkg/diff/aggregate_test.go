package diff

import (
	"testing"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	"github.com/stretchr/testify/assert"
)

func outcome(name string, failed bool) models.DiffOutcome {
	o := models.DiffOutcome{App: testApp(name)}
	if failed {
		o.Failure = &models.DiffFailure{Err: "exit status 1"}
	}
	return o
}

func TestSortOutcomes(t *testing.T) {
	in := []models.DiffOutcome{
		outcome("b-app", false),
		outcome("B-app", false),
		outcome("a-app", true),
		outcome("c", false),
	}

	got := SortOutcomes(in)

	var order []string
	for _, o := range got {
		order = append(order, o.App.Name())
	}
	// case-sensitive: upper case sorts before lower case
	assert.Equal(t, []string{"B-app", "a-app", "b-app", "c"}, order)
	assert.Equal(t, "b-app", in[0].App.Name(), "input must not be reordered")
}

func TestPartition(t *testing.T) {
	in := []models.DiffOutcome{
		outcome("a", false),
		outcome("b", true),
		outcome("c", false),
		outcome("d", true),
	}

	ok, failed := Partition(in)

	assert.Len(t, ok, 2)
	assert.Len(t, failed, 2)
	assert.Equal(t, "a", ok[0].App.Name())
	assert.Equal(t, "c", ok[1].App.Name())
	assert.Equal(t, "b", failed[0].App.Name())
	assert.Equal(t, "d", failed[1].App.Name())
}

func TestPartitionEmpty(t *testing.T) {
	ok, failed := Partition(nil)
	assert.Empty(t, ok)
	assert.Empty(t, failed)
}

func TestCalcLineChangesFromDiffContent(t *testing.T) {
	tests := []struct {
		name                   string
		content                string
		added, deleted, totals int
	}{
		{"empty", "", 0, 0, 0},
		{
			name:    "argocd normal diff",
			content: "===== apps/Deployment billing/api ======\n12c12\n<     replicas: 1\n---\n>     replicas: 3\n",
			added:   1, deleted: 1, totals: 2,
		},
		{
			name:    "unified diff",
			content: "--- a\n+++ b\n@@ -1,2 +1,3 @@\n keep\n-old\n+new\n+more\n",
			added:   2, deleted: 1, totals: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, d, total := CalcLineChangesFromDiffContent(tt.content)
			assert.Equal(t, tt.added, a)
			assert.Equal(t, tt.deleted, d)
			assert.Equal(t, tt.totals, total)
		})
	}
}
