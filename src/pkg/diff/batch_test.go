package diff

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffAllOneOutcomePerApp(t *testing.T) {
	exec := newFakeExecutor(map[string][]response{
		"a-app": {{}},
		"b-app": {{stdout: "> diff\n", err: errExit1}},
		"c-app": {{stderr: "timeout", err: errExit1}},
	})
	d := NewDiffer(exec, testOptions(2))
	sleeps := withSleepCounter(d)

	apps := []models.Application{testApp("c-app"), testApp("a-app"), testApp("b-app")}
	outcomes := d.DiffAll(context.Background(), apps, "0a1b2c3")

	require.Len(t, outcomes, len(apps))
	sorted := SortOutcomes(outcomes)
	assert.Equal(t, "a-app", sorted[0].App.Name())
	assert.Equal(t, "b-app", sorted[1].App.Name())
	assert.Equal(t, "c-app", sorted[2].App.Name())

	assert.Equal(t, models.OutcomeClean, sorted[0].Kind())
	assert.Equal(t, models.OutcomeHasDiff, sorted[1].Kind())
	assert.Equal(t, models.OutcomeFault, sorted[2].Kind())
	assert.Equal(t, 2, exec.callCount("c-app"))
	assert.Equal(t, int32(1), *sleeps)
}

func TestDiffAllRespectsConcurrencyLimit(t *testing.T) {
	exec := newFakeExecutor(nil)
	exec.delay = 20 * time.Millisecond
	opts := testOptions(1)
	opts.Concurrency = 3
	d := NewDiffer(exec, opts)

	apps := make([]models.Application, 0, 12)
	for i := 0; i < 12; i++ {
		apps = append(apps, testApp(fmt.Sprintf("app-%02d", i)))
	}
	outcomes := d.DiffAll(context.Background(), apps, "HEAD")

	assert.Len(t, outcomes, 12)
	assert.LessOrEqual(t, exec.maxSeen, int32(3))
	assert.Greater(t, exec.maxSeen, int32(1))
}

func TestDiffAllFailuresDoNotCancelSiblings(t *testing.T) {
	responses := map[string][]response{}
	apps := make([]models.Application, 0, 6)
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("app-%d", i)
		if i%2 == 0 {
			responses[name] = []response{{err: errExit1}}
		}
		apps = append(apps, testApp(name))
	}
	exec := newFakeExecutor(responses)
	d := NewDiffer(exec, testOptions(1))

	outcomes := d.DiffAll(context.Background(), apps, "HEAD")

	require.Len(t, outcomes, 6)
	ok, failed := Partition(outcomes)
	assert.Len(t, ok, 3)
	assert.Len(t, failed, 3)
	for _, app := range apps {
		assert.Equal(t, 1, exec.callCount(app.Name()))
	}
}

func TestDiffAllEmpty(t *testing.T) {
	d := NewDiffer(newFakeExecutor(nil), testOptions(1))
	assert.Empty(t, d.DiffAll(context.Background(), nil, "HEAD"))
}

func TestDiffAllZeroConcurrency(t *testing.T) {
	opts := testOptions(1)
	opts.Concurrency = 0
	exec := newFakeExecutor(nil)
	d := NewDiffer(exec, opts)

	outcomes := d.DiffAll(context.Background(), []models.Application{testApp("x"), testApp("y")}, "HEAD")

	assert.Len(t, outcomes, 2)
	assert.Equal(t, int32(1), exec.maxSeen)
}
