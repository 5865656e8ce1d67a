package receipt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/notifycast/pkg/errors"
)

func TestAggregate(t *testing.T) {
	agg := NewAggregator(nil)

	t.Run("AllSent", func(t *testing.T) {
		report := agg.Aggregate([]Outcome{
			{Target: "growl://host1", Status: StatusSent},
			{Target: "xbmc://host2", Status: StatusSent},
		}, 25*time.Millisecond)

		assert.True(t, report.OK())
		assert.Equal(t, 2, report.Total)
		assert.Equal(t, 2, report.Successful)
		assert.Zero(t, report.Failed)
		assert.Equal(t, 25*time.Millisecond, report.Duration)
	})

	t.Run("PartialFailureIsOverallFailure", func(t *testing.T) {
		report := agg.Aggregate([]Outcome{
			{Target: "growl://host1", Status: StatusSent},
			{Target: "foo://bar", Status: StatusFailed, Code: errors.CodeUnsupportedScheme},
			{Target: "xbmc://host2", Status: StatusSent},
		}, 0)

		assert.False(t, report.OK())
		assert.Equal(t, 3, report.Total)
		assert.Equal(t, 2, report.Successful)
		assert.Equal(t, 1, report.Failed)
	})

	t.Run("SkippedCountsAgainstOverall", func(t *testing.T) {
		report := agg.Aggregate([]Outcome{
			{Target: "pbul://token", Status: StatusSkipped, Error: "no recipients"},
		}, 0)

		assert.False(t, report.OK())
		assert.Equal(t, 1, report.Skipped)
		assert.Zero(t, report.Failed, "skips must stay distinguishable from failures")
	})

	t.Run("EmptyReportIsNotSuccess", func(t *testing.T) {
		report := agg.Aggregate(nil, 0)
		assert.False(t, report.OK())
		assert.Zero(t, report.Total)
		assert.Empty(t, report.Outcomes)
	})
}

func TestOutcomeSent(t *testing.T) {
	assert.True(t, (&Outcome{Status: StatusSent}).Sent())
	assert.False(t, (&Outcome{Status: StatusFailed}).Sent())
	assert.False(t, (&Outcome{Status: StatusSkipped}).Sent())
}
