package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpulse/pkg/contracts/domain"
)

func TestSummarize(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		kpi := Summarize(nil)
		assert.Equal(t, 0, kpi.TotalJobs)
		assert.Nil(t, kpi.AvgInRange)
		assert.Nil(t, kpi.AvgSet1d)
		assert.Nil(t, kpi.AvgApptEq)
		assert.Nil(t, kpi.MedOfMedians)
		assert.Nil(t, kpi.AvgFinal)
	})

	t.Run("means skip entities without the value", func(t *testing.T) {
		items := []domain.AggregatedResult{
			{
				Jobs:       10,
				PctInRange: floatPtr(0.8),
				PctSet1d:   floatPtr(0.5),
				MedDays:    floatPtr(2),
				FinalScore: floatPtr(80),
			},
			{
				Jobs:       5,
				PctInRange: floatPtr(0.4),
				MedDays:    floatPtr(6),
			},
			{
				Jobs: 3,
			},
		}

		kpi := Summarize(items)
		assert.Equal(t, 18, kpi.TotalJobs)

		require.NotNil(t, kpi.AvgInRange)
		assert.InDelta(t, 0.6, *kpi.AvgInRange, 1e-9)

		require.NotNil(t, kpi.AvgSet1d)
		assert.InDelta(t, 0.5, *kpi.AvgSet1d, 1e-9)

		assert.Nil(t, kpi.AvgApptEq)

		require.NotNil(t, kpi.MedOfMedians)
		assert.InDelta(t, 4, *kpi.MedOfMedians, 1e-9)

		// Final scores average on the 0-1 scale.
		require.NotNil(t, kpi.AvgFinal)
		assert.InDelta(t, 0.8, *kpi.AvgFinal, 1e-9)
	})
}

func TestBuildChildrenMap(t *testing.T) {
	installers := []domain.AggregatedResult{
		{Key: "Acme", Installer: "Acme"},
		{Key: "Borealis", Installer: "Borealis"},
	}
	techs := []domain.AggregatedResult{
		{Key: "Acme__Nikos", Installer: "Acme", Technician: "Nikos", FinalScore: floatPtr(60)},
		{Key: "Acme__Maria", Installer: "Acme", Technician: "Maria", FinalScore: floatPtr(90)},
		{Key: "__Orphan", Installer: "", Technician: "Orphan", FinalScore: floatPtr(99)},
	}

	children := BuildChildrenMap(installers, techs)

	t.Run("installer without technicians keeps an empty list", func(t *testing.T) {
		require.Contains(t, children, "Borealis")
		assert.Empty(t, children["Borealis"])
	})

	t.Run("children sort descending by final score", func(t *testing.T) {
		require.Len(t, children["Acme"], 2)
		assert.Equal(t, "Maria", children["Acme"][0].Technician)
		assert.Equal(t, "Nikos", children["Acme"][1].Technician)
	})

	t.Run("pair results without an installer are not attributed", func(t *testing.T) {
		assert.Len(t, children, 2)
	})
}
