package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpulse/pkg/contracts/domain"
)

func intPtr(v int) *int { return &v }

func row(installer, technician string, inRange, set1d, apptEq domain.Tri, days *int) domain.ClassifiedRow {
	return domain.ClassifiedRow{
		Installer:   installer,
		Technician:  technician,
		InRange:     inRange,
		SetWithin1d: set1d,
		ApptEq:      apptEq,
		Days:        days,
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		input    []float64
		expected *float64
	}{
		{"empty is nil", nil, nil},
		{"single element", []float64{5}, floatPtr(5)},
		{"even count averages the middle pair", []float64{1, 3}, floatPtr(2)},
		{"four elements", []float64{1, 2, 3, 4}, floatPtr(2.5)},
		{"odd count takes the middle", []float64{9, 1, 5}, floatPtr(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Median(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expected, *got, 1e-9)
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	input := []float64{3, 1, 2}
	Median(input)
	assert.Equal(t, []float64{3, 1, 2}, input)
}

func TestAggregateGrouping(t *testing.T) {
	rows := []domain.ClassifiedRow{
		row("Acme", "Nikos", domain.TriTrue, domain.TriUnknown, domain.TriTrue, intPtr(3)),
		row("Acme", "Maria", domain.TriFalse, domain.TriTrue, domain.TriUnknown, intPtr(5)),
	}

	installers, pairs := Aggregate(rows)

	t.Run("rows share one installer bucket", func(t *testing.T) {
		require.Len(t, installers, 1)
		acme := installers[0]
		assert.Equal(t, "Acme", acme.Key)
		assert.Equal(t, "Acme", acme.Name)
		assert.Equal(t, 2, acme.Jobs)
	})

	t.Run("rows split into distinct pair buckets", func(t *testing.T) {
		require.Len(t, pairs, 2)
		for _, p := range pairs {
			assert.Equal(t, 1, p.Jobs)
		}
	})

	t.Run("pair names use the arrow form", func(t *testing.T) {
		names := []string{pairs[0].Name, pairs[1].Name}
		assert.ElementsMatch(t, []string{"Acme ⟶ Nikos", "Acme ⟶ Maria"}, names)
	})
}

func TestAggregateDenominatorRule(t *testing.T) {
	rows := []domain.ClassifiedRow{
		row("Acme", "", domain.TriTrue, domain.TriUnknown, domain.TriFalse, nil),
		row("Acme", "", domain.TriFalse, domain.TriUnknown, domain.TriFalse, nil),
		row("Acme", "", domain.TriUnknown, domain.TriUnknown, domain.TriTrue, nil),
	}

	installers, _ := Aggregate(rows)
	require.Len(t, installers, 1)
	acme := installers[0]

	// Denominator moves only on definite results, numerator only on true.
	assert.Equal(t, 2, acme.InRangeDen)
	require.NotNil(t, acme.PctInRange)
	assert.InDelta(t, 0.5, *acme.PctInRange, 1e-9)

	assert.Equal(t, 0, acme.Set1dDen)
	assert.Nil(t, acme.PctSet1d)

	assert.Equal(t, 3, acme.ApptEqDen)
	require.NotNil(t, acme.PctApptEq)
	assert.InDelta(t, 1.0/3.0, *acme.PctApptEq, 1e-9)
}

func TestAggregateDaysPolicy(t *testing.T) {
	rows := []domain.ClassifiedRow{
		row("Acme", "", domain.TriUnknown, domain.TriUnknown, domain.TriUnknown, intPtr(4)),
		row("Acme", "", domain.TriUnknown, domain.TriUnknown, domain.TriUnknown, intPtr(-2)),
		row("Acme", "", domain.TriUnknown, domain.TriUnknown, domain.TriUnknown, nil),
		row("Acme", "", domain.TriUnknown, domain.TriUnknown, domain.TriUnknown, intPtr(0)),
	}

	installers, _ := Aggregate(rows)
	require.Len(t, installers, 1)
	// Negative and unknown day values stay out of the median input.
	require.NotNil(t, installers[0].MedDays)
	assert.InDelta(t, 2, *installers[0].MedDays, 1e-9)
}

func TestAggregateSkipsRowsWithoutKeys(t *testing.T) {
	rows := []domain.ClassifiedRow{
		row("", "Nikos", domain.TriTrue, domain.TriTrue, domain.TriTrue, nil),
		row("", "", domain.TriTrue, domain.TriTrue, domain.TriTrue, nil),
	}

	installers, pairs := Aggregate(rows)
	assert.Empty(t, installers)
	// A technician with no installer still forms a pair bucket.
	require.Len(t, pairs, 1)
	assert.Equal(t, "__Nikos", pairs[0].Key)
	assert.Equal(t, " ⟶ Nikos", pairs[0].Name)
}

func TestAggregateOrderInvariance(t *testing.T) {
	base := []domain.ClassifiedRow{
		row("Acme", "Nikos", domain.TriTrue, domain.TriFalse, domain.TriTrue, intPtr(2)),
		row("Acme", "Maria", domain.TriFalse, domain.TriTrue, domain.TriUnknown, intPtr(7)),
		row("Borealis", "Kostas", domain.TriTrue, domain.TriTrue, domain.TriTrue, intPtr(1)),
		row("Borealis", "Kostas", domain.TriUnknown, domain.TriTrue, domain.TriFalse, nil),
		row("Acme", "Nikos", domain.TriTrue, domain.TriTrue, domain.TriTrue, intPtr(9)),
	}

	wantInstallers, wantPairs := Aggregate(base)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := make([]domain.ClassifiedRow, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		installers, pairs := Aggregate(shuffled)
		assert.Equal(t, wantInstallers, installers)
		assert.Equal(t, wantPairs, pairs)
	}
}
