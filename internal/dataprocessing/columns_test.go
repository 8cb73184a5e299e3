package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"uppercase with spaces", "  COMPLETED ON ", "completed on"},
		{"underscores collapse", "msdyn_completedon", "msdyn completedon"},
		{"mixed runs", "Appointment__Set   On", "appointment set on"},
		{"greek accents fold", "Γεωγραφικό Πλάτος", "γεωγραφικο πλατος"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHeader(tt.input))
		})
	}
}

func TestBuildColumnMap(t *testing.T) {
	syns := DefaultSynonyms()

	t.Run("completed-on variants resolve to the same key", func(t *testing.T) {
		for _, header := range []string{"Completed On", "msdyn_completedon", "COMPLETED ON"} {
			m := BuildColumnMap([]string{header}, syns)
			require.Contains(t, m, KeyCompletedOn, "header %q", header)
			assert.Equal(t, header, m[KeyCompletedOn])
		}
	})

	t.Run("substring fallback respects word boundaries", func(t *testing.T) {
		m := BuildColumnMap([]string{"installerid"}, syns)
		assert.NotContains(t, m, KeyInstaller)
	})

	t.Run("word-boundary substring match succeeds", func(t *testing.T) {
		m := BuildColumnMap([]string{"Main Installer Name Field"}, syns)
		require.Contains(t, m, KeyInstaller)
		assert.Equal(t, "Main Installer Name Field", m[KeyInstaller])
	})

	t.Run("exact match wins over fallback and ties break by header order", func(t *testing.T) {
		m := BuildColumnMap([]string{"the installer column", "Installer"}, syns)
		require.Contains(t, m, KeyInstaller)
		assert.Equal(t, "Installer", m[KeyInstaller])
	})

	t.Run("original header spelling is preserved in the map", func(t *testing.T) {
		m := BuildColumnMap([]string{"APPOINTMENT   RANGE"}, syns)
		require.Contains(t, m, KeyAppointmentRange)
		assert.Equal(t, "APPOINTMENT   RANGE", m[KeyAppointmentRange])
	})

	t.Run("unmatched keys are omitted entirely", func(t *testing.T) {
		m := BuildColumnMap([]string{"Unrelated"}, syns)
		assert.Empty(t, m)
	})
}

func TestCheckEssential(t *testing.T) {
	syns := DefaultSynonyms()

	t.Run("full header set passes", func(t *testing.T) {
		headers := []string{
			"Installer", "Technician", "Appointment Date", "Appointment Set On",
			"Last Assigned On", "Product Delivery Date", "Appointment Range", "Completed On",
		}
		check := CheckEssential(BuildColumnMap(headers, syns))
		assert.True(t, check.OK)
		assert.Empty(t, check.Missing)
	})

	t.Run("missing keys are reported verbatim", func(t *testing.T) {
		headers := []string{"Installer", "Technician", "Completed On"}
		check := CheckEssential(BuildColumnMap(headers, syns))
		assert.False(t, check.OK)
		assert.ElementsMatch(t, []string{
			KeyAppointmentDate, KeyAppointmentSetOn, KeyLastAssignedOn,
			KeyProductDeliveryDate, KeyAppointmentRange,
		}, check.Missing)
	})
}
