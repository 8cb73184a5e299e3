package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpulse/internal/dataprocessing"
	"fieldpulse/internal/metrics"
	"fieldpulse/pkg/contracts/domain"
)

var testHeaders = []string{
	"Installer", "Technician", "Appointment Date", "Appointment Set On",
	"Last Assigned On", "Product Delivery Date", "Appointment Range",
	"Completed On", "Service", "Work Order",
}

func testRow(installer, technician string) dataprocessing.RawRow {
	return dataprocessing.RawRow{
		"Installer":             dataprocessing.TextCell(installer),
		"Technician":            dataprocessing.TextCell(technician),
		"Appointment Date":      dataprocessing.TextCell("12/5/2024"),
		"Appointment Set On":    dataprocessing.TextCell("11/5/2024"),
		"Last Assigned On":      dataprocessing.TextCell("10/5/2024"),
		"Product Delivery Date": dataprocessing.TextCell("8/5/2024"),
		"Appointment Range":     dataprocessing.TextCell("12/5 έως 14/5"),
		"Completed On":          dataprocessing.TextCell("12/5/2024"),
		"Service":               dataprocessing.TextCell("Maintenance"),
		"Work Order":            dataprocessing.TextCell("WO-1"),
	}
}

func testInput(rows ...dataprocessing.RawRow) ProcessInput {
	return ProcessInput{
		Headers:      testHeaders,
		Rows:         rows,
		Weights:      domain.DefaultWeights(),
		CredibilityK: 100,
	}
}

func TestReportServiceProcess(t *testing.T) {
	svc := NewReportService(slog.Default(), metrics.NewPipeline(prometheus.NewRegistry()))
	ctx := context.Background()

	report, err := svc.Process(ctx, testInput(
		testRow("Acme", "Nikos"),
		testRow("Acme", "Maria"),
		testRow("Borealis", "Kostas"),
	))
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.NotEmpty(t, report.ID)

	require.Len(t, report.Installers, 2)
	require.Len(t, report.InstallerTechs, 3)

	var acme *domain.AggregatedResult
	for i := range report.Installers {
		if report.Installers[i].Key == "Acme" {
			acme = &report.Installers[i]
		}
	}
	require.NotNil(t, acme)
	assert.Equal(t, 2, acme.Jobs)
	require.NotNil(t, acme.FinalScore)

	assert.Equal(t, 3, report.InstallerKpi.TotalJobs)
	require.Contains(t, report.Children, "Acme")
	assert.Len(t, report.Children["Acme"], 2)
}

func TestReportServiceMissingColumns(t *testing.T) {
	svc := NewReportService(slog.Default(), nil)

	_, err := svc.Process(context.Background(), ProcessInput{
		Headers:      []string{"Installer", "Technician", "Completed On"},
		Rows:         nil,
		Weights:      domain.DefaultWeights(),
		CredibilityK: 100,
	})

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{
		dataprocessing.KeyAppointmentDate,
		dataprocessing.KeyAppointmentSetOn,
		dataprocessing.KeyLastAssignedOn,
		dataprocessing.KeyProductDeliveryDate,
		dataprocessing.KeyAppointmentRange,
	}, missing.Missing)
}

func TestReportServiceEmptyFilteredSet(t *testing.T) {
	svc := NewReportService(slog.Default(), nil)

	in := testInput(testRow("Acme", "Nikos"))
	in.Filters = domain.Filters{Service: "nonexistent"}

	report, err := svc.Process(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, report.Installers)
	assert.Empty(t, report.InstallerTechs)
	assert.Equal(t, 0, report.InstallerKpi.TotalJobs)
	assert.Nil(t, report.InstallerKpi.AvgFinal)
}

func TestReportServiceMemoization(t *testing.T) {
	svc := NewReportService(slog.Default(), nil)
	ctx := context.Background()

	first, err := svc.Process(ctx, testInput(testRow("Acme", "Nikos")))
	require.NoError(t, err)

	again, err := svc.Process(ctx, testInput(testRow("Acme", "Nikos")))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "identical inputs must hit the memoized report")

	changed, err := svc.Process(ctx, testInput(testRow("Acme", "Maria")))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, changed.ID)
}

func TestReportServiceLatest(t *testing.T) {
	svc := NewReportService(slog.Default(), nil)
	ctx := context.Background()

	assert.Nil(t, svc.Latest(ctx))

	report, err := svc.Process(ctx, testInput(testRow("Acme", "Nikos")))
	require.NoError(t, err)
	assert.Equal(t, report, svc.Latest(ctx))
}
