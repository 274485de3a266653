package reports_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/impactlens/dashboard-bff/internal/utils"
	"github.com/impactlens/dashboard-bff/reports"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newFixedNormalizer() *reports.Normalizer {
	return reports.NewNormalizer(reports.WithNowTime(func() time.Time { return fixedNow }))
}

func TestNormalizePayloadShapes(t *testing.T) {
	n := newFixedNormalizer()
	entry := `{"id":"r1","status":"ready"}`

	tests := []struct {
		name    string
		payload string
		length  int
	}{
		{"bare array", fmt.Sprintf(`[%s,%s]`, entry, entry), 2},
		{"data wrapper", fmt.Sprintf(`{"data":[%s]}`, entry), 1},
		{"reports wrapper", fmt.Sprintf(`{"reports":[%s,%s,%s]}`, entry, entry, entry), 3},
		{"unrecognized shape", `{"something":"else"}`, 0},
		{"not json", `<html>error</html>`, 0},
		{"empty array", `[]`, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Len(t, n.Normalize([]byte(tc.payload)), tc.length)
		})
	}
}

func TestNormalizeStatusFallback(t *testing.T) {
	n := newFixedNormalizer()

	tests := []struct {
		name     string
		entry    string
		expected reports.Status
	}{
		{"canonical status", `{"id":"r1","status":"pending"}`, reports.StatusPending},
		{"upper-cased status", `{"id":"r1","status":"FAILED"}`, reports.StatusFailed},
		{"state alias", `{"id":"r1","state":"processing"}`, reports.StatusProcessing},
		{"phase alias", `{"id":"r1","phase":"failed"}`, reports.StatusFailed},
		{"unrecognized vocabulary", `{"id":"r1","status":"DONE"}`, reports.StatusReady},
		{"missing status", `{"id":"r1"}`, reports.StatusReady},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			normalized := n.Normalize([]byte("[" + tc.entry + "]"))
			require.Len(t, normalized, 1)
			require.Equal(t, tc.expected, normalized[0].Status)
		})
	}
}

func TestNormalizeFieldPrecedence(t *testing.T) {
	n := newFixedNormalizer()

	normalized := n.Normalize([]byte(`[{
		"id": "r1",
		"report_id": "ignored",
		"report_type": "esg-summary",
		"type": "ignored",
		"status": "pending",
		"state": "ignored"
	}]`))
	require.Len(t, normalized, 1)
	require.Equal(t, "r1", normalized[0].ID)
	require.Equal(t, "esg-summary", normalized[0].ReportType)
	require.Equal(t, reports.StatusPending, normalized[0].Status)
}

func TestNormalizeDefaultsAndSyntheticID(t *testing.T) {
	n := newFixedNormalizer()

	normalized := n.Normalize([]byte(`[{},{}]`))
	require.Len(t, normalized, 2)

	for i, report := range normalized {
		require.Equal(t, fmt.Sprintf("tmp-%d-%d", fixedNow.UnixMilli(), i), report.ID)
		require.Equal(t, reports.DefaultReportType, report.ReportType)
		require.Equal(t, reports.StatusReady, report.Status)
		require.Nil(t, report.CSVURL)
		require.Nil(t, report.JSONURL)
		require.Nil(t, report.PDFURL)
	}
}

func TestNormalizeUnparsableTimestampUsesNow(t *testing.T) {
	n := newFixedNormalizer()

	normalized := n.Normalize([]byte(`[{"id":"r1","created_at":"not a date"}]`))
	require.Len(t, normalized, 1)
	require.Equal(t, fixedNow.Format(time.RFC3339), normalized[0].CreatedAt)

	parsed, err := time.Parse(time.RFC3339, normalized[0].CreatedAt)
	require.NoError(t, err)
	require.WithinDuration(t, fixedNow, parsed, time.Second)
}

func TestNormalizeTimestampVariants(t *testing.T) {
	n := newFixedNormalizer()

	tests := []struct {
		name     string
		entry    string
		expected string
	}{
		{"rfc3339", `{"id":"r1","created_at":"2024-03-01T10:30:00Z"}`, "2024-03-01T10:30:00Z"},
		{"date only", `{"id":"r1","created_at":"2024-03-01"}`, "2024-03-01T00:00:00Z"},
		{"unix seconds", `{"id":"r1","timestamp":1709288100}`, "2024-03-01T10:15:00Z"},
		{"unix millis", `{"id":"r1","timestamp":1709288100000}`, "2024-03-01T10:15:00Z"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			normalized := n.Normalize([]byte("[" + tc.entry + "]"))
			require.Len(t, normalized, 1)
			require.Equal(t, tc.expected, normalized[0].CreatedAt)
		})
	}
}

func TestNormalizePDFFallsBackToExportLink(t *testing.T) {
	n := newFixedNormalizer()

	normalized := n.Normalize([]byte(`[{"report_id":"r9","state":"DONE","pdf_url":null,"export_link":"https://x/y.pdf"}]`))
	require.Len(t, normalized, 1)
	require.Equal(t, "r9", normalized[0].ID)
	require.Equal(t, reports.StatusReady, normalized[0].Status)
	require.Equal(t, "https://x/y.pdf", utils.Value(normalized[0].PDFURL))
}

func TestNormalizeCanonicalRoundTrip(t *testing.T) {
	n := newFixedNormalizer()

	canonical := reports.Report{
		ID:         "r1",
		ReportType: "business-overview",
		Status:     reports.StatusReady,
		CreatedAt:  "2024-03-01T10:30:00Z",
		CSVURL:     utils.Ptr("https://x/r1.csv"),
		JSONURL:    utils.Ptr("https://x/r1.json"),
		PDFURL:     utils.Ptr("https://x/r1.pdf"),
	}
	payload, err := json.Marshal([]reports.Report{canonical})
	require.NoError(t, err)

	normalized := n.Normalize(payload)
	require.Len(t, normalized, 1)
	require.Equal(t, canonical, normalized[0])
}

func TestNormalizePreservesInputOrder(t *testing.T) {
	n := newFixedNormalizer()

	normalized := n.Normalize([]byte(`[{"id":"a"},{"id":"b"},{"id":"c"}]`))
	require.Len(t, normalized, 3)
	require.Equal(t, "a", normalized[0].ID)
	require.Equal(t, "b", normalized[1].ID)
	require.Equal(t, "c", normalized[2].ID)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := newFixedNormalizer()
	payload := []byte(`[{"report_id":"r1","state":"done","export_link":"https://x/a.pdf"},{}]`)

	first := n.Normalize(payload)
	second := n.Normalize(payload)
	require.Equal(t, first, second)
}
