package metrics

import (
	"strings"
	"testing"
)

func TestRecordRequestAndExport(t *testing.T) {
	// Record a single request and ensure it appears in the export.
	RecordRequest("GET", "/api/job-status/x", 200, 42)

	out := Export()
	if !strings.Contains(out, "outreach_http_requests_total{method=\"GET\",path=\"/api/job-status/x\",status=\"200\"}") {
		t.Fatalf("expected HTTP request metric in export, got:\n%s", out)
	}
	if !strings.Contains(out, "outreach_http_request_duration_ms_sum") || !strings.Contains(out, "outreach_http_request_duration_ms_count") {
		t.Fatalf("expected latency metrics headers in export, got:\n%s", out)
	}
}

func TestRecordJobAndIngest(t *testing.T) {
	RecordJob("completed")
	RecordJob("failed")
	RecordIngest(10, 7, 3)

	out := Export()
	for _, want := range []string{
		"outreach_scrape_jobs_total{status=\"completed\"}",
		"outreach_scrape_jobs_total{status=\"failed\"}",
		"outreach_ingest_profiles_total{outcome=\"inserted_raw\"}",
		"outreach_ingest_profiles_total{outcome=\"added_to_global\"}",
		"outreach_ingest_profiles_total{outcome=\"skipped_existing\"}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in export", want)
		}
	}
}

func TestRecordSyncSkipsZero(t *testing.T) {
	RecordSync("pull", 0)
	out := Export()
	if strings.Contains(out, "direction=\"pull\"") {
		t.Fatalf("zero-record sync should not emit a series:\n%s", out)
	}

	RecordSync("pull", 2)
	out = Export()
	if !strings.Contains(out, "outreach_sync_records_total{direction=\"pull\"} 2") {
		t.Fatalf("expected pull series in export:\n%s", out)
	}
}

func TestRecordLifecycle(t *testing.T) {
	RecordLifecycle("purge", 12)
	out := Export()
	if !strings.Contains(out, "outreach_lifecycle_rows_total{op=\"purge\"}") {
		t.Fatalf("expected lifecycle series in export:\n%s", out)
	}
}
