package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests and pipeline
// activity. This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)

	jobsTotal = make(map[string]int64)

	ingestProfiles = make(map[string]int64)

	syncRecordsTotal = make(map[string]int64)

	lifecycleRowsTotal = make(map[string]int64)
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

// RecordRequest increments request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordJob counts a scrape job reaching a terminal status.
func RecordJob(status string) {
	mu.Lock()
	defer mu.Unlock()
	jobsTotal[status]++
}

// RecordIngest accumulates the outcome counters of an ingestion call.
func RecordIngest(insertedRaw, addedToGlobal, skippedExisting int) {
	mu.Lock()
	defer mu.Unlock()
	ingestProfiles["inserted_raw"] += int64(insertedRaw)
	ingestProfiles["added_to_global"] += int64(addedToGlobal)
	ingestProfiles["skipped_existing"] += int64(skippedExisting)
}

// RecordSync counts records moved to or from the external record store.
// Direction is "push" or "pull".
func RecordSync(direction string, records int) {
	if records <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	syncRecordsTotal[direction] += int64(records)
}

// RecordLifecycle counts rows touched by a lifecycle sweep, labeled by
// operation (mark_unfollow, delete_completed, purge).
func RecordLifecycle(op string, rows int64) {
	if rows <= 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	lifecycleRowsTotal[op] += rows
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP outreach_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE outreach_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		v := requestsTotal[k]
		fmt.Fprintf(&b, "outreach_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, v)
	}

	b.WriteString("# HELP outreach_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE outreach_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP outreach_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE outreach_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		sum := latencyMsSum[k]
		cnt := latencyMsCount[k]
		fmt.Fprintf(&b, "outreach_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, sum)
		fmt.Fprintf(&b, "outreach_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, cnt)
	}

	b.WriteString("# HELP outreach_scrape_jobs_total Scrape jobs by terminal status\n")
	b.WriteString("# TYPE outreach_scrape_jobs_total counter\n")
	for _, k := range sortedKeys(jobsTotal) {
		fmt.Fprintf(&b, "outreach_scrape_jobs_total{status=\"%s\"} %d\n", k, jobsTotal[k])
	}

	b.WriteString("# HELP outreach_ingest_profiles_total Ingested profiles by outcome\n")
	b.WriteString("# TYPE outreach_ingest_profiles_total counter\n")
	for _, k := range sortedKeys(ingestProfiles) {
		fmt.Fprintf(&b, "outreach_ingest_profiles_total{outcome=\"%s\"} %d\n", k, ingestProfiles[k])
	}

	b.WriteString("# HELP outreach_sync_records_total Records synced with the external record store\n")
	b.WriteString("# TYPE outreach_sync_records_total counter\n")
	for _, k := range sortedKeys(syncRecordsTotal) {
		fmt.Fprintf(&b, "outreach_sync_records_total{direction=\"%s\"} %d\n", k, syncRecordsTotal[k])
	}

	b.WriteString("# HELP outreach_lifecycle_rows_total Assignment rows touched by lifecycle sweeps\n")
	b.WriteString("# TYPE outreach_lifecycle_rows_total counter\n")
	for _, k := range sortedKeys(lifecycleRowsTotal) {
		fmt.Fprintf(&b, "outreach_lifecycle_rows_total{op=\"%s\"} %d\n", k, lifecycleRowsTotal[k])
	}

	return b.String()
}
