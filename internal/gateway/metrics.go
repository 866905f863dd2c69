package gateway

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the gateway.
var metrics struct {
	ListRequests     atomic.Int64
	HotRequests      atomic.Int64
	SearchRequests   atomic.Int64
	DetailRequests   atomic.Int64
	TypesRequests    atomic.Int64
	Dispatches       atomic.Int64
	DispatchErrors   atomic.Int64
	DispatchTimeouts atomic.Int64
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"list_requests":     metrics.ListRequests.Load(),
		"hot_requests":      metrics.HotRequests.Load(),
		"search_requests":   metrics.SearchRequests.Load(),
		"detail_requests":   metrics.DetailRequests.Load(),
		"types_requests":    metrics.TypesRequests.Load(),
		"dispatches":        metrics.Dispatches.Load(),
		"dispatch_errors":   metrics.DispatchErrors.Load(),
		"dispatch_timeouts": metrics.DispatchTimeouts.Load(),
	}
}

// FormatMetrics renders the counters as plain text for the /metrics endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"list_requests", "hot_requests", "search_requests",
		"detail_requests", "types_requests",
		"dispatches", "dispatch_errors", "dispatch_timeouts",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the server package.
func IncrListRequests()   { metrics.ListRequests.Add(1) }
func IncrHotRequests()    { metrics.HotRequests.Add(1) }
func IncrSearchRequests() { metrics.SearchRequests.Add(1) }
func IncrDetailRequests() { metrics.DetailRequests.Add(1) }
func IncrTypesRequests()  { metrics.TypesRequests.Add(1) }

func IncrDispatches()       { metrics.Dispatches.Add(1) }
func IncrDispatchErrors()   { metrics.DispatchErrors.Add(1) }
func IncrDispatchTimeouts() { metrics.DispatchTimeouts.Add(1) }
