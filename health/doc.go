// Package health tracks the health of the ontocache parts (schema store,
// class cache) and exposes the aggregate over HTTP.
//
// Three states are reported: healthy, degraded and unhealthy. The aggregate
// is unhealthy when any part is unhealthy, degraded when any part is
// degraded, and healthy otherwise.
//
//	monitor := health.NewMonitor()
//	monitor.UpdateHealthy("schema_store", "12 classes loaded")
//	monitor.Update("class_cache", health.FromError("class_cache", err))
//
//	server.HandleHealth(health.Handler(monitor, "ontocache"))
//
// Error messages are sanitized before they are reported: URLs, file paths,
// IP addresses, ports and credential assignments are masked.
package health
