// Package health implements liveness and readiness checks for the
// routecost HTTP server.
//
// Components register named CheckFuncs (the pricing catalog, the history
// store). Liveness always reports "ok" while the process runs; readiness
// runs every check concurrently under a per-check timeout and reports
// "degraded" if any check fails.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("history", store.Ping)
//	r.Get("/health", checker.LivenessHandler())
//	r.Get("/ready", checker.ReadinessHandler())
package health
