// Routecost estimates what LLM traffic costs once router fees, caching,
// retries and batching are accounted for, and how much energy it uses.
//
// Usage:
//
//	# Estimate a workload against one model
//	routecost estimate gpt-4o --input-tokens 1200 --output-tokens 300 --requests 50000
//
//	# Rank every catalog model for the same workload
//	routecost compare --input-tokens 1200 --output-tokens 300
//
//	# Evaluate a YAML file of mixed workloads
//	routecost batch workloads.yaml
//
//	# Serve the HTTP API
//	routecost serve --config /etc/routecost/config.yaml
//
//	# Summarize recorded runs
//	routecost history summary --since 2026-01-01T00:00:00Z
package main

import "os"

func main() {
	os.Exit(Execute())
}
