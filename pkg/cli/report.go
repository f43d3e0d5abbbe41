package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mercator-hq/routecost/pkg/catalog"
	"mercator-hq/routecost/pkg/costs"
	"mercator-hq/routecost/pkg/engine"
	"mercator-hq/routecost/pkg/format"
	"mercator-hq/routecost/pkg/history"
	"mercator-hq/routecost/pkg/routers"
	"mercator-hq/routecost/pkg/service"

	"github.com/dustin/go-humanize"
)

func kv(title string, pairs ...string) Table {
	t := Table{Title: title}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.AddRow(pairs[i], pairs[i+1])
	}
	return t
}

// EstimateTables renders a full estimate as a set of key/value tables.
func EstimateTables(res *engine.Result) []Table {
	b := res.Breakdown
	tables := []Table{
		kv(fmt.Sprintf("%s (%s)", res.ModelName, res.ModelID),
			"Requests", format.Count(int64(res.RequestsCount)),
			"Total tokens", format.Tokens(res.TotalTokens),
			"Total cost", format.Currency(b.Total),
			"Commission rate", format.Percent(res.CommissionRate),
			"Cost tier", string(res.Insights.CostTier),
		),
		kv("Breakdown",
			"Input", format.MicroCurrency(b.InputCost),
			"Output", format.MicroCurrency(b.OutputCost),
			"Images", format.MicroCurrency(b.ImagesCost),
			"Audio", format.MicroCurrency(b.AudioCost),
			"Video", format.MicroCurrency(b.VideoCost),
			"Subtotal", format.MicroCurrency(b.Subtotal),
			"Batch discount", "-"+format.MicroCurrency(b.BatchDiscount),
			"Cache savings", "-"+format.MicroCurrency(b.CacheSavings),
			"Retry penalty", "+"+format.MicroCurrency(b.RetryPenalty),
			"Router commission", "+"+format.MicroCurrency(b.RouterCommission),
			"Total", format.MicroCurrency(b.Total),
		),
		kv("Per unit",
			"Per request", format.MicroCurrency(res.PerUnit.CostPerRequest),
			"Per input token", format.MicroCurrency(res.PerUnit.CostPerInputToken),
			"Per output token", format.MicroCurrency(res.PerUnit.CostPerOutputToken),
			"Per token", format.MicroCurrency(res.PerUnit.CostPerTotalToken),
		),
		kv("Projections",
			"Hourly", format.Currency(res.Projections.Hourly),
			"Daily", format.Currency(res.Projections.Daily),
			"Weekly", format.Currency(res.Projections.Weekly),
			"Monthly", format.Currency(res.Projections.Monthly),
			"Annual", format.Currency(res.Projections.Annual),
		),
		kv("Performance",
			"Latency", fmt.Sprintf("%.0f ms", res.Performance.LatencyMs),
			"Throughput", fmt.Sprintf("%.0f tok/s", res.Performance.ThroughputTPS),
			"Quality score", strconv.FormatFloat(res.Performance.QualityScore, 'f', 2, 64),
			"Quality-adjusted cost", format.MicroCurrency(res.Performance.QualityAdjustedCost),
			"Efficiency", humanize.FormatFloat("#,###.##", res.Performance.EfficiencyScore)+" tokens/$",
		),
		kv("Sustainability",
			"Energy", format.Energy(res.Sustainability.EnergyWh),
			"Per request", format.Energy(res.Sustainability.EnergyPerRequestWh),
			"CO2e", format.CO2e(res.Sustainability.Equivalents.CO2eKg),
			"Phone charges", humanize.FormatFloat("#,###.##", res.Sustainability.Equivalents.PhoneCharges),
			"Household hours", humanize.FormatFloat("#,###.##", res.Sustainability.Equivalents.HouseholdHours),
		),
	}

	if len(res.Insights.Opportunities) > 0 || len(res.Insights.Risks) > 0 {
		insights := Table{Title: "Insights", Headers: []string{"KIND", "CODE", "DETAIL"}}
		for _, o := range res.Insights.Opportunities {
			insights.AddRow("opportunity", string(o.Code), o.Message)
		}
		for _, r := range res.Insights.Risks {
			insights.AddRow("risk", string(r.Code), r.Message)
		}
		tables = append(tables, insights)
	}

	return tables
}

// CompareTable ranks results as returned, cheapest first.
func CompareTable(results []*engine.Result) Table {
	t := Table{Headers: []string{"RANK", "MODEL", "TOTAL", "PER REQUEST", "COMMISSION", "ENERGY", "TIER"}}
	for i, res := range results {
		t.AddRow(
			strconv.Itoa(i+1),
			res.ModelID,
			format.Currency(res.Breakdown.Total),
			format.MicroCurrency(res.PerUnit.CostPerRequest),
			format.MicroCurrency(res.Breakdown.RouterCommission),
			format.Energy(res.Sustainability.EnergyWh),
			string(res.Insights.CostTier),
		)
	}
	return t
}

// BatchTable lists batch results in input order with a total row.
func BatchTable(results []*engine.Result) Table {
	t := Table{Headers: []string{"#", "MODEL", "REQUESTS", "TOKENS", "TOTAL", "COMMISSION", "ENERGY"}}
	var total, commission, energy float64
	for i, res := range results {
		t.AddRow(
			strconv.Itoa(i+1),
			res.ModelID,
			format.Count(int64(res.RequestsCount)),
			format.Tokens(res.TotalTokens),
			format.Currency(res.Breakdown.Total),
			format.MicroCurrency(res.Breakdown.RouterCommission),
			format.Energy(res.Sustainability.EnergyWh),
		)
		total += res.Breakdown.Total
		commission += res.Breakdown.RouterCommission
		energy += res.Sustainability.EnergyWh
	}
	t.AddRow("", "TOTAL", "", "", format.Currency(total), format.MicroCurrency(commission), format.Energy(energy))
	return t
}

// QuoteTable renders a legacy cost composition.
func QuoteTable(q *costs.Quote) Table {
	return kv(q.ModelID,
		"Tokens", format.Tokens(q.Tokens),
		"Base cost", format.MicroCurrency(q.BaseCost),
		"Commission", format.MicroCurrency(q.Commission)+" ("+format.Percent(q.CommissionRate)+")",
		"Total cost", format.MicroCurrency(q.TotalCost),
	)
}

// EquivalentsTable renders an energy conversion.
func EquivalentsTable(out *service.EquivalentsResult) Table {
	return kv("Energy equivalents",
		"Energy", format.Energy(out.EnergyWh),
		"CO2e", format.CO2e(out.Equivalents.CO2eKg),
		"Phone charges", humanize.FormatFloat("#,###.##", out.Equivalents.PhoneCharges),
		"Household hours", humanize.FormatFloat("#,###.##", out.Equivalents.HouseholdHours),
	)
}

// ModelsTable lists the catalog and the configured router path.
func ModelsTable(models []catalog.PricingModel, path routers.RouterPath) []Table {
	mt := Table{Headers: []string{"ID", "NAME", "PROVIDER", "INPUT/1K", "OUTPUT/1K", "ENERGY/1K", "FLAGS"}}
	for _, m := range models {
		var flags []string
		if m.Deprecated {
			flags = append(flags, "deprecated")
		}
		if m.Beta {
			flags = append(flags, "beta")
		}
		if m.HasMultimodal() {
			flags = append(flags, "multimodal")
		}
		mt.AddRow(
			m.ID,
			m.Name,
			m.Provider,
			format.MicroCurrency(m.InputPricePer1K),
			format.MicroCurrency(m.OutputPricePer1K),
			format.Energy(m.EnergyPer1KTokensWh),
			strings.Join(flags, ","),
		)
	}

	rt := Table{
		Title:   "Router path (commission " + format.Percent(routers.CommissionRate(path)) + ")",
		Headers: []string{"LAYER", "ID", "NAME", "FEE", "ENABLED"},
	}
	for _, r := range path {
		rt.AddRow(strconv.Itoa(r.Layer), r.ID, r.Name, format.Percent(r.FeePct), strconv.FormatBool(r.Enabled))
	}

	return []Table{mt, rt}
}

func metricsRow(label string, m history.CumulativeMetrics) []string {
	return []string{
		label,
		format.Count(int64(m.Runs)),
		format.Count(m.TotalRequests),
		format.Tokens(m.TotalTokens),
		format.Currency(m.TotalCost),
		format.Currency(m.TotalCommission),
		format.Percent(m.CommissionShare),
		format.MicroCurrency(m.CostPerRequest),
		format.Energy(m.TotalEnergyWh),
		format.CO2e(m.TotalCO2eKg),
	}
}

// SummaryTable renders per-model history aggregates with an overall row.
func SummaryTable(s *service.HistorySummary) Table {
	t := Table{Headers: []string{"MODEL", "RUNS", "REQUESTS", "TOKENS", "COST", "COMMISSION", "SHARE", "PER REQUEST", "ENERGY", "CO2E"}}
	for _, m := range s.ByModel {
		t.Rows = append(t.Rows, metricsRow(m.ModelID, m.CumulativeMetrics))
	}
	t.Rows = append(t.Rows, metricsRow("ALL", s.Overall))
	return t
}

// RecordsTable lists stored runs.
func RecordsTable(records []history.RunRecord) Table {
	t := Table{Headers: []string{"RECORDED", "MODEL", "REQUESTS", "TOKENS", "COST", "COMMISSION", "ENERGY", "ID"}}
	for _, r := range records {
		t.AddRow(
			r.RecordedAt.Local().Format(time.DateTime),
			r.ModelID,
			format.Count(r.Requests),
			format.Tokens(r.TotalTokens),
			format.MicroCurrency(r.TotalCost),
			format.MicroCurrency(r.Commission),
			format.Energy(r.EnergyWh),
			r.ID,
		)
	}
	return t
}
