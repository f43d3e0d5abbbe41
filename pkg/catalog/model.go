package catalog

// PricingModel describes one priced compute model.
type PricingModel struct {
	// ID uniquely identifies the model within a catalog.
	ID string `yaml:"id" json:"id"`

	// Name is the display name.
	Name string `yaml:"name" json:"name"`

	// Provider is the organization serving the model.
	Provider string `yaml:"provider,omitempty" json:"provider,omitempty"`

	// PricePer1K is the legacy single price per 1000 tokens.
	PricePer1K float64 `yaml:"price_per_1k" json:"price_per_1k"`

	// InputPricePer1K is the price per 1000 input tokens.
	InputPricePer1K float64 `yaml:"input_price_per_1k" json:"input_price_per_1k"`

	// OutputPricePer1K is the price per 1000 output tokens.
	OutputPricePer1K float64 `yaml:"output_price_per_1k" json:"output_price_per_1k"`

	// MinBillableTokens is the floor applied by the base cost calculator.
	// Zero means no floor.
	MinBillableTokens float64 `yaml:"min_billable_tokens,omitempty" json:"min_billable_tokens,omitempty"`

	// PerRequestPrice is a flat fee per request. Informational; the enhanced
	// engine prices by channel.
	PerRequestPrice float64 `yaml:"per_request_price,omitempty" json:"per_request_price,omitempty"`

	// ImagePrice is the price per generated or analyzed image.
	ImagePrice float64 `yaml:"image_price,omitempty" json:"image_price,omitempty"`

	// AudioMinutePrice is the price per minute of audio.
	AudioMinutePrice float64 `yaml:"audio_minute_price,omitempty" json:"audio_minute_price,omitempty"`

	// VideoMinutePrice is the price per minute of video.
	VideoMinutePrice float64 `yaml:"video_minute_price,omitempty" json:"video_minute_price,omitempty"`

	// BatchDiscount is the fraction of the subtotal waived when requests are
	// submitted in batch mode (0.5 = 50% off).
	BatchDiscount float64 `yaml:"batch_discount,omitempty" json:"batch_discount,omitempty"`

	// EnergyPer1KTokensWh is the energy consumed per 1000 tokens in Wh.
	EnergyPer1KTokensWh float64 `yaml:"energy_per_1k_tokens_wh,omitempty" json:"energy_per_1k_tokens_wh,omitempty"`

	// EnergyPerRequestWh is the fixed energy overhead per request in Wh.
	EnergyPerRequestWh float64 `yaml:"energy_per_request_wh,omitempty" json:"energy_per_request_wh,omitempty"`

	// QualityScore is a relative quality rating. Zero means unknown.
	QualityScore float64 `yaml:"quality_score,omitempty" json:"quality_score,omitempty"`

	// LatencyMs is the typical end-to-end latency. Zero means unknown.
	LatencyMs float64 `yaml:"latency_ms,omitempty" json:"latency_ms,omitempty"`

	// ThroughputTPS is the typical generation throughput in tokens/second.
	// Zero means unknown.
	ThroughputTPS float64 `yaml:"throughput_tps,omitempty" json:"throughput_tps,omitempty"`

	// Deprecated marks models scheduled for removal.
	Deprecated bool `yaml:"deprecated,omitempty" json:"deprecated,omitempty"`

	// Beta marks models not yet generally available.
	Beta bool `yaml:"beta,omitempty" json:"beta,omitempty"`

	// PopularityRank orders models for display. Lower is more popular.
	PopularityRank int `yaml:"popularity_rank,omitempty" json:"popularity_rank,omitempty"`
}

// Normalize fills the price field that a single-scheme catalog leaves empty.
func (m PricingModel) Normalize() PricingModel {
	if m.InputPricePer1K == 0 && m.OutputPricePer1K == 0 {
		m.InputPricePer1K = m.PricePer1K
		m.OutputPricePer1K = m.PricePer1K
	}
	if m.PricePer1K == 0 {
		m.PricePer1K = (m.InputPricePer1K + m.OutputPricePer1K) / 2
	}
	return m
}

// AveragePricePer1K is the mean of the input and output prices.
func (m PricingModel) AveragePricePer1K() float64 {
	return (m.InputPricePer1K + m.OutputPricePer1K) / 2
}

// HasMultimodal reports whether the model prices any non-text channel.
func (m PricingModel) HasMultimodal() bool {
	return m.ImagePrice > 0 || m.AudioMinutePrice > 0 || m.VideoMinutePrice > 0
}
