package format

import "testing"

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1, "$1.00"},
		{2.2, "$2.20"},
		{1234.5, "$1,234.50"},
		{-3.25, "-$3.25"},
	}
	for _, tt := range tests {
		if got := Currency(tt.in); got != tt.want {
			t.Errorf("Currency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMicroCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{0.000012, "$0.000012"},
		{0.0123, "$0.0123"},
		{0.5, "$0.5000"},
		{12.5, "$12.50"},
	}
	for _, tt := range tests {
		if got := MicroCurrency(tt.in); got != tt.want {
			t.Errorf("MicroCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0%"},
		{0.125, "12.5%"},
		{0.95, "95.0%"},
		{1, "100.0%"},
	}
	for _, tt := range tests {
		if got := Percent(tt.in); got != tt.want {
			t.Errorf("Percent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCountAndTokens(t *testing.T) {
	if got := Count(1234567); got != "1,234,567" {
		t.Errorf("Count() = %q", got)
	}
	if got := Tokens(15000); got != "15,000" {
		t.Errorf("Tokens() = %q", got)
	}
}

func TestEnergyAndCO2e(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{Energy(8.5), "8.50 Wh"},
		{Energy(2500), "2.50 kWh"},
		{Energy(3_000_000), "3.00 MWh"},
		{CO2e(0.0034), "3.40 gCO2e"},
		{CO2e(12), "12.00 kgCO2e"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
