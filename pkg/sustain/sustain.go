package sustain

import (
	"math"

	"mercator-hq/routecost/pkg/calcerr"
)

const (
	// DefaultPhoneChargeWh is the energy of one smartphone charge.
	DefaultPhoneChargeWh = 12.0

	// DefaultHouseholdKWhPerDay is the daily consumption of one household.
	DefaultHouseholdKWhPerDay = 10.0

	// DefaultGridKgCO2ePerKWh is the grid carbon intensity.
	DefaultGridKgCO2ePerKWh = 0.40
)

// Assumptions are the conversion factors used to build equivalents.
type Assumptions struct {
	PhoneChargeWh      float64 `yaml:"phone_charge_wh" json:"phone_charge_wh"`
	HouseholdKWhPerDay float64 `yaml:"household_kwh_per_day" json:"household_kwh_per_day"`
	GridKgCO2ePerKWh   float64 `yaml:"grid_kg_co2e_per_kwh" json:"grid_kg_co2e_per_kwh"`
}

// DefaultAssumptions returns the stock conversion factors.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		PhoneChargeWh:      DefaultPhoneChargeWh,
		HouseholdKWhPerDay: DefaultHouseholdKWhPerDay,
		GridKgCO2ePerKWh:   DefaultGridKgCO2ePerKWh,
	}
}

// Validate returns a ConfigurationError for the first non-positive field.
func (a Assumptions) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"phone_charge_wh", a.PhoneChargeWh},
		{"household_kwh_per_day", a.HouseholdKWhPerDay},
		{"grid_kg_co2e_per_kwh", a.GridKgCO2ePerKWh},
	}
	for _, f := range fields {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return calcerr.NewConfigurationError(f.name, "must be a positive finite number, got %v", f.value)
		}
	}
	return nil
}

// Equivalents expresses an amount of energy in relatable terms.
type Equivalents struct {
	CO2eKg         float64 `json:"co2e_kg"`
	PhoneCharges   float64 `json:"phone_charges"`
	HouseholdHours float64 `json:"household_hours"`
}

// ToEquivalents converts energyWh using a.
func ToEquivalents(energyWh float64, a Assumptions) (Equivalents, error) {
	if err := a.Validate(); err != nil {
		return Equivalents{}, err
	}

	return Equivalents{
		CO2eKg:         (energyWh / 1000) * a.GridKgCO2ePerKWh,
		PhoneCharges:   energyWh / a.PhoneChargeWh,
		HouseholdHours: energyWh / (a.HouseholdKWhPerDay * 1000 / 24),
	}, nil
}

// Display is a value rescaled for presentation.
type Display struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// DisplayUnit rescales value to the kilo or mega variant of baseUnit once its
// magnitude reaches 1000 or 1,000,000. No rounding is applied.
func DisplayUnit(value float64, baseUnit string) Display {
	abs := math.Abs(value)
	switch {
	case abs >= 1_000_000:
		return Display{Value: value / 1_000_000, Unit: "M" + baseUnit}
	case abs >= 1000:
		return Display{Value: value / 1000, Unit: "k" + baseUnit}
	default:
		return Display{Value: value, Unit: baseUnit}
	}
}
