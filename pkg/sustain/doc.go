// Package sustain converts energy figures into display units and
// human-relatable equivalents.
//
// Equivalents are derived from three assumptions supplied on every call:
//
//   - PhoneChargeWh: energy of one full smartphone charge.
//   - HouseholdKWhPerDay: daily consumption of an average household.
//   - GridKgCO2ePerKWh: carbon intensity of the electricity grid.
//
// All three must be strictly positive; ToEquivalents fails with a
// calcerr.ConfigurationError otherwise instead of dividing by zero.
package sustain
