// Package impact implements the event-impact time-series model for financial
// inclusion indicators.
//
// A sparse table of discrete events (each with a magnitude in percentage
// points, a lag in months and a functional-form tag) is converted into
// continuous-time effect curves, overlapping curves are merged under a chosen
// combination rule, and the result feeds the trend-augmented forecasts in
// the forecast package.
//
// # Components
//
//   - effect.go: the three closed-form effect functions (immediate, gradual,
//     distributed) evaluated lazily per requested month
//   - combine.go: additive, multiplicative and max combination rules
//   - matrix.go: the dense (event x indicator) association matrix
//   - validate.go: comparison of modeled effects against observed changes
//   - evidence.go: comparable-country evidence registry for magnitude estimates
//
// # Conventions
//
// Effects are percentage points. The multiplicative rule compounds them as
// 100*(prod(1+e/100)-1). The max rule keeps the effect with the largest
// absolute magnitude, sign preserved. Both conventions were left open by the
// source methodology and are pinned here; the tests assert them explicitly.
package impact
