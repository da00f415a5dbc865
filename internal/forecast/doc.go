// Package forecast fits indicator trends and projects them forward.
//
// A TrendModel is an ordinary least squares regression of indicator value on
// calendar year (optionally in log space for saturating series), with
// Student-t prediction intervals. The Forecaster layers the modeled event
// effects from the impact package on top of the trend and produces fixed
// optimistic/base/pessimistic scenario variants. All projected values are
// clipped to the [0, 100] range of percentage indicators.
package forecast
