package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"fipulse/internal/dataset"
	apperrors "fipulse/internal/errors"
)

// ModelType selects the trend regression family.
type ModelType string

const (
	// ModelLinear fits value = alpha + beta*year by ordinary least squares.
	ModelLinear ModelType = "linear"
	// ModelLog fits log(value+1) = alpha + beta*year, for saturating series.
	ModelLog ModelType = "log"
)

// TrendModel is a fitted regression of indicator value on calendar year.
type TrendModel struct {
	Type      ModelType `json:"model_type"`
	Intercept float64   `json:"intercept"`
	Slope     float64   `json:"slope"`

	// Fit diagnostics over the historical points.
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`

	years  []float64
	values []float64
	// residualStd is the residual standard error with n-2 degrees of freedom.
	residualStd float64
}

// FitTrend fits a trend model on an annual series. Fewer than two points make
// the fit undefined and return a typed insufficient-data error; callers must
// not receive a degenerate line.
func FitTrend(indicator string, series []dataset.YearValue, modelType ModelType) (*TrendModel, error) {
	if len(series) < 2 {
		return nil, apperrors.InsufficientData(indicator, len(series))
	}

	years := make([]float64, len(series))
	values := make([]float64, len(series))
	for i, point := range series {
		years[i] = float64(point.Year)
		values[i] = point.Value
	}

	fitted := values
	if modelType == ModelLog {
		fitted = make([]float64, len(values))
		for i, v := range values {
			// +1 keeps zero-valued indicators in the domain.
			fitted[i] = math.Log(v + 1)
		}
	} else if modelType != ModelLinear {
		return nil, fmt.Errorf("unknown model type: %q", modelType)
	}

	alpha, beta := stat.LinearRegression(years, fitted, nil, false)

	m := &TrendModel{
		Type:      modelType,
		Intercept: alpha,
		Slope:     beta,
		years:     years,
		values:    values,
	}

	var sqSum, absSum, ssr float64
	for i := range years {
		predicted := m.Predict(int(years[i]))
		residual := values[i] - predicted
		sqSum += residual * residual
		absSum += math.Abs(residual)

		// Residuals in fit space drive the interval width.
		fitResidual := fitted[i] - (alpha + beta*years[i])
		ssr += fitResidual * fitResidual
	}
	n := float64(len(years))
	m.RMSE = math.Sqrt(sqSum / n)
	m.MAE = absSum / n
	m.R2 = stat.RSquared(years, fitted, nil, alpha, beta)
	if len(years) > 2 {
		m.residualStd = math.Sqrt(ssr / (n - 2))
	}

	return m, nil
}

// Predict evaluates the trend at a calendar year, mapped back to value space
// for the log model.
func (m *TrendModel) Predict(year int) float64 {
	y := m.Intercept + m.Slope*float64(year)
	if m.Type == ModelLog {
		return math.Exp(y) - 1
	}
	return y
}

// PredictionInterval returns the half-width of the prediction interval at the
// given year and confidence level, derived from the residual standard error
// and the Student-t critical value. A two-point fit has no residual degrees
// of freedom, so its interval collapses to the line itself.
func (m *TrendModel) PredictionInterval(year int, confidence float64) float64 {
	n := float64(len(m.years))
	if len(m.years) <= 2 || m.residualStd == 0 {
		return 0
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 2}
	tCritical := dist.Quantile((1 + confidence) / 2)

	mean := stat.Mean(m.years, nil)
	var sxx float64
	for _, y := range m.years {
		sxx += (y - mean) * (y - mean)
	}

	x := float64(year)
	sePred := m.residualStd * math.Sqrt(1+1/n+(x-mean)*(x-mean)/sxx)
	margin := tCritical * sePred

	if m.Type == ModelLog {
		// Approximate back-transform of the log-space margin.
		margin = m.Predict(year) * (math.Exp(margin) - 1)
	}
	return margin
}

// ObservationCount returns the number of points the model was fit on.
func (m *TrendModel) ObservationCount() int {
	return len(m.years)
}
