// Package ratio computes the DuPont decomposition from call report line items.
//
//	ROE = ROA × Equity Multiplier
//	ROA = Asset Turnover × Return on Sales
//
// Every function re-resolves its inputs from the Source; nothing is cached.
package ratio

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/dupont/internal/model"
)

// Call report label prefixes.
const (
	LabelNetIncome         = "Net income"
	LabelTotalEquity       = "Total equity"
	LabelTotalAssets       = "Total balance sheet assets"
	LabelInterestIncome    = string(model.LineInterestIncome)
	LabelInterestExpense   = string(model.LineInterestExpense)
	LabelProvision         = string(model.LineProvision)
	LabelNoninterestIncome = string(model.LineNoninterestIncome)
	LabelLegalTitle        = "Legal title of bank"
)

// ErrZeroDenominator is returned when a ratio would divide by zero.
var ErrZeroDenominator = errors.New("ratio: zero denominator")

// ArithmeticError reports a metric that could not be computed.
type ArithmeticError struct {
	Metric model.Metric
	Err    error
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("%s: %v", e.Metric, e.Err)
}

func (e *ArithmeticError) Unwrap() error { return e.Err }

// Source resolves a label prefix to an exact amount.
// *callreport.RecordSet satisfies it.
type Source interface {
	Amount(prefix string) (decimal.Decimal, error)
}

// ReturnOnEquity is net income over total equity.
func ReturnOnEquity(src Source) (float64, error) {
	return quotient(src, model.MetricReturnOnEquity, LabelNetIncome, LabelTotalEquity)
}

// ReturnOnAssets is net income over total balance sheet assets.
func ReturnOnAssets(src Source) (float64, error) {
	return quotient(src, model.MetricReturnOnAssets, LabelNetIncome, LabelTotalAssets)
}

// EquityMultiplier is total balance sheet assets over total equity.
func EquityMultiplier(src Source) (float64, error) {
	return quotient(src, model.MetricEquityMultiplier, LabelTotalAssets, LabelTotalEquity)
}

// OperatingIncome is interest income less interest expense and the loan-loss
// provision, plus noninterest income. The sum is exact.
func OperatingIncome(src Source) (decimal.Decimal, error) {
	c, err := Components(src)
	if err != nil {
		return decimal.Zero, err
	}
	return c.Total(), nil
}

// ReturnOnSales is net income over operating income.
func ReturnOnSales(src Source) (float64, error) {
	ni, err := src.Amount(LabelNetIncome)
	if err != nil {
		return 0, err
	}
	oi, err := OperatingIncome(src)
	if err != nil {
		return 0, err
	}
	return divide(model.MetricReturnOnSales, ni, oi)
}

// AssetTurnover is operating income over total balance sheet assets.
func AssetTurnover(src Source) (float64, error) {
	oi, err := OperatingIncome(src)
	if err != nil {
		return 0, err
	}
	assets, err := src.Amount(LabelTotalAssets)
	if err != nil {
		return 0, err
	}
	return divide(model.MetricAssetTurnover, oi, assets)
}

// Compute evaluates every metric, stopping at the first failure.
func Compute(src Source) (model.Ratios, error) {
	var (
		r   model.Ratios
		err error
	)
	if r.ReturnOnEquity, err = ReturnOnEquity(src); err != nil {
		return model.Ratios{}, err
	}
	if r.EquityMultiplier, err = EquityMultiplier(src); err != nil {
		return model.Ratios{}, err
	}
	if r.ReturnOnAssets, err = ReturnOnAssets(src); err != nil {
		return model.Ratios{}, err
	}
	if r.AssetTurnover, err = AssetTurnover(src); err != nil {
		return model.Ratios{}, err
	}
	if r.ReturnOnSales, err = ReturnOnSales(src); err != nil {
		return model.Ratios{}, err
	}
	oi, err := OperatingIncome(src)
	if err != nil {
		return model.Ratios{}, err
	}
	r.OperatingIncome, _ = oi.Float64()
	return r, nil
}

func quotient(src Source, metric model.Metric, numLabel, denLabel string) (float64, error) {
	num, err := src.Amount(numLabel)
	if err != nil {
		return 0, err
	}
	den, err := src.Amount(denLabel)
	if err != nil {
		return 0, err
	}
	return divide(metric, num, den)
}

// divide converts both operands to float64 before dividing so results match
// plain floating-point arithmetic on the reported values.
func divide(metric model.Metric, num, den decimal.Decimal) (float64, error) {
	if den.IsZero() {
		return 0, &ArithmeticError{Metric: metric, Err: ErrZeroDenominator}
	}
	n, _ := num.Float64()
	d, _ := den.Float64()
	return n / d, nil
}
