// Package model defines domain types for DuPont reports.
package model

// Metric names a derived ratio. The string is the display label.
type Metric string

// DuPont metrics.
const (
	MetricReturnOnEquity   Metric = "Return on Equity"
	MetricEquityMultiplier Metric = "Equity Multiplier"
	MetricReturnOnAssets   Metric = "Return on Assets"
	MetricAssetTurnover    Metric = "Asset Turnover"
	MetricReturnOnSales    Metric = "Return on Sales"
	MetricOperatingIncome  Metric = "Operating Income"
)

// DuPontMetrics lists the comparison table rows in display order.
var DuPontMetrics = []Metric{
	MetricReturnOnEquity,
	MetricEquityMultiplier,
	MetricReturnOnAssets,
	MetricAssetTurnover,
	MetricReturnOnSales,
}

// IsRate reports whether the metric is a fraction shown as a percentage.
func (m Metric) IsRate() bool {
	return m != MetricEquityMultiplier && m != MetricOperatingIncome
}

// Ratios holds the derived metrics for one bank.
type Ratios struct {
	ReturnOnEquity   float64 `json:"return_on_equity"`
	EquityMultiplier float64 `json:"equity_multiplier"`
	ReturnOnAssets   float64 `json:"return_on_assets"`
	AssetTurnover    float64 `json:"asset_turnover"`
	ReturnOnSales    float64 `json:"return_on_sales"`
	OperatingIncome  float64 `json:"operating_income"`
}

// Value returns the named metric.
func (r Ratios) Value(m Metric) float64 {
	switch m {
	case MetricReturnOnEquity:
		return r.ReturnOnEquity
	case MetricEquityMultiplier:
		return r.EquityMultiplier
	case MetricReturnOnAssets:
		return r.ReturnOnAssets
	case MetricAssetTurnover:
		return r.AssetTurnover
	case MetricReturnOnSales:
		return r.ReturnOnSales
	case MetricOperatingIncome:
		return r.OperatingIncome
	}
	return 0
}

// BankRatios is the per-bank ratio record keyed by display name.
type BankRatios struct {
	Alias  string `json:"alias"`
	Name   string `json:"name"`
	Period string `json:"period,omitempty"`
	Ratios
}

// DuPontNode is one node of the DuPont tree.
type DuPontNode struct {
	Metric   Metric       `json:"metric"`
	Value    float64      `json:"value"`
	Children []DuPontNode `json:"children,omitempty"`
}
