package ratio

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dupont/internal/callreport"
	"github.com/theirongolddev/dupont/internal/model"
)

const eps = 1e-12

func records(pairs ...string) *callreport.RecordSet {
	var recs []callreport.Record
	for i := 0; i+1 < len(pairs); i += 2 {
		recs = append(recs, callreport.Record{Label: pairs[i], Value: pairs[i+1]})
	}
	return callreport.New("", recs, nil)
}

func fullBank() *callreport.RecordSet {
	return records(
		"Legal title of bank", "Example Bank, N.A.",
		"Net income (loss) attributable to bank", "120",
		"Total equity capital", "800",
		"Total balance sheet assets", "9600",
		"Total interest income", "400",
		"Total interest expense", "90",
		"Provision for loan and lease losses", "10",
		"Total noninterest income", "60",
	)
}

func TestSyntheticDuPont(t *testing.T) {
	src := records(
		"Net income", "100",
		"Total equity", "500",
		"Total balance sheet assets", "2000",
	)

	roe, err := ReturnOnEquity(src)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, roe, eps)

	em, err := EquityMultiplier(src)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, em, eps)

	roa, err := ReturnOnAssets(src)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, roa, eps)
}

func TestEquityMultiplierIsAssetsOverEquity(t *testing.T) {
	src := fullBank()
	em, err := EquityMultiplier(src)
	require.NoError(t, err)

	assets, _ := src.Number(LabelTotalAssets)
	equity, _ := src.Number(LabelTotalEquity)
	assert.InDelta(t, assets/equity, em, eps)
}

func TestOperatingIncomeIdentity(t *testing.T) {
	src := fullBank()
	oi, err := OperatingIncome(src)
	require.NoError(t, err)

	ii, _ := src.Number(LabelInterestIncome)
	ie, _ := src.Number(LabelInterestExpense)
	pr, _ := src.Number(LabelProvision)
	nii, _ := src.Number(LabelNoninterestIncome)

	got, _ := oi.Float64()
	assert.InDelta(t, ii-ie-pr+nii, got, eps)
	assert.Equal(t, "360", oi.String())
}

func TestReturnOnSalesAndAssetTurnover(t *testing.T) {
	src := fullBank()

	ros, err := ReturnOnSales(src)
	require.NoError(t, err)
	assert.InDelta(t, 120.0/360.0, ros, eps)

	at, err := AssetTurnover(src)
	require.NoError(t, err)
	assert.InDelta(t, 360.0/9600.0, at, eps)
}

func TestDuPontIdentities(t *testing.T) {
	r, err := Compute(fullBank())
	require.NoError(t, err)

	assert.InDelta(t, r.ReturnOnEquity, r.ReturnOnAssets*r.EquityMultiplier, 1e-12)
	assert.InDelta(t, r.ReturnOnAssets, r.AssetTurnover*r.ReturnOnSales, 1e-12)
	assert.InDelta(t, 360.0, r.OperatingIncome, eps)
}

func TestReturnOnSales_ZeroOperatingIncome(t *testing.T) {
	src := records(
		"Net income", "10",
		"Total interest income", "100",
		"Total interest expense", "60",
		"Provision for loan and lease losses", "50",
		"Total noninterest income", "10",
	)

	_, err := ReturnOnSales(src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrZeroDenominator)

	var ae *ArithmeticError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, model.MetricReturnOnSales, ae.Metric)
}

func TestZeroEquity(t *testing.T) {
	src := records("Net income", "10", "Total equity", "0", "Total balance sheet assets", "100")
	_, err := ReturnOnEquity(src)
	assert.ErrorIs(t, err, ErrZeroDenominator)
	_, err = EquityMultiplier(src)
	assert.ErrorIs(t, err, ErrZeroDenominator)
}

func TestMissingComponentPropagates(t *testing.T) {
	src := records("Net income", "10", "Total equity", "50")

	_, err := ReturnOnAssets(src)
	assert.ErrorIs(t, err, callreport.ErrLabelNotFound)

	_, err = Compute(src)
	assert.ErrorIs(t, err, callreport.ErrLabelNotFound)
}

func TestBreakdownNegatesCosts(t *testing.T) {
	c, err := Components(fullBank())
	require.NoError(t, err)

	b := c.Breakdown()
	assert.Equal(t, 400.0, b.InterestIncome)
	assert.Equal(t, -90.0, b.InterestExpense)
	assert.Equal(t, -10.0, b.Provision)
	assert.Equal(t, 60.0, b.NoninterestIncome)

	total, _ := c.Total().Float64()
	assert.InDelta(t, total, b.Total(), eps)
	assert.False(t, math.IsNaN(b.Total()))
}
