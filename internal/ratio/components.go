package ratio

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/dupont/internal/model"
)

// OperatingComponents are the four line items behind operating income,
// as reported (expense and provision positive).
type OperatingComponents struct {
	InterestIncome    decimal.Decimal
	InterestExpense   decimal.Decimal
	Provision         decimal.Decimal
	NoninterestIncome decimal.Decimal
}

// Total returns II − IE − Provision + NII.
func (c OperatingComponents) Total() decimal.Decimal {
	return c.InterestIncome.
		Sub(c.InterestExpense).
		Sub(c.Provision).
		Add(c.NoninterestIncome)
}

// Breakdown returns the components as display values with expense and
// provision negated. Identity fields are left for the caller.
func (c OperatingComponents) Breakdown() model.OperatingBreakdown {
	var b model.OperatingBreakdown
	b.InterestIncome, _ = c.InterestIncome.Float64()
	b.InterestExpense, _ = c.InterestExpense.Neg().Float64()
	b.Provision, _ = c.Provision.Neg().Float64()
	b.NoninterestIncome, _ = c.NoninterestIncome.Float64()
	return b
}

// Components resolves the operating-income line items.
func Components(src Source) (OperatingComponents, error) {
	var (
		c   OperatingComponents
		err error
	)
	if c.InterestIncome, err = src.Amount(LabelInterestIncome); err != nil {
		return OperatingComponents{}, err
	}
	if c.InterestExpense, err = src.Amount(LabelInterestExpense); err != nil {
		return OperatingComponents{}, err
	}
	if c.Provision, err = src.Amount(LabelProvision); err != nil {
		return OperatingComponents{}, err
	}
	if c.NoninterestIncome, err = src.Amount(LabelNoninterestIncome); err != nil {
		return OperatingComponents{}, err
	}
	return c, nil
}
