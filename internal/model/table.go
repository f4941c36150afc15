package model

// LineItem names an operating-income component. The string is both the
// display label and the call report label prefix.
type LineItem string

// Operating-income components.
const (
	LineInterestIncome    LineItem = "Total interest income"
	LineInterestExpense   LineItem = "Total interest expense"
	LineProvision         LineItem = "Provision for loan and lease losses"
	LineNoninterestIncome LineItem = "Total noninterest income"
)

// OperatingLines lists the breakdown rows in display order.
var OperatingLines = []LineItem{
	LineInterestIncome,
	LineInterestExpense,
	LineProvision,
	LineNoninterestIncome,
}

// OperatingBreakdown holds the operating-income components of one bank
// with expense and provision already negated for display.
type OperatingBreakdown struct {
	Alias             string  `json:"alias"`
	Name              string  `json:"name"`
	Period            string  `json:"period,omitempty"`
	InterestIncome    float64 `json:"total_interest_income"`
	InterestExpense   float64 `json:"total_interest_expense"`
	Provision         float64 `json:"provision_for_loan_and_lease_losses"`
	NoninterestIncome float64 `json:"total_noninterest_income"`
}

// Value returns the named component.
func (o OperatingBreakdown) Value(l LineItem) float64 {
	switch l {
	case LineInterestIncome:
		return o.InterestIncome
	case LineInterestExpense:
		return o.InterestExpense
	case LineProvision:
		return o.Provision
	case LineNoninterestIncome:
		return o.NoninterestIncome
	}
	return 0
}

// Total is the operating income: the sum of the signed components.
func (o OperatingBreakdown) Total() float64 {
	return o.InterestIncome + o.InterestExpense + o.Provision + o.NoninterestIncome
}

// Report table titles.
const (
	DuPontTitle    = "Dupont Analysis"
	OperatingTitle = "Operating Income Analysis"
)

// Table is a row-by-bank grid consumed by the presentation layers.
// Values[i][j] belongs to Rows[i] and Columns[j].
type Table struct {
	Title   string      `json:"title"`
	Period  string      `json:"period,omitempty"`
	Rows    []string    `json:"rows"`
	Columns []string    `json:"columns"`
	Aliases []string    `json:"aliases"`
	Values  [][]float64 `json:"values"`
}

// Row returns the values for a row label.
func (t Table) Row(label string) ([]float64, bool) {
	for i, r := range t.Rows {
		if r == label {
			return t.Values[i], true
		}
	}
	return nil, false
}

// Column returns the values for column j, one per row.
func (t Table) Column(j int) []float64 {
	out := make([]float64, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Values[i][j]
	}
	return out
}
