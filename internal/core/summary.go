package core

// CategoryBreakdown is the aggregated spend of one category inside a window.
type CategoryBreakdown struct {
	Category     Category
	Amount       Money
	Percentage   float64 // share of the window total, 0-100, two decimals
	ExpenseCount int
}

// SpendingSummary is the breakdown of a window plus its total spend.
type SpendingSummary struct {
	TimeFrame TimeFrame
	Breakdown []CategoryBreakdown
	Total     Money
}

// SpendPoint is one bucket of a window's spend series. Start is the first
// day the bucket covers.
type SpendPoint struct {
	Start  Date
	Label  string
	Amount Money
}

// MonthOverview is the list of expenses for a specific year+month with their total.
type MonthOverview struct {
	Year     int
	Month    int // 1-12
	Total    Money
	Expenses []ExpenseDetail
}

// BudgetProgress compares the current budget with the month's spend.
type BudgetProgress struct {
	Budget         Budget
	Spent          Money
	Remaining      Money
	UsedPercentage float64
	OverBudget     bool
}
