package domain

// TransactionSummary is the monthly income/expense roll-up.
type TransactionSummary struct {
	Income   Amount `json:"income"`
	Expenses Amount `json:"expenses"`
	Savings  Amount `json:"savings"`
}

// CategoryExpense is one slice of the expenses-by-category chart.
type CategoryExpense struct {
	Category string `json:"category"`
	Amount   Amount `json:"amount"`
}
