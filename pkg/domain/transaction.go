package domain

// Transaction types.
const (
	TransactionIncome  = "INCOME"
	TransactionExpense = "EXPENSE"
)

// Transaction is a single income or expense entry.
type Transaction struct {
	TransactionID   ID     `json:"transactionId,omitempty"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Amount          Amount `json:"amount"`
	Category        string `json:"category,omitempty"`
	PaymentType     string `json:"paymentType,omitempty"`
	Date            string `json:"date,omitempty"` // 2006-01-02T15:04[:05], no zone
	TransactionType string `json:"transactionType,omitempty"`
}

// EntityID returns the transaction's identifier.
func (t Transaction) EntityID() ID { return t.TransactionID }

// ValidTransactionType reports whether s is INCOME or EXPENSE.
func ValidTransactionType(s string) bool {
	return s == TransactionIncome || s == TransactionExpense
}
