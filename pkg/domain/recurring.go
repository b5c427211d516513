package domain

// Recurrence frequencies.
const (
	FrequencyDaily   = "DAILY"
	FrequencyWeekly  = "WEEKLY"
	FrequencyMonthly = "MONTHLY"
	FrequencyYearly  = "YEARLY"
)

// Frequencies lists the accepted recurrence frequencies in display order.
var Frequencies = []string{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}

// RecurringTransaction is a schedule that the backend materialises into
// transactions.
type RecurringTransaction struct {
	RecurringTransactionID   ID     `json:"recurringTransactionId,omitempty"`
	RecurringTransactionName string `json:"recurringTransactionName"`
	Description              string `json:"description,omitempty"`
	Amount                   Amount `json:"amount"`
	Category                 string `json:"category,omitempty"`
	PaymentType              string `json:"paymentType,omitempty"`
	TransactionType          string `json:"transactionType,omitempty"`
	Frequency                string `json:"frequency,omitempty"`
	StartDate                string `json:"startDate,omitempty"`
	EndDate                  string `json:"endDate,omitempty"`
	NextOccurrence           string `json:"nextOccurrence,omitempty"`
	IsActive                 bool   `json:"isActive"`
}

// EntityID returns the schedule's identifier.
func (r RecurringTransaction) EntityID() ID { return r.RecurringTransactionID }

// ValidFrequency reports whether s is one of Frequencies.
func ValidFrequency(s string) bool {
	for _, f := range Frequencies {
		if f == s {
			return true
		}
	}
	return false
}
