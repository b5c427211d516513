package listing

// TransactionMessages are the notices for the transactions view.
var TransactionMessages = Messages{
	LoadFailed:   "Unable to load transactions.",
	Created:      "Transaction added successfully!",
	CreateFailed: "Failed to create transaction.",
	Duplicate:    "Duplicate transaction.",
	Updated:      "Transaction updated successfully!",
	UpdateFailed: "Failed to update transaction.",
	Deleted:      "Transaction deleted successfully!",
	DeleteFailed: "Failed to delete transaction.",
}

// RecurringMessages are the notices for the recurring transactions view.
var RecurringMessages = Messages{
	LoadFailed:   "Unable to load recurring transactions.",
	Created:      "Recurring transaction created!",
	CreateFailed: "Failed to create transaction.",
	Duplicate:    "Duplicate transaction name.",
	Updated:      "Recurring transaction updated!",
	UpdateFailed: "Update failed.",
	Deleted:      "Recurring transaction deleted!",
	DeleteFailed: "Deletion failed.",
}
