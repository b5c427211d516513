package domain

// Receipt is a stored receipt file as returned by the view endpoint.
type Receipt struct {
	ContentType string
	Filename    string
	Data        []byte
}

// IsImage reports whether the receipt can be previewed as an image.
func (r Receipt) IsImage() bool {
	return len(r.ContentType) > 6 && r.ContentType[:6] == "image/"
}

// IsPDF reports whether the receipt is a PDF document.
func (r Receipt) IsPDF() bool {
	return r.ContentType == "application/pdf"
}

// ReceiptMetadata is the JSON part sent alongside an uploaded receipt.
type ReceiptMetadata struct {
	TransactionID ID `json:"transactionId"`
}
