package models

// FinancialItem is a raw priced line as produced by the spreadsheet or
// extraction import, before it has a category and has been integrated.
type FinancialItem struct {
	Code        string  `json:"code,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}
