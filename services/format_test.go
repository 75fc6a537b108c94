package services

import "testing"

func TestFormatAmount_Values(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		currency string
		expect   string
	}{
		{"zero", 0, "SAR", "SAR 0.00"},
		{"small integer", 5, "SAR", "SAR 5.00"},
		{"with decimals", 42.50, "SAR", "SAR 42.50"},
		{"hundreds", 999.99, "SAR", "SAR 999.99"},
		{"thousands", 1234.56, "SAR", "SAR 1,234.56"},
		{"hundred thousands", 123456.78, "SAR", "SAR 123,456.78"},
		{"millions", 1234567.89, "AED", "AED 1,234,567.89"},
		{"negative", -250000.50, "SAR", "-SAR 250,000.50"},
		{"no currency", 1000, "", "1,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(tt.input, tt.currency)
			if got != tt.expect {
				t.Errorf("FormatAmount(%v, %q) = %q, want %q", tt.input, tt.currency, got, tt.expect)
			}
		})
	}
}

func TestApplyThousandsGrouping(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"single digit", "5", "5"},
		{"three digits", "999", "999"},
		{"four digits", "1234", "1,234"},
		{"six digits", "123456", "123,456"},
		{"seven digits", "1234567", "1,234,567"},
		{"ten digits", "1234567890", "1,234,567,890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyThousandsGrouping(tt.input)
			if got != tt.expect {
				t.Errorf("applyThousandsGrouping(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
