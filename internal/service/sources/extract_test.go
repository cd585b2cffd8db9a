package sources

import "testing"

func TestExtractPrice(t *testing.T) {
	cases := []struct {
		name string
		blob string
		want float64
		ok   bool
	}{
		{"price with unit", "spot: 48.24 USD per ounce today", 48.24, true},
		{"silver price phrase", "Silver Price today is 47.10 in New York", 47.10, true},
		{"dollar sign", "trading at $49.35 this morning", 49.35, true},
		{"comma separated thousands stripped", "volume 1,234 and silver price 48.20 steady", 48.20, true},
		{"typical range fallback", "quote board 52.33 midday", 52.33, true},
		{"out of range rejected", "version 7.50 of the page", 0, false},
		{"no price at all", "<html><body>maintenance</body></html>", 0, false},
		{"empty", "", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractPrice(tc.blob)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("price = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSaneSilverPrice(t *testing.T) {
	if saneSilverPrice(14.99) || saneSilverPrice(100.01) {
		t.Fatalf("out-of-range price accepted")
	}
	if !saneSilverPrice(15) || !saneSilverPrice(100) || !saneSilverPrice(48.24) {
		t.Fatalf("in-range price rejected")
	}
}
