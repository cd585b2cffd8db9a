package usecase

import "testing"

func TestDeriveSentimentClassification(t *testing.T) {
	cases := []struct {
		name     string
		rsi      *float64
		value    int
		class    string
		exFear   bool
		exGreed  bool
	}{
		{"nil rsi is neutral", nil, 50, "Neutral", false, false},
		{"deep oversold", f(18), 18, "Extreme Fear", true, false},
		{"extreme fear boundary", f(30), 30, "Extreme Fear", false, false},
		{"fear", f(38), 38, "Fear", false, false},
		{"neutral", f(52), 52, "Neutral", false, false},
		{"greed", f(63), 63, "Greed", false, false},
		{"extreme greed", f(72), 72, "Extreme Greed", false, false},
		{"deep overbought", f(81), 81, "Extreme Greed", false, true},
		{"clamped high", f(140), 100, "Extreme Greed", false, true},
		{"clamped low", f(-5), 0, "Extreme Fear", true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DeriveSentiment(tc.rsi)
			if s.Value != tc.value {
				t.Fatalf("value = %d, want %d", s.Value, tc.value)
			}
			if s.Classification != tc.class {
				t.Fatalf("classification = %q, want %q", s.Classification, tc.class)
			}
			if s.IsExtremeFear != tc.exFear || s.IsExtremeGreed != tc.exGreed {
				t.Fatalf("flags = %v/%v, want %v/%v", s.IsExtremeFear, s.IsExtremeGreed, tc.exFear, tc.exGreed)
			}
		})
	}
}

func TestDeriveSentimentRounds(t *testing.T) {
	if got := DeriveSentiment(f(49.6)).Value; got != 50 {
		t.Fatalf("value = %d, want 50", got)
	}
	if got := DeriveSentiment(f(49.4)).Value; got != 49 {
		t.Fatalf("value = %d, want 49", got)
	}
}
