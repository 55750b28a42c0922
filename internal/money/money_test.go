package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromAny(t *testing.T) {
	def := decimal.NewFromInt(7)

	tests := []struct {
		name  string
		value any
		want  decimal.Decimal
	}{
		{"nil uses default", nil, def},
		{"decimal passes through", decimal.NewFromFloat(12.34), decimal.NewFromFloat(12.34)},
		{"numeric string", "19.99", decimal.NewFromFloat(19.99)},
		{"string with whitespace", "  42.50 ", decimal.NewFromFloat(42.50)},
		{"empty string uses default", "", def},
		{"garbage string uses default", "abc", def},
		{"float64", 3.14, decimal.NewFromFloat(3.14)},
		{"int", 100, decimal.NewFromInt(100)},
		{"int64", int64(-5), decimal.NewFromInt(-5)},
		{"json number", json.Number("55.5"), decimal.NewFromFloat(55.5)},
		{"bytes", []byte("8.25"), decimal.NewFromFloat(8.25)},
		{"bool uses default", true, def},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromAny(tt.value, def)
			if !got.Equal(tt.want) {
				t.Errorf("FromAny(%v): want %s, got %s", tt.value, tt.want, got)
			}
		})
	}
}

func TestFromAny_NeverPanics(t *testing.T) {
	// Anything that cannot be interpreted as a number must degrade to the
	// default, not blow up the calculation.
	for _, v := range []any{struct{}{}, []int{1, 2}, map[string]int{"a": 1}} {
		got := FromAny(v, decimal.Zero)
		if !got.IsZero() {
			t.Errorf("FromAny(%v): want 0, got %s", v, got)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		amount string
		rate   string
		want   string
	}{
		{"100", "10", "10"},
		{"50", "5", "2.5"},
		{"15", "10", "1.5"},
		{"99.99", "5.5", "5.49945"},
		{"0.01", "21", "0.0021"},
		{"100", "0", "0"},
	}

	for _, tt := range tests {
		amount := decimal.RequireFromString(tt.amount)
		rate := decimal.RequireFromString(tt.rate)
		want := decimal.RequireFromString(tt.want)

		got := Percent(amount, rate)
		if !got.Equal(want) {
			t.Errorf("Percent(%s, %s): want %s, got %s", tt.amount, tt.rate, tt.want, got)
		}
	}
}

func TestRound2_HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"}, // half rounds up, not to even
		{"1.004", "1.00"},
		{"2.675", "2.68"},
		{"13.00", "13.00"},
		{"0.125", "0.13"},
		{"169", "169.00"},
	}

	for _, tt := range tests {
		got := Round2(decimal.RequireFromString(tt.in))
		if got.StringFixed(2) != tt.want {
			t.Errorf("Round2(%s): want %s, got %s", tt.in, tt.want, got.StringFixed(2))
		}
	}
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want decimal.Decimal
	}{
		{"number", `{"v": 12.34}`, decimal.NewFromFloat(12.34)},
		{"quoted number", `{"v": "56.78"}`, decimal.NewFromFloat(56.78)},
		{"null", `{"v": null}`, decimal.Zero},
		{"missing", `{}`, decimal.Zero},
		{"garbage string", `{"v": "abc"}`, decimal.Zero},
		{"empty string", `{"v": ""}`, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				V Amount `json:"v"`
			}
			if err := json.Unmarshal([]byte(tt.body), &payload); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !payload.V.Equal(tt.want) {
				t.Errorf("want %s, got %s", tt.want, payload.V.Decimal)
			}
		})
	}
}

func TestAmount_MarshalJSON(t *testing.T) {
	// Amounts always go out with exactly two decimal places, including
	// values whose decimal representation is shorter (169, 18.6).
	tests := []struct {
		in   string
		want string
	}{
		{"169", `{"v":169.00}`},
		{"18.6", `{"v":18.60}`},
		{"14.00", `{"v":14.00}`},
		{"0", `{"v":0.00}`},
	}

	for _, tt := range tests {
		out, err := json.Marshal(map[string]Amount{
			"v": NewAmount(decimal.RequireFromString(tt.in)),
		})
		if err != nil {
			t.Fatalf("marshal %s: %v", tt.in, err)
		}
		if string(out) != tt.want {
			t.Errorf("marshal %s: want %s, got %s", tt.in, tt.want, out)
		}
	}
}

func TestRate_MarshalJSON(t *testing.T) {
	// Rates keep their own precision: a 9.975 QST rate must not be rounded
	// to two places on output.
	tests := []struct {
		in   string
		want string
	}{
		{"9.975", `{"v":9.975}`},
		{"13", `{"v":13}`},
		{"5.5", `{"v":5.5}`},
	}

	for _, tt := range tests {
		out, err := json.Marshal(map[string]Rate{
			"v": NewRate(decimal.RequireFromString(tt.in)),
		})
		if err != nil {
			t.Fatalf("marshal %s: %v", tt.in, err)
		}
		if string(out) != tt.want {
			t.Errorf("marshal %s: want %s, got %s", tt.in, tt.want, out)
		}
	}
}
