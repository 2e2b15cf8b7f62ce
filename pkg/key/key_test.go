package key

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
)

func TestDivisors(t *testing.T) {
	tests := []struct {
		width int
		want  []int
	}{
		{1, nil},
		{2, []int{2}},
		{4, []int{2}},
		{12, []int{2, 3, 4, 6}},
		{13, nil},
		{30, []int{2, 3, 5, 6, 10, 15}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Divisors(tt.width)); diff != "" {
			t.Errorf("Divisors(%d) mismatch (-want +got):\n%s", tt.width, diff)
		}
	}
}

func TestGeneratePartitionsWidth(t *testing.T) {
	for _, width := range []int{2, 4, 12, 16, 30, 64, 100, 256, 512} {
		k, err := Generate(width)
		if err != nil {
			t.Fatalf("Generate(%d) error = %v", width, err)
		}
		if k.Sum() != width {
			t.Errorf("Generate(%d) sums to %d", width, k.Sum())
		}
		for _, v := range k.Values() {
			if width%v != 0 {
				t.Errorf("Generate(%d) contains %d, which does not divide the width", width, v)
			}
			if v < 2 || v > width/2+1 {
				t.Errorf("Generate(%d) contains %d, outside [2, %d]", width, v, width/2+1)
			}
		}
		if err := k.Validate(width); err != nil {
			t.Errorf("Generate(%d) produced a key that fails validation: %v", width, err)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	for _, width := range []int{12, 30, 64} {
		a, err := Generate(width)
		if err != nil {
			t.Fatalf("Generate(%d) error = %v", width, err)
		}
		b, _ := Generate(width)
		if !a.Equal(b) {
			t.Errorf("Generate(%d) not deterministic: %v vs %v", width, a, b)
		}
	}
}

func TestGenerateNoUsableDivisors(t *testing.T) {
	for _, width := range []int{1, 3, 13, 97} {
		_, err := Generate(width)
		if !errs.Is(err, errs.ErrCodeNoUsableDivisors) {
			t.Errorf("Generate(%d) error = %v, want NO_USABLE_DIVISORS", width, err)
		}
	}
}

func TestGenerateInvalidWidth(t *testing.T) {
	for _, width := range []int{0, -12} {
		_, err := Generate(width)
		if !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("Generate(%d) error = %v, want INVALID_INPUT", width, err)
		}
	}
}

func TestGenerateExhausted(t *testing.T) {
	_, err := GenerateWithLimit(12, 0)
	if !errs.Is(err, errs.ErrCodeKeyGenerationExhausted) {
		t.Errorf("GenerateWithLimit(12, 0) error = %v, want KEY_GENERATION_EXHAUSTED", err)
	}
}

func TestGenerateOddWidthsTerminate(t *testing.T) {
	// Odd widths have only odd divisors; each either yields a valid key or
	// reports exhaustion, never hangs.
	for _, width := range []int{9, 15, 21, 25, 27, 33, 35, 45, 49, 63, 75, 81, 99, 105} {
		k, err := Generate(width)
		if err != nil {
			if !errs.Is(err, errs.ErrCodeKeyGenerationExhausted) {
				t.Errorf("Generate(%d) error = %v, want nil or KEY_GENERATION_EXHAUSTED", width, err)
			}
			continue
		}
		if err := k.Validate(width); err != nil {
			t.Errorf("Generate(%d) = %v fails validation: %v", width, k, err)
		}
	}
}

func TestCanProgress(t *testing.T) {
	tests := []struct {
		name      string
		divisors  []int
		remaining int
		want      bool
	}{
		{"exact match", []int{3, 7}, 7, true},
		{"odd pair fits", []int{3, 7}, 7 + 1, true},
		{"even fits", []int{2}, 4, true},
		{"stuck on one", []int{3, 7}, 1, false},
		{"odd pair too large", []int{5}, 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canProgress(tt.divisors, tt.remaining); got != tt.want {
				t.Errorf("canProgress(%v, %d) = %v, want %v", tt.divisors, tt.remaining, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     SecretKey
		width   int
		wantErr bool
	}{
		{"valid", New(2, 3, 3, 4), 12, false},
		{"single block", New(2), 2, false},

		{"empty", New(), 12, true},
		{"short sum", New(2, 4), 12, true},
		{"long sum", New(6, 6, 2), 12, true},
		{"non divisor", New(5, 5, 2), 12, true},
		{"too small", New(1, 1, 2, 4, 4), 12, true},
		{"too large", New(12), 12, true},
		{"zero width", New(2), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate(tt.width)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%d) error = %v, wantErr %v", tt.width, err, tt.wantErr)
			}
			if err != nil && !errs.Is(err, errs.ErrCodeInvalidSecretKey) {
				t.Errorf("Validate(%d) returned wrong error code: %v", tt.width, err)
			}
		})
	}
}

func TestKeyIsImmutable(t *testing.T) {
	values := []int{2, 4, 6}
	k := New(values...)
	values[0] = 100
	if k.At(0) != 2 {
		t.Error("New should copy its input")
	}
	out := k.Values()
	out[1] = 100
	if k.At(1) != 4 {
		t.Error("Values should return a copy")
	}
}

func TestParseAndString(t *testing.T) {
	k, err := Parse(" 2, 3,3 ,4")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := k.String(); got != "2,3,3,4" {
		t.Errorf("String() = %q, want %q", got, "2,3,3,4")
	}

	for _, bad := range []string{"", "2,x", "2,,4"} {
		if _, err := Parse(bad); !errs.Is(err, errs.ErrCodeInvalidSecretKey) {
			t.Errorf("Parse(%q) error = %v, want INVALID_SECRET_KEY", bad, err)
		}
	}
}

func TestJSON(t *testing.T) {
	k := New(2, 3, 3, 4)
	data, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != "[2,3,3,4]" {
		t.Errorf("Marshal = %s, want [2,3,3,4]", data)
	}

	var got SecretKey
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if !got.Equal(k) {
		t.Errorf("Unmarshal = %v, want %v", got, k)
	}
}

func TestDeriveParameters(t *testing.T) {
	a := DeriveParameters(42)
	b := DeriveParameters(42)
	if a != b {
		t.Errorf("DeriveParameters not deterministic: %v vs %v", a, b)
	}
	for i, v := range a {
		if v < 0 || v >= 200 {
			t.Errorf("value %d = %d, want [0, 200)", i, v)
		}
	}
	if DeriveParameters(42) == DeriveParameters(43) {
		t.Error("different seeds should produce different parameters")
	}
}
