package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		name  string
		input int
		want  int
	}{
		{name: "zero uses default", input: 0, want: DefaultLimit},
		{name: "negative uses default", input: -5, want: DefaultLimit},
		{name: "within range passes through", input: 40, want: 40},
		{name: "above max is capped", input: 5000, want: MaxLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLimit(tc.input); got != tc.want {
				t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize(Params{Limit: -1, Offset: -10})
	if got.Limit != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got.Limit)
	}
	if got.Offset != 0 {
		t.Fatalf("expected offset clamped to 0, got %d", got.Offset)
	}
}

func TestLimitWithBuffer(t *testing.T) {
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
}
