package attendance

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		clockIn  string
		clockOut *string
		want     Status
	}{
		{name: "both absent", clockIn: "", clockOut: nil, want: StatusIncomplete},
		{name: "clock out absent", clockIn: "09:00:00", clockOut: nil, want: StatusIncomplete},
		{name: "clock out empty", clockIn: "09:00:00", clockOut: strPtr("  "), want: StatusIncomplete},
		{name: "clock in empty", clockIn: "", clockOut: strPtr("17:00:00"), want: StatusIncomplete},
		{name: "complete", clockIn: "09:00:00", clockOut: strPtr("17:30:00"), want: StatusComplete},
		{name: "short form complete", clockIn: "9:00", clockOut: strPtr("9:01"), want: StatusComplete},
		{name: "equal times", clockIn: "09:00:00", clockOut: strPtr("09:00:00"), want: StatusInvalid},
		{name: "clock out earlier", clockIn: "17:00:00", clockOut: strPtr("09:00:00"), want: StatusInvalid},
		{name: "unparsable clock out", clockIn: "09:00:00", clockOut: strPtr("late"), want: StatusInvalid},
		{name: "unparsable clock in", clockIn: "25:00", clockOut: strPtr("17:00:00"), want: StatusInvalid},
		{name: "fractional clock out", clockIn: "09:00:00", clockOut: strPtr("09:00:00.5"), want: StatusInvalid},
		{name: "comma fraction clock in", clockIn: "08:59:59,9", clockOut: strPtr("17:00:00"), want: StatusInvalid},
	}

	for _, tt := range tests {
		if got := Classify(tt.clockIn, tt.clockOut); got != tt.want {
			t.Errorf("%s: Classify(%q, %v) = %s, want %s", tt.name, tt.clockIn, tt.clockOut, got, tt.want)
		}
	}
}

func TestClassify_IsTotal(t *testing.T) {
	t.Parallel()

	values := []*string{nil, strPtr(""), strPtr("08:00:00"), strPtr("12:00:00"), strPtr("18:00:00"), strPtr("nonsense"), strPtr("12:00:00.5")}
	for _, in := range values {
		for _, out := range values {
			clockIn := ""
			if in != nil {
				clockIn = *in
			}
			switch Classify(clockIn, out) {
			case StatusIncomplete, StatusComplete, StatusInvalid:
			default:
				t.Fatalf("Classify(%q, %v) returned an unknown status", clockIn, out)
			}
		}
	}
}
