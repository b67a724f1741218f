package attendance

import "strings"

// Classify は出勤・退勤時刻からステータスを導出します。どの入力に対しても必ず 1 つのステータスを返します。
func Classify(clockIn string, clockOut *string) Status {
	in := strings.TrimSpace(clockIn)
	if in == "" || clockOut == nil || strings.TrimSpace(*clockOut) == "" {
		return StatusIncomplete
	}

	inTime, ok := parseClock(in)
	if !ok {
		return StatusInvalid
	}
	outTime, ok := parseClock(strings.TrimSpace(*clockOut))
	if !ok || !outTime.After(inTime) {
		return StatusInvalid
	}
	return StatusComplete
}
