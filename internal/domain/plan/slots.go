package plan

// TimeSlots is the fixed hourly planning grid, 6am through 11pm.
var TimeSlots = []string{
	"6am", "7am", "8am", "9am", "10am", "11am",
	"12pm", "1pm", "2pm", "3pm", "4pm", "5pm",
	"6pm", "7pm", "8pm", "9pm", "10pm", "11pm",
}

var slotIndex = func() map[string]int {
	m := make(map[string]int, len(TimeSlots))
	for i, label := range TimeSlots {
		m[label] = i
	}
	return m
}()

// SlotIndex returns the grid position of a slot label, or -1 if unknown.
func SlotIndex(label string) int {
	if i, ok := slotIndex[label]; ok {
		return i
	}
	return -1
}

// SlotsSpanned returns how many hourly slots an activity of the given
// duration occupies. Durations are rounded up to whole hours.
func SlotsSpanned(durationMinutes int) int {
	if durationMinutes <= 0 {
		return 0
	}
	span := durationMinutes / 60
	if durationMinutes%60 != 0 {
		span++
	}
	return span
}

// endLabel returns the label of the slot where an activity ends, one past
// the last slot it occupies. A 60-minute activity at 10am ends at 11am. The
// grid has no label past 11pm, so spans running off the end clamp there.
func endLabel(startIdx, span int) string {
	end := startIdx + span
	if end >= len(TimeSlots) {
		end = len(TimeSlots) - 1
	}
	return TimeSlots[end]
}
