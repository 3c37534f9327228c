package draft

import (
	"fmt"
	"time"
)

const (
	firstSlotHour = 6
	slotsPerDay   = 12
)

// Slot is an hour offered by the schedule picker
type Slot struct {
	Name  string    `json:"name"`
	Day   string    `json:"day"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SlotsForDay returns the hourly slots from 6:00 to 18:00 on the given day,
// in the day's location
func SlotsForDay(day time.Time) []Slot {
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, day.Location())

	slots := make([]Slot, 0, slotsPerDay)
	for i := 0; i < slotsPerDay; i++ {
		hour := firstSlotHour + i
		start := midnight.Add(time.Duration(hour) * time.Hour)
		slots = append(slots, Slot{
			Name:  fmt.Sprintf("%d:00 - %d:00", hour, hour+1),
			Day:   midnight.Format("2006-01-02"),
			Start: start,
			End:   start.Add(time.Hour),
		})
	}
	return slots
}
