package pacing

import "time"

// Sending window, local wall-clock hours [start, end).
const (
	WindowStartHour = 8
	WindowEndHour   = 18
)

// Volume thresholds selecting the slot density.
const (
	HourlyBelow    = 11
	FiveMinuteUpTo = 480
)

// Band is a slot granularity.
type Band struct {
	Name string
	Step time.Duration
}

var (
	HourlyBand     = Band{Name: "hourly", Step: time.Hour}
	FiveMinuteBand = Band{Name: "5m", Step: 5 * time.Minute}
	TenSecondBand  = Band{Name: "10s", Step: 10 * time.Second}
)

// BandFor picks the density for a day's volume. Later checks override earlier ones.
func BandFor(count int) Band {
	band := FiveMinuteBand
	if count > FiveMinuteUpTo {
		band = TenSecondBand
	}
	if count < HourlyBelow {
		band = HourlyBand
	}
	return band
}

// Capacity is the number of slots a band can place inside one day's window.
func (b Band) Capacity() int {
	return int(time.Duration(WindowEndHour-WindowStartHour) * time.Hour / b.Step)
}

// SlotSequence lazily yields up to count timestamps on one day. It steps from the
// day's midnight by the band's granularity, keeps only times inside the sending
// window and stops at the next midnight, so it can yield fewer than requested.
// The sequence is deterministic and can be restarted with Reset.
type SlotSequence struct {
	band  Band
	count int
	start time.Time
	end   time.Time

	step     int
	produced int
}

func NewSlotSequence(day time.Time, count int) *SlotSequence {
	y, m, d := day.Date()
	loc := day.Location()
	if count < 0 {
		count = 0
	}
	return &SlotSequence{
		band:  BandFor(count),
		count: count,
		start: time.Date(y, m, d, 0, 0, 0, 0, loc),
		end:   time.Date(y, m, d+1, 0, 0, 0, 0, loc),
	}
}

func (s *SlotSequence) Band() Band { return s.band }

// Next returns the next slot, or false once count slots were produced or the day ended.
func (s *SlotSequence) Next() (time.Time, bool) {
	for s.produced < s.count {
		t := s.start.Add(time.Duration(s.step) * s.band.Step)
		if !t.Before(s.end) {
			return time.Time{}, false
		}
		s.step++
		if h := t.Hour(); h >= WindowStartHour && h < WindowEndHour {
			s.produced++
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *SlotSequence) Reset() {
	s.step = 0
	s.produced = 0
}

// GenerateSlots collects the whole sequence for day.
func GenerateSlots(day time.Time, count int) []time.Time {
	seq := NewSlotSequence(day, count)
	slots := make([]time.Time, 0, min(seq.count, seq.band.Capacity()))
	for {
		t, ok := seq.Next()
		if !ok {
			return slots
		}
		slots = append(slots, t)
	}
}
