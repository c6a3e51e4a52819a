package shared

import (
	"time"
)

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Next avanca from em interval periodos. Meses que nao possuem o dia de
// origem caem no ultimo dia do mes (31/01 + 1 mes = 28/02 ou 29/02).
func (f Frequency) Next(from time.Time, interval int) time.Time {
	return f.Occurrence(from, interval, 1)
}

// Occurrence devolve a k-esima data da serie iniciada em anchor. O calculo
// parte sempre da origem, entao o dia do mes nao se perde apos um mes curto.
func (f Frequency) Occurrence(anchor time.Time, interval, k int) time.Time {
	if interval < 1 {
		interval = 1
	}
	if k < 0 {
		k = 0
	}
	if f == FrequencyWeekly {
		return anchor.AddDate(0, 0, 7*interval*k)
	}
	months := f.months()
	if months == 0 {
		return anchor
	}
	return addMonthsClamped(anchor, months*interval*k)
}

// NextAfter devolve a primeira data da serie (k >= 1) estritamente posterior a after.
func (f Frequency) NextAfter(anchor time.Time, interval int, after time.Time) time.Time {
	if !f.IsValid() {
		return after
	}
	if interval < 1 {
		interval = 1
	}

	k := 1
	if after.After(anchor) {
		// limite inferior: nenhuma ocorrencia antes de k passa de after
		if f == FrequencyWeekly {
			days := int(after.Sub(anchor).Hours() / 24)
			k = days / (7 * interval)
		} else {
			elapsed := (after.Year()-anchor.Year())*12 + int(after.Month()) - int(anchor.Month())
			k = elapsed / (f.months() * interval)
		}
		if k < 1 {
			k = 1
		}
	}

	for {
		if d := f.Occurrence(anchor, interval, k); d.After(after) {
			return d
		}
		k++
	}
}

func (f Frequency) months() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	default:
		return 0
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); day > last {
		day = last
	}

	return time.Date(target.Year(), target.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
