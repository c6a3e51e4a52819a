package campaign

import (
	"time"

	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
)

// MaxCatchUpOccurrences limita quantas ocorrencias atrasadas um modelo gera por execucao.
const MaxCatchUpOccurrences = 12

func NextOccurrence(from time.Time, recurrenceType shared.Frequency, interval int) time.Time {
	return recurrenceType.Next(from, interval)
}

func validateRecurrence(r *RecurrenceRequest) error {
	if !r.Type.IsValid() {
		return appErrors.NewValidationError("recurrenceType", "tipo de recorrencia deve ser weekly, monthly, quarterly ou yearly")
	}
	if r.Interval < 1 {
		return appErrors.NewValidationError("recurrenceInterval", "intervalo deve ser maior ou igual a 1")
	}
	if r.StartDate == nil {
		return appErrors.NewValidationError("startDate", "data de inicio da recorrencia e obrigatoria")
	}
	if r.EndDate != nil && !r.EndDate.After(*r.StartDate) {
		return appErrors.NewValidationError("endDate", "fim da recorrencia deve ser depois do inicio")
	}
	return nil
}

// applyRecurrence grava a configuracao e posiciona a proxima ocorrencia.
// Um modelo novo comeca um periodo apos o inicio. Quando a agenda nao muda a
// proxima data e mantida; quando muda e ja existem ocorrencias geradas, a serie
// continua depois de now para nao repetir datas passadas.
func applyRecurrence(c *Campaign, r *RecurrenceRequest, now time.Time) {
	start := shared.StartOfDay(*r.StartDate)
	sameSchedule := c.IsRecurring &&
		c.RecurrenceType == r.Type &&
		c.RecurrenceInterval == r.Interval &&
		c.RecurrenceStartDate != nil && c.RecurrenceStartDate.Equal(start)

	var next time.Time
	switch {
	case sameSchedule && c.NextOccurrenceDate != nil:
		next = *c.NextOccurrenceDate
	case c.OccurrenceNumber > 0:
		next = r.Type.NextAfter(start, r.Interval, now)
	default:
		next = NextOccurrence(start, r.Type, r.Interval)
	}

	c.IsRecurring = true
	c.RecurrenceType = r.Type
	c.RecurrenceInterval = r.Interval
	c.RecurrenceStartDate = &start
	c.AutoPublish = r.AutoPublish
	c.RecurrenceEndDate = nil
	if r.EndDate != nil {
		end := shared.StartOfDay(*r.EndDate)
		c.RecurrenceEndDate = &end
	}
	c.NextOccurrenceDate = &next
	if c.RecurrenceEndDate != nil && next.After(*c.RecurrenceEndDate) {
		c.NextOccurrenceDate = nil
	}
}

// anchor e a origem da serie; modelos antigos sem inicio usam a proxima data.
func (c *Campaign) anchor(fallback time.Time) time.Time {
	if c.RecurrenceStartDate != nil {
		return *c.RecurrenceStartDate
	}
	return fallback
}
