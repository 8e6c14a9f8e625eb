package facet

import (
	"strconv"
	"strings"
	"time"

	"afisha/internal/model"
)

// Display strings for the single supported locale (ru-RU).
const (
	LabelToday       = "Сегодня"
	LabelTomorrow    = "Завтра"
	LabelBuyTicket   = "Купить билет"
	LabelFreeEntry   = "Вход свободный"
	LabelFree        = "Бесплатно"
	CurrencySign     = "₽"
	UntitledTitle    = "Без названия"
	UnknownPlaceName = "Неизвестное место"
)

// Short weekday names indexed by time.Weekday.
var ruWeekdayShort = [...]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"}

// Short genitive month names as produced by the ru-RU short date format.
var ruMonthShort = [...]string{
	"янв.", "февр.", "мар.", "апр.", "мая", "июн.",
	"июл.", "авг.", "сент.", "окт.", "нояб.", "дек.",
}

// Full genitive month names ("1 июня").
var ruMonthGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// Nominative month names for calendar headers ("Июнь 2024").
var ruMonthNominative = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// WeekdayShort returns the ru-RU short weekday name ("пн").
func WeekdayShort(d time.Weekday) string {
	return ruWeekdayShort[d]
}

// MonthTitle formats a calendar header, e.g. "Июнь 2024".
func MonthTitle(t time.Time) string {
	return ruMonthNominative[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// DayMonth formats a long day label, e.g. "1 июня".
func DayMonth(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + ruMonthGenitive[t.Month()-1]
}

// DateLabel renders the human date of an event relative to now:
// "Сегодня", "Завтра" or "сб, 1 июн.", with ", HH:MM" appended when the time
// of day is known. An empty date yields "". A date that does not parse is
// shown verbatim.
func DateLabel(date, clock string, now time.Time) string {
	if date == "" {
		return ""
	}

	label := date
	if d, err := time.ParseInLocation(model.DateLayout, date, now.Location()); err == nil {
		today := midnight(now)
		switch {
		case d.Equal(today):
			label = LabelToday
		case d.Equal(today.AddDate(0, 0, 1)):
			label = LabelTomorrow
		default:
			label = ruWeekdayShort[d.Weekday()] + ", " + strconv.Itoa(d.Day()) + " " + ruMonthShort[d.Month()-1]
		}
	}

	if clock != "" {
		return label + ", " + clock
	}
	return label
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// PricePolicy decides whether a price tag is shown without a ticket link.
type PricePolicy string

const (
	// PriceAlways shows "Бесплатно" / "{price}₽" whenever the price is known.
	PriceAlways PricePolicy = "always"
	// PriceTicketOnly only labels events that carry a ticket link.
	PriceTicketOnly PricePolicy = "ticket-only"
)

// FormatPrice renders an amount with the currency sign ("500₽", "499.5₽").
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + CurrencySign
}

// PriceLabel renders the purchase/price affordance for ev.
//
//   - With a ticket URL: "Купить билет", plus " от {price}₽" for a positive
//     price, or "Вход свободный" when the price is exactly zero.
//   - Without a ticket URL: nothing under PriceTicketOnly; under PriceAlways
//     "Бесплатно" for zero and "{price}₽" for a positive price.
func PriceLabel(ev model.Event, policy PricePolicy) string {
	if strings.TrimSpace(ev.Tickets) != "" {
		switch {
		case ev.Price != nil && *ev.Price == 0:
			return LabelFreeEntry
		case ev.Price != nil && *ev.Price > 0:
			return LabelBuyTicket + " от " + FormatPrice(*ev.Price)
		default:
			return LabelBuyTicket
		}
	}

	if policy != PriceAlways || ev.Price == nil {
		return ""
	}
	switch {
	case *ev.Price == 0:
		return LabelFree
	case *ev.Price > 0:
		return FormatPrice(*ev.Price)
	default:
		return ""
	}
}

// TicketURL returns the ticket link or nil when absent.
func TicketURL(ev model.Event) *string {
	t := strings.TrimSpace(ev.Tickets)
	if t == "" {
		return nil
	}
	return &t
}

const (
	ratingBadgeThreshold = 4.0
	featuredThreshold    = 5.0
)

// RatingBadge returns the badge text (one decimal) for ratings of at least
// 4.0, or nil below that.
func RatingBadge(rating float64) *string {
	if rating < ratingBadgeThreshold {
		return nil
	}
	s := strconv.FormatFloat(rating, 'f', 1, 64)
	return &s
}

// IsFeatured reports whether the rating qualifies the card for featured styling.
func IsFeatured(rating float64) bool {
	return rating >= featuredThreshold
}
