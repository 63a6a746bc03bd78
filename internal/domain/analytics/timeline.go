package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/getraenkekasse/internal/domain"
	"github.com/jhoicas/getraenkekasse/internal/domain/entity"
)

// Mode granularidad de la línea de tiempo.
type Mode string

const (
	ModeDate    Mode = "date"
	ModeHour    Mode = "hour"
	ModeWeekday Mode = "weekday"
	ModeMonth   Mode = "month"
)

// ParseMode valida el modo recibido desde la capa de presentación. "" equivale a ModeDate.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeDate, nil
	case ModeDate, ModeHour, ModeWeekday, ModeMonth:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: modo de línea de tiempo %q", domain.ErrInvalidInput, s)
}

// Dominios fijos y ordenados para el reindexado con ceros.
var (
	HourDomain = func() []int {
		h := make([]int, 24)
		for i := range h {
			h[i] = i
		}
		return h
	}()
	WeekdayDomain = []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	MonthDomain = []time.Month{
		time.January, time.February, time.March, time.April, time.May, time.June,
		time.July, time.August, time.September, time.October, time.November, time.December,
	}
)

// Bucket una categoría de la línea de tiempo.
// Key es la hora (0..23), el time.Weekday o el time.Month según el modo;
// en ModeDate Key no se usa y Date tiene el día (00:00).
type Bucket struct {
	Key   int
	Date  time.Time
	Count int
}

// Timeline cuenta compras por categoría. Los modos hour, weekday y month
// devuelven siempre el dominio completo en orden calendario, con ceros donde
// no hubo compras; el modo date devuelve solo los días con compras, ascendente.
func Timeline(rows []entity.LedgerRow, mode Mode) []Bucket {
	switch mode {
	case ModeHour:
		counts := make(map[int]int)
		for _, r := range rows {
			if r.IsPurchase() {
				counts[r.Timestamp.Hour()]++
			}
		}
		return reindex(HourDomain, counts)
	case ModeWeekday:
		counts := make(map[int]int)
		for _, r := range rows {
			if r.IsPurchase() {
				counts[int(r.Timestamp.Weekday())]++
			}
		}
		keys := make([]int, len(WeekdayDomain))
		for i, d := range WeekdayDomain {
			keys[i] = int(d)
		}
		return reindex(keys, counts)
	case ModeMonth:
		counts := make(map[int]int)
		for _, r := range rows {
			if r.IsPurchase() {
				counts[int(r.Timestamp.Month())]++
			}
		}
		keys := make([]int, len(MonthDomain))
		for i, m := range MonthDomain {
			keys[i] = int(m)
		}
		return reindex(keys, counts)
	default:
		return byDate(rows)
	}
}

func reindex(domainKeys []int, counts map[int]int) []Bucket {
	out := make([]Bucket, len(domainKeys))
	for i, k := range domainKeys {
		out[i] = Bucket{Key: k, Count: counts[k]}
	}
	return out
}

func byDate(rows []entity.LedgerRow) []Bucket {
	index := make(map[time.Time]int)
	out := make([]Bucket, 0)
	for _, r := range rows {
		if !r.IsPurchase() {
			continue
		}
		d := dateOnly(*r.Timestamp)
		i, ok := index[d]
		if !ok {
			i = len(out)
			index[d] = i
			out = append(out, Bucket{Date: d})
		}
		out[i].Count++
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.Before(out[b].Date) })
	return out
}
