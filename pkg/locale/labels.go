// Package locale traduce las categorías canónicas (día de la semana, mes) y los
// formatos de fecha y moneda al idioma configurado del despliegue.
//
// El idioma se resuelve con golang.org/x/text/language contra las tablas
// soportadas; nunca se consulta el locale del sistema operativo.
package locale

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Labels etiquetas de un idioma concreto.
type Labels struct {
	Tag        language.Tag
	weekdays   [7]string  // indexado por time.Weekday (Sunday = 0)
	months     [12]string // indexado por time.Month - 1
	dateLayout string
	money      func(decimal.Decimal) string
	pieces     string // sufijo de cantidad, ej. "St."
}

var (
	german = Labels{
		Tag:        language.German,
		weekdays:   [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		months:     [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
		dateLayout: "02.01.2006",
		money:      func(d decimal.Decimal) string { return d.StringFixed(2) + " €" },
		pieces:     "St.",
	}
	english = Labels{
		Tag:        language.English,
		weekdays:   [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		months:     [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		dateLayout: "2006-01-02",
		money:      func(d decimal.Decimal) string { return "€" + d.StringFixed(2) },
		pieces:     "pcs.",
	}
	spanish = Labels{
		Tag:        language.Spanish,
		weekdays:   [7]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"},
		months:     [12]string{"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio", "Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"},
		dateLayout: "02/01/2006",
		money:      func(d decimal.Decimal) string { return d.StringFixed(2) + " €" },
		pieces:     "uds.",
	}

	// El primer elemento es el fallback del matcher.
	supported = []Labels{german, english, spanish}
	matcher   = language.NewMatcher([]language.Tag{german.Tag, english.Tag, spanish.Tag})
)

// For resuelve las etiquetas para un tag BCP 47 o POSIX ("de", "de-AT", "en_US.UTF-8").
// Idiomas no soportados caen en alemán; un tag sintácticamente inválido es error.
func For(tag string) (Labels, error) {
	if tag == "" {
		return german, nil
	}
	t, err := language.Parse(normalize(tag))
	if err != nil {
		return Labels{}, fmt.Errorf("locale %q: %w", tag, err)
	}
	_, idx, _ := matcher.Match(t)
	return supported[idx], nil
}

// normalize convierte un locale POSIX (en_US.UTF-8) en un tag BCP 47 (en-US).
func normalize(tag string) string {
	out := make([]byte, 0, len(tag))
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		if c == '.' || c == '@' {
			break
		}
		if c == '_' {
			c = '-'
		}
		out = append(out, c)
	}
	return string(out)
}

// Weekday nombre localizado del día.
func (l Labels) Weekday(d time.Weekday) string { return l.weekdays[d] }

// Month nombre localizado del mes.
func (l Labels) Month(m time.Month) string { return l.months[m-1] }

// Date formato corto de fecha del idioma.
func (l Labels) Date(t time.Time) string { return t.Format(l.dateLayout) }

// Money monto con dos decimales y símbolo de euro.
func (l Labels) Money(d decimal.Decimal) string { return l.money(d) }

// Pieces etiqueta "Nombre (N St.)".
func (l Labels) Pieces(name string, n int) string {
	return fmt.Sprintf("%s (%d %s)", name, n, l.pieces)
}
