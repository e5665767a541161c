package documento

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatarMoeda renders a value as Brazilian reais, e.g. "R$ 1.234,56".
// Formatting works on the decimal digits so large amounts stay exact.
func FormatarMoeda(v decimal.Decimal) string {
	s := v.StringFixed(2)
	sinal := ""
	if strings.HasPrefix(s, "-") {
		sinal, s = "-", s[1:]
	}
	inteiro, centavos, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString("R$ ")
	b.WriteString(sinal)
	for i, d := range inteiro {
		if i > 0 && (len(inteiro)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteByte(',')
	b.WriteString(centavos)
	return b.String()
}

// FormatarData renders t as dd/mm/yyyy in loc (UTC when nil).
func FormatarData(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("02/01/2006")
}
