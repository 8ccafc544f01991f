package view

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pix-storefront/internal/model"
)

// saoPaulo is the zone the API writes its zone-less timestamps in.
var saoPaulo = loadZone("America/Sao_Paulo")

func loadZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// BRL formats an amount the way Brazilian prices are written: R$ 1.234,56.
func BRL(v any) string {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x != nil {
			d = *x
		}
	case string:
		parsed, err := decimal.NewFromString(x)
		if err != nil {
			return x
		}
		d = parsed
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case float64:
		d = decimal.NewFromFloat(x)
	default:
		return fmt.Sprint(v)
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "R$ " + b.String() + "," + frac
}

// Date renders an API timestamp as dd/mm/yyyy, or with the time when withTime.
func Date(value string, withTime bool) string {
	t, ok := model.ParseAPITime(value, saoPaulo)
	if !ok {
		return value
	}
	t = t.In(saoPaulo)
	if withTime {
		return t.Format("02/01/2006 15:04")
	}
	return t.Format("02/01/2006")
}

// Countdown renders seconds as mm:ss.
func Countdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

var statusLabels = map[string]string{
	"pending":   "Pendente",
	"paid":      "Pago",
	"cancelled": "Cancelado",
	"expired":   "Expirado",
	"refunded":  "Reembolsado",
	"active":    "Ativo",
	"inactive":  "Inativo",
	"banned":    "Banido",
}

var statusClasses = map[string]string{
	"pending":   "badge-warning",
	"paid":      "badge-success",
	"active":    "badge-success",
	"cancelled": "badge-danger",
	"expired":   "badge-muted",
	"banned":    "badge-danger",
	"refunded":  "badge-info",
	"inactive":  "badge-muted",
}

func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

func StatusClass(status string) string {
	if class, ok := statusClasses[status]; ok {
		return class
	}
	return "badge-muted"
}

// QRImage turns the base64 PNG from the API into an img src. The API sends
// either a bare payload or a full data URL.
func QRImage(b64 string) template.URL {
	if b64 == "" {
		return ""
	}
	if strings.HasPrefix(b64, "data:image/") {
		return template.URL(b64)
	}
	return template.URL("data:image/png;base64," + b64)
}

// Initials is the avatar fallback for a name.
func Initials(name string) string {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "?"
	case 1:
		r := []rune(fields[0])
		return strings.ToUpper(string(r[:1]))
	}
	first, last := []rune(fields[0]), []rune(fields[len(fields)-1])
	return strings.ToUpper(string(first[:1]) + string(last[:1]))
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"brl":         BRL,
		"date":        func(v string) string { return Date(v, false) },
		"datetime":    func(v string) string { return Date(v, true) },
		"countdown":   Countdown,
		"statusLabel": StatusLabel,
		"statusClass": StatusClass,
		"qrImage":     QRImage,
		"initials":    Initials,
		"typeLabel":   func(t model.ProductType) string { return t.Label() },
		"add":         func(a, b int) int { return a + b },
		"sub":         func(a, b int) int { return a - b },
		"pct":         func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
		"ms":          func(d time.Duration) int64 { return d.Milliseconds() },
	}
}
