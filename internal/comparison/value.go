package comparison

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Date is a calendar day with no time or zone component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of days between d and other.
func (d Date) DaysBetween(other Date) int {
	// Unix seconds rather than time.Duration, which saturates past ~292 years.
	days := (d.time().Unix() - other.time().Unix()) / 86400
	if days < 0 {
		days = -days
	}
	return int(days)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Value is a raw field value canonicalized for its FieldType. Only the member
// matching Type is meaningful. A Value that failed to normalize is unparseable
// and carries the reason; it is a normal outcome, not an error.
type Value struct {
	Type   FieldType
	Amount decimal.Decimal
	Date   Date
	Text   string
	Reason string
	ok     bool
}

func amountValue(d decimal.Decimal) Value {
	return Value{Type: FieldTypeAmount, Amount: d, ok: true}
}

func dateValue(d Date) Value {
	return Value{Type: FieldTypeDate, Date: d, ok: true}
}

func textValue(t FieldType, s string) Value {
	return Value{Type: t, Text: s, ok: true}
}

func unparseable(t FieldType, format string, args ...any) Value {
	return Value{Type: t, Reason: fmt.Sprintf(format, args...)}
}

// Unparseable reports whether normalization failed.
func (v Value) Unparseable() bool {
	return !v.ok
}

// Equal reports whether two parseable values of the same type denote the same fact.
func (v Value) Equal(other Value) bool {
	if !v.ok || !other.ok || v.Type != other.Type {
		return false
	}
	switch v.Type {
	case FieldTypeAmount:
		return v.Amount.Equal(other.Amount)
	case FieldTypeDate:
		return v.Date == other.Date
	default:
		return v.Text == other.Text
	}
}

func (v Value) String() string {
	if !v.ok {
		return "unparseable(" + v.Reason + ")"
	}
	switch v.Type {
	case FieldTypeAmount:
		return v.Amount.String()
	case FieldTypeDate:
		return v.Date.String()
	default:
		return v.Text
	}
}
