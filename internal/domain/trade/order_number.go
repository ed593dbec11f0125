package trade

import (
	"fmt"
	"strings"
	"time"
)

// DefaultOrderPrefix is the order number prefix used when none is configured
const DefaultOrderPrefix = "SADSOD"

// SequenceKey returns the per-day counter key, "PREFIX-YYMMDD-", for the UTC date of t.
// Every order number allocated that day starts with this key.
func SequenceKey(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s-", strings.ToUpper(prefix), t.UTC().Format("060102"))
}

// FormatOrderNumber renders PREFIX-YYMMDD-NNNN. The sequence is zero-padded
// to four digits and widens past 9999 instead of wrapping.
func FormatOrderNumber(key string, seq int64) string {
	return fmt.Sprintf("%s%04d", key, seq)
}
