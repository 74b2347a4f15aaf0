package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney renders a monetary amount with two decimal places
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}
