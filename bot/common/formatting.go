package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatDoubloons formats an amount with thousand separators
func FormatDoubloons(amount int64) string {
	str := fmt.Sprintf("%d", amount)

	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatDuration renders a duration as H:MM:SS
func FormatDuration(d time.Duration) string {
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}

// FormatSpinResult formats the outcome line of a slot roll
func FormatSpinResult(won bool, symbol string, payout, newBalance int64) string {
	if won {
		return fmt.Sprintf("🎉 **Three %s in a row!** You won **%s doubloons**. New balance: **%s doubloons**",
			symbol, FormatDoubloons(payout), FormatDoubloons(newBalance))
	}
	return "😔 No luck this time. Better luck next roll!"
}
