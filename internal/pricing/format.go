package pricing

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var receiptPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatBreakdown renders b as a multi-line receipt. The insurance and
// security deposit lines are left out when their amount is zero.
func FormatBreakdown(b Breakdown) string {
	var sb strings.Builder
	writeBreakdown(&sb, b)
	return strings.TrimRight(sb.String(), "\n")
}

// FormatCredited renders c like FormatBreakdown and, when credit was redeemed,
// appends the credit and the amount left to pay.
func FormatCredited(c CreditedPricing) string {
	var sb strings.Builder
	writeBreakdown(&sb, c.Breakdown)
	if c.CreditApplied != 0 {
		line(&sb, "Credit applied", -c.CreditApplied)
		line(&sb, "Amount due", c.FinalTotal)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatAmount renders a currency amount with grouping, as "$1,234.50".
func FormatAmount(amount float64) string {
	if amount < 0 {
		return receiptPrinter.Sprintf("-$%.2f", -amount)
	}
	return receiptPrinter.Sprintf("$%.2f", amount)
}

func writeBreakdown(sb *strings.Builder, b Breakdown) {
	sb.WriteString(receiptPrinter.Sprintf("%-20s$%.2f x %s\n", "Daily rate", b.DailyRate, dayCount(b.NumberOfDays)))
	line(sb, "Base price", b.BasePrice)
	line(sb, "Service fee", b.ServiceFee)
	if b.Insurance != 0 {
		line(sb, "Insurance", b.Insurance)
	}
	if b.SecurityDeposit != 0 {
		line(sb, "Security deposit", b.SecurityDeposit)
	}
	line(sb, "Total", b.TotalRenterPays)
	line(sb, "Platform commission", b.PlatformCommission)
	line(sb, "Owner receives", b.OwnerReceives)
}

func line(sb *strings.Builder, label string, amount float64) {
	if amount < 0 {
		sb.WriteString(receiptPrinter.Sprintf("%-20s-$%.2f\n", label, -amount))
		return
	}
	sb.WriteString(receiptPrinter.Sprintf("%-20s$%.2f\n", label, amount))
}

func dayCount(n int) string {
	if n == 1 {
		return "1 day"
	}
	return receiptPrinter.Sprintf("%d days", n)
}
