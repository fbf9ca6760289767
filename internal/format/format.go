package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"realestate-trade-map/internal/models"
)

// Missing is shown for values a record does not carry.
const Missing = "–"

var printer = message.NewPrinter(language.Korean)

// Eok renders an eok amount with one decimal and no trailing ".0".
func Eok(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0")
}

// ManToEok renders a man amount in eok.
func ManToEok(man float64) string {
	return Eok(man / 10000)
}

// ManAmount renders a man amount as "X억 Y만원", omitting zero parts.
func ManAmount(man float64) string {
	if man <= 0 {
		return "0"
	}
	eok := int64(math.Floor(man / 10000))
	rest := int64(math.Mod(man, 10000))

	var parts []string
	if eok > 0 {
		parts = append(parts, fmt.Sprintf("%d억", eok))
	}
	if rest > 0 {
		parts = append(parts, printer.Sprintf("%d만원", rest))
	}
	return strings.Join(parts, " ")
}

// Number renders an integer amount with thousands separators.
func Number(v float64) string {
	return printer.Sprintf("%d", int64(v))
}

// Pyeong renders a floor area in pyeong from square meters.
func Pyeong(areaM2 *float64) string {
	if areaM2 == nil || *areaM2 == 0 {
		return Missing
	}
	return Eok(*areaM2/3.3058) + "평"
}

// YearMonth renders YYYYMM as "YYYY.MM".
func YearMonth(ym int) string {
	s := strconv.Itoa(ym)
	if len(s) != 6 {
		return s
	}
	return s[:4] + "." + s[4:]
}

// PriceLine is the headline price of a list card for the record's deal type.
func PriceLine(n *models.Normalized) string {
	deposit := 0.0
	if n.DepositEok != nil {
		deposit = *n.DepositEok
	}
	switch n.Deal {
	case models.DealSale:
		sale := 0.0
		if n.PriceMan != nil {
			sale = *n.PriceMan / 10000
		}
		return Eok(sale) + "억"
	case models.DealJeonse:
		return Eok(deposit) + "억"
	case models.DealMonthlyRent:
		monthly := 0.0
		if n.MonthlyMan != nil {
			monthly = *n.MonthlyMan
		}
		return fmt.Sprintf("%s억 / %s만", Eok(deposit), strconv.FormatFloat(monthly, 'f', -1, 64))
	}
	dep, mon := Missing, Missing
	if n.DepositEok != nil {
		dep = Eok(*n.DepositEok) + "억"
	}
	if n.MonthlyMan != nil {
		mon = strconv.FormatFloat(*n.MonthlyMan, 'f', -1, 64) + "만"
	}
	return dep + " / " + mon
}

// RentDetail is the "(보증금 … / 월세 …)" line shown for lease records. Sales get "".
func RentDetail(n *models.Normalized) string {
	if n.Deal == models.DealSale {
		return ""
	}
	deposit, monthly := 0.0, 0.0
	if n.DepositEok != nil {
		deposit = *n.DepositEok * 10000
	}
	if n.MonthlyMan != nil {
		monthly = *n.MonthlyMan
	}
	return fmt.Sprintf("(보증금 %s만원 / 월세 %s만원)", Number(deposit), Number(monthly))
}
