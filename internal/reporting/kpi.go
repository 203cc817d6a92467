package reporting

import "github.com/shopspring/decimal"

// SafeDiv returns n/d, or 0 when d is 0.
func SafeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// CTR is click-through rate in percent.
func CTR(clicks, impressions float64) float64 {
	return SafeDiv(clicks, impressions) * 100
}

// CPC is cost per click.
func CPC(spend, clicks float64) float64 {
	return SafeDiv(spend, clicks)
}

// CPM is cost per thousand impressions.
func CPM(spend, impressions float64) float64 {
	return SafeDiv(spend, impressions) * 1000
}

// CPL is cost per lead.
func CPL(spend, leads float64) float64 {
	return SafeDiv(spend, leads)
}

// CPR is cost per result.
func CPR(spend, results float64) float64 {
	return SafeDiv(spend, results)
}

// CPS is cost per sale.
func CPS(spend, sales float64) float64 {
	return SafeDiv(spend, sales)
}

// CPQL is cost per qualified lead.
func CPQL(spend, qualifiedLeads float64) float64 {
	return SafeDiv(spend, qualifiedLeads)
}

// AOV is average order value.
func AOV(income, sales float64) float64 {
	return SafeDiv(income, sales)
}

// ROAS is return on ad spend in percent: (income-expense)/expense*100.
// Zero expense yields 0, even when there is income.
func ROAS(income, expense float64) float64 {
	if expense == 0 {
		return 0
	}
	return (income - expense) / expense * 100
}

// Rate is a percentage of part in whole, 0 when whole is 0.
func Rate(part, whole float64) float64 {
	return SafeDiv(part, whole) * 100
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return roundTo(v, 2)
}

// Round1 rounds half away from zero to 1 decimal place.
func Round1(v float64) float64 {
	return roundTo(v, 1)
}

func roundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
