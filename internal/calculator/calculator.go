// Package calculator implements the dashboard's planning calculators.
//
// Rates are annual fractions (0.07 = 7%) unless a function says otherwise.
// Compounding is monthly.
package calculator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrInvalidInput is returned for negative amounts or empty horizons
var ErrInvalidInput = errors.New("invalid calculator input")

// Retirement and FIRE assumptions
const (
	SafeWithdrawalMultiple = 25 // 4% rule
	RetirementInflation    = 0.03
	RetirementReturn       = 0.07
	LifeExpectancy         = 90
	MaxFIREMonths          = 1200
	maxProjectionPoints    = 50
)

// growth is (1+r)^n
func growth(monthlyRate float64, months int) float64 {
	return math.Pow(1+monthlyRate, float64(months))
}

// annuityFactor is the future value of 1 paid monthly for months periods
func annuityFactor(monthlyRate float64, months int) float64 {
	if monthlyRate == 0 {
		return float64(months)
	}
	return (growth(monthlyRate, months) - 1) / monthlyRate
}

func futureValue(initial, monthly, monthlyRate float64, months int) float64 {
	v := initial * growth(monthlyRate, months)
	if monthly > 0 {
		v += monthly * annuityFactor(monthlyRate, months)
	}
	return v
}

// ProjectionPoint is one sample of the investment curve
type ProjectionPoint struct {
	Month    int     `json:"month"`
	Value    float64 `json:"value"`
	Invested float64 `json:"invested"`
}

// Investment is the compound-interest result
type Investment struct {
	FutureValue   float64           `json:"future_value"`
	TotalInvested float64           `json:"total_invested"`
	Gains         float64           `json:"gains"`
	ROIPercent    float64           `json:"roi_percent"`
	PeakValue     float64           `json:"peak_value"`
	Projection    []ProjectionPoint `json:"projection"`
}

// CalculateInvestment compounds initial plus monthly contributions for years
func CalculateInvestment(initial, monthly, annualRate float64, years int) (Investment, error) {
	if initial < 0 || monthly < 0 || years < 0 {
		return Investment{}, fmt.Errorf("%w: amounts and years must not be negative", ErrInvalidInput)
	}

	months := years * 12
	rate := annualRate / 12

	inv := Investment{
		FutureValue:   futureValue(initial, monthly, rate, months),
		TotalInvested: initial + monthly*float64(months),
	}
	inv.Gains = inv.FutureValue - inv.TotalInvested
	if inv.TotalInvested > 0 {
		inv.ROIPercent = inv.Gains / inv.TotalInvested * 100
	}

	inv.Projection = project(initial, monthly, rate, months)
	values := make([]float64, len(inv.Projection))
	for i, p := range inv.Projection {
		values[i] = p.Value
	}
	if len(values) > 0 {
		inv.PeakValue = floats.Max(values)
	}
	return inv, nil
}

// project samples the curve at most every ceil(months/50) months
func project(initial, monthly, rate float64, months int) []ProjectionPoint {
	step := int(math.Ceil(float64(months) / maxProjectionPoints))
	if step < 1 {
		step = 1
	}
	var out []ProjectionPoint
	for m := 0; m <= months; m += step {
		out = append(out, ProjectionPoint{
			Month:    m,
			Value:    futureValue(initial, monthly, rate, m),
			Invested: initial + monthly*float64(m),
		})
	}
	return out
}

// Scenario is a named annual return
type Scenario struct {
	Name        string  `json:"name"`
	Rate        float64 `json:"rate"`
	FutureValue float64 `json:"future_value"`
}

// DefaultScenarios are the conservative, moderate and aggressive returns
var DefaultScenarios = []Scenario{
	{Name: "Conservative", Rate: 0.05},
	{Name: "Moderate", Rate: 0.08},
	{Name: "Aggressive", Rate: 0.12},
}

// CalculateScenarios projects the same plan under each default scenario
func CalculateScenarios(initial, monthly float64, years int) []Scenario {
	out := make([]Scenario, len(DefaultScenarios))
	for i, s := range DefaultScenarios {
		s.FutureValue = futureValue(initial, monthly, s.Rate/12, years*12)
		out[i] = s
	}
	return out
}

// Retirement is the savings plan needed to retire at a target age
type Retirement struct {
	NeededFund             float64 `json:"needed_fund"`
	FutureMonthlyExpenses  float64 `json:"future_monthly_expenses"`
	RequiredMonthlySavings float64 `json:"required_monthly_savings"`
	YearsToRetirement      int     `json:"years_to_retirement"`
	YearsInRetirement      int     `json:"years_in_retirement"`
	FutureValueOfSavings   float64 `json:"future_value_of_savings"`
	AlreadyFundedBySavings bool    `json:"already_funded_by_savings"`
}

// CalculateRetirement inflates expenses to retirement and applies the 4% rule
func CalculateRetirement(currentAge, retirementAge int, monthlyExpenses, currentSavings float64) (Retirement, error) {
	if retirementAge <= currentAge || monthlyExpenses < 0 || currentSavings < 0 {
		return Retirement{}, fmt.Errorf("%w: retirement age must be after current age", ErrInvalidInput)
	}

	years := retirementAge - currentAge
	r := Retirement{
		YearsToRetirement:     years,
		YearsInRetirement:     LifeExpectancy - retirementAge,
		FutureMonthlyExpenses: monthlyExpenses * math.Pow(1+RetirementInflation, float64(years)),
	}
	r.NeededFund = r.FutureMonthlyExpenses * 12 * SafeWithdrawalMultiple

	months := years * 12
	rate := RetirementReturn / 12
	r.FutureValueOfSavings = currentSavings * growth(rate, months)

	remaining := r.NeededFund - r.FutureValueOfSavings
	if remaining <= 0 {
		r.AlreadyFundedBySavings = true
		return r, nil
	}
	r.RequiredMonthlySavings = remaining / annuityFactor(rate, months)
	return r, nil
}

// Loan is a fixed-rate amortized loan
type Loan struct {
	Principal      float64 `json:"principal"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalPaid      float64 `json:"total_paid"`
	TotalInterest  float64 `json:"total_interest"`
}

// CalculateLoan amortizes principal at annualRatePercent (5 = 5%) over years
func CalculateLoan(principal, annualRatePercent float64, years int) (Loan, error) {
	if principal < 0 || annualRatePercent < 0 || years <= 0 {
		return Loan{}, fmt.Errorf("%w: loan needs a positive term", ErrInvalidInput)
	}

	months := years * 12
	rate := annualRatePercent / 12 / 100

	payment := principal / float64(months)
	if rate > 0 {
		g := growth(rate, months)
		payment = principal * rate * g / (g - 1)
	}

	total := payment * float64(months)
	return Loan{
		Principal:      principal,
		MonthlyPayment: payment,
		TotalPaid:      total,
		TotalInterest:  total - principal,
	}, nil
}

// FIRE is the financial-independence estimate
type FIRE struct {
	FINumber        float64 `json:"fi_number"`
	SavingsRate     float64 `json:"savings_rate"`
	YearsToFI       float64 `json:"years_to_fi"`
	CurrentProgress float64 `json:"current_progress"`
	Reachable       bool    `json:"reachable"`
}

// CalculateFIRE counts months of saving until the balance reaches 25x expenses,
// capped at 100 years
func CalculateFIRE(annualIncome, annualExpenses, currentSavings, expectedReturn float64) (FIRE, error) {
	if annualIncome <= 0 || annualExpenses <= 0 || currentSavings < 0 {
		return FIRE{}, fmt.Errorf("%w: income and expenses must be positive", ErrInvalidInput)
	}

	savings := annualIncome - annualExpenses
	f := FIRE{
		FINumber:    annualExpenses * SafeWithdrawalMultiple,
		SavingsRate: savings / annualIncome * 100,
	}
	f.CurrentProgress = currentSavings / f.FINumber * 100

	rate := expectedReturn / 12
	monthly := savings / 12
	balance := currentSavings
	months := 0
	for balance < f.FINumber && months < MaxFIREMonths {
		balance = balance*(1+rate) + monthly
		months++
	}

	f.YearsToFI = float64(months) / 12
	f.Reachable = balance >= f.FINumber
	return f, nil
}

// DividendYear is one year of the dividend schedule
type DividendYear struct {
	Year            int     `json:"year"`
	PortfolioValue  float64 `json:"portfolio_value"`
	AnnualDividend  float64 `json:"annual_dividend"`
	MonthlyDividend float64 `json:"monthly_dividend"`
}

// DividendIncome is the schedule plus its total
type DividendIncome struct {
	Years         []DividendYear `json:"years"`
	TotalDividend float64        `json:"total_dividend"`
}

// CalculateDividendIncome pays yieldPercent each year, then grows the
// portfolio by growthPercent
func CalculateDividendIncome(investment, yieldPercent, growthPercent float64, years int) (DividendIncome, error) {
	if investment < 0 || years < 0 {
		return DividendIncome{}, fmt.Errorf("%w: investment and years must not be negative", ErrInvalidInput)
	}

	out := DividendIncome{Years: make([]DividendYear, 0, years)}
	paid := make([]float64, 0, years)
	value := investment
	for y := 1; y <= years; y++ {
		dividend := value * yieldPercent / 100
		value *= 1 + growthPercent/100
		out.Years = append(out.Years, DividendYear{
			Year:            y,
			PortfolioValue:  value,
			AnnualDividend:  dividend,
			MonthlyDividend: dividend / 12,
		})
		paid = append(paid, dividend)
	}
	out.TotalDividend = floats.Sum(paid)
	return out, nil
}
