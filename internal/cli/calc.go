package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"

	"github.com/aristath/stoxy/internal/calculator"
	"github.com/aristath/stoxy/internal/format"
)

type calcCmd struct {
	currency string

	initial, monthly, rate, expenses, savings, income float64
	years, age, retireAt                              int
}

func (*calcCmd) Name() string     { return "calc" }
func (*calcCmd) Synopsis() string { return "run a planning calculator" }
func (*calcCmd) Usage() string {
	return `stoxy calc [flags] <investment|scenarios|retirement|loan|fire|dividends>

  investment  -initial -monthly -rate (annual, 0.07 = 7%) -years
  scenarios   -initial -monthly -years
  retirement  -age -retire-at -expenses (monthly) -savings
  loan        -initial (principal) -rate (percent) -years
  fire        -income -expenses (annual) -savings -rate (0.07 = 7%)
  dividends   -initial -rate (yield percent) -monthly (growth percent) -years
`
}

func (c *calcCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "EUR", "currency for amounts")
	f.Float64Var(&c.initial, "initial", 10000, "initial amount or loan principal")
	f.Float64Var(&c.monthly, "monthly", 500, "monthly contribution, or dividend growth percent")
	f.Float64Var(&c.rate, "rate", 0.07, "rate; see usage for the unit per calculator")
	f.Float64Var(&c.expenses, "expenses", 2000, "expenses")
	f.Float64Var(&c.savings, "savings", 0, "current savings")
	f.Float64Var(&c.income, "income", 40000, "annual income")
	f.IntVar(&c.years, "years", 10, "horizon in years")
	f.IntVar(&c.age, "age", 30, "current age")
	f.IntVar(&c.retireAt, "retire-at", 65, "retirement age")
}

func (c *calcCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	md, err := c.run(f.Arg(0))
	if err != nil {
		return fail(err)
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

func (c *calcCmd) money(v float64) string { return format.Currency(v, c.currency) }

// run computes the named calculator and renders it
func (c *calcCmd) run(name string) (string, error) {
	switch name {
	case "investment":
		r, err := calculator.CalculateInvestment(c.initial, c.monthly, c.rate, c.years)
		if err != nil {
			return "", err
		}
		return TableMarkdown("Investment", []Row{
			{"Future value", c.money(r.FutureValue)},
			{"Invested", c.money(r.TotalInvested)},
			{"Gains", c.money(r.Gains)},
			{"ROI", format.Percentage(r.ROIPercent)},
		}), nil

	case "scenarios":
		scenarios := calculator.CalculateScenarios(c.initial, c.monthly, c.years)
		rows := make([]Row, 0, len(scenarios))
		for _, s := range scenarios {
			rows = append(rows, Row{fmt.Sprintf("%s (%.0f%%)", s.Name, s.Rate*100), c.money(s.FutureValue)})
		}
		return TableMarkdown("Scenarios", rows), nil

	case "retirement":
		r, err := calculator.CalculateRetirement(c.age, c.retireAt, c.expenses, c.savings)
		if err != nil {
			return "", err
		}
		return TableMarkdown("Retirement", []Row{
			{"Fund needed", c.money(r.NeededFund)},
			{"Monthly expenses at retirement", c.money(r.FutureMonthlyExpenses)},
			{"Monthly savings required", c.money(r.RequiredMonthlySavings)},
			{"Years to retirement", strconv.Itoa(r.YearsToRetirement)},
		}), nil

	case "loan":
		r, err := calculator.CalculateLoan(c.initial, c.rate, c.years)
		if err != nil {
			return "", err
		}
		return TableMarkdown("Loan", []Row{
			{"Monthly payment", c.money(r.MonthlyPayment)},
			{"Total paid", c.money(r.TotalPaid)},
			{"Total interest", c.money(r.TotalInterest)},
		}), nil

	case "fire":
		r, err := calculator.CalculateFIRE(c.income, c.expenses, c.savings, c.rate)
		if err != nil {
			return "", err
		}
		years := "never"
		if r.Reachable {
			years = strconv.FormatFloat(r.YearsToFI, 'f', 1, 64)
		}
		return TableMarkdown("FIRE", []Row{
			{"FI number", c.money(r.FINumber)},
			{"Savings rate", fmt.Sprintf("%.1f%%", r.SavingsRate)},
			{"Years to FI", years},
			{"Progress", fmt.Sprintf("%.1f%%", r.CurrentProgress)},
		}), nil

	case "dividends":
		r, err := calculator.CalculateDividendIncome(c.initial, c.rate, c.monthly, c.years)
		if err != nil {
			return "", err
		}
		rows := make([]Row, 0, len(r.Years)+1)
		for _, y := range r.Years {
			rows = append(rows, Row{fmt.Sprintf("Year %d", y.Year), c.money(y.AnnualDividend)})
		}
		rows = append(rows, Row{"Total", c.money(r.TotalDividend)})
		return TableMarkdown("Dividend income", rows), nil
	}
	return "", fmt.Errorf("unknown calculator %q", name)
}
