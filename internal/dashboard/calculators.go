package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/stoxy/internal/calculator"
	"github.com/aristath/stoxy/internal/modules"
)

func (s *Server) registerCalculatorRoutes(r chi.Router) {
	r.Route("/calculators", func(r chi.Router) {
		r.Post("/investment", s.handleInvestment)
		r.Post("/scenarios", s.handleScenarios)
		r.Post("/retirement", s.handleRetirement)
		r.Post("/loan", s.handleLoan)
		r.Post("/fire", s.handleFIRE)
		r.Post("/dividends", s.handleDividends)
	})
}

// calculate decodes the form into in, runs fn and writes its result.
// Calculator input errors are the caller's fault.
func calculate[In, Out any](s *Server, w http.ResponseWriter, r *http.Request, fn func(In) (Out, error)) {
	var in In
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	out, err := fn(in)
	if err != nil {
		modules.WriteError(w, s.log, http.StatusBadRequest, err.Error())
		return
	}
	modules.WriteJSON(w, s.log, http.StatusOK, out)
}

type investmentForm struct {
	Initial    float64 `json:"initial"`
	Monthly    float64 `json:"monthly"`
	AnnualRate float64 `json:"annual_rate"`
	Years      int     `json:"years"`
}

func (s *Server) handleInvestment(w http.ResponseWriter, r *http.Request) {
	calculate(s, w, r, func(f investmentForm) (calculator.Investment, error) {
		return calculator.CalculateInvestment(f.Initial, f.Monthly, f.AnnualRate, f.Years)
	})
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	calculate(s, w, r, func(f investmentForm) ([]calculator.Scenario, error) {
		return calculator.CalculateScenarios(f.Initial, f.Monthly, f.Years), nil
	})
}

type retirementForm struct {
	CurrentAge      int     `json:"current_age"`
	RetirementAge   int     `json:"retirement_age"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	CurrentSavings  float64 `json:"current_savings"`
}

func (s *Server) handleRetirement(w http.ResponseWriter, r *http.Request) {
	calculate(s, w, r, func(f retirementForm) (calculator.Retirement, error) {
		return calculator.CalculateRetirement(f.CurrentAge, f.RetirementAge, f.MonthlyExpenses, f.CurrentSavings)
	})
}

type loanForm struct {
	Principal float64 `json:"principal"`
	Rate      float64 `json:"rate"` // percent
	Years     int     `json:"years"`
}

func (s *Server) handleLoan(w http.ResponseWriter, r *http.Request) {
	calculate(s, w, r, func(f loanForm) (calculator.Loan, error) {
		return calculator.CalculateLoan(f.Principal, f.Rate, f.Years)
	})
}

type fireForm struct {
	AnnualIncome   float64 `json:"annual_income"`
	AnnualExpenses float64 `json:"annual_expenses"`
	CurrentSavings float64 `json:"current_savings"`
	ExpectedReturn float64 `json:"expected_return"`
}

func (s *Server) handleFIRE(w http.ResponseWriter, r *http.Request) {
	calculate(s, w, r, func(f fireForm) (calculator.FIRE, error) {
		return calculator.CalculateFIRE(f.AnnualIncome, f.AnnualExpenses, f.CurrentSavings, f.ExpectedReturn)
	})
}

type dividendForm struct {
	Investment float64 `json:"investment"`
	Yield      float64 `json:"yield"`  // percent
	Growth     float64 `json:"growth"` // percent
	Years      int     `json:"years"`
}

func (s *Server) handleDividends(w http.ResponseWriter, r *http.Request) {
	calculate(s, w, r, func(f dividendForm) (calculator.DividendIncome, error) {
		return calculator.CalculateDividendIncome(f.Investment, f.Yield, f.Growth, f.Years)
	})
}
