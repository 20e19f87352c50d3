package billing

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Membership plans known to the price table
const (
	PlanMonthly    = "Monthly"
	PlanQuarterly  = "Quarterly"
	PlanSemiannual = "Semiannual"
	PlanAnnual     = "Annual"
)

// Standing is the point-in-time billing classification of a member
type Standing string

const (
	StandingActive     Standing = "Active"
	StandingDelinquent Standing = "Delinquent"
)

// BMICategory is the WHO weight class for a BMI value
type BMICategory string

const (
	BMIUnderweight BMICategory = "Underweight"
	BMINormal      BMICategory = "Normal"
	BMIOverweight  BMICategory = "Overweight"
	BMIObese       BMICategory = "Obese"
)

// DomainError is returned when a computation receives an input outside its valid domain
type DomainError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// DateOnly strips the time-of-day, keeping the calendar date as seen in t's location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextPaymentDate adds one calendar month to paymentDate.
// When the day does not exist in the target month it is clamped to the month's last day,
// so Jan 31 becomes Feb 28 (or Feb 29 in leap years).
func NextPaymentDate(paymentDate time.Time) time.Time {
	y, m, d := paymentDate.Date()
	target := time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClassifyDelinquency reports Delinquent iff nextPaymentDate is strictly before today.
// Both dates are compared without their time-of-day component.
func ClassifyDelinquency(nextPaymentDate, today time.Time) Standing {
	if DateOnly(nextPaymentDate).Before(DateOnly(today)) {
		return StandingDelinquent
	}
	return StandingActive
}

// Suggestion is the result of a plan price lookup
type Suggestion struct {
	Plan     string  `json:"plan"`
	Amount   float64 `json:"amount"`
	Fallback bool    `json:"fallback"`
}

// PriceTable maps plans to their default payment amount.
// It is built once at startup and never mutated afterwards.
type PriceTable struct {
	prices map[string]float64
}

// DefaultPrices returns the standard plan prices
func DefaultPrices() map[string]float64 {
	return map[string]float64{
		PlanMonthly:    300,
		PlanQuarterly:  800,
		PlanSemiannual: 1500,
		PlanAnnual:     2800,
	}
}

// NewPriceTable copies prices into a read-only table. The Monthly price is mandatory
// because it is the fallback for unknown plans.
func NewPriceTable(prices map[string]float64) (PriceTable, error) {
	copied := make(map[string]float64, len(prices))
	for plan, amount := range prices {
		if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return PriceTable{}, &DomainError{Field: "price." + plan, Value: amount, Reason: "must be a positive finite amount"}
		}
		copied[plan] = amount
	}
	if _, ok := copied[PlanMonthly]; !ok {
		return PriceTable{}, fmt.Errorf("price table must define the %s plan", PlanMonthly)
	}
	return PriceTable{prices: copied}, nil
}

// DefaultPriceTable returns a table with DefaultPrices
func DefaultPriceTable() PriceTable {
	table, _ := NewPriceTable(DefaultPrices())
	return table
}

// SuggestedAmount looks up the price for plan. Unknown plans get the Monthly price
// and the result is flagged with Fallback.
func (t PriceTable) SuggestedAmount(plan string) Suggestion {
	if amount, ok := t.prices[plan]; ok {
		return Suggestion{Plan: plan, Amount: amount}
	}
	return Suggestion{Plan: PlanMonthly, Amount: t.prices[PlanMonthly], Fallback: true}
}

// Plans lists the plans in the table, sorted by price
func (t PriceTable) Plans() []string {
	plans := make([]string, 0, len(t.prices))
	for plan := range t.prices {
		plans = append(plans, plan)
	}
	sort.Slice(plans, func(i, j int) bool {
		if t.prices[plans[i]] == t.prices[plans[j]] {
			return strings.Compare(plans[i], plans[j]) < 0
		}
		return t.prices[plans[i]] < t.prices[plans[j]]
	})
	return plans
}

// ComputeBMI returns weight / (height in meters)^2 rounded to 2 decimals.
// A nil result with a nil error means the BMI is undefined (missing or zero input).
func ComputeBMI(weightKg, heightCm *float64) (*float64, error) {
	if weightKg != nil {
		if err := checkFinite("weight", *weightKg); err != nil {
			return nil, err
		}
	}
	if heightCm != nil {
		if err := checkFinite("height", *heightCm); err != nil {
			return nil, err
		}
	}
	if weightKg == nil || heightCm == nil || *weightKg == 0 || *heightCm == 0 {
		return nil, nil
	}

	meters := *heightCm / 100
	bmi := math.Round(*weightKg/(meters*meters)*100) / 100
	return &bmi, nil
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &DomainError{Field: field, Value: v, Reason: "must be a finite number"}
	}
	if v < 0 {
		return &DomainError{Field: field, Value: v, Reason: "must not be negative"}
	}
	return nil
}

// ClassifyBMI buckets a BMI value. Boundaries belong to the upper class:
// 18.5 is Normal, 25 is Overweight, 30 is Obese.
func ClassifyBMI(bmi float64) (BMICategory, error) {
	if err := checkFinite("bmi", bmi); err != nil {
		return "", err
	}
	switch {
	case bmi < 18.5:
		return BMIUnderweight, nil
	case bmi < 25:
		return BMINormal, nil
	case bmi < 30:
		return BMIOverweight, nil
	default:
		return BMIObese, nil
	}
}

// Administrative member states that are stored as-is and never overridden by billing
const (
	StatusInactive  = "Inactive"
	StatusSuspended = "Suspended"
)

// MemberStatus derives the effective status of a member at today.
// Inactive and Suspended are kept; anything else follows the payment schedule.
// A member without a next payment date is considered Active.
func MemberStatus(stored string, nextPaymentDate *time.Time, today time.Time) string {
	if stored == StatusInactive || stored == StatusSuspended {
		return stored
	}
	if nextPaymentDate == nil {
		return string(StandingActive)
	}
	return string(ClassifyDelinquency(*nextPaymentDate, today))
}
