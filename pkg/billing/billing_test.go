package billing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr(v float64) *float64 { return &v }

func TestNextPaymentDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Leap year end of January", "2024-01-31", "2024-02-29"},
		{"Non leap year end of January", "2025-01-31", "2025-02-28"},
		{"Mid month", "2025-03-15", "2025-04-15"},
		{"Thirty-one into thirty", "2025-03-31", "2025-04-30"},
		{"December rolls the year", "2025-12-31", "2026-01-31"},
		{"Leap day", "2024-02-29", "2024-03-29"},
		{"First of month", "2025-06-01", "2025-07-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextPaymentDate(date(tt.input))
			assert.Equal(t, tt.expected, got.Format("2006-01-02"))
		})
	}
}

func TestNextPaymentDate_DropsTimeOfDay(t *testing.T) {
	in := time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)
	got := NextPaymentDate(in)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), got)
}

func TestClassifyDelinquency(t *testing.T) {
	today := date("2025-03-10")

	assert.Equal(t, StandingDelinquent, ClassifyDelinquency(date("2025-03-09"), today))
	assert.Equal(t, StandingActive, ClassifyDelinquency(date("2025-03-10"), today), "due today is not delinquent")
	assert.Equal(t, StandingActive, ClassifyDelinquency(date("2025-03-11"), today))

	t.Run("Time of day ignored", func(t *testing.T) {
		next := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		lateToday := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
		assert.Equal(t, StandingActive, ClassifyDelinquency(next, lateToday))
	})

	t.Run("Flips once today passes the due date and stays flipped", func(t *testing.T) {
		next := date("2025-02-28")
		assert.Equal(t, StandingActive, ClassifyDelinquency(next, date("2025-02-28")))
		for d := date("2025-03-01"); d.Before(date("2025-06-01")); d = d.AddDate(0, 0, 1) {
			require.Equal(t, StandingDelinquent, ClassifyDelinquency(next, d), d.Format("2006-01-02"))
		}
	})
}

func TestSuggestedAmount(t *testing.T) {
	table := DefaultPriceTable()

	tests := []struct {
		plan     string
		amount   float64
		fallback bool
	}{
		{PlanMonthly, 300, false},
		{PlanQuarterly, 800, false},
		{PlanSemiannual, 1500, false},
		{PlanAnnual, 2800, false},
		{"Weekly", 300, true},
		{"", 300, true},
	}

	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			s := table.SuggestedAmount(tt.plan)
			assert.Equal(t, tt.amount, s.Amount)
			assert.Equal(t, tt.fallback, s.Fallback)
		})
	}
}

func TestNewPriceTable(t *testing.T) {
	_, err := NewPriceTable(map[string]float64{PlanAnnual: 2800})
	assert.Error(t, err, "monthly price is mandatory")

	_, err = NewPriceTable(map[string]float64{PlanMonthly: -1})
	var domainErr *DomainError
	assert.ErrorAs(t, err, &domainErr)

	prices := map[string]float64{PlanMonthly: 350, PlanAnnual: 3000}
	table, err := NewPriceTable(prices)
	require.NoError(t, err)
	prices[PlanMonthly] = 1
	assert.Equal(t, 350.0, table.SuggestedAmount(PlanMonthly).Amount, "table must not alias the input map")
	assert.Equal(t, []string{PlanMonthly, PlanAnnual}, table.Plans())
}

func TestComputeBMI(t *testing.T) {
	t.Run("Reference member", func(t *testing.T) {
		bmi, err := ComputeBMI(ptr(75.5), ptr(175))
		require.NoError(t, err)
		require.NotNil(t, bmi)
		assert.Equal(t, 24.65, *bmi)
	})

	t.Run("Undefined when missing", func(t *testing.T) {
		bmi, err := ComputeBMI(nil, ptr(175))
		assert.NoError(t, err)
		assert.Nil(t, bmi)

		bmi, err = ComputeBMI(ptr(70), nil)
		assert.NoError(t, err)
		assert.Nil(t, bmi)

		bmi, err = ComputeBMI(ptr(70), ptr(0))
		assert.NoError(t, err)
		assert.Nil(t, bmi)
	})

	t.Run("Domain errors", func(t *testing.T) {
		inputs := []struct {
			name   string
			weight *float64
			height *float64
		}{
			{"Negative height", ptr(70), ptr(-170)},
			{"Negative weight", ptr(-70), ptr(170)},
			{"NaN weight", ptr(math.NaN()), ptr(170)},
			{"Infinite height", ptr(70), ptr(math.Inf(1))},
		}
		for _, in := range inputs {
			t.Run(in.name, func(t *testing.T) {
				bmi, err := ComputeBMI(in.weight, in.height)
				assert.Nil(t, bmi)
				var domainErr *DomainError
				assert.ErrorAs(t, err, &domainErr)
			})
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, _ := ComputeBMI(ptr(82.3), ptr(181))
		b, _ := ComputeBMI(ptr(82.3), ptr(181))
		assert.Equal(t, *a, *b)
	})
}

func TestClassifyBMI(t *testing.T) {
	tests := []struct {
		bmi      float64
		expected BMICategory
	}{
		{12, BMIUnderweight},
		{18.49, BMIUnderweight},
		{18.5, BMINormal},
		{24.99, BMINormal},
		{25, BMIOverweight},
		{29.99, BMIOverweight},
		{30, BMIObese},
		{45, BMIObese},
	}

	for _, tt := range tests {
		got, err := ClassifyBMI(tt.bmi)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, "bmi %v", tt.bmi)
	}

	_, err := ClassifyBMI(math.NaN())
	assert.Error(t, err)
}

func TestClassifyBMI_CoversComputedRange(t *testing.T) {
	for w := 30.0; w <= 200; w += 7.5 {
		for h := 120.0; h <= 220; h += 5 {
			bmi, err := ComputeBMI(ptr(w), ptr(h))
			require.NoError(t, err)
			category, err := ClassifyBMI(*bmi)
			require.NoError(t, err)
			assert.Contains(t, []BMICategory{BMIUnderweight, BMINormal, BMIOverweight, BMIObese}, category)
		}
	}
}

func TestMemberStatus(t *testing.T) {
	today := date("2025-03-10")
	past := date("2025-03-09")
	future := date("2025-04-10")

	assert.Equal(t, "Active", MemberStatus("Active", nil, today))
	assert.Equal(t, "Active", MemberStatus("Delinquent", &future, today))
	assert.Equal(t, "Active", MemberStatus("Active", &today, today))
	assert.Equal(t, "Delinquent", MemberStatus("Active", &past, today))
	assert.Equal(t, "Inactive", MemberStatus("Inactive", &past, today))
	assert.Equal(t, "Suspended", MemberStatus("Suspended", &future, today))
}
