package algo

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeights(t *testing.T) {
	w := Weights(4)
	want := []string{"20", "16", "12.8", "10.24"}
	require.Len(t, w, 4)
	for i := range want {
		assert.True(t, w[i].Equal(decimal.RequireFromString(want[i])), "w[%d] = %s, want %s", i, w[i], want[i])
		if i > 0 {
			assert.True(t, w[i-1].GreaterThan(w[i]), "weights must decrease with rank")
		}
	}
	assert.Empty(t, Weights(0))
}

func TestAllocate(t *testing.T) {
	prices := Prices{"A": M(100), "B": M(50), "C": M(30)}
	plan := Allocate([]string{"A", "B", "C"}, prices, M(300))

	// 180 is guaranteed, 120 is shared with weights 20, 16, 12.8.
	assert.False(t, plan.Degraded)
	assert.Empty(t, plan.Skipped)
	want := map[string]string{"A": "149.18", "B": "89.34", "C": "61.47"}
	require.Len(t, plan.Allocations, 3)
	for i, s := range []string{"A", "B", "C"} {
		a := plan.Allocations[i]
		assert.Equal(t, s, a.Symbol)
		assert.True(t, a.Amount.Equal(M(decimal.RequireFromString(want[s]))), "%s got %s, want %s", s, a.Amount, want[s])
	}
	assert.True(t, plan.Total().LessThanOrEqual(M(300)))
	assert.True(t, plan.Allocations[0].Weight.GreaterThan(plan.Allocations[1].Weight))

	purchases := UnitsFor(plan, prices)
	units := map[string]Units{}
	for _, p := range purchases {
		units[p.Symbol] = p.Units
	}
	assert.Equal(t, map[string]Units{"A": 1, "B": 1, "C": 2}, units)
}

func TestAllocateSkipsUnaffordable(t *testing.T) {
	prices := Prices{"A": M(100), "B": M(500), "C": M(30)}
	plan := Allocate([]string{"A", "B", "C", "D"}, prices, M(200))

	assert.Equal(t, []string{"B", "D"}, plan.Skipped, "B is too expensive, D has no price")
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "A", plan.Allocations[0].Symbol)
	assert.Equal(t, "C", plan.Allocations[1].Symbol)
	// C is weighted as the second affordable symbol, not the third of the list.
	assert.True(t, plan.Allocations[1].Weight.Equal(decimal.NewFromInt(16)))
	assert.Zero(t, plan.Amount("B").Cmp(Money{}))
}

func TestAllocateNeverExceedsCash(t *testing.T) {
	prices := Prices{}
	var buy []string
	for i := range 20 {
		s := fmt.Sprintf("S%02d", i)
		buy = append(buy, s)
		prices[s] = M(decimal.NewFromFloat(float64(i*37%113) + 12.35))
	}
	for _, cash := range []float64{12.35, 99.99, 1000, 12345.67, 1000003.33} {
		plan := Allocate(buy, prices, M(cash))
		assert.True(t, plan.Total().LessThanOrEqual(M(cash)), "cash %v: total %s", cash, plan.Total())
		assert.NotEmpty(t, plan.Allocations, "cash %v covers the cheapest price", cash)

		var spent Money
		for _, p := range UnitsFor(plan, prices) {
			spent = spent.Add(p.Cost())
		}
		assert.True(t, spent.LessThanOrEqual(M(cash)), "cash %v: spent %s", cash, spent)
	}
}

func TestAllocateEdgeCases(t *testing.T) {
	plan := Allocate(nil, Prices{"A": M(10)}, M(100))
	assert.Empty(t, plan.Allocations)

	plan = Allocate([]string{"A"}, Prices{"A": M(10)}, Money{})
	assert.Empty(t, plan.Allocations, "no cash, no allocation")

	plan = Allocate([]string{"A", "A", "B"}, Prices{"A": M(10), "B": M(10)}, M(20))
	assert.Len(t, plan.Allocations, 2, "duplicates are ignored")
}

func TestAllocateDegraded(t *testing.T) {
	plan := Allocate([]string{"A", "B", "C"}, Prices{}, M(100))
	assert.True(t, plan.Degraded)
	require.Len(t, plan.Allocations, 3)
	for _, a := range plan.Allocations {
		assert.True(t, a.Amount.Equal(M(decimal.RequireFromString("33.33"))), "got %s", a.Amount)
	}
	assert.True(t, plan.Total().LessThanOrEqual(M(100)))
}

func TestRedistribute(t *testing.T) {
	l := NewLedger(M(5000))
	require.NoError(t, l.ApplyBuy("X", 1))
	require.NoError(t, l.ApplyBuy("Y", 1))
	require.NoError(t, l.ApplyBuy("Z", 1)) // no price

	purchases := Redistribute(l, Prices{"X": M(1200), "Y": M(900)}, M(1000))

	// Y, X, Y, X then 800 is below the threshold.
	assert.Equal(t, []Purchase{
		{Symbol: "Y", Units: 2, Price: M(900)},
		{Symbol: "X", Units: 2, Price: M(1200)},
	}, purchases)
	assert.True(t, l.Cash().Equal(M(800)), "cash is %s", l.Cash())
	x, _ := l.Units("X")
	y, _ := l.Units("Y")
	z, _ := l.Units("Z")
	assert.Equal(t, []Units{3, 3, 1}, []Units{x, y, z})
}

func TestRedistributeStopsWhenNothingFits(t *testing.T) {
	l := NewLedger(M(2500))
	require.NoError(t, l.ApplyBuy("X", 1))
	require.NoError(t, l.ApplyBuy("Y", 1))

	Redistribute(l, Prices{"X": M(1200), "Y": M(900)}, M(100))

	// Y (1600 left), X (400 left): 400 is above threshold but below every price.
	assert.True(t, l.Cash().Equal(M(400)), "cash is %s", l.Cash())
	for _, s := range l.Stocks() {
		assert.Equal(t, Units(2), s.Units, s.Symbol)
	}
}

func TestRedistributeBelowThreshold(t *testing.T) {
	l := NewLedger(M(900))
	require.NoError(t, l.ApplyBuy("X", 1))
	assert.Empty(t, Redistribute(l, Prices{"X": M(10)}, M(1000)))
	assert.True(t, l.Cash().Equal(M(900)))
}
