package allocation

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalizePercentDerivesHours(t *testing.T) {
	n := NewNormalizer(0)

	a := n.Normalize("50%")
	if a.Percentage == nil || !almostEqual(*a.Percentage, 50) {
		t.Fatalf("expected percentage 50, got %v", a.Percentage)
	}
	if a.Hours == nil || !almostEqual(*a.Hours, 900) {
		t.Fatalf("expected hours 900, got %v", a.Hours)
	}
}

func TestNormalizeHoursDerivesPercentage(t *testing.T) {
	n := NewNormalizer(0)

	for _, text := range []string{"900 hours", "900 hrs", "900h", "900 hr"} {
		a := n.Normalize(text)
		if a.Hours == nil || !almostEqual(*a.Hours, 900) {
			t.Fatalf("%q: expected hours 900, got %v", text, a.Hours)
		}
		if a.Percentage == nil || !almostEqual(*a.Percentage, 50) {
			t.Fatalf("%q: expected percentage 50, got %v", text, a.Percentage)
		}
	}
}

func TestNormalizeFTE(t *testing.T) {
	n := NewNormalizer(0)

	a := n.Normalize("0.5 FTE")
	if a.Percentage == nil || !almostEqual(*a.Percentage, 50) {
		t.Fatalf("expected percentage 50, got %v", a.Percentage)
	}
	if a.Hours == nil || !almostEqual(*a.Hours, 900) {
		t.Fatalf("expected hours 900, got %v", a.Hours)
	}
}

func TestNormalizeMonths(t *testing.T) {
	n := NewNormalizer(0)

	a := n.Normalize("2 x 6 months")
	if a.Months == nil || !almostEqual(*a.Months, 12) {
		t.Fatalf("expected months 12, got %v", a.Months)
	}

	a = n.Normalize("9 months")
	if a.Months == nil || !almostEqual(*a.Months, 9) {
		t.Fatalf("expected months 9, got %v", a.Months)
	}
}

func TestNormalizeAlternateBasis(t *testing.T) {
	n := NewNormalizer(2000)

	a := n.Normalize("25%")
	if a.Hours == nil || !almostEqual(*a.Hours, 500) {
		t.Fatalf("expected hours 500 on a 2000h basis, got %v", a.Hours)
	}

	a = n.Normalize("1000 hours")
	if a.Percentage == nil || !almostEqual(*a.Percentage, 50) {
		t.Fatalf("expected percentage 50 on a 2000h basis, got %v", a.Percentage)
	}
}

func TestReconcileClampsPercentage(t *testing.T) {
	n := NewNormalizer(0)

	over := 130.0
	a := n.Reconcile(Allocation{Percentage: &over})
	if a.Percentage == nil || !almostEqual(*a.Percentage, 100) {
		t.Fatalf("expected percentage clamped to 100, got %v", a.Percentage)
	}
	if a.Hours == nil || !almostEqual(*a.Hours, 1800) {
		t.Fatalf("expected hours 1800 after clamp, got %v", a.Hours)
	}

	under := -5.0
	a = n.Reconcile(Allocation{Percentage: &under})
	if a.Percentage == nil || !almostEqual(*a.Percentage, 0) {
		t.Fatalf("expected percentage clamped to 0, got %v", a.Percentage)
	}
}

func TestReconcileKeepsBothWhenPresent(t *testing.T) {
	n := NewNormalizer(0)

	pct, hrs := 50.0, 1200.0
	a := n.Reconcile(Allocation{Percentage: &pct, Hours: &hrs})
	if !almostEqual(*a.Percentage, 50) || !almostEqual(*a.Hours, 1200) {
		t.Fatalf("expected 50%%/1200h preserved, got %v/%v", *a.Percentage, *a.Hours)
	}
}

func TestNormalizeEmptyText(t *testing.T) {
	n := NewNormalizer(0)

	a := n.Normalize("")
	if a.Hours != nil || a.Percentage != nil || a.Months != nil {
		t.Fatalf("expected empty allocation, got %+v", a)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	// pct -> hours -> pct must be stable on the same basis
	n := NewNormalizer(0)

	for _, pct := range []float64{10, 25, 50, 67, 100} {
		a := n.Reconcile(Allocation{Percentage: &pct})
		back := n.Reconcile(Allocation{Hours: a.Hours})
		if back.Percentage == nil || !almostEqual(*back.Percentage, pct) {
			t.Fatalf("round trip of %.0f%% produced %v", pct, back.Percentage)
		}
	}
}
