package models

import (
	"testing"
	"time"
)

func TestDenominationCount_Total(t *testing.T) {
	count := &DenominationCount{
		Bills: map[string]int{"1000": 2, "500": 1, "200": 3},
		Coins: map[string]int{"40": 0, "20": 5, "0.5": 2},
	}

	total, err := count.Total()
	if err != nil {
		t.Fatalf("Total() failed: %v", err)
	}

	want := 2*1000.0 + 500 + 3*200 + 5*20 + 2*0.5
	if total != want {
		t.Errorf("Total() = %v, want %v", total, want)
	}
}

func TestDenominationCount_Total_InvalidFace(t *testing.T) {
	count := &DenominationCount{Bills: map[string]int{"a thousand": 1}}

	if _, err := count.Total(); err == nil {
		t.Error("Total() should fail for a non-numeric face value")
	}
}

func TestReconciliationRecord_SetVariance_Negative(t *testing.T) {
	rec := NewReconciliationRecord("2024-01-01", "owner@butchery.local")
	rec.ExpectedCash = 1100
	rec.ActualCash = 900
	rec.SetVariance()

	if rec.Variance != -200 {
		t.Errorf("Variance = %v, want -200", rec.Variance)
	}
	if rec.VariancePercent == nil {
		t.Fatal("VariancePercent should be set when expected cash is nonzero")
	}
	if *rec.VariancePercent != -18.18 {
		t.Errorf("VariancePercent = %v, want -18.18", *rec.VariancePercent)
	}
}

func TestReconciliationRecord_SetVariance_ZeroExpected(t *testing.T) {
	rec := NewReconciliationRecord("2024-01-01", "owner@butchery.local")
	rec.ExpectedCash = 0
	rec.ActualCash = 50
	rec.SetVariance()

	if rec.Variance != 50 {
		t.Errorf("Variance = %v, want 50", rec.Variance)
	}
	if rec.VariancePercent != nil {
		t.Error("VariancePercent should be nil when expected cash is zero and variance is nonzero")
	}
	if !rec.VarianceUndef {
		t.Error("VarianceUndef should be flagged")
	}
}

func TestReconciliationRecord_SetVariance_AllZero(t *testing.T) {
	rec := NewReconciliationRecord("2024-01-01", "owner@butchery.local")
	rec.SetVariance()

	if rec.VariancePercent == nil || *rec.VariancePercent != 0 {
		t.Error("VariancePercent should be zero when both figures are zero")
	}
	if rec.VarianceUndef {
		t.Error("VarianceUndef should not be flagged when variance is zero")
	}
}

func TestReconciliationRecord_Validate(t *testing.T) {
	rec := NewReconciliationRecord("2024-01-01", "owner@butchery.local")
	rec.ActualCash = 1000

	if err := rec.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}

	rec.ActualCash = 0
	if err := rec.Validate(); err == nil {
		t.Error("Validate() should reject a zero actual cash figure")
	}

	rec.ActualCash = 1000
	rec.DateKey = "01/01/2024"
	if err := rec.Validate(); err == nil {
		t.Error("Validate() should reject a malformed date key")
	}
}

func TestDateKey(t *testing.T) {
	ts := time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC)
	if got := DateKey(ts); got != "2024-01-01" {
		t.Errorf("DateKey() = %s, want 2024-01-01", got)
	}

	if _, err := ParseDateKey("2024-01-01"); err != nil {
		t.Errorf("ParseDateKey() failed: %v", err)
	}
}

func TestNewOfflineID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewOfflineID()
		if seen[id] {
			t.Fatalf("NewOfflineID() produced duplicate token %s", id)
		}
		seen[id] = true
	}
}
