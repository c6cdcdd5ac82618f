package donation

import (
	"testing"
	"time"

	"github.com/platewise/platewise/internal/model"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestExpiringSoon(t *testing.T) {
	now := date(t, "2025-11-01")

	cases := []struct {
		expiry string
		want   bool
	}{
		{"2025-11-03", true},  // two days out
		{"2025-11-04", false}, // three days out
		{"2025-11-01", true},  // today
		{"2025-10-30", true},  // already past
		{"2025-12-25", false},
		{"not-a-date", false},
	}
	for _, tc := range cases {
		if got := ExpiringSoon(tc.expiry, now); got != tc.want {
			t.Errorf("ExpiringSoon(%q) = %v, want %v", tc.expiry, got, tc.want)
		}
	}
}

func TestExpiringSoonMidday(t *testing.T) {
	// A clock time after midnight must not push a two-day expiry out of
	// the window: the day difference rounds up.
	now := date(t, "2025-11-01").Add(15 * time.Hour)
	if !ExpiringSoon("2025-11-03", now) {
		t.Error("expected two-days-out expiry to count at midday")
	}
}

func TestCountExpiringSoon(t *testing.T) {
	now := date(t, "2025-11-01")
	donations := []model.Donation{
		{Status: model.DonationAvailable, ExpiryDate: "2025-11-02"},
		{Status: model.DonationAvailable, ExpiryDate: "2025-11-20"},
		{Status: model.DonationClaimed, ExpiryDate: "2025-11-02"}, // claimed: ignored
	}
	if got := CountExpiringSoon(donations, now); got != 1 {
		t.Errorf("CountExpiringSoon = %d, want 1", got)
	}
}
