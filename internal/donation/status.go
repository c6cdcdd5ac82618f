package donation

import (
	"math"
	"time"

	"github.com/platewise/platewise/internal/model"
)

// expiringSoonDays is the window the dashboards highlight as urgent.
const expiringSoonDays = 2

// ExpiringSoon reports whether an expiry date (YYYY-MM-DD) falls within
// two days of now. The day difference is rounded up, so a donation
// expiring the day after tomorrow still counts. Display logic only; it
// never changes a donation's status.
func ExpiringSoon(expiryDate string, now time.Time) bool {
	expiry, err := time.ParseInLocation("2006-01-02", expiryDate, now.Location())
	if err != nil {
		return false
	}
	days := int(math.Ceil(expiry.Sub(now).Hours() / 24))
	return days <= expiringSoonDays
}

// CountExpiringSoon returns how many of the given donations are available
// and expiring within the highlight window.
func CountExpiringSoon(donations []model.Donation, now time.Time) int {
	n := 0
	for _, d := range donations {
		if d.Status == model.DonationAvailable && ExpiringSoon(d.ExpiryDate, now) {
			n++
		}
	}
	return n
}
