package referral

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// PurchaseBonus is the credit a user earns for their own purchase.
const PurchaseBonus = 2

// ErrInconsistentCounts reports a snapshot whose counts cannot be true.
var ErrInconsistentCounts = errors.New("inconsistent referral counts")

// Person is a referred user as listed by the backend.
type Person struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is the backend's aggregated referral state for one user.
type Snapshot struct {
	TotalReferrals int      `json:"totalReferrals"`
	TotalConverted int      `json:"totalConverted"`
	TotalEarned    int      `json:"totalEarned"`
	ReferredUsers  []Person `json:"referredUsers"`
	ConvertedUsers []Person `json:"convertedUsers"`
}

// Stats is the display state derived from a Snapshot. It is recomputed for
// every snapshot and never stored.
type Stats struct {
	ReferredUsers         int    `json:"referredUsers"`
	ConvertedUsers        int    `json:"convertedUsers"`
	ConversionRate        int    `json:"conversionRate"`
	PendingConversions    int    `json:"pendingConversions"`
	TotalCreditsEarned    int    `json:"totalCreditsEarned"`
	PurchaseBonus         int    `json:"purchaseBonus"`
	TotalCreditsDisplayed int    `json:"totalCreditsDisplayed"`
	ReferralLink          string `json:"referralLink"`
}

// NetworkEntry is one row of the referral network list.
type NetworkEntry struct {
	Person
	Converted bool `json:"converted"`
}

// ComputeStats derives dashboard statistics. Counts are taken as given:
// converted > referrals yields a negative PendingConversions.
func ComputeStats(s Snapshot, baseURL, userID string, isPurchased bool) Stats {
	bonus := 0
	if isPurchased {
		bonus = PurchaseBonus
	}
	return Stats{
		ReferredUsers:         s.TotalReferrals,
		ConvertedUsers:        s.TotalConverted,
		ConversionRate:        ConversionRate(s.TotalConverted, s.TotalReferrals),
		PendingConversions:    s.TotalReferrals - s.TotalConverted,
		TotalCreditsEarned:    s.TotalEarned,
		PurchaseBonus:         bonus,
		TotalCreditsDisplayed: s.TotalEarned + bonus,
		ReferralLink:          BuildReferralLink(baseURL, userID),
	}
}

// ConversionRate is the converted share in whole percent, rounded half up.
func ConversionRate(converted, referrals int) int {
	if referrals <= 0 {
		return 0
	}
	return int(math.Floor(float64(converted)*100/float64(referrals) + 0.5))
}

// BuildReferralLink returns the deep link a new user registers through.
// userID is not escaped; backend identifiers are URL-safe.
func BuildReferralLink(baseURL, userID string) string {
	return baseURL + "/register?r=" + userID
}

// Network lists referred users in backend order, flagging those that also
// appear among the converted users.
func Network(s Snapshot) []NetworkEntry {
	converted := make(map[string]struct{}, len(s.ConvertedUsers))
	for _, p := range s.ConvertedUsers {
		converted[p.ID] = struct{}{}
	}
	out := make([]NetworkEntry, 0, len(s.ReferredUsers))
	for _, p := range s.ReferredUsers {
		_, ok := converted[p.ID]
		out = append(out, NetworkEntry{Person: p, Converted: ok})
	}
	return out
}

// Validate checks the snapshot counts. Callers decide whether a failure
// blocks rendering.
func Validate(s Snapshot) error {
	switch {
	case s.TotalReferrals < 0 || s.TotalConverted < 0 || s.TotalEarned < 0:
		return fmt.Errorf("%w: negative count", ErrInconsistentCounts)
	case s.TotalConverted > s.TotalReferrals:
		return fmt.Errorf("%w: %d converted of %d referred", ErrInconsistentCounts, s.TotalConverted, s.TotalReferrals)
	}
	return nil
}
