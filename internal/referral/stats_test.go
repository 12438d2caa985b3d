package referral

import (
	"errors"
	"math"
	"testing"
)

func TestComputeStatsScenarios(t *testing.T) {
	cases := []struct {
		name      string
		snap      Snapshot
		purchased bool
		want      Stats
	}{
		{
			name: "partial conversion",
			snap: Snapshot{TotalReferrals: 10, TotalConverted: 4, TotalEarned: 8},
			want: Stats{ReferredUsers: 10, ConvertedUsers: 4, ConversionRate: 40, PendingConversions: 6, TotalCreditsEarned: 8, TotalCreditsDisplayed: 8},
		},
		{
			name: "no referrals",
			snap: Snapshot{},
			want: Stats{},
		},
		{
			name:      "purchase bonus",
			snap:      Snapshot{TotalReferrals: 3, TotalConverted: 1, TotalEarned: 2},
			purchased: true,
			want:      Stats{ReferredUsers: 3, ConvertedUsers: 1, ConversionRate: 33, PendingConversions: 2, TotalCreditsEarned: 2, PurchaseBonus: 2, TotalCreditsDisplayed: 4},
		},
		{
			name: "rounds half up",
			snap: Snapshot{TotalReferrals: 8, TotalConverted: 1},
			want: Stats{ReferredUsers: 8, ConvertedUsers: 1, ConversionRate: 13, PendingConversions: 7},
		},
		{
			name: "inconsistent counts are not clamped",
			snap: Snapshot{TotalReferrals: 2, TotalConverted: 3, TotalEarned: 6},
			want: Stats{ReferredUsers: 2, ConvertedUsers: 3, ConversionRate: 150, PendingConversions: -1, TotalCreditsEarned: 6, TotalCreditsDisplayed: 6},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeStats(tc.snap, "https://example.com", "abc123", tc.purchased)
			tc.want.ReferralLink = "https://example.com/register?r=abc123"
			if got != tc.want {
				t.Fatalf("got %+v\nwant %+v", got, tc.want)
			}
		})
	}
}

func TestConversionRateBounds(t *testing.T) {
	for referrals := 0; referrals <= 60; referrals++ {
		for converted := 0; converted <= referrals; converted++ {
			rate := ConversionRate(converted, referrals)
			if rate < 0 || rate > 100 {
				t.Fatalf("rate(%d/%d) = %d out of range", converted, referrals, rate)
			}
			if referrals == 0 {
				if rate != 0 {
					t.Fatalf("rate with zero referrals = %d", rate)
				}
				continue
			}
			want := int(math.Floor(100*float64(converted)/float64(referrals) + 0.5))
			if rate != want {
				t.Fatalf("rate(%d/%d) = %d, want %d", converted, referrals, rate, want)
			}
		}
	}
}

func TestCreditsAndPending(t *testing.T) {
	for earned := 0; earned < 20; earned += 3 {
		s := Snapshot{TotalReferrals: 5, TotalConverted: 2, TotalEarned: earned}
		if got := ComputeStats(s, "", "u", true).TotalCreditsDisplayed; got != earned+2 {
			t.Fatalf("purchased credits = %d, want %d", got, earned+2)
		}
		if got := ComputeStats(s, "", "u", false).TotalCreditsDisplayed; got != earned {
			t.Fatalf("credits = %d, want %d", got, earned)
		}
		if got := ComputeStats(s, "", "u", false).PendingConversions; got != 3 {
			t.Fatalf("pending = %d", got)
		}
	}
}

func TestBuildReferralLink(t *testing.T) {
	first := BuildReferralLink("https://example.com", "abc123")
	second := BuildReferralLink("https://example.com", "abc123")
	if first != "https://example.com/register?r=abc123" {
		t.Fatalf("link = %q", first)
	}
	if first != second {
		t.Fatal("link is not deterministic")
	}
}

func TestNetwork(t *testing.T) {
	s := Snapshot{
		ReferredUsers: []Person{
			{ID: "a", Name: "Ann"},
			{ID: "b", Name: "Ben"},
			{ID: "c", Name: "Cat"},
		},
		ConvertedUsers: []Person{{ID: "c"}, {ID: "a"}},
	}
	got := Network(s)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	wantConverted := []bool{true, false, true}
	for i, entry := range got {
		if entry.ID != s.ReferredUsers[i].ID {
			t.Errorf("entry %d id = %q, order not kept", i, entry.ID)
		}
		if entry.Converted != wantConverted[i] {
			t.Errorf("entry %s converted = %v", entry.ID, entry.Converted)
		}
	}

	if empty := Network(Snapshot{}); empty == nil || len(empty) != 0 {
		t.Fatalf("empty snapshot network = %#v", empty)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Snapshot{TotalReferrals: 4, TotalConverted: 4}); err != nil {
		t.Fatalf("valid snapshot: %v", err)
	}
	if err := Validate(Snapshot{TotalReferrals: 1, TotalConverted: 2}); !errors.Is(err, ErrInconsistentCounts) {
		t.Fatalf("converted > referrals: %v", err)
	}
	if err := Validate(Snapshot{TotalEarned: -1}); !errors.Is(err, ErrInconsistentCounts) {
		t.Fatalf("negative earned: %v", err)
	}
}

func TestQRCode(t *testing.T) {
	png, err := QRCode(BuildReferralLink("https://example.com", "abc123"), 0)
	if err != nil {
		t.Fatalf("QRCode: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Fatalf("not a PNG (%d bytes)", len(png))
	}
	if _, err := QRCode("", QRSize); err == nil {
		t.Fatal("empty link encoded")
	}
}
