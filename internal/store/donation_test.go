package store

import (
	"errors"
	"testing"

	"github.com/platewise/platewise/internal/database"
	"github.com/platewise/platewise/internal/model"
)

func setupDonationTestDB(t *testing.T) *DonationStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewDonationStore(db)
}

func testDraft() DonationDraft {
	return DonationDraft{
		DonorName:    "Pat Baker",
		DonorPhone:   "+15550100",
		DonorAddress: "9 Mill Rd",
		DonorEmail:   "pat@example.com",
		Location:     "Riverside Shelter",
		Description:  "Canned soup, assorted",
		FoodType:     "Canned Goods",
		Quantity:     "30 cans",
		ExpiryDate:   "2026-03-01",
	}
}

func TestDonationSeedData(t *testing.T) {
	ds := setupDonationTestDB(t)

	donations, err := ds.List()
	if err != nil {
		t.Fatalf("list donations: %v", err)
	}
	if len(donations) != 2 {
		t.Fatalf("expected 2 seed donations, got %d", len(donations))
	}

	// Newest first: the vegetables entry was created a day after the bread.
	if donations[0].FoodType != "Vegetables" {
		t.Errorf("first food type = %q, want %q", donations[0].FoodType, "Vegetables")
	}
	if donations[0].Status != model.DonationAvailable {
		t.Errorf("first status = %q, want available", donations[0].Status)
	}
	if donations[1].Status != model.DonationClaimed {
		t.Errorf("second status = %q, want claimed", donations[1].Status)
	}
	if donations[1].ClaimedBy == nil || donations[1].ClaimedBy.Name != "Mike Johnson" {
		t.Errorf("second claim = %+v, want Mike Johnson", donations[1].ClaimedBy)
	}
	if donations[0].ClaimedBy != nil {
		t.Error("available donation must not carry a claim record")
	}
}

func TestDonationCreate(t *testing.T) {
	ds := setupDonationTestDB(t)

	d, err := ds.Create(testDraft())
	if err != nil {
		t.Fatalf("create donation: %v", err)
	}
	if d.Status != model.DonationAvailable {
		t.Errorf("status = %q, want available", d.Status)
	}
	if d.ClaimedBy != nil {
		t.Error("new donation must not carry a claim record")
	}
	if d.FoodType != "Canned Goods" {
		t.Errorf("food type = %q, want %q", d.FoodType, "Canned Goods")
	}
	if d.ExpiryDate != "2026-03-01" {
		t.Errorf("expiry = %q, want %q", d.ExpiryDate, "2026-03-01")
	}

	donations, err := ds.List()
	if err != nil {
		t.Fatalf("list donations: %v", err)
	}
	if len(donations) != 3 {
		t.Fatalf("expected 3 donations, got %d", len(donations))
	}
	if donations[0].ID != d.ID {
		t.Errorf("newest donation id = %d, want %d", donations[0].ID, d.ID)
	}
}

func TestDonationClaim(t *testing.T) {
	ds := setupDonationTestDB(t)

	created, err := ds.Create(testDraft())
	if err != nil {
		t.Fatalf("create donation: %v", err)
	}

	claimed, err := ds.Claim(created.ID, "Mike", "555")
	if err != nil {
		t.Fatalf("claim donation: %v", err)
	}
	if claimed.Status != model.DonationClaimed {
		t.Errorf("status = %q, want claimed", claimed.Status)
	}
	if claimed.ClaimedBy == nil || claimed.ClaimedBy.Name != "Mike" || claimed.ClaimedBy.Phone != "555" {
		t.Errorf("claim record = %+v, want Mike/555", claimed.ClaimedBy)
	}

	// Everything except status and the claim record is untouched.
	if claimed.DonorName != created.DonorName || claimed.Location != created.Location ||
		claimed.Description != created.Description || claimed.FoodType != created.FoodType ||
		claimed.Quantity != created.Quantity || claimed.ExpiryDate != created.ExpiryDate {
		t.Error("claim must not alter non-claim fields")
	}
}

func TestDonationClaimAlreadyClaimed(t *testing.T) {
	ds := setupDonationTestDB(t)

	created, _ := ds.Create(testDraft())
	if _, err := ds.Claim(created.ID, "Mike", "555"); err != nil {
		t.Fatalf("first claim: %v", err)
	}

	_, err := ds.Claim(created.ID, "Eve", "666")
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("second claim error = %v, want ErrAlreadyClaimed", err)
	}

	// The original claim record survives untouched.
	got, err := ds.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get donation: %v", err)
	}
	if got.ClaimedBy == nil || got.ClaimedBy.Name != "Mike" || got.ClaimedBy.Phone != "555" {
		t.Errorf("claim record = %+v, want original Mike/555", got.ClaimedBy)
	}
}

func TestDonationClaimNotFound(t *testing.T) {
	ds := setupDonationTestDB(t)

	got, err := ds.Claim(9999, "Mike", "555")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent donation")
	}
}

func TestSearchAvailableExcludesClaimed(t *testing.T) {
	ds := setupDonationTestDB(t)

	// Seed donation 2 is claimed bakery bread; searching "bread" must not
	// surface it even though its description matches.
	results, err := ds.SearchAvailable("bread")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestSearchAvailableMatchesFields(t *testing.T) {
	ds := setupDonationTestDB(t)

	if _, err := ds.Create(testDraft()); err != nil {
		t.Fatalf("create donation: %v", err)
	}

	cases := []struct {
		term string
		want int
	}{
		{"", 2},          // empty term matches all available
		{"VEGET", 1},     // food type, case-insensitive
		{"garden", 1},    // description
		{"riverside", 1}, // location
		{"soup", 1},
		{"pizza", 0},
	}
	for _, tc := range cases {
		results, err := ds.SearchAvailable(tc.term)
		if err != nil {
			t.Fatalf("search %q: %v", tc.term, err)
		}
		if len(results) != tc.want {
			t.Errorf("search %q = %d results, want %d", tc.term, len(results), tc.want)
		}
	}
}

func TestDonationListByDonorEmail(t *testing.T) {
	ds := setupDonationTestDB(t)

	if _, err := ds.Create(testDraft()); err != nil {
		t.Fatalf("create donation: %v", err)
	}
	other := testDraft()
	other.DonorEmail = "someone-else@example.com"
	if _, err := ds.Create(other); err != nil {
		t.Fatalf("create donation: %v", err)
	}

	mine, err := ds.ListByDonorEmail("Pat@Example.com")
	if err != nil {
		t.Fatalf("list by donor: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 donation for donor, got %d", len(mine))
	}
}

func TestDonationStats(t *testing.T) {
	ds := setupDonationTestDB(t)

	if _, err := ds.Create(testDraft()); err != nil {
		t.Fatalf("create donation: %v", err)
	}

	st, err := ds.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 3 {
		t.Errorf("total = %d, want 3", st.Total)
	}
	if st.Available != 2 {
		t.Errorf("available = %d, want 2", st.Available)
	}
	if st.Claimed != 1 {
		t.Errorf("claimed = %d, want 1", st.Claimed)
	}
	if st.UniqueDonors != 3 {
		t.Errorf("unique donors = %d, want 3", st.UniqueDonors)
	}
}
