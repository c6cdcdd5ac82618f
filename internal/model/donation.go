package model

import "time"

type DonationStatus string

const (
	DonationAvailable DonationStatus = "available"
	DonationClaimed   DonationStatus = "claimed"
	// DonationExpired is reserved in the schema but never set by any
	// operation; nothing sweeps donations past their expiry date.
	DonationExpired DonationStatus = "expired"
)

// Claim holds the contact details a recipient binds to a donation.
// It is present iff the donation status is "claimed".
type Claim struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Donation struct {
	ID           int64          `json:"id"`
	DonorName    string         `json:"donor_name"`
	DonorPhone   string         `json:"donor_phone"`
	DonorAddress string         `json:"donor_address"`
	DonorEmail   string         `json:"donor_email,omitempty"`
	Location     string         `json:"location"`
	Description  string         `json:"description"`
	FoodType     string         `json:"food_type"`
	Quantity     string         `json:"quantity"`
	ExpiryDate   string         `json:"expiry_date"` // YYYY-MM-DD
	Status       DonationStatus `json:"status"`
	ClaimedBy    *Claim         `json:"claimed_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
