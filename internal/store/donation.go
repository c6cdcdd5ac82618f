package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/platewise/platewise/internal/model"
)

// ErrAlreadyClaimed is returned when a claim targets a donation that is
// no longer available. The existing claim record is never overwritten.
var ErrAlreadyClaimed = errors.New("donation already claimed")

type DonationStore struct {
	db *sql.DB
}

func NewDonationStore(db *sql.DB) *DonationStore {
	return &DonationStore{db: db}
}

const donationCols = `id, donor_name, donor_phone, donor_address, donor_email, location, description, food_type, quantity, expiry_date, status, claimed_by_name, claimed_by_phone, created_at`

func scanDonation(scanner interface{ Scan(...any) error }) (*model.Donation, error) {
	var d model.Donation
	var claimedName, claimedPhone sql.NullString
	err := scanner.Scan(
		&d.ID, &d.DonorName, &d.DonorPhone, &d.DonorAddress, &d.DonorEmail,
		&d.Location, &d.Description, &d.FoodType, &d.Quantity, &d.ExpiryDate,
		&d.Status, &claimedName, &claimedPhone, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if claimedName.Valid {
		d.ClaimedBy = &model.Claim{Name: claimedName.String, Phone: claimedPhone.String}
	}
	return &d, nil
}

func scanDonations(rows *sql.Rows) ([]model.Donation, error) {
	var donations []model.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		donations = append(donations, *d)
	}
	return donations, rows.Err()
}

// List returns every donation, newest first.
func (s *DonationStore) List() ([]model.Donation, error) {
	rows, err := s.db.Query(`SELECT ` + donationCols + ` FROM donations ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()
	return scanDonations(rows)
}

// ListByDonorEmail returns the donations registered by the given donor
// account, newest first.
func (s *DonationStore) ListByDonorEmail(email string) ([]model.Donation, error) {
	rows, err := s.db.Query(
		`SELECT `+donationCols+` FROM donations WHERE donor_email = ? COLLATE NOCASE ORDER BY created_at DESC, id DESC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("list donations by donor: %w", err)
	}
	defer rows.Close()
	return scanDonations(rows)
}

func (s *DonationStore) GetByID(id int64) (*model.Donation, error) {
	row := s.db.QueryRow(`SELECT `+donationCols+` FROM donations WHERE id = ?`, id)
	d, err := scanDonation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get donation: %w", err)
	}
	return d, nil
}

// DonationDraft holds the fields a donor submits. Status and timestamps
// are assigned here, never by the caller.
type DonationDraft struct {
	DonorName    string
	DonorPhone   string
	DonorAddress string
	DonorEmail   string
	Location     string
	Description  string
	FoodType     string
	Quantity     string
	ExpiryDate   string
}

func (s *DonationStore) Create(draft DonationDraft) (*model.Donation, error) {
	result, err := s.db.Exec(
		`INSERT INTO donations (donor_name, donor_phone, donor_address, donor_email, location, description, food_type, quantity, expiry_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'available')`,
		draft.DonorName, draft.DonorPhone, draft.DonorAddress, draft.DonorEmail,
		draft.Location, draft.Description, draft.FoodType, draft.Quantity, draft.ExpiryDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert donation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// Claim moves a donation from available to claimed and binds the
// claimant's contact details. The transition is a single guarded UPDATE:
// if the donation is not available the statement affects no rows, and the
// follow-up lookup distinguishes a missing donation from one already
// claimed.
func (s *DonationStore) Claim(id int64, name, phone string) (*model.Donation, error) {
	result, err := s.db.Exec(
		`UPDATE donations SET status = 'claimed', claimed_by_name = ?, claimed_by_phone = ?
		 WHERE id = ? AND status = 'available'`,
		name, phone, id,
	)
	if err != nil {
		return nil, fmt.Errorf("claim donation: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		existing, err := s.GetByID(id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, nil
		}
		return nil, ErrAlreadyClaimed
	}

	return s.GetByID(id)
}

// SearchAvailable returns available donations whose food type, description,
// or location contains the term, case-insensitively. An empty term matches
// every available donation.
func (s *DonationStore) SearchAvailable(term string) ([]model.Donation, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	rows, err := s.db.Query(
		`SELECT `+donationCols+` FROM donations
		 WHERE status = 'available'
		   AND (food_type LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR location LIKE ? ESCAPE '\')
		 ORDER BY created_at DESC, id DESC`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search donations: %w", err)
	}
	defer rows.Close()
	return scanDonations(rows)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Stats holds the aggregate counts shown on the admin dashboard. All of
// it is derived; nothing here is stored.
type Stats struct {
	Total        int `json:"total"`
	Available    int `json:"available"`
	Claimed      int `json:"claimed"`
	UniqueDonors int `json:"unique_donors"`
}

func (s *DonationStore) Stats() (*Stats, error) {
	var st Stats
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(status = 'available'), 0),
		        COALESCE(SUM(status = 'claimed'), 0),
		        COUNT(DISTINCT donor_name)
		 FROM donations`,
	).Scan(&st.Total, &st.Available, &st.Claimed, &st.UniqueDonors)
	if err != nil {
		return nil, fmt.Errorf("donation stats: %w", err)
	}
	return &st, nil
}
