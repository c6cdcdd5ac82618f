package store

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/platewise/platewise/internal/model"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

const accountCols = `id, email, name, role, phone, address, organization, password_hash, admin_password_hash, created_at`

func scanAccount(scanner interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := scanner.Scan(
		&a.ID, &a.Email, &a.Name, &a.Role, &a.Phone, &a.Address,
		&a.Organization, &a.PasswordHash, &a.AdminPasswordHash, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AccountStore) Create(email, name string, role model.Role, phone, address, organization, passwordHash, adminPasswordHash string) (*model.Account, error) {
	result, err := s.db.Exec(
		`INSERT INTO accounts (email, name, role, phone, address, organization, password_hash, admin_password_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		email, name, role, phone, address, organization, passwordHash, adminPasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AccountStore) GetByID(id int64) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) GetByEmail(email string) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE email = ? COLLATE NOCASE`, email)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

// GetByEmailAndRole resolves the account only if one exists with both the
// given email and the given role. The login flow uses this to reject a
// role the account does not actually hold.
func (s *AccountStore) GetByEmailAndRole(email string, role model.Role) (*model.Account, error) {
	row := s.db.QueryRow(`SELECT `+accountCols+` FROM accounts WHERE email = ? COLLATE NOCASE AND role = ?`, email, role)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email and role: %w", err)
	}
	return a, nil
}

func (s *AccountStore) EmailExists(email string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM accounts WHERE email = ? COLLATE NOCASE`, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

// seedAccount is a demo account created on first start so a fresh install
// can be logged into immediately.
type seedAccount struct {
	email         string
	name          string
	role          model.Role
	phone         string
	address       string
	organization  string
	password      string
	adminPassword string
}

var seedAccounts = []seedAccount{
	{
		email:         "admin@foodwaste.com",
		name:          "System Administrator",
		role:          model.RoleAdmin,
		organization:  "Food Waste Management Inc.",
		password:      "password",
		adminPassword: "admin123",
	},
	{
		email:    "donor@example.com",
		name:     "John Donor",
		role:     model.RoleDonor,
		phone:    "+1234567890",
		address:  "123 Donor Street, City",
		password: "password",
	},
	{
		email:    "user@example.com",
		name:     "Jane User",
		role:     model.RoleUser,
		phone:    "+1987654321",
		address:  "456 User Avenue, City",
		password: "password",
	},
}

// EnsureSeedAccounts inserts the demo accounts if they are missing.
// Passwords are bcrypt-hashed here rather than shipped as literals in a
// migration, so the hashing cost stays a runtime concern.
func (s *AccountStore) EnsureSeedAccounts() error {
	for _, seed := range seedAccounts {
		exists, err := s.EmailExists(seed.email)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		var adminHash []byte
		if seed.adminPassword != "" {
			adminHash, err = bcrypt.GenerateFromPassword([]byte(seed.adminPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash seed admin password: %w", err)
			}
		}

		if _, err := s.Create(seed.email, seed.name, seed.role, seed.phone, seed.address, seed.organization, string(hash), string(adminHash)); err != nil {
			return fmt.Errorf("seed account %s: %w", seed.email, err)
		}
	}
	return nil
}
