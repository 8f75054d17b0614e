package storage

import (
	"database/sql"

	"github.com/tgienger/taskhold/internal/models"
)

// FindByEmail looks up a registered identity by exact email match.
// Returns nil when no identity is registered under the email.
func (db *DB) FindByEmail(email string) (*models.Credential, error) {
	var cred models.Credential
	var createdAt string
	err := db.QueryRow(`
		SELECT id, name, email, password, created_at
		FROM identities WHERE email = ?
	`, email).Scan(
		&cred.Identity.ID,
		&cred.Identity.Name,
		&cred.Identity.Email,
		&cred.Password,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cred.Identity.CreatedAt, err = models.ParseDate(createdAt)
	if err != nil {
		return nil, err
	}

	return &cred, nil
}

// Insert appends a new identity to the registry.
func (db *DB) Insert(cred models.Credential) error {
	_, err := db.Exec(`
		INSERT INTO identities (id, name, email, password, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, cred.Identity.ID, cred.Identity.Name, cred.Identity.Email,
		cred.Password, cred.Identity.CreatedAt.String())
	return err
}
