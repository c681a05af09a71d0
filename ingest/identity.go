// ABOUTME: Identity resolver mapping free-text owner names to canonical users
// ABOUTME: Finds existing users or fabricates synthetic identities with unique addresses
package ingest

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/crmflow/db"
	"github.com/harperreed/crmflow/models"
)

// DefaultOrgDomain hosts synthesized addresses when CRM_ORG_DOMAIN is unset.
const DefaultOrgDomain = "pipeline.local"

// IdentityResolver maps owner/author references to user ids, creating a user
// when no match exists. The store is the source of truth between calls: a
// user created by one Resolve is found, not recreated, by the next.
type IdentityResolver struct {
	db           *sql.DB
	orgDomain    string
	systemUserID uuid.UUID
}

func NewIdentityResolver(database *sql.DB, orgDomain string, systemUserID uuid.UUID) *IdentityResolver {
	if orgDomain == "" {
		orgDomain = DefaultOrgDomain
	}
	return &IdentityResolver{
		db:           database,
		orgDomain:    orgDomain,
		systemUserID: systemUserID,
	}
}

// Resolve returns the canonical user id for a free-text name or email.
// Creation failures degrade to the system identity rather than failing the
// caller's batch.
func (r *IdentityResolver) Resolve(nameOrEmail, explicitEmail string) uuid.UUID {
	nameOrEmail = strings.TrimSpace(nameOrEmail)
	explicitEmail = strings.TrimSpace(explicitEmail)

	if explicitEmail == "" && strings.Contains(nameOrEmail, "@") {
		explicitEmail = nameOrEmail
	}

	if explicitEmail != "" {
		user, err := db.FindUserByEmail(r.db, explicitEmail)
		if err == nil && user != nil {
			return user.ID
		}
	}

	if nameOrEmail == "" {
		return r.systemUserID
	}

	if id, found := r.findByName(nameOrEmail); found {
		return id
	}

	id, err := r.createUser(nameOrEmail, explicitEmail)
	if err != nil {
		fmt.Printf("  ✗ Failed to create user for %q, falling back to system identity: %v\n", nameOrEmail, err)
		return r.systemUserID
	}

	return id
}

// findByName scans all users for an exact case-insensitive match against the
// display name or the synthesized "first last" form.
func (r *IdentityResolver) findByName(name string) (uuid.UUID, bool) {
	users, err := db.ListUsers(r.db)
	if err != nil {
		return uuid.Nil, false
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for _, u := range users {
		if strings.ToLower(strings.TrimSpace(u.DisplayName)) == want {
			return u.ID, true
		}
		full := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if strings.ToLower(full) == want {
			return u.ID, true
		}
	}

	return uuid.Nil, false
}

func (r *IdentityResolver) createUser(name, email string) (uuid.UUID, error) {
	first, last := splitName(name)

	if email == "" {
		var err error
		email, err = r.uniqueAddress(first, last)
		if err != nil {
			return uuid.Nil, err
		}
	}

	// Placeholder credential; synthetic identities cannot log in with it.
	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}

	user := &models.User{
		Email:       email,
		DisplayName: strings.TrimSpace(name),
		FirstName:   first,
		LastName:    last,
		Role:        models.RoleUser,
		Password:    string(hashed),
	}

	if err := db.CreateUser(r.db, user); err != nil {
		// A concurrent run may have won the unique-email race; adopt its row.
		existing, findErr := db.FindUserByEmail(r.db, email)
		if findErr == nil && existing != nil {
			return existing.ID, nil
		}
		return uuid.Nil, err
	}

	return user.ID, nil
}

// uniqueAddress synthesizes firstname.lastname@<org domain>, appending an
// increasing integer suffix starting at 1 until the address is unused.
func (r *IdentityResolver) uniqueAddress(first, last string) (string, error) {
	local := sanitizeLocalPart(first)
	if last == "" {
		local += ".user"
	} else {
		local += "." + sanitizeLocalPart(last)
	}

	candidate := local + "@" + r.orgDomain
	for suffix := 1; ; suffix++ {
		existing, err := db.FindUserByEmail(r.db, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check address %s: %w", candidate, err)
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d@%s", local, suffix, r.orgDomain)
	}
}

// splitName splits a free-text name into first/last, preferring whitespace,
// then ".", then "_" as the separator. With no separator the whole string is
// the first name.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)

	var parts []string
	if fields := strings.Fields(name); len(fields) > 1 {
		parts = fields
	} else if strings.Contains(name, ".") {
		parts = strings.SplitN(name, ".", 2)
	} else if strings.Contains(name, "_") {
		parts = strings.SplitN(name, "_", 2)
	} else {
		return name, ""
	}

	return strings.TrimSpace(parts[0]), strings.TrimSpace(strings.Join(parts[1:], " "))
}

func sanitizeLocalPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

// EnsureSystemUser finds or creates the fixed fallback identity that owns
// records when resolution degrades.
func EnsureSystemUser(database *sql.DB, orgDomain string) (uuid.UUID, error) {
	if orgDomain == "" {
		orgDomain = DefaultOrgDomain
	}
	email := "system@" + orgDomain

	existing, err := db.FindUserByEmail(database, email)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, err
	}

	user := &models.User{
		Email:       email,
		DisplayName: "System",
		FirstName:   "System",
		Role:        models.RoleAdmin,
		Password:    string(hashed),
	}

	if err := db.CreateUser(database, user); err != nil {
		existing, findErr := db.FindUserByEmail(database, email)
		if findErr == nil && existing != nil {
			return existing.ID, nil
		}
		return uuid.Nil, err
	}

	return user.ID, nil
}
