// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Account, Contact, Opportunity, User, Note, and InboundEmail structs
package models

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Website     string     `json:"website,omitempty"`
	Industry    string     `json:"industry,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Email       string     `json:"email,omitempty"`
	Description string     `json:"description,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Contact struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Title     string     `json:"title,omitempty"`
	AccountID *uuid.UUID `json:"account_id,omitempty"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Opportunity struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	AccountID         *uuid.UUID `json:"account_id,omitempty"`
	Amount            *float64   `json:"amount,omitempty"`
	Stage             string     `json:"stage"`
	Probability       *float64   `json:"probability,omitempty"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	Owner             uuid.UUID  `json:"owner"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`
	Role        string    `json:"role"`
	Password    string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Note links to at most one of AccountID, ContactID, OpportunityID.
type Note struct {
	ID            uuid.UUID  `json:"id"`
	Content       string     `json:"content"`
	AccountID     *uuid.UUID `json:"account_id,omitempty"`
	ContactID     *uuid.UUID `json:"contact_id,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunity_id,omitempty"`
	IsPrivate     bool       `json:"is_private"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	Source        string     `json:"source"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type EmailBody struct {
	Text string `json:"text,omitempty"`
	HTML string `json:"html,omitempty"`
}

type EmailAttachment struct {
	Filename     string `json:"filename"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	AttachmentID string `json:"attachment_id"`
}

type InboundEmail struct {
	ID          uuid.UUID         `json:"id"`
	MessageID   string            `json:"message_id"`
	ThreadID    string            `json:"thread_id,omitempty"`
	From        EmailAddress      `json:"from"`
	To          []EmailAddress    `json:"to"`
	Cc          []EmailAddress    `json:"cc,omitempty"`
	Bcc         []EmailAddress    `json:"bcc,omitempty"`
	Subject     string            `json:"subject,omitempty"`
	Body        EmailBody         `json:"body"`
	Attachments []EmailAttachment `json:"attachments,omitempty"`
	ReceivedAt  time.Time         `json:"received_at"`
	Read        bool              `json:"read"`
	Processed   bool              `json:"processed"`
	Labels      []string          `json:"labels,omitempty"`
	Snippet     string            `json:"snippet,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Opportunity stage constants.
const (
	StageNew         = "New"
	StageQualified   = "Qualified"
	StageProposal    = "Proposal"
	StageNegotiation = "Negotiation"
	StageClosedWon   = "Closed Won"
	StageClosedLost  = "Closed Lost"
)

// Account status constants.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusProspect = "prospect"
)

// User role constants.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Note source constants.
const (
	NoteSourceManual = "manual"
	NoteSourceEmail  = "email"
	NoteSourceImport = "import"
)
