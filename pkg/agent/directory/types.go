package directory

import "time"

// Client is a customer record from the extranet CRM. The record is created and
// maintained externally; the agent only reads it and applies narrow contact
// updates keyed by ID.
type Client struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Mobile     string    `json:"mobile"`
	Address    string    `json:"address"`
	PostalCode string    `json:"postal_code"`
	City       string    `json:"city"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
}

// FullName returns "First Last" for conversational responses.
func (c Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

type Contract struct {
	ID        int64
	ClientID  int64
	Reference string
	Status    string
	CompanyID int64
	FormulaID int64
	StartDate time.Time
	EndDate   *time.Time
}

type Company struct {
	ID          int64
	Name        string
	PhoneNumber string
}

type Formula struct {
	ID          int64
	Name        string
	Description string
	// Monthly price in euro cents. The schema stores numeric(10,2); we carry
	// cents to keep arithmetic exact.
	PriceCents int64
}

// ClientEvent is one row of a client's interaction history. Events with a
// future ForDate and IsCompleted=false are "upcoming appointments".
type ClientEvent struct {
	ID          int64
	ClientID    int64
	Comment     string
	ForDate     time.Time
	IsCompleted bool
}

type Employee struct {
	ID        string
	FirstName string
	LastName  string
	Function  string
	Email     string
	IsActive  bool
}

// AdvisoryDuty captures the "devoir de conseil" questionnaire recorded when the
// client subscribed: their situation, budget, and the needs the contract was
// chosen to cover.
type AdvisoryDuty struct {
	ID              int64
	ClientID        int64
	ClientSituation string
	Budget          string
	Need1           string
	Need2           string
	Need3           string
}

// ContactUpdate carries the mutable contact fields of a client. Nil fields are
// left untouched.
type ContactUpdate struct {
	Address    *string
	PostalCode *string
	City       *string
	Phone      *string
	Email      *string
}

// IsEmpty reports whether the update would change nothing.
func (u ContactUpdate) IsEmpty() bool {
	return u.Address == nil && u.PostalCode == nil && u.City == nil && u.Phone == nil && u.Email == nil
}
