package company

import "errors"

// EntityType is the sync entity type for company links.
const EntityType = "company_link"

// ProcActivateInvitation is the named remote procedure that atomically turns
// an invitation code into an active company link on the server.
const ProcActivateInvitation = "company.activate_invitation"

// Link statuses.
const (
	StatusInvited = "invited"
	StatusActive  = "active"
	StatusRevoked = "revoked"
)

var ErrMissingInvitationCode = errors.New("invitation code is required")

// Link is the payload connecting an owner to a company account. Links are
// created server-side by the activation procedure and reach the client
// through pulls; the client never creates one locally.
type Link struct {
	CompanyID      string `json:"company_id"`
	CompanyName    string `json:"company_name"`
	InvitationCode string `json:"invitation_code,omitempty"`
	Status         string `json:"status"`
}

// ActivateArgs are the arguments for ProcActivateInvitation.
type ActivateArgs struct {
	Code string `json:"code"`
}

func (a ActivateArgs) Validate() error {
	if a.Code == "" {
		return ErrMissingInvitationCode
	}
	return nil
}
