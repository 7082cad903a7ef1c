package repository

import (
	"github.com/nurpe/gigpay/internal/model"
)

// contractFilter builds the visibility restriction for queries joining the
// contracts table aliased as "c": clients see contracts where they are the
// client, contractors where they are the contractor.
func contractFilter(p model.Principal) (string, interface{}, error) {
	switch p.Type {
	case model.ProfileTypeClient:
		return "c.client_id = ?", p.ID, nil
	case model.ProfileTypeContractor:
		return "c.contractor_id = ?", p.ID, nil
	default:
		return "", nil, ErrAccessDenied
	}
}
