package ledger

import (
	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
)

// Actor is the per-request identity resolved by the auth layer. The engine
// trusts it and only applies company scoping on top.
type Actor struct {
	UserID    uint
	CompanyID uint // zero when the user is not attached to a company
	IsOwner   bool
}

// requireCompany rejects actors that are not attached to a company
func (a Actor) requireCompany() error {
	if a.CompanyID == 0 {
		return apperr.Forbidden("user is not attached to a company")
	}
	return nil
}

// requireOwner rejects actors without company owner rights
func (a Actor) requireOwner() error {
	if err := a.requireCompany(); err != nil {
		return err
	}
	if !a.IsOwner {
		return apperr.Forbidden("only the company owner can perform this action")
	}
	return nil
}

// checkScope verifies that a loaded entity belongs to the actor's company
func checkScope(a Actor, e model.CompanyScoped) error {
	if e.OwnerCompanyID() != a.CompanyID {
		return apperr.Forbidden("entity belongs to another company")
	}
	return nil
}
