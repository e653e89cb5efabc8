package model

// CompanyScoped is implemented by every entity that belongs to a company.
// Ownership checks use this capability instead of branching on entity types.
type CompanyScoped interface {
	OwnerCompanyID() uint
}
