package partner

import (
	"github.com/stockflows/backend/internal/domain/shared"
)

// SupplierRepository persists suppliers
type SupplierRepository interface {
	shared.OrgRepository[Supplier]
}

// CustomerRepository persists customers
type CustomerRepository interface {
	shared.OrgRepository[Customer]
}
