package enums

// PurchaseRejection labels why a purchase did not decrement stock.
type PurchaseRejection string

const (
	PurchaseRejectionNotFound   PurchaseRejection = "not_found"
	PurchaseRejectionOutOfStock PurchaseRejection = "out_of_stock"
)

func (p PurchaseRejection) String() string {
	return string(p)
}
