package inventory

import "time"

// Item maps to the inventory table. One row is one stocked lot; drug names
// repeat across lots.
type Item struct {
	ID          int64     `db:"id" json:"id"`
	DrugName    string    `db:"drug_name" json:"drug_name"`
	Quantity    int       `db:"quantity" json:"quantity"`
	Supplier    *string   `db:"supplier" json:"supplier,omitempty"`
	LastStocked time.Time `db:"last_stocked" json:"last_stocked"`
}
