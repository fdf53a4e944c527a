package models

import "time"

// ReturnStatus is the lifecycle state of a return request. Once a request
// leaves pending it never goes back; completed is only reachable from
// approved.
type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "pending"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
	ReturnCompleted ReturnStatus = "completed"
)

// Return item conditions and preferred solutions, as submitted by the
// customer on the return form.
const (
	ConditionUnused  = "unused"
	ConditionOpened  = "opened"
	ConditionUsed    = "used"
	ConditionDamaged = "damaged"

	SolutionRefund      = "refund"
	SolutionReplacement = "replacement"
	SolutionExchange    = "exchange"
)

// ReturnRequest is a customer's request to return a delivered order.
// At most one per order; its lifecycle is owned by admin actions.
type ReturnRequest struct {
	ID                string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID           string       `json:"order_id" gorm:"type:varchar(36);uniqueIndex"`
	Order             Order        `json:"order" gorm:"foreignKey:OrderID"`
	Reason            string       `json:"reason" validate:"required,max=255"`
	Description       string       `json:"description"`
	Condition         string       `json:"condition" validate:"omitempty,oneof=unused opened used damaged"`
	PreferredSolution string       `json:"preferred_solution" validate:"omitempty,oneof=refund replacement exchange"`
	Status            ReturnStatus `json:"status" gorm:"type:varchar(20)"`
	AdminNotes        string       `json:"admin_notes,omitempty"`
	ProcessedDate     *time.Time   `json:"processed_date,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}
