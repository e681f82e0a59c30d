package model

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusClosed     Status = "Closed"
	// StatusInprogressLegacy is still written by older tooling and must stay accepted.
	StatusInprogressLegacy Status = "Inprogress"
)

// Statuses is the closed set accepted on update, in display order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusClosed, StatusInprogressLegacy}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Columns lists the record columns in select/export order.
var Columns = []string{
	"ticket_link",
	"order_number",
	"sku",
	"customer_name",
	"priority",
	"om_request",
	"status",
	"om_update",
	"last_follow_up",
	"request_date",
	"designated_om_agent",
}

// Return is one row of the returns table. Nullable columns are pointers and
// always serialize, as null when unset.
type Return struct {
	TicketLink        string  `json:"ticket_link"`
	OrderNumber       string  `json:"order_number"`
	SKU               string  `json:"sku"`
	CustomerName      string  `json:"customer_name"`
	Priority          string  `json:"priority"`
	OMRequest         string  `json:"om_request"`
	Status            string  `json:"status"`
	OMUpdate          *string `json:"om_update"`
	LastFollowUp      *string `json:"last_follow_up"`
	RequestDate       *string `json:"request_date"`
	DesignatedOMAgent *string `json:"designated_om_agent"`
}

// Values returns the record in Columns order, nil for null columns.
func (r Return) Values() []*string {
	return []*string{
		&r.TicketLink, &r.OrderNumber, &r.SKU, &r.CustomerName, &r.Priority,
		&r.OMRequest, &r.Status, r.OMUpdate, r.LastFollowUp, r.RequestDate, r.DesignatedOMAgent,
	}
}

type Stats struct {
	TotalReturns int            `json:"totalReturns"`
	ByStatus     map[string]int `json:"byStatus"`
	ByPriority   map[string]int `json:"byPriority"`
}

type ListResult struct {
	Rows  []Return `json:"rows"`
	Total int      `json:"total"`
	Stats Stats    `json:"stats"`
}

type FilterOptions struct {
	Priorities []string `json:"priorities"`
	Statuses   []string `json:"statuses"`
}
