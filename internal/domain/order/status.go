package order

// Status represents the fulfilment status of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every status in fulfilment order, cancelled last
var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// forward position on the fulfilment path; cancelled is off-path
var statusRank = map[Status]int{
	StatusPending:    1,
	StatusConfirmed:  2,
	StatusProcessing: 3,
	StatusShipped:    4,
	StatusDelivered:  5,
}

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo checks if the status can move to target.
// Forward moves may skip steps; cancellation is allowed from any non-terminal status.
func (s Status) CanTransitionTo(target Status) bool {
	if !s.IsValid() || !target.IsValid() || s == target || s.IsTerminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return statusRank[target] > statusRank[s]
}

// PaymentMethod is how the customer intends to pay
type PaymentMethod string

const (
	PaymentMethodQuote          PaymentMethod = "quote"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodCard           PaymentMethod = "card"
)

// AllPaymentMethods lists every payment method
var AllPaymentMethods = []PaymentMethod{
	PaymentMethodQuote,
	PaymentMethodCashOnDelivery,
	PaymentMethodCard,
}

// IsValid checks if the payment method is a known value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodQuote, PaymentMethodCashOnDelivery, PaymentMethodCard:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}
