package order

// Status represents the lifecycle state of an order
type Status string

const (
	StatusDraft          Status = "draft"           // Being assembled, items editable
	StatusPendingDesign  Status = "pending_design"  // Submitted, waiting for a designer
	StatusInDesign       Status = "in_design"       // Designer working on artwork
	StatusDesignApproved Status = "design_approved" // Artwork approved by the customer
	StatusInProduction   Status = "in_production"   // Manufacturer producing
	StatusCompleted      Status = "completed"       // Delivered
	StatusCancelled      Status = "cancelled"       // Terminated early
)

// IsValid checks if the status is a known order status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingDesign, StatusInDesign, StatusDesignApproved,
		StatusInProduction, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status admits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
// Cancellation is reachable from every non-terminal state.
func (s Status) CanTransitionTo(target Status) bool {
	if target == StatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case StatusDraft:
		return target == StatusPendingDesign
	case StatusPendingDesign:
		return target == StatusInDesign
	case StatusInDesign:
		return target == StatusDesignApproved
	case StatusDesignApproved:
		return target == StatusInProduction
	case StatusInProduction:
		return target == StatusCompleted
	}
	return false
}

// AllStatuses lists every order status, in lifecycle order
func AllStatuses() []Status {
	return []Status{
		StatusDraft, StatusPendingDesign, StatusInDesign, StatusDesignApproved,
		StatusInProduction, StatusCompleted, StatusCancelled,
	}
}
