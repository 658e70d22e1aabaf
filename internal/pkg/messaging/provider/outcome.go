package provider

// Outcome is the normalized result of a provider call. Raw keeps the full
// provider response for HTTP callers; Status is what gets stored on the
// message row; OK is the channel-specific success predicate.
type Outcome struct {
	Status string
	OK     bool
	Raw    any
}

// StatusPtr returns the stored status, or nil when the provider reported none.
func (o *Outcome) StatusPtr() *string {
	if o == nil || o.Status == "" {
		return nil
	}
	s := o.Status
	return &s
}
