package messaging

import "fmt"

// Channel identifies which address kind a message travels over.
// It decides the user address column and the provider-id scheme.
type Channel string

const (
	ChannelPhone Channel = "phone"
	ChannelEmail Channel = "email"
)

// AddressColumn maps the channel to the users column holding its address.
func (c Channel) AddressColumn() (string, error) {
	switch c {
	case ChannelPhone:
		return "phone_number", nil
	case ChannelEmail:
		return "email", nil
	default:
		return "", fmt.Errorf("messaging: unsupported channel %q", string(c))
	}
}

// MessageType is the stored discriminator for a message row.
// SMS/MMS rows reuse the request's own type field; email rows are tagged "email".
type MessageType string

const (
	MessageTypeSms   MessageType = "sms"
	MessageTypeMms   MessageType = "mms"
	MessageTypeEmail MessageType = "email"
)
