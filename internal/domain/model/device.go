package model

// DeviceProfile is the display identity and SMS destination of the relay.
type DeviceProfile struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

type Credentials struct {
	Password string
}

// AuthorizedUser is one slot of the device allow-list. Nothing is kept
// locally: each add is dispatched on its own.
type AuthorizedUser struct {
	Index       int    `json:"index"`
	PhoneNumber string `json:"phone_number"`
}

type TemplateSlot string

const (
	TemplateOpen     TemplateSlot = "open"
	TemplateHoldOpen TemplateSlot = "holdOpen"
	TemplateClose    TemplateSlot = "close"
)

// Key returns the store key holding the raw template text.
func (s TemplateSlot) Key() string {
	switch s {
	case TemplateOpen:
		return KeyOpenCommand
	case TemplateHoldOpen:
		return KeyHoldOpenCommand
	case TemplateClose:
		return KeyCloseCommand
	}
	return ""
}

type StatusQuery string

const (
	StatusRelay         StatusQuery = "relay"
	StatusSignalLevel   StatusQuery = "signal"
	StatusStoredNumbers StatusQuery = "numbers"
	StatusEventLog      StatusQuery = "log"
)

type Intent string

const (
	IntentRelayOn           Intent = "relay_on"
	IntentRelayOff          Intent = "relay_off"
	IntentLatchTime         Intent = "latch_time"
	IntentAdminSetup        Intent = "admin_setup"
	IntentPasswordChange    Intent = "password_change"
	IntentAuthorizedUserAdd Intent = "authorized_user_add"
	IntentStatusQuery       Intent = "status_query"
	IntentTemplate          Intent = "template"
)

// RelayCommand is a fully rendered protocol string ready for dispatch.
// ID only correlates log lines; it never reaches the device.
type RelayCommand struct {
	ID          string
	Intent      Intent
	Destination string
	Body        string
}
