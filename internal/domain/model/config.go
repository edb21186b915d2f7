package model

// Persisted store keys. Values are plain strings.
const (
	KeyPhoneNumber     = "phoneNumber"
	KeyDeviceName      = "deviceName"
	KeyOpenCommand     = "openCommand"
	KeyHoldOpenCommand = "holdOpenCommand"
	KeyCloseCommand    = "closeCommand"
	KeyAdminNumber     = "adminNumber"
	KeyGSMNumber       = "gsmNumber" // legacy alias of phoneNumber
	KeyPassword        = "password"
)

// FactoryPassword is what the device ships with and what is assumed until
// a password has been saved.
const FactoryPassword = "1234"

// DefaultDeviceName is shown when no name was saved. It is never stored.
const DefaultDeviceName = "GSM Relay"

// Keys lists every persisted key in display order.
func Keys() []string {
	return []string{
		KeyDeviceName,
		KeyPhoneNumber,
		KeyGSMNumber,
		KeyAdminNumber,
		KeyPassword,
		KeyOpenCommand,
		KeyHoldOpenCommand,
		KeyCloseCommand,
	}
}

// DefaultTemplates are suggested bodies for a factory-configured device.
// They are only written on explicit request.
func DefaultTemplates() map[TemplateSlot]string {
	return map[TemplateSlot]string{
		TemplateOpen:     "1234GON##",
		TemplateHoldOpen: "1234GOT999#",
		TemplateClose:    "1234GOFF##",
	}
}

// Settings is a point-in-time snapshot of the store.
type Settings struct {
	Profile     DeviceProfile
	Credentials Credentials
	AdminNumber string
	Templates   map[TemplateSlot]string

	// Problems holds, by store key, stored values that fail validation.
	Problems map[string]error
}

// SettingChange is published after every successful write.
type SettingChange struct {
	Key      string
	Value    string
	Previous string
}
