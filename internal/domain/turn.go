package domain

// Data bag keys persisted across turns of one conversation.
const (
	DataUserName    = "userName"
	DataLocationLat = "locationLat"
	DataLocationLng = "locationLng"
	DataVenue       = "venue"
)

// Undefined is stored in place of coordinates the device did not share.
const Undefined = "undefined"

// Turn is one inbound fulfillment request, already decoded from the
// platform's wire format.
type Turn struct {
	Intent     string
	Session    string
	ResponseID string
	Permission PermissionResult
	Data       DataBag
}

// PermissionResult carries the outcome of a permission prompt. The zero
// value means the user denied (or was never asked).
type PermissionResult struct {
	Granted     bool
	DisplayName string
	Coordinates *Coordinates
}

// Coordinates is a device location as reported by the platform.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// DataBag is conversation-scoped storage. It travels with the session
// through the platform and is never shared between conversations.
type DataBag map[string]string

// Clone returns a copy that can be mutated without touching the receiver.
func (d DataBag) Clone() DataBag {
	out := make(DataBag, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
