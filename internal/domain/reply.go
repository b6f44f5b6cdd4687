package domain

// Permission names understood by the assistant platform.
const (
	PermissionName                  = "NAME"
	PermissionDevicePreciseLocation = "DEVICE_PRECISE_LOCATION"
)

// SimpleResponse is a voice + display text pair. An empty Text means the
// client displays Speech.
type SimpleResponse struct {
	Speech string
	Text   string
}

type Button struct {
	Title string
	URL   string
}

type Image struct {
	URL string
	Alt string
}

// BasicCard is a text card with an optional link button and image.
type BasicCard struct {
	Title  string
	Text   string
	Button *Button
	Image  *Image
}

// ReplyItem holds exactly one of its fields.
type ReplyItem struct {
	Simple *SimpleResponse
	Card   *BasicCard
}

type PermissionRequest struct {
	Context     string
	Permissions []string
}

type ListItem struct {
	Key         string
	Title       string
	Description string
}

// List is a selectable list; item order is preserved on the wire.
type List struct {
	Title string
	Items []ListItem
}

// Reply is the output buffer of one turn.
type Reply struct {
	Items           []ReplyItem
	Permission      *PermissionRequest
	List            *List
	EndConversation bool
	Data            DataBag
}

// NewReply starts a reply that will persist data for the next turn.
func NewReply(data DataBag) *Reply {
	if data == nil {
		data = DataBag{}
	}
	return &Reply{Data: data}
}

// Ask enqueues a plain text prompt spoken and displayed as-is.
func (r *Reply) Ask(text string) {
	r.AskSimple(SimpleResponse{Speech: text})
}

func (r *Reply) AskSimple(s SimpleResponse) {
	r.Items = append(r.Items, ReplyItem{Simple: &s})
}

func (r *Reply) AddCard(c BasicCard) {
	r.Items = append(r.Items, ReplyItem{Card: &c})
}

// AskPermission replaces any pending permission prompt.
func (r *Reply) AskPermission(p PermissionRequest) {
	r.Permission = &p
}

// AddList replaces any pending list.
func (r *Reply) AddList(l List) {
	r.List = &l
}

// Close enqueues a final message and ends the conversation.
func (r *Reply) Close(text string) {
	r.Ask(text)
	r.EndConversation = true
}

// Texts returns the display text of every simple response, in order.
func (r *Reply) Texts() []string {
	var out []string
	for _, it := range r.Items {
		if it.Simple == nil {
			continue
		}
		if it.Simple.Text != "" {
			out = append(out, it.Simple.Text)
			continue
		}
		out = append(out, it.Simple.Speech)
	}
	return out
}
