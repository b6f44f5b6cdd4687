package dialogflow

// WebhookRequest is the body Dialogflow POSTs to the fulfillment endpoint.
type WebhookRequest struct {
	ResponseID                  string          `json:"responseId"`
	Session                     string          `json:"session"`
	QueryResult                 QueryResult     `json:"queryResult"`
	OriginalDetectIntentRequest OriginalRequest `json:"originalDetectIntentRequest"`
}

type QueryResult struct {
	QueryText      string         `json:"queryText"`
	Parameters     map[string]any `json:"parameters"`
	Intent         Intent         `json:"intent"`
	OutputContexts []Context      `json:"outputContexts"`
	LanguageCode   string         `json:"languageCode"`
}

type Intent struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type Context struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// OriginalRequest wraps the surface payload; for Google it is an Actions on
// Google AppRequest.
type OriginalRequest struct {
	Source  string     `json:"source"`
	Version string     `json:"version"`
	Payload AppRequest `json:"payload"`
}

type AppRequest struct {
	User         User         `json:"user"`
	Device       Device       `json:"device"`
	Inputs       []Input      `json:"inputs"`
	Conversation Conversation `json:"conversation"`
}

type User struct {
	Profile     *Profile `json:"profile,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Locale      string   `json:"locale,omitempty"`
}

type Profile struct {
	DisplayName string `json:"displayName"`
	GivenName   string `json:"givenName"`
	FamilyName  string `json:"familyName"`
}

type Device struct {
	Location *Location `json:"location,omitempty"`
}

type Location struct {
	Coordinates      *LatLng `json:"coordinates,omitempty"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	City             string  `json:"city,omitempty"`
	ZipCode          string  `json:"zipCode,omitempty"`
}

// LatLng fields are pointers so a device reporting 0,0 is not mistaken for
// a missing fix.
type LatLng struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type Input struct {
	Intent    string     `json:"intent"`
	Arguments []Argument `json:"arguments"`
}

type Argument struct {
	Name      string `json:"name"`
	BoolValue *bool  `json:"boolValue,omitempty"`
	TextValue string `json:"textValue,omitempty"`
}

type Conversation struct {
	ConversationID string `json:"conversationId"`
	Type           string `json:"type"`
}

// WebhookResponse is returned to Dialogflow.
type WebhookResponse struct {
	Payload        *ResponsePayload `json:"payload,omitempty"`
	OutputContexts []Context        `json:"outputContexts,omitempty"`
}

type ResponsePayload struct {
	Google GooglePayload `json:"google"`
}

type GooglePayload struct {
	ExpectUserResponse bool          `json:"expectUserResponse"`
	RichResponse       RichResponse  `json:"richResponse"`
	SystemIntent       *SystemIntent `json:"systemIntent,omitempty"`
}

type RichResponse struct {
	Items []RichItem `json:"items"`
}

type RichItem struct {
	SimpleResponse *SimpleResponse `json:"simpleResponse,omitempty"`
	BasicCard      *BasicCard      `json:"basicCard,omitempty"`
}

type SimpleResponse struct {
	TextToSpeech string `json:"textToSpeech"`
	DisplayText  string `json:"displayText,omitempty"`
}

type BasicCard struct {
	Title         string   `json:"title,omitempty"`
	FormattedText string   `json:"formattedText,omitempty"`
	Image         *Image   `json:"image,omitempty"`
	Buttons       []Button `json:"buttons,omitempty"`
}

type Image struct {
	URL               string `json:"url"`
	AccessibilityText string `json:"accessibilityText"`
}

type Button struct {
	Title         string        `json:"title"`
	OpenURLAction OpenURLAction `json:"openUrlAction"`
}

type OpenURLAction struct {
	URL string `json:"url"`
}

// SystemIntent asks the platform to run a helper (permission, option
// selection) on the next user input.
type SystemIntent struct {
	Intent string `json:"intent"`
	Data   any    `json:"data"`
}

type PermissionValueSpec struct {
	Type        string   `json:"@type"`
	OptContext  string   `json:"optContext,omitempty"`
	Permissions []string `json:"permissions"`
}

type OptionValueSpec struct {
	Type       string      `json:"@type"`
	ListSelect *ListSelect `json:"listSelect"`
}

type ListSelect struct {
	Title string           `json:"title,omitempty"`
	Items []ListSelectItem `json:"items"`
}

type ListSelectItem struct {
	OptionInfo  OptionInfo `json:"optionInfo"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
}

type OptionInfo struct {
	Key      string   `json:"key"`
	Synonyms []string `json:"synonyms,omitempty"`
}
