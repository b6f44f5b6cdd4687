package dialogflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"nesa-fulfillment/internal/domain"
)

const (
	dataContextSuffix   = "/contexts/_actions_on_google"
	dataContextLifespan = 99
	dataParameter       = "data"

	permissionArgument = "PERMISSION"

	intentPermission = "actions.intent.PERMISSION"
	intentOption     = "actions.intent.OPTION"

	permissionSpecType = "type.googleapis.com/google.actions.v2.PermissionValueSpec"
	optionSpecType     = "type.googleapis.com/google.actions.v2.OptionValueSpec"

	// permissionPlaceholder fills the mandatory leading simple response of a
	// reply that only carries a permission prompt.
	permissionPlaceholder = "PLACEHOLDER_FOR_PERMISSION"
)

// DecodeRequest parses a webhook body.
func DecodeRequest(body []byte) (WebhookRequest, error) {
	var req WebhookRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return WebhookRequest{}, errors.New("dialogflow: empty request body")
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return WebhookRequest{}, fmt.Errorf("dialogflow: decode request: %w", err)
	}
	return req, nil
}

// Turn extracts the fields the intent handlers read.
func (r WebhookRequest) Turn() (domain.Turn, error) {
	data, err := r.sessionData()
	if err != nil {
		return domain.Turn{}, err
	}
	return domain.Turn{
		Intent:     r.QueryResult.Intent.DisplayName,
		Session:    r.Session,
		ResponseID: r.ResponseID,
		Permission: r.permissionResult(),
		Data:       data,
	}, nil
}

func (r WebhookRequest) permissionResult() domain.PermissionResult {
	payload := r.OriginalDetectIntentRequest.Payload
	out := domain.PermissionResult{Granted: permissionGranted(payload.Inputs)}
	if !out.Granted {
		return out
	}
	if p := payload.User.Profile; p != nil {
		out.DisplayName = p.DisplayName
	}
	if loc := payload.Device.Location; loc != nil && loc.Coordinates != nil {
		c := loc.Coordinates
		if c.Latitude != nil && c.Longitude != nil {
			out.Coordinates = &domain.Coordinates{Latitude: *c.Latitude, Longitude: *c.Longitude}
		}
	}
	return out
}

func permissionGranted(inputs []Input) bool {
	for _, in := range inputs {
		for _, arg := range in.Arguments {
			if arg.Name != permissionArgument {
				continue
			}
			if arg.BoolValue != nil {
				return *arg.BoolValue
			}
			return strings.EqualFold(strings.TrimSpace(arg.TextValue), "true")
		}
	}
	return false
}

func (r WebhookRequest) sessionData() (domain.DataBag, error) {
	bag := domain.DataBag{}
	for _, c := range r.QueryResult.OutputContexts {
		if !strings.HasSuffix(c.Name, dataContextSuffix) {
			continue
		}
		raw, ok := c.Parameters[dataParameter]
		if !ok {
			return bag, nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("dialogflow: session data is %T, want JSON string", raw)
		}
		if strings.TrimSpace(s) == "" {
			return bag, nil
		}
		var values map[string]any
		if err := json.Unmarshal([]byte(s), &values); err != nil {
			return nil, fmt.Errorf("dialogflow: decode session data: %w", err)
		}
		for k, v := range values {
			switch tv := v.(type) {
			case string:
				bag[k] = tv
			case float64:
				bag[k] = strconv.FormatFloat(tv, 'f', -1, 64)
			case bool:
				bag[k] = strconv.FormatBool(tv)
			}
		}
		return bag, nil
	}
	return bag, nil
}

// EncodeReply renders a reply for the given session. A reply never carries
// both a permission prompt and a list; if it does, the permission wins.
func EncodeReply(session string, reply domain.Reply) (WebhookResponse, error) {
	google := GooglePayload{
		ExpectUserResponse: !reply.EndConversation,
		RichResponse:       RichResponse{Items: make([]RichItem, 0, len(reply.Items)+1)},
	}

	for _, it := range reply.Items {
		switch {
		case it.Simple != nil:
			google.RichResponse.Items = append(google.RichResponse.Items, RichItem{SimpleResponse: &SimpleResponse{
				TextToSpeech: it.Simple.Speech,
				DisplayText:  it.Simple.Text,
			}})
		case it.Card != nil:
			google.RichResponse.Items = append(google.RichResponse.Items, RichItem{BasicCard: encodeCard(*it.Card)})
		}
	}

	switch {
	case reply.Permission != nil:
		if len(google.RichResponse.Items) == 0 {
			google.RichResponse.Items = append(google.RichResponse.Items, RichItem{SimpleResponse: &SimpleResponse{TextToSpeech: permissionPlaceholder}})
		}
		google.SystemIntent = &SystemIntent{
			Intent: intentPermission,
			Data: PermissionValueSpec{
				Type:        permissionSpecType,
				OptContext:  reply.Permission.Context,
				Permissions: append([]string(nil), reply.Permission.Permissions...),
			},
		}
	case reply.List != nil:
		google.SystemIntent = &SystemIntent{
			Intent: intentOption,
			Data:   OptionValueSpec{Type: optionSpecType, ListSelect: encodeList(*reply.List)},
		}
	}

	resp := WebhookResponse{Payload: &ResponsePayload{Google: google}}
	if session != "" {
		data, err := json.Marshal(reply.Data)
		if err != nil {
			return WebhookResponse{}, fmt.Errorf("dialogflow: encode session data: %w", err)
		}
		resp.OutputContexts = []Context{{
			Name:          session + dataContextSuffix,
			LifespanCount: dataContextLifespan,
			Parameters:    map[string]any{dataParameter: string(data)},
		}}
	}
	return resp, nil
}

func encodeCard(c domain.BasicCard) *BasicCard {
	out := &BasicCard{Title: c.Title, FormattedText: c.Text}
	if c.Image != nil {
		out.Image = &Image{URL: c.Image.URL, AccessibilityText: c.Image.Alt}
	}
	if c.Button != nil {
		out.Buttons = []Button{{Title: c.Button.Title, OpenURLAction: OpenURLAction{URL: c.Button.URL}}}
	}
	return out
}

func encodeList(l domain.List) *ListSelect {
	out := &ListSelect{Title: l.Title, Items: make([]ListSelectItem, 0, len(l.Items))}
	for _, it := range l.Items {
		out.Items = append(out.Items, ListSelectItem{
			OptionInfo:  OptionInfo{Key: it.Key},
			Title:       it.Title,
			Description: it.Description,
		})
	}
	return out
}
