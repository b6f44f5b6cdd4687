package dialogflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"nesa-fulfillment/internal/domain"
)

const session = "projects/nesa-agent/agent/sessions/abc"

func permissionBody(granted string, withCoords bool) string {
	location := `{}`
	if withCoords {
		location = `{"location":{"coordinates":{"latitude":1.2766,"longitude":103.8458}}}`
	}
	return `{
		"responseId":"resp-1",
		"session":"` + session + `",
		"queryResult":{
			"queryText":"actions_intent_PERMISSION",
			"intent":{"name":"projects/nesa-agent/agent/intents/1","displayName":"actions_intent_PERMISSION"},
			"outputContexts":[
				{"name":"` + session + `/contexts/_actions_on_google","lifespanCount":99,"parameters":{"data":"{\"venue\":\"old\",\"count\":3}"}},
				{"name":"` + session + `/contexts/actions_capability_screen_output"}
			]
		},
		"originalDetectIntentRequest":{
			"source":"google","version":"2",
			"payload":{
				"user":{"profile":{"displayName":"Ada Lovelace","givenName":"Ada"}},
				"device":` + location + `,
				"inputs":[{"intent":"actions.intent.PERMISSION","arguments":[{"name":"PERMISSION"` + granted + `}]}],
				"conversation":{"conversationId":"abc","type":"ACTIVE"}
			}
		}
	}`
}

func TestDecodeRequest_PermissionGranted(t *testing.T) {
	req, err := DecodeRequest([]byte(permissionBody(`,"boolValue":true,"textValue":"true"`, true)))
	require.NoError(t, err)

	turn, err := req.Turn()
	require.NoError(t, err)
	require.Equal(t, "actions_intent_PERMISSION", turn.Intent)
	require.Equal(t, session, turn.Session)
	require.Equal(t, "resp-1", turn.ResponseID)
	require.True(t, turn.Permission.Granted)
	require.Equal(t, "Ada Lovelace", turn.Permission.DisplayName)
	require.Equal(t, &domain.Coordinates{Latitude: 1.2766, Longitude: 103.8458}, turn.Permission.Coordinates)
	require.Equal(t, domain.DataBag{"venue": "old", "count": "3"}, turn.Data)
}

func TestDecodeRequest_PermissionGrantedTextOnly(t *testing.T) {
	req, err := DecodeRequest([]byte(permissionBody(`,"textValue":"true"`, false)))
	require.NoError(t, err)

	turn, err := req.Turn()
	require.NoError(t, err)
	require.True(t, turn.Permission.Granted)
	require.Nil(t, turn.Permission.Coordinates)
}

func TestDecodeRequest_PermissionDenied(t *testing.T) {
	req, err := DecodeRequest([]byte(permissionBody(`,"textValue":"false"`, true)))
	require.NoError(t, err)

	turn, err := req.Turn()
	require.NoError(t, err)
	require.False(t, turn.Permission.Granted)
	require.Empty(t, turn.Permission.DisplayName)
	require.Nil(t, turn.Permission.Coordinates)
}

func TestDecodeRequest_ZeroCoordinatesArePresent(t *testing.T) {
	body := `{"queryResult":{"intent":{"displayName":"actions_intent_PERMISSION"}},
		"originalDetectIntentRequest":{"payload":{
			"device":{"location":{"coordinates":{"latitude":0,"longitude":0}}},
			"inputs":[{"arguments":[{"name":"PERMISSION","boolValue":true}]}]}}}`
	req, err := DecodeRequest([]byte(body))
	require.NoError(t, err)
	turn, err := req.Turn()
	require.NoError(t, err)
	require.Equal(t, &domain.Coordinates{}, turn.Permission.Coordinates)
}

func TestDecodeRequest_Invalid(t *testing.T) {
	_, err := DecodeRequest([]byte(`  `))
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")

	_, err = DecodeRequest([]byte(`not-json`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode request")
}

func TestTurn_MalformedSessionData(t *testing.T) {
	cases := []string{
		`{"data":"{broken"}`,
		`{"data":42}`,
	}
	for _, params := range cases {
		body := `{"session":"s","queryResult":{"intent":{"displayName":"response_when"},
			"outputContexts":[{"name":"s/contexts/_actions_on_google","parameters":` + params + `}]}}`
		req, err := DecodeRequest([]byte(body))
		require.NoError(t, err)
		_, err = req.Turn()
		require.Error(t, err, params)
		require.Contains(t, err.Error(), "session data")
	}
}

func TestTurn_NoSessionData(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"session":"s","queryResult":{"intent":{"displayName":"response_when"}}}`))
	require.NoError(t, err)
	turn, err := req.Turn()
	require.NoError(t, err)
	require.NotNil(t, turn.Data)
	require.Empty(t, turn.Data)
}

func TestEncodeReply_PermissionPrompt(t *testing.T) {
	reply := domain.NewReply(nil)
	reply.AskPermission(domain.PermissionRequest{
		Context:     "Hi there, I'm Nesa, to provide suggestions, ",
		Permissions: []string{domain.PermissionName, domain.PermissionDevicePreciseLocation},
	})

	resp, err := EncodeReply(session, *reply)
	require.NoError(t, err)
	g := resp.Payload.Google
	require.True(t, g.ExpectUserResponse)
	require.Len(t, g.RichResponse.Items, 1)
	require.Equal(t, permissionPlaceholder, g.RichResponse.Items[0].SimpleResponse.TextToSpeech)
	require.Equal(t, intentPermission, g.SystemIntent.Intent)

	spec, ok := g.SystemIntent.Data.(PermissionValueSpec)
	require.True(t, ok)
	require.Equal(t, permissionSpecType, spec.Type)
	require.Equal(t, []string{"NAME", "DEVICE_PRECISE_LOCATION"}, spec.Permissions)
}

func TestEncodeReply_CardAndSimpleResponses(t *testing.T) {
	reply := domain.NewReply(domain.DataBag{"userName": "Ada"})
	reply.AskSimple(domain.SimpleResponse{Speech: "speech", Text: "text"})
	reply.AddCard(domain.BasicCard{
		Text:   "card",
		Button: &domain.Button{Title: "Go", URL: "https://example.com"},
		Image:  &domain.Image{URL: "https://example.com/i.png", Alt: "img"},
	})
	reply.Ask("more")

	resp, err := EncodeReply(session, *reply)
	require.NoError(t, err)
	items := resp.Payload.Google.RichResponse.Items
	require.Len(t, items, 3)
	require.Equal(t, &SimpleResponse{TextToSpeech: "speech", DisplayText: "text"}, items[0].SimpleResponse)
	require.Equal(t, "card", items[1].BasicCard.FormattedText)
	require.Equal(t, []Button{{Title: "Go", OpenURLAction: OpenURLAction{URL: "https://example.com"}}}, items[1].BasicCard.Buttons)
	require.Equal(t, &Image{URL: "https://example.com/i.png", AccessibilityText: "img"}, items[1].BasicCard.Image)
	require.Equal(t, "more", items[2].SimpleResponse.TextToSpeech)
	require.Nil(t, resp.Payload.Google.SystemIntent)

	require.Len(t, resp.OutputContexts, 1)
	require.Equal(t, session+"/contexts/_actions_on_google", resp.OutputContexts[0].Name)
	require.Equal(t, 99, resp.OutputContexts[0].LifespanCount)
	require.JSONEq(t, `{"userName":"Ada"}`, resp.OutputContexts[0].Parameters["data"].(string))
}

func TestEncodeReply_ListKeepsOrder(t *testing.T) {
	reply := domain.NewReply(nil)
	reply.Ask("Where is it gonna be?")
	reply.AddList(domain.List{Title: "Nearby restaurants", Items: []domain.ListItem{
		{Key: "b", Title: "B", Description: "second letter"},
		{Key: "a", Title: "A"},
	}})

	resp, err := EncodeReply(session, *reply)
	require.NoError(t, err)
	si := resp.Payload.Google.SystemIntent
	require.Equal(t, intentOption, si.Intent)
	spec := si.Data.(OptionValueSpec)
	require.Equal(t, optionSpecType, spec.Type)
	require.Equal(t, "Nearby restaurants", spec.ListSelect.Title)
	require.Equal(t, "b", spec.ListSelect.Items[0].OptionInfo.Key)
	require.Equal(t, "a", spec.ListSelect.Items[1].OptionInfo.Key)
}

func TestEncodeReply_CloseEndsConversation(t *testing.T) {
	reply := domain.NewReply(nil)
	reply.Close("bye")

	resp, err := EncodeReply("", *reply)
	require.NoError(t, err)
	require.False(t, resp.Payload.Google.ExpectUserResponse)
	require.Empty(t, resp.OutputContexts)
}

func TestEncodeReply_WireShape(t *testing.T) {
	reply := domain.NewReply(nil)
	reply.Close("bye")

	resp, err := EncodeReply(session, *reply)
	require.NoError(t, err)
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"payload":{"google":{"expectUserResponse":false,"richResponse":{"items":[{"simpleResponse":{"textToSpeech":"bye"}}]}}},
		"outputContexts":[{"name":"`+session+`/contexts/_actions_on_google","lifespanCount":99,"parameters":{"data":"{}"}}]
	}`, string(raw))
}
