package usecase

import (
	"context"
	"strconv"

	"nesa-fulfillment/internal/domain"
)

const (
	welcomeContext   = "Hi there, I'm Nesa, to provide suggestions, "
	anonymousProceed = "Ok, no worries. Let's proceed as anonymous without suggested places. Trigger a 'meeting'."
	proceedMeeting   = "Let's proceed with a 'meeting'."
	askWho           = "Sure, who's going?"
	askWhere         = "Where is it gonna be?"
	askWhen          = "Great choice! When is it gonna be?"
	allSet           = "We're all set! Sending invitation... Invitation sent! Give your friends a few moments to respond."

	suggestionsCardText = "See what suggestions Google Maps have for you by clicking the link below"
	suggestionsButton   = "Goto Google MAP API responses"
	mapsImageURL        = "https://upload.wikimedia.org/wikipedia/en/thumb/2/23/GoogleMaps.svg/250px-GoogleMaps.svg.png"

	underDevelopmentText = "I'm under development to improve my services. Please try again later - Nesa."
	underConstructionURL = "http://www.ocamljava.org/img/underconstruction.png"

	defaultVenue = "Yuan Cheng Fried Carrot Cake"
)

var nearbyFriends = domain.List{
	Title: "Nearby friends",
	Items: []domain.ListItem{
		{Key: "Invite: John Doe", Title: "John Doe", Description: "mahari738@gmail.com"},
		{Key: "Invite: Bobby Bobinson", Title: "Bobby Bobinson", Description: "matthiaslwm@gmail.com"},
	},
}

var nearbyRestaurants = domain.List{
	Title: "Nearby restaurants",
	Items: []domain.ListItem{
		{Key: "Restaurant: Yuan Cheng Fried Carrot Cake", Title: "Yuan Cheng Fried Carrot Cake", Description: "79 Telok Blangah Dr #01-33, Singapore 100079 Telok Blangah Drive, Singapore"},
		{Key: "Restaurant: Keng Eng Kee Seafood", Title: "Keng Eng Kee Seafood", Description: "124 Bukit Merah Lane 1, #01-136"},
	},
}

func (s *FulfillmentService) welcome(_ context.Context, _ domain.Turn, reply *domain.Reply) {
	reply.AskPermission(domain.PermissionRequest{
		Context:     welcomeContext,
		Permissions: []string{domain.PermissionName, domain.PermissionDevicePreciseLocation},
	})
}

func (s *FulfillmentService) permission(ctx context.Context, turn domain.Turn, reply *domain.Reply) {
	granted := turn.Permission
	if !granted.Granted {
		reply.Ask(anonymousProceed)
		return
	}

	lat, lng := domain.Undefined, domain.Undefined
	if c := granted.Coordinates; c != nil {
		lat = formatCoordinate(c.Latitude)
		lng = formatCoordinate(c.Longitude)
	}
	name := granted.DisplayName
	reply.Data[domain.DataUserName] = name
	reply.Data[domain.DataLocationLat] = lat
	reply.Data[domain.DataLocationLng] = lng

	s.queryPlaces(ctx, turn.Session, lat, lng)

	reply.AskSimple(domain.SimpleResponse{
		Speech: "Thanks " + name + ". We are querying based on your location.",
		Text:   "Thanks " + name + ". We are querying based on your location. The link is generated below. ",
	})
	reply.AddCard(domain.BasicCard{
		Text:   suggestionsCardText,
		Button: &domain.Button{Title: suggestionsButton, URL: s.places.QueryURL(lat, lng)},
		Image:  &domain.Image{URL: mapsImageURL, Alt: "Google Maps"},
	})
	reply.Ask(proceedMeeting)
}

func (s *FulfillmentService) scheduleEvent(_ context.Context, _ domain.Turn, reply *domain.Reply) {
	reply.Ask(askWho)
	reply.AddList(nearbyFriends)
	reply.AddCard(domain.BasicCard{
		Text:  underDevelopmentText,
		Image: &domain.Image{URL: underConstructionURL, Alt: "Under Construction"},
	})
}

func (s *FulfillmentService) names(_ context.Context, _ domain.Turn, reply *domain.Reply) {
	reply.Ask(askWhere)
	reply.AddList(nearbyRestaurants)
	reply.Data[domain.DataVenue] = defaultVenue
}

func (s *FulfillmentService) location(_ context.Context, _ domain.Turn, reply *domain.Reply) {
	reply.Ask(askWhen)
}

func (s *FulfillmentService) when(_ context.Context, _ domain.Turn, reply *domain.Reply) {
	reply.Close(allSet)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
