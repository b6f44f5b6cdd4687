/*
Package dialogflow converts Dialogflow v2 fulfillment webhook payloads with
an Actions on Google surface into domain turns, and domain replies back into
webhook responses.

Conversation data is carried in the "_actions_on_google" output context,
the same slot the assistant platform uses for its own session data, so the
webhook itself stays stateless.
*/
package dialogflow
