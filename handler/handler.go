package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"nesa-fulfillment/internal/dialogflow"
	"nesa-fulfillment/internal/domain"
	"nesa-fulfillment/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type Fulfiller interface {
	Fulfill(ctx context.Context, turn domain.Turn) (domain.Reply, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler adapts API Gateway proxy events carrying Dialogflow webhook calls
// to the fulfillment use case.
type Handler struct {
	fulfiller Fulfiller
	logger    *slog.Logger
}

func NewHandler(f Fulfiller) (*Handler, error) {
	if f == nil {
		return nil, errors.New("handler: fulfiller must not be nil")
	}
	return &Handler{fulfiller: f, logger: slog.Default()}, nil
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = newUUID()
	}
	log := h.logger.With("correlation_id", correlationID)

	body, err := requestBody(event)
	if err != nil {
		log.Warn("undecodable request body", "err", err)
		return errorJSON(http.StatusBadRequest, usecase.ErrorInvalidInput, correlationID), nil
	}
	req, err := dialogflow.DecodeRequest(body)
	if err != nil {
		log.Warn("invalid webhook request", "err", err)
		return errorJSON(http.StatusBadRequest, usecase.ErrorInvalidInput, correlationID), nil
	}
	turn, err := req.Turn()
	if err != nil {
		log.Warn("invalid webhook request", "session", req.Session, "err", err)
		return errorJSON(http.StatusBadRequest, usecase.ErrorInvalidInput, correlationID), nil
	}

	reply, err := h.fulfiller.Fulfill(ctx, turn)
	if err != nil {
		status, code := mapError(err)
		log.Error("fulfillment failed", "intent", turn.Intent, "session", turn.Session, "status", status, "err", err)
		return errorJSON(status, code, correlationID), nil
	}

	resp, err := dialogflow.EncodeReply(turn.Session, reply)
	if err != nil {
		log.Error("encode webhook response", "intent", turn.Intent, "err", err)
		return errorJSON(http.StatusInternalServerError, usecase.ErrorInternal, correlationID), nil
	}
	out, err := json.Marshal(resp)
	if err != nil {
		log.Error("marshal webhook response", "intent", turn.Intent, "err", err)
		return errorJSON(http.StatusInternalServerError, usecase.ErrorInternal, correlationID), nil
	}

	log.Info("turn fulfilled", "intent", turn.Intent, "session", turn.Session, "end_conversation", reply.EndConversation)
	return jsonResponse(http.StatusOK, string(out), correlationID), nil
}

func requestBody(event events.APIGatewayProxyRequest) ([]byte, error) {
	if !event.IsBase64Encoded {
		return []byte(event.Body), nil
	}
	return base64.StdEncoding.DecodeString(event.Body)
}

func mapError(err error) (int, usecase.ErrorCode) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, usecase.ErrorInternal
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput, usecase.ErrorUnknownIntent:
		return http.StatusBadRequest, ucErr.Code
	default:
		return http.StatusInternalServerError, usecase.ErrorInternal
	}
}

func errorJSON(status int, code usecase.ErrorCode, correlationID string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(errorResponse{Error: string(code)})
	return jsonResponse(status, string(body), correlationID)
}

func jsonResponse(status int, body, correlationID string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: body,
	}
}

// headerValue looks a header up case-insensitively; API Gateway forwards
// whatever casing the caller used.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var newUUID = func() string {
	return uuid.NewString()
}
