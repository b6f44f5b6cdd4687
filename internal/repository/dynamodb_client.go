package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"nesa-fulfillment/internal/domain"
)

const (
	skPrefixTurn = "TURN#"
	ttlDuration  = 30 * 24 * time.Hour // 30-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client writes the turn log. The table is write-only from the webhook's
// point of view; nothing here is read back to build a reply.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

// sessionPK returns the DynamoDB partition key for a platform session.
func sessionPK(session string) string {
	return "SESSION#" + session
}

func turnSK(ts time.Time) string {
	return skPrefixTurn + ts.UTC().Format(time.RFC3339Nano)
}

// RecordTurn appends one fulfilled turn to the log.
func (c *Client) RecordTurn(ctx context.Context, session, intent, responseID string, endConversation bool) error {
	rec := c.NewTurnRecord(session, intent, responseID, endConversation)
	if err := c.PutTurn(ctx, rec); err != nil {
		return fmt.Errorf("repository: RecordTurn: %w", err)
	}
	return nil
}

// PutTurn persists a record; an existing item with the same key is never
// overwritten.
func (c *Client) PutTurn(ctx context.Context, rec domain.TurnRecord) error {
	if strings.TrimSpace(rec.Session) == "" {
		return errors.New("repository: PutTurn: session is required")
	}
	if rec.PK == "" || rec.SK == "" {
		return errors.New("repository: PutTurn: PK and SK are required")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                turnItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: PutTurn: %w", err)
	}
	return nil
}

// NewTurnRecord constructs a TurnRecord with PK/SK/TTL set from the session
// and the current time.
func (c *Client) NewTurnRecord(session, intent, responseID string, endConversation bool) domain.TurnRecord {
	now := c.now().UTC()
	return domain.TurnRecord{
		PK:              sessionPK(session),
		SK:              turnSK(now),
		Session:         session,
		Intent:          intent,
		ResponseID:      responseID,
		EndConversation: endConversation,
		CreatedAt:       now.Format(time.RFC3339),
		TTL:             now.Add(ttlDuration).Unix(),
	}
}

func turnItem(rec domain.TurnRecord) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":              &types.AttributeValueMemberS{Value: rec.PK},
		"SK":              &types.AttributeValueMemberS{Value: rec.SK},
		"session":         &types.AttributeValueMemberS{Value: rec.Session},
		"intent":          &types.AttributeValueMemberS{Value: rec.Intent},
		"responseId":      &types.AttributeValueMemberS{Value: rec.ResponseID},
		"endConversation": &types.AttributeValueMemberBOOL{Value: rec.EndConversation},
		"createdAt":       &types.AttributeValueMemberS{Value: rec.CreatedAt},
		"ttl":             &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", rec.TTL)},
	}
}
