package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"writer-example/internal/domain"
)

const (
	skPrefixTurn = "TURN#"
	skMeta       = "META#"
	ttlDuration  = 30 * 24 * time.Hour // 30-day TTL

	// DynamoDB caps a transaction at 100 items; one is the meta record.
	maxTurnsPerRun = 99
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Client stores run transcripts in a single DynamoDB table.
//
// Layout per run:
//
//	PK=RUN#<id> SK=META#        model, status, reason, createdAt, turns
//	PK=RUN#<id> SK=TURN#<nnn>   role, content (request messages, then the reply)
type Client struct {
	api       dynamodbAPI
	tableName string
}

func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

func runPK(runID string) string {
	return "RUN#" + runID
}

// turnSK zero-pads the index so lexical order matches turn order.
func turnSK(i int) string {
	return fmt.Sprintf("%s%03d", skPrefixTurn, i)
}

func ttlValue(from time.Time) int64 {
	return from.Add(ttlDuration).Unix()
}

// SaveRun writes the transcript's turns and meta record in one transaction.
// A reply, when present, is stored as the final assistant turn.
func (c *Client) SaveRun(ctx context.Context, t domain.Transcript) error {
	if strings.TrimSpace(t.RunID) == "" {
		return errors.New("repository: SaveRun: run id is required")
	}

	turns := transcriptTurns(t)
	if len(turns) > maxTurnsPerRun {
		return fmt.Errorf("repository: SaveRun: %d turns exceeds limit of %d", len(turns), maxTurnsPerRun)
	}

	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	ttl := ttlValue(createdAt)

	items := make([]types.TransactWriteItem, 0, len(turns)+1)
	for i, m := range turns {
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(c.tableName),
				Item:                turnItem(t.RunID, i, m, ttl),
				ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
			},
		})
	}
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName: aws.String(c.tableName),
			Item:      metaItem(t, len(turns), createdAt, ttl),
		},
	})

	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return fmt.Errorf("repository: SaveRun: %w", err)
	}
	return nil
}

// GetRun reads a transcript back. The reply is the trailing assistant turn of
// a complete run.
func (c *Client) GetRun(ctx context.Context, runID string) (domain.Transcript, error) {
	if strings.TrimSpace(runID) == "" {
		return domain.Transcript{}, errors.New("repository: GetRun: run id is required")
	}

	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: runPK(runID)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("repository: GetRun query: %w", err)
	}
	if out == nil || len(out.Items) == 0 {
		return domain.Transcript{}, fmt.Errorf("repository: GetRun: run %q not found", runID)
	}

	t := domain.Transcript{RunID: runID}
	type indexed struct {
		sk  string
		msg domain.ChatMessage
	}
	var turns []indexed
	metaFound := false

	for _, item := range out.Items {
		sk, err := strAttr(item, "SK")
		if err != nil {
			return domain.Transcript{}, fmt.Errorf("repository: GetRun unmarshal: %w", err)
		}
		switch {
		case sk == skMeta:
			if err := applyMeta(&t, item); err != nil {
				return domain.Transcript{}, fmt.Errorf("repository: GetRun decode meta: %w", err)
			}
			metaFound = true
		case strings.HasPrefix(sk, skPrefixTurn):
			msg, err := itemToTurn(item)
			if err != nil {
				return domain.Transcript{}, fmt.Errorf("repository: GetRun unmarshal: %w", err)
			}
			turns = append(turns, indexed{sk: sk, msg: msg})
		}
	}
	if !metaFound {
		return domain.Transcript{}, fmt.Errorf("repository: GetRun: run %q has no meta record", runID)
	}

	sort.Slice(turns, func(i, j int) bool { return turns[i].sk < turns[j].sk })
	for _, tr := range turns {
		t.Messages = append(t.Messages, tr.msg)
	}
	if t.Status == domain.RunStatusComplete && len(t.Messages) > 0 {
		last := t.Messages[len(t.Messages)-1]
		if last.Role == domain.RoleAssistant {
			t.Reply = last.Content
			t.Messages = t.Messages[:len(t.Messages)-1]
		}
	}
	return t, nil
}

func transcriptTurns(t domain.Transcript) []domain.ChatMessage {
	turns := make([]domain.ChatMessage, 0, len(t.Messages)+1)
	turns = append(turns, t.Messages...)
	if t.Status == domain.RunStatusComplete {
		turns = append(turns, domain.ChatMessage{Role: domain.RoleAssistant, Content: t.Reply})
	}
	return turns
}

func turnItem(runID string, i int, m domain.ChatMessage, ttl int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":      &types.AttributeValueMemberS{Value: runPK(runID)},
		"SK":      &types.AttributeValueMemberS{Value: turnSK(i)},
		"runId":   &types.AttributeValueMemberS{Value: runID},
		"role":    &types.AttributeValueMemberS{Value: string(m.Role)},
		"content": &types.AttributeValueMemberS{Value: m.Content},
		"ttl":     &types.AttributeValueMemberN{Value: strconv.FormatInt(ttl, 10)},
	}
}

func metaItem(t domain.Transcript, turns int, createdAt time.Time, ttl int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: runPK(t.RunID)},
		"SK":        &types.AttributeValueMemberS{Value: skMeta},
		"runId":     &types.AttributeValueMemberS{Value: t.RunID},
		"model":     &types.AttributeValueMemberS{Value: t.Model},
		"status":    &types.AttributeValueMemberS{Value: string(t.Status)},
		"reason":    &types.AttributeValueMemberS{Value: t.Reason},
		"createdAt": &types.AttributeValueMemberS{Value: createdAt.UTC().Format(time.RFC3339Nano)},
		"turns":     &types.AttributeValueMemberN{Value: strconv.Itoa(turns)},
		"ttl":       &types.AttributeValueMemberN{Value: strconv.FormatInt(ttl, 10)},
	}
}

func applyMeta(t *domain.Transcript, item map[string]types.AttributeValue) error {
	model, err := strAttr(item, "model")
	if err != nil {
		return err
	}
	status, err := strAttr(item, "status")
	if err != nil {
		return err
	}
	reason, _ := strAttr(item, "reason") // allow empty
	created, err := strAttr(item, "createdAt")
	if err != nil {
		return err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return fmt.Errorf("repository: parse attribute %q: %w", "createdAt", err)
	}

	t.Model = model
	t.Status = domain.RunStatus(status)
	t.Reason = reason
	t.CreatedAt = createdAt
	return nil
}

func itemToTurn(item map[string]types.AttributeValue) (domain.ChatMessage, error) {
	role, err := strAttr(item, "role")
	if err != nil {
		return domain.ChatMessage{}, err
	}
	content, err := strAttr(item, "content")
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return domain.ChatMessage{Role: domain.Role(role), Content: content}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
