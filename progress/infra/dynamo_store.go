package infra

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"progress-sync/progress/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI é o subconjunto do cliente DynamoDB usado pelo DynamoStore.
// *dynamodb.Client satisfaz esta interface.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// dynamoItem é o formato do item na tabela (chave de partição "pk").
// ttl em epoch seconds; itens com ttl <= agora são tratados como ausentes,
// já que o DynamoDB apaga itens expirados com atraso.
type dynamoItem struct {
	PK        string `dynamodbav:"pk"`
	Value     string `dynamodbav:"value"`
	Version   int64  `dynamodbav:"version"`
	TTL       int64  `dynamodbav:"ttl,omitempty"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// DynamoStore implementa domain.Store sobre uma tabela DynamoDB.
//
// Leituras são fortemente consistentes (mesma região). Escritas condicionais usam
// ConditionExpression sobre "version".
type DynamoStore struct {
	client DynamoAPI
	table  string
	now    func() time.Time
}

func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table, now: time.Now}
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	return err
}

func (s *DynamoStore) pk(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: key},
	}
}

// Get implementa domain.Store.
func (s *DynamoStore) Get(ctx context.Context, key string) (domain.Entry, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.pk(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.Entry{}, fmt.Errorf("dynamodb get: %w", err)
	}
	if out.Item == nil {
		return domain.Entry{}, domain.ErrNotFound
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return domain.Entry{}, fmt.Errorf("dynamodb get: unmarshal: %w", err)
	}
	if item.TTL != 0 && item.TTL <= s.now().Unix() {
		return domain.Entry{}, domain.ErrNotFound
	}
	return domain.Entry{Value: []byte(item.Value), Version: item.Version}, nil
}

// Set implementa domain.Store.
func (s *DynamoStore) Set(ctx context.Context, key string, value []byte, opts domain.SetOptions) error {
	now := s.now()

	names := map[string]string{
		"#value":      "value",
		"#version":    "version",
		"#updated_at": "updated_at",
		"#ttl":        "ttl",
	}
	values := map[string]types.AttributeValue{
		":value":      &types.AttributeValueMemberS{Value: string(value)},
		":one":        &types.AttributeValueMemberN{Value: "1"},
		":updated_at": &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
	}

	update := "SET #value = :value, #updated_at = :updated_at"
	if opts.TTL > 0 {
		// arredonda para cima: nunca expira antes do TTL pedido
		expires := now.Add(opts.TTL + time.Second - 1).Unix()
		values[":ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expires, 10)}
		update += ", #ttl = :ttl"
	} else {
		update += " REMOVE #ttl"
	}
	update += " ADD #version :one"

	in := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.pk(key),
		UpdateExpression:          aws.String(update),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}

	if opts.IfVersion != nil {
		if *opts.IfVersion == 0 {
			// ausente ou expirado conta como "não existe"
			in.ConditionExpression = aws.String("attribute_not_exists(pk) OR (attribute_exists(#ttl) AND #ttl <= :now)")
			values[":now"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)}
		} else {
			in.ConditionExpression = aws.String("#version = :expected_version")
			values[":expected_version"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(*opts.IfVersion, 10)}
		}
	}

	if _, err := s.client.UpdateItem(ctx, in); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return domain.ErrVersionConflict
		}
		return fmt.Errorf("dynamodb update: %w", err)
	}
	return nil
}
