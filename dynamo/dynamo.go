/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dynamo

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/keyvalue/async"
	"github.com/suparena/keyvalue/datastore"
	kverrors "github.com/suparena/keyvalue/errors"
	"github.com/suparena/keyvalue/expression"
)

// Reserved item attributes carrying the entry coordinates. Entity attributes
// are flattened alongside them, so these names must not collide with entity
// fields.
const (
	attrKeyspace = "KS"
	attrID       = "KID"
)

// API is the slice of the DynamoDB client the adapter uses. Tests substitute
// an in-memory fake.
type API interface {
	GetItem(ctx context.Context, in *sdk.GetItemInput, opts ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, in *sdk.PutItemInput, opts ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, opts ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, in *sdk.QueryInput, opts ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	Scan(ctx context.Context, in *sdk.ScanInput, opts ...func(*sdk.Options)) (*sdk.ScanOutput, error)
	BatchWriteItem(ctx context.Context, in *sdk.BatchWriteItemInput, opts ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error)
}

// Adapter implements the storage adapter contract on a single DynamoDB table:
// the keyspace is the partition key, the entry id the sort key, and entity
// attributes are flattened into the item. Values read back are reconstructed
// through per-keyspace decoders registered at wiring time.
type Adapter struct {
	*datastore.Base

	client    API
	tableName string

	decMu    sync.RWMutex
	decoders map[string]Decoder

	disposeOnce sync.Once
}

// Option configures an Adapter.
type Option func(*adapterConfig)

type adapterConfig struct {
	engine datastore.QueryEngine
}

// WithEngine selects the query engine; defaults to the expression engine.
func WithEngine(engine datastore.QueryEngine) Option {
	return func(c *adapterConfig) {
		c.engine = engine
	}
}

// New creates an Adapter over the given client and table and registers it on
// its query engine.
func New(client API, tableName string, opts ...Option) *Adapter {
	cfg := adapterConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.engine == nil {
		cfg.engine = expression.New()
	}

	a := &Adapter{
		client:    client,
		tableName: tableName,
		decoders:  make(map[string]Decoder),
	}
	a.Base = datastore.NewBase(cfg.engine, a)
	return a
}

// NewClient initializes a DynamoDB client using static AWS credentials.
func NewClient(accessKey, secretKey, region string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// Put upserts value under id and returns the previously stored value, nil if
// none.
func (a *Adapter) Put(ctx context.Context, id, keyspace string, value any) *async.Task[any] {
	if err := requireArgs(id, keyspace); err != nil {
		return async.Fail[any](err)
	}
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		item, err := a.marshalItem(id, keyspace, value)
		if err != nil {
			return nil, err
		}
		out, err := a.client.PutItem(ctx, &sdk.PutItemInput{
			TableName:    &a.tableName,
			Item:         item,
			ReturnValues: types.ReturnValueAllOld,
		})
		if err != nil {
			return nil, fmt.Errorf("PutItem failed: %w", err)
		}
		if len(out.Attributes) == 0 {
			return nil, nil
		}
		return a.decodeItem(keyspace, out.Attributes)
	})
}

// Get returns the value under id, nil if absent.
func (a *Adapter) Get(ctx context.Context, id, keyspace string) *async.Task[any] {
	if err := requireArgs(id, keyspace); err != nil {
		return async.Fail[any](err)
	}
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		out, err := a.client.GetItem(ctx, &sdk.GetItemInput{
			TableName: &a.tableName,
			Key:       itemKey(id, keyspace),
		})
		if err != nil {
			return nil, fmt.Errorf("GetItem failed: %w", err)
		}
		if out.Item == nil {
			return nil, nil
		}
		return a.decodeItem(keyspace, out.Item)
	})
}

// Contains reports whether an entry exists under id. Existence is checked on
// the raw item, so it does not require a registered decoder.
func (a *Adapter) Contains(ctx context.Context, id, keyspace string) *async.Task[bool] {
	if err := requireArgs(id, keyspace); err != nil {
		return async.Fail[bool](err)
	}
	return async.Run(ctx, func(ctx context.Context) (bool, error) {
		out, err := a.client.GetItem(ctx, &sdk.GetItemInput{
			TableName: &a.tableName,
			Key:       itemKey(id, keyspace),
		})
		if err != nil {
			return false, fmt.Errorf("GetItem failed: %w", err)
		}
		return out.Item != nil, nil
	})
}

// Delete removes and returns the value under id, nil if none existed.
func (a *Adapter) Delete(ctx context.Context, id, keyspace string) *async.Task[any] {
	if err := requireArgs(id, keyspace); err != nil {
		return async.Fail[any](err)
	}
	return async.Run(ctx, func(ctx context.Context) (any, error) {
		out, err := a.client.DeleteItem(ctx, &sdk.DeleteItemInput{
			TableName:    &a.tableName,
			Key:          itemKey(id, keyspace),
			ReturnValues: types.ReturnValueAllOld,
		})
		if err != nil {
			return nil, fmt.Errorf("DeleteItem failed: %w", err)
		}
		if len(out.Attributes) == 0 {
			return nil, nil
		}
		return a.decodeItem(keyspace, out.Attributes)
	})
}

// Count returns the number of entries in the keyspace.
func (a *Adapter) Count(ctx context.Context, keyspace string) *async.Task[int64] {
	if keyspace == "" {
		return async.Fail[int64](kverrors.NewInvalidUsageError("keyspace must not be empty"))
	}
	return async.Run(ctx, func(ctx context.Context) (int64, error) {
		var total int64
		var startKey map[string]types.AttributeValue
		for {
			out, err := a.client.Query(ctx, &sdk.QueryInput{
				TableName:                 &a.tableName,
				KeyConditionExpression:    aws.String(keyCondition),
				ExpressionAttributeValues: keyConditionValues(keyspace),
				Select:                    types.SelectCount,
				ExclusiveStartKey:         startKey,
			})
			if err != nil {
				return 0, fmt.Errorf("Query count failed: %w", err)
			}
			total += int64(out.Count)
			if out.LastEvaluatedKey == nil {
				return total, nil
			}
			startKey = out.LastEvaluatedKey
		}
	})
}

// GetAllOf enumerates every value in the keyspace, paging the query in a
// background worker.
func (a *Adapter) GetAllOf(ctx context.Context, keyspace string) *async.Stream[any] {
	return async.Transform(ctx, a.Entries(ctx, keyspace), func(e datastore.Entry) (any, bool, error) {
		return e.Value, true, nil
	})
}

// Entries enumerates every (id, value) pair in the keyspace.
func (a *Adapter) Entries(ctx context.Context, keyspace string) *async.Stream[datastore.Entry] {
	if keyspace == "" {
		return async.FailStream[datastore.Entry](kverrors.NewInvalidUsageError("keyspace must not be empty"))
	}
	return async.Produce(ctx, func(ctx context.Context, yield func(datastore.Entry) bool) error {
		var startKey map[string]types.AttributeValue
		for {
			out, err := a.client.Query(ctx, &sdk.QueryInput{
				TableName:                 &a.tableName,
				KeyConditionExpression:    aws.String(keyCondition),
				ExpressionAttributeValues: keyConditionValues(keyspace),
				ExclusiveStartKey:         startKey,
			})
			if err != nil {
				return fmt.Errorf("Query failed: %w", err)
			}
			for _, item := range out.Items {
				id := stringAttr(item, attrID)
				value, err := a.decodeItem(keyspace, item)
				if err != nil {
					return err
				}
				if !yield(datastore.Entry{ID: id, Value: value}) {
					return nil
				}
			}
			if out.LastEvaluatedKey == nil {
				return nil
			}
			startKey = out.LastEvaluatedKey
		}
	})
}

// DeleteAllOf removes every entry in the keyspace via paged key queries and
// batched deletes.
func (a *Adapter) DeleteAllOf(ctx context.Context, keyspace string) *async.Task[struct{}] {
	if keyspace == "" {
		return async.Fail[struct{}](kverrors.NewInvalidUsageError("keyspace must not be empty"))
	}
	return async.Run(ctx, func(ctx context.Context) (struct{}, error) {
		var startKey map[string]types.AttributeValue
		for {
			out, err := a.client.Query(ctx, &sdk.QueryInput{
				TableName:                 &a.tableName,
				KeyConditionExpression:    aws.String(keyCondition),
				ExpressionAttributeValues: keyConditionValues(keyspace),
				ProjectionExpression:      aws.String(attrKeyspace + ", " + attrID),
				ExclusiveStartKey:         startKey,
			})
			if err != nil {
				return struct{}{}, fmt.Errorf("Query keys failed: %w", err)
			}
			if err := a.batchDelete(ctx, out.Items); err != nil {
				return struct{}{}, err
			}
			if out.LastEvaluatedKey == nil {
				return struct{}{}, nil
			}
			startKey = out.LastEvaluatedKey
		}
	})
}

// Clear removes every keyspace by scanning the whole table. Intended for
// development and test tables; production tables are better dropped.
func (a *Adapter) Clear() {
	ctx := context.Background()
	var startKey map[string]types.AttributeValue
	for {
		out, err := a.client.Scan(ctx, &sdk.ScanInput{
			TableName:            &a.tableName,
			ProjectionExpression: aws.String(attrKeyspace + ", " + attrID),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return
		}
		if err := a.batchDelete(ctx, out.Items); err != nil {
			return
		}
		if out.LastEvaluatedKey == nil {
			return
		}
		startKey = out.LastEvaluatedKey
	}
}

// Dispose releases nothing: the client is owned by the caller. It runs at
// most once.
func (a *Adapter) Dispose() error {
	a.disposeOnce.Do(func() {})
	return nil
}

const maxBatchDelete = 25

func (a *Adapter) batchDelete(ctx context.Context, keys []map[string]types.AttributeValue) error {
	for start := 0; start < len(keys); start += maxBatchDelete {
		end := start + maxBatchDelete
		if end > len(keys) {
			end = len(keys)
		}
		writes := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			writes = append(writes, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{
					attrKeyspace: key[attrKeyspace],
					attrID:       key[attrID],
				}},
			})
		}
		if len(writes) == 0 {
			continue
		}
		_, err := a.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{a.tableName: writes},
		})
		if err != nil {
			return fmt.Errorf("BatchWriteItem failed: %w", err)
		}
	}
	return nil
}

const keyCondition = attrKeyspace + " = :ks"

func keyConditionValues(keyspace string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		":ks": &types.AttributeValueMemberS{Value: keyspace},
	}
}

func itemKey(id, keyspace string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrKeyspace: &types.AttributeValueMemberS{Value: keyspace},
		attrID:       &types.AttributeValueMemberS{Value: id},
	}
}

func (a *Adapter) marshalItem(id, keyspace string, value any) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	item[attrKeyspace] = &types.AttributeValueMemberS{Value: keyspace}
	item[attrID] = &types.AttributeValueMemberS{Value: id}
	return item, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func requireArgs(id, keyspace string) error {
	if id == "" {
		return kverrors.NewInvalidUsageError("id must not be empty")
	}
	if keyspace == "" {
		return kverrors.NewInvalidUsageError("keyspace must not be empty")
	}
	return nil
}

var _ datastore.Adapter = (*Adapter)(nil)
