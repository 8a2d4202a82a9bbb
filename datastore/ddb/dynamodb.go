/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/suparena/entityodm/datastore"
	odmerrors "github.com/suparena/entityodm/errors"
	"github.com/suparena/entityodm/storagemodels"
	"go.uber.org/zap"
)

// Key attribute names of the single table. PK holds the collection name and
// SK the record identifier.
const (
	AttrPK = "PK"
	AttrSK = "SK"
)

// API is the subset of the DynamoDB client used by the datastore.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *sdk.BatchWriteItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error)
}

// Config holds the connection settings of a DynamoDB datastore.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Table     string
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string
}

// DataStore implements datastore.Connection on a single DynamoDB table.
type DataStore struct {
	client       API
	tableName    string
	logger       *zap.Logger
	maxRetries   int
	retryBackoff time.Duration
	idFunc       func() string
}

var _ datastore.Connection = (*DataStore)(nil)

// Option configures a DataStore.
type Option func(*DataStore)

// WithLogger sets the logger of the datastore.
func WithLogger(logger *zap.Logger) Option {
	return func(d *DataStore) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRetries sets how often unprocessed batch writes are resubmitted and the
// base delay between attempts.
func WithRetries(maxRetries int, backoff time.Duration) Option {
	return func(d *DataStore) {
		d.maxRetries = maxRetries
		d.retryBackoff = backoff
	}
}

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are used
// when both keys are set; otherwise the default AWS credential chain applies.
func NewDynamoDBClient(ctx context.Context, cfg Config) (*sdk.Client, error) {
	if cfg.Region == "" {
		return nil, odmerrors.NewValidationError("region", "aws region is required")
	}

	loadOptions := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOptions = append(loadOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	var opts []func(*sdk.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *sdk.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	return sdk.NewFromConfig(awsCfg, opts...), nil
}

// Open connects to the table named in cfg.
func Open(ctx context.Context, cfg Config, opts ...Option) (*DataStore, error) {
	if cfg.Table == "" {
		return nil, odmerrors.NewValidationError("table", "dynamodb table name is required")
	}
	client, err := NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d := New(client, cfg.Table, opts...)
	d.logger.Info("DynamoDB datastore initialized",
		zap.String("table", cfg.Table),
		zap.String("region", cfg.Region),
		zap.String("endpoint", cfg.Endpoint))
	return d, nil
}

// New creates a datastore on an existing client.
func New(client API, tableName string, opts ...Option) *DataStore {
	d := &DataStore{
		client:       client,
		tableName:    tableName,
		logger:       zap.NewNop(),
		maxRetries:   5,
		retryBackoff: 50 * time.Millisecond,
		idFunc:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Collection returns the named collection, stored under partition key name.
func (d *DataStore) Collection(name string) datastore.Collection {
	return &collection{store: d, name: name}
}

type collection struct {
	store *DataStore
	name  string
}

func (c *collection) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: c.name},
		AttrSK: &types.AttributeValueMemberS{Value: id},
	}
}

func (c *collection) Get(ctx context.Context, id string) (storagemodels.Snapshot, error) {
	d := c.store
	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &d.tableName,
		Key:            c.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return storagemodels.Snapshot{}, err
	}
	if out.Item == nil {
		return storagemodels.Snapshot{ID: id}, nil
	}

	data, err := unmarshalItem(out.Item)
	if err != nil {
		return storagemodels.Snapshot{}, err
	}
	return storagemodels.Snapshot{ID: id, Data: data, Exists: true}, nil
}

// Add stores data under a generated identifier. The write is conditional so
// an identifier collision never overwrites an existing record.
func (c *collection) Add(ctx context.Context, data map[string]interface{}) (string, error) {
	d := c.store
	id := d.idFunc()

	item, err := marshalItem(data)
	if err != nil {
		return "", err
	}
	for k, v := range c.key(id) {
		item[k] = v
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:                &d.tableName,
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#sk)"),
		ExpressionAttributeNames: map[string]string{"#sk": AttrSK},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return "", odmerrors.NewAlreadyExistsError(c.name, id)
		}
		return "", err
	}
	return id, nil
}

// Merge sets the given top-level attributes, creating the item when missing.
func (c *collection) Merge(ctx context.Context, id string, data map[string]interface{}) error {
	d := c.store
	input := &sdk.UpdateItemInput{
		TableName: &d.tableName,
		Key:       c.key(id),
	}

	if len(data) > 0 {
		updateExpr, names, values, err := buildUpdateExpression(data)
		if err != nil {
			return err
		}
		input.UpdateExpression = &updateExpr
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	_, err := d.client.UpdateItem(ctx, input)
	return err
}

func (c *collection) Delete(ctx context.Context, id string) error {
	d := c.store
	_, err := d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &d.tableName,
		Key:       c.key(id),
	})
	return err
}

func (c *collection) Query() datastore.Query {
	return &query{coll: c}
}

func (c *collection) Batch() datastore.Batch {
	return &batch{coll: c}
}

// checkKeyFields rejects record fields that would shadow the key attributes.
func checkKeyFields(data map[string]interface{}) error {
	for _, attr := range []string{AttrPK, AttrSK} {
		if _, ok := data[attr]; ok {
			return odmerrors.NewValidationError(attr, "is a reserved key attribute")
		}
	}
	return nil
}

// marshalItem converts record data into DynamoDB attributes.
func marshalItem(data map[string]interface{}) (map[string]types.AttributeValue, error) {
	if err := checkKeyFields(data); err != nil {
		return nil, err
	}
	item, err := attributevalue.MarshalMap(normalize(data))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	if item == nil {
		item = make(map[string]types.AttributeValue)
	}
	return item, nil
}

// unmarshalItem converts an item into record data without the key attributes.
func unmarshalItem(item map[string]types.AttributeValue) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := attributevalue.UnmarshalMap(item, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	if data == nil {
		data = make(map[string]interface{})
	}
	delete(data, AttrPK)
	delete(data, AttrSK)
	return data, nil
}
