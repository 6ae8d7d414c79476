package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the subset of the DynamoDB API the registry uses.
// *dynamodb.Client satisfies it.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// ErrVersionExists is returned by Publish when the version has already been
// published by another writer.
var ErrVersionExists = errors.New("model version already published")

// ErrNoVersions is returned by Latest when no version of the model has been
// published yet.
var ErrNoVersions = errors.New("no published model versions")

// Version is one published entry of a named model.
type Version struct {
	Model    string
	Version  uint64
	Document string // document name in the Store
}

// Registry records which document is the current published version of a named
// model. Versions are monotonically increasing per model, and publishing uses
// DynamoDB conditional writes so concurrent publishers cannot overwrite each
// other.
//
// Table schema:
//   - Partition key: model (string)
//   - Sort key: version (number)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name featprep-models \
//	  --attribute-definitions AttributeName=model,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=model,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Registry struct {
	client    DDBClient
	tableName string
}

// NewRegistry creates a registry backed by the given DynamoDB table.
func NewRegistry(client DDBClient, tableName string) *Registry {
	return &Registry{
		client:    client,
		tableName: tableName,
	}
}

// Publish records document as the next version of model. It returns the
// version number assigned, or ErrVersionExists if a concurrent publisher
// claimed the same version first.
func (r *Registry) Publish(ctx context.Context, model, document string) (uint64, error) {
	latest, err := r.latestVersion(ctx, model)
	if err != nil {
		return 0, err
	}

	next := latest + 1

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]ddbtypes.AttributeValue{
			"model":    &ddbtypes.AttributeValueMemberS{Value: model},
			"version":  &ddbtypes.AttributeValueMemberN{Value: strconv.FormatUint(next, 10)},
			"document": &ddbtypes.AttributeValueMemberS{Value: document},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, fmt.Errorf("%w: %s version %d", ErrVersionExists, model, next)
		}
		return 0, fmt.Errorf("failed to publish model version: %w", err)
	}

	return next, nil
}

// Latest returns the most recently published version of model.
func (r *Registry) Latest(ctx context.Context, model string) (Version, error) {
	latest, err := r.latestItem(ctx, model)
	if err != nil {
		return Version{}, err
	}
	if latest == nil {
		return Version{}, fmt.Errorf("%w: %s", ErrNoVersions, model)
	}
	return itemToVersion(model, latest)
}

// Unpublish removes a published version. Removing an absent version is not an
// error.
func (r *Registry) Unpublish(ctx context.Context, model string, version uint64) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]ddbtypes.AttributeValue{
			"model":   &ddbtypes.AttributeValueMemberS{Value: model},
			"version": &ddbtypes.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
		},
	})
	return err
}

// Lookup returns a specific published version of model.
func (r *Registry) Lookup(ctx context.Context, model string, version uint64) (Version, error) {
	resp, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]ddbtypes.AttributeValue{
			"model":   &ddbtypes.AttributeValueMemberS{Value: model},
			"version": &ddbtypes.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
		},
	})
	if err != nil {
		return Version{}, fmt.Errorf("failed to look up model version: %w", err)
	}
	if resp.Item == nil {
		return Version{}, fmt.Errorf("%w: %s version %d", ErrNoVersions, model, version)
	}
	return itemToVersion(model, resp.Item)
}

func (r *Registry) latestVersion(ctx context.Context, model string) (uint64, error) {
	item, err := r.latestItem(ctx, model)
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, nil
	}
	v, err := itemToVersion(model, item)
	if err != nil {
		return 0, err
	}
	return v.Version, nil
}

func (r *Registry) latestItem(ctx context.Context, model string) (map[string]ddbtypes.AttributeValue, error) {
	resp, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("model = :model"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":model": &ddbtypes.AttributeValueMemberS{Value: model},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query model versions: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	return resp.Items[0], nil
}

func itemToVersion(model string, item map[string]ddbtypes.AttributeValue) (Version, error) {
	versionAttr, ok := item["version"].(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return Version{}, errors.New("invalid version attribute")
	}
	docAttr, ok := item["document"].(*ddbtypes.AttributeValueMemberS)
	if !ok {
		return Version{}, errors.New("invalid document attribute")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("failed to parse version: %w", err)
	}
	return Version{Model: model, Version: version, Document: docAttr.Value}, nil
}
