package s3

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDDBClient is an in-memory DynamoDB mock for testing.
type fakeDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]ddbtypes.AttributeValue // model:version -> item
}

func newFakeDDBClient() *fakeDDBClient {
	return &fakeDDBClient{items: make(map[string]map[string]ddbtypes.AttributeValue)}
}

func itemKey(item map[string]ddbtypes.AttributeValue) string {
	model := item["model"].(*ddbtypes.AttributeValueMemberS).Value
	version := item["version"].(*ddbtypes.AttributeValueMemberN).Value
	return model + ":" + version
}

func (m *fakeDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := itemKey(params.Item)

	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &ddbtypes.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *fakeDDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	model := params.ExpressionAttributeValues[":model"].(*ddbtypes.AttributeValueMemberS).Value

	var items []map[string]ddbtypes.AttributeValue
	for _, item := range m.items {
		if item["model"].(*ddbtypes.AttributeValueMemberS).Value == model {
			items = append(items, item)
		}
	}

	// Sort descending by numeric version
	for i := 0; i < len(items)-1; i++ {
		for j := i + 1; j < len(items); j++ {
			vi := numVersion(items[i])
			vj := numVersion(items[j])
			if vi < vj {
				items[i], items[j] = items[j], items[i]
			}
		}
	}

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func numVersion(item map[string]ddbtypes.AttributeValue) int {
	s := item["version"].(*ddbtypes.AttributeValueMemberN).Value
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

func (m *fakeDDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[itemKey(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (m *fakeDDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, itemKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestRegistry_PublishLatest(t *testing.T) {
	reg := NewRegistry(newFakeDDBClient(), "featprep-models")
	ctx := context.Background()

	v, err := reg.Publish(ctx, "cell-classifier", "cell-classifier-v1.fpm")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	v, err = reg.Publish(ctx, "cell-classifier", "cell-classifier-v2.fpm")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)

	latest, err := reg.Latest(ctx, "cell-classifier")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), latest.Version)
	assert.Equal(t, "cell-classifier-v2.fpm", latest.Document)
}

func TestRegistry_LatestEmpty(t *testing.T) {
	reg := NewRegistry(newFakeDDBClient(), "featprep-models")

	_, err := reg.Latest(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrNoVersions)
}

func TestRegistry_PublishConflict(t *testing.T) {
	client := newFakeDDBClient()
	reg := NewRegistry(client, "featprep-models")
	ctx := context.Background()

	_, err := reg.Publish(ctx, "m", "doc-1.fpm")
	require.NoError(t, err)

	// Simulate a concurrent publisher claiming version 2 between our
	// latest-version read and the conditional write.
	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String("featprep-models"),
		Item: map[string]ddbtypes.AttributeValue{
			"model":    &ddbtypes.AttributeValueMemberS{Value: "m"},
			"version":  &ddbtypes.AttributeValueMemberN{Value: "2"},
			"document": &ddbtypes.AttributeValueMemberS{Value: "other.fpm"},
		},
	})
	require.NoError(t, err)

	// Publishing version 2 again must fail the conditional write.
	conflict := NewRegistry(&frozenQueryClient{inner: client}, "featprep-models")
	_, err = conflict.Publish(ctx, "m", "doc-2.fpm")
	assert.ErrorIs(t, err, ErrVersionExists)
}

// frozenQueryClient reports one version behind the truth, forcing Publish to
// race an already-claimed version number.
type frozenQueryClient struct {
	inner *fakeDDBClient
}

func (f *frozenQueryClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	out, err := f.inner.Query(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(out.Items) > 0 {
		out.Items = out.Items[1:]
	}
	return out, nil
}

func (f *frozenQueryClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return f.inner.PutItem(ctx, params, optFns...)
}

func (f *frozenQueryClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return f.inner.GetItem(ctx, params, optFns...)
}

func (f *frozenQueryClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return f.inner.DeleteItem(ctx, params, optFns...)
}

func TestRegistry_LookupUnpublish(t *testing.T) {
	reg := NewRegistry(newFakeDDBClient(), "featprep-models")
	ctx := context.Background()

	_, err := reg.Publish(ctx, "m", "doc-1.fpm")
	require.NoError(t, err)
	_, err = reg.Publish(ctx, "m", "doc-2.fpm")
	require.NoError(t, err)

	got, err := reg.Lookup(ctx, "m", 1)
	require.NoError(t, err)
	assert.Equal(t, "doc-1.fpm", got.Document)

	require.NoError(t, reg.Unpublish(ctx, "m", 2))

	latest, err := reg.Latest(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), latest.Version)

	_, err = reg.Lookup(ctx, "m", 2)
	assert.ErrorIs(t, err, ErrNoVersions)
}
