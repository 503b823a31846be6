package dynamo

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"faceindex/internal/model"
	"faceindex/internal/repository"
)

type mockDynamoAPI struct {
	mock.Mock
}

func (m *mockDynamoAPI) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *mockDynamoAPI) Scan(ctx context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ScanOutput), args.Error(1)
}

func (m *mockDynamoAPI) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DescribeTableOutput), args.Error(1)
}

func item(name, image, faceID string, ts int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"name":             &types.AttributeValueMemberS{Value: name},
		"image":            &types.AttributeValueMemberS{Value: image},
		"faceId":           &types.AttributeValueMemberS{Value: faceID},
		"externalImageId":  &types.AttributeValueMemberS{Value: "ext-" + name},
		"createdTimestamp": &types.AttributeValueMemberN{Value: strconv.FormatInt(ts, 10)},
	}
}

func TestNewPersonDynamo(t *testing.T) {
	_, err := NewPersonDynamo(nil, "persons")
	assert.Error(t, err)

	_, err = NewPersonDynamo(new(mockDynamoAPI), "")
	assert.Error(t, err)
}

func TestPersonDynamo_Insert(t *testing.T) {
	ctx := context.Background()
	created := time.UnixMilli(1700000000123).UTC()
	rec := &model.PersonRecord{
		Name:            "alice",
		Image:           "arn:aws:s3:::bucket1/alice/photo.jpg",
		FaceID:          "f1",
		ExternalImageID: "ext",
		CreatedAt:       created,
	}

	t.Run("writes createdTimestamp in unix milliseconds", func(t *testing.T) {
		api := new(mockDynamoAPI)
		api.On("PutItem", ctx, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			if aws.ToString(in.TableName) != "persons" || in.ConditionExpression != nil {
				return false
			}
			name, ok1 := in.Item["name"].(*types.AttributeValueMemberS)
			face, ok2 := in.Item["faceId"].(*types.AttributeValueMemberS)
			ts, ok3 := in.Item["createdTimestamp"].(*types.AttributeValueMemberN)
			return ok1 && ok2 && ok3 &&
				name.Value == "alice" &&
				face.Value == "f1" &&
				ts.Value == "1700000000123"
		})).Return(&dynamodb.PutItemOutput{}, nil)

		repo, err := NewPersonDynamo(api, "persons")
		require.NoError(t, err)

		assert.NoError(t, repo.Insert(ctx, rec))
		api.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		api := new(mockDynamoAPI)
		api.On("PutItem", ctx, mock.Anything).Return(nil, errors.New("AccessDenied"))

		repo, err := NewPersonDynamo(api, "persons")
		require.NoError(t, err)

		err = repo.Insert(ctx, rec)
		assert.ErrorIs(t, err, repository.ErrStore)
		assert.Contains(t, err.Error(), "AccessDenied")
	})
}

func TestPersonDynamo_FindByFaceID(t *testing.T) {
	ctx := context.Background()

	t.Run("single page keeps store order", func(t *testing.T) {
		api := new(mockDynamoAPI)
		api.On("Scan", ctx, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
			if aws.ToString(in.TableName) != "persons" || in.FilterExpression == nil {
				return false
			}
			var faceName bool
			for _, n := range in.ExpressionAttributeNames {
				faceName = faceName || n == "faceId"
			}
			var faceValue bool
			for _, v := range in.ExpressionAttributeValues {
				if s, ok := v.(*types.AttributeValueMemberS); ok && s.Value == "f1" {
					faceValue = true
				}
			}
			return faceName && faceValue
		})).Return(&dynamodb.ScanOutput{
			Items: []map[string]types.AttributeValue{
				item("bob", "img-2", "f1", 2000),
				item("alice", "img-1", "f1", 1000),
			},
		}, nil).Once()

		repo, err := NewPersonDynamo(api, "persons")
		require.NoError(t, err)

		got, err := repo.FindByFaceID(ctx, "f1")

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "bob", got[0].Name)
		assert.Equal(t, "alice", got[1].Name)
		assert.Equal(t, int64(2000), got[0].CreatedAt.UnixMilli())
		assert.Equal(t, "ext-alice", got[1].ExternalImageID)
		api.AssertExpectations(t)
	})

	t.Run("follows pagination", func(t *testing.T) {
		lastKey := map[string]types.AttributeValue{"name": &types.AttributeValueMemberS{Value: "bob"}}

		api := new(mockDynamoAPI)
		api.On("Scan", ctx, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
			return in.ExclusiveStartKey == nil
		})).Return(&dynamodb.ScanOutput{
			Items:            []map[string]types.AttributeValue{item("bob", "img-2", "f1", 2000)},
			LastEvaluatedKey: lastKey,
		}, nil).Once()
		api.On("Scan", ctx, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
			return in.ExclusiveStartKey != nil
		})).Return(&dynamodb.ScanOutput{
			Items: []map[string]types.AttributeValue{item("carol", "img-3", "f1", 3000)},
		}, nil).Once()

		repo, err := NewPersonDynamo(api, "persons")
		require.NoError(t, err)

		got, err := repo.FindByFaceID(ctx, "f1")

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "bob", got[0].Name)
		assert.Equal(t, "carol", got[1].Name)
		api.AssertExpectations(t)
	})

	t.Run("empty result is non-nil", func(t *testing.T) {
		api := new(mockDynamoAPI)
		api.On("Scan", ctx, mock.Anything).Return(&dynamodb.ScanOutput{}, nil).Once()

		repo, err := NewPersonDynamo(api, "persons")
		require.NoError(t, err)

		got, err := repo.FindByFaceID(ctx, "nobody")

		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("scan error", func(t *testing.T) {
		api := new(mockDynamoAPI)
		api.On("Scan", ctx, mock.Anything).Return(nil, errors.New("ResourceNotFoundException")).Once()

		repo, err := NewPersonDynamo(api, "persons")
		require.NoError(t, err)

		got, err := repo.FindByFaceID(ctx, "f1")

		assert.ErrorIs(t, err, repository.ErrStore)
		assert.Nil(t, got)
	})
}

func TestPersonDynamo_Ping(t *testing.T) {
	ctx := context.Background()
	api := new(mockDynamoAPI)
	api.On("DescribeTable", ctx, mock.MatchedBy(func(in *dynamodb.DescribeTableInput) bool {
		return aws.ToString(in.TableName) == "persons"
	})).Return(&dynamodb.DescribeTableOutput{}, nil).Once()
	api.On("DescribeTable", ctx, mock.Anything).Return(nil, errors.New("unreachable")).Once()

	repo, err := NewPersonDynamo(api, "persons")
	require.NoError(t, err)

	assert.NoError(t, repo.Ping(ctx))
	assert.ErrorIs(t, repo.Ping(ctx), repository.ErrStore)
}
