package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"faceindex/internal/model"
	"faceindex/internal/repository"
)

// DynamoAPI is the subset of *dynamodb.Client used by PersonDynamo.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// personItem is the table layout. createdTimestamp is unix milliseconds.
type personItem struct {
	Name             string `dynamodbav:"name"`
	Image            string `dynamodbav:"image"`
	FaceID           string `dynamodbav:"faceId"`
	ExternalImageID  string `dynamodbav:"externalImageId"`
	CreatedTimestamp int64  `dynamodbav:"createdTimestamp"`
}

func toItem(rec *model.PersonRecord) personItem {
	return personItem{
		Name:             rec.Name,
		Image:            rec.Image,
		FaceID:           rec.FaceID,
		ExternalImageID:  rec.ExternalImageID,
		CreatedTimestamp: rec.CreatedAt.UnixMilli(),
	}
}

func (it personItem) record() model.PersonRecord {
	return model.PersonRecord{
		Name:            it.Name,
		Image:           it.Image,
		FaceID:          it.FaceID,
		ExternalImageID: it.ExternalImageID,
		CreatedAt:       time.UnixMilli(it.CreatedTimestamp).UTC(),
	}
}

// PersonDynamo is a DynamoDB implementation of repository.PersonRepository.
type PersonDynamo struct {
	api   DynamoAPI
	table string
}

var _ repository.PersonRepository = (*PersonDynamo)(nil)

// NewPersonDynamo creates a repository over the named table.
func NewPersonDynamo(api DynamoAPI, table string) (*PersonDynamo, error) {
	if api == nil {
		return nil, fmt.Errorf("dynamodb client is required")
	}
	if table == "" {
		return nil, fmt.Errorf("dynamodb table name is required")
	}
	return &PersonDynamo{api: api, table: table}, nil
}

// Insert writes the record with PutItem. No condition expression is set.
func (r *PersonDynamo) Insert(ctx context.Context, rec *model.PersonRecord) error {
	item, err := attributevalue.MarshalMap(toItem(rec))
	if err != nil {
		return fmt.Errorf("%w: marshal person: %w", repository.ErrStore, err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("%w: put item: %w", repository.ErrStore, err)
	}
	return nil
}

// FindByFaceID scans the table with an equality filter on faceId.
// The table has no index on faceId, so every page is read until LastEvaluatedKey is empty.
func (r *PersonDynamo) FindByFaceID(ctx context.Context, faceID string) ([]model.PersonRecord, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("faceId").Equal(expression.Value(faceID))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("%w: build filter: %w", repository.ErrStore, err)
	}

	p := dynamodb.NewScanPaginator(r.api, &dynamodb.ScanInput{
		TableName:                 aws.String(r.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	out := make([]model.PersonRecord, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %w", repository.ErrStore, err)
		}

		var items []personItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("%w: unmarshal persons: %w", repository.ErrStore, err)
		}
		for _, it := range items {
			out = append(out, it.record())
		}
	}
	return out, nil
}

// Ping describes the table to confirm it exists and is reachable.
func (r *PersonDynamo) Ping(ctx context.Context) error {
	_, err := r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	if err != nil {
		return fmt.Errorf("%w: describe table: %w", repository.ErrStore, err)
	}
	return nil
}
