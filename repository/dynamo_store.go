package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/yashrajoria/lezzetli-admin/models"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore keeps one table per collection, keyed by the string attribute
// "id". Table names are the collection name behind an optional prefix.
type DynamoStore struct {
	client DynamoAPI
	prefix string
}

func NewDynamoStore(client DynamoAPI, tablePrefix string) *DynamoStore {
	return &DynamoStore{client: client, prefix: tablePrefix}
}

func (d *DynamoStore) table(collection string) *string {
	return aws.String(d.prefix + collection)
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func (d *DynamoStore) Get(ctx context.Context, collection, id string) (models.Document, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: d.table(collection), Key: idKey(id)})
	if err != nil {
		return nil, classifyDynamo(fmt.Errorf("dynamodb GetItem %s/%s: %w", collection, id, err))
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var doc models.Document
	if err := attributevalue.UnmarshalMap(out.Item, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return doc, nil
}

// Query scans the collection's table with a filter expression built from
// the query's predicates.
func (d *DynamoStore) Query(ctx context.Context, q Query) ([]models.Document, error) {
	skip, err := prepare(q)
	if err != nil || skip {
		return nil, err
	}

	input := &dynamodb.ScanInput{TableName: d.table(q.collection)}
	if len(q.filters) > 0 {
		names := make(map[string]string, len(q.filters))
		values := make(map[string]types.AttributeValue, len(q.filters))
		clauses := make([]string, 0, len(q.filters))
		for i, f := range q.filters {
			name := fmt.Sprintf("#f%d", i)
			ph := fmt.Sprintf(":v%d", i)
			av, err := attributevalue.Marshal(f.Value)
			if err != nil {
				return nil, fmt.Errorf("marshal filter value: %w", err)
			}
			names[name] = f.Field
			values[ph] = av
			clauses = append(clauses, fmt.Sprintf("%s = %s", name, ph))
		}
		input.FilterExpression = aws.String(strings.Join(clauses, " AND "))
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var docs []models.Document
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyDynamo(fmt.Errorf("scan %s: %w", q.collection, err))
		}
		for _, item := range page.Items {
			var doc models.Document
			if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (d *DynamoStore) Add(ctx context.Context, collection string, doc models.Document) (string, error) {
	stored := doc.Clone()
	if stored == nil {
		stored = models.Document{}
	}
	id := stored.ID()
	if id == "" {
		id = uuid.NewString()
	}
	stored["id"] = id

	item, err := attributevalue.MarshalMap(stored)
	if err != nil {
		return "", fmt.Errorf("marshal %s document: %w", collection, err)
	}
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: d.table(collection), Item: item}); err != nil {
		return "", classifyDynamo(fmt.Errorf("dynamodb PutItem %s: %w", collection, err))
	}
	return id, nil
}

// Update applies a SET expression guarded by attribute_exists so updates
// never create documents.
func (d *DynamoStore) Update(ctx context.Context, collection, id string, fields models.Document) error {
	names := map[string]string{"#id": "id"}
	values := make(map[string]types.AttributeValue, len(fields))
	sets := make([]string, 0, len(fields))
	i := 0
	for k, v := range fields {
		if k == "id" {
			continue
		}
		name := fmt.Sprintf("#u%d", i)
		ph := fmt.Sprintf(":u%d", i)
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal update value: %w", err)
		}
		names[name] = k
		values[ph] = av
		sets = append(sets, fmt.Sprintf("%s = %s", name, ph))
		i++
	}
	if len(sets) == 0 {
		_, err := d.Get(ctx, collection, id)
		return err
	}

	_, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 d.table(collection),
		Key:                       idKey(id),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		return classifyDynamo(fmt.Errorf("update item %s/%s: %w", collection, id, err))
	}
	return nil
}

func (d *DynamoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{TableName: d.table(collection), Key: idKey(id)})
	if err != nil {
		return classifyDynamo(fmt.Errorf("delete item %s/%s: %w", collection, id, err))
	}
	return nil
}

var transientDynamoCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
	"InternalServerError":                    true,
	"ServiceUnavailable":                     true,
	"TransactionConflictException":           true,
}

// classifyDynamo tags throttling, server faults and network errors with
// ErrUnavailable so the retry layer can tell them apart.
func classifyDynamo(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (transientDynamoCodes[apiErr.ErrorCode()] || apiErr.ErrorFault() == smithy.FaultServer) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
