package dynamodb

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"notes-backend/application/ports"
	"notes-backend/domain/core/entities"
	"notes-backend/domain/core/valueobjects"
	pkgerrors "notes-backend/pkg/errors"
)

// TagRepository implements ports.TagRepository on the shared DynamoDB
// table. The partition key carries the normalized name, which makes a
// conditional put the uniqueness check; a GSI on the tag id serves
// lookups from note tag lists.
type TagRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string // GSI2: GSI2PK = TAGID#<id>
}

// NewTagRepository creates a DynamoDB-backed tag repository
func NewTagRepository(client *dynamodb.Client, tableName, indexName string) *TagRepository {
	return &TagRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
	}
}

type tagItem struct {
	PK        string `dynamodbav:"PK"`     // TAG#<normalized name>
	SK        string `dynamodbav:"SK"`     // TAG
	GSI2PK    string `dynamodbav:"GSI2PK"` // TAGID#<id>
	GSI2SK    string `dynamodbav:"GSI2SK"` // TAGID#<id>
	TagID     string `dynamodbav:"TagID"`
	Name      string `dynamodbav:"Name"`
	Color     string `dynamodbav:"Color"`
	CreatedAt string `dynamodbav:"CreatedAt"`
}

// Create stores a new tag. The conditional expression rejects the put
// when another writer already owns the name partition; callers see
// that as ports.ErrTagNameTaken and re-fetch the winner.
func (r *TagRepository) Create(ctx context.Context, tag *entities.Tag) error {
	av, err := attributevalue.MarshalMap(toTagItem(tag))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal tag").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ports.ErrTagNameTaken
		}
		return pkgerrors.NewExternalError("dynamodb", err)
	}
	return nil
}

// FindByName looks up a tag by its normalized name, returning
// (nil, nil) when absent
func (r *TagRepository) FindByName(ctx context.Context, name string) (*entities.Tag, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "TAG#" + name},
			"SK": &types.AttributeValueMemberS{Value: "TAG"},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewExternalError("dynamodb", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item tagItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal tag").WithCause(err)
	}
	return fromTagItem(&item)
}

// FindByIDs retrieves the tags for the given ids, skipping ids that
// no longer resolve
func (r *TagRepository) FindByIDs(ctx context.Context, ids []valueobjects.TagID) ([]*entities.Tag, error) {
	tags := make([]*entities.Tag, 0, len(ids))
	for _, id := range ids {
		tag, err := r.findByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if tag != nil {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// FindAll retrieves every tag, sorted by name
func (r *TagRepository) FindAll(ctx context.Context) ([]*entities.Tag, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("SK").Equal(expression.Value("TAG"))).
		Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build scan expression").WithCause(err)
	}

	var tags []*entities.Tag
	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, pkgerrors.NewExternalError("dynamodb", err)
		}

		for _, av := range result.Items {
			var item tagItem
			if err := attributevalue.UnmarshalMap(av, &item); err != nil {
				return nil, pkgerrors.NewInternalError("failed to unmarshal tag").WithCause(err)
			}
			tag, err := fromTagItem(&item)
			if err != nil {
				return nil, err
			}
			tags = append(tags, tag)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name() < tags[j].Name()
	})
	return tags, nil
}

func (r *TagRepository) findByID(ctx context.Context, id valueobjects.TagID) (*entities.Tag, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("GSI2PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "TAGID#" + id.String()},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewExternalError("dynamodb", err)
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	var item tagItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal tag").WithCause(err)
	}
	return fromTagItem(&item)
}

func toTagItem(tag *entities.Tag) *tagItem {
	return &tagItem{
		PK:        "TAG#" + tag.Name(),
		SK:        "TAG",
		GSI2PK:    "TAGID#" + tag.ID().String(),
		GSI2SK:    "TAGID#" + tag.ID().String(),
		TagID:     tag.ID().String(),
		Name:      tag.Name(),
		Color:     tag.Color(),
		CreatedAt: tag.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
}

func fromTagItem(item *tagItem) (*entities.Tag, error) {
	id, err := valueobjects.NewTagIDFromString(item.TagID)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored tag has invalid id").WithCause(err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored tag has invalid timestamp").WithCause(err)
	}
	return entities.ReconstructTag(id, item.Name, item.Color, createdAt), nil
}
