package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
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

// NoteRepository implements ports.NoteRepository on a single DynamoDB
// table. Notes are stored under USER#<owner>/NOTE#<id> keys; a GSI on
// the note id serves direct lookups without knowing the owner.
type NoteRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string // GSI1: GSI1PK = NOTE#<id>
}

// NewNoteRepository creates a DynamoDB-backed note repository
func NewNoteRepository(client *dynamodb.Client, tableName, indexName string) *NoteRepository {
	return &NoteRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
	}
}

type attachmentItem struct {
	ID         string `dynamodbav:"ID"`
	BlobRef    string `dynamodbav:"BlobRef"`
	URL        string `dynamodbav:"URL"`
	Filename   string `dynamodbav:"Filename"`
	UploadedAt string `dynamodbav:"UploadedAt"`
}

// noteItem is the DynamoDB representation of a note. Title and content
// are duplicated in lowercase so substring search can run as a filter
// expression; DynamoDB has no case folding of its own.
type noteItem struct {
	PK          string           `dynamodbav:"PK"`     // USER#<owner>
	SK          string           `dynamodbav:"SK"`     // NOTE#<id>
	GSI1PK      string           `dynamodbav:"GSI1PK"` // NOTE#<id>
	GSI1SK      string           `dynamodbav:"GSI1SK"` // NOTE#<id>
	NoteID      string           `dynamodbav:"NoteID"`
	UserID      string           `dynamodbav:"UserID"`
	Title       string           `dynamodbav:"Title"`
	TitleLC     string           `dynamodbav:"TitleLC"`
	Content     string           `dynamodbav:"Content"`
	ContentLC   string           `dynamodbav:"ContentLC"`
	Category    string           `dynamodbav:"Category"`
	Color       string           `dynamodbav:"Color"`
	IsPinned    bool             `dynamodbav:"IsPinned"`
	Tags        []string         `dynamodbav:"Tags"`
	State       string           `dynamodbav:"State"`
	DeletedAt   string           `dynamodbav:"DeletedAt,omitempty"`
	Attachments []attachmentItem `dynamodbav:"Attachments"`
	CreatedAt   string           `dynamodbav:"CreatedAt"`
	UpdatedAt   string           `dynamodbav:"UpdatedAt"`
}

// Insert stores a new note
func (r *NoteRepository) Insert(ctx context.Context, note *entities.Note) error {
	av, err := attributevalue.MarshalMap(toNoteItem(note))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal note").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return pkgerrors.NewExternalError("dynamodb", err)
	}
	return nil
}

// FindByID retrieves a note by id via the note-id GSI
func (r *NoteRepository) FindByID(ctx context.Context, id valueobjects.NoteID) (*entities.Note, error) {
	item, err := r.getItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromNoteItem(item)
}

// FindMany retrieves all notes matching the filter in the requested
// order. With an owner restriction this is a key-condition query on
// the owner partition; without one (admin browsing) it falls back to
// a table scan. Both paginate until the result set is exhausted, and
// ordering is applied client-side since filtered reads come back in
// key order, not in any of the supported sort orders.
func (r *NoteRepository) FindMany(ctx context.Context, filter ports.NoteFilter, order ports.SortOrder) ([]*entities.Note, error) {
	cond := filterCondition(filter)

	var items []noteItem
	var err error
	if filter.OwnerID != "" {
		items, err = r.queryOwner(ctx, filter.OwnerID, cond)
	} else {
		items, err = r.scanAll(ctx, cond)
	}
	if err != nil {
		return nil, err
	}

	notes := make([]*entities.Note, 0, len(items))
	for _, item := range items {
		note, convErr := fromNoteItem(&item)
		if convErr != nil {
			return nil, convErr
		}
		notes = append(notes, note)
	}

	sortNotes(notes, order)
	return notes, nil
}

// Update persists the current state of an existing note
func (r *NoteRepository) Update(ctx context.Context, note *entities.Note) error {
	av, err := attributevalue.MarshalMap(toNoteItem(note))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal note").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewNotFoundError("note")
		}
		return pkgerrors.NewExternalError("dynamodb", err)
	}
	return nil
}

// DeleteByID permanently removes a note record. The table key includes
// the owner, so the item is resolved through the GSI first.
func (r *NoteRepository) DeleteByID(ctx context.Context, id valueobjects.NoteID) error {
	item, err := r.getItemByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: item.PK},
			"SK": &types.AttributeValueMemberS{Value: item.SK},
		},
	})
	if err != nil {
		return pkgerrors.NewExternalError("dynamodb", err)
	}
	return nil
}

func (r *NoteRepository) getItemByID(ctx context.Context, id valueobjects.NoteID) (*noteItem, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "NOTE#" + id.String()},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewExternalError("dynamodb", err)
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("note")
	}

	var item noteItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal note").WithCause(err)
	}
	return &item, nil
}

func (r *NoteRepository) queryOwner(ctx context.Context, ownerID string, cond expression.ConditionBuilder) ([]noteItem, error) {
	keyCond := expression.Key("PK").Equal(expression.Value("USER#" + ownerID)).
		And(expression.Key("SK").BeginsWith("NOTE#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(cond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build query expression").WithCause(err)
	}

	var items []noteItem
	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, pkgerrors.NewExternalError("dynamodb", err)
		}

		page, err := unmarshalNotePage(result.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)

		if result.LastEvaluatedKey == nil {
			return items, nil
		}
		lastKey = result.LastEvaluatedKey
	}
}

func (r *NoteRepository) scanAll(ctx context.Context, cond expression.ConditionBuilder) ([]noteItem, error) {
	// The table also holds tag items; restrict the scan to notes.
	cond = cond.And(expression.Name("SK").BeginsWith("NOTE#"))

	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build scan expression").WithCause(err)
	}

	var items []noteItem
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

		page, err := unmarshalNotePage(result.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)

		if result.LastEvaluatedKey == nil {
			return items, nil
		}
		lastKey = result.LastEvaluatedKey
	}
}

func unmarshalNotePage(raw []map[string]types.AttributeValue) ([]noteItem, error) {
	items := make([]noteItem, 0, len(raw))
	for _, av := range raw {
		var item noteItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			return nil, pkgerrors.NewInternalError("failed to unmarshal note").WithCause(err)
		}
		items = append(items, item)
	}
	return items, nil
}

// filterCondition translates a NoteFilter into a DynamoDB filter
// expression. The view always contributes a state condition, so the
// builder never ends up with an empty filter.
func filterCondition(filter ports.NoteFilter) expression.ConditionBuilder {
	cond := expression.Name("State").Equal(expression.Value(string(viewState(filter.View))))

	if filter.Category != nil {
		cond = cond.And(expression.Name("Category").Equal(expression.Value(filter.Category.String())))
	}
	if filter.IsPinned != nil {
		cond = cond.And(expression.Name("IsPinned").Equal(expression.Value(*filter.IsPinned)))
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		cond = cond.And(
			expression.Name("TitleLC").Contains(needle).
				Or(expression.Name("ContentLC").Contains(needle)),
		)
	}
	// Stored timestamps use a fixed-width layout so lexicographic
	// comparison matches chronological order.
	if filter.CreatedFrom != nil {
		cond = cond.And(expression.Name("CreatedAt").GreaterThanEqual(
			expression.Value(formatStoredTime(*filter.CreatedFrom))))
	}
	if filter.CreatedTo != nil {
		cond = cond.And(expression.Name("CreatedAt").LessThanEqual(
			expression.Value(formatStoredTime(*filter.CreatedTo))))
	}
	if filter.TagID != nil {
		cond = cond.And(expression.Name("Tags").Contains(filter.TagID.String()))
	}

	return cond
}

func viewState(view ports.NoteView) entities.NoteState {
	switch view {
	case ports.ViewArchived:
		return entities.StateArchived
	case ports.ViewTrashed:
		return entities.StateTrashed
	default:
		return entities.StateActive
	}
}

func toNoteItem(note *entities.Note) *noteItem {
	tags := make([]string, 0, len(note.Tags()))
	for _, tagID := range note.Tags() {
		tags = append(tags, tagID.String())
	}

	attachments := make([]attachmentItem, 0, len(note.Attachments()))
	for _, att := range note.Attachments() {
		attachments = append(attachments, attachmentItem{
			ID:         att.ID,
			BlobRef:    att.BlobRef,
			URL:        att.URL,
			Filename:   att.Filename,
			UploadedAt: formatStoredTime(att.UploadedAt),
		})
	}

	item := &noteItem{
		PK:          "USER#" + note.OwnerID(),
		SK:          "NOTE#" + note.ID().String(),
		GSI1PK:      "NOTE#" + note.ID().String(),
		GSI1SK:      "NOTE#" + note.ID().String(),
		NoteID:      note.ID().String(),
		UserID:      note.OwnerID(),
		Title:       note.Title(),
		TitleLC:     strings.ToLower(note.Title()),
		Content:     note.Content(),
		ContentLC:   strings.ToLower(note.Content()),
		Category:    note.Category().String(),
		Color:       note.Color().String(),
		IsPinned:    note.IsPinned(),
		Tags:        tags,
		State:       string(note.State()),
		Attachments: attachments,
		CreatedAt:   formatStoredTime(note.CreatedAt()),
		UpdatedAt:   formatStoredTime(note.UpdatedAt()),
	}
	if note.DeletedAt() != nil {
		item.DeletedAt = formatStoredTime(*note.DeletedAt())
	}
	return item
}

func fromNoteItem(item *noteItem) (*entities.Note, error) {
	id, err := valueobjects.NewNoteIDFromString(item.NoteID)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored note has invalid id").WithCause(err)
	}
	category, err := valueobjects.NewCategory(item.Category)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored note has invalid category").WithCause(err)
	}
	color, err := valueobjects.NewColor(item.Color)
	if err != nil {
		return nil, pkgerrors.NewInternalError("stored note has invalid color").WithCause(err)
	}

	tags := make([]valueobjects.TagID, 0, len(item.Tags))
	for _, raw := range item.Tags {
		tagID, err := valueobjects.NewTagIDFromString(raw)
		if err != nil {
			return nil, pkgerrors.NewInternalError("stored note has invalid tag id").WithCause(err)
		}
		tags = append(tags, tagID)
	}

	attachments := make([]entities.Attachment, 0, len(item.Attachments))
	for _, att := range item.Attachments {
		uploadedAt, err := parseStoredTime(att.UploadedAt)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, entities.Attachment{
			ID:         att.ID,
			BlobRef:    att.BlobRef,
			URL:        att.URL,
			Filename:   att.Filename,
			UploadedAt: uploadedAt,
		})
	}

	createdAt, err := parseStoredTime(item.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseStoredTime(item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	var deletedAt *time.Time
	if item.DeletedAt != "" {
		parsed, err := parseStoredTime(item.DeletedAt)
		if err != nil {
			return nil, err
		}
		deletedAt = &parsed
	}

	return entities.ReconstructNote(
		id,
		item.UserID,
		item.Title,
		item.Content,
		category,
		color,
		item.IsPinned,
		tags,
		entities.NoteState(item.State),
		deletedAt,
		attachments,
		createdAt,
		updatedAt,
	), nil
}

// storedTimeLayout pads fractional seconds to nine digits. RFC3339Nano
// drops trailing zeros, which breaks lexicographic range filters on the
// second boundary ("...00.5Z" sorts before "...00Z").
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatStoredTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseStoredTime(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, pkgerrors.NewInternalError(fmt.Sprintf("stored note has invalid timestamp %q", raw)).WithCause(err)
	}
	return parsed, nil
}

func sortNotes(notes []*entities.Note, order ports.SortOrder) {
	switch order {
	case ports.SortTitle:
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].Title() < notes[j].Title()
		})
	case ports.SortUpdated:
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].UpdatedAt().After(notes[j].UpdatedAt())
		})
	case ports.SortOldest:
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].CreatedAt().Before(notes[j].CreatedAt())
		})
	default:
		sort.SliceStable(notes, func(i, j int) bool {
			if notes[i].IsPinned() != notes[j].IsPinned() {
				return notes[i].IsPinned()
			}
			return notes[i].CreatedAt().After(notes[j].CreatedAt())
		})
	}
}
