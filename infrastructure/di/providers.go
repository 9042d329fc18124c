package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/application/queries"
	"notes-backend/application/services"
	"notes-backend/infrastructure/blob"
	"notes-backend/infrastructure/cleanup"
	"notes-backend/infrastructure/config"
	"notes-backend/infrastructure/persistence/dynamodb"
	"notes-backend/infrastructure/persistence/memory"
	"notes-backend/infrastructure/render"
	"notes-backend/pkg/auth"
)

// developmentSecret is the JWT fallback outside production; Validate
// rejects an empty secret in production before this is reached.
const developmentSecret = "development-secret-change-in-production"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideNoteRepository creates a note repository for the configured
// storage driver
func ProvideNoteRepository(client *awsdynamodb.Client, cfg *config.Config) ports.NoteRepository {
	if cfg.StorageDriver == "memory" {
		return memory.NewNoteRepository()
	}
	return dynamodb.NewNoteRepository(client, cfg.DynamoDBTable, cfg.NoteIndexName)
}

// ProvideTagRepository creates a tag repository for the configured
// storage driver
func ProvideTagRepository(client *awsdynamodb.Client, cfg *config.Config) ports.TagRepository {
	if cfg.StorageDriver == "memory" {
		return memory.NewTagRepository()
	}
	return dynamodb.NewTagRepository(client, cfg.DynamoDBTable, cfg.TagIndexName)
}

// ProvideBlobStore creates the attachment blob store
func ProvideBlobStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.BlobStore {
	return blob.NewS3Store(client, cfg.AttachmentBucket, cfg.AWSRegion, cfg.AttachmentBaseURL, logger)
}

// ProvideBlobJanitor creates the background blob cleanup worker
func ProvideBlobJanitor(store ports.BlobStore, cfg *config.Config, logger *zap.Logger) *cleanup.BlobJanitor {
	return cleanup.NewBlobJanitor(store, cfg.CleanupInterval, cfg.CleanupMaxAttempts, logger)
}

// ProvideBlobCleanup exposes the janitor through its port
func ProvideBlobCleanup(janitor *cleanup.BlobJanitor) ports.BlobCleanup {
	return janitor
}

// ProvideDocumentRenderer creates the PDF export renderer
func ProvideDocumentRenderer() ports.DocumentRenderer {
	return render.NewPDFRenderer()
}

// ProvideQueryBuilder creates the note query builder
func ProvideQueryBuilder(tags ports.TagRepository) *queries.NoteQueryBuilder {
	return queries.NewNoteQueryBuilder(tags)
}

// ProvideTagResolver creates the tag resolver
func ProvideTagResolver(tags ports.TagRepository, logger *zap.Logger) *services.TagResolver {
	return services.NewTagResolver(tags, logger)
}

// ProvideAttachmentManager creates the attachment manager
func ProvideAttachmentManager(notes ports.NoteRepository, blobs ports.BlobStore, logger *zap.Logger) *services.AttachmentManager {
	return services.NewAttachmentManager(notes, blobs, logger)
}

// ProvideNoteService creates the note service
func ProvideNoteService(
	notes ports.NoteRepository,
	tags ports.TagRepository,
	builder *queries.NoteQueryBuilder,
	resolver *services.TagResolver,
	attachments *services.AttachmentManager,
	blobCleanup ports.BlobCleanup,
	renderer ports.DocumentRenderer,
	logger *zap.Logger,
) *services.NoteService {
	return services.NewNoteService(notes, tags, builder, resolver, attachments, blobCleanup, renderer, logger)
}

// ProvideJWTValidator creates the access token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = developmentSecret
	}
	return auth.NewJWTValidator(secret, cfg.JWTIssuer)
}
