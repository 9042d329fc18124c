package di

import (
	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/application/queries"
	"notes-backend/application/services"
	"notes-backend/infrastructure/cleanup"
	"notes-backend/infrastructure/config"
	"notes-backend/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	NoteRepo          ports.NoteRepository
	TagRepo           ports.TagRepository
	BlobStore         ports.BlobStore
	BlobJanitor       *cleanup.BlobJanitor
	Renderer          ports.DocumentRenderer
	QueryBuilder      *queries.NoteQueryBuilder
	TagResolver       *services.TagResolver
	AttachmentManager *services.AttachmentManager
	NoteService       *services.NoteService
	JWTValidator      *auth.JWTValidator
}
