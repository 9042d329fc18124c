package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/domain/core/entities"
	"notes-backend/domain/core/valueobjects"
	"notes-backend/infrastructure/persistence/memory"
	pkgerrors "notes-backend/pkg/errors"
)

func TestResolveIsIdempotentAtTheNameLevel(t *testing.T) {
	resolver := NewTagResolver(memory.NewTagRepository(), zap.NewNop())
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, []string{"Work"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := resolver.Resolve(ctx, []string{"work"})
	require.NoError(t, err)

	third, err := resolver.Resolve(ctx, []string{" WORK "})
	require.NoError(t, err)

	assert.True(t, first[0].Equals(second[0]))
	assert.True(t, first[0].Equals(third[0]))
}

func TestResolvePreservesOrderAndDuplicates(t *testing.T) {
	resolver := NewTagResolver(memory.NewTagRepository(), zap.NewNop())

	ids, err := resolver.Resolve(context.Background(), []string{"alpha", "beta", "Alpha"})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	// duplicates collapse to the same id and pass through in order
	assert.True(t, ids[0].Equals(ids[2]))
	assert.False(t, ids[0].Equals(ids[1]))
}

func TestResolveRejectsEmptyLabels(t *testing.T) {
	resolver := NewTagResolver(memory.NewTagRepository(), zap.NewNop())

	for _, label := range []string{"", "   "} {
		_, err := resolver.Resolve(context.Background(), []string{label})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	}
}

// racingTagRepo simulates losing the create race: the first Create
// reports the name taken after another caller's tag appears.
type racingTagRepo struct {
	*memory.TagRepository
	winner *entities.Tag
	raced  bool
}

func (r *racingTagRepo) Create(ctx context.Context, tag *entities.Tag) error {
	if !r.raced {
		r.raced = true
		if err := r.TagRepository.Create(ctx, r.winner); err != nil {
			return err
		}
		return ports.ErrTagNameTaken
	}
	return r.TagRepository.Create(ctx, tag)
}

func TestResolveLosingCreateRaceUsesWinner(t *testing.T) {
	winner, err := entities.NewTag("errand", "")
	require.NoError(t, err)

	repo := &racingTagRepo{TagRepository: memory.NewTagRepository(), winner: winner}
	resolver := NewTagResolver(repo, zap.NewNop())

	ids, err := resolver.Resolve(context.Background(), []string{"errand"})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.True(t, ids[0].Equals(winner.ID()))

	// only one canonical entity exists for the name
	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNamesSkipsUnresolvableIDs(t *testing.T) {
	tags := memory.NewTagRepository()
	resolver := NewTagResolver(tags, zap.NewNop())
	ctx := context.Background()

	tag, err := entities.NewTag("keep", "")
	require.NoError(t, err)
	require.NoError(t, tags.Create(ctx, tag))

	names, err := resolver.Names(ctx, []valueobjects.TagID{tag.ID(), valueobjects.NewTagID()})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, names)
}
