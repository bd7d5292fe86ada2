package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "raffle-tool-backend/internal/common/errors"
	"raffle-tool-backend/internal/common/phone"
	"raffle-tool-backend/internal/features/participant/models"
)

// fakeParticipantRepo mimics the merge semantics of the postgres upsert.
type fakeParticipantRepo struct {
	byPhone map[string]*models.Participant // key: raffleID + "|" + phone
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{byPhone: make(map[string]*models.Participant)}
}

func (f *fakeParticipantRepo) FindByPhone(_ context.Context, raffleID, phone string) (*models.Participant, error) {
	if p, ok := f.byPhone[raffleID+"|"+phone]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeParticipantRepo) GetByID(_ context.Context, raffleID, id string) (*models.Participant, error) {
	for _, p := range f.byPhone {
		if p.RaffleID == raffleID && p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeParticipantRepo) Upsert(_ context.Context, p *models.Participant) (*models.Participant, error) {
	key := p.RaffleID + "|" + p.Phone
	existing, ok := f.byPhone[key]
	if !ok {
		copied := *p
		f.byPhone[key] = &copied
		result := copied
		return &result, nil
	}

	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&existing.Name, p.Name)
	merge(&existing.Cedula, p.Cedula)
	merge(&existing.Email, p.Email)
	merge(&existing.Address, p.Address)
	merge(&existing.ProductSuggestion, p.ProductSuggestion)
	merge(&existing.Note, p.Note)

	result := *existing
	return &result, nil
}

func newService(repo *fakeParticipantRepo) ParticipantService {
	return NewParticipantService(repo, phone.New("593", "0"))
}

func TestFindOrCreateNewParticipant(t *testing.T) {
	svc := newService(newFakeParticipantRepo())

	p, err := svc.FindOrCreate(context.Background(), "raffle-1", "seller-1", models.ParticipantInput{
		Phone: "0991234567",
		Name:  "Ana",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "+593991234567", p.Phone)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "seller-1", p.SellerID)
}

func TestFindOrCreateRequiresNameForNewRecord(t *testing.T) {
	svc := newService(newFakeParticipantRepo())

	_, err := svc.FindOrCreate(context.Background(), "raffle-1", "seller-1", models.ParticipantInput{
		Phone: "0991234567",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestFindOrCreateIdempotentMerge(t *testing.T) {
	svc := newService(newFakeParticipantRepo())
	ctx := context.Background()

	first, err := svc.FindOrCreate(ctx, "raffle-1", "seller-1", models.ParticipantInput{
		Phone: "+593999999999",
		Name:  "A",
	})
	require.NoError(t, err)

	// Second call omits the name but supplies new fields; the row must
	// keep its id and name and gain the union of non-empty fields.
	second, err := svc.FindOrCreate(ctx, "raffle-1", "seller-1", models.ParticipantInput{
		Phone:  "0999999999",
		Cedula: "1712345678",
		Email:  "a@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "A", second.Name)
	assert.Equal(t, "1712345678", second.Cedula)
	assert.Equal(t, "a@example.com", second.Email)
}

func TestFindOrCreateScopedPerRaffle(t *testing.T) {
	svc := newService(newFakeParticipantRepo())
	ctx := context.Background()

	one, err := svc.FindOrCreate(ctx, "raffle-1", "seller-1", models.ParticipantInput{
		Phone: "0991234567", Name: "Ana",
	})
	require.NoError(t, err)

	two, err := svc.FindOrCreate(ctx, "raffle-2", "seller-1", models.ParticipantInput{
		Phone: "0991234567", Name: "Ana",
	})
	require.NoError(t, err)

	assert.NotEqual(t, one.ID, two.ID, "the same phone in two raffles is two participants")
}

func TestFindByPhoneNormalizesBeforeLookup(t *testing.T) {
	repo := newFakeParticipantRepo()
	svc := newService(repo)
	ctx := context.Background()

	_, err := svc.FindOrCreate(ctx, "raffle-1", "seller-1", models.ParticipantInput{
		Phone: "0991234567", Name: "Ana",
	})
	require.NoError(t, err)

	found, err := svc.FindByPhone(ctx, "raffle-1", "099 123-4567")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Ana", found.Name)
}
