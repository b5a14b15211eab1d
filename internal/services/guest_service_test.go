package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGuestRepo struct {
	byID      map[uuid.UUID]*models.GuestDetails
	lastList  models.GuestFilter
	createErr error
	creates   int
	langSet   map[uuid.UUID]models.Language
}

func newFakeGuestRepo() *fakeGuestRepo {
	return &fakeGuestRepo{
		byID:    map[uuid.UUID]*models.GuestDetails{},
		langSet: map[uuid.UUID]models.Language{},
	}
}

func (f *fakeGuestRepo) ListGuests(_ context.Context, filter models.GuestFilter) ([]models.GuestDetails, int, error) {
	f.lastList = filter
	out := make([]models.GuestDetails, 0, len(f.byID))
	for _, g := range f.byID {
		out = append(out, *g)
	}
	return out, len(out), nil
}

func (f *fakeGuestRepo) GetGuest(_ context.Context, id uuid.UUID) (*models.GuestDetails, error) {
	g, ok := f.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGuestRepo) FindGuestByEmail(_ context.Context, email string) (*models.GuestDetails, error) {
	for _, g := range f.byID {
		if g.Email != nil && *g.Email == email {
			cp := *g
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeGuestRepo) CreateGuest(_ context.Context, ng models.NewGuest) (*models.GuestDetails, error) {
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	email := ng.Email
	token := fmt.Sprintf("tok-%d", f.creates)
	g := &models.GuestDetails{
		Guest: models.Guest{
			ID:                uuid.New(),
			UserID:            uuid.NullUUID{UUID: uuid.New(), Valid: true},
			EventID:           ng.EventID,
			FirstName:         ng.FirstName,
			LastName:          ng.LastName,
			GuestType:         models.GuestTypeAdult,
			FamilyID:          ng.FamilyID,
			PreferredLanguage: ng.PreferredLanguage,
		},
		Email:     &email,
		Status:    models.StatusPending,
		RSVPToken: token,
		RSVPLink:  models.RSVPLink("http://localhost:4321", ng.PreferredLanguage, token, false),
		Active:    true,
	}
	f.byID[g.ID] = g
	cp := *g
	return &cp, nil
}

func (f *fakeGuestRepo) UpdateGuest(_ context.Context, id uuid.UUID, _ models.GuestUpdate) (*models.GuestDetails, error) {
	return f.GetGuest(context.Background(), id)
}

func (f *fakeGuestRepo) DeleteGuest(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeGuestRepo) MarkInvitationSent(_ context.Context, id uuid.UUID, at time.Time) error {
	g, ok := f.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	g.EmailSentOn = &at
	return nil
}

func (f *fakeGuestRepo) SetPreferredLanguage(_ context.Context, id uuid.UUID, lang models.Language) error {
	g, ok := f.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	f.langSet[id] = lang
	g.PreferredLanguage = lang
	g.RSVPLink = models.RSVPLink("http://localhost:4321", lang, g.RSVPToken, false)
	return nil
}

func (f *fakeGuestRepo) CreateFamily(_ context.Context, name *string) (*models.Family, error) {
	return &models.Family{ID: uuid.New(), Name: name}, nil
}

func (f *fakeGuestRepo) CreateChildGuest(_ context.Context, child models.NewChildGuest) (*models.GuestDetails, error) {
	g := &models.GuestDetails{
		Guest: models.Guest{
			ID:        uuid.New(),
			FirstName: child.FirstName,
			LastName:  child.LastName,
			GuestType: models.GuestTypeChild,
			FamilyID:  uuid.NullUUID{UUID: child.FamilyID, Valid: true},
		},
		Status: models.StatusPending,
		Active: true,
	}
	f.byID[g.ID] = g
	return g, nil
}

func newTestGuestService(repo *fakeGuestRepo, mailer Mailer) *GuestService {
	gs := NewGuestService(repo, mailer, uuid.NullUUID{}, zerolog.Nop())
	gs.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return gs
}

func TestCreateGuestSendsInvitation(t *testing.T) {
	repo := newFakeGuestRepo()
	mailer := &recordingMailer{}
	gs := newTestGuestService(repo, mailer)

	g, err := gs.CreateGuest(context.Background(), CreateGuestInput{
		Email:             " Ana@Example.com ",
		FirstName:         "Ana",
		LastName:          "Ruiz",
		PreferredLanguage: models.LanguageES,
		SendInvitation:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", *g.Email)
	require.NotNil(t, g.EmailSentOn)
	assert.Equal(t, 2026, g.EmailSentOn.Year())

	require.Len(t, mailer.invitations, 1)
	inv := mailer.invitations[0]
	assert.Equal(t, "ana@example.com", inv.To)
	assert.Equal(t, "Ana Ruiz", inv.GuestName)
	assert.Equal(t, models.LanguageES, inv.Language)
	assert.Equal(t, "http://localhost:4321/es/rsvp/?token=tok-1", inv.Link)
}

func TestCreateGuestInvitationFailureKeepsGuest(t *testing.T) {
	repo := newFakeGuestRepo()
	gs := newTestGuestService(repo, &recordingMailer{err: errors.New("smtp down")})

	g, err := gs.CreateGuest(context.Background(), CreateGuestInput{
		Email:          "ana@example.com",
		FirstName:      "Ana",
		LastName:       "Ruiz",
		SendInvitation: true,
	})
	require.NoError(t, err)
	assert.Nil(t, g.EmailSentOn)
	assert.Equal(t, models.LanguageEN, g.PreferredLanguage)
	assert.Len(t, repo.byID, 1)
}

func TestCreateGuestValidation(t *testing.T) {
	gs := newTestGuestService(newFakeGuestRepo(), &recordingMailer{})

	_, err := gs.CreateGuest(context.Background(), CreateGuestInput{Email: "nope", FirstName: " ", PreferredLanguage: "fr"})
	errs := fieldErrors(t, err)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "first_name")
	assert.Contains(t, errs, "last_name")
	assert.Contains(t, errs, "preferred_language")
}

func TestListGuestsStatusFilter(t *testing.T) {
	repo := newFakeGuestRepo()
	gs := newTestGuestService(repo, nil)

	_, _, err := gs.ListGuests(context.Background(), " Confirmed ", -5, 1000)
	require.NoError(t, err)
	require.NotNil(t, repo.lastList.Status)
	assert.Equal(t, models.StatusConfirmed, *repo.lastList.Status)
	assert.Equal(t, 0, repo.lastList.Offset)
	assert.Equal(t, maxPageLimit, repo.lastList.Limit)

	_, _, err = gs.ListGuests(context.Background(), "maybe", 0, 0)
	assert.Contains(t, fieldErrors(t, err), "status")
}

func TestSendInvitationRequiresEmail(t *testing.T) {
	repo := newFakeGuestRepo()
	gs := newTestGuestService(repo, &recordingMailer{})
	family, err := gs.CreateFamily(context.Background(), CreateFamilyInput{Name: strPtr("  ")})
	require.NoError(t, err)
	assert.Nil(t, family.Name)

	child, err := gs.CreateChildGuest(context.Background(), family.ID, CreateChildInput{FirstName: "Mia", LastName: "Ruiz"})
	require.NoError(t, err)

	_, err = gs.SendInvitation(context.Background(), child.ID)
	assert.ErrorIs(t, err, ErrGuestNotInvitable)

	_, err = gs.SendInvitation(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRequestInvitationCreatesNewGuest(t *testing.T) {
	repo := newFakeGuestRepo()
	mailer := &recordingMailer{}
	gs := newTestGuestService(repo, mailer)

	err := gs.RequestInvitation(context.Background(), InvitationRequest{
		Email:     "New@Example.com",
		FirstName: "Noa",
		LastName:  "Visser",
	}, models.LanguageNL)
	require.NoError(t, err)

	require.Len(t, repo.byID, 1)
	require.Len(t, mailer.invitations, 1)
	assert.Equal(t, "new@example.com", mailer.invitations[0].To)
	assert.Equal(t, models.LanguageNL, mailer.invitations[0].Language)
}

func TestRequestInvitationResendsToKnownGuest(t *testing.T) {
	repo := newFakeGuestRepo()
	mailer := &recordingMailer{}
	gs := newTestGuestService(repo, mailer)
	existing, err := repo.CreateGuest(context.Background(), models.NewGuest{
		Email: "ana@example.com", FirstName: "Ana", LastName: "Ruiz", PreferredLanguage: models.LanguageEN,
	})
	require.NoError(t, err)

	es := models.LanguageES
	err = gs.RequestInvitation(context.Background(), InvitationRequest{
		Email: "ana@example.com", FirstName: "Someone", LastName: "Else", Language: &es,
	}, models.LanguageEN)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.creates)
	assert.Equal(t, models.LanguageES, repo.langSet[existing.ID])
	require.Len(t, mailer.invitations, 1)
	assert.Equal(t, "Ana Ruiz", mailer.invitations[0].GuestName)
	assert.Contains(t, mailer.invitations[0].Link, "/es/rsvp/")
}

func TestRequestInvitationSwallowsDeliveryAndRaceFailures(t *testing.T) {
	repo := newFakeGuestRepo()
	gs := newTestGuestService(repo, &recordingMailer{err: errors.New("smtp down")})

	err := gs.RequestInvitation(context.Background(), InvitationRequest{Email: "a@example.com", FirstName: "A", LastName: "B"}, models.LanguageEN)
	require.NoError(t, err)

	repo.createErr = models.ErrGuestAlreadyExists
	err = gs.RequestInvitation(context.Background(), InvitationRequest{Email: "b@example.com", FirstName: "B", LastName: "C"}, models.LanguageEN)
	require.NoError(t, err)

	err = gs.RequestInvitation(context.Background(), InvitationRequest{Email: "bad", FirstName: "B", LastName: "C"}, models.LanguageEN)
	assert.Contains(t, fieldErrors(t, err), "email")
}
