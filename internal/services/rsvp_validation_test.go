package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.Fields
}

func TestEmptyFirstNameAlwaysErrors(t *testing.T) {
	for _, attending := range []bool{true, false} {
		for _, name := range []string{"", "   ", "\t"} {
			sub := models.RSVPSubmission{Attending: attending, FirstName: name, LastName: "Ruiz"}
			errs := fieldErrors(t, ValidateAndNormalizeRSVP(&sub))
			assert.Contains(t, errs, "first_name", "attending=%v name=%q", attending, name)
		}
	}
}

func TestDeclineNeverYieldsDietaryOrPlusOneErrors(t *testing.T) {
	sub := models.RSVPSubmission{
		Attending: false,
		FirstName: "Ana",
		LastName:  "Ruiz",
		DietaryRequirements: []models.DietaryRequirement{
			{RequirementType: models.DietaryOther},
			{RequirementType: "caviar_only"},
		},
		PlusOne: &models.PlusOneSubmission{Email: "not-an-email"},
	}

	require.NoError(t, ValidateAndNormalizeRSVP(&sub))
	assert.Nil(t, sub.DietaryRequirements)
	assert.Nil(t, sub.PlusOne)
}

func TestOtherDietaryRequiresNotes(t *testing.T) {
	for _, notes := range []string{"", "  "} {
		sub := models.RSVPSubmission{
			Attending:           true,
			FirstName:           "Ana",
			LastName:            "Ruiz",
			DietaryRequirements: []models.DietaryRequirement{{RequirementType: models.DietaryVegan}, {RequirementType: models.DietaryOther, Notes: notes}},
		}
		errs := fieldErrors(t, ValidateAndNormalizeRSVP(&sub))
		assert.Equal(t, "notes are required when requirement_type is other", errs["dietary_requirements[1].notes"])
		assert.NotContains(t, errs, "dietary_requirements[0].notes")
	}

	sub := models.RSVPSubmission{
		Attending:           true,
		FirstName:           "Ana",
		LastName:            "Ruiz",
		DietaryRequirements: []models.DietaryRequirement{{RequirementType: models.DietaryOther, Notes: " no shellfish "}},
	}
	require.NoError(t, ValidateAndNormalizeRSVP(&sub))
	assert.Equal(t, "no shellfish", sub.DietaryRequirements[0].Notes)
}

func TestUnknownDietaryType(t *testing.T) {
	sub := models.RSVPSubmission{
		Attending:           true,
		FirstName:           "Ana",
		LastName:            "Ruiz",
		DietaryRequirements: []models.DietaryRequirement{{RequirementType: "pescatarian"}},
	}
	errs := fieldErrors(t, ValidateAndNormalizeRSVP(&sub))
	assert.Contains(t, errs, "dietary_requirements[0].requirement_type")
}

func TestPlusOneRules(t *testing.T) {
	sub := models.RSVPSubmission{
		Attending: true,
		FirstName: "Sam",
		LastName:  "Lee",
		PlusOne: &models.PlusOneSubmission{
			Email:               "",
			FirstName:           " ",
			DietaryRequirements: []models.DietaryRequirement{{RequirementType: models.DietaryOther}},
		},
	}
	errs := fieldErrors(t, ValidateAndNormalizeRSVP(&sub))
	assert.Equal(t, "plus_one.email is required", errs["plus_one.email"])
	assert.Contains(t, errs, "plus_one.first_name")
	assert.Contains(t, errs, "plus_one.last_name")
	assert.Contains(t, errs, "plus_one.dietary_requirements[0].notes")

	sub.PlusOne = &models.PlusOneSubmission{Email: "kim@", FirstName: "Kim", LastName: "Park"}
	errs = fieldErrors(t, ValidateAndNormalizeRSVP(&sub))
	assert.Equal(t, "plus_one.email must be a valid email address", errs["plus_one.email"])
	assert.Len(t, errs, 1)

	sub.PlusOne = &models.PlusOneSubmission{Email: " Kim@Example.COM ", FirstName: "Kim", LastName: "Park"}
	require.NoError(t, ValidateAndNormalizeRSVP(&sub))
	assert.Equal(t, "kim@example.com", sub.PlusOne.Email)
}

func TestAllViolationsAreCollected(t *testing.T) {
	sub := models.RSVPSubmission{
		Attending:           true,
		DietaryRequirements: []models.DietaryRequirement{{RequirementType: models.DietaryOther}},
		PlusOne:             &models.PlusOneSubmission{FirstName: "Kim", LastName: "Park"},
	}
	errs := fieldErrors(t, ValidateAndNormalizeRSVP(&sub))
	assert.Len(t, errs, 4)
	assert.Contains(t, errs, "first_name")
	assert.Contains(t, errs, "last_name")
	assert.Contains(t, errs, "dietary_requirements[0].notes")
	assert.Contains(t, errs, "plus_one.email")
}

func TestFamilyMemberUpdates(t *testing.T) {
	memberID := uuid.MustParse("6f1c0d9e-1b7a-4c1e-9d0a-3f5b2a7c8e10")
	declinedID := uuid.MustParse("0a9b8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d")

	sub := models.RSVPSubmission{
		Attending: false,
		FirstName: "Sam",
		LastName:  "Lee",
		FamilyMemberUpdates: map[uuid.UUID]models.FamilyMemberUpdate{
			memberID: {
				Attending: true,
				GuestInfo: &models.GuestInfoUpdate{FirstName: "Mia", LastName: ""},
				DietaryRequirements: []models.DietaryRequirement{
					{RequirementType: models.DietaryHalal},
					{RequirementType: models.DietaryOther},
				},
			},
			declinedID: {
				Attending:           false,
				DietaryRequirements: []models.DietaryRequirement{{RequirementType: models.DietaryOther}},
			},
		},
	}

	errs := fieldErrors(t, ValidateAndNormalizeRSVP(&sub))
	prefix := "family_member_updates[" + memberID.String() + "]"
	assert.Contains(t, errs, prefix+".dietary_requirements[1].notes")
	assert.Contains(t, errs, prefix+".guest_info.last_name")
	assert.Len(t, errs, 2)
	assert.Nil(t, sub.FamilyMemberUpdates[declinedID].DietaryRequirements)
}

func TestNormalizesOptionalFields(t *testing.T) {
	sub := models.RSVPSubmission{
		Attending: true,
		FirstName: "  Ana ",
		LastName:  " Ruiz",
		Phone:     strPtr(" +34 600 000 000 "),
		Allergies: strPtr("  "),
		DietaryRequirements: []models.DietaryRequirement{
			{RequirementType: " Vegan "},
		},
	}
	require.NoError(t, ValidateAndNormalizeRSVP(&sub))
	assert.Equal(t, "Ana", sub.FirstName)
	assert.Equal(t, "Ruiz", sub.LastName)
	assert.Equal(t, "+34 600 000 000", *sub.Phone)
	assert.Equal(t, "", *sub.Allergies)
	assert.Equal(t, models.DietaryVegan, sub.DietaryRequirements[0].RequirementType)
}

func TestValidationErrorMessageIsStable(t *testing.T) {
	err := &ValidationError{Fields: FieldErrors{"last_name": "b", "first_name": "a"}}
	assert.Equal(t, "validation failed: first_name: a; last_name: b", err.Error())
}
