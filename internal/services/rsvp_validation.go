package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joshua-takyi/rsvp/internal/models"
)

// FieldErrors maps a JSON path in the submission to a human readable message.
type FieldErrors map[string]string

type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var dietaryTypeTag = func() string {
	names := make([]string, 0, len(models.DietaryTypes))
	for _, t := range models.DietaryTypes {
		names = append(names, string(t))
	}
	return "required,oneof=" + strings.Join(names, " ")
}()

// ValidateAndNormalizeRSVP trims and lower-cases input in place and checks
// the conditional field rules. All violations are collected; the submission
// is only safe to apply when the returned error is nil.
func ValidateAndNormalizeRSVP(sub *models.RSVPSubmission) error {
	if sub == nil {
		return fmt.Errorf("rsvp submission is nil")
	}

	errs := FieldErrors{}

	sub.FirstName = strings.TrimSpace(sub.FirstName)
	sub.LastName = strings.TrimSpace(sub.LastName)
	sub.Phone = trimOptional(sub.Phone)
	sub.Allergies = trimOptional(sub.Allergies)

	requireName(errs, "first_name", sub.FirstName)
	requireName(errs, "last_name", sub.LastName)

	if sub.Attending {
		sub.DietaryRequirements = normalizeDietary(sub.DietaryRequirements)
		validateDietary(errs, "dietary_requirements", sub.DietaryRequirements)

		if sub.PlusOne != nil {
			validatePlusOne(errs, sub.PlusOne)
		}
	} else {
		// Nothing to cater for a guest who is not coming.
		sub.DietaryRequirements = nil
		sub.PlusOne = nil
	}

	for id, update := range sub.FamilyMemberUpdates {
		prefix := fmt.Sprintf("family_member_updates[%s]", id)
		sub.FamilyMemberUpdates[id] = validateFamilyMember(errs, prefix, update)
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func validatePlusOne(errs FieldErrors, p *models.PlusOneSubmission) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Allergies = trimOptional(p.Allergies)

	switch {
	case p.Email == "":
		errs["plus_one.email"] = "plus_one.email is required"
	case models.Validate.Var(p.Email, "email") != nil:
		errs["plus_one.email"] = "plus_one.email must be a valid email address"
	}
	requireName(errs, "plus_one.first_name", p.FirstName)
	requireName(errs, "plus_one.last_name", p.LastName)

	p.DietaryRequirements = normalizeDietary(p.DietaryRequirements)
	validateDietary(errs, "plus_one.dietary_requirements", p.DietaryRequirements)
}

func validateFamilyMember(errs FieldErrors, prefix string, m models.FamilyMemberUpdate) models.FamilyMemberUpdate {
	m.Allergies = trimOptional(m.Allergies)

	if m.GuestInfo != nil {
		m.GuestInfo.FirstName = strings.TrimSpace(m.GuestInfo.FirstName)
		m.GuestInfo.LastName = strings.TrimSpace(m.GuestInfo.LastName)
		m.GuestInfo.Phone = trimOptional(m.GuestInfo.Phone)
		requireName(errs, prefix+".guest_info.first_name", m.GuestInfo.FirstName)
		requireName(errs, prefix+".guest_info.last_name", m.GuestInfo.LastName)
	}

	if !m.Attending {
		m.DietaryRequirements = nil
		return m
	}
	m.DietaryRequirements = normalizeDietary(m.DietaryRequirements)
	validateDietary(errs, prefix+".dietary_requirements", m.DietaryRequirements)
	return m
}

func validateDietary(errs FieldErrors, prefix string, reqs []models.DietaryRequirement) {
	for i, r := range reqs {
		path := fmt.Sprintf("%s[%d]", prefix, i)
		if err := models.Validate.Var(string(r.RequirementType), dietaryTypeTag); err != nil {
			errs[path+".requirement_type"] = fmt.Sprintf("unsupported requirement_type %q", r.RequirementType)
			continue
		}
		if r.RequirementType == models.DietaryOther && r.Notes == "" {
			errs[path+".notes"] = "notes are required when requirement_type is other"
		}
	}
}

func normalizeDietary(reqs []models.DietaryRequirement) []models.DietaryRequirement {
	for i := range reqs {
		reqs[i].RequirementType = models.DietaryType(strings.ToLower(strings.TrimSpace(string(reqs[i].RequirementType))))
		reqs[i].Notes = strings.TrimSpace(reqs[i].Notes)
	}
	return reqs
}

func requireName(errs FieldErrors, field, value string) {
	if value == "" {
		errs[field] = field + " is required"
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// validateStruct runs the struct's validate tags and reports failures as a
// ValidationError keyed by JSON field name.
func validateStruct(v any) error {
	err := models.Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := FieldErrors{}
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fe.Field() + " must not be empty"
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
