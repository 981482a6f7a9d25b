package validation

import (
	"testing"

	"github.com/prappser/recruitment_client/internal/applicant"
	"github.com/prappser/recruitment_client/internal/auth"
	"github.com/prappser/recruitment_client/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() applicant.ApplicationForm {
	return applicant.ApplicationForm{
		Name:    "Åsa",
		Surname: "Lind-Berg",
		Competences: []applicant.CompetenceProfile{
			{CompetenceID: 1, YearsOfExperience: 2},
		},
		Availabilities: []applicant.Availability{
			{FromDate: "2026-06-01", ToDate: "2026-06-01"},
		},
	}
}

func TestStruct_ShouldAcceptValidRegistration(t *testing.T) {
	// given
	req := auth.RegisterRequest{
		Username: "ada.lovelace",
		Password: "s3cret!",
		Email:    "ada@example.com",
		Pnr:      "19901212-1234",
	}

	// when
	err := Struct(req)

	// then
	assert.NoError(t, err)
}

func TestStruct_ShouldReportEveryInvalidRegistrationField(t *testing.T) {
	// given
	req := auth.RegisterRequest{
		Username: "ad",
		Password: "short",
		Email:    "not-an-email",
		Pnr:      "19901312-1234",
	}

	// when
	err := Struct(req)

	// then
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, map[string]string{
		"username": "validation.username-format",
		"password": "validation.password-format",
		"email":    "validation.email-format",
		"pnr":      "validation.pnr-format",
	}, errs.Keys())
}

func TestStruct_ShouldAcceptNamesWithUnicodeLetters(t *testing.T) {
	// when
	err := Struct(validForm())

	// then
	assert.NoError(t, err)
}

func TestStruct_ShouldRejectAvailabilityEndingBeforeStart(t *testing.T) {
	// given
	form := validForm()
	form.Availabilities = append(form.Availabilities, applicant.Availability{FromDate: "2026-08-01", ToDate: "2026-07-01"})

	// when
	err := Struct(form)

	// then
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, map[string]string{"availabilities[1].toDate": "validation.availability-order"}, errs.Keys())
}

func TestStruct_ShouldRejectBadNamesAndNegativeExperience(t *testing.T) {
	// given
	form := validForm()
	form.Name = "R2D2"
	form.Competences[0].YearsOfExperience = -1

	// when
	err := Struct(form)

	// then
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, map[string]string{
		"name":                             "validation.name-format",
		"competences[0].yearsOfExperience": "validation.out-of-range",
	}, errs.Keys())
}

func TestStruct_ShouldSkipEmptyOptionalProfileFields(t *testing.T) {
	// when
	valid := Struct(profile.UpdateRequest{Pnr: "20010101-0000"})
	invalid := Struct(profile.UpdateRequest{Pnr: "010101-0000"})

	// then
	assert.NoError(t, valid)
	var errs Errors
	require.ErrorAs(t, invalid, &errs)
	assert.Equal(t, "validation.pnr-format", errs.Keys()["pnr"])
}
