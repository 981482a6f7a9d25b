package recruitment

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationDetail_Clone_ShouldKeepEmptyListsEmpty(t *testing.T) {
	// given
	app := &ApplicationDetail{
		PersonID:       7,
		Status:         StatusUnhandled,
		Competences:    []CompetenceEntry{},
		Availabilities: []Availability{},
	}

	// when
	data, err := json.Marshal(app.Clone())

	// then
	require.NoError(t, err)
	assert.Contains(t, string(data), `"competences":[]`)
	assert.Contains(t, string(data), `"availabilities":[]`)
}

func TestApplicationDetail_Clone_ShouldKeepMissingListsNil(t *testing.T) {
	// given
	app := &ApplicationDetail{PersonID: 7}

	// when
	clone := app.Clone()

	// then
	assert.Nil(t, clone.Competences)
	assert.Nil(t, clone.Availabilities)
}

func TestApplicationDetail_Clone_ShouldNotShareLists(t *testing.T) {
	// given
	app := createTestApplication(7, StatusUnhandled, 0)

	// when
	clone := app.Clone()
	clone.Competences[0].Name = "changed"
	clone.Availabilities[0].ToDate = "2027-01-01"

	// then
	assert.Equal(t, "ticket sales", app.Competences[0].Name)
	assert.Equal(t, "2026-08-31", app.Availabilities[0].ToDate)
}
