package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
)

func TestDecodeDocument_CurrentShape(t *testing.T) {
	raw := []byte(`{
		"adminUsers": [{"id": "a1", "name": "Chefe", "email": "chefe@empresa.com"}],
		"organizations": [{
			"id": "org-a",
			"name": "Filial A",
			"employees": [{"id": "w1", "name": "Trabalhador", "role": "staff", "canPunch": true}],
			"punchRecords": []
		}],
		"currentOrgId": "org-a"
	}`)

	data, err := domain.DecodeDocument(raw)
	require.NoError(t, err)

	require.Len(t, data.Organizations, 1)
	assert.Equal(t, "org-a", data.Organizations[0].ID)
	assert.Equal(t, "org-a", data.CurrentOrgID)
	require.Len(t, data.Organizations[0].Employees, 1)
	assert.Equal(t, "w1", data.Organizations[0].Employees[0].ID)
	assert.Equal(t, []domain.AdminUser{{ID: "a1", Name: "Chefe", Email: "chefe@empresa.com"}}, data.AdminUsers)
}

func TestDecodeDocument_LegacySingleOrg(t *testing.T) {
	raw := []byte(`{
		"employees": [{"id": "w1", "name": "Trabalhador", "canPunch": true}],
		"punchRecords": [{"id": "rec_1", "userId": "w1", "startAt": "2026-08-30T16:00:00Z"}]
	}`)

	data, err := domain.DecodeDocument(raw)
	require.NoError(t, err)

	require.Len(t, data.Organizations, 1)
	org := data.Organizations[0]
	assert.Equal(t, "org-principal", org.ID)
	assert.Equal(t, org.ID, data.CurrentOrgID)
	require.Len(t, org.PunchRecords, 1)
	assert.Equal(t, "rec_1", org.PunchRecords[0].ID)
	assert.NotEmpty(t, data.AdminUsers, "legacy payloads get the default back-office accounts")
}

func TestDecodeDocument_ImportWrapper(t *testing.T) {
	raw := []byte(`{"data": {"employees": [{"id": "w1", "name": "Trabalhador"}]}}`)

	data, err := domain.DecodeDocument(raw)
	require.NoError(t, err)
	require.Len(t, data.Organizations, 1)
	assert.Equal(t, "w1", data.Organizations[0].Employees[0].ID)
}

func TestDecodeDocument_PartialSettingsMergeOverDefaults(t *testing.T) {
	raw := []byte(`{
		"organizations": [{
			"id": "org-a",
			"name": "Filial A",
			"employees": [],
			"settings": {"geofenceRadius": 250}
		}],
		"currentOrgId": "org-a"
	}`)

	data, err := domain.DecodeDocument(raw)
	require.NoError(t, err)

	settings := data.Organizations[0].Settings
	defaults := domain.DefaultSettings()
	assert.Equal(t, float64(250), settings.GeofenceRadius, "present field wins")
	assert.Equal(t, defaults.GeofenceLat, settings.GeofenceLat, "absent fields keep defaults")
	assert.Equal(t, defaults.Timezone, settings.Timezone)
}

func TestDecodeDocument_MissingCollectionsBecomeEmpty(t *testing.T) {
	raw := []byte(`{
		"organizations": [{"id": "org-a", "name": "Filial A", "employees": []}],
		"currentOrgId": "org-a"
	}`)

	data, err := domain.DecodeDocument(raw)
	require.NoError(t, err)

	org := data.Organizations[0]
	assert.NotNil(t, org.Completions)
	assert.NotNil(t, org.TimeOffRequests)
	assert.NotNil(t, org.Payments)
	assert.NotNil(t, org.PunchRecords)
}

func TestDecodeDocument_Garbage(t *testing.T) {
	for _, raw := range []string{`not json at all`, `42`, `{"unrelated": true}`} {
		_, err := domain.DecodeDocument([]byte(raw))
		assert.ErrorIs(t, err, apperrors.ErrInvalidDocument, raw)
	}
}

func TestDecodeDocument_EmptyOrgListFallsBackToDefaults(t *testing.T) {
	data, err := domain.DecodeDocument([]byte(`{"organizations": [], "currentOrgId": ""}`))
	require.NoError(t, err)
	require.NotEmpty(t, data.Organizations)
	assert.Equal(t, domain.DefaultOrg().ID, data.Organizations[0].ID)
	assert.Equal(t, data.Organizations[0].ID, data.CurrentOrgID)
}

func TestOrganization_OpenPunch(t *testing.T) {
	org := domain.DefaultOrg()

	rec := org.OpenPunch("ayra")
	assert.Nil(t, rec)

	org.PunchRecords = append(org.PunchRecords, domain.PunchRecord{ID: "rec_1", UserID: "ayra"})
	rec = org.OpenPunch("ayra")
	require.NotNil(t, rec)
	assert.Equal(t, "rec_1", rec.ID)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "empresa-principal", domain.Slugify("Empresa Principal"))
	assert.Equal(t, "filial-2", domain.Slugify("  Filial   2!  "))
	assert.Equal(t, "", domain.Slugify("!!!"))
}
