package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
)

// looseOrg mirrors Organization but defers Settings decoding so missing
// fields can be merged over defaults.
type looseOrg struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Employees       []Employee       `json:"employees"`
	Settings        json.RawMessage  `json:"settings"`
	Tasks           []Task           `json:"tasks"`
	Completions     []TaskCompletion `json:"completions"`
	TimeOffRequests []TimeOffRequest `json:"timeOffRequests"`
	Payments        []PaymentRecord  `json:"payments"`
	PunchRecords    []PunchRecord    `json:"punchRecords"`
}

// looseDocument accepts both the current multi-organization shape and the
// legacy single-organization payload where the collections sat at the top
// level. Import payloads may additionally wrap everything under "data".
type looseDocument struct {
	Data          json.RawMessage `json:"data"`
	AdminUsers    []AdminUser     `json:"adminUsers"`
	Organizations []looseOrg      `json:"organizations"`
	CurrentOrgID  string          `json:"currentOrgId"`

	// Legacy single-org fields.
	Employees       []Employee       `json:"employees"`
	Settings        json.RawMessage  `json:"settings"`
	Tasks           []Task           `json:"tasks"`
	Completions     []TaskCompletion `json:"completions"`
	TimeOffRequests []TimeOffRequest `json:"timeOffRequests"`
	Payments        []PaymentRecord  `json:"payments"`
	PunchRecords    []PunchRecord    `json:"punchRecords"`
}

// DecodeDocument parses a serialized document, repairing partial or legacy
// payloads against the built-in defaults. A payload that cannot be mapped
// to a document at all yields ErrInvalidDocument; callers fall back to
// defaults rather than crashing.
func DecodeDocument(raw []byte) (AppData, error) {
	var loose looseDocument
	if err := json.Unmarshal(raw, &loose); err != nil {
		return AppData{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}

	// Import payloads wrap the document under "data".
	if len(loose.Data) > 0 && loose.Organizations == nil && loose.Employees == nil {
		return DecodeDocument(loose.Data)
	}

	if loose.Organizations != nil {
		orgs := make([]Organization, 0, len(loose.Organizations))
		for i, lo := range loose.Organizations {
			orgs = append(orgs, normalizeOrg(lo, fmt.Sprintf("org-%d", i+1), fmt.Sprintf("Empresa %d", i+1)))
		}
		if len(orgs) == 0 {
			orgs = DefaultAppData().Organizations
		}
		admins := loose.AdminUsers
		if admins == nil {
			admins = DefaultAdminUsers()
		}
		currentID := loose.CurrentOrgID
		if currentID == "" {
			currentID = orgs[0].ID
		}
		return AppData{AdminUsers: admins, Organizations: orgs, CurrentOrgID: currentID}, nil
	}

	if loose.Employees != nil {
		org := normalizeOrg(looseOrg{
			Employees:       loose.Employees,
			Settings:        loose.Settings,
			Tasks:           loose.Tasks,
			Completions:     loose.Completions,
			TimeOffRequests: loose.TimeOffRequests,
			Payments:        loose.Payments,
			PunchRecords:    loose.PunchRecords,
		}, "org-principal", "Empresa Principal")
		return AppData{
			AdminUsers:    DefaultAdminUsers(),
			Organizations: []Organization{org},
			CurrentOrgID:  org.ID,
		}, nil
	}

	return AppData{}, fmt.Errorf("%w: no organizations or employees present", apperrors.ErrInvalidDocument)
}

// normalizeOrg fills the gaps of a partially specified organization.
// Missing settings fields are merged over the defaults, missing
// collections become their default or empty counterparts.
func normalizeOrg(lo looseOrg, fallbackID, fallbackName string) Organization {
	id := lo.ID
	if id == "" {
		id = fallbackID
	}
	name := strings.TrimSpace(lo.Name)
	if name == "" {
		name = fallbackName
	}
	slug := strings.TrimSpace(lo.Slug)
	if slug == "" {
		if slug = Slugify(name); slug == "" {
			slug = id
		}
	}

	settings := DefaultSettings()
	if len(lo.Settings) > 0 {
		// Decoding over the prefilled struct merges present fields only.
		_ = json.Unmarshal(lo.Settings, &settings)
	}

	org := Organization{
		ID:              id,
		Name:            name,
		Slug:            slug,
		Employees:       lo.Employees,
		Settings:        settings,
		Tasks:           lo.Tasks,
		Completions:     lo.Completions,
		TimeOffRequests: lo.TimeOffRequests,
		Payments:        lo.Payments,
		PunchRecords:    lo.PunchRecords,
	}
	if org.Employees == nil {
		org.Employees = DefaultEmployees()
	}
	if org.Tasks == nil {
		org.Tasks = DefaultTasks()
	}
	if org.Completions == nil {
		org.Completions = []TaskCompletion{}
	}
	if org.TimeOffRequests == nil {
		org.TimeOffRequests = []TimeOffRequest{}
	}
	if org.Payments == nil {
		org.Payments = []PaymentRecord{}
	}
	if org.PunchRecords == nil {
		org.PunchRecords = []PunchRecord{}
	}
	return org
}

var slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugSpaces = regexp.MustCompile(`\s+`)
var slugDashes = regexp.MustCompile(`-+`)

// Slugify derives a URL-safe identifier from a display name.
func Slugify(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	if len(s) > 32 {
		s = s[:32]
	}
	return s
}
