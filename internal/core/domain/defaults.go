package domain

import (
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSettings returns the seed organization settings, including the
// default geofence.
func DefaultSettings() Settings {
	return Settings{
		ShiftStart:           "16:00",
		ShiftEnd:             "22:00",
		ToleranceMinutes:     5,
		OvertimeAfter:        "22:00",
		Locale:               "pt-BR",
		Currency:             "BRL",
		Timezone:             "America/Sao_Paulo",
		PayrollCycleStartDay: 1,
		PayrollCycleLength:   30,
		GeofenceName:         "VH89+92 Teresopolis, Alagoinhas - BA",
		GeofencePlusCode:     "VH89+92",
		GeofenceLat:          -12.1340625,
		GeofenceLng:          -38.4324375,
		GeofenceRadius:       120,
		CleaningDay:          6,
		CleaningStart:        "09:00",
		CleaningEnd:          "12:00",
		CleaningNote:         "2-3h (1x/semana, a combinar)",
		CleaningParticipants: []string{"ayra", "nathyeli"},
		MinStaff:             2,
		MaxStaff:             4,
		MinWageMonthly:       1621,
		MinWageHours:         220,
	}
}

// DefaultEmployees returns the seed roster.
func DefaultEmployees() []Employee {
	return []Employee{
		{
			ID:         "admin",
			Name:       "Henrique Admin",
			Email:      "admin@empresa.com",
			Role:       RoleAdmin,
			Token:      "admin-hq",
			CanPunch:   false,
			ShiftStart: "08:00",
			ShiftEnd:   "18:00",
			WorkDays:   []int{1, 2, 3, 4, 5},
		},
		{
			ID:         "ayra",
			Name:       "Ayra",
			Email:      "ayra@empresa.com",
			Role:       RoleStaff,
			Token:      "ayra-2026",
			CanPunch:   true,
			ShiftStart: "16:00",
			ShiftEnd:   "22:00",
			WorkDays:   []int{3, 4, 5, 6, 0},
			Pay: &PayInfo{
				Type:   PayDaily,
				Amount: decimal.NewFromInt(55),
				Note:   "Escala 5:2 (folga seg/ter)",
			},
		},
		{
			ID:         "nathyeli",
			Name:       "Nathyeli",
			Email:      "nathyeli@empresa.com",
			Role:       RoleStaff,
			Token:      "nathyeli-2026",
			CanPunch:   true,
			ShiftStart: "16:00",
			ShiftEnd:   "22:00",
			WorkDays:   []int{5, 6, 0, 1, 2},
			Pay: &PayInfo{
				Type:   PayDaily,
				Amount: decimal.NewFromInt(55),
				Note:   "Escala 5:2 (folga qua/qui)",
			},
		},
		{
			ID:         "mariza",
			Name:       "Mariza Santos",
			Email:      "mariza@empresa.com",
			Role:       RoleManager,
			Token:      "mariza-gerente",
			CanPunch:   false,
			ShiftStart: "08:00",
			ShiftEnd:   "18:00",
			WorkDays:   []int{4, 5, 6, 0, 1},
			Pay: &PayInfo{
				Type:   PayMonthly,
				Amount: decimal.NewFromInt(1500),
				Note:   "Ajuste previsto para R$ 1600 (a confirmar). Diarias extras quando necessario.",
			},
		},
		{
			ID:         "bezinha",
			Name:       "Bezinha",
			Email:      "bezinha@empresa.com",
			Role:       RoleSupport,
			Token:      "bezinha-2026",
			CanPunch:   false,
			ShiftStart: "16:00",
			ShiftEnd:   "22:00",
			WorkDays:   []int{2, 3},
			Pay: &PayInfo{
				Type:   PayDaily,
				Amount: decimal.NewFromInt(70),
				Note:   "Cobre ter/qua quando Mariza folga",
			},
		},
		{
			ID:         "henrique-teste",
			Name:       "Henrique Teste",
			Email:      "teste@empresa.com",
			Role:       RoleStaff,
			Token:      "henrique-teste",
			CanPunch:   true,
			ShiftStart: "16:00",
			ShiftEnd:   "22:00",
			WorkDays:   []int{1, 2, 3, 4, 5},
			IsTest:     true,
		},
	}
}

// DefaultTasks returns the seed task list.
func DefaultTasks() []Task {
	return []Task{
		{ID: "task-1", Title: "Limpeza rapida do setor", Points: 10, Active: true},
		{ID: "task-2", Title: "Reposicao de estoque", Points: 8, Active: true},
		{ID: "task-3", Title: "Atendimento premium", Points: 12, Active: true},
	}
}

// seedAdminPassword is the bootstrap credential and must be rotated on
// first login in production.
const seedAdminPassword = "admin123"

var seedAdminHash = sync.OnceValue(func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		panic("hash seed admin password: " + err.Error())
	}
	return string(hash)
})

// DefaultAdminUsers returns the seed back-office accounts.
func DefaultAdminUsers() []AdminUser {
	return []AdminUser{
		{
			ID:           "admin-1",
			Name:         "Admin Principal",
			Email:        "admin@empresa.com",
			PasswordHash: seedAdminHash(),
		},
	}
}

// DefaultOrg returns the seed organization.
func DefaultOrg() Organization {
	return Organization{
		ID:              "org-principal",
		Name:            "Empresa Principal",
		Slug:            "empresa-principal",
		Employees:       DefaultEmployees(),
		Settings:        DefaultSettings(),
		Tasks:           DefaultTasks(),
		Completions:     []TaskCompletion{},
		TimeOffRequests: []TimeOffRequest{},
		Payments:        []PaymentRecord{},
		PunchRecords:    []PunchRecord{},
	}
}

// DefaultAppData returns the document created on first run, before any
// cache or remote contact.
func DefaultAppData() AppData {
	org := DefaultOrg()
	return AppData{
		AdminUsers:    DefaultAdminUsers(),
		Organizations: []Organization{org},
		CurrentOrgID:  org.ID,
	}
}
