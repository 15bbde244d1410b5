package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
)

// AutologinIdentity is the worker identity resolved from a one-time token.
type AutologinIdentity struct {
	OrgID      string
	EmployeeID string
	Name       string
	Role       domain.Role
	CanPunch   bool
}

// StateSvcFacade is the service behind the state endpoints.
type StateSvcFacade interface {
	GetState(ctx context.Context, key string) (*AppState, error)
	SaveState(ctx context.Context, key string, data json.RawMessage) (time.Time, error)
	DeleteState(ctx context.Context, key string) error
	ResolveAutologin(ctx context.Context, key, token string) (*AutologinIdentity, error)
}

// AuthSvcFacade authenticates back-office admins against the stored
// document and issues session tokens.
type AuthSvcFacade interface {
	Login(ctx context.Context, email, password string) (string, *domain.AdminUser, error)
}
