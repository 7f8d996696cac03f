package constants

import "time"

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Context keys
const (
	ContextKeyPrincipal = "principal"
	ContextKeyToken     = "token"
	ContextKeyRequestID = "request_id"
	SessionCookieName   = "planning_session"
	SessionKeyToken     = "token"
)

// Field limits
const (
	MinTaskTitleLength       = 3
	MaxTaskTitleLength       = 150
	MaxTaskDescriptionLength = 1000
	MinTaskTypeTitleLength   = 2
	MaxTaskTypeTitleLength   = 100
	MaxObservationLength     = 2000
	MaxResolutionLength      = 2000
	MaxBulkTasks             = 100
	MaxDraftedTasks          = 20
	MaxKPIDays               = 366
)

// Auth
const (
	DefaultTokenTTL = 24 * time.Hour
	DefaultSystem   = "bonita"
)

// DefaultTaskTypes are inserted by the migrate command and the migration route.
var DefaultTaskTypes = []string{
	"Planificación",
	"Ejecución",
	"Seguimiento",
	"Comunicación",
	"Evaluación",
	"Administración",
}
