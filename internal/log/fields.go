package log

// Field names shared across components.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldMonth      = "month"
	FieldMode       = "mode"
	FieldPage       = "page"
	FieldGeneration = "generation"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentAuth      = "auth"
	ComponentHTTP      = "http"
	ComponentListing   = "listing"
	ComponentDashboard = "dashboard"
	ComponentTUI       = "tui"
)
