package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldUserID      = "user_id"
	FieldUsername    = "username"
	FieldIncomeID    = "income_id"
	FieldExpenseID   = "expense_id"
	FieldAmountCents = "amount_cents"
	FieldFrequency   = "frequency"

	FieldPort     = "port"
	FieldDBPath   = "db_path"
	FieldExchange = "exchange"
	FieldQueue    = "queue"
	FieldCount    = "count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAuth    = "auth"
	ComponentSession = "session"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
)

// Operations defines standard operation names
const (
	OpSignup   = "signup"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpCreate   = "create"
	OpList     = "list"
	OpSweep    = "sweep"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
