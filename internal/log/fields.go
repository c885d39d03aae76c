package log

import (
	"slices"
	"time"
)

// Attribute keys shared by every binary, so log queries work across them.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldUserAgent     = "user_agent"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"

	FieldTransactionID = "transaction_id"
	FieldWalletID      = "wallet_id"
	FieldCurrency      = "currency"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentRecurring = "recurring"
	ComponentWorker    = "worker"
)

// Operation names attached to failed API requests.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpSync     = "sync"
	OpImport   = "import"
	OpExport   = "export"
	OpRollover = "rollover"
	OpRender   = "render"
)

// Fields collects attributes for one record. Empty optional values are skipped.
type Fields map[string]any

func NewFields() Fields {
	return Fields{}
}

func (f Fields) Request(method, path, query, userAgent string) Fields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f.optional(FieldQuery, query)
	f.optional(FieldUserAgent, userAgent)
	return f
}

// Response records the status and how long the request took. Anything
// below 400 counts as a success.
func (f Fields) Response(status int, elapsed time.Duration) Fields {
	f[FieldStatusCode] = status
	f[FieldDuration] = elapsed.Milliseconds()
	f[FieldDurationHuman] = elapsed.String()
	f[FieldSuccess] = status < 400
	return f
}

func (f Fields) Client(ip string) Fields {
	f.optional(FieldClientIP, ip)
	return f
}

func (f Fields) Err(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f Fields) optional(key, value string) {
	if value != "" {
		f[key] = value
	}
}

// Args flattens the fields into slog key/value pairs, ordered by key.
func (f Fields) Args() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	args := make([]any, 0, len(f)*2)
	for _, k := range keys {
		args = append(args, k, f[k])
	}
	return args
}
