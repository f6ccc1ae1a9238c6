package model

// Protocol identifies which producer shape a log record came from.
type Protocol string

const (
	ProtocolHTTP Protocol = "HTTP"
	ProtocolSSH  Protocol = "SSH"
)

// Placeholder is written into every string field that has no value,
// including all fields of the inactive protocol.
const Placeholder = "-"

// LogRecord is the canonical, flat shape produced by the normalizer.
// Exactly one protocol's fields carry real values; the others hold
// Placeholder or 0.
type LogRecord struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp"`
	Protocol  Protocol `json:"protocol"`
	Dataset   string   `json:"dataset"`
	SourceIP  string   `json:"ip"`
	Message   string   `json:"message"`

	// HTTP
	Method      string `json:"method"`
	Path        string `json:"path"`
	FullURL     string `json:"fullUrl"`
	QueryString string `json:"queryString"`
	StatusCode  int    `json:"status"`
	BytesSent   int64  `json:"bytes"`
	UserAgent   string `json:"userAgent"`
	Referrer    string `json:"referrer"`
	OS          string `json:"os"`
	Browser     string `json:"browser"`
	Device      string `json:"device"`

	// SSH
	Username string `json:"username"`
	Outcome  string `json:"outcome"`

	// Percent-decoded variants used by the classifier. They are not part of
	// the wire contract.
	DecodedPath  string `json:"-"`
	DecodedURL   string `json:"-"`
	DecodedQuery string `json:"-"`
}

// ClassifiedLog is a record with its classification attached, the unit
// returned by the log pipeline.
type ClassifiedLog struct {
	LogRecord
	Classification
}

// LogSummary aggregates a classified log batch for the attack and
// security panels.
type LogSummary struct {
	Total        int                `json:"total"`
	ByAttackType map[AttackType]int `json:"byAttackType"`
	BySeverity   map[Severity]int   `json:"bySeverity"`
	BruteForce   int                `json:"bruteForce"`
	AuthFailures int                `json:"authFailures"`
}
