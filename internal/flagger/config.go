package flagger

// Patterns are case-insensitive regular expressions matched against
// decoded URLs (or the raw user agent for ScannerAgent).
type Patterns struct {
	SQLInjection  string
	XSS           string
	PathTraversal string
	ScannerAgent  string
}

type Config struct {
	Patterns Patterns
	// FailureOutcome is the SSH outcome value counted as a failed login.
	FailureOutcome string
	// PrivilegedUser is the account whose failed logins are escalated.
	PrivilegedUser string
}

func DefaultConfig() Config {
	return Config{
		Patterns: Patterns{
			SQLInjection:  `union|select|drop|insert|--|or\s+1=1`,
			XSS:           `<script>|alert\(|onerror=|%3Cscript%3E`,
			PathTraversal: `\.\./|/etc/passwd|%2e%2e`,
			ScannerAgent:  `sqlmap|nikto|nmap|masscan`,
		},
		FailureOutcome: "failure",
		PrivilegedUser: "root",
	}
}
