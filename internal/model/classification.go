package model

import (
	"fmt"
	"strings"
)

// Severity is an ordered risk level. Higher values mean higher risk.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"info", "low", "medium", "high", "critical"}

func (s Severity) String() string {
	if s < SeverityInfo || s > SeverityCritical {
		return "unknown"
	}
	return severityNames[s]
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeverity converts a severity name (case-insensitive) into a Severity.
func ParseSeverity(name string) (Severity, error) {
	for i, n := range severityNames {
		if strings.EqualFold(n, name) {
			return Severity(i), nil
		}
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", name)
}

// AttackType is the label of the rule that produced a classification.
type AttackType string

const (
	AttackNormal             AttackType = "normal"
	AttackServerError        AttackType = "server_error"
	AttackPossibleBruteforce AttackType = "possible_bruteforce"
	AttackForbiddenAccess    AttackType = "forbidden_access"
	AttackPathScanning       AttackType = "path_scanning"
	AttackSQLInjection       AttackType = "sql_injection"
	AttackXSS                AttackType = "xss_attempt"
	AttackLFI                AttackType = "lfi_attempt"
	AttackScanner            AttackType = "scanner_detected"
	AttackSSHFailedLogin     AttackType = "ssh_failed_login"
	AttackSSHRootBruteforce  AttackType = "ssh_root_bruteforce"
)

// AttackTypes lists every label in a stable display order.
var AttackTypes = []AttackType{
	AttackNormal,
	AttackServerError,
	AttackPossibleBruteforce,
	AttackForbiddenAccess,
	AttackPathScanning,
	AttackSQLInjection,
	AttackXSS,
	AttackLFI,
	AttackScanner,
	AttackSSHFailedLogin,
	AttackSSHRootBruteforce,
}

// Classification is the verdict the flagger attaches to a LogRecord.
// Score ranges 0-5 and is only used to guard overridable rules.
type Classification struct {
	Severity   Severity   `json:"severity"`
	AttackType AttackType `json:"attackType"`
	Score      int        `json:"score"`
}

// Normal is the verdict every record starts from.
func Normal() Classification {
	return Classification{Severity: SeverityInfo, AttackType: AttackNormal}
}
