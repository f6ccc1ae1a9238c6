package flagger

import (
	"fmt"
	"regexp"

	"opswatch/internal/model"
)

// FlaggerService classifies canonical log records. It holds no mutable
// state and is safe for concurrent use.
type FlaggerService struct {
	httpRules []Rule
	sshRules  []Rule
}

func NewFlaggerService(cfg Config) (*FlaggerService, error) {
	compile := func(name, expr string) (*regexp.Regexp, error) {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("flagger: invalid %s pattern: %w", name, err)
		}
		return re, nil
	}

	sqli, err := compile("sql injection", cfg.Patterns.SQLInjection)
	if err != nil {
		return nil, err
	}
	xss, err := compile("xss", cfg.Patterns.XSS)
	if err != nil {
		return nil, err
	}
	lfi, err := compile("path traversal", cfg.Patterns.PathTraversal)
	if err != nil {
		return nil, err
	}
	scanner, err := compile("scanner agent", cfg.Patterns.ScannerAgent)
	if err != nil {
		return nil, err
	}

	return &FlaggerService{
		// Order matters: later matches overwrite earlier ones.
		httpRules: []Rule{
			statusTierRule(),
			sqlInjectionRule(sqli),
			xssRule(xss),
			pathTraversalRule(lfi),
			scannerRule(scanner),
		},
		sshRules: []Rule{
			failedLoginRule(cfg.FailureOutcome),
			privilegedFailureRule(cfg.FailureOutcome, cfg.PrivilegedUser),
		},
	}, nil
}

// MustNew is NewFlaggerService for configurations known to be valid.
func MustNew(cfg Config) *FlaggerService {
	fs, err := NewFlaggerService(cfg)
	if err != nil {
		panic(err)
	}
	return fs
}

// Classify runs the cascade for the record's protocol.
func (fs *FlaggerService) Classify(rec model.LogRecord) model.Classification {
	switch rec.Protocol {
	case model.ProtocolSSH:
		return run(fs.sshRules, &rec)
	case model.ProtocolHTTP:
		return run(fs.httpRules, &rec)
	default:
		return model.Normal()
	}
}

// Rules returns the ordered cascade used for protocol p.
func (fs *FlaggerService) Rules(p model.Protocol) []Rule {
	var src []Rule
	switch p {
	case model.ProtocolSSH:
		src = fs.sshRules
	case model.ProtocolHTTP:
		src = fs.httpRules
	}
	return append([]Rule(nil), src...)
}
