package flagger

import (
	"regexp"

	"opswatch/internal/model"
)

// Rule is one step of a classification cascade. Eval reports whether the
// rule matched and the verdict it produces. A matching rule overwrites the
// current verdict, unless OnlyIfStronger is set and its score does not
// exceed the current one.
type Rule struct {
	Name           string
	Eval           func(rec *model.LogRecord) (model.Classification, bool)
	OnlyIfStronger bool
}

// run evaluates every rule in order, without short-circuiting.
func run(rules []Rule, rec *model.LogRecord) model.Classification {
	verdict := model.Normal()
	for _, r := range rules {
		next, ok := r.Eval(rec)
		if !ok {
			continue
		}
		if r.OnlyIfStronger && next.Score <= verdict.Score {
			continue
		}
		verdict = next
	}
	return verdict
}

func verdict(score int, sev model.Severity, attack model.AttackType) model.Classification {
	return model.Classification{Severity: sev, AttackType: attack, Score: score}
}

func statusTierRule() Rule {
	return Rule{
		Name: "status_tier",
		Eval: func(rec *model.LogRecord) (model.Classification, bool) {
			switch code := rec.StatusCode; {
			case code >= 500:
				return verdict(4, model.SeverityCritical, model.AttackServerError), true
			case code == 401:
				return verdict(3, model.SeverityHigh, model.AttackPossibleBruteforce), true
			case code == 403:
				return verdict(2, model.SeverityMedium, model.AttackForbiddenAccess), true
			case code == 404:
				return verdict(1, model.SeverityLow, model.AttackPathScanning), true
			}
			return model.Classification{}, false
		},
	}
}

func sqlInjectionRule(re *regexp.Regexp) Rule {
	return Rule{
		Name: "sql_injection",
		Eval: func(rec *model.LogRecord) (model.Classification, bool) {
			hit := re.MatchString(rec.DecodedURL) || re.MatchString(rec.DecodedQuery)
			return verdict(5, model.SeverityCritical, model.AttackSQLInjection), hit
		},
	}
}

func xssRule(re *regexp.Regexp) Rule {
	return Rule{
		Name: "xss",
		Eval: func(rec *model.LogRecord) (model.Classification, bool) {
			return verdict(5, model.SeverityCritical, model.AttackXSS), re.MatchString(rec.DecodedURL)
		},
	}
}

func pathTraversalRule(re *regexp.Regexp) Rule {
	return Rule{
		Name: "path_traversal",
		Eval: func(rec *model.LogRecord) (model.Classification, bool) {
			return verdict(5, model.SeverityCritical, model.AttackLFI), re.MatchString(rec.DecodedURL)
		},
	}
}

func scannerRule(re *regexp.Regexp) Rule {
	return Rule{
		Name: "scanner_agent",
		Eval: func(rec *model.LogRecord) (model.Classification, bool) {
			return verdict(4, model.SeverityHigh, model.AttackScanner), re.MatchString(rec.UserAgent)
		},
		OnlyIfStronger: true,
	}
}

func failedLoginRule(failure string) Rule {
	return Rule{
		Name: "ssh_failed_login",
		Eval: func(rec *model.LogRecord) (model.Classification, bool) {
			return verdict(3, model.SeverityHigh, model.AttackSSHFailedLogin), rec.Outcome == failure
		},
	}
}

func privilegedFailureRule(failure, user string) Rule {
	return Rule{
		Name: "ssh_root_bruteforce",
		Eval: func(rec *model.LogRecord) (model.Classification, bool) {
			hit := rec.Username == user && rec.Outcome == failure
			return verdict(5, model.SeverityCritical, model.AttackSSHRootBruteforce), hit
		},
	}
}
