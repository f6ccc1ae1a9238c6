package output

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"opswatch/internal/elastic"
	"opswatch/internal/flagger"
	"opswatch/internal/model"
	"opswatch/internal/normalizer"
)

type fakeSource struct {
	hits []elastic.Hit
	err  error
	got  elastic.SearchRequest
}

func (f *fakeSource) Search(ctx context.Context, req elastic.SearchRequest) ([]elastic.Hit, error) {
	f.got = req
	return f.hits, f.err
}

type countingObserver struct {
	seen []model.AttackType
}

func (c *countingObserver) ObserveClassification(cl model.Classification) {
	c.seen = append(c.seen, cl.AttackType)
}

func hit(id, src string) elastic.Hit {
	return elastic.Hit{ID: id, Source: []byte(src)}
}

var pipelineHits = []elastic.Hit{
	hit("1", `{"@timestamp":"2026-10-16T10:00:03Z","event":{"dataset":"nginx.access"},"url":{"original":"/x?id=1'%20OR%201=1--"},"http":{"response":{"status_code":200}}}`),
	hit("2", `{"@timestamp":"2026-10-16T10:00:02Z","event":{"dataset":"nginx.access"},"url":{"original":"/index.html"},"http":{"response":{"status_code":200}}}`),
	hit("3", `{"@timestamp":"2026-10-16T10:00:01Z","event":{"dataset":"system.auth","outcome":"failure"},"user":{"name":"root"},"source":{"ip":"203.0.113.9"}}`),
	hit("4", `{"@timestamp":"2026-10-16T10:00:00Z","event":{"dataset":"nginx.access"},"url":{"original":"/boom"},"http":{"response":{"status_code":500}}}`),
}

func runPipeline(t *testing.T, src LogSource, opts PipelineOptions) ([]model.ClassifiedLog, error) {
	t.Helper()
	return RunLogPipeline(context.Background(), src, normalizer.New(normalizer.DefaultAuthDataset), flagger.MustNew(flagger.DefaultConfig()), opts)
}

func TestRunLogPipeline(t *testing.T) {
	src := &fakeSource{hits: pipelineHits}
	obs := &countingObserver{}
	opts := DefaultPipelineOptions()
	opts.Observer = obs

	logs, err := runPipeline(t, src, opts)
	if err != nil {
		t.Fatalf("RunLogPipeline: %v", err)
	}

	want := []struct {
		id     string
		attack model.AttackType
		sev    model.Severity
	}{
		{"1", model.AttackSQLInjection, model.SeverityCritical},
		{"3", model.AttackSSHRootBruteforce, model.SeverityCritical},
		{"4", model.AttackServerError, model.SeverityCritical},
	}
	if len(logs) != len(want) {
		t.Fatalf("got %d logs, want %d", len(logs), len(want))
	}
	for i, w := range want {
		if logs[i].ID != w.id || logs[i].AttackType != w.attack || logs[i].Severity != w.sev {
			t.Errorf("log %d = %s %s/%s, want %s %s/%s", i, logs[i].ID, logs[i].Severity, logs[i].AttackType, w.id, w.sev, w.attack)
		}
	}
	if len(obs.seen) != 4 {
		t.Errorf("observer saw %d records, want 4", len(obs.seen))
	}

	wantReq := elastic.SearchRequest{Size: 100, Datasets: []string{"nginx.access", "system.auth"}, ExcludePathPrefix: "/api/"}
	if !reflect.DeepEqual(src.got, wantReq) {
		t.Errorf("search request = %+v, want %+v", src.got, wantReq)
	}
}

func TestRunLogPipelineShowAll(t *testing.T) {
	opts := DefaultPipelineOptions()
	opts.ShowAll = true

	logs, err := runPipeline(t, &fakeSource{hits: pipelineHits}, opts)
	if err != nil {
		t.Fatalf("RunLogPipeline: %v", err)
	}
	if len(logs) != 4 {
		t.Fatalf("got %d logs, want 4", len(logs))
	}
	if logs[1].AttackType != model.AttackNormal {
		t.Errorf("record 2 should be normal, got %s", logs[1].AttackType)
	}
}

func TestRunLogPipelineEmpty(t *testing.T) {
	logs, err := runPipeline(t, &fakeSource{}, DefaultPipelineOptions())
	if err != nil {
		t.Fatalf("RunLogPipeline: %v", err)
	}
	if logs == nil || len(logs) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", logs)
	}
}

func TestRunLogPipelineFetchError(t *testing.T) {
	boom := errors.New("connection refused")
	src := &fakeSource{err: boom}
	if _, err := runPipeline(t, src, DefaultPipelineOptions()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	mk := func(a model.AttackType, s model.Severity) model.ClassifiedLog {
		return model.ClassifiedLog{Classification: model.Classification{AttackType: a, Severity: s}}
	}
	logs := []model.ClassifiedLog{
		mk(model.AttackPossibleBruteforce, model.SeverityHigh),
		mk(model.AttackSSHRootBruteforce, model.SeverityCritical),
		mk(model.AttackSSHFailedLogin, model.SeverityHigh),
		mk(model.AttackSSHFailedLogin, model.SeverityHigh),
		mk(model.AttackSQLInjection, model.SeverityCritical),
	}

	got := Summarize(logs)
	if got.Total != 5 || got.BruteForce != 2 || got.AuthFailures != 3 {
		t.Errorf("Summarize() = %+v", got)
	}
	if got.ByAttackType[model.AttackSSHFailedLogin] != 2 || got.ByAttackType[model.AttackSQLInjection] != 1 {
		t.Errorf("ByAttackType = %v", got.ByAttackType)
	}
	if got.BySeverity[model.SeverityHigh] != 3 || got.BySeverity[model.SeverityCritical] != 2 {
		t.Errorf("BySeverity = %v", got.BySeverity)
	}

	empty := Summarize(nil)
	if empty.Total != 0 || empty.ByAttackType == nil || empty.BySeverity == nil {
		t.Errorf("Summarize(nil) = %+v", empty)
	}
}
