package zabbix

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeZabbix is a minimal JSON-RPC server. results maps a method to the raw
// JSON written as "result"; errs maps a method to an error object.
type fakeZabbix struct {
	t       *testing.T
	mu      sync.Mutex
	logins  int
	token   string
	calls   map[string]int
	auths   []string
	results map[string]string
	errs    map[string]string
	// rejectFirst makes the first authenticated call fail with a session error.
	rejectFirst atomic.Bool
}

func newFakeZabbix(t *testing.T) (*fakeZabbix, *httptest.Server) {
	f := &fakeZabbix{
		t:       t,
		token:   "tok-1",
		calls:   map[string]int{},
		results: map[string]string{},
		errs:    map[string]string{},
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeZabbix) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		Auth   string          `json:"auth"`
		ID     int64           `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Errorf("decode request: %v", err)
		return
	}

	f.mu.Lock()
	f.calls[req.Method]++
	if req.Method != "user.login" && req.Method != "apiinfo.version" {
		f.auths = append(f.auths, req.Auth)
	}
	var out string
	switch {
	case req.Method == "user.login":
		f.logins++
		out = `{"jsonrpc":"2.0","result":"` + f.token + `","id":1}`
	case f.errs[req.Method] != "":
		out = `{"jsonrpc":"2.0","error":` + f.errs[req.Method] + `,"id":1}`
	case req.Method != "apiinfo.version" && f.rejectFirst.CompareAndSwap(true, false):
		f.token = "tok-2"
		out = `{"jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid params.","data":"Session terminated, re-login, please."},"id":1}`
	default:
		res, ok := f.results[req.Method]
		if !ok {
			res = "[]"
		}
		out = `{"jsonrpc":"2.0","result":` + res + `,"id":1}`
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(out))
}

func TestLoginIsLazyAndCached(t *testing.T) {
	f, srv := newFakeZabbix(t)
	f.results["host.get"] = `[{"hostid":"10084","host":"web-01","interfaces":[{"ip":"10.0.0.5","available":"1"}]}]`

	c := New(srv.URL, "Admin", "zabbix")
	if !c.Session().AcquiredAt().IsZero() {
		t.Fatal("session should start empty")
	}

	for i := 0; i < 3; i++ {
		hosts, err := c.Hosts(context.Background())
		if err != nil {
			t.Fatalf("Hosts: %v", err)
		}
		if len(hosts) != 1 || hosts[0].Host != "web-01" || hosts[0].Interfaces[0].IP != "10.0.0.5" {
			t.Fatalf("unexpected hosts: %+v", hosts)
		}
	}

	if f.logins != 1 {
		t.Errorf("expected a single login, got %d", f.logins)
	}
	for _, a := range f.auths {
		if a != "tok-1" {
			t.Errorf("call sent auth %q, want tok-1", a)
		}
	}
	if c.Session().AcquiredAt().IsZero() {
		t.Error("AcquiredAt should be set after login")
	}
}

func TestConcurrentFirstCallsLoginOnce(t *testing.T) {
	f, srv := newFakeZabbix(t)
	c := New(srv.URL, "Admin", "zabbix")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Items(context.Background(), "10084"); err != nil {
				t.Errorf("Items: %v", err)
			}
		}()
	}
	wg.Wait()

	if f.logins != 1 {
		t.Errorf("expected one login, got %d", f.logins)
	}
}

func TestReloginOnceOnSessionError(t *testing.T) {
	f, srv := newFakeZabbix(t)
	f.results["item.get"] = `[{"key_":"system.cpu.util","lastvalue":"12.5","lastclock":"1700000000"}]`

	c := New(srv.URL, "Admin", "zabbix")
	if _, err := c.Items(context.Background(), "1"); err != nil {
		t.Fatalf("warm-up: %v", err)
	}

	f.rejectFirst.Store(true)
	items, err := c.Items(context.Background(), "1")
	if err != nil {
		t.Fatalf("Items after rejection: %v", err)
	}
	if len(items) != 1 || items[0].Key != "system.cpu.util" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if f.logins != 2 {
		t.Errorf("expected re-login, logins = %d", f.logins)
	}
	if last := f.auths[len(f.auths)-1]; last != "tok-2" {
		t.Errorf("retry used token %q, want tok-2", last)
	}
}

func TestRPCErrorIsReturned(t *testing.T) {
	f, srv := newFakeZabbix(t)
	f.errs["trigger.get"] = `{"code":-32500,"message":"Application error.","data":"No permissions."}`

	c := New(srv.URL, "Admin", "zabbix")
	_, err := c.Triggers(context.Background())

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %T: %v", err, err)
	}
	if rpcErr.IsAuthError() {
		t.Error("permission error must not be treated as auth error")
	}
	if f.logins != 1 {
		t.Errorf("non-auth errors must not trigger re-login, logins = %d", f.logins)
	}
}

func TestNonListResult(t *testing.T) {
	f, srv := newFakeZabbix(t)
	f.results["host.get"] = `{"unexpected":"object"}`

	c := New(srv.URL, "Admin", "zabbix")
	_, err := c.Hosts(context.Background())
	if !errors.Is(err, ErrNotList) {
		t.Fatalf("expected ErrNotList, got %v", err)
	}
}

func TestLoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid params.","data":"Incorrect user name or password."},"id":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "Admin", "wrong")
	_, err := c.Hosts(context.Background())
	if !errors.Is(err, ErrLogin) {
		t.Fatalf("expected ErrLogin, got %v", err)
	}
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("login error should carry the RPC error, got %v", err)
	}
}

func TestAPIVersionNeedsNoLogin(t *testing.T) {
	f, srv := newFakeZabbix(t)
	f.results["apiinfo.version"] = `"7.0.5"`

	c := New(srv.URL, "", "")
	v, err := c.APIVersion(context.Background())
	if err != nil {
		t.Fatalf("APIVersion: %v", err)
	}
	if v != "7.0.5" {
		t.Errorf("version = %q", v)
	}
	if f.logins != 0 {
		t.Errorf("apiinfo.version must not log in, logins = %d", f.logins)
	}
}

type recordingObserver struct {
	mu  sync.Mutex
	ops []string
}

func (r *recordingObserver) ObserveUpstream(backend, op string, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, backend+":"+op)
}

func TestObserver(t *testing.T) {
	_, srv := newFakeZabbix(t)
	obs := &recordingObserver{}
	c := New(srv.URL, "Admin", "zabbix", WithObserver(obs))

	if _, err := c.HostInterfaces(context.Background(), "1"); err != nil {
		t.Fatal(err)
	}
	want := []string{"zabbix:user.login", "zabbix:hostinterface.get"}
	if len(obs.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", obs.ops, want)
	}
	for i := range want {
		if obs.ops[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, obs.ops[i], want[i])
		}
	}
}

func TestScalarDecoding(t *testing.T) {
	tests := []struct {
		in        string
		wantStr   string
		wantFloat float64
		wantInt   int64
	}{
		{`"42.5"`, "42.5", 42.5, 42},
		{`7`, "7", 7, 7},
		{`null`, "", 0, 0},
		{`"abc"`, "abc", 0, 0},
		{`{"x":1}`, "", 0, 0},
		{`true`, "true", 0, 0},
		{`"NaN"`, "NaN", 0, 0},
		{`"Inf"`, "Inf", 0, 0},
		{`"-infinity"`, "-infinity", 0, 0},
	}
	for _, tt := range tests {
		var s Scalar
		if err := json.Unmarshal([]byte(tt.in), &s); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if s.String() != tt.wantStr {
			t.Errorf("%s: String() = %q, want %q", tt.in, s.String(), tt.wantStr)
		}
		if s.Float() != tt.wantFloat {
			t.Errorf("%s: Float() = %v, want %v", tt.in, s.Float(), tt.wantFloat)
		}
		if s.Int() != tt.wantInt {
			t.Errorf("%s: Int() = %v, want %v", tt.in, s.Int(), tt.wantInt)
		}
	}
}

func TestTriggerDecodingToleratesNumbers(t *testing.T) {
	f, srv := newFakeZabbix(t)
	f.results["trigger.get"] = `[{"triggerid":13491,"description":"High CPU","priority":4,"lastchange":"1700000000","value":1,"hosts":[{"host":"db-01"}]}]`

	c := New(srv.URL, "Admin", "zabbix")
	triggers, err := c.Triggers(context.Background())
	if err != nil {
		t.Fatalf("Triggers: %v", err)
	}
	if len(triggers) != 1 {
		t.Fatalf("len = %d", len(triggers))
	}
	tr := triggers[0]
	if tr.TriggerID != "13491" || tr.Priority != "4" || tr.Value != "1" || tr.Hosts[0].Host != "db-01" {
		t.Errorf("unexpected trigger: %+v", tr)
	}
}
