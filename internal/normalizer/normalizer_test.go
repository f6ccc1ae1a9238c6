package normalizer

import (
	"testing"

	"opswatch/internal/elastic"
	"opswatch/internal/model"
)

func hit(id, src string) elastic.Hit {
	return elastic.Hit{ID: id, Source: []byte(src)}
}

func TestNormalizeHTTP(t *testing.T) {
	n := New("system.auth")
	rec := n.Normalize(hit("h1", `{
		"@timestamp": "2024-05-01T12:00:00.000Z",
		"message": "GET /search?q=%3Cscript%3E HTTP/1.1",
		"event": {"dataset": "nginx.access"},
		"source": {"ip": "203.0.113.7"},
		"http": {
			"request": {"method": "GET", "referrer": "https://example.com/"},
			"response": {"status_code": 404, "body": {"bytes": 512}}
		},
		"url": {"original": "/search?q=%3Cscript%3E", "path": "/search", "query": "q=%3Cscript%3E"},
		"user_agent": {"original": "Mozilla/5.0", "name": "Firefox", "os": {"name": "Linux"}, "device": {"name": "Other"}}
	}`))

	if rec.Protocol != model.ProtocolHTTP {
		t.Fatalf("Protocol = %s", rec.Protocol)
	}
	checks := map[string][2]string{
		"ID":          {rec.ID, "h1"},
		"Timestamp":   {rec.Timestamp, "2024-05-01T12:00:00.000Z"},
		"Dataset":     {rec.Dataset, "nginx.access"},
		"SourceIP":    {rec.SourceIP, "203.0.113.7"},
		"Method":      {rec.Method, "GET"},
		"Path":        {rec.Path, "/search"},
		"FullURL":     {rec.FullURL, "/search?q=%3Cscript%3E"},
		"QueryString": {rec.QueryString, "q=%3Cscript%3E"},
		"UserAgent":   {rec.UserAgent, "Mozilla/5.0"},
		"Referrer":    {rec.Referrer, "https://example.com/"},
		"OS":          {rec.OS, "Linux"},
		"Browser":     {rec.Browser, "Firefox"},
		"Device":      {rec.Device, "Other"},
		"DecodedURL":  {rec.DecodedURL, "/search?q=<script>"},
		"DecodedQ":    {rec.DecodedQuery, "q=<script>"},
		"Username":    {rec.Username, "-"},
		"Outcome":     {rec.Outcome, "-"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", name, c[0], c[1])
		}
	}
	if rec.StatusCode != 404 {
		t.Errorf("StatusCode = %d", rec.StatusCode)
	}
	if rec.BytesSent != 512 {
		t.Errorf("BytesSent = %d", rec.BytesSent)
	}
}

func TestNormalizeSSH(t *testing.T) {
	n := New("system.auth")
	rec := n.Normalize(hit("s1", `{
		"@timestamp": "2024-05-01T12:00:01Z",
		"event": {"dataset": "system.auth", "outcome": "failure"},
		"source": {"ip": "198.51.100.9"},
		"user": {"name": "root"}
	}`))

	if rec.Protocol != model.ProtocolSSH {
		t.Fatalf("Protocol = %s", rec.Protocol)
	}
	if rec.Username != "root" || rec.Outcome != "failure" {
		t.Errorf("ssh fields = %q/%q", rec.Username, rec.Outcome)
	}
	if rec.SourceIP != "198.51.100.9" {
		t.Errorf("SourceIP = %q", rec.SourceIP)
	}
	for name, v := range map[string]string{
		"Method": rec.Method, "Path": rec.Path, "FullURL": rec.FullURL,
		"QueryString": rec.QueryString, "UserAgent": rec.UserAgent,
		"Referrer": rec.Referrer, "OS": rec.OS, "Browser": rec.Browser, "Device": rec.Device,
	} {
		if v != model.Placeholder {
			t.Errorf("HTTP field %s = %q, want placeholder", name, v)
		}
	}
	if rec.StatusCode != 0 || rec.BytesSent != 0 {
		t.Errorf("numeric HTTP fields must be 0, got %d/%d", rec.StatusCode, rec.BytesSent)
	}
}

func TestNormalizeSSHOutcomeFallback(t *testing.T) {
	n := New("")
	tests := []struct {
		event string
		want  string
	}{
		{"Failed", "failure"},
		{"Invalid", "failure"},
		{"Accepted", "success"},
		{"", "-"},
	}
	for _, tt := range tests {
		rec := n.Normalize(hit("x", `{"event":{"dataset":"system.auth"},"system":{"auth":{"ssh":{"event":"`+tt.event+`"}}}}`))
		if rec.Outcome != tt.want {
			t.Errorf("ssh.event %q: Outcome = %q, want %q", tt.event, rec.Outcome, tt.want)
		}
	}
}

func TestNormalizeFlattenedKeysAndStrings(t *testing.T) {
	n := New("system.auth")
	rec := n.Normalize(hit("f1", `{
		"event.dataset": "apache.access",
		"client.ip": "192.0.2.1",
		"http.response.status_code": "503",
		"url.original": "/a/b?c=d"
	}`))

	if rec.Protocol != model.ProtocolHTTP {
		t.Fatalf("Protocol = %s", rec.Protocol)
	}
	if rec.StatusCode != 503 {
		t.Errorf("StatusCode = %d", rec.StatusCode)
	}
	if rec.SourceIP != "192.0.2.1" {
		t.Errorf("SourceIP = %q", rec.SourceIP)
	}
	if rec.Path != "/a/b" || rec.QueryString != "c=d" {
		t.Errorf("derived path/query = %q/%q", rec.Path, rec.QueryString)
	}
}

func TestNormalizeComposesURLFromParts(t *testing.T) {
	rec := New("").Normalize(hit("c1", `{"url":{"path":"/x","query":"id=1"}}`))
	if rec.FullURL != "/x?id=1" {
		t.Errorf("FullURL = %q", rec.FullURL)
	}
}

func TestNormalizeMalformedEscapeFallsBack(t *testing.T) {
	rec := New("").Normalize(hit("m1", `{"url":{"original":"/p?x=%E0%A4%A","path":"/p","query":"x=%E0%A4%A"}}`))
	if rec.DecodedURL != "/p?x=%E0%A4%A" {
		t.Errorf("DecodedURL = %q, want raw string", rec.DecodedURL)
	}
	if rec.DecodedQuery != "x=%E0%A4%A" {
		t.Errorf("DecodedQuery = %q, want raw string", rec.DecodedQuery)
	}
	if rec.DecodedPath != "/p" {
		t.Errorf("DecodedPath = %q", rec.DecodedPath)
	}
}

func TestNormalizeNeverFails(t *testing.T) {
	n := New("system.auth")
	for _, src := range []string{``, `not json`, `[]`, `{}`, `{"event":{"dataset":42}}`} {
		rec := n.Normalize(hit("", src))
		if rec.ID != "-" || rec.Timestamp != "-" || rec.SourceIP != "-" || rec.Message != "-" {
			t.Errorf("source %q: placeholders missing: %+v", src, rec)
		}
		if rec.Protocol != model.ProtocolHTTP {
			t.Errorf("source %q: Protocol = %s, want HTTP fallback", src, rec.Protocol)
		}
		if rec.StatusCode != 0 {
			t.Errorf("source %q: StatusCode = %d", src, rec.StatusCode)
		}
	}
}

func TestNormalizeSourceIPFromArray(t *testing.T) {
	rec := New("").Normalize(hit("a", `{"source":{"address":["10.1.1.1","10.1.1.2"]}}`))
	if rec.SourceIP != "10.1.1.1" {
		t.Errorf("SourceIP = %q", rec.SourceIP)
	}
}
