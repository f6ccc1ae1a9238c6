package normalizer

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"

	"opswatch/internal/elastic"
	"opswatch/internal/model"
)

// DefaultAuthDataset is the dataset tag of SSH authentication events.
const DefaultAuthDataset = "system.auth"

// Normalizer turns raw log-store documents into canonical records.
// It is safe for concurrent use.
type Normalizer struct {
	authDataset string
	parser      fastjson.ParserPool
}

// New returns a Normalizer routing documents tagged authDataset to the SSH
// mapping and everything else to the HTTP mapping.
func New(authDataset string) *Normalizer {
	if authDataset == "" {
		authDataset = DefaultAuthDataset
	}
	return &Normalizer{authDataset: authDataset}
}

// Normalize maps one search hit. It never fails: unreadable or missing
// fields become placeholders.
func (n *Normalizer) Normalize(hit elastic.Hit) model.LogRecord {
	p := n.parser.Get()
	defer n.parser.Put(p)

	src, err := p.ParseBytes(hit.Source)
	if err != nil || src.Type() != fastjson.TypeObject {
		src = emptyObject
	}

	dataset := text(src, "event.dataset", "data_stream.dataset")
	rec := model.LogRecord{
		ID:        orPlaceholder(hit.ID),
		Timestamp: orPlaceholder(text(src, "@timestamp")),
		Dataset:   orPlaceholder(dataset),
		SourceIP:  orPlaceholder(text(src, "source.ip", "source.address", "client.ip", "client.address")),
		Message:   orPlaceholder(text(src, "message")),
	}
	clearHTTP(&rec)
	clearSSH(&rec)

	if dataset == n.authDataset {
		rec.Protocol = model.ProtocolSSH
		mapSSH(src, &rec)
	} else {
		rec.Protocol = model.ProtocolHTTP
		mapHTTP(src, &rec)
	}
	return rec
}

var emptyObject = fastjson.MustParse(`{}`)

func mapHTTP(src *fastjson.Value, rec *model.LogRecord) {
	original := text(src, "url.original", "url.full")
	path := text(src, "url.path")
	query := text(src, "url.query")

	if original != "" && (path == "" || query == "") {
		p, q, _ := strings.Cut(original, "?")
		if path == "" {
			path = p
		}
		if query == "" {
			query = q
		}
	}
	if original == "" && path != "" {
		original = path
		if query != "" {
			original += "?" + query
		}
	}

	rec.Method = orPlaceholder(text(src, "http.request.method"))
	rec.Path = orPlaceholder(path)
	rec.FullURL = orPlaceholder(original)
	rec.QueryString = orPlaceholder(query)
	rec.StatusCode = int(integer(src, "http.response.status_code"))
	rec.BytesSent = integer(src, "http.response.body.bytes", "http.response.bytes")
	rec.UserAgent = orPlaceholder(text(src, "user_agent.original"))
	rec.Referrer = orPlaceholder(text(src, "http.request.referrer"))
	rec.OS = orPlaceholder(text(src, "user_agent.os.full", "user_agent.os.name"))
	rec.Browser = orPlaceholder(text(src, "user_agent.name"))
	rec.Device = orPlaceholder(text(src, "user_agent.device.name"))

	rec.DecodedPath = decode(path)
	rec.DecodedURL = decode(original)
	rec.DecodedQuery = decode(query)
}

func mapSSH(src *fastjson.Value, rec *model.LogRecord) {
	rec.Username = orPlaceholder(text(src, "user.name", "system.auth.user"))

	outcome := strings.ToLower(text(src, "event.outcome"))
	if outcome == "" {
		switch strings.ToLower(text(src, "system.auth.ssh.event")) {
		case "failed", "invalid":
			outcome = "failure"
		case "accepted":
			outcome = "success"
		}
	}
	rec.Outcome = orPlaceholder(outcome)
}

func clearHTTP(rec *model.LogRecord) {
	rec.Method = model.Placeholder
	rec.Path = model.Placeholder
	rec.FullURL = model.Placeholder
	rec.QueryString = model.Placeholder
	rec.UserAgent = model.Placeholder
	rec.Referrer = model.Placeholder
	rec.OS = model.Placeholder
	rec.Browser = model.Placeholder
	rec.Device = model.Placeholder
}

func clearSSH(rec *model.LogRecord) {
	rec.Username = model.Placeholder
	rec.Outcome = model.Placeholder
}

// decode percent-decodes s. Malformed escapes return s unchanged.
func decode(s string) string {
	d, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return d
}

func orPlaceholder(s string) string {
	if s == "" {
		return model.Placeholder
	}
	return s
}

// lookup resolves a dotted ECS path either as nested objects or as a
// literal dotted key (flattened documents).
func lookup(v *fastjson.Value, path string) *fastjson.Value {
	if x := v.Get(strings.Split(path, ".")...); x != nil {
		return x
	}
	return v.Get(path)
}

// text returns the first non-empty value among paths rendered as a string.
// Arrays yield their first element.
func text(v *fastjson.Value, paths ...string) string {
	for _, path := range paths {
		x := lookup(v, path)
		if x == nil {
			continue
		}
		if x.Type() == fastjson.TypeArray {
			arr, _ := x.Array()
			if len(arr) == 0 {
				continue
			}
			x = arr[0]
		}
		switch x.Type() {
		case fastjson.TypeString:
			if b, _ := x.StringBytes(); len(b) > 0 {
				return string(b)
			}
		case fastjson.TypeNumber, fastjson.TypeTrue, fastjson.TypeFalse:
			return x.String()
		}
	}
	return ""
}

// integer returns the first numeric value among paths, accepting numbers
// and numeric strings. Absent or malformed values yield 0.
func integer(v *fastjson.Value, paths ...string) int64 {
	for _, path := range paths {
		x := lookup(v, path)
		if x == nil {
			continue
		}
		switch x.Type() {
		case fastjson.TypeNumber:
			if n, err := x.Int64(); err == nil {
				return n
			}
			if f, err := x.Float64(); err == nil {
				return int64(f)
			}
		case fastjson.TypeString:
			b, _ := x.StringBytes()
			if n, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}
