package directive

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

var blockRe = regexp.MustCompile(`(?s)` + StartSentinel + `(.*?)` + EndSentinel)

// Decode splits a model reply into the text meant for the user and the
// directives embedded in it, in document order. Blocks that fail to decode
// are removed from the visible text and reported in errs. A start marker
// without a matching end marker is left in place.
func Decode(text string) (visible string, directives []Directive, errs []error) {
	for _, m := range blockRe.FindAllStringSubmatch(text, -1) {
		d, err := decodeBody(m[1])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		directives = append(directives, d)
	}
	visible = strings.TrimSpace(blockRe.ReplaceAllString(text, ""))
	return visible, directives, errs
}

func decodeBody(body string) (Directive, error) {
	body = strings.TrimSpace(body)
	raw := map[string]json.RawMessage{}
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Directive{}, &MalformedError{Body: body, Reason: "invalid json: " + err.Error()}
	}
	if dec.InputOffset() != int64(len(body)) {
		return Directive{}, &MalformedError{Body: body, Reason: "trailing data after json object"}
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		fields[k] = stringify(v)
	}
	kind := Kind(strings.ToUpper(strings.TrimSpace(fields[KindField])))
	if kind == "" {
		return Directive{}, &MalformedError{Body: body, Reason: "missing " + KindField}
	}
	if !kind.Valid() {
		return Directive{}, &MalformedError{Body: body, Reason: "unknown kind " + string(kind)}
	}
	delete(fields, KindField)
	return Directive{Kind: kind, Fields: fields}, nil
}

// stringify renders a JSON value as a plain string: strings are unquoted,
// null becomes empty, anything else keeps its compact JSON form.
func stringify(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || string(v) == "null" {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err == nil {
		return buf.String()
	}
	return string(v)
}

// Encode renders d in the wire format understood by Decode.
func Encode(d Directive) string {
	obj := make(map[string]string, len(d.Fields)+1)
	for k, v := range d.Fields {
		obj[k] = v
	}
	obj[KindField] = string(d.Kind)
	b, _ := json.Marshal(obj)
	return StartSentinel + " " + string(b) + " " + EndSentinel
}
