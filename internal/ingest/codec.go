package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/pagecache/internal/record"
)

// FieldKind is the key naming the signal kind in a tagged object.
const FieldKind = "kind"

// Encode renders sig as an object in the wire shape of its kind:
//
//	request_issued:    {"payload": {"uid", "page"}, "meta": {"name", "aggregator", "requestAt", "operation"}}
//	request_succeeded: {"uid", "page", "entities"}
//	request_failed:    {"uid", "page", "error"}
func Encode(sig Signal) (record.Object, error) {
	switch s := sig.(type) {
	case RequestIssued:
		return record.Object{
			"payload": record.Object{
				"uid":  record.String(s.Payload.UID),
				"page": record.Int(pageOrDefault(s.Payload.Page)),
			},
			"meta": record.Object{
				"name":       record.String(s.Meta.Name),
				"aggregator": record.String(s.Meta.Aggregator),
				"requestAt":  record.Int(s.Meta.RequestAt),
				"operation":  record.String(s.Meta.Operation),
			},
		}, nil
	case RequestSucceeded:
		entities := make(record.List, len(s.Entities))
		for i, e := range s.Entities {
			entities[i] = e
		}
		return record.Object{
			"uid":      record.String(s.UID),
			"page":     record.Int(pageOrDefault(s.Page)),
			"entities": entities,
		}, nil
	case RequestFailed:
		errInfo := s.Error
		if errInfo == nil {
			errInfo = record.Object{}
		}
		return record.Object{
			"uid":   record.String(s.UID),
			"page":  record.Int(pageOrDefault(s.Page)),
			"error": errInfo,
		}, nil
	case nil:
		return nil, fmt.Errorf("%w: nil signal", ErrMalformedSignal)
	default:
		return nil, fmt.Errorf("%w: unsupported signal %T", ErrMalformedSignal, sig)
	}
}

// EncodeTagged is Encode with the kind added under FieldKind.
func EncodeTagged(sig Signal) (record.Object, error) {
	obj, err := Encode(sig)
	if err != nil {
		return nil, err
	}
	obj[FieldKind] = record.String(sig.Kind())
	return obj, nil
}

// Decode parses body as a signal of the given kind. Unknown keys are
// rejected.
func Decode(kind Kind, body record.Object) (Signal, error) {
	d := decoder{kind: kind}

	var sig Signal
	switch kind {
	case KindRequestIssued:
		payload := d.object(body, "payload", true)
		meta := d.object(body, "meta", true)
		d.only(body, "payload", "meta")
		d.only(payload, "uid", "page")
		d.only(meta, "name", "aggregator", "requestAt", "operation")
		sig = RequestIssued{
			Payload: Payload{
				UID:  d.str(payload, "uid", true),
				Page: pageOrDefault(int(d.integer(payload, "page"))),
			},
			Meta: Meta{
				Name:       d.str(meta, "name", false),
				Aggregator: d.str(meta, "aggregator", false),
				RequestAt:  d.integer(meta, "requestAt"),
				Operation:  d.str(meta, "operation", false),
			},
		}
	case KindRequestSucceeded:
		d.only(body, "uid", "page", "entities")
		sig = RequestSucceeded{
			UID:      d.str(body, "uid", true),
			Page:     pageOrDefault(int(d.integer(body, "page"))),
			Entities: d.objects(body, "entities"),
		}
	case KindRequestFailed:
		d.only(body, "uid", "page", "error")
		sig = RequestFailed{
			UID:   d.str(body, "uid", true),
			Page:  pageOrDefault(int(d.integer(body, "page"))),
			Error: d.object(body, "error", false),
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedSignal, kind)
	}

	if d.err != nil {
		return nil, d.err
	}
	return sig, nil
}

// DecodeTagged parses an object carrying its kind under FieldKind.
func DecodeTagged(obj record.Object) (Signal, error) {
	kind, ok := obj[FieldKind].(record.String)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrMalformedSignal, FieldKind)
	}
	body := make(record.Object, len(obj)-1)
	for k, v := range obj {
		if k != FieldKind {
			body[k] = v
		}
	}
	return Decode(Kind(kind), body)
}

// decoder records the first error and turns later reads into no-ops.
type decoder struct {
	kind Kind
	err  error
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: %s: %s", ErrMalformedSignal, d.kind, fmt.Sprintf(format, args...))
	}
}

func (d *decoder) only(obj record.Object, keys ...string) {
	if d.err != nil || obj == nil {
		return
	}
	allowed := make(map[string]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	var unknown []string
	for k := range obj {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		d.fail("unknown field(s) %s", strings.Join(unknown, ", "))
	}
}

func (d *decoder) object(obj record.Object, key string, required bool) record.Object {
	if d.err != nil {
		return nil
	}
	v, ok := obj[key]
	if !ok {
		if required {
			d.fail("missing %q", key)
		}
		return nil
	}
	o, ok := v.(record.Object)
	if !ok {
		d.fail("%q must be an object", key)
		return nil
	}
	return o
}

func (d *decoder) str(obj record.Object, key string, required bool) string {
	if d.err != nil {
		return ""
	}
	v, ok := obj[key]
	if !ok {
		if required {
			d.fail("missing %q", key)
		}
		return ""
	}
	s, ok := v.(record.String)
	if !ok {
		d.fail("%q must be a string", key)
		return ""
	}
	return string(s)
}

func (d *decoder) integer(obj record.Object, key string) int64 {
	if d.err != nil {
		return 0
	}
	v, ok := obj[key]
	if !ok {
		return 0
	}
	n, ok := v.(record.Int)
	if !ok {
		d.fail("%q must be an integer", key)
		return 0
	}
	return int64(n)
}

func (d *decoder) objects(obj record.Object, key string) []record.Object {
	if d.err != nil {
		return nil
	}
	v, ok := obj[key]
	if !ok {
		return []record.Object{}
	}
	list, ok := v.(record.List)
	if !ok {
		d.fail("%q must be a list", key)
		return nil
	}
	out := make([]record.Object, len(list))
	for i, elem := range list {
		o, ok := elem.(record.Object)
		if !ok {
			d.fail("%s[%d] must be an object", key, i)
			return nil
		}
		out[i] = o
	}
	return out
}
