package record

// Reserved field names on entity records.
const (
	FieldID       = "id"
	FieldLinks    = "_links"
	FieldEmbedded = "_embedded"
)

// Record is a stored entity. A Record is never mutated once it has been
// placed in a store; the write path builds a new Record instead.
type Record struct {
	Fields Object
}

// New wraps fields in a Record. A nil map becomes an empty Object.
func New(fields Object) *Record {
	if fields == nil {
		fields = Object{}
	}
	return &Record{Fields: fields}
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.Fields[key]
	return v, ok
}

// ID returns the remote identity of the record, if it has an integer "id".
func (r *Record) ID() (int64, bool) {
	v, ok := r.Get(FieldID)
	if !ok {
		return 0, false
	}
	id, ok := v.(Int)
	return int64(id), ok
}

// Link describes one named relation in "_links".
type Link struct {
	Href       string
	Embeddable bool
}

// Links returns the well-formed entries of "_links". A relation may be a
// link object or a list of link objects (the first is used). Anything else
// is skipped.
func (r *Record) Links() map[string]Link {
	v, ok := r.Get(FieldLinks)
	if !ok {
		return nil
	}
	obj, ok := v.(Object)
	if !ok {
		return nil
	}

	links := make(map[string]Link, len(obj))
	for name, raw := range obj {
		lo, ok := linkObject(raw)
		if !ok {
			continue
		}
		var link Link
		if href, ok := lo["href"].(String); ok {
			link.Href = string(href)
		} else if url, ok := lo["url"].(String); ok {
			link.Href = string(url)
		}
		if emb, ok := lo["embeddable"].(Bool); ok {
			link.Embeddable = bool(emb)
		}
		links[name] = link
	}
	return links
}

func linkObject(v Value) (Object, bool) {
	switch val := v.(type) {
	case Object:
		return val, true
	case List:
		if len(val) == 0 {
			return nil, false
		}
		obj, ok := val[0].(Object)
		return obj, ok
	default:
		return nil, false
	}
}

// Embedded returns "_embedded" entries that hold an integer id. Entries in
// any other form are skipped.
func (r *Record) Embedded() map[string]int64 {
	v, ok := r.Get(FieldEmbedded)
	if !ok {
		return nil
	}
	obj, ok := v.(Object)
	if !ok {
		return nil
	}

	ids := make(map[string]int64, len(obj))
	for name, raw := range obj {
		if id, ok := raw.(Int); ok {
			ids[name] = int64(id)
		}
	}
	return ids
}

// Relations returns relation name -> embedded id for every relation named
// in both "_links" and "_embedded".
//
// Embedded values are remote entity ids, resolved through the store's id
// index. Fixtures that encode them as store positions must be rewritten to
// use the target's id.
func (r *Record) Relations() map[string]int64 {
	embedded := r.Embedded()
	if len(embedded) == 0 {
		return nil
	}
	links := r.Links()

	rels := make(map[string]int64, len(embedded))
	for name, id := range embedded {
		if _, ok := links[name]; ok {
			rels[name] = id
		}
	}
	return rels
}
