package selector

import (
	"encoding/json"
	"fmt"
	"math"
)

// DefaultPage is the page used when coordinates do not name one.
const DefaultPage = 1

// Descriptor identifies a request either by name or by coordinates.
// The only implementations are ByName and ByCoordinates.
type Descriptor interface {
	descriptor()
	String() string
}

// ByName looks a request up through the name index.
type ByName struct {
	Name string
}

func (ByName) descriptor() {}

func (d ByName) String() string {
	return "name:" + d.Name
}

// ByCoordinates addresses a query directly.
type ByCoordinates struct {
	CacheID string
	Page    int
}

func (ByCoordinates) descriptor() {}

func (d ByCoordinates) String() string {
	return fmt.Sprintf("query:%s#%d", d.CacheID, d.Page)
}

// Name returns a ByName descriptor.
func Name(name string) Descriptor {
	return ByName{Name: name}
}

// Coordinates returns a ByCoordinates descriptor. A page below 1 means the
// default page.
func Coordinates(cacheID string, page int) Descriptor {
	return ByCoordinates{CacheID: cacheID, Page: page}
}

// normalize validates d and fills in defaults.
func normalize(d Descriptor) (Descriptor, error) {
	switch v := d.(type) {
	case ByName:
		if v.Name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidDescriptor)
		}
		return v, nil
	case ByCoordinates:
		if v.CacheID == "" {
			return nil, fmt.Errorf("%w: missing cacheID", ErrInvalidDescriptor)
		}
		if v.Page < 1 {
			v.Page = DefaultPage
		}
		return v, nil
	case nil:
		return nil, fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	default:
		return nil, fmt.Errorf("%w: unsupported descriptor %T", ErrInvalidDescriptor, d)
	}
}

// ParseDescriptor builds a Descriptor from loosely typed input: a non-empty
// string is a name; a map with a non-empty "cacheID" and an optional
// integer "page" is a set of coordinates. Anything else, including nil and
// an empty map, fails with ErrInvalidDescriptor.
func ParseDescriptor(v any) (Descriptor, error) {
	switch val := v.(type) {
	case Descriptor:
		return normalize(val)
	case string:
		return normalize(ByName{Name: val})
	case map[string]any:
		return parseCoordinates(val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, elem := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string key %v", ErrInvalidDescriptor, k)
			}
			m[key] = elem
		}
		return parseCoordinates(m)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidDescriptor, v)
	}
}

func parseCoordinates(m map[string]any) (Descriptor, error) {
	cacheID, _ := m["cacheID"].(string)
	if cacheID == "" {
		return nil, fmt.Errorf("%w: missing cacheID", ErrInvalidDescriptor)
	}

	page := DefaultPage
	if raw, ok := m["page"]; ok && raw != nil {
		p, err := toPage(raw)
		if err != nil {
			return nil, err
		}
		page = p
	}
	return normalize(ByCoordinates{CacheID: cacheID, Page: page})
}

func toPage(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int64Page(n)
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%w: page %v is not an integer", ErrInvalidDescriptor, n)
		}
		// -MinInt is a power of two and exact as a float64; MaxInt is not.
		if n < float64(math.MinInt) || n >= -float64(math.MinInt) {
			return 0, fmt.Errorf("%w: page %v out of range", ErrInvalidDescriptor, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: page %s is not an integer", ErrInvalidDescriptor, n)
		}
		return int64Page(i)
	default:
		return 0, fmt.Errorf("%w: page has type %T", ErrInvalidDescriptor, v)
	}
}

func int64Page(n int64) (int, error) {
	if n < math.MinInt || n > math.MaxInt {
		return 0, fmt.Errorf("%w: page %d out of range", ErrInvalidDescriptor, n)
	}
	return int(n), nil
}
