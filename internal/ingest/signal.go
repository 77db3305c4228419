package ingest

import "github.com/roach88/pagecache/internal/record"

// Kind names a signal type. Kinds are stored in the journal.
type Kind string

const (
	KindRequestIssued    Kind = "request_issued"
	KindRequestSucceeded Kind = "request_succeeded"
	KindRequestFailed    Kind = "request_failed"
)

// Signal is one of RequestIssued, RequestSucceeded or RequestFailed.
type Signal interface {
	Kind() Kind
}

// RequestIssued announces a request for page Payload.Page of collection
// Payload.UID, made under Meta.Name.
type RequestIssued struct {
	Payload Payload
	Meta    Meta
}

// Payload addresses the requested page. A Page below 1 means page 1.
type Payload struct {
	UID  string
	Page int
}

// Meta describes the request. Aggregator is carried through the journal but
// plays no part in the cache.
type Meta struct {
	Name       string
	Aggregator string
	RequestAt  int64
	Operation  string
}

// Kind implements Signal.
func (RequestIssued) Kind() Kind { return KindRequestIssued }

// RequestSucceeded completes the request at {UID, Page} with the fetched
// entities, in fetch order.
type RequestSucceeded struct {
	UID      string
	Page     int
	Entities []record.Object
}

// Kind implements Signal.
func (RequestSucceeded) Kind() Kind { return KindRequestSucceeded }

// RequestFailed completes the request at {UID, Page} with an error object.
type RequestFailed struct {
	UID   string
	Page  int
	Error record.Object
}

// Kind implements Signal.
func (RequestFailed) Kind() Kind { return KindRequestFailed }

func pageOrDefault(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
