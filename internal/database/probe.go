package database

import (
	"context"

	"github.com/papyrus/papyrus/backend/notes-api/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BackendRunning  = "✅ Running"
	StatusConnected = "✅ Connected"
	StatusNotConn   = "❌ Not Connected"
	statusErrPrefix = "❌ Error: "

	// maxProbeErrorLen bounds the error text echoed back by the probe.
	maxProbeErrorLen = 120
)

// CollectionLister is the slice of *mongo.Database the probe needs.
type CollectionLister interface {
	ListCollectionNames(ctx context.Context, filter interface{}, opts ...*options.ListCollectionsOptions) ([]string, error)
}

// ProbeResult is the body served by the health probe.
type ProbeResult struct {
	Backend     string   `json:"backend"`
	Database    string   `json:"database"`
	Collections []string `json:"collections,omitempty"`
}

// Probe reports whether the database answers a trivial listing call. It never
// returns an error: failures are rendered into the Database field.
func Probe(ctx context.Context, db CollectionLister) ProbeResult {
	res := ProbeResult{Backend: BackendRunning, Database: StatusNotConn}
	if db == nil {
		metrics.ProbeResults.WithLabelValues("not_connected").Inc()
		return res
	}
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return ErrorResult(err)
	}
	if names == nil {
		names = []string{}
	}
	res.Database = StatusConnected
	res.Collections = names
	metrics.ProbeResults.WithLabelValues("connected").Inc()
	return res
}

// ErrorResult renders a failed probe, e.g. when the client could not even connect.
func ErrorResult(err error) ProbeResult {
	metrics.ProbeResults.WithLabelValues("error").Inc()
	return ProbeResult{Backend: BackendRunning, Database: statusErrPrefix + truncate(err.Error(), maxProbeErrorLen)}
}

// truncate cuts s to at most n characters (runes, not bytes).
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Map renders the result for JSON output. collections is present exactly when
// the database is connected, even if it holds no collections yet.
func (p ProbeResult) Map() map[string]interface{} {
	out := map[string]interface{}{"backend": p.Backend, "database": p.Database}
	if p.Database == StatusConnected {
		out["collections"] = p.Collections
	}
	return out
}
