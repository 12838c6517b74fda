package note

import (
	"sort"
	"strings"
	"time"
)

// Note is the persisted note record. ID is carried separately from the
// stored fields because the store assigns it (Mongo "_id").
type Note struct {
	ID        string     `json:"id" bson:"-"`
	Title     string     `json:"title" bson:"title"`
	Content   string     `json:"content" bson:"content"`
	Tags      []string   `json:"tags" bson:"tags"`
	Color     *string    `json:"color" bson:"color,omitempty"`
	IsPinned  bool       `json:"is_pinned" bson:"is_pinned"`
	Mood      *string    `json:"mood" bson:"mood,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// Normalize fills output defaults: tags always renders as a list.
func (n *Note) Normalize() {
	if n.Tags == nil {
		n.Tags = []string{}
	}
}

// HasTag reports exact, case-sensitive membership.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CreateRequest is the creation schema: every note field except id and the
// server-managed timestamps. Absent fields take their zero value.
type CreateRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Color    *string  `json:"color"`
	IsPinned bool     `json:"is_pinned"`
	Mood     *string  `json:"mood"`
}

// ToNote builds the record to insert; the caller stamps timestamps.
func (r CreateRequest) ToNote() *Note {
	n := &Note{
		Title:    r.Title,
		Content:  r.Content,
		Tags:     r.Tags,
		Color:    r.Color,
		IsPinned: r.IsPinned,
		Mood:     r.Mood,
	}
	n.Normalize()
	return n
}

// Filter narrows a list query. Nil/empty fields do not constrain.
type Filter struct {
	Tag    string
	Query  string
	Pinned *bool
}

// Matches evaluates the filter in memory: tag AND pinned AND (q in title OR q in content).
func (f Filter) Matches(n *Note) bool {
	if f.Tag != "" && !n.HasTag(f.Tag) {
		return false
	}
	if f.Pinned != nil && n.IsPinned != *f.Pinned {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(n.Title), q) && !strings.Contains(strings.ToLower(n.Content), q) {
			return false
		}
	}
	return true
}

// Patch is an untyped partial update: field name to JSON-decoded value
// (string, float64, bool, []interface{}, map[string]interface{} or nil).
// Keys overwrite stored top-level fields as-is.
type Patch map[string]interface{}

// identityKeys may never be overwritten by a patch.
var identityKeys = []string{"id", "_id"}

// Sanitized returns a copy without identity keys and with updated_at set to now.
func (p Patch) Sanitized(now time.Time) Patch {
	out := make(Patch, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	for _, k := range identityKeys {
		delete(out, k)
	}
	out["updated_at"] = now
	return out
}

// Sort orders notes pinned first, then by created_at ascending. A missing
// created_at sorts as the zero time. The sort is stable.
func Sort(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := &notes[i], &notes[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		return createdAt(a).Before(createdAt(b))
	})
}

func createdAt(n *Note) time.Time {
	if n.CreatedAt == nil {
		return time.Time{}
	}
	return *n.CreatedAt
}
