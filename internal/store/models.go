package store

import "time"

// Content status values.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusHeld      = "held"
)

// Change mutation types.
const (
	MutationInsert = "INSERT"
	MutationUpdate = "UPDATE"
	MutationDelete = "DELETE"
)

// Content is a single record of some content type. Fields holds extra
// values (such as alternative slug fields) keyed by field name.
type Content struct {
	ID          int64
	ContentType string
	Slug        string
	Title       string
	Status      string
	DateCreated time.Time
	DateChanged time.Time
	DatePublish time.Time
	OwnerID     int64
	Fields      map[string]string
}

// Taxonomy links a content record to a tag or category.
type Taxonomy struct {
	ID           int64
	ContentID    int64
	ContentType  string
	TaxonomyType string
	Slug         string
	Name         string
	SortOrder    int
}

// TagCount is a slug with its usage count.
type TagCount struct {
	Slug  string
	Count int
}

// ChangeEntry is a row of the content changelog.
type ChangeEntry struct {
	ID           int64
	Date         time.Time
	OwnerID      int64
	OwnerName    string
	Title        string
	ContentType  string
	ContentID    int64
	MutationType string
	Diff         string
	Comment      string
}

// SystemEntry is a row of the system activity log.
type SystemEntry struct {
	ID         int64
	Level      string
	Date       time.Time
	Message    string
	OwnerID    int64
	OwnerName  string
	RequestURI string
	Route      string
	IP         string
	Context    string
	Source     string
}

// User is a back-end account.
type User struct {
	ID          int64
	Username    string
	DisplayName string
	Email       string
	Roles       []string
	Enabled     bool
	LastSeen    time.Time
}

// HasRole reports whether the user carries role.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ChangelogOptions narrows a changelog query.
type ChangelogOptions struct {
	Limit     int
	ContentID int64
}

// SystemQuery narrows a system activity query. Empty fields match everything.
type SystemQuery struct {
	Limit   int
	Level   string
	Context string
}
