package model

// TagSubject discriminates the kind of blockchain subject a tag is attached to
type TagSubject string

const (
	SubjectAddress      TagSubject = "address"
	SubjectTransaction  TagSubject = "tx"
	SubjectCluster      TagSubject = "cluster"
	SubjectUserReported TagSubject = "user_reported"
)

// Valid reports whether s is a known subject kind
func (s TagSubject) Valid() bool {
	switch s {
	case SubjectAddress, SubjectTransaction, SubjectCluster, SubjectUserReported:
		return true
	}
	return false
}

// InheritedFrom marks whether a tag was inferred rather than directly attached
type InheritedFrom string

const (
	InheritedNone    InheritedFrom = ""
	InheritedCluster InheritedFrom = "cluster"
)

// TagRecord is a single attribution statement about a subject
type TagRecord struct {
	ID              int64         `json:"id,omitempty" db:"id"`
	Subject         TagSubject    `json:"tag_subject" db:"tag_subject"`
	Identifier      string        `json:"identifier" db:"identifier"`
	Network         string        `json:"network" db:"network"`
	Label           string        `json:"label" db:"label"`
	ConfidenceLevel *int          `json:"confidence_level" db:"confidence_level"`
	Actor           *string       `json:"actor" db:"actor"`
	Concepts        []string      `json:"concepts" db:"-"`
	ActorCategories []string      `json:"-" db:"-"`
	Source          string        `json:"source" db:"source"`
	Creator         string        `json:"creator" db:"creator"`
	LastMod         int64         `json:"lastmod" db:"lastmod"`
	InheritedFrom   InheritedFrom `json:"inherited_from,omitempty" db:"-"`
	TagpackURI      string        `json:"tagpack_uri,omitempty" db:"tagpack_uri"`
	IsPublic        bool          `json:"is_public" db:"is_public"`
	Group           string        `json:"group,omitempty" db:"acl_group"`
}

// HasActor reports whether the tag attributes its subject to an actor
func (t *TagRecord) HasActor() bool {
	return t.Actor != nil && *t.Actor != ""
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// StringPtr returns a pointer to v
func StringPtr(v string) *string {
	return &v
}
