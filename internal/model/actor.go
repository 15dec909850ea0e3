package model

// Actor is a real-world entity that tags may attribute subjects to
type Actor struct {
	ID            string   `json:"id" db:"id"`
	Label         string   `json:"label" db:"label"`
	URI           string   `json:"uri,omitempty" db:"uri"`
	Categories    []string `json:"categories" db:"-"`
	Jurisdictions []string `json:"jurisdictions" db:"-"`
	Context       string   `json:"context,omitempty" db:"context"`
	ActorpackURI  string   `json:"actorpack_uri,omitempty" db:"actorpack_uri"`
}

// IngestResult summarizes a TagPack or ActorPack insert
type IngestResult struct {
	URI      string `json:"uri"`
	Kind     string `json:"kind"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
}
