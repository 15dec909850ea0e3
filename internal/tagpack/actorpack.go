package tagpack

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yourorg/tagpack-service/internal/model"
)

// ActorEntry is one actor of an ActorPack
type ActorEntry struct {
	ID            string   `yaml:"id" validate:"required,actorid"`
	Label         string   `yaml:"label" validate:"required,max=256"`
	URI           string   `yaml:"uri" validate:"omitempty,url"`
	Categories    []string `yaml:"categories" validate:"required,min=1,dive,required,concept"`
	Jurisdictions []string `yaml:"jurisdictions" validate:"dive,len=2,alpha"`
	Context       string   `yaml:"context"`
}

// ActorPack is a YAML document describing actors
type ActorPack struct {
	URI         string       `yaml:"-"`
	Title       string       `yaml:"title" validate:"required"`
	Creator     string       `yaml:"creator" validate:"required"`
	Description string       `yaml:"description"`
	LastMod     string       `yaml:"lastmod" validate:"omitempty,lastmod"`
	Actors      []ActorEntry `yaml:"actors" validate:"required,min=1,dive"`
}

// LoadActorPackFile reads and parses an ActorPack from disk
func (l *Loader) LoadActorPackFile(path string) (*ActorPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read actorpack: %w", err)
	}
	return l.ParseActorPack(path, data)
}

// ParseActorPack decodes and validates an ActorPack
func (l *Loader) ParseActorPack(uri string, data []byte) (*ActorPack, error) {
	var ap ActorPack
	if err := yaml.Unmarshal(data, &ap); err != nil {
		return nil, &ValidationError{URI: uri, Problems: []string{"malformed yaml: " + err.Error()}}
	}
	ap.URI = uri

	if err := l.validate.Struct(&ap); err != nil {
		return nil, &ValidationError{URI: uri, Problems: describe("actorpack", err)}
	}

	seen := make(map[string]struct{}, len(ap.Actors))
	var problems []string
	for i, a := range ap.Actors {
		if _, dup := seen[a.ID]; dup {
			problems = append(problems, fmt.Sprintf("actor %d: duplicate id %q", i, a.ID))
		}
		seen[a.ID] = struct{}{}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{URI: uri, Problems: problems}
	}

	return &ap, nil
}

// ActorRecords converts the pack into actor records
func (ap *ActorPack) ActorRecords() []model.Actor {
	actors := make([]model.Actor, 0, len(ap.Actors))
	for _, a := range ap.Actors {
		actors = append(actors, model.Actor{
			ID:            a.ID,
			Label:         a.Label,
			URI:           a.URI,
			Categories:    a.Categories,
			Jurisdictions: a.Jurisdictions,
			Context:       a.Context,
			ActorpackURI:  ap.URI,
		})
	}
	return actors
}

// validActorID accepts lowercase ascii letters, digits and underscores
func validActorID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
