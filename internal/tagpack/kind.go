package tagpack

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind tells TagPacks and ActorPacks apart
type Kind string

const (
	KindTagPack   Kind = "tagpack"
	KindActorPack Kind = "actorpack"
)

// DetectKind looks at the top level keys of a pack document
func DetectKind(data []byte) (Kind, error) {
	var top map[string]yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return "", fmt.Errorf("%w: malformed yaml: %v", ErrInvalidPack, err)
	}

	_, hasTags := top["tags"]
	_, hasActors := top["actors"]
	switch {
	case hasTags && hasActors:
		return "", fmt.Errorf("%w: document has both tags and actors", ErrInvalidPack)
	case hasActors:
		return KindActorPack, nil
	case hasTags:
		return KindTagPack, nil
	}
	return "", fmt.Errorf("%w: document has neither tags nor actors", ErrInvalidPack)
}
