// Package tagpack reads TagPack and ActorPack YAML documents, applies header
// inheritance, and validates them before they reach the store.
package tagpack

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/yourorg/tagpack-service/internal/model"
)

// ErrInvalidPack is wrapped by every validation failure
var ErrInvalidPack = errors.New("invalid pack")

// ValidationError lists every problem found in a pack
type ValidationError struct {
	URI      string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d problem(s): %s", e.URI, len(e.Problems), strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidPack
}

// TagFields are the attributes a tag may carry or inherit from the pack header
type TagFields struct {
	Label      string   `yaml:"label"`
	Source     string   `yaml:"source"`
	Actor      string   `yaml:"actor"`
	Concepts   []string `yaml:"concepts"`
	Confidence string   `yaml:"confidence"`
	Network    string   `yaml:"network"`
	LastMod    string   `yaml:"lastmod"`
}

// Tag is one entry of a TagPack body
type Tag struct {
	Address   string `yaml:"address"`
	TxHash    string `yaml:"tx_hash"`
	TagFields `yaml:",inline"`
}

// TagPack is a YAML document holding tags that share header defaults
type TagPack struct {
	URI         string `yaml:"-"`
	Title       string `yaml:"title" validate:"required"`
	Creator     string `yaml:"creator" validate:"required"`
	Description string `yaml:"description"`
	IsPublic    bool   `yaml:"is_public"`
	TagFields   `yaml:",inline"`
	Tags        []Tag `yaml:"tags" validate:"required,min=1"`
}

// resolvedTag is a tag after header inheritance, in the shape that gets validated
type resolvedTag struct {
	Identifier string   `validate:"required"`
	Label      string   `validate:"required,max=256"`
	Source     string   `validate:"required"`
	Network    string   `validate:"required,max=16"`
	Confidence string   `validate:"omitempty,confidence"`
	Actor      string   `validate:"omitempty,actorid"`
	Concepts   []string `validate:"dive,required,concept"`
	LastMod    string   `validate:"omitempty,lastmod"`
}

// Loader parses and validates packs against the configured taxonomies
type Loader struct {
	validate         *validator.Validate
	confidenceLevels map[string]int
	knownConcepts    map[string]struct{}
}

// NewLoader creates a loader. An empty concept list accepts every concept.
func NewLoader(confidenceLevels map[string]int, knownConcepts []string) *Loader {
	l := &Loader{
		validate:         validator.New(),
		confidenceLevels: confidenceLevels,
		knownConcepts:    make(map[string]struct{}, len(knownConcepts)),
	}
	for _, c := range knownConcepts {
		l.knownConcepts[c] = struct{}{}
	}

	l.validate.RegisterValidation("confidence", func(fl validator.FieldLevel) bool {
		_, err := l.confidenceLevel(fl.Field().String())
		return err == nil
	})
	l.validate.RegisterValidation("concept", func(fl validator.FieldLevel) bool {
		return l.knownConcept(fl.Field().String())
	})
	l.validate.RegisterValidation("lastmod", func(fl validator.FieldLevel) bool {
		_, err := parseLastMod(fl.Field().String())
		return err == nil
	})
	l.validate.RegisterValidation("actorid", func(fl validator.FieldLevel) bool {
		return validActorID(fl.Field().String())
	})

	return l
}

func (l *Loader) knownConcept(c string) bool {
	if len(l.knownConcepts) == 0 {
		return true
	}
	_, ok := l.knownConcepts[c]
	return ok
}

// confidenceLevel resolves a confidence id or a plain 0-100 integer.
// An empty value means the tag carries no confidence.
func (l *Loader) confidenceLevel(v string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	if level, ok := l.confidenceLevels[v]; ok {
		return &level, nil
	}
	level, err := strconv.Atoi(v)
	if err != nil || level < 0 || level > 100 {
		return nil, fmt.Errorf("unknown confidence %q", v)
	}
	return &level, nil
}

func parseLastMod(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Unix(), nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// LoadTagPackFile reads and parses a TagPack from disk
func (l *Loader) LoadTagPackFile(path string) (*TagPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tagpack: %w", err)
	}
	return l.ParseTagPack(path, data)
}

// ParseTagPack decodes a TagPack and validates its header
func (l *Loader) ParseTagPack(uri string, data []byte) (*TagPack, error) {
	var tp TagPack
	if err := yaml.Unmarshal(data, &tp); err != nil {
		return nil, &ValidationError{URI: uri, Problems: []string{"malformed yaml: " + err.Error()}}
	}
	tp.URI = uri

	if err := l.validate.Struct(&tp); err != nil {
		return nil, &ValidationError{URI: uri, Problems: describe("header", err)}
	}
	return &tp, nil
}

// Records applies header inheritance, validates every tag and converts the
// pack into tag records. Repeated identifier/label/network triples are
// dropped and counted in skipped.
func (l *Loader) Records(tp *TagPack) (records []model.TagRecord, skipped int, err error) {
	var problems []string
	seen := make(map[string]struct{})

	for i, tag := range tp.Tags {
		rt, subject := tp.resolve(tag)
		where := fmt.Sprintf("tag %d", i)

		if tag.Address != "" && tag.TxHash != "" {
			problems = append(problems, where+": address and tx_hash are mutually exclusive")
			continue
		}
		if err := l.validate.Struct(&rt); err != nil {
			problems = append(problems, describe(where, err)...)
			continue
		}

		key := rt.Identifier + "\x00" + rt.Label + "\x00" + rt.Network
		if _, dup := seen[key]; dup {
			skipped++
			continue
		}
		seen[key] = struct{}{}

		confidence, err := l.confidenceLevel(rt.Confidence)
		if err != nil {
			problems = append(problems, where+": "+err.Error())
			continue
		}
		lastmod, err := parseLastMod(rt.LastMod)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: invalid lastmod %q", where, rt.LastMod))
			continue
		}

		rec := model.TagRecord{
			Subject:         subject,
			Identifier:      rt.Identifier,
			Network:         rt.Network,
			Label:           rt.Label,
			ConfidenceLevel: confidence,
			Concepts:        rt.Concepts,
			Source:          rt.Source,
			Creator:         tp.Creator,
			LastMod:         lastmod,
			TagpackURI:      tp.URI,
			IsPublic:        tp.IsPublic,
		}
		if rt.Actor != "" {
			rec.Actor = model.StringPtr(rt.Actor)
		}
		records = append(records, rec)
	}

	if len(problems) > 0 {
		return nil, 0, &ValidationError{URI: tp.URI, Problems: problems}
	}
	return records, skipped, nil
}

func (tp *TagPack) resolve(tag Tag) (resolvedTag, model.TagSubject) {
	subject, identifier := model.SubjectAddress, tag.Address
	if tag.TxHash != "" {
		subject, identifier = model.SubjectTransaction, tag.TxHash
	}

	concepts := tag.Concepts
	if len(concepts) == 0 {
		concepts = tp.Concepts
	}

	return resolvedTag{
		Identifier: identifier,
		Label:      coalesce(tag.Label, tp.Label),
		Source:     coalesce(tag.Source, tp.Source),
		Network:    strings.ToUpper(coalesce(tag.Network, tp.Network)),
		Confidence: coalesce(tag.Confidence, tp.Confidence),
		Actor:      coalesce(tag.Actor, tp.Actor),
		Concepts:   concepts,
		LastMod:    coalesce(tag.LastMod, tp.LastMod),
	}, subject
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// describe flattens validator errors into readable problems
func describe(where string, err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{where + ": " + err.Error()}
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s: field %s failed %q (value %v)", where, fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return problems
}
