package tagpack

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/tagpack-service/internal/model"
)

var testLevels = map[string]int{
	"ownership": 100,
	"forensic":  60,
}

const validTagPack = `
title: Example exchange tags
creator: Jane Doe
is_public: true
network: btc
source: https://example.com/about
confidence: ownership
lastmod: 2021-04-21
concepts: [exchange]
tags:
  - address: 1Archive1n2C579dMsAu3iC6tWzuQJz8dN
    label: Internet Archive
    actor: internet_archive
    concepts: [organization]
  - address: 1SomeExchange5ZCmaedRxzpPFkNB9tRuvT
    label: SomeExchange.com
    confidence: forensic
  - tx_hash: ab188013f626405ddebf1a7b2e0af34253d09e80f9ef7f981ec1ec59d6200c1f
    label: Exchange payout
    network: eth
    confidence: "42"
    lastmod: "1700000000"
`

func newTestLoader(concepts ...string) *Loader {
	return NewLoader(testLevels, concepts)
}

func TestParseTagPackAndRecords(t *testing.T) {
	l := newTestLoader()

	tp, err := l.ParseTagPack("packs/example.yaml", []byte(validTagPack))
	require.NoError(t, err)
	assert.Equal(t, "Example exchange tags", tp.Title)
	assert.Len(t, tp.Tags, 3)

	records, skipped, err := l.Records(tp)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, records, 3)

	archive := records[0]
	assert.Equal(t, model.SubjectAddress, archive.Subject)
	assert.Equal(t, "BTC", archive.Network)
	require.NotNil(t, archive.Actor)
	assert.Equal(t, "internet_archive", *archive.Actor)
	assert.Equal(t, []string{"organization"}, archive.Concepts)
	require.NotNil(t, archive.ConfidenceLevel)
	assert.Equal(t, 100, *archive.ConfidenceLevel)
	assert.Equal(t, "Jane Doe", archive.Creator)
	assert.Equal(t, "https://example.com/about", archive.Source)
	assert.Equal(t, int64(1618963200), archive.LastMod)
	assert.Equal(t, "packs/example.yaml", archive.TagpackURI)
	assert.True(t, archive.IsPublic)

	exchange := records[1]
	assert.Nil(t, exchange.Actor)
	assert.Equal(t, []string{"exchange"}, exchange.Concepts)
	assert.Equal(t, 60, *exchange.ConfidenceLevel)

	payout := records[2]
	assert.Equal(t, model.SubjectTransaction, payout.Subject)
	assert.Equal(t, "ETH", payout.Network)
	assert.Equal(t, 42, *payout.ConfidenceLevel)
	assert.Equal(t, int64(1700000000), payout.LastMod)
}

func TestParseTagPackHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "title: [unterminated"},
		{"missing title", "creator: x\ntags:\n  - address: a\n    label: l\n"},
		{"missing creator", "title: x\ntags:\n  - address: a\n    label: l\n"},
		{"no tags", "title: x\ncreator: y\ntags: []\n"},
	}

	l := newTestLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.ParseTagPack("bad.yaml", []byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPack))
		})
	}
}

func TestRecordsCollectsEveryProblem(t *testing.T) {
	doc := `
title: Broken
creator: someone
network: btc
source: https://example.com
tags:
  - address: a1
  - address: a2
    label: bad confidence
    confidence: certainly
  - address: a3
    tx_hash: t3
    label: both ids
  - label: no identifier
`
	l := newTestLoader()
	tp, err := l.ParseTagPack("broken.yaml", []byte(doc))
	require.NoError(t, err)

	_, _, err = l.Records(tp)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 4)
	assert.Contains(t, verr.Problems[0], "tag 0")
	assert.Contains(t, verr.Problems[1], "confidence")
	assert.Contains(t, verr.Problems[2], "mutually exclusive")
	assert.Contains(t, verr.Problems[3], "Identifier")
}

func TestRecordsUnknownConcept(t *testing.T) {
	doc := `
title: Concepts
creator: someone
network: btc
source: https://example.com
tags:
  - address: a1
    label: mixer
    concepts: [mixer]
`
	l := newTestLoader("exchange", "organization")
	tp, err := l.ParseTagPack("concepts.yaml", []byte(doc))
	require.NoError(t, err)

	_, _, err = l.Records(tp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPack)
	assert.Contains(t, err.Error(), "concept")
}

func TestRecordsRejectsInvalidActor(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"tag actor", "title: t\ncreator: c\nnetwork: btc\nsource: s\ntags:\n  - address: a1\n    label: dogs\n    actor: Crypto Dogs!!\n"},
		{"inherited actor", "title: t\ncreator: c\nnetwork: btc\nsource: s\nactor: Crypto-Dogs\ntags:\n  - address: a1\n    label: dogs\n"},
	}

	l := newTestLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, err := l.ParseTagPack("actors.yaml", []byte(tt.doc))
			require.NoError(t, err)

			records, _, err := l.Records(tp)
			assert.ErrorIs(t, err, ErrInvalidPack)
			assert.Contains(t, err.Error(), "actorid")
			assert.Nil(t, records)
		})
	}
}

func TestRecordsInheritsHeaderActor(t *testing.T) {
	doc := "title: t\ncreator: c\nnetwork: btc\nsource: s\nactor: crypto_dogs\ntags:\n  - address: a1\n    label: dogs\n"

	l := newTestLoader()
	tp, err := l.ParseTagPack("actors.yaml", []byte(doc))
	require.NoError(t, err)

	records, _, err := l.Records(tp)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Actor)
	assert.Equal(t, "crypto_dogs", *records[0].Actor)
}

func TestRecordsReportsUnparsableValuesWithoutValidation(t *testing.T) {
	l := newTestLoader()
	for _, tag := range []string{"confidence", "lastmod"} {
		require.NoError(t, l.validate.RegisterValidation(tag, func(validator.FieldLevel) bool { return true }))
	}

	doc := "title: t\ncreator: c\nnetwork: btc\nsource: s\ntags:\n  - address: a1\n    label: l1\n    confidence: certainly\n  - address: a2\n    label: l2\n    lastmod: yesterday\n"
	tp, err := l.ParseTagPack("drift.yaml", []byte(doc))
	require.NoError(t, err)

	_, _, err = l.Records(tp)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Problems, 2)
	assert.Contains(t, verr.Problems[0], `unknown confidence "certainly"`)
	assert.Contains(t, verr.Problems[1], `invalid lastmod "yesterday"`)
}

func TestRecordsSkipsDuplicates(t *testing.T) {
	doc := `
title: Dups
creator: someone
network: btc
source: https://example.com
tags:
  - address: a1
    label: same
  - address: a1
    label: same
  - address: a1
    label: same
    network: ltc
`
	l := newTestLoader()
	tp, err := l.ParseTagPack("dups.yaml", []byte(doc))
	require.NoError(t, err)

	records, skipped, err := l.Records(tp)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, skipped)
}

func TestLoadTagPackFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validTagPack), 0o600))

	tp, err := newTestLoader().LoadTagPackFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, tp.URI)

	_, err = newTestLoader().LoadTagPackFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidPack))
}

func TestConfidenceLevel(t *testing.T) {
	l := newTestLoader()

	tests := []struct {
		in      string
		want    *int
		wantErr bool
	}{
		{"", nil, false},
		{"ownership", model.IntPtr(100), false},
		{"0", model.IntPtr(0), false},
		{"100", model.IntPtr(100), false},
		{"101", nil, true},
		{"-1", nil, true},
		{"maybe", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := l.confidenceLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
