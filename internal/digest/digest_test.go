package digest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/tagpack-service/internal/model"
)

func actorTag(label, actor string, confidence int, categories ...string) model.TagRecord {
	return model.TagRecord{
		Subject:         model.SubjectAddress,
		Label:           label,
		Actor:           model.StringPtr(actor),
		ConfidenceLevel: model.IntPtr(confidence),
		ActorCategories: categories,
		Source:          "https://example.org/" + actor,
		Creator:         "tester",
		LastMod:         1700000000,
	}
}

func conceptTag(label string, confidence *int, concepts ...string) model.TagRecord {
	return model.TagRecord{
		Subject:         model.SubjectAddress,
		Label:           label,
		ConfidenceLevel: confidence,
		Concepts:        concepts,
		Source:          "https://example.org/reports",
		Creator:         "reporter",
		LastMod:         1690000000,
	}
}

func cryptoDogsTags() []model.TagRecord {
	return []model.TagRecord{
		actorTag("CDST (CryptoDogs USD) Token", "CryptoDogs", 50, "defi"),
		actorTag("Optimism Gateway (CryptoDogs USD)", "CryptoDogs", 50, "defi"),
		actorTag("CryptoDogs USD", "CryptoDogs", 50, "defi"),
		conceptTag("Bad Stuff", nil),
		actorTag("CryptoDogsToken", "CryptoDogs", 50, "defi"),
		actorTag("CDST (CryptoDogs USD) Token", "CryptoDogs", 50, "defi"),
	}
}

func labelShares(d *TagDigest) map[string]float64 {
	shares := make(map[string]float64)
	for _, k := range d.LabelDigest.Keys() {
		e, _ := d.LabelDigest.Get(k)
		shares[k] = e.Relevance
	}
	return shares
}

func TestComputeEmpty(t *testing.T) {
	d := Compute(nil)

	assert.Equal(t, 0, d.NrTags)
	assert.Nil(t, d.BestActor)
	assert.Nil(t, d.BestLabel)
	assert.Equal(t, BroadConceptUser, d.BroadConcept)
	assert.Equal(t, 0, d.LabelDigest.Len())
	assert.Equal(t, 0, d.ConceptTagCloud.Len())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"broad_concept": "user",
		"nr_tags": 0,
		"best_actor": null,
		"best_label": null,
		"label_digest": {},
		"concept_tag_cloud": {}
	}`, string(out))
}

func TestComputeActorDominatedSubject(t *testing.T) {
	d := Compute(cryptoDogsTags())

	require.NotNil(t, d.BestActor)
	require.NotNil(t, d.BestLabel)
	assert.Equal(t, "CryptoDogs", *d.BestActor)
	assert.Equal(t, "CDST (CryptoDogs USD) Token", *d.BestLabel)
	assert.Equal(t, BroadConceptEntity, d.BroadConcept)
	assert.Equal(t, 6, d.NrTags)
	assert.Equal(t, []string{
		"cdst cryptodogs usd token",
		"optimism gateway cryptodogs usd",
		"cryptodogs usd",
		"bad stuff",
		"cryptodogstoken",
	}, d.LabelDigest.Keys())

	cdst, ok := d.LabelDigest.Get("cdst cryptodogs usd token")
	require.True(t, ok)
	assert.Equal(t, 2, cdst.Count)
	assert.InDelta(t, 0.5, cdst.Confidence, 1e-12)
	assert.Equal(t, []string{"defi"}, cdst.Concepts)
	assert.Equal(t, []string{"tester"}, cdst.Creators)

	bad, ok := d.LabelDigest.Get("bad stuff")
	require.True(t, ok)
	assert.InDelta(t, 0.001, bad.Confidence, 1e-12)
	assert.Empty(t, bad.Concepts)

	assert.Equal(t, []string{"defi"}, d.ConceptTagCloud.Keys())
}

func TestComputeActorWithLowConfidenceConcept(t *testing.T) {
	tags := []model.TagRecord{
		actorTag("Internet Archive", "internet_archive", 50, "organization"),
		conceptTag("Bad Stuff with Low Confidence", model.IntPtr(5), "filesharing"),
	}

	d := Compute(tags)

	require.NotNil(t, d.BestActor)
	assert.Equal(t, "internet_archive", *d.BestActor)
	require.NotNil(t, d.BestLabel)
	assert.Equal(t, "Internet Archive", *d.BestLabel)
	assert.Equal(t, BroadConceptEntity, d.BroadConcept)
	assert.Equal(t, []string{"organization", "filesharing"}, d.ConceptTagCloud.Keys())

	org, _ := d.ConceptTagCloud.Get("organization")
	assert.InDelta(t, 50.0/55.0, org.Weighted, 1e-12)
}

func TestComputeExchange(t *testing.T) {
	exchange := actorTag("SomeExchange.com", "someexchange", 80)
	exchange.Concepts = []string{"exchange"}
	tags := []model.TagRecord{
		exchange,
		conceptTag("someexchange deposit", model.IntPtr(50), "exchange"),
	}

	d := Compute(tags)

	assert.Equal(t, BroadConceptExchange, d.BroadConcept)
	assert.Equal(t, []string{"exchange"}, d.ConceptTagCloud.Keys())
	cloud, _ := d.ConceptTagCloud.Get("exchange")
	assert.Equal(t, 1, cloud.Count)
	assert.InDelta(t, 1.0, cloud.Weighted, 1e-12)
	require.NotNil(t, d.BestLabel)
	assert.Equal(t, "SomeExchange.com", *d.BestLabel)
}

func TestComputeWithoutActorTitlesBestLabel(t *testing.T) {
	tags := []model.TagRecord{
		conceptTag("other thing", model.IntPtr(10)),
		conceptTag("Bad   Stuff!", model.IntPtr(50), "scam"),
	}

	d := Compute(tags)

	assert.Nil(t, d.BestActor)
	require.NotNil(t, d.BestLabel)
	assert.Equal(t, "Bad Stuff", *d.BestLabel)
	assert.Equal(t, BroadConceptEntity, d.BroadConcept)
}

func TestComputeTitlesAfterEveryNonLetter(t *testing.T) {
	d := Compute([]model.TagRecord{conceptTag("hot_wallet x2y", model.IntPtr(50))})

	require.NotNil(t, d.BestLabel)
	assert.Equal(t, "Hot_Wallet X2Y", *d.BestLabel)
}

func TestComputeDefiConceptWeight(t *testing.T) {
	tags := []model.TagRecord{
		conceptTag("bridge", model.IntPtr(60), "defi"),
		conceptTag("mixer", model.IntPtr(40), "mixer"),
	}

	d := Compute(tags)

	// defi counts half: 30 vs 40
	assert.Equal(t, []string{"mixer", "defi"}, d.ConceptTagCloud.Keys())
	defi, _ := d.ConceptTagCloud.Get("defi")
	assert.InDelta(t, 30.0/70.0, defi.Weighted, 1e-12)
}

func TestComputeMissingConfidenceUsesDefaultWeight(t *testing.T) {
	tags := []model.TagRecord{
		conceptTag("unsure", nil, "scam"),
		conceptTag("unsure", model.IntPtr(0), "scam"),
	}

	state := Aggregate(tags)
	assert.InDelta(t, 0.2, state.FullLabelCounter.Weight("unsure"), 1e-12)
	assert.InDelta(t, 0.2, state.ConceptCounter.Weight("scam"), 1e-12)

	d := Compute(tags)
	e, _ := d.LabelDigest.Get("unsure")
	assert.InDelta(t, 0.001, e.Confidence, 1e-12)
}

func TestComputeInheritedAlwaysCleared(t *testing.T) {
	tag := conceptTag("cluster wide label", model.IntPtr(50))
	tag.InheritedFrom = model.InheritedCluster

	d := Compute([]model.TagRecord{tag})

	e, ok := d.LabelDigest.Get("cluster wide label")
	require.True(t, ok)
	assert.Nil(t, e.InheritedFrom)
}

func TestComputeLabelSummaryMerge(t *testing.T) {
	first := conceptTag("Hot Wallet", model.IntPtr(30), "exchange")
	first.Source = "a"
	first.LastMod = 200
	second := conceptTag("hot wallet!", model.IntPtr(60), "exchange", "hot_wallet")
	second.Source = "b"
	second.Creator = "other"
	second.LastMod = 100

	d := Compute([]model.TagRecord{first, second})

	e, ok := d.LabelDigest.Get("hot wallet")
	require.True(t, ok)
	assert.Equal(t, "hot wallet!", e.Label)
	assert.Equal(t, 2, e.Count)
	assert.Equal(t, []string{"a", "b"}, e.Sources)
	assert.Equal(t, []string{"reporter", "other"}, e.Creators)
	assert.Equal(t, []string{"exchange", "hot_wallet"}, e.Concepts)
	assert.Equal(t, int64(200), e.LastMod)
	assert.InDelta(t, 0.45, e.Confidence, 1e-12)
	assert.InDelta(t, 1.0, e.Relevance, 1e-12)
}

func TestComputeCountsSumToNrTags(t *testing.T) {
	d := Compute(cryptoDogsTags())

	total := 0
	for _, k := range d.LabelDigest.Keys() {
		e, _ := d.LabelDigest.Get(k)
		total += e.Count
	}
	assert.Equal(t, d.NrTags, total)
}

func TestComputeSharesSumToOne(t *testing.T) {
	tags := append(cryptoDogsTags(),
		conceptTag("mixer output", model.IntPtr(20), "mixer"),
		conceptTag("defi bridge", model.IntPtr(20), "defi"),
	)
	d := Compute(tags)

	var labels, concepts float64
	for _, v := range labelShares(d) {
		labels += v
	}
	for _, k := range d.ConceptTagCloud.Keys() {
		e, _ := d.ConceptTagCloud.Get(k)
		concepts += e.Weighted
	}
	assert.InDelta(t, 1.0, labels, 1e-9)
	assert.InDelta(t, 1.0, concepts, 1e-9)
}

func TestComputeIdempotent(t *testing.T) {
	tags := cryptoDogsTags()

	first, err := json.Marshal(Compute(tags))
	require.NoError(t, err)
	second, err := json.Marshal(Compute(tags))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeOrderInsensitiveWeights(t *testing.T) {
	tags := cryptoDogsTags()
	reversed := make([]model.TagRecord, len(tags))
	for i := range tags {
		reversed[len(tags)-1-i] = tags[i]
	}

	a := Compute(tags)
	b := Compute(reversed)

	assert.Equal(t, *a.BestActor, *b.BestActor)
	assert.Equal(t, *a.BestLabel, *b.BestLabel)
	assert.Equal(t, a.BroadConcept, b.BroadConcept)

	sharesA, sharesB := labelShares(a), labelShares(b)
	require.Len(t, sharesB, len(sharesA))
	for k, v := range sharesA {
		assert.InDelta(t, v, sharesB[k], 1e-9, k)
	}
}
