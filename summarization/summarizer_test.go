package summarization

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRollupNoIncidents(t *testing.T) {
	rollup := BuildRollup("Brooklyn, NY", "flood", map[string]map[string]int{})

	assert.Contains(t, rollup, "Situation brief for Brooklyn, NY on topic 'flood':")
	assert.Contains(t, rollup, "No incidents on record for this region yet.")
}

func TestBuildRollupWithSOS(t *testing.T) {
	rollup := BuildRollup("Brooklyn, NY", "flood", map[string]map[string]int{
		"SOS":  {"UNVERIFIED": 2, "VERIFIED": 1},
		"INFO": {"UNVERIFIED": 4},
	})

	assert.Contains(t, rollup, "- SOS: 3 incidents (unverified=2, verified=1)")
	assert.Contains(t, rollup, "- INFO: 4 incidents (unverified=4)")
	assert.Contains(t, rollup, "prioritize rescue coordination")
	assert.NotContains(t, rollup, "No incidents on record")
	assert.NotContains(t, rollup, "continue monitoring")
}

func TestBuildRollupShelterGuidance(t *testing.T) {
	rollup := BuildRollup("Brooklyn, NY", "flood", map[string]map[string]int{
		"SHELTER": {"VERIFIED": 2},
	})

	assert.Contains(t, rollup, "direct evacuees to the nearest one")
	assert.NotContains(t, rollup, "prioritize rescue coordination")
}

func TestBuildRollupInfoOnly(t *testing.T) {
	rollup := BuildRollup("Brooklyn, NY", "flood", map[string]map[string]int{
		"INFO": {"UNVERIFIED": 3},
	})

	assert.Contains(t, rollup, "Only informational reports so far")
}

func TestBuildRollupCategoriesSorted(t *testing.T) {
	rollup := BuildRollup("Brooklyn, NY", "flood", map[string]map[string]int{
		"SOS":     {"UNVERIFIED": 1},
		"INFO":    {"UNVERIFIED": 1},
		"SHELTER": {"UNVERIFIED": 1},
	})

	info := strings.Index(rollup, "- INFO")
	shelter := strings.Index(rollup, "- SHELTER")
	sos := strings.Index(rollup, "- SOS")
	assert.True(t, info < shelter && shelter < sos)
}
