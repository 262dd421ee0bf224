package usecase

import (
	"strings"
	"testing"

	"github.com/repairlens/backend/internal/domain"
)

func fullProfile() *domain.VehicleProfile {
	return &domain.VehicleProfile{
		Year:   2021,
		Make:   "Honda",
		Model:  "Civic",
		Trim:   "Sport",
		Engine: "2.0L L4",
		VIN:    "TESTVIN0000000000",
	}
}

func TestBuildTiers_FullProfile(t *testing.T) {
	b := NewQueryBuilder()
	queries := b.BuildTiers("brake pads", fullProfile(), domain.QueryKindPrice)

	if len(queries) != 4 {
		t.Fatalf("len(queries) = %d, want 4 (tier1 trim + tier1 engine + tier2 + tier3)", len(queries))
	}

	if queries[0].Tier != domain.TierVINSpecific {
		t.Errorf("queries[0].Tier = %d, want 1", queries[0].Tier)
	}
	if queries[0].Text != "2021 Honda Civic Sport brake pads price" {
		t.Errorf("queries[0].Text = %q", queries[0].Text)
	}

	if queries[1].Tier != domain.TierVINSpecific {
		t.Errorf("queries[1].Tier = %d, want 1", queries[1].Tier)
	}
	if !strings.Contains(queries[1].Text, "2.0L L4") {
		t.Errorf("engine variant missing engine code: %q", queries[1].Text)
	}

	if queries[2].Tier != domain.TierMakeModel {
		t.Errorf("queries[2].Tier = %d, want 2", queries[2].Tier)
	}
	if queries[2].Text != "2021 Honda Civic brake pads price" {
		t.Errorf("queries[2].Text = %q", queries[2].Text)
	}

	if queries[3].Tier != domain.TierGeneric {
		t.Errorf("queries[3].Tier = %d, want 3", queries[3].Tier)
	}
	if queries[3].Text != "brake pads price" {
		t.Errorf("queries[3].Text = %q", queries[3].Text)
	}
}

func TestBuildTiers_TiersAreNonDecreasing(t *testing.T) {
	b := NewQueryBuilder()
	queries := b.BuildTiers("water pump", fullProfile(), domain.QueryKindPrice)

	for i := 1; i < len(queries); i++ {
		if queries[i].Tier < queries[i-1].Tier {
			t.Errorf("tier dropped from %d to %d at index %d", queries[i-1].Tier, queries[i].Tier, i)
		}
	}
}

func TestBuildTiers_ProfileWithoutVIN(t *testing.T) {
	b := NewQueryBuilder()
	profile := fullProfile()
	profile.VIN = ""

	queries := b.BuildTiers("brake pads", profile, domain.QueryKindPrice)

	// No VIN means no tier-1 queries, even with a complete profile
	for _, q := range queries {
		if q.Tier == domain.TierVINSpecific {
			t.Errorf("unexpected tier-1 query without VIN: %q", q.Text)
		}
	}
	if queries[0].Tier != domain.TierMakeModel {
		t.Errorf("queries[0].Tier = %d, want 2", queries[0].Tier)
	}
}

func TestBuildTiers_NoProfile(t *testing.T) {
	b := NewQueryBuilder()
	queries := b.BuildTiers("brake pads", nil, domain.QueryKindPrice)

	if len(queries) != 1 {
		t.Fatalf("len(queries) = %d, want 1", len(queries))
	}
	if queries[0].Tier != domain.TierGeneric {
		t.Errorf("Tier = %d, want 3", queries[0].Tier)
	}
	if queries[0].Text != "brake pads price" {
		t.Errorf("Text = %q, want %q", queries[0].Text, "brake pads price")
	}
}

func TestBuildTiers_Tier3AlwaysPresent(t *testing.T) {
	b := NewQueryBuilder()

	profiles := []*domain.VehicleProfile{
		nil,
		{},
		fullProfile(),
		{Year: 2021, Make: "Honda", Model: "Civic"},
	}

	for _, p := range profiles {
		queries := b.BuildTiers("alternator", p, domain.QueryKindPrice)
		found := false
		for _, q := range queries {
			if q.Tier == domain.TierGeneric {
				found = true
			}
		}
		if !found {
			t.Errorf("tier-3 fallback missing for profile %+v", p)
		}
	}
}

func TestBuildTiers_LaborKindSuffix(t *testing.T) {
	b := NewQueryBuilder()
	queries := b.BuildTiers("replace brake pads", nil, domain.QueryKindLabor)

	if queries[0].Text != "replace brake pads labor time" {
		t.Errorf("Text = %q, want labor time suffix", queries[0].Text)
	}
}

func TestBuildTiers_NoTrimOmitsDoubleSpace(t *testing.T) {
	b := NewQueryBuilder()
	profile := fullProfile()
	profile.Trim = ""
	profile.Engine = ""

	queries := b.BuildTiers("brake pads", profile, domain.QueryKindPrice)
	if queries[0].Text != "2021 Honda Civic brake pads price" {
		t.Errorf("Text = %q", queries[0].Text)
	}
}

func TestBuildTiers_CleansDescription(t *testing.T) {
	b := NewQueryBuilder()
	queries := b.BuildTiers("brake pads & rotors [front]", nil, domain.QueryKindPrice)

	if queries[0].Text != "brake pads and rotors front price" {
		t.Errorf("Text = %q", queries[0].Text)
	}
}
