package scoring

import "testing"

func strPtr(s string) *string { return &s }

func TestClassifyZoning(t *testing.T) {
	cases := []struct {
		name string
		in   *string
		want ZoningCategory
	}{
		{"nil defaults to residential", nil, ZoningResidential},
		{"blank defaults to residential", strPtr("   "), ZoningResidential},
		{"plain residential", strPtr("SR-2 Single Residence"), ZoningResidential},
		{"dense keyword", strPtr("residential_dense"), ZoningResidentialDense},
		{"multi keyword", strPtr("MR-1 Multi-Family"), ZoningResidentialDense},
		{"dense wins over mixed", strPtr("Mixed Dense Overlay"), ZoningResidentialDense},
		{"mixed use", strPtr("MU-4 Mixed Use"), ZoningMixedUse},
		{"commercial folds into mixed use", strPtr("BU-1 Commercial"), ZoningMixedUse},
		{"industrial", strPtr("Limited Industrial"), ZoningIndustrial},
		{"case insensitive", strPtr("INDUSTRIAL"), ZoningIndustrial},
		{"unrecognized text", strPtr("open space"), ZoningResidential},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyZoning(tc.in); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestClassifyZoning_NeverReturnsCommercialOrUnknown(t *testing.T) {
	inputs := []string{"commercial", "COMMERCIAL DISTRICT", "business commercial", "unknown", ""}
	for _, in := range inputs {
		in := in
		got := ClassifyZoning(&in)
		if got == ZoningCommercial || got == ZoningUnknown {
			t.Fatalf("input %q: unexpected category %q", in, got)
		}
	}
}

func TestParseZoningCategory(t *testing.T) {
	if c, ok := ParseZoningCategory(" Mixed_Use "); !ok || c != ZoningMixedUse {
		t.Fatalf("expected mixed_use, got %q ok=%v", c, ok)
	}
	if _, ok := ParseZoningCategory("mixed use"); ok {
		t.Fatalf("expected free text to be rejected")
	}
}
