package openfda

import "testing"

func TestSynonymResolve(t *testing.T) {
	tests := map[string]string{
		"tylenol":       "acetaminophen",
		"ozempic":       "semaglutide",
		"zestril":       "lisinopril",
		"acetaminophen": "acetaminophen",
		"unknowndrug":   "unknowndrug",
	}
	for in, want := range tests {
		if got := Synonyms.Resolve(in); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSynonymTableIsLowerCaseAndAcyclic(t *testing.T) {
	for brand, generic := range Synonyms {
		if brand != NormalizeTerm(brand) || generic != NormalizeTerm(generic) {
			t.Errorf("entry %q -> %q is not normalized", brand, generic)
		}
		if _, chained := Synonyms[generic]; chained {
			t.Errorf("generic %q of %q is itself a brand", generic, brand)
		}
	}
}

func TestCodeLabels(t *testing.T) {
	tests := []struct {
		table CodeTable
		code  string
		want  string
	}{
		{OutcomeCodes, "5", "Fatal"},
		{OutcomeCodes, "1", "Recovered/Resolved"},
		{OutcomeCodes, "9", "Unknown (9)"},
		{QualificationCodes, "1", "Physician"},
		{QualificationCodes, "5", "Consumer or Non-Health Professional"},
		{QualificationCodes, "", "Unknown ()"},
		{SeriousOutcomeLabels, "seriousnesscongenitalanomali", "Congenital Anomaly"},
	}
	for _, tt := range tests {
		if got := tt.table.Label(tt.code); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestSeriousOutcomeFieldsAreLabelled(t *testing.T) {
	if len(SeriousOutcomeFields) != 6 {
		t.Fatalf("expected 6 seriousness fields, got %d", len(SeriousOutcomeFields))
	}
	for _, field := range SeriousOutcomeFields {
		if _, ok := SeriousOutcomeLabels[field]; !ok {
			t.Errorf("field %s has no label", field)
		}
	}
}
