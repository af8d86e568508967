package extract

import (
	"strings"
	"testing"
)

func TestApply_EmptyRules(t *testing.T) {
	vals, results := Apply([]byte(`[{"characteristics":{}}]`), Rules{})
	if len(vals) != 0 {
		t.Fatalf("expected empty values, got %v", vals)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %v", results)
	}
}

func TestApply_Characteristics(t *testing.T) {
	body := []byte(`[{"characteristics":{"functionalPattern":"Fulfill","assetType":"Info","genericArtefactType":"Record"}}]`)
	rules := Rules{
		"functionalPattern":   "$[0].characteristics.functionalPattern",
		"assetType":           "$[0].characteristics.assetType",
		"genericArtefactType": "$[0].characteristics.genericArtefactType",
	}

	vals, res := Apply(body, rules)

	if vals["functionalPattern"] != "Fulfill" {
		t.Fatalf("expected functionalPattern=Fulfill, got=%q", vals["functionalPattern"])
	}
	if vals["assetType"] != "Info" {
		t.Fatalf("expected assetType=Info, got=%q", vals["assetType"])
	}
	if vals["genericArtefactType"] != "Record" {
		t.Fatalf("expected genericArtefactType=Record, got=%q", vals["genericArtefactType"])
	}

	if len(res) != 3 {
		t.Fatalf("expected 3 results, got=%d", len(res))
	}
	if failed := failedNames(res); len(failed) != 0 {
		t.Fatalf("expected all success, got failures: %v", failed)
	}
}

func TestApply_NonJSONBody_FailsAll(t *testing.T) {
	vals, res := Apply([]byte("<html>"), Rules{"assetType": "$[0].characteristics.assetType"})
	if len(vals) != 0 {
		t.Fatalf("expected no values, got=%v", vals)
	}
	if len(res) != 1 || res[0].Success {
		t.Fatalf("expected one failure, got %+v", res)
	}
	if !strings.Contains(res[0].Message, "not valid JSON") {
		t.Fatalf("expected json message, got %q", res[0].Message)
	}
}

func TestApply_EmptyArrayFailsEveryRule(t *testing.T) {
	rules := Rules{
		"functionalPattern": "$[0].characteristics.functionalPattern",
		"assetType":         "$[0].characteristics.assetType",
	}
	vals, res := Apply([]byte(`[]`), rules)
	if len(vals) != 0 {
		t.Fatalf("expected no values, got %v", vals)
	}
	if got := failedNames(res); len(got) != 2 {
		t.Fatalf("expected 2 failures, got %v", got)
	}
}

func TestApply_MissingAndNullFields(t *testing.T) {
	body := []byte(`[{"characteristics":{"functionalPattern":"Manage","assetType":null}}]`)
	rules := Rules{
		"functionalPattern":   "$[0].characteristics.functionalPattern",
		"assetType":           "$[0].characteristics.assetType",
		"genericArtefactType": "$[0].characteristics.genericArtefactType",
	}

	vals, res := Apply(body, rules)
	if vals["functionalPattern"] != "Manage" {
		t.Fatalf("expected functionalPattern kept, got %q", vals["functionalPattern"])
	}
	failed := failedNames(res)
	if len(failed) != 2 || failed[0] != "assetType" || failed[1] != "genericArtefactType" {
		t.Fatalf("expected assetType and genericArtefactType to fail, got %v", failed)
	}
}

func TestApply_EmptyExpression(t *testing.T) {
	_, res := Apply([]byte(`[]`), Rules{"x": "  "})
	if len(res) != 1 || res[0].Success {
		t.Fatalf("expected failure for empty expression")
	}
	if !strings.Contains(res[0].Message, "empty jsonpath") {
		t.Fatalf("unexpected message %q", res[0].Message)
	}
}

func TestApply_NonStringValues(t *testing.T) {
	vals, _ := Apply([]byte(`{"n":7,"b":true}`), Rules{"n": "$.n", "b": "$.b"})
	if vals["n"] != "7" || vals["b"] != "true" {
		t.Fatalf("expected scalars to stringify, got %v", vals)
	}
}

func failedNames(results []Result) []string {
	var out []string
	for _, r := range results {
		if !r.Success {
			out = append(out, r.Name)
		}
	}
	return out
}
