package rules

import (
	"errors"
	"reflect"
	"testing"
)

func TestRunDedupsRuleMessages(t *testing.T) {
	var errs Messages
	validators := []any{LengthGte(5, "too short")}
	Run(validators, "abc", nil, &errs)
	Run(validators, "abc", nil, &errs)
	if !reflect.DeepEqual([]string(errs), []string{"too short"}) {
		t.Errorf("** errs = %q", errs)
	}
}

func TestRunInterpretsFuncResults(t *testing.T) {
	tests := []struct {
		name     string
		result   any
		expected []string
	}{
		{"nil", nil, nil},
		{"rule passes", NotEmpty("empty"), nil},
		{"rule fails", Equal("y", "must be y"), []string{"must be y"}},
		{"rules", []Rule{Equal("y", "must be y"), LengthGt(5, "short"), NotEmpty("")}, []string{"must be y", "short"}},
		{"string", "bad", []string{"bad"}},
		{"error", errors.New("broken"), []string{"broken"}},
		{"other", 42, []string{"42"}},
	}
	for _, tt := range tests {
		var errs Messages
		f := Func(func(value any, values map[string]any) any { return tt.result })
		Run([]any{f}, "x", nil, &errs)
		if !reflect.DeepEqual([]string(errs), tt.expected) {
			t.Errorf("** %s: errs = %q, wanted %q", tt.name, errs, tt.expected)
		} else {
			t.Logf("✓ %s: errs = %q", tt.name, errs)
		}
	}
}

func TestLiteralMessagesAreNotDeduped(t *testing.T) {
	var errs Messages
	f := func(value any, values map[string]any) any { return "nope" }
	Run([]any{f}, "x", nil, &errs)
	Run([]any{f}, "x", nil, &errs)
	if len(errs) != 2 {
		t.Errorf("** errs = %q, wanted two copies", errs)
	}
}

func TestEqualFieldSeesFormValues(t *testing.T) {
	var errs Messages
	v := EqualField("password", "Passwords must match")
	Run([]any{v}, "secret", map[string]any{"password": "secret"}, &errs)
	if len(errs) != 0 {
		t.Errorf("** matching: errs = %q", errs)
	}
	Run([]any{v}, "other", map[string]any{"password": "secret"}, &errs)
	if !errs.Has("Passwords must match") {
		t.Errorf("** mismatching: errs = %q", errs)
	}
}

func TestRuleLibrary(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value any
		ok    bool
	}{
		{"email ok", Email(""), "a@example.com", true},
		{"email bad", Email(""), "a@", false},
		{"email blank", Email(""), "", true},
		{"url ok", URL(""), "https://example.com/x", true},
		{"url bad", URL(""), "example", false},
		{"alpha", Alpha(""), "abc", true},
		{"alpha digits", Alpha(""), "ab1", false},
		{"alnum", AlphaNumeric(""), "ab1", true},
		{"numeric", Numeric(""), "1.5", true},
		{"numeric bad", Numeric(""), "x", false},
		{"length_gte", LengthGte(3, ""), "héé", true},
		{"length_lt", LengthLt(3, ""), "abc", false},
		{"length_between", LengthBetween(2, 4, ""), "abcd", true},
		{"in", In([]string{"a", "b"}, ""), "b", true},
		{"in multi", In([]string{"a", "b"}, ""), []string{"a", "c"}, false},
		{"not_in", NotIn([]string{"a"}, ""), "a", false},
		{"less_than", LessThan(10, ""), "9", true},
		{"less_than eq", LessThan(10, ""), 10, false},
		{"greater_than_equal", GreaterThanEqual(10, ""), "10", true},
		{"between", Between(1, 3, ""), "3", false},
		{"between_include", BetweenInclude(1, 3, ""), "3", true},
		{"not_empty", NotEmpty(""), "  ", false},
		{"regex", RegEx(`^\d+$`, ""), "123", true},
	}
	for _, tt := range tests {
		actual := tt.rule.Evaluate(tt.value)
		if actual != tt.ok {
			t.Errorf("** %s: Evaluate(%v) == %v, wanted %v", tt.name, tt.value, actual, tt.ok)
		} else {
			t.Logf("✓ %s: Evaluate(%v) == %v", tt.name, tt.value, actual)
		}
	}
}

func TestComparisonMarker(t *testing.T) {
	var r Rule = LessThan(5, "")
	if _, ok := r.(Comparison); !ok {
		t.Errorf("** LessThan is not a Comparison")
	}
	r = LengthLt(5, "")
	if _, ok := r.(Comparison); ok {
		t.Errorf("** LengthLt must not be a Comparison")
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		value any
		empty bool
	}{
		{nil, true},
		{"", true},
		{"0", true},
		{"a", false},
		{[]string{}, true},
		{[]string{"a"}, false},
		{false, true},
		{0, true},
	}
	for _, tt := range tests {
		if actual := IsEmpty(tt.value); actual != tt.empty {
			t.Errorf("** IsEmpty(%#v) == %v, wanted %v", tt.value, actual, tt.empty)
		}
	}
}

func TestParse(t *testing.T) {
	v, err := Parse("length_gte=8")
	if err != nil {
		t.Fatalf("** Parse: %v", err)
	}
	if r := v.(Rule); r.Evaluate("short") {
		t.Errorf("** length_gte=8 accepted %q", "short")
	}

	v, err = Parse("between=1,10")
	if err != nil {
		t.Fatalf("** Parse: %v", err)
	}
	if _, ok := v.(Comparison); !ok {
		t.Errorf("** between is not a comparison: %T", v)
	}

	if _, err := Parse("bogus"); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("** Parse(bogus) err = %v", err)
	}
	if _, err := Parse("length_gt=abc"); !errors.Is(err, ErrBadArgument) {
		t.Errorf("** Parse(length_gt=abc) err = %v", err)
	}
	if _, err := Parse("regex=("); !errors.Is(err, ErrBadArgument) {
		t.Errorf("** Parse(regex=() err = %v", err)
	}
	if v, err := Parse("regex=^[a-z]+$"); err != nil || !v.(Rule).Evaluate("abc") || v.(Rule).Evaluate("ABC") {
		t.Errorf("** Parse(regex=^[a-z]+$) = %v, %v", v, err)
	}
	if _, err := Parse("equal_field=password"); err != nil {
		t.Errorf("** Parse(equal_field) err = %v", err)
	}
	if len(Names()) == 0 {
		t.Errorf("** no names")
	}
}
