package search

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercase", in: "The Matrix", want: "the matrix"},
		{name: "diacritics folded", in: "Amélie", want: "amelie"},
		{name: "diacritics in phrase", in: "Le Fabuleux Destin d'Amélie", want: "le fabuleux destin d amelie"},
		{name: "punctuation collapsed", in: "Spider-Man: No Way Home", want: "spider man no way home"},
		{name: "parentheses stripped", in: "The Office (US)", want: "the office us"},
		{name: "leading trailing stripped", in: "  Dune  ", want: "dune"},
		{name: "multiple separators", in: "a...b---c", want: "a b c"},
		{name: "digits kept", in: "Blade Runner 2049", want: "blade runner 2049"},
		{name: "empty", in: "", want: ""},
		{name: "only punctuation", in: "?!...", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "stopwords removed", in: "the lord of the rings", want: []string{"lord", "rings"}},
		{name: "no stopwords", in: "blade runner", want: []string{"blade", "runner"}},
		{name: "all stopwords", in: "the of and", want: []string{}},
		{name: "empty", in: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestQueryVariants(t *testing.T) {
	variants := queryVariants("the matrix")
	if len(variants) != 2 || variants[0] != "the matrix" || variants[1] != "matrix" {
		t.Fatalf("queryVariants(the matrix) = %v", variants)
	}

	// 消歧例外：裸标题补出带地区后缀的变体
	variants = queryVariants("the office")
	found := false
	for _, v := range variants {
		if v == "the office us" {
			found = true
		}
	}
	if !found {
		t.Fatalf("queryVariants(the office) = %v, want disambiguation variant", variants)
	}

	// 无派生时只有原查询
	variants = queryVariants("dune")
	if len(variants) != 1 || variants[0] != "dune" {
		t.Fatalf("queryVariants(dune) = %v", variants)
	}
}

func TestYearToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "dune 2021", want: "2021"},
		{in: "2001 a space odyssey", want: "2001"},
		{in: "blade runner", want: ""},
		{in: "se7en", want: ""},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := yearToken(tt.in); got != tt.want {
			t.Errorf("yearToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
