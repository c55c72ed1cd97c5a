package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("unique violation code was not recognized")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation misread as a unique violation")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Error("plain error misread as a unique violation")
	}
	if isUniqueViolation(nil) {
		t.Error("nil misread as a unique violation")
	}
}

func TestBuildExperienceListWhere(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		where, args := buildExperienceListWhere(ExperienceFilter{})
		if where != "" {
			t.Errorf("got %q, want empty where clause", where)
		}
		if len(args) != 0 {
			t.Errorf("got %d args, want 0", len(args))
		}
	})

	t.Run("SingleCondition", func(t *testing.T) {
		where, args := buildExperienceListWhere(ExperienceFilter{Country: "Japan"})
		if where != " WHERE country = $1" {
			t.Errorf("got %q", where)
		}
		if len(args) != 1 || args[0] != "Japan" {
			t.Errorf("got args %v, want [Japan]", args)
		}
	})

	t.Run("CategoryUsesArrayMembership", func(t *testing.T) {
		where, _ := buildExperienceListWhere(ExperienceFilter{Category: "food"})
		if !strings.Contains(where, "$1 = ANY(categories)") {
			t.Errorf("got %q, want ANY(categories) membership check", where)
		}
	})

	t.Run("KeywordReusesOnePlaceholder", func(t *testing.T) {
		where, args := buildExperienceListWhere(ExperienceFilter{Keyword: "tokyo"})
		if strings.Count(where, "$1") != 3 {
			t.Errorf("got %q, want $1 used for title, city and country", where)
		}
		if len(args) != 1 || args[0] != "%tokyo%" {
			t.Errorf("got args %v, want [%%tokyo%%]", args)
		}
	})

	t.Run("KeywordEscapesWildcards", func(t *testing.T) {
		cases := []struct {
			keyword string
			want    string
		}{
			{"50%", `%50\%%`},
			{"snake_river", `%snake\_river%`},
			{`back\slash`, `%back\\slash%`},
		}
		for _, tc := range cases {
			_, args := buildExperienceListWhere(ExperienceFilter{Keyword: tc.keyword})
			if len(args) != 1 || args[0] != tc.want {
				t.Errorf("keyword %q: got args %v, want [%s]", tc.keyword, args, tc.want)
			}
		}
	})

	t.Run("AllConditionsNumberedInOrder", func(t *testing.T) {
		where, args := buildExperienceListWhere(ExperienceFilter{
			Category: "food",
			Country:  "Japan",
			UserID:   "u1",
			Keyword:  "ramen",
		})
		if len(args) != 4 {
			t.Fatalf("got %d args, want 4", len(args))
		}
		for _, want := range []string{
			"$1 = ANY(categories)",
			"country = $2",
			"user_id = $3",
			"title ILIKE $4",
		} {
			if !strings.Contains(where, want) {
				t.Errorf("where clause %q is missing %q", where, want)
			}
		}
		if strings.Count(where, " AND ") != 3 {
			t.Errorf("got %q, want conditions joined by AND", where)
		}
	})
}
