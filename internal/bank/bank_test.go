package bank

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"testing"

	"github.com/verte-zerg/tuiz/internal/model"
)

func TestBuiltinBankParses(t *testing.T) {
	b, err := Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	if b.Len() == 0 {
		t.Fatalf("expected builtin questions")
	}
	cats := b.Categories()
	if !sort.StringsAreSorted(cats) {
		t.Fatalf("expected sorted categories, got %v", cats)
	}
	for _, q := range b.Questions() {
		if len(q.Answers) == 0 {
			t.Fatalf("question %d has no answers", q.ID)
		}
		if !q.Difficulty.Valid() {
			t.Fatalf("question %d has invalid difficulty %q", q.ID, q.Difficulty)
		}
	}
}

func TestParseNormalizesAnswers(t *testing.T) {
	data := []byte(`
- id: 1
  question: "Capital of Canada?"
  answer: Ottawa
  category: Geography
  difficulty: medium
- id: 2
  question: "Longest river?"
  answer: ["nile", " nile river ", ""]
  category: Geography
  difficulty: Hard
`)
	b, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	qs := b.Questions()
	if len(qs[0].Answers) != 1 || qs[0].Answers[0] != "Ottawa" {
		t.Fatalf("unexpected scalar answers: %v", qs[0].Answers)
	}
	if len(qs[1].Answers) != 2 || qs[1].Answers[1] != "nile river" {
		t.Fatalf("unexpected list answers: %v", qs[1].Answers)
	}
	if qs[0].Difficulty != model.Medium {
		t.Fatalf("expected Medium, got %q", qs[0].Difficulty)
	}
}

func TestParseRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"duplicate id": "- {id: 1, question: a, answer: b, category: c, difficulty: Easy}\n- {id: 1, question: d, answer: e, category: c, difficulty: Easy}\n",
		"no answer":    "- {id: 1, question: a, answer: [], category: c, difficulty: Easy}\n",
		"difficulty":   "- {id: 1, question: a, answer: b, category: c, difficulty: Insane}\n",
		"no category":  "- {id: 1, question: a, answer: b, difficulty: Easy}\n",
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data)); !errors.Is(err, ErrInvalidQuestion) {
			t.Fatalf("%s: expected ErrInvalidQuestion, got %v", name, err)
		}
	}
	if _, err := Parse([]byte("[]")); !errors.Is(err, ErrEmptyBank) {
		t.Fatalf("expected ErrEmptyBank, got %v", err)
	}
}

func TestEligibleFilters(t *testing.T) {
	b, err := New([]model.Question{
		{ID: 1, Text: "a", Answers: []string{"a"}, Category: "Science", Difficulty: model.Easy},
		{ID: 2, Text: "b", Answers: []string{"b"}, Category: "Science", Difficulty: model.Hard},
		{ID: 3, Text: "c", Answers: []string{"c"}, Category: "History", Difficulty: model.Easy},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := len(b.Eligible(model.DefaultSettings())); got != 3 {
		t.Fatalf("expected 3 eligible, got %d", got)
	}
	got := b.Eligible(model.Settings{Difficulty: "Easy", Category: "Science"})
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("unexpected eligible: %+v", got)
	}
	if got := b.Eligible(model.Settings{Difficulty: "Medium", Category: model.All}); len(got) != 0 {
		t.Fatalf("expected no medium questions, got %d", len(got))
	}
	if b.ValidSettings(model.Settings{Difficulty: model.All, Category: "Art"}) {
		t.Fatalf("expected unknown category to be invalid")
	}
}

func TestFetchAndWriteBank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("amount") != "3" {
			t.Errorf("unexpected amount %q", r.URL.Query().Get("amount"))
		}
		fmt.Fprint(w, `{"response_code":0,"results":[
			{"category":"Entertainment: Film","type":"multiple","difficulty":"easy","question":"Who directed &quot;Jaws&quot;?","correct_answer":"Steven Spielberg","incorrect_answers":["a","b","c"]},
			{"category":"Science","type":"boolean","difficulty":"easy","question":"Water is wet.","correct_answer":"True","incorrect_answers":["False"]},
			{"category":"History","type":"multiple","difficulty":"hard","question":"Year?","correct_answer":"1066","incorrect_answers":["1"]}
		]}`)
	}))
	defer srv.Close()

	client := NewOpenTDBClient(srv.URL, srv.Client())
	results, err := client.Fetch(context.Background(), 3, "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	entries := EntriesFromOpenTDB(results, 100)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Question != `Who directed "Jaws"?` || entries[0].Category != "Film" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
	if entries[1].ID != 101 {
		t.Fatalf("expected sequential ids, got %d", entries[1].ID)
	}

	path := filepath.Join(t.TempDir(), "bank.yaml")
	if err := WriteFile(path, entries); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.Len() != 2 || b.Questions()[0].Answers[0] != "steven spielberg" {
		t.Fatalf("unexpected reloaded bank: %+v", b.Questions())
	}
}
