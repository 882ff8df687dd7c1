package service

import (
	"testing"

	"github.com/docentia/simulacro-backend/internal/model"
)

func TestValidateQuestion(t *testing.T) {
	base := func() *model.Question {
		return &model.Question{
			Module: model.ModuleMatematica,
			Text:   "2+2?",
			Options: []model.Option{
				{ID: "a", Text: "3"},
				{ID: "b", Text: "4"},
			},
			CorrectOption: "b",
			Difficulty:    model.DifficultyMedia,
		}
	}

	cases := []struct {
		name    string
		mutate  func(*model.Question)
		wantErr bool
	}{
		{"valid", func(q *model.Question) {}, false},
		{"unknown module", func(q *model.Question) { q.Module = "historia" }, true},
		{"single option", func(q *model.Question) { q.Options = q.Options[:1] }, true},
		{"duplicate option ids", func(q *model.Question) { q.Options[1].ID = "a" }, true},
		{"blank option id", func(q *model.Question) { q.Options[0].ID = "  " }, true},
		{"correct not among options", func(q *model.Question) { q.CorrectOption = "z" }, true},
		{"prompt only valid", func(q *model.Question) {
			q.PromptOnly = true
			q.Options = nil
			q.CorrectOption = ""
		}, false},
		{"prompt only with options", func(q *model.Question) { q.PromptOnly = true }, true},
		{"prompt only with answer", func(q *model.Question) {
			q.PromptOnly = true
			q.Options = nil
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := base()
			tc.mutate(q)
			err := validateQuestion(q)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
