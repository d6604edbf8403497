package models

import "testing"

func ptr[T any](v T) *T { return &v }

func TestTodoPatchApply(t *testing.T) {
	base := Todo{ID: "1", Title: "title", Description: "desc", Completed: true, UserID: "u"}

	tests := []struct {
		name  string
		patch TodoPatch
		want  Todo
	}{
		{
			name:  "empty patch keeps todo",
			patch: TodoPatch{},
			want:  base,
		},
		{
			name:  "explicit false clears completed",
			patch: TodoPatch{Completed: ptr(false)},
			want:  Todo{ID: "1", Title: "title", Description: "desc", Completed: false, UserID: "u"},
		},
		{
			name:  "title only",
			patch: TodoPatch{Title: ptr("new")},
			want:  Todo{ID: "1", Title: "new", Description: "desc", Completed: true, UserID: "u"},
		},
		{
			name:  "empty strings are ignored after normalize",
			patch: TodoPatch{Title: ptr(""), Description: ptr(""), Completed: ptr(false)}.Normalize(),
			want:  Todo{ID: "1", Title: "title", Description: "desc", Completed: false, UserID: "u"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.patch.Apply(base)
			if got != tt.want {
				t.Errorf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTodoPatchNormalize(t *testing.T) {
	p := TodoPatch{Title: ptr(""), Description: ptr("d")}.Normalize()
	if p.Title != nil {
		t.Error("empty title should become nil")
	}
	if p.Description == nil || *p.Description != "d" {
		t.Error("non-empty description must be kept")
	}
	if p.IsEmpty() {
		t.Error("patch with description is not empty")
	}
	if !(TodoPatch{Title: ptr("")}).Normalize().IsEmpty() {
		t.Error("patch with only empty title should be empty after normalize")
	}
}
