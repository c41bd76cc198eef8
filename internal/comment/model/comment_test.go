package model

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{in: `"abc"`, want: "abc"},
		{in: `42`, want: "42"},
		{in: `null`, want: ""},
		{in: `"7"`, want: "7"},
	}

	for _, tt := range tests {
		var id ID
		if err := json.Unmarshal([]byte(tt.in), &id); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if id != tt.want {
			t.Fatalf("unmarshal %s: expected %q, got %q", tt.in, tt.want, id)
		}
	}

	var id ID
	if err := json.Unmarshal([]byte(`{}`), &id); err == nil {
		t.Fatalf("expected error for object id")
	}
}

func TestCommentDecodesWireFormat(t *testing.T) {
	raw := `{"id":12,"content":"hi","user_id":3,"username":"bob","parent_id":null,
		"created_at":"2024-03-01T12:00:00Z","is_pinned":true,"likes":2,"dislikes":1}`

	var c Comment
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.ID != "12" || c.UserID != "3" || !c.Pinned || c.Likes != 2 || c.Dislikes != 1 {
		t.Fatalf("unexpected comment %+v", c)
	}
	if !c.IsRoot() {
		t.Fatalf("null parent must be a root")
	}
}

func TestIsRootAndIsChildOf(t *testing.T) {
	empty, parent := ID(""), ID("1")

	if !(Comment{ParentID: &empty}).IsRoot() {
		t.Fatalf("empty parent id must be a root")
	}
	c := Comment{ID: "2", ParentID: &parent}
	if c.IsRoot() {
		t.Fatalf("reply reported as root")
	}
	if !c.IsChildOf("1") || c.IsChildOf("3") {
		t.Fatalf("IsChildOf mismatch")
	}
	if (Comment{}).IsChildOf("") {
		t.Fatalf("root is nobody's child")
	}
}

func TestPatchApply(t *testing.T) {
	c := Comment{Likes: 1, Dislikes: 1}
	pinned := true

	Patch{Pinned: &pinned}.Apply(&c)
	if !c.Pinned || c.Likes != 1 {
		t.Fatalf("pin patch touched counts: %+v", c)
	}

	Patch{Reactions: &Reactions{Likes: 9}}.Apply(&c)
	if c.Likes != 9 || c.Dislikes != 0 || !c.Pinned {
		t.Fatalf("reaction patch: %+v", c)
	}
}
