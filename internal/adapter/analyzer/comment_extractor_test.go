package analyzer

import "testing"

func TestCommentExtractor_Extract(t *testing.T) {
	e := NewCommentExtractor()
	src := "(* header *)\nx := 1; // set x\ns := 'not // a comment';\n(* multi\n   line *)\n// TODO: remove"

	comments := e.Extract(src)
	if len(comments) != 4 {
		t.Fatalf("expected 4 comments, got %d: %+v", len(comments), comments)
	}

	tests := []struct {
		text      string
		typ       string
		startLine int
		endLine   int
	}{
		{"header", CommentBlockType, 1, 1},
		{"set x", CommentLineType, 2, 2},
		{"multi\n   line", CommentBlockType, 4, 5},
		{"TODO: remove", CommentTodoType, 6, 6},
	}
	for i, tt := range tests {
		c := comments[i]
		if c.Text != tt.text {
			t.Errorf("comment %d: text = %q, want %q", i, c.Text, tt.text)
		}
		if c.Type != tt.typ {
			t.Errorf("comment %d: type = %q, want %q", i, c.Type, tt.typ)
		}
		if c.StartLine != tt.startLine || c.EndLine != tt.endLine {
			t.Errorf("comment %d: lines = %d-%d, want %d-%d", i, c.StartLine, c.EndLine, tt.startLine, tt.endLine)
		}
	}
	if comments[0].Raw != "(* header *)" {
		t.Errorf("raw = %q", comments[0].Raw)
	}
}

func TestCommentExtractor_Empty(t *testing.T) {
	e := NewCommentExtractor()
	if got := e.Extract("x := 1;\ny := 2;"); len(got) != 0 {
		t.Errorf("expected no comments, got %+v", got)
	}
}

func TestCommentExtractor_NestedBlock(t *testing.T) {
	e := NewCommentExtractor()
	src := "x := 1;\n(* outer (* inner *) still outer *)\ny := 2; (* next *)"

	comments := e.Extract(src)
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d: %+v", len(comments), comments)
	}
	if comments[0].Raw != "(* outer (* inner *) still outer *)" {
		t.Errorf("raw = %q", comments[0].Raw)
	}
	if comments[0].Text != "outer (* inner *) still outer" {
		t.Errorf("text = %q", comments[0].Text)
	}
	if comments[0].StartLine != 2 || comments[1].StartLine != 3 {
		t.Errorf("lines = %d, %d", comments[0].StartLine, comments[1].StartLine)
	}
	if comments[1].Text != "next" {
		t.Errorf("second text = %q", comments[1].Text)
	}
}

func TestCommentExtractor_UnterminatedBlock(t *testing.T) {
	e := NewCommentExtractor()
	comments := e.Extract("(* open (* inner *)\n// tail")
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %+v", comments)
	}
	if comments[0].Raw != "(* inner *)" || comments[1].Text != "tail" {
		t.Errorf("unexpected comments %+v", comments)
	}
}
