package aiwire

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"probel/internal/model"
)

func TestNewRequest_AppendsUserTurnToHistory(t *testing.T) {
	t.Parallel()

	history := []model.ChatMessage{
		{Content: "hi", Sender: model.SenderUser},
		{Content: "hello!", Sender: model.SenderAI},
	}
	got := NewRequest(history, "how are you?")
	want := Request{
		Model:     "claude-3-haiku-20240307",
		MaxTokens: 4096,
		Messages: []Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello!"},
			{Role: "user", Content: "how are you?"},
		},
		Temperature: 0.7,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestResponse_TextJoinsTextBlocks(t *testing.T) {
	t.Parallel()

	r := Response{Content: []model.ContentBlock{
		{Type: "text", Text: "a"},
		{Type: "tool_use"},
		{Type: "text", Text: "b"},
	}}
	if got := r.Text(); got != "a\nb" {
		t.Fatalf("Text: got %q want %q", got, "a\nb")
	}
}

func TestResponse_TextKeepsParagraphsApart(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content []model.ContentBlock
		want    string
	}{
		{"none", nil, ""},
		{"single", []model.ContentBlock{{Type: "text", Text: "First paragraph."}}, "First paragraph."},
		{"two", []model.ContentBlock{
			{Type: "text", Text: "First paragraph."},
			{Type: "text", Text: "Second paragraph."},
		}, "First paragraph.\nSecond paragraph."},
		{"empty text", []model.ContentBlock{{Type: "text", Text: ""}}, ""},
	}
	for _, tc := range cases {
		if got := (Response{Content: tc.content}).Text(); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}
