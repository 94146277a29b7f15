package privacy_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/service/privacy"
)

func TestRedact(t *testing.T) {
	r := privacy.New(true)

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "email",
			in:   "reach me at jane.doe+test@example.com please",
			want: "reach me at [REDACTED] please",
		},
		{
			name: "phone number",
			in:   "call +81 90-1234-5678 tomorrow",
			want: "call [REDACTED] tomorrow",
		},
		{
			name: "long digit run",
			in:   "my badge is 48213 ok",
			want: "my badge is [REDACTED] ok",
		},
		{
			name: "capitalized full name",
			in:   "talked with Alice Johnson about it",
			want: "talked with [REDACTED] about it",
		},
		{
			name: "short numbers survive",
			in:   "slept 6 hours, took a 15 min walk",
			want: "slept 6 hours, took a 15 min walk",
		},
		{
			name: "plain text unchanged",
			in:   "feeling a bit stressed before lunch",
			want: "feeling a bit stressed before lunch",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, r.Redact(tc.in)).Equal(tc.want)
		})
	}

	t.Run("mixed identifiers all redacted", func(t *testing.T) {
		out := r.Redact("John Smith (john@corp.example) asked me to call 090-1234-5678")
		gt.Bool(t, strings.Contains(out, "john@")).False()
		gt.Bool(t, strings.Contains(out, "John Smith")).False()
		gt.Bool(t, strings.Contains(out, "1234")).False()
		gt.Bool(t, strings.Contains(out, privacy.Placeholder)).True()
	})
}

func TestRedactDisabled(t *testing.T) {
	r := privacy.New(false)

	gt.Bool(t, r.Enabled()).False()
	in := "mail jane@example.com or call 090-1234-5678"
	gt.Value(t, r.Redact(in)).Equal(in)
}

func TestRedactConversation(t *testing.T) {
	r := privacy.New(true)

	conv := model.Conversation{Messages: []model.Message{
		{Role: model.RoleUser, Content: "I am Maria Garcia, mail me at mg@example.org"},
		{Role: model.RoleAssistant, Content: "noted"},
	}}

	out := r.RedactConversation(conv)

	// Original stays untouched
	gt.Bool(t, strings.Contains(conv.Messages[0].Content, "Maria Garcia")).True()

	gt.Array(t, out.Messages).Length(2).Required()
	gt.Bool(t, strings.Contains(out.Messages[0].Content, "Maria Garcia")).False()
	gt.Bool(t, strings.Contains(out.Messages[0].Content, "mg@example.org")).False()
	gt.Value(t, out.Messages[0].Role).Equal(model.RoleUser)
	gt.Value(t, out.Messages[1].Content).Equal("noted")
}
