package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoframe/internal/textcache"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		kind   textcache.Kind
		author string
	}{
		{
			name: "bare json",
			raw:  `{"content":"Light on water","type":"poem","author":null}`,
			want: "Light on water", kind: textcache.KindPoem,
		},
		{
			name: "json fence",
			raw:  "```json\n{\"content\":\"Stay hungry\",\"type\":\"quote\",\"author\":\"Steve Jobs\"}\n```",
			want: "Stay hungry", kind: textcache.KindQuote, author: "Steve Jobs",
		},
		{
			name: "plain fence",
			raw:  "```\n{\"content\":\"Hi\",\"type\":\"quote\",\"author\":\"Me\"}\n```\n",
			want: "Hi", kind: textcache.KindQuote, author: "Me",
		},
		{
			name: "inline fence",
			raw:  "```json{\"content\":\"x\",\"type\":\"poem\"}```",
			want: "x", kind: textcache.KindPoem,
		},
		{
			name: "missing author",
			raw:  `{"content":"  padded  ","type":"poem"}`,
			want: "padded", kind: textcache.KindPoem,
		},
		{
			name: "blank author becomes null",
			raw:  `{"content":"a","type":"quote","author":" "}`,
			want: "a", kind: textcache.KindQuote,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entry.Content)
			assert.Equal(t, tt.kind, entry.Kind)
			assert.Equal(t, tt.author, entry.AuthorName())
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"```json\n```",
		"not json",
		`{"content":"x"}`,
		`{"content":"","type":"poem"}`,
		`{"content":"   ","type":"poem"}`,
		`{"content":"x","type":"haiku"}`,
		`{"content":"x","type":"poem","mood":"sad"}`,
		`{"content":1,"type":"poem"}`,
		`["content"]`,
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
