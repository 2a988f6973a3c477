package scopus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapToIndexingResult(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "one serial entry",
			body: indexedResponse,
			want: true,
		},
		{
			name: "no entries",
			body: `{"serial-metadata-response":{"entry":[]}}`,
			want: false,
		},
		{
			name: "top-level error",
			body: `{"serial-metadata-response":{"error":"No results found"}}`,
			want: false,
		},
		{
			name: "error placeholder among entries",
			body: `{"serial-metadata-response":{"entry":[{"error":"Result set was empty"},{"dc:title":"Science"}]}}`,
			want: true,
		},
		{
			name: "entry without title",
			body: `{"serial-metadata-response":{"entry":[{"dc:title":"  "}]}}`,
			want: false,
		},
		{
			name: "unrelated document",
			body: `{}`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp serialTitleResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))
			assert.Equal(t, tt.want, mapToIndexingResult(&resp).Indexed)
		})
	}
}
