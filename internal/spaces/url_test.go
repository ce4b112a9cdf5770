package spaces

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSpaceID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "x.com URL",
			url:  "https://x.com/i/spaces/1ZkKzYLnWOLxv",
			want: "1ZkKzYLnWOLxv",
		},
		{
			name: "twitter.com URL",
			url:  "https://twitter.com/i/spaces/1vOxwrPQRRLxB",
			want: "1vOxwrPQRRLxB",
		},
		{
			name: "URL with trailing path",
			url:  "https://x.com/i/spaces/1ZkKzYLnWOLxv/peek",
			want: "1ZkKzYLnWOLxv",
		},
		{
			name:    "no spaces segment",
			url:     "https://x.com/someuser/status/12345",
			wantErr: true,
		},
		{
			name:    "bare id",
			url:     "1ZkKzYLnWOLxv",
			wantErr: true,
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSpaceID(tt.url)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSpaceURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
