package http //nolint:revive // intentional naming for domain clarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{value: "bytes 0-0/1234", want: 1234},
		{value: " bytes 10-19/20 ", want: 20},
		{value: "bytes 0-0/*", wantErr: true},
		{value: "items 0-0/10", wantErr: true},
		{value: "bytes 0-0", wantErr: true},
		{value: "bytes 0-0/-5", wantErr: true},
		{value: "bytes 0-0/abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			got, err := parseContentRange(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
