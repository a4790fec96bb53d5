package nexway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		params     any
		wantErr    error
		wantFields []string
		wantMsg    string
	}{
		{
			name:   "valid",
			params: orderParams{Secret: "s", OrderID: "PO-1"},
		},
		{
			name:       "missing fields use parameter names",
			params:     orderParams{},
			wantErr:    ErrMissingParameter,
			wantFields: []string{"secret", "orderId"},
		},
		{
			name:    "non-struct input",
			params:  "not a struct",
			wantErr: ErrInvalidRequest,
			wantMsg: "GetOrder: validating parameters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := checkParams("GetOrder", tt.params)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantFields != nil {
				var mpe *MissingParameterError
				require.ErrorAs(t, err, &mpe)
				assert.Equal(t, tt.wantFields, mpe.Fields)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}
