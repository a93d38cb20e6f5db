package orderreader

import (
	"testing"

	marketv1 "github.com/muhammadchandra19/market-sim/internal/domain/market/v1"
	"github.com/muhammadchandra19/market-sim/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOrder(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected marketv1.OrderInput
		wantErr  bool
	}{
		{
			name:    "buy order",
			payload: `{"symbol":"FB","price":100,"quantity":20,"type":"BUY"}`,
			expected: marketv1.OrderInput{
				Symbol: "FB", Price: 100, Quantity: 20, Side: marketv1.SideBuy,
			},
		},
		{
			name:    "unknown fields are ignored",
			payload: `{"symbol":"MSFT","price":160.5,"quantity":10,"type":"SELL","status":"OPEN"}`,
			expected: marketv1.OrderInput{
				Symbol: "MSFT", Price: 160.5, Quantity: 10, Side: marketv1.SideSell,
			},
		},
		{
			name:    "malformed json",
			payload: `{"symbol":`,
			wantErr: true,
		},
		{
			name:    "fractional quantity",
			payload: `{"symbol":"FB","price":1,"quantity":1.5,"type":"BUY"}`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input, err := DecodeOrder([]byte(tc.payload))
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), string(errors.OrderDecodeError))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, input)
		})
	}
}
