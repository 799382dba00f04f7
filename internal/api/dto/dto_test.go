package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitResponse_RestoreStateNullWhenAbsent(t *testing.T) {
	resp := InitResponse{ProtocolVersion: ProtocolVersion, Configuration: Configuration{Currency: "USD"}}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"restoreState":null`)
}

func TestOutcome_CapReasonNullWhenUncapped(t *testing.T) {
	out := Outcome{TotalWin: 1, TotalWinX: 1, IsCapped: false}

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"capReason":null`)
}

func TestOutcome_CapReasonPresentWhenCapped(t *testing.T) {
	reason := "max_win_base"
	out := Outcome{TotalWin: 5000, TotalWinX: 5000, IsCapped: true, CapReason: &reason}

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"capReason":"max_win_base"`)
}

func TestErrorResponse_CarriesRecoverableFlag(t *testing.T) {
	resp := ErrorResponse{
		ProtocolVersion: ProtocolVersion,
		Error:           ErrorBody{Code: "ROUND_IN_PROGRESS", Message: "try again", Recoverable: true},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded ErrorResponse
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, resp, decoded)
}
