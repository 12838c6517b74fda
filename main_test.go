package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbeCommand_NoDatabase(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("PORT", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"probe"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.EqualError(t, err, "database not connected")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	require.Equal(t, "✅ Running", body["backend"])
	require.Equal(t, "❌ Not Connected", body["database"])
}
