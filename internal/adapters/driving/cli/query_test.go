package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query [question]", queryCmd.Use)
}

func TestQueryCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestQueryCmd_HasFlags(t *testing.T) {
	limit := queryCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "10", limit.DefValue)

	assert.NotNil(t, queryCmd.Flags().Lookup("json"))
	assert.NotNil(t, queryCmd.Flags().Lookup("no-cache"))
}

func TestQueryCmd_RendersTextResult(t *testing.T) {
	fake := &fakeQueryService{result: sampleSynthesis()}
	cleanup := setupTestServices(fake, &fakeKnowledgeService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "market trends in sugar land"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Market analysis for sugar land.")
	assert.Contains(t, out, "Confidence: 82%")
	assert.Contains(t, out, "median_price: 425000")
	assert.Contains(t, out, "rising")
	assert.Contains(t, out, "Sources: market")
}

func TestQueryCmd_RendersJSON(t *testing.T) {
	fake := &fakeQueryService{result: sampleSynthesis()}
	cleanup := setupTestServices(fake, &fakeKnowledgeService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "market trends", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		queryJSON = false
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), `"Confidence": 0.82`)
}

func TestQueryCmd_PassesOptions(t *testing.T) {
	fake := &fakeQueryService{result: sampleSynthesis()}
	cleanup := setupTestServices(fake, &fakeKnowledgeService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "market trends", "--no-cache", "-n", "3"})
	defer func() {
		rootCmd.SetArgs(nil)
		queryNoCache = false
		queryLimit = 10
	}()

	require.NoError(t, rootCmd.Execute())
	assert.True(t, fake.lastOpts.BypassCache)
	assert.Equal(t, 3, fake.lastOpts.TopK)
}

func TestQueryCmd_ServiceErrorSurfaces(t *testing.T) {
	fake := &fakeQueryService{err: errors.New("engine offline")}
	cleanup := setupTestServices(fake, &fakeKnowledgeService{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query", "anything"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine offline")
}

func TestQueryCmd_MissingServiceFails(t *testing.T) {
	cleanup := setupTestServices(nil, nil)
	defer cleanup()
	queryService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query", "anything"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
