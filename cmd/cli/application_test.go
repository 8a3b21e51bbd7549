package cli_test

import (
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/branchflow/cmd/cli"
	"github.com/temirov/branchflow/internal/utils"
)

func TestEmbeddedDefaultConfiguration(testInstance *testing.T) {
	configurationContent, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)
	require.NotEmpty(testInstance, configurationContent)

	var rawConfiguration map[string]any
	require.NoError(testInstance, yaml.Unmarshal(configurationContent, &rawConfiguration))
	require.Contains(testInstance, rawConfiguration, "common")
	require.Contains(testInstance, rawConfiguration, "workflow")

	var configuration cli.ApplicationConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.TextUnmarshallerHookFunc(),
		ErrorUnused: true,
		Result:      &configuration,
	})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(rawConfiguration))

	require.Equal(testInstance, utils.LogLevelWarn, configuration.Common.LogLevel)
	require.Equal(testInstance, utils.LogFormatConsole, configuration.Common.LogFormat)
	require.Equal(testInstance, cli.ApplicationWorkflowConfiguration{
		MainBranch:               "main",
		Remote:                   "origin",
		DefaultCommitMessage:     "update",
		RemediationCommitMessage: "chore: save local changes",
		Prompter:                 "auto",
	}, configuration.Workflow)
}

func TestEmbeddedDefaultConfigurationReturnsCopy(testInstance *testing.T) {
	firstContent, _ := cli.EmbeddedDefaultConfiguration()
	firstContent[0] = '#'

	secondContent, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, firstContent[0], secondContent[0])
}
