package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Parallel()

	t.Run("flag properties", func(t *testing.T) {
		t.Parallel()

		cmd := &cobra.Command{Use: "test"}
		Config(cmd)

		f := cmd.PersistentFlags().Lookup("config")
		require.NotNil(t, f)
		assert.Equal(t, "c", f.Shorthand)
		assert.Equal(t, DefaultConfigPath, f.DefValue)
	})

	t.Run("value retrieval", func(t *testing.T) {
		t.Parallel()

		cmd := &cobra.Command{Use: "test", Run: func(cmd *cobra.Command, _ []string) {}}
		Config(cmd)

		cmd.SetArgs([]string{"-c", "testnet.yml"})
		require.NoError(t, cmd.Execute())

		path, _ := cmd.Flags().GetString("config")
		assert.Equal(t, "testnet.yml", path)
	})
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{name: "default", want: FormatYAML},
		{name: "json", args: []string{"--format", "json"}, want: FormatJSON},
		{name: "shorthand", args: []string{"-f", "yaml"}, want: FormatYAML},
		{name: "unknown", args: []string{"-f", "toml"}, wantErr: `unsupported format "toml"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := &cobra.Command{Use: "test", Run: func(cmd *cobra.Command, _ []string) {}}
			Format(cmd)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.Execute())

			got, err := GetFormat(cmd)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransport(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "test", Run: func(cmd *cobra.Command, _ []string) {}}
	Transport(cmd)
	cmd.SetArgs([]string{"--transport", "rpc"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "rpc", MustString(cmd.Flags().GetString("transport")))
}

func TestNearCLIAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantSigner string
		wantYocto  string
	}{
		{name: "deployer names", args: []string{"--signer", "a.testnet", "--deposit-yocto", "1"}, wantSigner: "a.testnet", wantYocto: "1"},
		{name: "near-cli names", args: []string{"--accountId", "b.testnet", "--depositYocto", "2"}, wantSigner: "b.testnet", wantYocto: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := &cobra.Command{Use: "test", Run: func(cmd *cobra.Command, _ []string) {}}
			cmd.Flags().String("signer", "", "")
			cmd.Flags().String("deposit-yocto", "", "")
			NearCLIAliases(cmd)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.Execute())

			assert.Equal(t, tt.wantSigner, MustString(cmd.Flags().GetString("signer")))
			assert.Equal(t, tt.wantYocto, MustString(cmd.Flags().GetString("deposit-yocto")))
		})
	}
}
