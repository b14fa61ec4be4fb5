package cmd

import (
	"fmt"
	"os"

	"github.com/enotify/enotify/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgServer   string
	cfgPort     int
	cfgSender   string
	cfgReceiver string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the persisted SMTP configuration",
	Long: `Overwrites configuration keys with the supplied flags and persists the
result. Keys without a flag are left unchanged. The effective configuration
is printed afterwards.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVar(&cfgServer, "server", "", "SMTP server host")
	configCmd.Flags().IntVar(&cfgPort, "port", 0, "SMTP server port")
	configCmd.Flags().StringVar(&cfgSender, "sender", "", "sender address used as the SMTP login")
	configCmd.Flags().StringVar(&cfgReceiver, "receiver", "", "default receiver when notify has no --to/--destlist")
}

func runConfig(cmd *cobra.Command, args []string) error {
	edits := []struct {
		flag  string
		key   string
		value interface{}
	}{
		{"server", config.KeyServer, cfgServer},
		{"port", config.KeyPort, cfgPort},
		{"sender", config.KeySender, cfgSender},
		{"receiver", config.KeyReceiver, cfgReceiver},
	}

	for _, edit := range edits {
		if cmd.Flags().Changed(edit.flag) {
			store.Set(edit.key, edit.value)
			log.Debug("Changed the configuration pair", map[string]interface{}{
				"key":   edit.key,
				"value": edit.value,
			})
		}
	}

	if err := store.Save(); err != nil {
		return fmt.Errorf("saving config file: %w", err)
	}

	fmt.Printf("# %s\n", store.Path())
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(store.Settings()); err != nil {
		return fmt.Errorf("printing config: %w", err)
	}
	return encoder.Close()
}
