package root

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"vaultfire/internal/storage"
)

// documentSchemas describes the persisted document entries.
func documentSchemas() map[string]*jsonschema.Schema {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	return map[string]*jsonschema.Schema{
		"user":          r.Reflect(&storage.UserRecord{}),
		"reflection":    r.Reflect(&storage.Reflection{}),
		"ritual":        r.Reflect(&storage.RitualEvent{}),
		"reward_signal": r.Reflect(&storage.RewardSignal{}),
	}
}

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print JSON Schema for the stored documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(documentSchemas())
		},
	}

	return cmd
}
