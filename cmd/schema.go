// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"blockwatch.cc/easkit/identity"
	"blockwatch.cc/easkit/schema"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	dataArg     string
	dataFile    string
	dataPath    string
	strict      bool
	resolver    string
	irrevocable bool
)

func init() {
	for _, c := range []*cobra.Command{schemaValidateCmd, schemaCastCmd, schemaItemsCmd} {
		c.Flags().StringVar(&dataArg, "data", "", "JSON record")
		c.Flags().StringVar(&dataFile, "file", "", "read JSON record from `file` (- for stdin)")
		c.Flags().StringVar(&dataPath, "select", "", "gjson `path` of the record inside the document")
	}
	schemaValidateCmd.Flags().BoolVar(&strict, "strict", false, "also check value types against the JSON schema")
	for _, c := range []*cobra.Command{schemaUIDCmd, schemaRegisterCmd} {
		c.Flags().StringVar(&resolver, "resolver", "", "resolver contract `address` (default: zero)")
		c.Flags().BoolVar(&irrevocable, "irrevocable", false, "attestations cannot be revoked")
	}

	schemaCmd.AddCommand(schemaParseCmd)
	schemaCmd.AddCommand(schemaValidateCmd)
	schemaCmd.AddCommand(schemaCastCmd)
	schemaCmd.AddCommand(schemaItemsCmd)
	schemaCmd.AddCommand(schemaUIDCmd)
	schemaCmd.AddCommand(schemaJSONCmd)
	schemaCmd.AddCommand(schemaRegisterCmd)
	schemaCmd.AddCommand(schemaListCmd)
	schemaCmd.AddCommand(schemaShowCmd)
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Parse attestation schemas and check records against them",
}

var schemaParseCmd = &cobra.Command{
	Use:   "parse <schema>",
	Short: "Show field names and types of a schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := schema.Parse(args[0])
		if err != nil {
			return err
		}
		if jsonout {
			return print(d)
		}
		for _, f := range d.Fields() {
			printKV(f.Name, f.Type)
		}
		return nil
	},
}

var schemaValidateCmd = &cobra.Command{
	Use:   "validate <schema>",
	Short: "Check that a record holds every schema field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, buf, err := loadRecordInput(args[0])
		if err != nil {
			return err
		}
		rec, err := schema.RecordFromJSONPath(buf, dataPath)
		if err != nil {
			return err
		}
		res := schema.Validate(d, rec)
		if jsonout {
			if err := print(res); err != nil {
				return err
			}
		}
		if err := res.Err(); err != nil {
			return err
		}
		if strict {
			if dataPath != "" {
				buf = []byte(gjson.GetBytes(buf, dataPath).Raw)
			}
			if err := schema.ValidateJSON(d, buf); err != nil {
				return err
			}
		}
		if !jsonout {
			ok("record matches %s", d)
		}
		return nil
	},
}

var schemaCastCmd = &cobra.Command{
	Use:   "cast <schema>",
	Short: "Convert int and int[] fields of a record to integers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, buf, err := loadRecordInput(args[0])
		if err != nil {
			return err
		}
		rec, err := schema.RecordFromJSONPath(buf, dataPath)
		if err != nil {
			return err
		}
		return print(schema.Cast(d, rec))
	},
}

var schemaItemsCmd = &cobra.Command{
	Use:   "items <schema>",
	Short: "Order record values as (name, value, type) items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, buf, err := loadRecordInput(args[0])
		if err != nil {
			return err
		}
		rec, err := schema.RecordFromJSONPath(buf, dataPath)
		if err != nil {
			return err
		}
		items, err := schema.Items(d, rec)
		if err != nil {
			return err
		}
		return print(items)
	},
}

var schemaUIDCmd = &cobra.Command{
	Use:   "uid <schema>",
	Short: "Compute the registry id of a schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := schema.Parse(args[0])
		if err != nil {
			return err
		}
		res, err := resolverAddress()
		if err != nil {
			return err
		}
		uid := d.UID(res, !irrevocable)
		if jsonout {
			return print(map[string]common.Hash{"uid": uid})
		}
		fmt.Println(uid.Hex())
		return nil
	},
}

var schemaJSONCmd = &cobra.Command{
	Use:   "jsonschema <schema>",
	Short: "Print the JSON schema document matching a schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := schema.Parse(args[0])
		if err != nil {
			return err
		}
		buf, err := schema.JSONSchema(d)
		if err != nil {
			return err
		}
		fmt.Println(string(buf))
		return nil
	},
}

var schemaRegisterCmd = &cobra.Command{
	Use:   "register <schema>",
	Short: "Store a schema in the local catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := resolverAddress()
		if err != nil {
			return err
		}
		cat, err := openCatalog(false)
		if err != nil {
			return err
		}
		defer cat.Close()
		rec, err := cat.Register(args[0], res, !irrevocable)
		if err != nil {
			return err
		}
		if jsonout {
			return print(rec)
		}
		ok("registered %s", rec.UID.Hex())
		return nil
	},
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schemas in the local catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog(true)
		if err != nil {
			return err
		}
		defer cat.Close()
		list, err := cat.List()
		if err != nil {
			return err
		}
		if jsonout {
			return print(list)
		}
		for _, v := range list {
			printKV(v.UID.TerminalString(), v.Schema)
		}
		return nil
	},
}

var schemaShowCmd = &cobra.Command{
	Use:   "show <uid>",
	Short: "Show a schema from the local catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var uid common.Hash
		if err := uid.UnmarshalText([]byte(args[0])); err != nil {
			return fmt.Errorf("invalid schema id %q: %v", args[0], err)
		}
		cat, err := openCatalog(true)
		if err != nil {
			return err
		}
		defer cat.Close()
		rec, err := cat.Get(uid)
		if err != nil {
			return err
		}
		if jsonout {
			return print(rec)
		}
		printKV("UID", rec.UID.Hex())
		printKV("Schema", rec.Schema)
		printKV("Resolver", rec.Resolver.Hex())
		printKV("Revocable", rec.Revocable)
		printKV("Registered", rec.RegisteredAt.Format(time.RFC3339))
		return nil
	},
}

// loadRecordInput parses the schema and reads the raw record document
// from --data, --file or stdin in this order.
func loadRecordInput(s string) (*schema.Descriptor, []byte, error) {
	d, err := schema.Parse(s)
	if err != nil {
		return nil, nil, err
	}
	var buf []byte
	switch {
	case dataArg != "":
		buf = []byte(dataArg)
	case dataFile != "" && dataFile != "-":
		buf, err = os.ReadFile(dataFile)
	default:
		buf, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, nil, err
	}
	return d, buf, nil
}

func resolverAddress() (common.Address, error) {
	if resolver == "" {
		return common.Address{}, nil
	}
	a, err := identity.ParseAddress(resolver)
	if err != nil {
		return common.Address{}, err
	}
	return a.Common(), nil
}
