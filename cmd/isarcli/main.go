// Copyright 2026 The isardb Authors
// This file is part of isardb.
//
// isardb is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// isardb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with isardb. If not, see <http://www.gnu.org/licenses/>.

// Command isarcli is a debug/introspection tool for an isardb instance:
// dump its schema, fetch or query a collection, and run the consistency
// checker, without writing a Go program against the library (spec.md §6's
// "external interfaces"). The original ships no such tool; this one is a
// local developer aid over the same Open/txn API.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/isardb/isar/instance"
	"github.com/isardb/isar/keys"
	"github.com/isardb/isar/query"
	"github.com/isardb/isar/schema"
	"github.com/isardb/isar/txn"
)

var (
	flagDir        string
	flagName       string
	flagSchemaFile string
)

func main() {
	root := &cobra.Command{
		Use:   "isarcli",
		Short: "Inspect and query an isardb instance",
	}
	root.PersistentFlags().StringVar(&flagDir, "dir", ".", "instance directory")
	root.PersistentFlags().StringVar(&flagName, "name", "", "instance name")
	root.PersistentFlags().StringVar(&flagSchemaFile, "schema", "", "schema JSON file (spec.md §6)")
	_ = root.MarkPersistentFlagRequired("name")
	_ = root.MarkPersistentFlagRequired("schema")

	root.AddCommand(schemaCmd(), getCmd(), queryCmd(), verifyCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "isarcli:", err)
		os.Exit(1)
	}
}

func openInstance() (*instance.Instance, error) {
	data, err := os.ReadFile(flagSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	s, err := schema.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return instance.Open(flagName, s, instance.Options{Directory: flagDir})
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the instance's currently persisted schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := openInstance()
			if err != nil {
				return err
			}
			defer inst.Close()

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Collection", "Property", "Type", "Indexed", "Hidden"})
			for _, c := range inst.Schema().Collections {
				indexed := make(map[string]bool)
				for _, ix := range c.Indexes {
					for _, ip := range ix.Properties {
						indexed[ip.Property.Name] = true
					}
				}
				for _, p := range c.Properties {
					t.AppendRow(table.Row{c.Name, p.Name, p.Type.String(), indexed[p.Name], p.Hidden})
				}
			}
			t.Render()
			return nil
		},
	}
}

func getCmd() *cobra.Command {
	var collName string
	var idArg string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch one object by id and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(idArg, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", idArg, err)
			}
			inst, err := openInstance()
			if err != nil {
				return err
			}
			defer inst.Close()

			coll, ok := inst.Collection(collName)
			if !ok {
				return fmt.Errorf("unknown collection %q", collName)
			}

			var out map[string]any
			err = inst.View(func(t *txn.Txn) error {
				m, err := coll.ExportJSON(t, id, false, false, inst.Resolve)
				if err != nil {
					return err
				}
				out = m
				return nil
			})
			if err != nil {
				return err
			}
			if out == nil {
				fmt.Println("null")
				return nil
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&collName, "collection", "", "collection name")
	cmd.Flags().StringVar(&idArg, "id", "", "object id")
	_ = cmd.MarkFlagRequired("collection")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func queryCmd() *cobra.Command {
	var collName string
	var limit int
	var offset int
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run the full id-range query over a collection and print results as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := openInstance()
			if err != nil {
				return err
			}
			defer inst.Close()

			coll, ok := inst.Collection(collName)
			if !ok {
				return fmt.Errorf("unknown collection %q", collName)
			}
			b := query.NewBuilder(coll).WhereIDBetween(keys.MinID, keys.MaxID, true).Offset(offset).Limit(limit)
			q, err := b.Build()
			if err != nil {
				return err
			}

			var rows []map[string]any
			err = inst.View(func(t *txn.Txn) error {
				rows, err = q.ExportJSON(t, false, false, inst.Resolve)
				return err
			})
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&collName, "collection", "", "collection name")
	cmd.Flags().IntVar(&limit, "limit", -1, "max rows (-1 = unlimited)")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	_ = cmd.MarkFlagRequired("collection")
	return cmd
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that stored objects' index keys and link backlinks are present",
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := openInstance()
			if err != nil {
				return err
			}
			defer inst.Close()
			if err := inst.Verify(); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}
