package main

import (
	"path/filepath"
	"testing"
)

func TestRootCommands(t *testing.T) {
	root := rootCmd()
	for _, name := range []string{"serve", "migrate", "reset"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("subcommand %q not registered: %v", name, err)
		}
	}
}

func TestMigrateThenReset(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "crm.sqlite"))
	t.Setenv("ACCOUNT_EMAIL", "crm@example.com")
	t.Setenv("ACCOUNT_PASSWORD", "secret")

	for _, args := range [][]string{{"migrate"}, {"reset"}} {
		root := rootCmd()
		root.SetArgs(args)
		if err := root.Execute(); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}
}
