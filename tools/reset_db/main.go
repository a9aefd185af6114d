package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"social-system/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
)

// 子表在前，父表在后
var tables = []string{"message", "room", "comment", "post_reaction", "post", "friend_request", "friendship", "user"}

var (
	configPath string
	assumeYes  bool

	rootCmd = &cobra.Command{
		Use:   "reset_db",
		Short: "Clear all social-system tables in the MySQL database",
		Long:  `Deletes every row in the social-system tables and resets auto-increment ids. Table structure is preserved.`,
		RunE:  runReset,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "path to config.yaml")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runReset(cmd *cobra.Command, _ []string) error {
	full, err := config.LoadConfigFrom(configPath)
	if err != nil {
		return err
	}
	cfg := full.Database
	if cfg.Driver != "" && cfg.Driver != "mysql" {
		return fmt.Errorf("reset_db only supports mysql, got driver %q", cfg.Driver)
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.Charset)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database connected: %s\n", cfg.Database)

	if !assumeYes {
		fmt.Fprintf(out, "\nWARNING: This operation will CLEAR ALL DATA in tables %v!\n", tables)
		fmt.Fprint(out, "Type 'YES' to confirm: ")
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if strings.TrimSpace(line) != "YES" {
			fmt.Fprintln(out, "Operation cancelled")
			return nil
		}
	}

	_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=0")
	defer func() { _, _ = db.Exec("SET FOREIGN_KEY_CHECKS=1") }()

	var failed int
	for _, table := range tables {
		fmt.Fprintf(out, "Clearing table %s... ", table)
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM `%s`", table)); err != nil {
			failed++
			fmt.Fprintf(out, "Failed: %v\n", err)
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE `%s` AUTO_INCREMENT = 1", table)); err != nil {
			failed++
			fmt.Fprintf(out, "Reset auto-increment failed: %v\n", err)
			continue
		}
		fmt.Fprintln(out, "Success")
	}

	if failed > 0 {
		return fmt.Errorf("%d table(s) failed", failed)
	}
	fmt.Fprintln(out, "\nDatabase reset completed")
	return nil
}
