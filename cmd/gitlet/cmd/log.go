package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/systemshift/gitlet/internal/dag"
	"github.com/systemshift/gitlet/internal/repo"
)

const dateLayout = "Mon Jan 2 15:04:05 2006 -0700"

var logFormat string

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the current branch's history",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			entries, err := r.Log()
			if err != nil {
				return err
			}
			return writeLog(cmd.OutOrStdout(), entries, logFormat)
		})
	},
}

var globalLogCmd = &cobra.Command{
	Use:   "global-log",
	Short: "Show every commit ever made",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepo(func(r *repo.Repository) error {
			entries, err := r.GlobalLog()
			if err != nil {
				return err
			}
			return writeLog(cmd.OutOrStdout(), entries, logFormat)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{logCmd, globalLogCmd} {
		c.Flags().StringVar(&logFormat, "format", "text", "output format: text, json or yaml")
		rootCmd.AddCommand(c)
	}
}

type logRecord struct {
	ID      string    `json:"id" yaml:"id"`
	CID     string    `json:"cid" yaml:"cid"`
	Parents []string  `json:"parents,omitempty" yaml:"parents,omitempty"`
	Date    time.Time `json:"date" yaml:"date"`
	Message string    `json:"message" yaml:"message"`
}

func toRecords(entries []dag.LogEntry) ([]logRecord, error) {
	records := make([]logRecord, 0, len(entries))
	for _, e := range entries {
		c, err := e.ID.CID()
		if err != nil {
			return nil, err
		}
		rec := logRecord{
			ID:      e.ID.String(),
			CID:     c.String(),
			Date:    e.Commit.Timestamp,
			Message: e.Commit.Message,
		}
		for _, p := range e.Commit.Parents() {
			rec.Parents = append(rec.Parents, p.String())
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeLog(w io.Writer, entries []dag.LogEntry, format string) error {
	switch format {
	case "", "text":
		for _, e := range entries {
			writeLogEntry(w, e)
		}
		return nil
	case "json":
		records, err := toRecords(entries)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		records, err := toRecords(entries)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
}

func writeLogEntry(w io.Writer, e dag.LogEntry) {
	fmt.Fprintln(w, "===")
	fmt.Fprintf(w, "commit %s\n", e.ID)
	if e.Commit.IsMerge() {
		fmt.Fprintf(w, "Merge: %s %s\n", e.Commit.Parent.Short(7), e.Commit.SecondParent.Short(7))
	}
	fmt.Fprintf(w, "Date: %s\n", e.Commit.Timestamp.Local().Format(dateLayout))
	fmt.Fprintln(w, e.Commit.Message)
	fmt.Fprintln(w)
}
