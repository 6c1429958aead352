package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/groblegark/confstore/internal/model"
	"github.com/groblegark/confstore/internal/ui"
)

const timeFormat = "2006-01-02 15:04:05"

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// compactData renders a JSON document on one line, truncated for table output.
func compactData(data json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	s := buf.String()
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}

func printConfigurationTable(cfg *model.Configuration) {
	fmt.Printf("ID:         %s\n", ui.RenderAccent(cfg.ID))
	fmt.Printf("Name:       %s\n", cfg.Name)
	fmt.Printf("Owner:      %s\n", cfg.UserID)
	fmt.Printf("Created At: %s\n", ui.RenderMuted(cfg.CreatedAt.Format(timeFormat)))
	fmt.Printf("Updated At: %s\n", ui.RenderMuted(cfg.UpdatedAt.Format(timeFormat)))
	fmt.Printf("Data:       %s\n", compactData(cfg.Data))
	if len(cfg.Versions) > 0 {
		fmt.Printf("Versions:   %d\n", len(cfg.Versions))
	}
}

func printConfigurationListTable(configurations []*model.Configuration, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUPDATED\tDATA")
	for _, cfg := range configurations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			cfg.ID,
			cfg.Name,
			cfg.UpdatedAt.Format(timeFormat),
			compactData(cfg.Data),
		)
	}
	w.Flush()
	fmt.Printf("\n%d configurations (%d total)\n", len(configurations), total)
}

func printVersionListTable(versions []*model.ConfigurationVersion, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tCREATED\tDATA")
	for _, v := range versions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			v.VersionNumber,
			v.Name,
			v.CreatedAt.Format(timeFormat),
			compactData(v.Data),
		)
	}
	w.Flush()
	fmt.Printf("\n%d versions (%d total)\n", len(versions), total)
}

func printSubscriptionTable(sub *model.Subscription) {
	fmt.Printf("ID:          %s\n", ui.RenderAccent(sub.ID))
	fmt.Printf("User:        %s\n", sub.UserID)
	if len(sub.EventTypes) == 0 {
		fmt.Printf("Event Types: %s\n", ui.RenderMuted("(all)"))
	} else {
		types := make([]string, len(sub.EventTypes))
		for i, et := range sub.EventTypes {
			types[i] = string(et)
		}
		fmt.Printf("Event Types: %s\n", strings.Join(types, ", "))
	}
	fmt.Printf("Updated At:  %s\n", ui.RenderMuted(sub.UpdatedAt.Format(timeFormat)))
}
