// Package schema builds the textual schema context included in conversion
// prompts. The description is rebuilt on every pipeline invocation so it
// always reflects the currently registered dataset.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/talkdata/talkdata/internal/dataset"
)

type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Description is an ordered snapshot of the dataset schema.
type Description struct {
	Tables []Table `json:"tables"`
}

// Inspector is the slice of the dataset engine the builder needs.
type Inspector interface {
	ListTables(ctx context.Context) ([]string, error)
	TableSchema(ctx context.Context, table string) ([]dataset.ColumnInfo, error)
}

type Builder struct {
	inspector Inspector
	logger    *slog.Logger
}

func NewBuilder(inspector Inspector, logger *slog.Logger) *Builder {
	return &Builder{inspector: inspector, logger: logger}
}

// Build never fails: engine errors are logged and yield an empty description,
// since a missing schema context only degrades conversion quality.
func (b *Builder) Build(ctx context.Context) Description {
	tables, err := b.inspector.ListTables(ctx)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to list tables for schema context",
			slog.String("error", err.Error()))
		return Description{}
	}

	description := Description{}
	for _, table := range tables {
		columns, err := b.inspector.TableSchema(ctx, table)
		if err != nil {
			b.logger.WarnContext(ctx, "failed to describe table for schema context",
				slog.String("table", table), slog.String("error", err.Error()))
			continue
		}
		entry := Table{Name: table}
		for _, column := range columns {
			entry.Columns = append(entry.Columns, Column{
				Name:        column.Name,
				Type:        column.Type,
				Description: describeColumn(table, column.Name),
			})
		}
		description.Tables = append(description.Tables, entry)
	}
	return description
}

// Format renders the description as the plain-text block the conversion
// service expects: one section per table, one line per column.
func (d Description) Format() string {
	if len(d.Tables) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, table := range d.Tables {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("Table: %s\n", table.Name))
		for _, column := range table.Columns {
			sb.WriteString(fmt.Sprintf("  - %s (%s): %s\n", column.Name, column.Type, column.Description))
		}
	}
	return sb.String()
}
