package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dataview "github.com/goliatone/go-dataview/components/dataview"
	"github.com/goliatone/go-dataview/components/dataview/commands"
	"github.com/goliatone/go-dataview/components/dataview/queries"
)

// Executor is the transport-neutral surface shared by the net/http and go-router adapters.
type Executor interface {
	Snapshot(ctx context.Context, input queries.SnapshotInput) (dataview.Snapshot, error)
	Record(ctx context.Context, input queries.RecordInput) (dataview.Record, error)
	Load(ctx context.Context, input commands.ViewInput) error
	Search(ctx context.Context, input commands.SearchInput) error
	Filter(ctx context.Context, input commands.FilterInput) error
	Sort(ctx context.Context, input commands.SortInput) error
	Page(ctx context.Context, input commands.PageInput) error
	Reset(ctx context.Context, input commands.ViewInput) error
	RowAction(ctx context.Context, input commands.RowActionInput) error
	Delete(ctx context.Context, input commands.DeleteRecordInput) error
	SavePreset(ctx context.Context, input commands.SavePresetInput) error
}

var errNotConfigured = errors.New("httpapi: operation not configured")

// CommandExecutor dispatches every operation to a go-command handler.
type CommandExecutor struct {
	SnapshotQuery gocommand.Querier[queries.SnapshotInput, dataview.Snapshot]
	RecordQuery   gocommand.Querier[queries.RecordInput, dataview.Record]
	LoadCmd       gocommand.Commander[commands.ViewInput]
	SearchCmd     gocommand.Commander[commands.SearchInput]
	FilterCmd     gocommand.Commander[commands.FilterInput]
	SortCmd       gocommand.Commander[commands.SortInput]
	PageCmd       gocommand.Commander[commands.PageInput]
	ResetCmd      gocommand.Commander[commands.ViewInput]
	RowActionCmd  gocommand.Commander[commands.RowActionInput]
	DeleteCmd     gocommand.Commander[commands.DeleteRecordInput]
	PresetCmd     gocommand.Commander[commands.SavePresetInput]
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires the default commands and queries around a service.
func NewCommandExecutor(service *dataview.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		SnapshotQuery: queries.NewSnapshotQuery(service),
		RecordQuery:   queries.NewRecordQuery(service),
		LoadCmd:       commands.NewLoadViewCommand(service, telemetry),
		SearchCmd:     commands.NewSearchCommand(service, telemetry),
		FilterCmd:     commands.NewFilterCommand(service, telemetry),
		SortCmd:       commands.NewSortCommand(service, telemetry),
		PageCmd:       commands.NewPageCommand(service),
		ResetCmd:      commands.NewResetFiltersCommand(service, telemetry),
		RowActionCmd:  commands.NewRowActionCommand(service, telemetry),
		DeleteCmd:     commands.NewDeleteRecordCommand(service, telemetry),
		PresetCmd:     commands.NewSavePresetCommand(service, telemetry),
	}
}

func (e *CommandExecutor) Snapshot(ctx context.Context, input queries.SnapshotInput) (dataview.Snapshot, error) {
	if e.SnapshotQuery == nil {
		return dataview.Snapshot{}, errNotConfigured
	}
	return e.SnapshotQuery.Query(ctx, input)
}

func (e *CommandExecutor) Record(ctx context.Context, input queries.RecordInput) (dataview.Record, error) {
	if e.RecordQuery == nil {
		return nil, errNotConfigured
	}
	return e.RecordQuery.Query(ctx, input)
}

func (e *CommandExecutor) Load(ctx context.Context, input commands.ViewInput) error {
	return execute(ctx, e.LoadCmd, input)
}

func (e *CommandExecutor) Search(ctx context.Context, input commands.SearchInput) error {
	return execute(ctx, e.SearchCmd, input)
}

func (e *CommandExecutor) Filter(ctx context.Context, input commands.FilterInput) error {
	return execute(ctx, e.FilterCmd, input)
}

func (e *CommandExecutor) Sort(ctx context.Context, input commands.SortInput) error {
	return execute(ctx, e.SortCmd, input)
}

func (e *CommandExecutor) Page(ctx context.Context, input commands.PageInput) error {
	return execute(ctx, e.PageCmd, input)
}

func (e *CommandExecutor) Reset(ctx context.Context, input commands.ViewInput) error {
	return execute(ctx, e.ResetCmd, input)
}

func (e *CommandExecutor) RowAction(ctx context.Context, input commands.RowActionInput) error {
	return execute(ctx, e.RowActionCmd, input)
}

func (e *CommandExecutor) Delete(ctx context.Context, input commands.DeleteRecordInput) error {
	return execute(ctx, e.DeleteCmd, input)
}

func (e *CommandExecutor) SavePreset(ctx context.Context, input commands.SavePresetInput) error {
	return execute(ctx, e.PresetCmd, input)
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errNotConfigured
	}
	return cmd.Execute(ctx, msg)
}
