package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/nbook/pkg/cell"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListNotebooksTool(srv, svc)
	registerGetNotebookTool(srv, svc)
	registerAddCellTool(srv, svc)
	registerUpdateSourceTool(srv, svc)
	registerRemoveCellTool(srv, svc)
	registerMoveCellTool(srv, svc)
	registerMergeCellsTool(srv, svc)
	registerExportNotebookTool(srv, svc)
}

func registerListNotebooksTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_notebooks",
		mcp.WithDescription("List stored notebooks with cell counts."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summaries, err := svc.ListNotebooks(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"notebooks": summaries,
			"count":     len(summaries),
		})
	})
}

func registerGetNotebookTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_notebook",
		mcp.WithDescription("Fetch every cell of a notebook in order."),
		mcp.WithString("notebook",
			mcp.Required(),
			mcp.Description("Notebook name."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("notebook")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.GetNotebook(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerAddCellTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"add_cell",
		mcp.WithDescription("Insert a new cell into a notebook."),
		mcp.WithString("notebook",
			mcp.Required(),
			mcp.Description("Notebook that should hold the new cell."),
		),
		mcp.WithString("source",
			mcp.Description("Cell source."),
		),
		mcp.WithString("type",
			mcp.Description("Cell type."),
			mcp.Enum("code", "markdown", "raw"),
		),
		mcp.WithString("after",
			mcp.Description("Cell id the new cell follows. Omit to append."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Notebook string `json:"notebook"`
			Source   string `json:"source"`
			Type     string `json:"type"`
			After    string `json:"after"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		t, err := cell.ParseType(args.Type)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.AddCell(ctx, AddCellOptions{
			Notebook: args.Notebook,
			After:    args.After,
			Type:     t,
			Source:   args.Source,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerUpdateSourceTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"update_source",
		mcp.WithDescription("Replace the source of a cell."),
		mcp.WithString("notebook", mcp.Required(), mcp.Description("Notebook name.")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Cell identifier.")),
		mcp.WithString("source", mcp.Required(), mcp.Description("New cell source.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("notebook")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		source := request.GetString("source", "")

		dto, err := svc.UpdateSource(ctx, name, id, source)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerRemoveCellTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"remove_cell",
		mcp.WithDescription("Delete a cell from a notebook."),
		mcp.WithString("notebook", mcp.Required(), mcp.Description("Notebook name.")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Cell identifier to delete.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("notebook")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.RemoveCell(ctx, name, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]string{"removed": id})
	})
}

func registerMoveCellTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"move_cell",
		mcp.WithDescription("Move a cell next to another cell."),
		mcp.WithString("notebook", mcp.Required(), mcp.Description("Notebook name.")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Cell identifier to move.")),
		mcp.WithString("anchor", mcp.Required(), mcp.Description("Cell the moved cell lands next to.")),
		mcp.WithBoolean("above", mcp.Description("Place the cell above the anchor instead of below.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("notebook")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		anchor, err := request.RequireString("anchor")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.MoveCell(ctx, name, id, anchor, request.GetBool("above", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerMergeCellsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"merge_cells",
		mcp.WithDescription("Merge the following cell into this one."),
		mcp.WithString("notebook", mcp.Required(), mcp.Description("Notebook name.")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Cell that absorbs its successor.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("notebook")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.MergeCells(ctx, name, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerExportNotebookTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"export_notebook",
		mcp.WithDescription("Render a notebook as Jupyter nbformat v4 JSON."),
		mcp.WithString("notebook", mcp.Required(), mcp.Description("Notebook name.")),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("notebook")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := svc.ExportNotebook(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
